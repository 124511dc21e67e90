package dexevents

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	PumpSwapGlobalConfigDiscriminator = [8]byte{149, 8, 156, 202, 160, 252, 176, 217}
	PumpSwapPoolDiscriminator         = [8]byte{241, 154, 109, 4, 17, 177, 109, 188}
)

const (
	PumpSwapGlobalConfigMinLen = 345
	PumpSwapPoolMinLen         = 235
)

type PumpSwapGlobalConfig struct {
	Admin                        solana.PublicKey    `json:"admin"`
	LpFeeBasisPoints             uint64              `json:"lp_fee_basis_points"`
	ProtocolFeeBasisPoints       uint64              `json:"protocol_fee_basis_points"`
	DisableFlags                 uint8               `json:"disable_flags"`
	ProtocolFeeRecipients        [8]solana.PublicKey `json:"protocol_fee_recipients"`
	CoinCreatorFeeBasisPoints    uint64              `json:"coin_creator_fee_basis_points"`
	AdminSetCoinCreatorAuthority solana.PublicKey    `json:"admin_set_coin_creator_authority"`
}

type PumpSwapGlobalConfigAccount struct {
	envelope
	AccountHeader
	GlobalConfig PumpSwapGlobalConfig `json:"global_config"`
}

func DecodePumpSwapGlobalConfigAccount(snap AccountSnapshot, payload []byte) (*PumpSwapGlobalConfigAccount, error) {
	acc := &PumpSwapGlobalConfigAccount{AccountHeader: headerOf(snap)}
	if err := decodeWire(payload, PumpSwapGlobalConfigMinLen, &acc.GlobalConfig); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwap GlobalConfig: %w", err)
	}
	return acc, nil
}

func (a PumpSwapGlobalConfigAccount) EventType() EventType { return PumpSwapGlobalConfigUpdate }
func (a PumpSwapGlobalConfigAccount) Protocol() Protocol   { return PUMPSWAP }

func (a PumpSwapGlobalConfigAccount) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := a.envelope.apply(meta)
	if err != nil {
		return a, err
	}
	a.envelope = env
	return a, nil
}

func (a PumpSwapGlobalConfigAccount) MergeableFields() []Field {
	return append(a.AccountHeader.fields(), fieldsOf(a.GlobalConfig)...)
}

type PumpSwapPool struct {
	PoolBump              uint8            `json:"pool_bump"`
	Index                 uint16           `json:"index"`
	Creator               solana.PublicKey `json:"creator"`
	BaseMint              solana.PublicKey `json:"base_mint"`
	QuoteMint             solana.PublicKey `json:"quote_mint"`
	LpMint                solana.PublicKey `json:"lp_mint"`
	PoolBaseTokenAccount  solana.PublicKey `json:"pool_base_token_account"`
	PoolQuoteTokenAccount solana.PublicKey `json:"pool_quote_token_account"`
	LpSupply              uint64           `json:"lp_supply"`
	CoinCreator           solana.PublicKey `json:"coin_creator"`
}

type PumpSwapPoolAccount struct {
	envelope
	AccountHeader
	Pool PumpSwapPool `json:"pool"`
}

func DecodePumpSwapPoolAccount(snap AccountSnapshot, payload []byte) (*PumpSwapPoolAccount, error) {
	acc := &PumpSwapPoolAccount{AccountHeader: headerOf(snap)}
	if err := decodeWire(payload, PumpSwapPoolMinLen, &acc.Pool); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwap Pool: %w", err)
	}
	return acc, nil
}

func (a PumpSwapPoolAccount) EventType() EventType { return PumpSwapPoolUpdate }
func (a PumpSwapPoolAccount) Protocol() Protocol   { return PUMPSWAP }

func (a PumpSwapPoolAccount) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := a.envelope.apply(meta)
	if err != nil {
		return a, err
	}
	a.envelope = env
	return a, nil
}

func (a PumpSwapPoolAccount) MergeableFields() []Field {
	return append(a.AccountHeader.fields(), fieldsOf(a.Pool)...)
}
