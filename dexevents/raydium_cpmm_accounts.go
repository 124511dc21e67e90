package dexevents

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	RaydiumCpmmAmmConfigDiscriminator = [8]byte{218, 244, 33, 104, 203, 203, 43, 111}
	RaydiumCpmmPoolStateDiscriminator = [8]byte{247, 237, 227, 245, 215, 195, 222, 70}
)

const (
	RaydiumCpmmAmmConfigMinLen = 228
	RaydiumCpmmPoolStateMinLen = 629

	cpmmDisableCreatePoolOffset = 1
)

type RaydiumCpmmAmmConfig struct {
	Bump              uint8            `json:"bump"`
	DisableCreatePool bool             `json:"disable_create_pool"`
	Index             uint16           `json:"index"`
	TradeFeeRate      uint64           `json:"trade_fee_rate"`
	ProtocolFeeRate   uint64           `json:"protocol_fee_rate"`
	FundFeeRate       uint64           `json:"fund_fee_rate"`
	CreatePoolFee     uint64           `json:"create_pool_fee"`
	ProtocolOwner     solana.PublicKey `json:"protocol_owner"`
	FundOwner         solana.PublicKey `json:"fund_owner"`
	Padding           [16]uint64       `json:"-"`
}

type RaydiumCpmmAmmConfigAccount struct {
	envelope
	AccountHeader
	AmmConfig RaydiumCpmmAmmConfig `json:"amm_config"`
}

func DecodeRaydiumCpmmAmmConfigAccount(snap AccountSnapshot, payload []byte) (*RaydiumCpmmAmmConfigAccount, error) {
	acc := &RaydiumCpmmAmmConfigAccount{AccountHeader: headerOf(snap)}
	if err := decodeWire(payload, RaydiumCpmmAmmConfigMinLen, &acc.AmmConfig, cpmmDisableCreatePoolOffset); err != nil {
		return nil, fmt.Errorf("error unmarshaling CPMM AmmConfig: %w", err)
	}
	return acc, nil
}

func (a RaydiumCpmmAmmConfigAccount) EventType() EventType { return RaydiumCpmmAmmConfigUpdate }
func (a RaydiumCpmmAmmConfigAccount) Protocol() Protocol   { return RAYDIUM_CPMM }

func (a RaydiumCpmmAmmConfigAccount) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := a.envelope.apply(meta)
	if err != nil {
		return a, err
	}
	a.envelope = env
	return a, nil
}

func (a RaydiumCpmmAmmConfigAccount) MergeableFields() []Field {
	return append(a.AccountHeader.fields(), fieldsOf(a.AmmConfig)...)
}

type RaydiumCpmmPoolState struct {
	AmmConfig          solana.PublicKey `json:"amm_config"`
	PoolCreator        solana.PublicKey `json:"pool_creator"`
	Token0Vault        solana.PublicKey `json:"token0_vault"`
	Token1Vault        solana.PublicKey `json:"token1_vault"`
	LpMint             solana.PublicKey `json:"lp_mint"`
	Token0Mint         solana.PublicKey `json:"token0_mint"`
	Token1Mint         solana.PublicKey `json:"token1_mint"`
	Token0Program      solana.PublicKey `json:"token0_program"`
	Token1Program      solana.PublicKey `json:"token1_program"`
	ObservationKey     solana.PublicKey `json:"observation_key"`
	AuthBump           uint8            `json:"auth_bump"`
	Status             uint8            `json:"status"`
	LpMintDecimals     uint8            `json:"lp_mint_decimals"`
	Mint0Decimals      uint8            `json:"mint0_decimals"`
	Mint1Decimals      uint8            `json:"mint1_decimals"`
	LpSupply           uint64           `json:"lp_supply"`
	ProtocolFeesToken0 uint64           `json:"protocol_fees_token0"`
	ProtocolFeesToken1 uint64           `json:"protocol_fees_token1"`
	FundFeesToken0     uint64           `json:"fund_fees_token0"`
	FundFeesToken1     uint64           `json:"fund_fees_token1"`
	OpenTime           uint64           `json:"open_time"`
	RecentEpoch        uint64           `json:"recent_epoch"`
	Padding            [31]uint64       `json:"-"`
}

type RaydiumCpmmPoolStateAccount struct {
	envelope
	AccountHeader
	PoolState RaydiumCpmmPoolState `json:"pool_state"`
}

func DecodeRaydiumCpmmPoolStateAccount(snap AccountSnapshot, payload []byte) (*RaydiumCpmmPoolStateAccount, error) {
	acc := &RaydiumCpmmPoolStateAccount{AccountHeader: headerOf(snap)}
	if err := decodeWire(payload, RaydiumCpmmPoolStateMinLen, &acc.PoolState); err != nil {
		return nil, fmt.Errorf("error unmarshaling CPMM PoolState: %w", err)
	}
	return acc, nil
}

func (a RaydiumCpmmPoolStateAccount) EventType() EventType { return RaydiumCpmmPoolStateUpdate }
func (a RaydiumCpmmPoolStateAccount) Protocol() Protocol   { return RAYDIUM_CPMM }

func (a RaydiumCpmmPoolStateAccount) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := a.envelope.apply(meta)
	if err != nil {
		return a, err
	}
	a.envelope = env
	return a, nil
}

func (a RaydiumCpmmPoolStateAccount) MergeableFields() []Field {
	return append(a.AccountHeader.fields(), fieldsOf(a.PoolState)...)
}
