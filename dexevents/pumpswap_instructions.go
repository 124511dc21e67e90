package dexevents

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	PumpSwapBuyIxDiscriminator        = [8]byte{102, 6, 61, 18, 1, 218, 235, 234}
	PumpSwapSellIxDiscriminator       = [8]byte{51, 230, 133, 164, 1, 127, 131, 173}
	PumpSwapCreatePoolIxDiscriminator = [8]byte{233, 146, 209, 142, 207, 104, 64, 188}
	PumpSwapDepositIxDiscriminator    = [8]byte{242, 35, 198, 137, 82, 225, 242, 182}
	PumpSwapWithdrawIxDiscriminator   = [8]byte{183, 18, 70, 156, 148, 109, 161, 34}
)

const (
	PumpSwapTradeIxMinLen      = 16
	PumpSwapTradeIxMinAccounts = 19
	PumpSwapCreatePoolIxMinLen = 50
	PumpSwapLiquidityIxMinLen  = 24
	PumpSwapPoolIxMinAccounts  = 11
)

type PumpSwapBuyIxData struct {
	BaseAmountOut    uint64 `json:"base_amount_out"`
	MaxQuoteAmountIn uint64 `json:"max_quote_amount_in"`
}

// PumpSwapBuyIxAccounts lists buy accounts in program order. The last four
// appear only on newer program versions.
type PumpSwapBuyIxAccounts struct {
	Pool                             solana.PublicKey `json:"pool"`
	User                             solana.PublicKey `json:"user"`
	GlobalConfig                     solana.PublicKey `json:"global_config"`
	BaseMint                         solana.PublicKey `json:"base_mint"`
	QuoteMint                        solana.PublicKey `json:"quote_mint"`
	UserBaseTokenAccount             solana.PublicKey `json:"user_base_token_account"`
	UserQuoteTokenAccount            solana.PublicKey `json:"user_quote_token_account"`
	PoolBaseTokenAccount             solana.PublicKey `json:"pool_base_token_account"`
	PoolQuoteTokenAccount            solana.PublicKey `json:"pool_quote_token_account"`
	ProtocolFeeRecipient             solana.PublicKey `json:"protocol_fee_recipient"`
	ProtocolFeeRecipientTokenAccount solana.PublicKey `json:"protocol_fee_recipient_token_account"`
	BaseTokenProgram                 solana.PublicKey `json:"base_token_program"`
	QuoteTokenProgram                solana.PublicKey `json:"quote_token_program"`
	SystemProgram                    solana.PublicKey `json:"system_program"`
	AssociatedTokenProgram           solana.PublicKey `json:"associated_token_program"`
	EventAuthority                   solana.PublicKey `json:"event_authority"`
	Program                          solana.PublicKey `json:"program"`
	CoinCreatorVaultAta              solana.PublicKey `json:"coin_creator_vault_ata"`
	CoinCreatorVaultAuthority        solana.PublicKey `json:"coin_creator_vault_authority"`
	GlobalVolumeAccumulator          solana.PublicKey `json:"global_volume_accumulator"`
	UserVolumeAccumulator            solana.PublicKey `json:"user_volume_accumulator"`
	FeeConfig                        solana.PublicKey `json:"fee_config"`
	FeeProgram                       solana.PublicKey `json:"fee_program"`
}

type PumpSwapBuyInstruction struct {
	envelope
	PumpSwapBuyIxData
	TrackVolume *bool `json:"track_volume"`
	PumpSwapBuyIxAccounts
}

func DecodePumpSwapBuyInstruction(data []byte, accounts []solana.PublicKey) (*PumpSwapBuyInstruction, error) {
	ix := &PumpSwapBuyInstruction{}
	if err := decodeWire(data, PumpSwapTradeIxMinLen, &ix.PumpSwapBuyIxData); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwap buy: %w", err)
	}
	tv, err := readOptionalBool(data[PumpSwapTradeIxMinLen:])
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwap buy track_volume: %w", err)
	}
	ix.TrackVolume = tv
	if err := assignAccounts(&ix.PumpSwapBuyIxAccounts, accounts, PumpSwapTradeIxMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading PumpSwap buy accounts: %w", err)
	}
	return ix, nil
}

func (ix PumpSwapBuyInstruction) EventType() EventType { return PumpSwapBuyIx }
func (ix PumpSwapBuyInstruction) Protocol() Protocol   { return PUMPSWAP }

func (ix PumpSwapBuyInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix PumpSwapBuyInstruction) MergeableFields() []Field {
	fields := fieldsOf(ix.PumpSwapBuyIxData)
	fields = append(fields, Field{"track_volume", ix.TrackVolume})
	return append(fields, fieldsOf(ix.PumpSwapBuyIxAccounts)...)
}

// TradeAccounts returns the fields a BuyEvent from this instruction lacks.
func (ix PumpSwapBuyInstruction) TradeAccounts() PumpSwapTradeAccounts {
	return PumpSwapTradeAccounts{
		BaseMint:                  ix.BaseMint,
		QuoteMint:                 ix.QuoteMint,
		CoinCreatorVaultAta:       ix.CoinCreatorVaultAta,
		CoinCreatorVaultAuthority: ix.CoinCreatorVaultAuthority,
		FeeConfig:                 ix.FeeConfig,
		FeeProgram:                ix.FeeProgram,
	}
}

type PumpSwapSellIxData struct {
	BaseAmountIn      uint64 `json:"base_amount_in"`
	MinQuoteAmountOut uint64 `json:"min_quote_amount_out"`
}

type PumpSwapSellIxAccounts struct {
	Pool                             solana.PublicKey `json:"pool"`
	User                             solana.PublicKey `json:"user"`
	GlobalConfig                     solana.PublicKey `json:"global_config"`
	BaseMint                         solana.PublicKey `json:"base_mint"`
	QuoteMint                        solana.PublicKey `json:"quote_mint"`
	UserBaseTokenAccount             solana.PublicKey `json:"user_base_token_account"`
	UserQuoteTokenAccount            solana.PublicKey `json:"user_quote_token_account"`
	PoolBaseTokenAccount             solana.PublicKey `json:"pool_base_token_account"`
	PoolQuoteTokenAccount            solana.PublicKey `json:"pool_quote_token_account"`
	ProtocolFeeRecipient             solana.PublicKey `json:"protocol_fee_recipient"`
	ProtocolFeeRecipientTokenAccount solana.PublicKey `json:"protocol_fee_recipient_token_account"`
	BaseTokenProgram                 solana.PublicKey `json:"base_token_program"`
	QuoteTokenProgram                solana.PublicKey `json:"quote_token_program"`
	SystemProgram                    solana.PublicKey `json:"system_program"`
	AssociatedTokenProgram           solana.PublicKey `json:"associated_token_program"`
	EventAuthority                   solana.PublicKey `json:"event_authority"`
	Program                          solana.PublicKey `json:"program"`
	CoinCreatorVaultAta              solana.PublicKey `json:"coin_creator_vault_ata"`
	CoinCreatorVaultAuthority        solana.PublicKey `json:"coin_creator_vault_authority"`
	FeeConfig                        solana.PublicKey `json:"fee_config"`
	FeeProgram                       solana.PublicKey `json:"fee_program"`
}

type PumpSwapSellInstruction struct {
	envelope
	PumpSwapSellIxData
	PumpSwapSellIxAccounts
}

func DecodePumpSwapSellInstruction(data []byte, accounts []solana.PublicKey) (*PumpSwapSellInstruction, error) {
	ix := &PumpSwapSellInstruction{}
	if err := decodeWire(data, PumpSwapTradeIxMinLen, &ix.PumpSwapSellIxData); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwap sell: %w", err)
	}
	if err := assignAccounts(&ix.PumpSwapSellIxAccounts, accounts, PumpSwapTradeIxMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading PumpSwap sell accounts: %w", err)
	}
	return ix, nil
}

func (ix PumpSwapSellInstruction) EventType() EventType { return PumpSwapSellIx }
func (ix PumpSwapSellInstruction) Protocol() Protocol   { return PUMPSWAP }

func (ix PumpSwapSellInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix PumpSwapSellInstruction) MergeableFields() []Field {
	return fieldsOf(ix.PumpSwapSellIxData, ix.PumpSwapSellIxAccounts)
}

func (ix PumpSwapSellInstruction) TradeAccounts() PumpSwapTradeAccounts {
	return PumpSwapTradeAccounts{
		BaseMint:                  ix.BaseMint,
		QuoteMint:                 ix.QuoteMint,
		CoinCreatorVaultAta:       ix.CoinCreatorVaultAta,
		CoinCreatorVaultAuthority: ix.CoinCreatorVaultAuthority,
		FeeConfig:                 ix.FeeConfig,
		FeeProgram:                ix.FeeProgram,
	}
}

type PumpSwapCreatePoolIxData struct {
	Index         uint16           `json:"index"`
	BaseAmountIn  uint64           `json:"base_amount_in"`
	QuoteAmountIn uint64           `json:"quote_amount_in"`
	CoinCreator   solana.PublicKey `json:"coin_creator"`
}

type PumpSwapCreatePoolIxAccounts struct {
	Pool                  solana.PublicKey `json:"pool"`
	GlobalConfig          solana.PublicKey `json:"global_config"`
	Creator               solana.PublicKey `json:"creator"`
	BaseMint              solana.PublicKey `json:"base_mint"`
	QuoteMint             solana.PublicKey `json:"quote_mint"`
	LpMint                solana.PublicKey `json:"lp_mint"`
	UserBaseTokenAccount  solana.PublicKey `json:"user_base_token_account"`
	UserQuoteTokenAccount solana.PublicKey `json:"user_quote_token_account"`
	UserPoolTokenAccount  solana.PublicKey `json:"user_pool_token_account"`
	PoolBaseTokenAccount  solana.PublicKey `json:"pool_base_token_account"`
	PoolQuoteTokenAccount solana.PublicKey `json:"pool_quote_token_account"`
}

type PumpSwapCreatePoolInstruction struct {
	envelope
	PumpSwapCreatePoolIxData
	PumpSwapCreatePoolIxAccounts
}

func DecodePumpSwapCreatePoolInstruction(data []byte, accounts []solana.PublicKey) (*PumpSwapCreatePoolInstruction, error) {
	ix := &PumpSwapCreatePoolInstruction{}
	if err := decodeWire(data, PumpSwapCreatePoolIxMinLen, &ix.PumpSwapCreatePoolIxData); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwap create_pool: %w", err)
	}
	if err := assignAccounts(&ix.PumpSwapCreatePoolIxAccounts, accounts, PumpSwapPoolIxMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading PumpSwap create_pool accounts: %w", err)
	}
	return ix, nil
}

func (ix PumpSwapCreatePoolInstruction) EventType() EventType { return PumpSwapCreatePoolIx }
func (ix PumpSwapCreatePoolInstruction) Protocol() Protocol   { return PUMPSWAP }

func (ix PumpSwapCreatePoolInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix PumpSwapCreatePoolInstruction) MergeableFields() []Field {
	return fieldsOf(ix.PumpSwapCreatePoolIxData, ix.PumpSwapCreatePoolIxAccounts)
}

// PumpSwapLiquidityIxAccounts is the account prefix shared by deposit and withdraw.
type PumpSwapLiquidityIxAccounts struct {
	Pool                  solana.PublicKey `json:"pool"`
	GlobalConfig          solana.PublicKey `json:"global_config"`
	User                  solana.PublicKey `json:"user"`
	BaseMint              solana.PublicKey `json:"base_mint"`
	QuoteMint             solana.PublicKey `json:"quote_mint"`
	LpMint                solana.PublicKey `json:"lp_mint"`
	UserBaseTokenAccount  solana.PublicKey `json:"user_base_token_account"`
	UserQuoteTokenAccount solana.PublicKey `json:"user_quote_token_account"`
	UserPoolTokenAccount  solana.PublicKey `json:"user_pool_token_account"`
	PoolBaseTokenAccount  solana.PublicKey `json:"pool_base_token_account"`
	PoolQuoteTokenAccount solana.PublicKey `json:"pool_quote_token_account"`
}

func (a PumpSwapLiquidityIxAccounts) PoolMints() PumpSwapPoolMints {
	return PumpSwapPoolMints{BaseMint: a.BaseMint, QuoteMint: a.QuoteMint}
}

type PumpSwapDepositIxData struct {
	LpTokenAmountOut uint64 `json:"lp_token_amount_out"`
	MaxBaseAmountIn  uint64 `json:"max_base_amount_in"`
	MaxQuoteAmountIn uint64 `json:"max_quote_amount_in"`
}

type PumpSwapDepositInstruction struct {
	envelope
	PumpSwapDepositIxData
	PumpSwapLiquidityIxAccounts
}

func DecodePumpSwapDepositInstruction(data []byte, accounts []solana.PublicKey) (*PumpSwapDepositInstruction, error) {
	ix := &PumpSwapDepositInstruction{}
	if err := decodeWire(data, PumpSwapLiquidityIxMinLen, &ix.PumpSwapDepositIxData); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwap deposit: %w", err)
	}
	if err := assignAccounts(&ix.PumpSwapLiquidityIxAccounts, accounts, PumpSwapPoolIxMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading PumpSwap deposit accounts: %w", err)
	}
	return ix, nil
}

func (ix PumpSwapDepositInstruction) EventType() EventType { return PumpSwapDepositIx }
func (ix PumpSwapDepositInstruction) Protocol() Protocol   { return PUMPSWAP }

func (ix PumpSwapDepositInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix PumpSwapDepositInstruction) MergeableFields() []Field {
	return fieldsOf(ix.PumpSwapDepositIxData, ix.PumpSwapLiquidityIxAccounts)
}

type PumpSwapWithdrawIxData struct {
	LpTokenAmountIn   uint64 `json:"lp_token_amount_in"`
	MinBaseAmountOut  uint64 `json:"min_base_amount_out"`
	MinQuoteAmountOut uint64 `json:"min_quote_amount_out"`
}

type PumpSwapWithdrawInstruction struct {
	envelope
	PumpSwapWithdrawIxData
	PumpSwapLiquidityIxAccounts
}

func DecodePumpSwapWithdrawInstruction(data []byte, accounts []solana.PublicKey) (*PumpSwapWithdrawInstruction, error) {
	ix := &PumpSwapWithdrawInstruction{}
	if err := decodeWire(data, PumpSwapLiquidityIxMinLen, &ix.PumpSwapWithdrawIxData); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwap withdraw: %w", err)
	}
	if err := assignAccounts(&ix.PumpSwapLiquidityIxAccounts, accounts, PumpSwapPoolIxMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading PumpSwap withdraw accounts: %w", err)
	}
	return ix, nil
}

func (ix PumpSwapWithdrawInstruction) EventType() EventType { return PumpSwapWithdrawIx }
func (ix PumpSwapWithdrawInstruction) Protocol() Protocol   { return PUMPSWAP }

func (ix PumpSwapWithdrawInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix PumpSwapWithdrawInstruction) MergeableFields() []Field {
	return fieldsOf(ix.PumpSwapWithdrawIxData, ix.PumpSwapLiquidityIxAccounts)
}
