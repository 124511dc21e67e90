package dexevents

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PumpSwap emits its events through a self-CPI; the first 8 bytes are the
// Anchor event-instruction tag, the next 8 the event discriminator.
var (
	PumpSwapBuyEventDiscriminator        = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 103, 244, 82, 31, 44, 245, 119, 119}
	PumpSwapSellEventDiscriminator       = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 62, 47, 55, 10, 165, 3, 220, 42}
	PumpSwapCreatePoolEventDiscriminator = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 177, 49, 12, 210, 160, 118, 167, 116}
	PumpSwapDepositEventDiscriminator    = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 120, 248, 61, 83, 31, 142, 107, 144}
	PumpSwapWithdrawEventDiscriminator   = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 22, 9, 133, 26, 160, 44, 71, 192}
)

const (
	PumpSwapBuyEventMinLen        = 385
	PumpSwapSellEventMinLen       = 352
	PumpSwapCreatePoolEventMinLen = 325
	PumpSwapDepositEventMinLen    = 248
	PumpSwapWithdrawEventMinLen   = 248

	pumpSwapBuyTrackVolumeOffset = 352
)

type PumpSwapBuyEventData struct {
	Timestamp                        int64            `json:"timestamp"`
	BaseAmountOut                    uint64           `json:"base_amount_out"`
	MaxQuoteAmountIn                 uint64           `json:"max_quote_amount_in"`
	UserBaseTokenReserves            uint64           `json:"user_base_token_reserves"`
	UserQuoteTokenReserves           uint64           `json:"user_quote_token_reserves"`
	PoolBaseTokenReserves            uint64           `json:"pool_base_token_reserves"`
	PoolQuoteTokenReserves           uint64           `json:"pool_quote_token_reserves"`
	QuoteAmountIn                    uint64           `json:"quote_amount_in"`
	LpFeeBasisPoints                 uint64           `json:"lp_fee_basis_points"`
	LpFee                            uint64           `json:"lp_fee"`
	ProtocolFeeBasisPoints           uint64           `json:"protocol_fee_basis_points"`
	ProtocolFee                      uint64           `json:"protocol_fee"`
	QuoteAmountInWithLpFee           uint64           `json:"quote_amount_in_with_lp_fee"`
	UserQuoteAmountIn                uint64           `json:"user_quote_amount_in"`
	Pool                             solana.PublicKey `json:"pool"`
	User                             solana.PublicKey `json:"user"`
	UserBaseTokenAccount             solana.PublicKey `json:"user_base_token_account"`
	UserQuoteTokenAccount            solana.PublicKey `json:"user_quote_token_account"`
	ProtocolFeeRecipient             solana.PublicKey `json:"protocol_fee_recipient"`
	ProtocolFeeRecipientTokenAccount solana.PublicKey `json:"protocol_fee_recipient_token_account"`
	CoinCreator                      solana.PublicKey `json:"coin_creator"`
	CoinCreatorFeeBasisPoints        uint64           `json:"coin_creator_fee_basis_points"`
	CoinCreatorFee                   uint64           `json:"coin_creator_fee"`
	TrackVolume                      bool             `json:"track_volume"`
	TotalUnclaimedTokens             uint64           `json:"total_unclaimed_tokens"`
	TotalClaimedTokens               uint64           `json:"total_claimed_tokens"`
	CurrentSolVolume                 uint64           `json:"current_sol_volume"`
	LastUpdateTimestamp              int64            `json:"last_update_timestamp"`
}

type PumpSwapSellEventData struct {
	Timestamp                        int64            `json:"timestamp"`
	BaseAmountIn                     uint64           `json:"base_amount_in"`
	MinQuoteAmountOut                uint64           `json:"min_quote_amount_out"`
	UserBaseTokenReserves            uint64           `json:"user_base_token_reserves"`
	UserQuoteTokenReserves           uint64           `json:"user_quote_token_reserves"`
	PoolBaseTokenReserves            uint64           `json:"pool_base_token_reserves"`
	PoolQuoteTokenReserves           uint64           `json:"pool_quote_token_reserves"`
	QuoteAmountOut                   uint64           `json:"quote_amount_out"`
	LpFeeBasisPoints                 uint64           `json:"lp_fee_basis_points"`
	LpFee                            uint64           `json:"lp_fee"`
	ProtocolFeeBasisPoints           uint64           `json:"protocol_fee_basis_points"`
	ProtocolFee                      uint64           `json:"protocol_fee"`
	QuoteAmountOutWithoutLpFee       uint64           `json:"quote_amount_out_without_lp_fee"`
	UserQuoteAmountOut               uint64           `json:"user_quote_amount_out"`
	Pool                             solana.PublicKey `json:"pool"`
	User                             solana.PublicKey `json:"user"`
	UserBaseTokenAccount             solana.PublicKey `json:"user_base_token_account"`
	UserQuoteTokenAccount            solana.PublicKey `json:"user_quote_token_account"`
	ProtocolFeeRecipient             solana.PublicKey `json:"protocol_fee_recipient"`
	ProtocolFeeRecipientTokenAccount solana.PublicKey `json:"protocol_fee_recipient_token_account"`
	CoinCreator                      solana.PublicKey `json:"coin_creator"`
	CoinCreatorFeeBasisPoints        uint64           `json:"coin_creator_fee_basis_points"`
	CoinCreatorFee                   uint64           `json:"coin_creator_fee"`
}

// PumpSwapTradeAccounts are the buy/sell fields the event does not carry.
// They come from the accounts of the instruction that emitted it.
type PumpSwapTradeAccounts struct {
	BaseMint                  solana.PublicKey `json:"base_mint"`
	QuoteMint                 solana.PublicKey `json:"quote_mint"`
	CoinCreatorVaultAta       solana.PublicKey `json:"coin_creator_vault_ata"`
	CoinCreatorVaultAuthority solana.PublicKey `json:"coin_creator_vault_authority"`
	FeeConfig                 solana.PublicKey `json:"fee_config"`
	FeeProgram                solana.PublicKey `json:"fee_program"`
}

type PumpSwapBuyEvent struct {
	envelope
	PumpSwapBuyEventData
	accounts slot[PumpSwapTradeAccounts]
}

func DecodePumpSwapBuyEvent(payload []byte) (*PumpSwapBuyEvent, error) {
	ev := &PumpSwapBuyEvent{}
	if err := decodeWire(payload, PumpSwapBuyEventMinLen, &ev.PumpSwapBuyEventData, pumpSwapBuyTrackVolumeOffset); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwapBuyEvent: %w", err)
	}
	return ev, nil
}

func (e PumpSwapBuyEvent) EventType() EventType { return PumpSwapBuy }
func (e PumpSwapBuyEvent) Protocol() Protocol   { return PUMPSWAP }

func (e PumpSwapBuyEvent) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := e.envelope.apply(meta)
	if err != nil {
		return e, err
	}
	e.envelope = env
	return e, nil
}

func (e PumpSwapBuyEvent) MergeableFields() []Field { return fieldsOf(e.PumpSwapBuyEventData) }

// Context returns the instruction-derived fields, if filled.
func (e PumpSwapBuyEvent) Context() (PumpSwapTradeAccounts, bool) { return e.accounts.get() }

func (e PumpSwapBuyEvent) WithContext(accts PumpSwapTradeAccounts) (PumpSwapBuyEvent, error) {
	s, err := e.accounts.fill(accts)
	if err != nil {
		return e, err
	}
	e.accounts = s
	return e, nil
}

type PumpSwapSellEvent struct {
	envelope
	PumpSwapSellEventData
	accounts slot[PumpSwapTradeAccounts]
}

func DecodePumpSwapSellEvent(payload []byte) (*PumpSwapSellEvent, error) {
	ev := &PumpSwapSellEvent{}
	if err := decodeWire(payload, PumpSwapSellEventMinLen, &ev.PumpSwapSellEventData); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwapSellEvent: %w", err)
	}
	return ev, nil
}

func (e PumpSwapSellEvent) EventType() EventType { return PumpSwapSell }
func (e PumpSwapSellEvent) Protocol() Protocol   { return PUMPSWAP }

func (e PumpSwapSellEvent) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := e.envelope.apply(meta)
	if err != nil {
		return e, err
	}
	e.envelope = env
	return e, nil
}

func (e PumpSwapSellEvent) MergeableFields() []Field { return fieldsOf(e.PumpSwapSellEventData) }

func (e PumpSwapSellEvent) Context() (PumpSwapTradeAccounts, bool) { return e.accounts.get() }

func (e PumpSwapSellEvent) WithContext(accts PumpSwapTradeAccounts) (PumpSwapSellEvent, error) {
	s, err := e.accounts.fill(accts)
	if err != nil {
		return e, err
	}
	e.accounts = s
	return e, nil
}

type PumpSwapCreatePoolEventData struct {
	Timestamp             int64            `json:"timestamp"`
	Index                 uint16           `json:"index"`
	Creator               solana.PublicKey `json:"creator"`
	BaseMint              solana.PublicKey `json:"base_mint"`
	QuoteMint             solana.PublicKey `json:"quote_mint"`
	BaseMintDecimals      uint8            `json:"base_mint_decimals"`
	QuoteMintDecimals     uint8            `json:"quote_mint_decimals"`
	BaseAmountIn          uint64           `json:"base_amount_in"`
	QuoteAmountIn         uint64           `json:"quote_amount_in"`
	PoolBaseAmount        uint64           `json:"pool_base_amount"`
	PoolQuoteAmount       uint64           `json:"pool_quote_amount"`
	MinimumLiquidity      uint64           `json:"minimum_liquidity"`
	InitialLiquidity      uint64           `json:"initial_liquidity"`
	LpTokenAmountOut      uint64           `json:"lp_token_amount_out"`
	PoolBump              uint8            `json:"pool_bump"`
	Pool                  solana.PublicKey `json:"pool"`
	LpMint                solana.PublicKey `json:"lp_mint"`
	UserBaseTokenAccount  solana.PublicKey `json:"user_base_token_account"`
	UserQuoteTokenAccount solana.PublicKey `json:"user_quote_token_account"`
	CoinCreator           solana.PublicKey `json:"coin_creator"`
}

type PumpSwapCreatePoolEvent struct {
	envelope
	PumpSwapCreatePoolEventData
	userPoolTokenAccount slot[solana.PublicKey]
}

func DecodePumpSwapCreatePoolEvent(payload []byte) (*PumpSwapCreatePoolEvent, error) {
	ev := &PumpSwapCreatePoolEvent{}
	if err := decodeWire(payload, PumpSwapCreatePoolEventMinLen, &ev.PumpSwapCreatePoolEventData); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwapCreatePoolEvent: %w", err)
	}
	return ev, nil
}

func (e PumpSwapCreatePoolEvent) EventType() EventType { return PumpSwapCreatePool }
func (e PumpSwapCreatePoolEvent) Protocol() Protocol   { return PUMPSWAP }

func (e PumpSwapCreatePoolEvent) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := e.envelope.apply(meta)
	if err != nil {
		return e, err
	}
	e.envelope = env
	return e, nil
}

func (e PumpSwapCreatePoolEvent) MergeableFields() []Field {
	return fieldsOf(e.PumpSwapCreatePoolEventData)
}

func (e PumpSwapCreatePoolEvent) Context() (solana.PublicKey, bool) {
	return e.userPoolTokenAccount.get()
}

func (e PumpSwapCreatePoolEvent) WithContext(pk solana.PublicKey) (PumpSwapCreatePoolEvent, error) {
	s, err := e.userPoolTokenAccount.fill(pk)
	if err != nil {
		return e, err
	}
	e.userPoolTokenAccount = s
	return e, nil
}

// Deposit and withdraw events share one layout; only the meaning of the
// leading amounts differs.
type PumpSwapDepositEventData struct {
	Timestamp              int64            `json:"timestamp"`
	LpTokenAmountOut       uint64           `json:"lp_token_amount_out"`
	MaxBaseAmountIn        uint64           `json:"max_base_amount_in"`
	MaxQuoteAmountIn       uint64           `json:"max_quote_amount_in"`
	UserBaseTokenReserves  uint64           `json:"user_base_token_reserves"`
	UserQuoteTokenReserves uint64           `json:"user_quote_token_reserves"`
	PoolBaseTokenReserves  uint64           `json:"pool_base_token_reserves"`
	PoolQuoteTokenReserves uint64           `json:"pool_quote_token_reserves"`
	BaseAmountIn           uint64           `json:"base_amount_in"`
	QuoteAmountIn          uint64           `json:"quote_amount_in"`
	LpMintSupply           uint64           `json:"lp_mint_supply"`
	Pool                   solana.PublicKey `json:"pool"`
	User                   solana.PublicKey `json:"user"`
	UserBaseTokenAccount   solana.PublicKey `json:"user_base_token_account"`
	UserQuoteTokenAccount  solana.PublicKey `json:"user_quote_token_account"`
	UserPoolTokenAccount   solana.PublicKey `json:"user_pool_token_account"`
}

type PumpSwapWithdrawEventData struct {
	Timestamp              int64            `json:"timestamp"`
	LpTokenAmountIn        uint64           `json:"lp_token_amount_in"`
	MinBaseAmountOut       uint64           `json:"min_base_amount_out"`
	MinQuoteAmountOut      uint64           `json:"min_quote_amount_out"`
	UserBaseTokenReserves  uint64           `json:"user_base_token_reserves"`
	UserQuoteTokenReserves uint64           `json:"user_quote_token_reserves"`
	PoolBaseTokenReserves  uint64           `json:"pool_base_token_reserves"`
	PoolQuoteTokenReserves uint64           `json:"pool_quote_token_reserves"`
	BaseAmountOut          uint64           `json:"base_amount_out"`
	QuoteAmountOut         uint64           `json:"quote_amount_out"`
	LpMintSupply           uint64           `json:"lp_mint_supply"`
	Pool                   solana.PublicKey `json:"pool"`
	User                   solana.PublicKey `json:"user"`
	UserBaseTokenAccount   solana.PublicKey `json:"user_base_token_account"`
	UserQuoteTokenAccount  solana.PublicKey `json:"user_quote_token_account"`
	UserPoolTokenAccount   solana.PublicKey `json:"user_pool_token_account"`
}

// PumpSwapPoolMints are the pool mints a liquidity event does not carry.
type PumpSwapPoolMints struct {
	BaseMint  solana.PublicKey `json:"base_mint"`
	QuoteMint solana.PublicKey `json:"quote_mint"`
}

type PumpSwapDepositEvent struct {
	envelope
	PumpSwapDepositEventData
	mints slot[PumpSwapPoolMints]
}

func DecodePumpSwapDepositEvent(payload []byte) (*PumpSwapDepositEvent, error) {
	ev := &PumpSwapDepositEvent{}
	if err := decodeWire(payload, PumpSwapDepositEventMinLen, &ev.PumpSwapDepositEventData); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwapDepositEvent: %w", err)
	}
	return ev, nil
}

func (e PumpSwapDepositEvent) EventType() EventType { return PumpSwapDeposit }
func (e PumpSwapDepositEvent) Protocol() Protocol   { return PUMPSWAP }

func (e PumpSwapDepositEvent) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := e.envelope.apply(meta)
	if err != nil {
		return e, err
	}
	e.envelope = env
	return e, nil
}

func (e PumpSwapDepositEvent) MergeableFields() []Field { return fieldsOf(e.PumpSwapDepositEventData) }

func (e PumpSwapDepositEvent) Context() (PumpSwapPoolMints, bool) { return e.mints.get() }

func (e PumpSwapDepositEvent) WithContext(m PumpSwapPoolMints) (PumpSwapDepositEvent, error) {
	s, err := e.mints.fill(m)
	if err != nil {
		return e, err
	}
	e.mints = s
	return e, nil
}

type PumpSwapWithdrawEvent struct {
	envelope
	PumpSwapWithdrawEventData
	mints slot[PumpSwapPoolMints]
}

func DecodePumpSwapWithdrawEvent(payload []byte) (*PumpSwapWithdrawEvent, error) {
	ev := &PumpSwapWithdrawEvent{}
	if err := decodeWire(payload, PumpSwapWithdrawEventMinLen, &ev.PumpSwapWithdrawEventData); err != nil {
		return nil, fmt.Errorf("error unmarshaling PumpSwapWithdrawEvent: %w", err)
	}
	return ev, nil
}

func (e PumpSwapWithdrawEvent) EventType() EventType { return PumpSwapWithdraw }
func (e PumpSwapWithdrawEvent) Protocol() Protocol   { return PUMPSWAP }

func (e PumpSwapWithdrawEvent) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := e.envelope.apply(meta)
	if err != nil {
		return e, err
	}
	e.envelope = env
	return e, nil
}

func (e PumpSwapWithdrawEvent) MergeableFields() []Field {
	return fieldsOf(e.PumpSwapWithdrawEventData)
}

func (e PumpSwapWithdrawEvent) Context() (PumpSwapPoolMints, bool) { return e.mints.get() }

func (e PumpSwapWithdrawEvent) WithContext(m PumpSwapPoolMints) (PumpSwapWithdrawEvent, error) {
	s, err := e.mints.fill(m)
	if err != nil {
		return e, err
	}
	e.mints = s
	return e, nil
}
