package dexevents

import (
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// RaydiumAmmV4AmmInfoTag matches the low byte of AmmInfo.Status for an
// active pool. AmmInfo has no separate discriminator, so the tag byte is
// decoded as part of the state.
const RaydiumAmmV4AmmInfoTag byte = 6

const RaydiumAmmV4AmmInfoMinLen = 752

type RaydiumAmmV4Fees struct {
	MinSeparateNumerator   uint64 `json:"min_separate_numerator"`
	MinSeparateDenominator uint64 `json:"min_separate_denominator"`
	TradeFeeNumerator      uint64 `json:"trade_fee_numerator"`
	TradeFeeDenominator    uint64 `json:"trade_fee_denominator"`
	PnlNumerator           uint64 `json:"pnl_numerator"`
	PnlDenominator         uint64 `json:"pnl_denominator"`
	SwapFeeNumerator       uint64 `json:"swap_fee_numerator"`
	SwapFeeDenominator     uint64 `json:"swap_fee_denominator"`
}

type RaydiumAmmV4OutPutData struct {
	NeedTakePnlCoin     uint64            `json:"need_take_pnl_coin"`
	NeedTakePnlPc       uint64            `json:"need_take_pnl_pc"`
	TotalPnlPc          uint64            `json:"total_pnl_pc"`
	TotalPnlCoin        uint64            `json:"total_pnl_coin"`
	PoolOpenTime        uint64            `json:"pool_open_time"`
	PunishPcAmount      uint64            `json:"punish_pc_amount"`
	PunishCoinAmount    uint64            `json:"punish_coin_amount"`
	OrderbookToInitTime uint64            `json:"orderbook_to_init_time"`
	SwapCoinInAmount    ag_binary.Uint128 `json:"swap_coin_in_amount"`
	SwapPcOutAmount     ag_binary.Uint128 `json:"swap_pc_out_amount"`
	SwapAccPcFee        uint64            `json:"swap_acc_pc_fee"`
	SwapPcInAmount      ag_binary.Uint128 `json:"swap_pc_in_amount"`
	SwapCoinOutAmount   ag_binary.Uint128 `json:"swap_coin_out_amount"`
	SwapAccCoinFee      uint64            `json:"swap_acc_coin_fee"`
}

type RaydiumAmmV4AmmInfo struct {
	Status             uint64                 `json:"status"`
	Nonce              uint64                 `json:"nonce"`
	OrderNum           uint64                 `json:"order_num"`
	Depth              uint64                 `json:"depth"`
	CoinDecimals       uint64                 `json:"coin_decimals"`
	PcDecimals         uint64                 `json:"pc_decimals"`
	State              uint64                 `json:"state"`
	ResetFlag          uint64                 `json:"reset_flag"`
	MinSize            uint64                 `json:"min_size"`
	VolMaxCutRatio     uint64                 `json:"vol_max_cut_ratio"`
	AmountWave         uint64                 `json:"amount_wave"`
	CoinLotSize        uint64                 `json:"coin_lot_size"`
	PcLotSize          uint64                 `json:"pc_lot_size"`
	MinPriceMultiplier uint64                 `json:"min_price_multiplier"`
	MaxPriceMultiplier uint64                 `json:"max_price_multiplier"`
	SysDecimalValue    uint64                 `json:"sys_decimal_value"`
	Fees               RaydiumAmmV4Fees       `json:"fees"`
	StateData          RaydiumAmmV4OutPutData `json:"state_data"`
	CoinVault          solana.PublicKey       `json:"coin_vault"`
	PcVault            solana.PublicKey       `json:"pc_vault"`
	CoinVaultMint      solana.PublicKey       `json:"coin_vault_mint"`
	PcVaultMint        solana.PublicKey       `json:"pc_vault_mint"`
	LpMint             solana.PublicKey       `json:"lp_mint"`
	OpenOrders         solana.PublicKey       `json:"open_orders"`
	Market             solana.PublicKey       `json:"market"`
	MarketProgram      solana.PublicKey       `json:"market_program"`
	TargetOrders       solana.PublicKey       `json:"target_orders"`
	Padding1           [8]uint64              `json:"-"`
	AmmOwner           solana.PublicKey       `json:"amm_owner"`
	LpAmount           uint64                 `json:"lp_amount"`
	ClientOrderId      uint64                 `json:"client_order_id"`
	RecentEpoch        uint64                 `json:"recent_epoch"`
	Padding2           uint64                 `json:"-"`
}

type RaydiumAmmV4AmmInfoAccount struct {
	envelope
	AccountHeader
	AmmInfo RaydiumAmmV4AmmInfo `json:"amm_info"`
}

// DecodeRaydiumAmmV4AmmInfoAccount expects the full account data, tag included.
func DecodeRaydiumAmmV4AmmInfoAccount(snap AccountSnapshot, payload []byte) (*RaydiumAmmV4AmmInfoAccount, error) {
	acc := &RaydiumAmmV4AmmInfoAccount{AccountHeader: headerOf(snap)}
	if err := decodeWire(payload, RaydiumAmmV4AmmInfoMinLen, &acc.AmmInfo); err != nil {
		return nil, fmt.Errorf("error unmarshaling AMM v4 AmmInfo: %w", err)
	}
	return acc, nil
}

func (a RaydiumAmmV4AmmInfoAccount) EventType() EventType { return RaydiumAmmV4AmmInfoUpdate }
func (a RaydiumAmmV4AmmInfoAccount) Protocol() Protocol   { return RAYDIUM_AMM_V4 }

func (a RaydiumAmmV4AmmInfoAccount) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := a.envelope.apply(meta)
	if err != nil {
		return a, err
	}
	a.envelope = env
	return a, nil
}

func (a RaydiumAmmV4AmmInfoAccount) MergeableFields() []Field {
	return append(a.AccountHeader.fields(), fieldsOf(a.AmmInfo)...)
}
