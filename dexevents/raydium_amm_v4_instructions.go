package dexevents

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AMM v4 is not an Anchor program; instructions carry a one-byte tag.
const (
	RaydiumAmmV4Initialize2Tag byte = 1
	RaydiumAmmV4DepositTag     byte = 3
	RaydiumAmmV4WithdrawTag    byte = 4
	RaydiumAmmV4WithdrawPnlTag byte = 7
	RaydiumAmmV4SwapBaseInTag  byte = 9
	RaydiumAmmV4SwapBaseOutTag byte = 11
)

const (
	RaydiumAmmV4SwapMinLen              = 16
	RaydiumAmmV4SwapMinAccounts         = 17
	raydiumAmmV4SwapAccountsWithTarget  = 18
	RaydiumAmmV4DepositMinLen           = 24
	RaydiumAmmV4DepositMinAccounts      = 14
	RaydiumAmmV4Initialize2MinLen       = 25
	RaydiumAmmV4Initialize2MinAccounts  = 21
	RaydiumAmmV4WithdrawMinLen          = 8
	RaydiumAmmV4WithdrawMinAccounts     = 20
	RaydiumAmmV4WithdrawPnlMinLen       = 0
	RaydiumAmmV4WithdrawPnlMinAccounts  = 17
	raydiumAmmV4SwapTargetOrdersAccount = 4
)

type RaydiumAmmV4SwapAmounts struct {
	AmountIn         uint64 `json:"amount_in"`
	MinimumAmountOut uint64 `json:"minimum_amount_out"`
	MaxAmountIn      uint64 `json:"max_amount_in"`
	AmountOut        uint64 `json:"amount_out"`
}

// RaydiumAmmV4SwapAccounts follows the program order. AmmTargetOrders is
// only passed by older clients, which send 18 accounts instead of 17.
type RaydiumAmmV4SwapAccounts struct {
	TokenProgram                solana.PublicKey  `json:"token_program"`
	Amm                         solana.PublicKey  `json:"amm"`
	AmmAuthority                solana.PublicKey  `json:"amm_authority"`
	AmmOpenOrders               solana.PublicKey  `json:"amm_open_orders"`
	AmmTargetOrders             *solana.PublicKey `json:"amm_target_orders"`
	PoolCoinTokenAccount        solana.PublicKey  `json:"pool_coin_token_account"`
	PoolPcTokenAccount          solana.PublicKey  `json:"pool_pc_token_account"`
	SerumProgram                solana.PublicKey  `json:"serum_program"`
	SerumMarket                 solana.PublicKey  `json:"serum_market"`
	SerumBids                   solana.PublicKey  `json:"serum_bids"`
	SerumAsks                   solana.PublicKey  `json:"serum_asks"`
	SerumEventQueue             solana.PublicKey  `json:"serum_event_queue"`
	SerumCoinVaultAccount       solana.PublicKey  `json:"serum_coin_vault_account"`
	SerumPcVaultAccount         solana.PublicKey  `json:"serum_pc_vault_account"`
	SerumVaultSigner            solana.PublicKey  `json:"serum_vault_signer"`
	UserSourceTokenAccount      solana.PublicKey  `json:"user_source_token_account"`
	UserDestinationTokenAccount solana.PublicKey  `json:"user_destination_token_account"`
	UserSourceOwner             solana.PublicKey  `json:"user_source_owner"`
}

type RaydiumAmmV4SwapInstruction struct {
	envelope
	RaydiumAmmV4SwapAmounts
	RaydiumAmmV4SwapAccounts
	baseOut bool
}

func DecodeRaydiumAmmV4SwapBaseIn(data []byte, accounts []solana.PublicKey) (*RaydiumAmmV4SwapInstruction, error) {
	var args struct {
		AmountIn         uint64
		MinimumAmountOut uint64
	}
	if err := decodeWire(data, RaydiumAmmV4SwapMinLen, &args); err != nil {
		return nil, fmt.Errorf("error unmarshaling AMM v4 swap_base_in: %w", err)
	}
	ix := &RaydiumAmmV4SwapInstruction{
		RaydiumAmmV4SwapAmounts: RaydiumAmmV4SwapAmounts{AmountIn: args.AmountIn, MinimumAmountOut: args.MinimumAmountOut},
	}
	if err := ix.readAccounts(accounts); err != nil {
		return nil, err
	}
	return ix, nil
}

func DecodeRaydiumAmmV4SwapBaseOut(data []byte, accounts []solana.PublicKey) (*RaydiumAmmV4SwapInstruction, error) {
	var args struct {
		MaxAmountIn uint64
		AmountOut   uint64
	}
	if err := decodeWire(data, RaydiumAmmV4SwapMinLen, &args); err != nil {
		return nil, fmt.Errorf("error unmarshaling AMM v4 swap_base_out: %w", err)
	}
	ix := &RaydiumAmmV4SwapInstruction{
		RaydiumAmmV4SwapAmounts: RaydiumAmmV4SwapAmounts{MaxAmountIn: args.MaxAmountIn, AmountOut: args.AmountOut},
		baseOut:                 true,
	}
	if err := ix.readAccounts(accounts); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *RaydiumAmmV4SwapInstruction) readAccounts(accounts []solana.PublicKey) error {
	keys := accounts
	if len(accounts) >= raydiumAmmV4SwapAccountsWithTarget {
		target := accounts[raydiumAmmV4SwapTargetOrdersAccount]
		ix.AmmTargetOrders = &target
		keys = make([]solana.PublicKey, 0, len(accounts)-1)
		keys = append(keys, accounts[:raydiumAmmV4SwapTargetOrdersAccount]...)
		keys = append(keys, accounts[raydiumAmmV4SwapTargetOrdersAccount+1:]...)
	}
	if err := assignAccounts(&ix.RaydiumAmmV4SwapAccounts, keys, RaydiumAmmV4SwapMinAccounts); err != nil {
		return fmt.Errorf("error reading AMM v4 swap accounts: %w", err)
	}
	return nil
}

func (ix RaydiumAmmV4SwapInstruction) EventType() EventType {
	if ix.baseOut {
		return RaydiumAmmV4SwapBaseOut
	}
	return RaydiumAmmV4SwapBaseIn
}

func (ix RaydiumAmmV4SwapInstruction) Protocol() Protocol { return RAYDIUM_AMM_V4 }

func (ix RaydiumAmmV4SwapInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix RaydiumAmmV4SwapInstruction) MergeableFields() []Field {
	return fieldsOf(ix.RaydiumAmmV4SwapAmounts, ix.RaydiumAmmV4SwapAccounts)
}

type RaydiumAmmV4DepositData struct {
	MaxCoinAmount uint64 `json:"max_coin_amount"`
	MaxPcAmount   uint64 `json:"max_pc_amount"`
	BaseSide      uint64 `json:"base_side"`
}

type RaydiumAmmV4DepositAccounts struct {
	TokenProgram         solana.PublicKey `json:"token_program"`
	Amm                  solana.PublicKey `json:"amm"`
	AmmAuthority         solana.PublicKey `json:"amm_authority"`
	AmmOpenOrders        solana.PublicKey `json:"amm_open_orders"`
	AmmTargetOrders      solana.PublicKey `json:"amm_target_orders"`
	LpMintAddress        solana.PublicKey `json:"lp_mint_address"`
	PoolCoinTokenAccount solana.PublicKey `json:"pool_coin_token_account"`
	PoolPcTokenAccount   solana.PublicKey `json:"pool_pc_token_account"`
	SerumMarket          solana.PublicKey `json:"serum_market"`
	UserCoinTokenAccount solana.PublicKey `json:"user_coin_token_account"`
	UserPcTokenAccount   solana.PublicKey `json:"user_pc_token_account"`
	UserLpTokenAccount   solana.PublicKey `json:"user_lp_token_account"`
	UserOwner            solana.PublicKey `json:"user_owner"`
	SerumEventQueue      solana.PublicKey `json:"serum_event_queue"`
}

type RaydiumAmmV4DepositInstruction struct {
	envelope
	RaydiumAmmV4DepositData
	RaydiumAmmV4DepositAccounts
}

func DecodeRaydiumAmmV4Deposit(data []byte, accounts []solana.PublicKey) (*RaydiumAmmV4DepositInstruction, error) {
	ix := &RaydiumAmmV4DepositInstruction{}
	if err := decodeWire(data, RaydiumAmmV4DepositMinLen, &ix.RaydiumAmmV4DepositData); err != nil {
		return nil, fmt.Errorf("error unmarshaling AMM v4 deposit: %w", err)
	}
	if err := assignAccounts(&ix.RaydiumAmmV4DepositAccounts, accounts, RaydiumAmmV4DepositMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading AMM v4 deposit accounts: %w", err)
	}
	return ix, nil
}

func (ix RaydiumAmmV4DepositInstruction) EventType() EventType { return RaydiumAmmV4Deposit }
func (ix RaydiumAmmV4DepositInstruction) Protocol() Protocol   { return RAYDIUM_AMM_V4 }

func (ix RaydiumAmmV4DepositInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix RaydiumAmmV4DepositInstruction) MergeableFields() []Field {
	return fieldsOf(ix.RaydiumAmmV4DepositData, ix.RaydiumAmmV4DepositAccounts)
}

type RaydiumAmmV4Initialize2Data struct {
	Nonce          uint8  `json:"nonce"`
	OpenTime       uint64 `json:"open_time"`
	InitPcAmount   uint64 `json:"init_pc_amount"`
	InitCoinAmount uint64 `json:"init_coin_amount"`
}

type RaydiumAmmV4Initialize2Accounts struct {
	TokenProgram              solana.PublicKey `json:"token_program"`
	SplAssociatedTokenAccount solana.PublicKey `json:"spl_associated_token_account"`
	SystemProgram             solana.PublicKey `json:"system_program"`
	Rent                      solana.PublicKey `json:"rent"`
	Amm                       solana.PublicKey `json:"amm"`
	AmmAuthority              solana.PublicKey `json:"amm_authority"`
	AmmOpenOrders             solana.PublicKey `json:"amm_open_orders"`
	LpMint                    solana.PublicKey `json:"lp_mint"`
	CoinMint                  solana.PublicKey `json:"coin_mint"`
	PcMint                    solana.PublicKey `json:"pc_mint"`
	PoolCoinTokenAccount      solana.PublicKey `json:"pool_coin_token_account"`
	PoolPcTokenAccount        solana.PublicKey `json:"pool_pc_token_account"`
	PoolWithdrawQueue         solana.PublicKey `json:"pool_withdraw_queue"`
	AmmTargetOrders           solana.PublicKey `json:"amm_target_orders"`
	PoolTempLp                solana.PublicKey `json:"pool_temp_lp"`
	SerumProgram              solana.PublicKey `json:"serum_program"`
	SerumMarket               solana.PublicKey `json:"serum_market"`
	UserWallet                solana.PublicKey `json:"user_wallet"`
	UserTokenCoin             solana.PublicKey `json:"user_token_coin"`
	UserTokenPc               solana.PublicKey `json:"user_token_pc"`
	UserLpTokenAccount        solana.PublicKey `json:"user_lp_token_account"`
}

type RaydiumAmmV4Initialize2Instruction struct {
	envelope
	RaydiumAmmV4Initialize2Data
	RaydiumAmmV4Initialize2Accounts
}

func DecodeRaydiumAmmV4Initialize2(data []byte, accounts []solana.PublicKey) (*RaydiumAmmV4Initialize2Instruction, error) {
	ix := &RaydiumAmmV4Initialize2Instruction{}
	if err := decodeWire(data, RaydiumAmmV4Initialize2MinLen, &ix.RaydiumAmmV4Initialize2Data); err != nil {
		return nil, fmt.Errorf("error unmarshaling AMM v4 initialize2: %w", err)
	}
	if err := assignAccounts(&ix.RaydiumAmmV4Initialize2Accounts, accounts, RaydiumAmmV4Initialize2MinAccounts); err != nil {
		return nil, fmt.Errorf("error reading AMM v4 initialize2 accounts: %w", err)
	}
	return ix, nil
}

func (ix RaydiumAmmV4Initialize2Instruction) EventType() EventType { return RaydiumAmmV4Initialize2 }
func (ix RaydiumAmmV4Initialize2Instruction) Protocol() Protocol   { return RAYDIUM_AMM_V4 }

func (ix RaydiumAmmV4Initialize2Instruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix RaydiumAmmV4Initialize2Instruction) MergeableFields() []Field {
	return fieldsOf(ix.RaydiumAmmV4Initialize2Data, ix.RaydiumAmmV4Initialize2Accounts)
}

type RaydiumAmmV4WithdrawData struct {
	Amount uint64 `json:"amount"`
}

// RaydiumAmmV4WithdrawAccounts ends with the serum bids and asks, which only
// some clients pass.
type RaydiumAmmV4WithdrawAccounts struct {
	TokenProgram           solana.PublicKey `json:"token_program"`
	Amm                    solana.PublicKey `json:"amm"`
	AmmAuthority           solana.PublicKey `json:"amm_authority"`
	AmmOpenOrders          solana.PublicKey `json:"amm_open_orders"`
	AmmTargetOrders        solana.PublicKey `json:"amm_target_orders"`
	LpMintAddress          solana.PublicKey `json:"lp_mint_address"`
	PoolCoinTokenAccount   solana.PublicKey `json:"pool_coin_token_account"`
	PoolPcTokenAccount     solana.PublicKey `json:"pool_pc_token_account"`
	PoolWithdrawQueue      solana.PublicKey `json:"pool_withdraw_queue"`
	PoolTempLpTokenAccount solana.PublicKey `json:"pool_temp_lp_token_account"`
	SerumProgram           solana.PublicKey `json:"serum_program"`
	SerumMarket            solana.PublicKey `json:"serum_market"`
	SerumCoinVaultAccount  solana.PublicKey `json:"serum_coin_vault_account"`
	SerumPcVaultAccount    solana.PublicKey `json:"serum_pc_vault_account"`
	SerumVaultSigner       solana.PublicKey `json:"serum_vault_signer"`
	UserLpTokenAccount     solana.PublicKey `json:"user_lp_token_account"`
	UserCoinTokenAccount   solana.PublicKey `json:"user_coin_token_account"`
	UserPcTokenAccount     solana.PublicKey `json:"user_pc_token_account"`
	UserOwner              solana.PublicKey `json:"user_owner"`
	SerumEventQueue        solana.PublicKey `json:"serum_event_queue"`
	SerumBids              solana.PublicKey `json:"serum_bids"`
	SerumAsks              solana.PublicKey `json:"serum_asks"`
}

type RaydiumAmmV4WithdrawInstruction struct {
	envelope
	RaydiumAmmV4WithdrawData
	RaydiumAmmV4WithdrawAccounts
}

func DecodeRaydiumAmmV4Withdraw(data []byte, accounts []solana.PublicKey) (*RaydiumAmmV4WithdrawInstruction, error) {
	ix := &RaydiumAmmV4WithdrawInstruction{}
	if err := decodeWire(data, RaydiumAmmV4WithdrawMinLen, &ix.RaydiumAmmV4WithdrawData); err != nil {
		return nil, fmt.Errorf("error unmarshaling AMM v4 withdraw: %w", err)
	}
	if err := assignAccounts(&ix.RaydiumAmmV4WithdrawAccounts, accounts, RaydiumAmmV4WithdrawMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading AMM v4 withdraw accounts: %w", err)
	}
	return ix, nil
}

func (ix RaydiumAmmV4WithdrawInstruction) EventType() EventType { return RaydiumAmmV4Withdraw }
func (ix RaydiumAmmV4WithdrawInstruction) Protocol() Protocol   { return RAYDIUM_AMM_V4 }

func (ix RaydiumAmmV4WithdrawInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix RaydiumAmmV4WithdrawInstruction) MergeableFields() []Field {
	return fieldsOf(ix.RaydiumAmmV4WithdrawData, ix.RaydiumAmmV4WithdrawAccounts)
}

type RaydiumAmmV4WithdrawPnlAccounts struct {
	TokenProgram          solana.PublicKey `json:"token_program"`
	Amm                   solana.PublicKey `json:"amm"`
	AmmConfig             solana.PublicKey `json:"amm_config"`
	AmmAuthority          solana.PublicKey `json:"amm_authority"`
	AmmOpenOrders         solana.PublicKey `json:"amm_open_orders"`
	PoolCoinTokenAccount  solana.PublicKey `json:"pool_coin_token_account"`
	PoolPcTokenAccount    solana.PublicKey `json:"pool_pc_token_account"`
	CoinPnlTokenAccount   solana.PublicKey `json:"coin_pnl_token_account"`
	PcPnlTokenAccount     solana.PublicKey `json:"pc_pnl_token_account"`
	PnlOwnerAccount       solana.PublicKey `json:"pnl_owner_account"`
	AmmTargetOrders       solana.PublicKey `json:"amm_target_orders"`
	SerumProgram          solana.PublicKey `json:"serum_program"`
	SerumMarket           solana.PublicKey `json:"serum_market"`
	SerumEventQueue       solana.PublicKey `json:"serum_event_queue"`
	SerumCoinVaultAccount solana.PublicKey `json:"serum_coin_vault_account"`
	SerumPcVaultAccount   solana.PublicKey `json:"serum_pc_vault_account"`
	SerumVaultSigner      solana.PublicKey `json:"serum_vault_signer"`
}

// RaydiumAmmV4WithdrawPnlInstruction has no data beyond its tag.
type RaydiumAmmV4WithdrawPnlInstruction struct {
	envelope
	RaydiumAmmV4WithdrawPnlAccounts
}

func DecodeRaydiumAmmV4WithdrawPnl(_ []byte, accounts []solana.PublicKey) (*RaydiumAmmV4WithdrawPnlInstruction, error) {
	ix := &RaydiumAmmV4WithdrawPnlInstruction{}
	if err := assignAccounts(&ix.RaydiumAmmV4WithdrawPnlAccounts, accounts, RaydiumAmmV4WithdrawPnlMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading AMM v4 withdraw_pnl accounts: %w", err)
	}
	return ix, nil
}

func (ix RaydiumAmmV4WithdrawPnlInstruction) EventType() EventType { return RaydiumAmmV4WithdrawPnl }
func (ix RaydiumAmmV4WithdrawPnlInstruction) Protocol() Protocol   { return RAYDIUM_AMM_V4 }

func (ix RaydiumAmmV4WithdrawPnlInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix RaydiumAmmV4WithdrawPnlInstruction) MergeableFields() []Field {
	return fieldsOf(ix.RaydiumAmmV4WithdrawPnlAccounts)
}
