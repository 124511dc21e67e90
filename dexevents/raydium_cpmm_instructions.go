package dexevents

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	RaydiumCpmmSwapBaseInputDiscriminator  = [8]byte{143, 190, 90, 218, 196, 30, 51, 222}
	RaydiumCpmmSwapBaseOutputDiscriminator = [8]byte{55, 217, 98, 86, 163, 74, 180, 173}
	RaydiumCpmmDepositDiscriminator        = [8]byte{242, 35, 198, 137, 82, 225, 242, 182}
	RaydiumCpmmInitializeDiscriminator     = [8]byte{175, 175, 109, 31, 13, 152, 155, 237}
	RaydiumCpmmWithdrawDiscriminator       = [8]byte{183, 18, 70, 156, 148, 109, 161, 34}
)

const (
	RaydiumCpmmSwapMinLen            = 16
	RaydiumCpmmSwapMinAccounts       = 13
	RaydiumCpmmDepositMinLen         = 24
	RaydiumCpmmDepositMinAccounts    = 13
	RaydiumCpmmWithdrawMinLen        = 24
	RaydiumCpmmWithdrawMinAccounts   = 14
	RaydiumCpmmInitializeMinLen      = 24
	RaydiumCpmmInitializeMinAccounts = 20
)

// RaydiumCpmmSwapAmounts covers both swap variants. Base-input swaps leave
// MaxAmountIn and AmountOut zero; base-output swaps leave AmountIn and
// MinimumAmountOut zero.
type RaydiumCpmmSwapAmounts struct {
	AmountIn         uint64 `json:"amount_in"`
	MinimumAmountOut uint64 `json:"minimum_amount_out"`
	MaxAmountIn      uint64 `json:"max_amount_in"`
	AmountOut        uint64 `json:"amount_out"`
}

type RaydiumCpmmSwapAccounts struct {
	Payer              solana.PublicKey `json:"payer"`
	Authority          solana.PublicKey `json:"authority"`
	AmmConfig          solana.PublicKey `json:"amm_config"`
	PoolState          solana.PublicKey `json:"pool_state"`
	InputTokenAccount  solana.PublicKey `json:"input_token_account"`
	OutputTokenAccount solana.PublicKey `json:"output_token_account"`
	InputVault         solana.PublicKey `json:"input_vault"`
	OutputVault        solana.PublicKey `json:"output_vault"`
	InputTokenProgram  solana.PublicKey `json:"input_token_program"`
	OutputTokenProgram solana.PublicKey `json:"output_token_program"`
	InputTokenMint     solana.PublicKey `json:"input_token_mint"`
	OutputTokenMint    solana.PublicKey `json:"output_token_mint"`
	ObservationState   solana.PublicKey `json:"observation_state"`
}

type RaydiumCpmmSwapInstruction struct {
	envelope
	RaydiumCpmmSwapAmounts
	RaydiumCpmmSwapAccounts
	baseOutput bool
}

func DecodeRaydiumCpmmSwapBaseInput(data []byte, accounts []solana.PublicKey) (*RaydiumCpmmSwapInstruction, error) {
	var args struct {
		AmountIn         uint64
		MinimumAmountOut uint64
	}
	if err := decodeWire(data, RaydiumCpmmSwapMinLen, &args); err != nil {
		return nil, fmt.Errorf("error unmarshaling CPMM swap_base_input: %w", err)
	}
	ix := &RaydiumCpmmSwapInstruction{
		RaydiumCpmmSwapAmounts: RaydiumCpmmSwapAmounts{AmountIn: args.AmountIn, MinimumAmountOut: args.MinimumAmountOut},
	}
	if err := assignAccounts(&ix.RaydiumCpmmSwapAccounts, accounts, RaydiumCpmmSwapMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading CPMM swap accounts: %w", err)
	}
	return ix, nil
}

func DecodeRaydiumCpmmSwapBaseOutput(data []byte, accounts []solana.PublicKey) (*RaydiumCpmmSwapInstruction, error) {
	var args struct {
		MaxAmountIn uint64
		AmountOut   uint64
	}
	if err := decodeWire(data, RaydiumCpmmSwapMinLen, &args); err != nil {
		return nil, fmt.Errorf("error unmarshaling CPMM swap_base_output: %w", err)
	}
	ix := &RaydiumCpmmSwapInstruction{
		RaydiumCpmmSwapAmounts: RaydiumCpmmSwapAmounts{MaxAmountIn: args.MaxAmountIn, AmountOut: args.AmountOut},
		baseOutput:             true,
	}
	if err := assignAccounts(&ix.RaydiumCpmmSwapAccounts, accounts, RaydiumCpmmSwapMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading CPMM swap accounts: %w", err)
	}
	return ix, nil
}

func (ix RaydiumCpmmSwapInstruction) EventType() EventType {
	if ix.baseOutput {
		return RaydiumCpmmSwapBaseOutput
	}
	return RaydiumCpmmSwapBaseInput
}

func (ix RaydiumCpmmSwapInstruction) Protocol() Protocol { return RAYDIUM_CPMM }

func (ix RaydiumCpmmSwapInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix RaydiumCpmmSwapInstruction) MergeableFields() []Field {
	return fieldsOf(ix.RaydiumCpmmSwapAmounts, ix.RaydiumCpmmSwapAccounts)
}

type RaydiumCpmmDepositAccounts struct {
	Owner            solana.PublicKey `json:"owner"`
	Authority        solana.PublicKey `json:"authority"`
	PoolState        solana.PublicKey `json:"pool_state"`
	OwnerLpToken     solana.PublicKey `json:"owner_lp_token"`
	Token0Account    solana.PublicKey `json:"token0_account"`
	Token1Account    solana.PublicKey `json:"token1_account"`
	Token0Vault      solana.PublicKey `json:"token0_vault"`
	Token1Vault      solana.PublicKey `json:"token1_vault"`
	TokenProgram     solana.PublicKey `json:"token_program"`
	TokenProgram2022 solana.PublicKey `json:"token_program2022"`
	Vault0Mint       solana.PublicKey `json:"vault0_mint"`
	Vault1Mint       solana.PublicKey `json:"vault1_mint"`
	LpMint           solana.PublicKey `json:"lp_mint"`
}

type RaydiumCpmmDepositData struct {
	LpTokenAmount       uint64 `json:"lp_token_amount"`
	MaximumToken0Amount uint64 `json:"maximum_token0_amount"`
	MaximumToken1Amount uint64 `json:"maximum_token1_amount"`
}

type RaydiumCpmmDepositInstruction struct {
	envelope
	RaydiumCpmmDepositData
	RaydiumCpmmDepositAccounts
}

func DecodeRaydiumCpmmDeposit(data []byte, accounts []solana.PublicKey) (*RaydiumCpmmDepositInstruction, error) {
	ix := &RaydiumCpmmDepositInstruction{}
	if err := decodeWire(data, RaydiumCpmmDepositMinLen, &ix.RaydiumCpmmDepositData); err != nil {
		return nil, fmt.Errorf("error unmarshaling CPMM deposit: %w", err)
	}
	if err := assignAccounts(&ix.RaydiumCpmmDepositAccounts, accounts, RaydiumCpmmDepositMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading CPMM deposit accounts: %w", err)
	}
	return ix, nil
}

func (ix RaydiumCpmmDepositInstruction) EventType() EventType { return RaydiumCpmmDeposit }
func (ix RaydiumCpmmDepositInstruction) Protocol() Protocol   { return RAYDIUM_CPMM }

func (ix RaydiumCpmmDepositInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix RaydiumCpmmDepositInstruction) MergeableFields() []Field {
	return fieldsOf(ix.RaydiumCpmmDepositData, ix.RaydiumCpmmDepositAccounts)
}

type RaydiumCpmmWithdrawAccounts struct {
	Owner            solana.PublicKey `json:"owner"`
	Authority        solana.PublicKey `json:"authority"`
	PoolState        solana.PublicKey `json:"pool_state"`
	OwnerLpToken     solana.PublicKey `json:"owner_lp_token"`
	Token0Account    solana.PublicKey `json:"token0_account"`
	Token1Account    solana.PublicKey `json:"token1_account"`
	Token0Vault      solana.PublicKey `json:"token0_vault"`
	Token1Vault      solana.PublicKey `json:"token1_vault"`
	TokenProgram     solana.PublicKey `json:"token_program"`
	TokenProgram2022 solana.PublicKey `json:"token_program2022"`
	Vault0Mint       solana.PublicKey `json:"vault0_mint"`
	Vault1Mint       solana.PublicKey `json:"vault1_mint"`
	LpMint           solana.PublicKey `json:"lp_mint"`
	MemoProgram      solana.PublicKey `json:"memo_program"`
}

type RaydiumCpmmWithdrawData struct {
	LpTokenAmount       uint64 `json:"lp_token_amount"`
	MinimumToken0Amount uint64 `json:"minimum_token0_amount"`
	MinimumToken1Amount uint64 `json:"minimum_token1_amount"`
}

type RaydiumCpmmWithdrawInstruction struct {
	envelope
	RaydiumCpmmWithdrawData
	RaydiumCpmmWithdrawAccounts
}

func DecodeRaydiumCpmmWithdraw(data []byte, accounts []solana.PublicKey) (*RaydiumCpmmWithdrawInstruction, error) {
	ix := &RaydiumCpmmWithdrawInstruction{}
	if err := decodeWire(data, RaydiumCpmmWithdrawMinLen, &ix.RaydiumCpmmWithdrawData); err != nil {
		return nil, fmt.Errorf("error unmarshaling CPMM withdraw: %w", err)
	}
	if err := assignAccounts(&ix.RaydiumCpmmWithdrawAccounts, accounts, RaydiumCpmmWithdrawMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading CPMM withdraw accounts: %w", err)
	}
	return ix, nil
}

func (ix RaydiumCpmmWithdrawInstruction) EventType() EventType { return RaydiumCpmmWithdraw }
func (ix RaydiumCpmmWithdrawInstruction) Protocol() Protocol   { return RAYDIUM_CPMM }

func (ix RaydiumCpmmWithdrawInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix RaydiumCpmmWithdrawInstruction) MergeableFields() []Field {
	return fieldsOf(ix.RaydiumCpmmWithdrawData, ix.RaydiumCpmmWithdrawAccounts)
}

type RaydiumCpmmInitializeData struct {
	InitAmount0 uint64 `json:"init_amount0"`
	InitAmount1 uint64 `json:"init_amount1"`
	OpenTime    uint64 `json:"open_time"`
}

type RaydiumCpmmInitializeAccounts struct {
	Creator                solana.PublicKey `json:"creator"`
	AmmConfig              solana.PublicKey `json:"amm_config"`
	Authority              solana.PublicKey `json:"authority"`
	PoolState              solana.PublicKey `json:"pool_state"`
	Token0Mint             solana.PublicKey `json:"token0_mint"`
	Token1Mint             solana.PublicKey `json:"token1_mint"`
	LpMint                 solana.PublicKey `json:"lp_mint"`
	CreatorToken0          solana.PublicKey `json:"creator_token0"`
	CreatorToken1          solana.PublicKey `json:"creator_token1"`
	CreatorLpToken         solana.PublicKey `json:"creator_lp_token"`
	Token0Vault            solana.PublicKey `json:"token0_vault"`
	Token1Vault            solana.PublicKey `json:"token1_vault"`
	CreatePoolFee          solana.PublicKey `json:"create_pool_fee"`
	ObservationState       solana.PublicKey `json:"observation_state"`
	TokenProgram           solana.PublicKey `json:"token_program"`
	Token0Program          solana.PublicKey `json:"token0_program"`
	Token1Program          solana.PublicKey `json:"token1_program"`
	AssociatedTokenProgram solana.PublicKey `json:"associated_token_program"`
	SystemProgram          solana.PublicKey `json:"system_program"`
	Rent                   solana.PublicKey `json:"rent"`
}

type RaydiumCpmmInitializeInstruction struct {
	envelope
	RaydiumCpmmInitializeData
	RaydiumCpmmInitializeAccounts
}

func DecodeRaydiumCpmmInitialize(data []byte, accounts []solana.PublicKey) (*RaydiumCpmmInitializeInstruction, error) {
	ix := &RaydiumCpmmInitializeInstruction{}
	if err := decodeWire(data, RaydiumCpmmInitializeMinLen, &ix.RaydiumCpmmInitializeData); err != nil {
		return nil, fmt.Errorf("error unmarshaling CPMM initialize: %w", err)
	}
	if err := assignAccounts(&ix.RaydiumCpmmInitializeAccounts, accounts, RaydiumCpmmInitializeMinAccounts); err != nil {
		return nil, fmt.Errorf("error reading CPMM initialize accounts: %w", err)
	}
	return ix, nil
}

func (ix RaydiumCpmmInitializeInstruction) EventType() EventType { return RaydiumCpmmInitialize }
func (ix RaydiumCpmmInitializeInstruction) Protocol() Protocol   { return RAYDIUM_CPMM }

func (ix RaydiumCpmmInitializeInstruction) ApplyMetadata(meta EventMetadata) (UnifiedEvent, error) {
	env, err := ix.envelope.apply(meta)
	if err != nil {
		return ix, err
	}
	ix.envelope = env
	return ix, nil
}

func (ix RaydiumCpmmInitializeInstruction) MergeableFields() []Field {
	return fieldsOf(ix.RaydiumCpmmInitializeData, ix.RaydiumCpmmInitializeAccounts)
}
