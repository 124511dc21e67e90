package dexevents

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	PUMPSWAP_PROGRAM_ID       = solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA")
	RAYDIUM_CPMM_PROGRAM_ID   = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
	RAYDIUM_AMM_V4_PROGRAM_ID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")

	// WSOL_MINT is the reference asset for buy/sell classification.
	WSOL_MINT = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

// LAMPORTS_PER_SOL scales raw WSOL amounts to whole units for display.
const LAMPORTS_PER_SOL = 1_000_000_000

var (
	ErrDataTooShort         = errors.New("data too short")
	ErrMalformed            = errors.New("malformed data")
	ErrUnknownDiscriminator = errors.New("unknown discriminator")
	ErrUnknownProgram       = errors.New("unknown program")
	ErrMetadataApplied      = errors.New("metadata already applied")
	ErrContextFilled        = errors.New("context fields already filled")
	ErrNoTrade              = errors.New("not a qualifying trade")
)

type Protocol string

const (
	PUMPSWAP       Protocol = "PumpSwap"
	RAYDIUM_CPMM   Protocol = "RaydiumCpmm"
	RAYDIUM_AMM_V4 Protocol = "RaydiumAmmV4"
)

// Category selects which discriminator table of a protocol applies.
type Category int

const (
	CategoryLog Category = iota
	CategoryInstruction
	CategoryAccount
)

func (c Category) String() string {
	switch c {
	case CategoryLog:
		return "log"
	case CategoryInstruction:
		return "instruction"
	case CategoryAccount:
		return "account"
	default:
		return "unknown"
	}
}

type EventType string

const (
	PumpSwapBuy                EventType = "PumpSwapBuy"
	PumpSwapSell               EventType = "PumpSwapSell"
	PumpSwapCreatePool         EventType = "PumpSwapCreatePool"
	PumpSwapDeposit            EventType = "PumpSwapDeposit"
	PumpSwapWithdraw           EventType = "PumpSwapWithdraw"
	PumpSwapBuyIx              EventType = "PumpSwapBuyInstruction"
	PumpSwapSellIx             EventType = "PumpSwapSellInstruction"
	PumpSwapCreatePoolIx       EventType = "PumpSwapCreatePoolInstruction"
	PumpSwapDepositIx          EventType = "PumpSwapDepositInstruction"
	PumpSwapWithdrawIx         EventType = "PumpSwapWithdrawInstruction"
	PumpSwapGlobalConfigUpdate EventType = "PumpSwapGlobalConfigAccount"
	PumpSwapPoolUpdate         EventType = "PumpSwapPoolAccount"

	RaydiumCpmmSwapBaseInput   EventType = "RaydiumCpmmSwapBaseInput"
	RaydiumCpmmSwapBaseOutput  EventType = "RaydiumCpmmSwapBaseOutput"
	RaydiumCpmmDeposit         EventType = "RaydiumCpmmDeposit"
	RaydiumCpmmWithdraw        EventType = "RaydiumCpmmWithdraw"
	RaydiumCpmmInitialize      EventType = "RaydiumCpmmInitialize"
	RaydiumCpmmAmmConfigUpdate EventType = "RaydiumCpmmAmmConfigAccount"
	RaydiumCpmmPoolStateUpdate EventType = "RaydiumCpmmPoolStateAccount"

	RaydiumAmmV4SwapBaseIn    EventType = "RaydiumAmmV4SwapBaseIn"
	RaydiumAmmV4SwapBaseOut   EventType = "RaydiumAmmV4SwapBaseOut"
	RaydiumAmmV4Deposit       EventType = "RaydiumAmmV4Deposit"
	RaydiumAmmV4Initialize2   EventType = "RaydiumAmmV4Initialize2"
	RaydiumAmmV4Withdraw      EventType = "RaydiumAmmV4Withdraw"
	RaydiumAmmV4WithdrawPnl   EventType = "RaydiumAmmV4WithdrawPnl"
	RaydiumAmmV4AmmInfoUpdate EventType = "RaydiumAmmV4AmmInfoAccount"
)

// AccountSnapshot is a raw account as returned by getAccountInfo or an account stream.
type AccountSnapshot struct {
	Pubkey     solana.PublicKey
	Owner      solana.PublicKey
	Lamports   uint64
	Executable bool
	RentEpoch  uint64
	Data       []byte
}

// AccountHeader carries the account envelope next to the decoded state.
type AccountHeader struct {
	Pubkey     solana.PublicKey `json:"pubkey"`
	Executable bool             `json:"executable"`
	Lamports   uint64           `json:"lamports"`
	Owner      solana.PublicKey `json:"owner"`
	RentEpoch  uint64           `json:"rent_epoch"`
}

func headerOf(snap AccountSnapshot) AccountHeader {
	return AccountHeader{
		Pubkey:     snap.Pubkey,
		Executable: snap.Executable,
		Lamports:   snap.Lamports,
		Owner:      snap.Owner,
		RentEpoch:  snap.RentEpoch,
	}
}

func (h AccountHeader) fields() []Field {
	return []Field{
		{"pubkey", h.Pubkey},
		{"executable", h.Executable},
		{"lamports", h.Lamports},
		{"owner", h.Owner},
		{"rent_epoch", h.RentEpoch},
	}
}
