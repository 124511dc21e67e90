package dexevents

import (
	"bytes"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type (
	logDecodeFn     func(payload []byte) (UnifiedEvent, error)
	ixDecodeFn      func(data []byte, accounts []solana.PublicKey) (UnifiedEvent, error)
	accountDecodeFn func(snap AccountSnapshot, payload []byte) (UnifiedEvent, error)
)

// Entry maps one discriminator to a record kind.
type Entry struct {
	Prefix    []byte
	EventType EventType
	// MinLen is the payload length the decoder requires after the prefix
	// (or including it, when KeepPrefix is set).
	MinLen int
	// KeepPrefix hands the matched bytes to the decoder as part of the payload.
	KeepPrefix bool

	decodeLog     logDecodeFn
	decodeIx      ixDecodeFn
	decodeAccount accountDecodeFn
}

// Table holds the discriminator entries of one program, per category.
type Table struct {
	Protocol Protocol
	Program  solana.PublicKey
	entries  map[Category][]Entry
}

func (t *Table) Entries(cat Category) []Entry { return t.entries[cat] }

func (t *Table) lookup(cat Category, data []byte) (Entry, bool) {
	for _, e := range t.entries[cat] {
		if len(data) >= len(e.Prefix) && bytes.Equal(data[:len(e.Prefix)], e.Prefix) {
			return e, true
		}
	}
	return Entry{}, false
}

// Registry dispatches raw bytes to decoders by program ID. It is read-only
// once built and safe for concurrent use.
type Registry struct {
	tables map[solana.PublicKey]*Table
	order  []solana.PublicKey
}

func NewRegistry(tables ...*Table) (*Registry, error) {
	r := &Registry{tables: make(map[solana.PublicKey]*Table, len(tables))}
	for _, t := range tables {
		if _, dup := r.tables[t.Program]; dup {
			return nil, fmt.Errorf("duplicate table for program %s", t.Program)
		}
		r.tables[t.Program] = t
		r.order = append(r.order, t.Program)
	}
	return r, nil
}

var defaultRegistry = func() *Registry {
	r, err := NewRegistry(PumpSwapTable(), RaydiumCpmmTable(), RaydiumAmmV4Table())
	if err != nil {
		panic(err)
	}
	return r
}()

// DefaultRegistry covers PumpSwap, Raydium CPMM and Raydium AMM v4.
func DefaultRegistry() *Registry { return defaultRegistry }

func (r *Registry) Tables() []*Table {
	out := make([]*Table, 0, len(r.order))
	for _, pk := range r.order {
		out = append(out, r.tables[pk])
	}
	return out
}

func (r *Registry) Supports(program solana.PublicKey) bool {
	_, ok := r.tables[program]
	return ok
}

func (r *Registry) Protocol(program solana.PublicKey) (Protocol, bool) {
	t, ok := r.tables[program]
	if !ok {
		return "", false
	}
	return t.Protocol, true
}

// Lookup returns the record kind whose prefix matches data exactly.
func (r *Registry) Lookup(program solana.PublicKey, cat Category, data []byte) (EventType, bool) {
	t, ok := r.tables[program]
	if !ok {
		return "", false
	}
	e, ok := t.lookup(cat, data)
	return e.EventType, ok
}

func (r *Registry) entry(program solana.PublicKey, cat Category, data []byte) (Entry, []byte, error) {
	t, ok := r.tables[program]
	if !ok {
		return Entry{}, nil, fmt.Errorf("%w: %s", ErrUnknownProgram, program)
	}
	e, ok := t.lookup(cat, data)
	if !ok {
		return Entry{}, nil, fmt.Errorf("%w: %s %s", ErrUnknownDiscriminator, t.Protocol, cat)
	}
	if e.KeepPrefix {
		return e, data, nil
	}
	return e, data[len(e.Prefix):], nil
}

func (r *Registry) DecodeLog(program solana.PublicKey, data []byte) (UnifiedEvent, error) {
	e, payload, err := r.entry(program, CategoryLog, data)
	if err != nil {
		return nil, err
	}
	return e.decodeLog(payload)
}

func (r *Registry) DecodeInstruction(program solana.PublicKey, data []byte, accounts []solana.PublicKey) (UnifiedEvent, error) {
	e, payload, err := r.entry(program, CategoryInstruction, data)
	if err != nil {
		return nil, err
	}
	return e.decodeIx(payload, accounts)
}

// DecodeAccount dispatches on the snapshot's owner program.
func (r *Registry) DecodeAccount(snap AccountSnapshot) (UnifiedEvent, error) {
	e, payload, err := r.entry(snap.Owner, CategoryAccount, snap.Data)
	if err != nil {
		return nil, err
	}
	return e.decodeAccount(snap, payload)
}

// ------ entry constructors ------

func logEntry[T UnifiedEvent](prefix []byte, et EventType, minLen int, fn func([]byte) (*T, error)) Entry {
	return Entry{
		Prefix:    prefix,
		EventType: et,
		MinLen:    minLen,
		decodeLog: func(payload []byte) (UnifiedEvent, error) {
			v, err := fn(payload)
			if err != nil {
				return nil, err
			}
			return *v, nil
		},
	}
}

func ixEntry[T UnifiedEvent](prefix []byte, et EventType, minLen int, fn func([]byte, []solana.PublicKey) (*T, error)) Entry {
	return Entry{
		Prefix:    prefix,
		EventType: et,
		MinLen:    minLen,
		decodeIx: func(data []byte, accounts []solana.PublicKey) (UnifiedEvent, error) {
			v, err := fn(data, accounts)
			if err != nil {
				return nil, err
			}
			return *v, nil
		},
	}
}

func accountEntry[T UnifiedEvent](prefix []byte, et EventType, minLen int, fn func(AccountSnapshot, []byte) (*T, error)) Entry {
	return Entry{
		Prefix:    prefix,
		EventType: et,
		MinLen:    minLen,
		decodeAccount: func(snap AccountSnapshot, payload []byte) (UnifiedEvent, error) {
			v, err := fn(snap, payload)
			if err != nil {
				return nil, err
			}
			return *v, nil
		},
	}
}

func PumpSwapTable() *Table {
	return &Table{
		Protocol: PUMPSWAP,
		Program:  PUMPSWAP_PROGRAM_ID,
		entries: map[Category][]Entry{
			CategoryLog: {
				logEntry(PumpSwapBuyEventDiscriminator[:], PumpSwapBuy, PumpSwapBuyEventMinLen, DecodePumpSwapBuyEvent),
				logEntry(PumpSwapSellEventDiscriminator[:], PumpSwapSell, PumpSwapSellEventMinLen, DecodePumpSwapSellEvent),
				logEntry(PumpSwapCreatePoolEventDiscriminator[:], PumpSwapCreatePool, PumpSwapCreatePoolEventMinLen, DecodePumpSwapCreatePoolEvent),
				logEntry(PumpSwapDepositEventDiscriminator[:], PumpSwapDeposit, PumpSwapDepositEventMinLen, DecodePumpSwapDepositEvent),
				logEntry(PumpSwapWithdrawEventDiscriminator[:], PumpSwapWithdraw, PumpSwapWithdrawEventMinLen, DecodePumpSwapWithdrawEvent),
			},
			CategoryInstruction: {
				ixEntry(PumpSwapBuyIxDiscriminator[:], PumpSwapBuyIx, PumpSwapTradeIxMinLen, DecodePumpSwapBuyInstruction),
				ixEntry(PumpSwapSellIxDiscriminator[:], PumpSwapSellIx, PumpSwapTradeIxMinLen, DecodePumpSwapSellInstruction),
				ixEntry(PumpSwapCreatePoolIxDiscriminator[:], PumpSwapCreatePoolIx, PumpSwapCreatePoolIxMinLen, DecodePumpSwapCreatePoolInstruction),
				ixEntry(PumpSwapDepositIxDiscriminator[:], PumpSwapDepositIx, PumpSwapLiquidityIxMinLen, DecodePumpSwapDepositInstruction),
				ixEntry(PumpSwapWithdrawIxDiscriminator[:], PumpSwapWithdrawIx, PumpSwapLiquidityIxMinLen, DecodePumpSwapWithdrawInstruction),
			},
			CategoryAccount: {
				accountEntry(PumpSwapGlobalConfigDiscriminator[:], PumpSwapGlobalConfigUpdate, PumpSwapGlobalConfigMinLen, DecodePumpSwapGlobalConfigAccount),
				accountEntry(PumpSwapPoolDiscriminator[:], PumpSwapPoolUpdate, PumpSwapPoolMinLen, DecodePumpSwapPoolAccount),
			},
		},
	}
}

func RaydiumCpmmTable() *Table {
	return &Table{
		Protocol: RAYDIUM_CPMM,
		Program:  RAYDIUM_CPMM_PROGRAM_ID,
		entries: map[Category][]Entry{
			CategoryInstruction: {
				ixEntry(RaydiumCpmmSwapBaseInputDiscriminator[:], RaydiumCpmmSwapBaseInput, RaydiumCpmmSwapMinLen, DecodeRaydiumCpmmSwapBaseInput),
				ixEntry(RaydiumCpmmSwapBaseOutputDiscriminator[:], RaydiumCpmmSwapBaseOutput, RaydiumCpmmSwapMinLen, DecodeRaydiumCpmmSwapBaseOutput),
				ixEntry(RaydiumCpmmDepositDiscriminator[:], RaydiumCpmmDeposit, RaydiumCpmmDepositMinLen, DecodeRaydiumCpmmDeposit),
				ixEntry(RaydiumCpmmInitializeDiscriminator[:], RaydiumCpmmInitialize, RaydiumCpmmInitializeMinLen, DecodeRaydiumCpmmInitialize),
				ixEntry(RaydiumCpmmWithdrawDiscriminator[:], RaydiumCpmmWithdraw, RaydiumCpmmWithdrawMinLen, DecodeRaydiumCpmmWithdraw),
			},
			CategoryAccount: {
				accountEntry(RaydiumCpmmAmmConfigDiscriminator[:], RaydiumCpmmAmmConfigUpdate, RaydiumCpmmAmmConfigMinLen, DecodeRaydiumCpmmAmmConfigAccount),
				accountEntry(RaydiumCpmmPoolStateDiscriminator[:], RaydiumCpmmPoolStateUpdate, RaydiumCpmmPoolStateMinLen, DecodeRaydiumCpmmPoolStateAccount),
			},
		},
	}
}

func RaydiumAmmV4Table() *Table {
	amm := accountEntry([]byte{RaydiumAmmV4AmmInfoTag}, RaydiumAmmV4AmmInfoUpdate, RaydiumAmmV4AmmInfoMinLen, DecodeRaydiumAmmV4AmmInfoAccount)
	amm.KeepPrefix = true
	return &Table{
		Protocol: RAYDIUM_AMM_V4,
		Program:  RAYDIUM_AMM_V4_PROGRAM_ID,
		entries: map[Category][]Entry{
			CategoryInstruction: {
				ixEntry([]byte{RaydiumAmmV4SwapBaseInTag}, RaydiumAmmV4SwapBaseIn, RaydiumAmmV4SwapMinLen, DecodeRaydiumAmmV4SwapBaseIn),
				ixEntry([]byte{RaydiumAmmV4SwapBaseOutTag}, RaydiumAmmV4SwapBaseOut, RaydiumAmmV4SwapMinLen, DecodeRaydiumAmmV4SwapBaseOut),
				ixEntry([]byte{RaydiumAmmV4DepositTag}, RaydiumAmmV4Deposit, RaydiumAmmV4DepositMinLen, DecodeRaydiumAmmV4Deposit),
				ixEntry([]byte{RaydiumAmmV4Initialize2Tag}, RaydiumAmmV4Initialize2, RaydiumAmmV4Initialize2MinLen, DecodeRaydiumAmmV4Initialize2),
				ixEntry([]byte{RaydiumAmmV4WithdrawTag}, RaydiumAmmV4Withdraw, RaydiumAmmV4WithdrawMinLen, DecodeRaydiumAmmV4Withdraw),
				ixEntry([]byte{RaydiumAmmV4WithdrawPnlTag}, RaydiumAmmV4WithdrawPnl, RaydiumAmmV4WithdrawPnlMinLen, DecodeRaydiumAmmV4WithdrawPnl),
			},
			CategoryAccount: {amm},
		},
	}
}
