package dexevents

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TokenBalance is one pre or post token balance entry of a transaction.
type TokenBalance struct {
	AccountIndex uint16
	Mint         solana.PublicKey
	// Owner is nil when the node did not report it.
	Owner    *solana.PublicKey
	Amount   string
	Decimals uint8
}

// RawTransaction is the balance view of a transaction used by the
// classifier. Nil slices mean the node reported no such data, which is
// different from an empty list.
type RawTransaction struct {
	AccountKeys       []solana.PublicKey
	PreBalances       []uint64
	PostBalances      []uint64
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// NewRawTransaction builds the view from a decoded transaction and its meta.
// Loaded lookup-table addresses follow the static keys, writable first.
func NewRawTransaction(tx *solana.Transaction, meta *rpc.TransactionMeta) *RawTransaction {
	raw := &RawTransaction{}
	if tx != nil {
		raw.AccountKeys = append(raw.AccountKeys, tx.Message.AccountKeys...)
	}
	if meta == nil {
		return raw
	}
	raw.AccountKeys = append(raw.AccountKeys, meta.LoadedAddresses.Writable...)
	raw.AccountKeys = append(raw.AccountKeys, meta.LoadedAddresses.ReadOnly...)
	raw.PreBalances = meta.PreBalances
	raw.PostBalances = meta.PostBalances
	raw.PreTokenBalances = convertTokenBalances(meta.PreTokenBalances)
	raw.PostTokenBalances = convertTokenBalances(meta.PostTokenBalances)
	return raw
}

func convertTokenBalances(in []rpc.TokenBalance) []TokenBalance {
	if in == nil {
		return nil
	}
	out := make([]TokenBalance, 0, len(in))
	for _, b := range in {
		tb := TokenBalance{
			AccountIndex: b.AccountIndex,
			Mint:         b.Mint,
			Owner:        b.Owner,
		}
		if b.UiTokenAmount != nil {
			tb.Amount = b.UiTokenAmount.Amount
			tb.Decimals = b.UiTokenAmount.Decimals
		}
		out = append(out, tb)
	}
	return out
}

// HasBalances reports whether native balance arrays are present.
func (t *RawTransaction) HasBalances() bool {
	return t != nil && t.PreBalances != nil && t.PostBalances != nil
}

// IndexOf returns the position of key in the account list.
func (t *RawTransaction) IndexOf(key solana.PublicKey) (int, bool) {
	for i, k := range t.AccountKeys {
		if k.Equals(key) {
			return i, true
		}
	}
	return 0, false
}
