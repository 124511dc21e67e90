package dexevents

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// BalanceChange is the net movement of one asset for the target user.
// Combined marks the synthetic native entry: lamports plus user-owned WSOL.
type BalanceChange struct {
	Mint     solana.PublicKey `json:"mint"`
	Delta    *big.Int         `json:"delta"`
	Combined bool             `json:"combined,omitempty"`
}

// BalanceChangeSet lists the combined native entry first, then every
// non-zero token delta in the order the mints first appear.
type BalanceChangeSet struct {
	User      solana.PublicKey `json:"user"`
	UserIndex int              `json:"userIndex"`
	// UsedFeePayerFallback is set when the user is not in the account list
	// and index 0 was used instead. The result is then a guess.
	UsedFeePayerFallback bool            `json:"usedFeePayerFallback"`
	Changes              []BalanceChange `json:"changes"`
}

func (s *BalanceChangeSet) Combined() (*big.Int, bool) {
	if s == nil || len(s.Changes) == 0 || !s.Changes[0].Combined {
		return nil, false
	}
	return s.Changes[0].Delta, true
}

// TokenChanges returns the entries after the combined one.
func (s *BalanceChangeSet) TokenChanges() []BalanceChange {
	if s == nil || len(s.Changes) == 0 {
		return nil
	}
	return s.Changes[1:]
}

type mintBalance struct {
	pre  *big.Int
	post *big.Int
}

// BalanceChanges computes the user's per-asset deltas. A transaction
// without balance data yields an empty set and no error.
func BalanceChanges(user string, tx *RawTransaction) (*BalanceChangeSet, error) {
	userKey, err := solana.PublicKeyFromBase58(user)
	if err != nil {
		return nil, fmt.Errorf("%w: user %q: %v", ErrMalformed, user, err)
	}
	set := &BalanceChangeSet{User: userKey}
	if !tx.HasBalances() {
		return set, nil
	}

	idx, found := tx.IndexOf(userKey)
	if !found {
		idx = 0
		set.UsedFeePayerFallback = true
	}
	set.UserIndex = idx
	if idx >= len(tx.PreBalances) || idx >= len(tx.PostBalances) {
		return set, nil
	}

	native := new(big.Int).SetUint64(tx.PostBalances[idx])
	native.Sub(native, new(big.Int).SetUint64(tx.PreBalances[idx]))

	wsol := new(big.Int)
	var order []solana.PublicKey
	byMint := make(map[solana.PublicKey]*mintBalance)

	accumulate := func(balances []TokenBalance, post bool) error {
		for _, b := range balances {
			if b.Owner == nil || !b.Owner.Equals(userKey) {
				continue
			}
			amt, ok := new(big.Int).SetString(b.Amount, 10)
			if !ok {
				return fmt.Errorf("%w: token amount %q", ErrMalformed, b.Amount)
			}
			if b.Mint.Equals(WSOL_MINT) {
				if post {
					wsol.Add(wsol, amt)
				} else {
					wsol.Sub(wsol, amt)
				}
				continue
			}
			mb, seen := byMint[b.Mint]
			if !seen {
				mb = &mintBalance{pre: new(big.Int), post: new(big.Int)}
				byMint[b.Mint] = mb
				order = append(order, b.Mint)
			}
			if post {
				mb.post.Add(mb.post, amt)
			} else {
				mb.pre.Add(mb.pre, amt)
			}
		}
		return nil
	}
	if err := accumulate(tx.PreTokenBalances, false); err != nil {
		return nil, err
	}
	if err := accumulate(tx.PostTokenBalances, true); err != nil {
		return nil, err
	}

	combined := new(big.Int).Add(native, wsol)
	set.Changes = append(set.Changes, BalanceChange{Mint: WSOL_MINT, Delta: combined, Combined: true})
	for _, mint := range order {
		mb := byMint[mint]
		delta := new(big.Int).Sub(mb.post, mb.pre)
		if delta.Sign() == 0 {
			continue
		}
		set.Changes = append(set.Changes, BalanceChange{Mint: mint, Delta: delta})
	}
	return set, nil
}

// Classification is a trade reconstructed from balance movements alone.
type Classification struct {
	Direction            TradeDirection
	InputMint            solana.PublicKey
	OutputMint           solana.PublicKey
	AmountIn             uint64
	AmountOut            uint64
	Price                *float64
	UsedFeePayerFallback bool
	Changes              *BalanceChangeSet
}

// ClassifyTrade applies the single-leg rules in order: Buy, Sell,
// TokenSwap, Arbitrage. Anything else returns ErrNoTrade.
func ClassifyTrade(user string, tx *RawTransaction) (*Classification, error) {
	set, err := BalanceChanges(user, tx)
	if err != nil {
		return nil, err
	}
	combined, ok := set.Combined()
	if !ok {
		return nil, fmt.Errorf("%w: no balance data", ErrNoTrade)
	}

	var received, spent []BalanceChange
	for _, c := range set.TokenChanges() {
		if c.Delta.Sign() > 0 {
			received = append(received, c)
		} else {
			spent = append(spent, c)
		}
	}

	out := &Classification{UsedFeePayerFallback: set.UsedFeePayerFallback, Changes: set}
	switch {
	case combined.Sign() < 0 && len(received) == 1 && len(spent) == 0:
		out.Direction = Buy
		out.InputMint, out.OutputMint = WSOL_MINT, received[0].Mint
		if out.AmountIn, err = absUint64(combined); err != nil {
			return nil, err
		}
		if out.AmountOut, err = absUint64(received[0].Delta); err != nil {
			return nil, err
		}
	case combined.Sign() > 0 && len(spent) == 1 && len(received) == 0:
		out.Direction = Sell
		out.InputMint, out.OutputMint = spent[0].Mint, WSOL_MINT
		if out.AmountIn, err = absUint64(spent[0].Delta); err != nil {
			return nil, err
		}
		if out.AmountOut, err = absUint64(combined); err != nil {
			return nil, err
		}
	case combined.Sign() == 0 && len(received) == 1 && len(spent) == 1:
		out.Direction = TokenSwap
		out.InputMint, out.OutputMint = spent[0].Mint, received[0].Mint
		if out.AmountIn, err = absUint64(spent[0].Delta); err != nil {
			return nil, err
		}
		if out.AmountOut, err = absUint64(received[0].Delta); err != nil {
			return nil, err
		}
	case combined.Sign() != 0 && len(received) == 0 && len(spent) == 0:
		out.Direction = Arbitrage
		out.InputMint, out.OutputMint = WSOL_MINT, WSOL_MINT
		if out.AmountOut, err = absUint64(combined); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d received, %d spent, combined %s", ErrNoTrade, len(received), len(spent), combined)
	}
	out.Price = tradePrice(out.Direction, out.AmountIn, out.AmountOut)
	return out, nil
}

func absUint64(v *big.Int) (uint64, error) {
	a := new(big.Int).Abs(v)
	if !a.IsUint64() {
		return 0, fmt.Errorf("%w: amount %s overflows u64", ErrMalformed, v)
	}
	return a.Uint64(), nil
}

// TradeInfoCalculated is the flat form of a Classification.
type TradeInfoCalculated struct {
	UserAddress string  `json:"user_address"`
	Direction   string  `json:"direction"`
	InputMint   string  `json:"input_mint"`
	OutputMint  string  `json:"output_mint"`
	AmountIn    uint64  `json:"amount_in"`
	AmountOut   uint64  `json:"amount_out"`
	Price       float64 `json:"price"`
}

func CalculateTradeInfo(user string, tx *RawTransaction) (*TradeInfoCalculated, error) {
	c, err := ClassifyTrade(user, tx)
	if err != nil {
		return nil, err
	}
	info := &TradeInfoCalculated{
		UserAddress: user,
		Direction:   string(c.Direction),
		InputMint:   c.InputMint.String(),
		OutputMint:  c.OutputMint.String(),
		AmountIn:    c.AmountIn,
		AmountOut:   c.AmountOut,
	}
	if c.Price != nil {
		info.Price = *c.Price
	}
	return info, nil
}
