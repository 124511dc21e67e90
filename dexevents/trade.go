package dexevents

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type TradeDirection string

const (
	Buy       TradeDirection = "Buy"
	Sell      TradeDirection = "Sell"
	TokenSwap TradeDirection = "TokenSwap"
	Arbitrage TradeDirection = "Arbitrage"
)

// TradeFact is one normalized user trade. Amounts are raw base units.
type TradeFact struct {
	Direction  TradeDirection   `json:"direction"`
	User       solana.PublicKey `json:"user"`
	InputMint  solana.PublicKey `json:"inputMint"`
	OutputMint solana.PublicKey `json:"outputMint"`
	// TokenMint is the non-WSOL side; WSOL for Arbitrage.
	TokenMint solana.PublicKey `json:"tokenMint"`
	AmountIn  uint64           `json:"amountIn"`
	AmountOut uint64           `json:"amountOut"`
	Price     *float64         `json:"price,omitempty"`
	Platform  Protocol         `json:"platform"`
}

// SolAmount is the WSOL side in whole SOL, for display only.
func (t TradeFact) SolAmount() float64 {
	switch t.Direction {
	case Buy:
		return float64(t.AmountIn) / LAMPORTS_PER_SOL
	case Sell, Arbitrage:
		return float64(t.AmountOut) / LAMPORTS_PER_SOL
	default:
		return 0
	}
}

type Strategy string

const (
	StrategyDirect       Strategy = "direct"
	StrategyContext      Strategy = "context"
	StrategyBalanceDelta Strategy = "balance_delta"
)

// Resolution reports which strategy produced the trade. When the balance
// delta path could not find the user among the transaction accounts it
// measured the fee payer instead and sets UsedFeePayerFallback.
type Resolution struct {
	Trade                TradeFact `json:"trade"`
	Strategy             Strategy  `json:"strategy"`
	UsedFeePayerFallback bool      `json:"usedFeePayerFallback"`
}

type mintPair struct {
	in  solana.PublicKey
	out solana.PublicKey
}

// swapView is what the resolver needs from a swap-like record.
type swapView struct {
	platform  Protocol
	user      solana.PublicKey
	direct    *mintPair
	amountIn  uint64
	amountOut uint64
	// only restricts the direction a record kind can produce on the field
	// and context paths; empty allows both.
	only TradeDirection
}

func viewOf(ev UnifiedEvent) (swapView, bool) {
	switch e := ev.(type) {
	case PumpSwapBuyEvent:
		v := swapView{platform: PUMPSWAP, user: e.User, amountIn: e.UserQuoteAmountIn, amountOut: e.BaseAmountOut, only: Buy}
		if accts, ok := e.Context(); ok {
			v.direct = &mintPair{in: accts.QuoteMint, out: accts.BaseMint}
		}
		return v, true
	case PumpSwapSellEvent:
		v := swapView{platform: PUMPSWAP, user: e.User, amountIn: e.BaseAmountIn, amountOut: e.UserQuoteAmountOut, only: Sell}
		if accts, ok := e.Context(); ok {
			v.direct = &mintPair{in: accts.BaseMint, out: accts.QuoteMint}
		}
		return v, true
	case RaydiumCpmmSwapInstruction:
		return swapView{
			platform:  RAYDIUM_CPMM,
			user:      e.Payer,
			direct:    &mintPair{in: e.InputTokenMint, out: e.OutputTokenMint},
			amountIn:  firstNonZero(e.AmountIn, e.MaxAmountIn),
			amountOut: firstNonZero(e.AmountOut, e.MinimumAmountOut),
		}, true
	case RaydiumAmmV4SwapInstruction:
		return swapView{
			platform:  RAYDIUM_AMM_V4,
			user:      e.UserSourceOwner,
			amountIn:  firstNonZero(e.AmountIn, e.MaxAmountIn),
			amountOut: firstNonZero(e.AmountOut, e.MinimumAmountOut),
		}, true
	default:
		return swapView{}, false
	}
}

func firstNonZero(a, b uint64) uint64 {
	if a != 0 {
		return a
	}
	return b
}

// directionOf accepts a pair with exactly one WSOL side.
func directionOf(p mintPair) (TradeDirection, bool) {
	inSol, outSol := p.in.Equals(WSOL_MINT), p.out.Equals(WSOL_MINT)
	switch {
	case inSol && !outSol:
		return Buy, true
	case outSol && !inSol:
		return Sell, true
	default:
		return "", false
	}
}

func (v swapView) fromPair(p mintPair) (TradeFact, bool) {
	dir, ok := directionOf(p)
	if !ok || (v.only != "" && v.only != dir) {
		return TradeFact{}, false
	}
	token := p.out
	if dir == Sell {
		token = p.in
	}
	return TradeFact{
		Direction:  dir,
		User:       v.user,
		InputMint:  p.in,
		OutputMint: p.out,
		TokenMint:  token,
		AmountIn:   v.amountIn,
		AmountOut:  v.amountOut,
		Price:      tradePrice(dir, v.amountIn, v.amountOut),
		Platform:   v.platform,
	}, true
}

// Resolve derives a trade from a swap-like record, trying the record's own
// mints, then the metadata SwapContext, then balance deltas of the attached
// transaction. A record that yields no trade returns an error wrapping
// ErrNoTrade. Resolve is pure; repeated calls give equal results.
func Resolve(ev UnifiedEvent) (*Resolution, error) {
	v, ok := viewOf(ev)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a swap", ErrNoTrade, ev.EventType())
	}

	if v.direct != nil {
		if fact, ok := v.fromPair(*v.direct); ok {
			return &Resolution{Trade: fact, Strategy: StrategyDirect}, nil
		}
	}

	meta := ev.Metadata()
	if meta != nil && meta.SwapContext != nil {
		p := mintPair{in: meta.SwapContext.FromMint, out: meta.SwapContext.ToMint}
		if fact, ok := v.fromPair(p); ok {
			return &Resolution{Trade: fact, Strategy: StrategyContext}, nil
		}
	}

	if meta != nil && meta.Transaction != nil {
		c, err := ClassifyTrade(v.user.String(), meta.Transaction)
		if err != nil {
			return nil, err
		}
		token := c.OutputMint
		if c.Direction == Sell {
			token = c.InputMint
		}
		return &Resolution{
			Trade: TradeFact{
				Direction:  c.Direction,
				User:       v.user,
				InputMint:  c.InputMint,
				OutputMint: c.OutputMint,
				TokenMint:  token,
				AmountIn:   c.AmountIn,
				AmountOut:  c.AmountOut,
				Price:      c.Price,
				Platform:   v.platform,
			},
			Strategy:             StrategyBalanceDelta,
			UsedFeePayerFallback: c.UsedFeePayerFallback,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s has no usable mints, context or transaction", ErrNoTrade, ev.EventType())
}

// IsDecline reports whether err is a normal "not a trade" outcome.
func IsDecline(err error) bool { return errors.Is(err, ErrNoTrade) }

// tradePrice gives WSOL per token for Buy and Sell, raw in/out for
// TokenSwap. Callers needing a true TokenSwap price must rescale by decimals.
func tradePrice(dir TradeDirection, in, out uint64) *float64 {
	if in == 0 || out == 0 {
		return nil
	}
	var p float64
	switch dir {
	case Buy:
		p = float64(in) / LAMPORTS_PER_SOL / float64(out)
	case Sell:
		p = float64(out) / LAMPORTS_PER_SOL / float64(in)
	case TokenSwap:
		p = float64(in) / float64(out)
	default:
		return nil
	}
	return &p
}
