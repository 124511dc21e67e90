// liquidity.go
package dexevents

// LiquidityOp represents add/remove-liquidity classification.
type LiquidityOp int

const (
	LiquidityNone LiquidityOp = iota
	LiquidityAdd
	LiquidityRemove
)

func (op LiquidityOp) String() string {
	switch op {
	case LiquidityAdd:
		return "add"
	case LiquidityRemove:
		return "remove"
	default:
		return "none"
	}
}

func (op LiquidityOp) MarshalText() ([]byte, error) { return []byte(op.String()), nil }

// LiquidityOf maps pool deposit and withdraw records to their direction.
// Pool creation counts as an add.
func LiquidityOf(ev UnifiedEvent) LiquidityOp {
	switch ev.EventType() {
	case PumpSwapDeposit, PumpSwapDepositIx, PumpSwapCreatePool, PumpSwapCreatePoolIx,
		RaydiumCpmmDeposit, RaydiumCpmmInitialize,
		RaydiumAmmV4Deposit, RaydiumAmmV4Initialize2:
		return LiquidityAdd
	case PumpSwapWithdraw, PumpSwapWithdrawIx,
		RaydiumCpmmWithdraw,
		RaydiumAmmV4Withdraw:
		return LiquidityRemove
	default:
		return LiquidityNone
	}
}

// ------ Token opcodes (SPL + Token-2022) ------
var (
	// 7=MintTo, 14=MintToChecked
	tokenMintOps = map[byte]struct{}{7: {}, 14: {}}
	// 8=Burn, 15=BurnChecked
	tokenBurnOps = map[byte]struct{}{8: {}, 15: {}}
)

// lpTokenOpsUnder reports whether any token mint or burn ran under the outer instruction.
func (p *Parser) lpTokenOpsUnder(index int) (minted, burned bool) {
	for _, inst := range p.getInnerInstructions(index) {
		if int(inst.ProgramIDIndex) >= len(p.allAccountKeys) || len(inst.Data) == 0 {
			continue
		}
		if !p.isTokenProgram(p.allAccountKeys[inst.ProgramIDIndex]) {
			continue
		}
		if _, hit := tokenMintOps[inst.Data[0]]; hit {
			minted = true
		}
		if _, hit := tokenBurnOps[inst.Data[0]]; hit {
			burned = true
		}
	}
	return minted, burned
}
