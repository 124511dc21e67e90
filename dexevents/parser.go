package dexevents

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

type Parser struct {
	txMeta          *rpc.TransactionMeta
	txInfo          *solana.Transaction
	allAccountKeys  solana.PublicKeySlice
	splTokenInfoMap map[solana.PublicKey]TokenInfo
	raw             *RawTransaction
	slot            uint64
	blockTime       int64

	// Registry defaults to DefaultRegistry when nil.
	Registry *Registry
	Log      *logrus.Logger
}

func NewTransactionParser(tx *rpc.GetTransactionResult) (*Parser, error) {
	if tx == nil || tx.Transaction == nil {
		return nil, fmt.Errorf("failed to get transaction: empty result")
	}
	txInfo, err := tx.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	parser, err := NewTransactionParserFromTransaction(txInfo, tx.Meta)
	if err != nil {
		return nil, err
	}
	var blockTime int64
	if tx.BlockTime != nil {
		blockTime = int64(*tx.BlockTime)
	}
	parser.SetBlock(tx.Slot, blockTime)
	return parser, nil
}

func NewTransactionParserFromTransaction(tx *solana.Transaction, txMeta *rpc.TransactionMeta) (*Parser, error) {
	if tx == nil {
		return nil, fmt.Errorf("failed to get transaction: nil transaction")
	}
	raw := NewRawTransaction(tx, txMeta)

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	parser := &Parser{
		txMeta:         txMeta,
		txInfo:         tx,
		allAccountKeys: raw.AccountKeys,
		raw:            raw,
		Log:            log,
	}
	parser.extractSPLTokenInfo()

	return parser, nil
}

// SetBlock records the slot and block time copied into every record's metadata.
func (p *Parser) SetBlock(slot uint64, blockTime int64) {
	p.slot = slot
	p.blockTime = blockTime
}

// RawTransaction returns the balance view attached to every record.
func (p *Parser) RawTransaction() *RawTransaction { return p.raw }

// ParsedEvent is one decoded record with its metadata applied. Trade is set
// for swap records that resolved; Liquidity for pool deposit/withdraw records.
type ParsedEvent struct {
	Event     UnifiedEvent
	Trade     *Resolution
	Liquidity LiquidityOp
	// LiquidityConfirmed is set when an LP mint or burn matching Liquidity
	// ran under the same outer instruction.
	LiquidityConfirmed bool
}

func (p *Parser) registry() *Registry {
	if p.Registry != nil {
		return p.Registry
	}
	return DefaultRegistry()
}

// ParseTransaction decodes every supported instruction and PumpSwap CPI event
// of the transaction in execution order. Records that fail to decode are
// logged and skipped.
func (p *Parser) ParseTransaction() ([]ParsedEvent, error) {
	var sig solana.Signature
	if len(p.txInfo.Signatures) > 0 {
		sig = p.txInfo.Signatures[0]
	}
	log := p.Log.WithField("signature", sig.String())
	receivedAt := time.Now()
	reg := p.registry()

	var parsed []ParsedEvent
	for i, outer := range p.txInfo.Message.Instructions {
		swapCtx := p.swapContextFor(p.transfersUnder(i))
		minted, burned := p.lpTokenOpsUnder(i)

		// last PumpSwap instruction seen under this outer index; CPI events
		// take their context fields from it
		var lastPump UnifiedEvent

		visit := func(instr solana.CompiledInstruction, inner int) {
			if int(instr.ProgramIDIndex) >= len(p.allAccountKeys) {
				log.WithFields(logrus.Fields{"outer": i, "inner": inner}).Debug("program index out of range")
				return
			}
			progID := p.allAccountKeys[instr.ProgramIDIndex]
			if !reg.Supports(progID) {
				return
			}

			var ev UnifiedEvent
			var err error
			if inner >= 0 && p.isEventInstruction(progID, instr.Data) {
				ev, err = reg.DecodeLog(progID, instr.Data)
				if err == nil && lastPump != nil {
					ev, err = fillFromInstruction(ev, lastPump)
				}
			} else {
				accounts, ok := p.instructionAccounts(instr)
				if !ok {
					log.WithFields(logrus.Fields{"outer": i, "inner": inner}).Warn("account index out of range")
					return
				}
				ev, err = reg.DecodeInstruction(progID, instr.Data, accounts)
				if err == nil && progID.Equals(PUMPSWAP_PROGRAM_ID) {
					lastPump = ev
				}
			}
			fields := logrus.Fields{"outer": i, "inner": inner, "program": progID.String()}
			if err != nil {
				if errors.Is(err, ErrUnknownDiscriminator) {
					log.WithFields(fields).Debug("skipping unknown discriminator")
				} else {
					log.WithFields(fields).WithError(err).Warn("failed to decode")
				}
				return
			}

			merged, err := ev.ApplyMetadata(EventMetadata{
				Signature:   sig,
				Slot:        p.slot,
				BlockTime:   p.blockTime,
				ReceivedAt:  receivedAt,
				Program:     progID,
				OuterIndex:  i,
				InnerIndex:  inner,
				SwapContext: swapCtx,
				Transaction: p.raw,
			})
			if err != nil {
				log.WithFields(fields).WithError(err).Warn("failed to apply metadata")
				return
			}

			pe := ParsedEvent{Event: merged, Liquidity: LiquidityOf(merged)}
			switch pe.Liquidity {
			case LiquidityAdd:
				pe.LiquidityConfirmed = minted
			case LiquidityRemove:
				pe.LiquidityConfirmed = burned
			}
			if _, ok := viewOf(merged); ok {
				res, err := Resolve(merged)
				switch {
				case err == nil:
					pe.Trade = res
				case IsDecline(err):
					log.WithFields(fields).WithField("event", merged.EventType()).Debugf("no trade: %v", err)
				default:
					log.WithFields(fields).WithError(err).Warn("failed to resolve trade")
				}
			}
			parsed = append(parsed, pe)
		}

		visit(outer, -1)
		for j, inner := range p.getInnerInstructions(i) {
			visit(inner, j)
		}
	}

	return parsed, nil
}

// Transfers lists the SPL token movements of every outer instruction.
func (p *Parser) Transfers() []TransferData {
	var out []TransferData
	for i := range p.txInfo.Message.Instructions {
		out = append(out, p.transfersUnder(i)...)
	}
	return out
}

// fillFromInstruction copies the accounts a PumpSwap CPI event lacks from the
// instruction that emitted it. A mismatched pair leaves the event untouched.
func fillFromInstruction(ev, ix UnifiedEvent) (UnifiedEvent, error) {
	switch e := ev.(type) {
	case PumpSwapBuyEvent:
		if src, ok := ix.(PumpSwapBuyInstruction); ok {
			return e.WithContext(src.TradeAccounts())
		}
	case PumpSwapSellEvent:
		if src, ok := ix.(PumpSwapSellInstruction); ok {
			return e.WithContext(src.TradeAccounts())
		}
	case PumpSwapCreatePoolEvent:
		if src, ok := ix.(PumpSwapCreatePoolInstruction); ok {
			return e.WithContext(src.UserPoolTokenAccount)
		}
	case PumpSwapDepositEvent:
		if src, ok := ix.(PumpSwapDepositInstruction); ok {
			return e.WithContext(src.PoolMints())
		}
	case PumpSwapWithdrawEvent:
		if src, ok := ix.(PumpSwapWithdrawInstruction); ok {
			return e.WithContext(src.PoolMints())
		}
	}
	return ev, nil
}
