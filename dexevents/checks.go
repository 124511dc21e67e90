// checks.go
package dexevents

import (
	"bytes"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Treat both Token and Token-2022 as token program
func (p *Parser) isTokenProgram(pk solana.PublicKey) bool {
	return pk.Equals(solana.TokenProgramID) || pk.Equals(solana.Token2022ProgramID)
}

func (p *Parser) validIndexes(instr solana.CompiledInstruction, n int) bool {
	if int(instr.ProgramIDIndex) >= len(p.allAccountKeys) || len(instr.Accounts) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if int(instr.Accounts[i]) >= len(p.allAccountKeys) {
			return false
		}
	}
	return true
}

// isTransfer: Token Program "Transfer" (3)
func (p *Parser) isTransfer(instr solana.CompiledInstruction) bool {
	if !p.validIndexes(instr, 3) || len(instr.Data) < 9 {
		return false
	}
	if !p.allAccountKeys[instr.ProgramIDIndex].Equals(solana.TokenProgramID) {
		return false
	}
	return instr.Data[0] == 3
}

// isTransferCheck: Token or Token-2022 "TransferChecked" (12)
func (p *Parser) isTransferCheck(instr solana.CompiledInstruction) bool {
	if !p.validIndexes(instr, 4) || len(instr.Data) < 9 {
		return false
	}
	if !p.isTokenProgram(p.allAccountKeys[instr.ProgramIDIndex]) {
		return false
	}
	return instr.Data[0] == 12
}

// isEventInstruction: Anchor emit_cpi self-invocation
func (p *Parser) isEventInstruction(progID solana.PublicKey, data []byte) bool {
	return progID.Equals(PUMPSWAP_PROGRAM_ID) && len(data) >= 16 && bytes.Equal(data[:8], EventIxTag[:])
}

// instructionAccounts resolves account indexes; ok is false if any is out of range.
func (p *Parser) instructionAccounts(instr solana.CompiledInstruction) ([]solana.PublicKey, bool) {
	keys := make([]solana.PublicKey, 0, len(instr.Accounts))
	for _, idx := range instr.Accounts {
		if int(idx) >= len(p.allAccountKeys) {
			return nil, false
		}
		keys = append(keys, p.allAccountKeys[idx])
	}
	return keys, true
}

func (p *Parser) convertRPCToSolanaInstruction(rpcInst rpc.CompiledInstruction) solana.CompiledInstruction {
	return solana.CompiledInstruction{
		ProgramIDIndex: rpcInst.ProgramIDIndex,
		Accounts:       rpcInst.Accounts,
		Data:           rpcInst.Data,
	}
}

func (p *Parser) getInnerInstructions(index int) []solana.CompiledInstruction {
	if p.txMeta == nil {
		return nil
	}
	for _, inner := range p.txMeta.InnerInstructions {
		if inner.Index == uint16(index) {
			out := make([]solana.CompiledInstruction, 0, len(inner.Instructions))
			for _, ri := range inner.Instructions {
				out = append(out, p.convertRPCToSolanaInstruction(ri))
			}
			return out
		}
	}
	return nil
}
