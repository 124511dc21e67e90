package dexevents

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

type TransferInfo struct {
	Amount      uint64           `json:"amount"`
	Authority   solana.PublicKey `json:"authority"`
	Destination solana.PublicKey `json:"destination"`
	Source      solana.PublicKey `json:"source"`
}

// TransferData is one SPL token movement under an outer instruction.
// Mint is zero when neither side could be attributed.
type TransferData struct {
	Info       TransferInfo     `json:"info"`
	Type       string           `json:"type"`
	Mint       solana.PublicKey `json:"mint"`
	Decimals   uint8            `json:"decimals"`
	OuterIndex int              `json:"outerIndex"`
}

type TokenInfo struct {
	Mint     solana.PublicKey
	Decimals uint8
	// Owner is zero when no balance entry reported it.
	Owner solana.PublicKey
}

func (p *Parser) processTransfer(instr solana.CompiledInstruction) *TransferData {
	amount := binary.LittleEndian.Uint64(instr.Data[1:9])

	src := p.allAccountKeys[instr.Accounts[0]]
	dst := p.allAccountKeys[instr.Accounts[1]]

	// Prefer destination mint (usual case), else fall back to source mint.
	info := p.splTokenInfoMap[dst]
	if info.Mint.IsZero() {
		info = p.splTokenInfoMap[src]
	}

	return &TransferData{
		Info: TransferInfo{
			Amount:      amount,
			Source:      src,
			Destination: dst,
			Authority:   p.allAccountKeys[instr.Accounts[2]],
		},
		Type:     "transfer",
		Mint:     info.Mint,
		Decimals: info.Decimals,
	}
}

func (p *Parser) processTransferCheck(instr solana.CompiledInstruction) *TransferData {
	amount := binary.LittleEndian.Uint64(instr.Data[1:9])

	td := &TransferData{
		Info: TransferInfo{
			Amount:      amount,
			Source:      p.allAccountKeys[instr.Accounts[0]],
			Destination: p.allAccountKeys[instr.Accounts[2]],
			Authority:   p.allAccountKeys[instr.Accounts[3]],
		},
		Type: "transferChecked",
		Mint: p.allAccountKeys[instr.Accounts[1]],
	}
	if len(instr.Data) >= 10 {
		td.Decimals = instr.Data[9]
	}
	return td
}

// transfersUnder collects the token movements emitted under one outer instruction.
func (p *Parser) transfersUnder(index int) []TransferData {
	var out []TransferData
	for _, inst := range p.getInnerInstructions(index) {
		var td *TransferData
		switch {
		case p.isTransferCheck(inst):
			td = p.processTransferCheck(inst)
		case p.isTransfer(inst):
			td = p.processTransfer(inst)
		}
		if td != nil {
			td.OuterIndex = index
			out = append(out, *td)
		}
	}
	return out
}

// extractSPLTokenInfo builds token-account → (mint, decimals, owner) from PRE
// and POST balances, then propagates mints across transfers with one known side.
func (p *Parser) extractSPLTokenInfo() {
	infos := make(map[solana.PublicKey]TokenInfo)

	seed := func(balances []TokenBalance) {
		for _, b := range balances {
			if b.Mint.IsZero() || int(b.AccountIndex) >= len(p.allAccountKeys) {
				continue
			}
			ti := TokenInfo{Mint: b.Mint, Decimals: b.Decimals}
			if b.Owner != nil {
				ti.Owner = *b.Owner
			}
			infos[p.allAccountKeys[b.AccountIndex]] = ti
		}
	}
	seed(p.raw.PreTokenBalances)
	seed(p.raw.PostTokenBalances)

	backfill := func(instr solana.CompiledInstruction) {
		switch {
		case p.isTransferCheck(instr):
			mint := p.allAccountKeys[instr.Accounts[1]]
			for _, k := range []solana.PublicKey{p.allAccountKeys[instr.Accounts[0]], p.allAccountKeys[instr.Accounts[2]]} {
				if ti := infos[k]; ti.Mint.IsZero() {
					ti.Mint = mint
					infos[k] = ti
				}
			}
		case p.isTransfer(instr):
			src, dst := p.allAccountKeys[instr.Accounts[0]], p.allAccountKeys[instr.Accounts[1]]
			sInfo, dInfo := infos[src], infos[dst]
			switch {
			case !sInfo.Mint.IsZero() && dInfo.Mint.IsZero():
				dInfo.Mint, dInfo.Decimals = sInfo.Mint, sInfo.Decimals
				infos[dst] = dInfo
			case !dInfo.Mint.IsZero() && sInfo.Mint.IsZero():
				sInfo.Mint, sInfo.Decimals = dInfo.Mint, dInfo.Decimals
				infos[src] = sInfo
			}
		}
	}

	for _, instr := range p.txInfo.Message.Instructions {
		backfill(instr)
	}
	if p.txMeta != nil {
		for _, innerSet := range p.txMeta.InnerInstructions {
			for _, instr := range innerSet.Instructions {
				backfill(p.convertRPCToSolanaInstruction(instr))
			}
		}
	}

	p.splTokenInfoMap = infos
}

// swapContextFor derives the signer's input and output mints from the
// transfers under an outer instruction. It returns nil unless both sides
// are known and differ.
func (p *Parser) swapContextFor(transfers []TransferData) *SwapContext {
	if len(p.allAccountKeys) == 0 {
		return nil
	}
	signer := p.allAccountKeys[0]
	ownedBySigner := func(acct solana.PublicKey) bool {
		return p.splTokenInfoMap[acct].Owner.Equals(signer)
	}

	var from, to solana.PublicKey
	for _, t := range transfers {
		if t.Mint.IsZero() {
			continue
		}
		if from.IsZero() && (t.Info.Authority.Equals(signer) || ownedBySigner(t.Info.Source)) {
			from = t.Mint
		}
		if to.IsZero() && ownedBySigner(t.Info.Destination) {
			to = t.Mint
		}
	}
	if from.IsZero() || to.IsZero() || from.Equals(to) {
		return nil
	}
	return &SwapContext{FromMint: from, ToMint: to}
}
