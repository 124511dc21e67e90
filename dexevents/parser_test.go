package dexevents

import (
	"io"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// account indexes of the synthetic buy transaction
const (
	ixUser = iota
	ixPool
	ixGlobalConfig
	ixBaseMint
	ixWsol
	ixUserBaseAta
	ixUserQuoteAta
	ixPoolBaseAta
	ixPoolQuoteAta
	ixFeeRecipient
	ixFeeRecipientAta
	ixTokenProgram
	ixSystemProgram
	ixAtaProgram
	ixEventAuthority
	ixPumpSwap
	ixCreatorVaultAta
	ixCreatorVaultAuthority
	ixCpmm
	numKeys
)

func syntheticKeys() []solana.PublicKey {
	keys := testKeys(500, numKeys)
	keys[ixUser] = testUser
	keys[ixPool] = testPool
	keys[ixBaseMint] = testBaseMint
	keys[ixWsol] = WSOL_MINT
	keys[ixTokenProgram] = solana.TokenProgramID
	keys[ixSystemProgram] = solana.SystemProgramID
	keys[ixPumpSwap] = PUMPSWAP_PROGRAM_ID
	keys[ixCpmm] = RAYDIUM_CPMM_PROGRAM_ID
	return keys
}

func transferIx(src, dst, authority uint16, amount uint64) rpc.CompiledInstruction {
	return rpc.CompiledInstruction{
		ProgramIDIndex: ixTokenProgram,
		Accounts:       []uint16{src, dst, authority},
		Data:           (&le{}).u8(3).u64(amount).bytes(),
	}
}

func owned(idx uint16, mint solana.PublicKey, owner solana.PublicKey, amount string) rpc.TokenBalance {
	o := owner
	return rpc.TokenBalance{
		AccountIndex:  idx,
		Mint:          mint,
		Owner:         &o,
		UiTokenAmount: &rpc.UiTokenAmount{Amount: amount, Decimals: 6},
	}
}

// syntheticBuy is an outer PumpSwap buy with its token transfers and the
// self-CPI BuyEvent underneath.
func syntheticBuy() (*solana.Transaction, *rpc.TransactionMeta) {
	buyData := withPrefix(PumpSwapBuyIxDiscriminator[:], (&le{}).u64(5_000).u64(1_100_000_000).bytes())
	tx := &solana.Transaction{
		Signatures: []solana.Signature{{1, 2, 3}},
		Message: solana.Message{
			AccountKeys: syntheticKeys(),
			Header:      solana.MessageHeader{NumRequiredSignatures: 1},
			Instructions: []solana.CompiledInstruction{{
				ProgramIDIndex: ixPumpSwap,
				Accounts: []uint16{
					ixPool, ixUser, ixGlobalConfig, ixBaseMint, ixWsol,
					ixUserBaseAta, ixUserQuoteAta, ixPoolBaseAta, ixPoolQuoteAta,
					ixFeeRecipient, ixFeeRecipientAta, ixTokenProgram, ixTokenProgram,
					ixSystemProgram, ixAtaProgram, ixEventAuthority, ixPumpSwap,
					ixCreatorVaultAta, ixCreatorVaultAuthority,
				},
				Data: buyData,
			}},
		},
	}

	eventData := withPrefix(PumpSwapBuyEventDiscriminator[:], buyEventPayload(5_000, 1_000_000_000, testUser))
	meta := &rpc.TransactionMeta{
		PreBalances:  make([]uint64, numKeys),
		PostBalances: make([]uint64, numKeys),
		PreTokenBalances: []rpc.TokenBalance{
			owned(ixUserBaseAta, testBaseMint, testUser, "0"),
			owned(ixUserQuoteAta, WSOL_MINT, testUser, "1000000000"),
			owned(ixPoolBaseAta, testBaseMint, testPool, "100000"),
			owned(ixPoolQuoteAta, WSOL_MINT, testPool, "20000000000"),
		},
		PostTokenBalances: []rpc.TokenBalance{
			owned(ixUserBaseAta, testBaseMint, testUser, "5000"),
			owned(ixUserQuoteAta, WSOL_MINT, testUser, "0"),
			owned(ixPoolBaseAta, testBaseMint, testPool, "95000"),
			owned(ixPoolQuoteAta, WSOL_MINT, testPool, "21000000000"),
		},
		InnerInstructions: []rpc.InnerInstruction{{
			Index: 0,
			Instructions: []rpc.CompiledInstruction{
				transferIx(ixUserQuoteAta, ixPoolQuoteAta, ixUser, 1_000_000_000),
				transferIx(ixPoolBaseAta, ixUserBaseAta, ixPool, 5_000),
				{ProgramIDIndex: ixPumpSwap, Accounts: []uint16{ixEventAuthority}, Data: eventData},
			},
		}},
	}
	meta.PreBalances[ixUser] = 2_000_000_000
	meta.PostBalances[ixUser] = 1_999_995_000
	return tx, meta
}

func quietParser(t *testing.T, tx *solana.Transaction, meta *rpc.TransactionMeta) *Parser {
	t.Helper()
	p, err := NewTransactionParserFromTransaction(tx, meta)
	require.NoError(t, err)
	p.Log.SetOutput(io.Discard)
	return p
}

func TestParsePumpSwapBuy(t *testing.T) {
	tx, meta := syntheticBuy()
	p := quietParser(t, tx, meta)
	p.SetBlock(300_000_000, 1_710_000_000)

	parsed, err := p.ParseTransaction()
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	ix := parsed[0]
	assert.Equal(t, PumpSwapBuyIx, ix.Event.EventType())
	assert.Nil(t, ix.Trade, "instruction records do not produce trades")
	assert.Equal(t, -1, ix.Event.Metadata().InnerIndex)

	ev := parsed[1]
	require.Equal(t, PumpSwapBuy, ev.Event.EventType())
	buy, ok := ev.Event.(PumpSwapBuyEvent)
	require.True(t, ok)

	accts, filled := buy.Context()
	require.True(t, filled)
	assert.Equal(t, testBaseMint, accts.BaseMint)
	assert.Equal(t, WSOL_MINT, accts.QuoteMint)
	assert.Equal(t, testKey(500+ixCreatorVaultAta), accts.CoinCreatorVaultAta)

	md := buy.Metadata()
	require.NotNil(t, md)
	assert.Equal(t, solana.Signature{1, 2, 3}, md.Signature)
	assert.Equal(t, uint64(300_000_000), md.Slot)
	assert.Equal(t, int64(1_710_000_000), md.BlockTime)
	assert.Equal(t, PUMPSWAP_PROGRAM_ID, md.Program)
	assert.Equal(t, 0, md.OuterIndex)
	assert.Equal(t, 2, md.InnerIndex)
	require.NotNil(t, md.SwapContext)
	assert.Equal(t, WSOL_MINT, md.SwapContext.FromMint)
	assert.Equal(t, testBaseMint, md.SwapContext.ToMint)
	require.NotNil(t, md.Transaction)

	_, err = buy.ApplyMetadata(EventMetadata{})
	assert.ErrorIs(t, err, ErrMetadataApplied)

	require.NotNil(t, ev.Trade)
	assert.Equal(t, StrategyDirect, ev.Trade.Strategy)
	assert.Equal(t, Buy, ev.Trade.Trade.Direction)
	assert.Equal(t, testBaseMint, ev.Trade.Trade.TokenMint)
	assert.Equal(t, uint64(1_000_000_000), ev.Trade.Trade.AmountIn)
	assert.Equal(t, uint64(5_000), ev.Trade.Trade.AmountOut)
	assert.Equal(t, testUser, ev.Trade.Trade.User)
}

func TestParserTransfers(t *testing.T) {
	tx, meta := syntheticBuy()
	p := quietParser(t, tx, meta)

	transfers := p.Transfers()
	require.Len(t, transfers, 2)
	assert.Equal(t, WSOL_MINT, transfers[0].Mint)
	assert.Equal(t, uint64(1_000_000_000), transfers[0].Info.Amount)
	assert.Equal(t, testUser, transfers[0].Info.Authority)
	assert.Equal(t, testBaseMint, transfers[1].Mint)
	assert.Equal(t, uint8(6), transfers[1].Decimals)
}

func TestParseFallsBackToBalanceDelta(t *testing.T) {
	tx, meta := syntheticBuy()
	// drop the sibling transfers and the instruction: only the event remains,
	// so neither direct fields nor a context are available
	meta.InnerInstructions[0].Instructions = meta.InnerInstructions[0].Instructions[2:]
	tx.Message.Instructions[0].Data = []byte{0, 0, 0, 0, 0, 0, 0, 0}

	parsed, err := quietParser(t, tx, meta).ParseTransaction()
	require.NoError(t, err)
	require.Len(t, parsed, 1)

	ev := parsed[0]
	_, filled := ev.Event.(PumpSwapBuyEvent).Context()
	assert.False(t, filled)
	assert.Nil(t, ev.Event.Metadata().SwapContext)
	require.NotNil(t, ev.Trade)
	assert.Equal(t, StrategyBalanceDelta, ev.Trade.Strategy)
	assert.Equal(t, Buy, ev.Trade.Trade.Direction)
	assert.Equal(t, uint64(1_000_005_000), ev.Trade.Trade.AmountIn)
	assert.Equal(t, uint64(5_000), ev.Trade.Trade.AmountOut)
}

func TestParseSkipsBadInstructions(t *testing.T) {
	tx, meta := syntheticBuy()
	tx.Message.Instructions = append(tx.Message.Instructions,
		solana.CompiledInstruction{ProgramIDIndex: ixCpmm, Accounts: []uint16{0, 1}, Data: []byte{9, 9, 9, 9, 9, 9, 9, 9}},
		solana.CompiledInstruction{ProgramIDIndex: ixCpmm, Accounts: []uint16{0, 250}, Data: RaydiumCpmmSwapBaseInputDiscriminator[:]},
		solana.CompiledInstruction{ProgramIDIndex: 200},
		solana.CompiledInstruction{ProgramIDIndex: ixCpmm, Accounts: []uint16{0, 1}, Data: RaydiumCpmmSwapBaseInputDiscriminator[:]},
	)

	parsed, err := quietParser(t, tx, meta).ParseTransaction()
	require.NoError(t, err)
	assert.Len(t, parsed, 2, "only the buy instruction and event decode")
}

func TestParseRaydiumCpmmSwap(t *testing.T) {
	keys := syntheticKeys()
	accounts := []uint16{ixUser, 1, 2, 3, ixUserQuoteAta, ixUserBaseAta, ixPoolQuoteAta, ixPoolBaseAta,
		ixTokenProgram, ixTokenProgram, ixWsol, ixBaseMint, 14}
	data := withPrefix(RaydiumCpmmSwapBaseInputDiscriminator[:], (&le{}).u64(1_000_000_000).u64(4_500).bytes())
	tx := &solana.Transaction{
		Signatures: []solana.Signature{{9}},
		Message: solana.Message{
			AccountKeys:  keys,
			Instructions: []solana.CompiledInstruction{{ProgramIDIndex: ixCpmm, Accounts: accounts, Data: data}},
		},
	}

	parsed, err := quietParser(t, tx, &rpc.TransactionMeta{}).ParseTransaction()
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	require.NotNil(t, parsed[0].Trade)
	assert.Equal(t, StrategyDirect, parsed[0].Trade.Strategy)
	assert.Equal(t, Buy, parsed[0].Trade.Trade.Direction)
	assert.Equal(t, RAYDIUM_CPMM, parsed[0].Trade.Trade.Platform)
	assert.Equal(t, uint64(4_500), parsed[0].Trade.Trade.AmountOut)
}

func TestLiquidityOf(t *testing.T) {
	dep, err := DecodePumpSwapDepositEvent(make([]byte, PumpSwapDepositEventMinLen))
	require.NoError(t, err)
	assert.Equal(t, LiquidityAdd, LiquidityOf(*dep))

	wd, err := DecodeRaydiumAmmV4Withdraw(make([]byte, 8), testKeys(0, 20))
	require.NoError(t, err)
	assert.Equal(t, LiquidityRemove, LiquidityOf(*wd))

	assert.Equal(t, LiquidityNone, LiquidityOf(buyEvent(t, nil, testMetadata())))
	assert.Equal(t, "remove", LiquidityRemove.String())
}
