package dexevents

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscriminatorsUniquePerCategory(t *testing.T) {
	for _, table := range DefaultRegistry().Tables() {
		for _, cat := range []Category{CategoryLog, CategoryInstruction, CategoryAccount} {
			seen := map[string]EventType{}
			for _, e := range table.Entries(cat) {
				key := hex.EncodeToString(e.Prefix)
				if prev, dup := seen[key]; dup {
					t.Fatalf("%s %s: prefix %s used by %s and %s", table.Protocol, cat, key, prev, e.EventType)
				}
				seen[key] = e.EventType
			}
		}
	}
}

func TestAnchorConstants(t *testing.T) {
	ix := map[string][8]byte{
		"buy":         PumpSwapBuyIxDiscriminator,
		"sell":        PumpSwapSellIxDiscriminator,
		"create_pool": PumpSwapCreatePoolIxDiscriminator,
		"deposit":     PumpSwapDepositIxDiscriminator,
		"withdraw":    PumpSwapWithdrawIxDiscriminator,
	}
	for name, want := range ix {
		assert.Equal(t, want, AnchorInstructionDiscriminator(name), name)
	}

	cpmm := map[string][8]byte{
		"swap_base_input":  RaydiumCpmmSwapBaseInputDiscriminator,
		"swap_base_output": RaydiumCpmmSwapBaseOutputDiscriminator,
		"deposit":          RaydiumCpmmDepositDiscriminator,
		"initialize":       RaydiumCpmmInitializeDiscriminator,
		"withdraw":         RaydiumCpmmWithdrawDiscriminator,
	}
	for name, want := range cpmm {
		assert.Equal(t, want, AnchorInstructionDiscriminator(name), name)
	}

	accounts := map[string][8]byte{
		"GlobalConfig": PumpSwapGlobalConfigDiscriminator,
		"Pool":         PumpSwapPoolDiscriminator,
		"AmmConfig":    RaydiumCpmmAmmConfigDiscriminator,
		"PoolState":    RaydiumCpmmPoolStateDiscriminator,
	}
	for name, want := range accounts {
		assert.Equal(t, want, AnchorAccountDiscriminator(name), name)
	}

	events := map[string][16]byte{
		"BuyEvent":        PumpSwapBuyEventDiscriminator,
		"SellEvent":       PumpSwapSellEventDiscriminator,
		"CreatePoolEvent": PumpSwapCreatePoolEventDiscriminator,
		"DepositEvent":    PumpSwapDepositEventDiscriminator,
		"WithdrawEvent":   PumpSwapWithdrawEventDiscriminator,
	}
	for name, want := range events {
		assert.Equal(t, want, AnchorEventDiscriminator(name), name)
	}

	sum := sha256.Sum256([]byte("anchor:event"))
	for i := 0; i < 8; i++ {
		assert.Equal(t, sum[7-i], EventIxTag[i])
	}
	assert.Equal(t, "e445a52e51cb9a1d", hex.EncodeToString(EventIxTag[:]))
}

// decodeEntry feeds data to whichever decoder the entry carries.
func decodeEntry(t *testing.T, r *Registry, table *Table, cat Category, data []byte) (UnifiedEvent, error) {
	t.Helper()
	switch cat {
	case CategoryLog:
		return r.DecodeLog(table.Program, data)
	case CategoryInstruction:
		return r.DecodeInstruction(table.Program, data, testKeys(0, 25))
	default:
		return r.DecodeAccount(AccountSnapshot{Pubkey: testKey(9), Owner: table.Program, Data: data})
	}
}

func entryData(e Entry, n int) []byte {
	if e.KeepPrefix {
		return withPrefix(e.Prefix, make([]byte, n-len(e.Prefix)))
	}
	return withPrefix(e.Prefix, make([]byte, n))
}

func TestEveryDecoderLengthBoundary(t *testing.T) {
	r := DefaultRegistry()
	for _, table := range r.Tables() {
		for _, cat := range []Category{CategoryLog, CategoryInstruction, CategoryAccount} {
			for _, e := range table.Entries(cat) {
				t.Run(string(e.EventType), func(t *testing.T) {
					ev, err := decodeEntry(t, r, table, cat, entryData(e, e.MinLen))
					require.NoError(t, err)
					assert.Equal(t, e.EventType, ev.EventType())
					assert.Equal(t, table.Protocol, ev.Protocol())
					assert.Nil(t, ev.Metadata())

					if e.MinLen == 0 || (e.KeepPrefix && e.MinLen <= len(e.Prefix)) {
						return
					}
					_, err = decodeEntry(t, r, table, cat, entryData(e, e.MinLen-1))
					assert.ErrorIs(t, err, ErrDataTooShort)
				})
			}
		}
	}
}

func TestTrailingBytesIgnored(t *testing.T) {
	payload := append(buyEventPayload(500, 1_000_000, testUser), 0xde, 0xad, 0xbe, 0xef)
	ev, err := DecodePumpSwapBuyEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), ev.BaseAmountOut)
}

func TestLookup(t *testing.T) {
	r := DefaultRegistry()

	et, ok := r.Lookup(PUMPSWAP_PROGRAM_ID, CategoryLog, withPrefix(PumpSwapSellEventDiscriminator[:], nil))
	require.True(t, ok)
	assert.Equal(t, PumpSwapSell, et)

	et, ok = r.Lookup(RAYDIUM_AMM_V4_PROGRAM_ID, CategoryInstruction, []byte{RaydiumAmmV4SwapBaseOutTag, 1, 2})
	require.True(t, ok)
	assert.Equal(t, RaydiumAmmV4SwapBaseOut, et)

	// same discriminator, different programs
	et, ok = r.Lookup(RAYDIUM_CPMM_PROGRAM_ID, CategoryInstruction, RaydiumCpmmDepositDiscriminator[:])
	require.True(t, ok)
	assert.Equal(t, RaydiumCpmmDeposit, et)
	et, ok = r.Lookup(PUMPSWAP_PROGRAM_ID, CategoryInstruction, PumpSwapDepositIxDiscriminator[:])
	require.True(t, ok)
	assert.Equal(t, PumpSwapDepositIx, et)

	_, ok = r.Lookup(RAYDIUM_CPMM_PROGRAM_ID, CategoryLog, PumpSwapBuyEventDiscriminator[:])
	assert.False(t, ok)

	// prefix shorter than the discriminator never matches
	_, ok = r.Lookup(PUMPSWAP_PROGRAM_ID, CategoryInstruction, PumpSwapBuyIxDiscriminator[:4])
	assert.False(t, ok)
}

func TestRegistryErrors(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.DecodeLog(solana.SystemProgramID, PumpSwapBuyEventDiscriminator[:])
	assert.ErrorIs(t, err, ErrUnknownProgram)

	_, err = r.DecodeInstruction(PUMPSWAP_PROGRAM_ID, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, nil)
	assert.ErrorIs(t, err, ErrUnknownDiscriminator)

	_, err = r.DecodeAccount(AccountSnapshot{Owner: RAYDIUM_AMM_V4_PROGRAM_ID, Data: []byte{5}})
	assert.ErrorIs(t, err, ErrUnknownDiscriminator)

	_, err = NewRegistry(PumpSwapTable(), PumpSwapTable())
	assert.Error(t, err)

	p, ok := r.Protocol(RAYDIUM_CPMM_PROGRAM_ID)
	require.True(t, ok)
	assert.Equal(t, RAYDIUM_CPMM, p)
	assert.False(t, r.Supports(solana.SystemProgramID))
}
