package dexevents

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// le builds little-endian fixtures field by field.
type le struct {
	buf []byte
}

func (w *le) u8(v uint8) *le { w.buf = append(w.buf, v); return w }

func (w *le) u16(v uint16) *le {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *le) u64(v uint64) *le {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

func (w *le) i64(v int64) *le { return w.u64(uint64(v)) }

func (w *le) u128(lo, hi uint64) *le { return w.u64(lo).u64(hi) }

func (w *le) key(k solana.PublicKey) *le {
	w.buf = append(w.buf, k[:]...)
	return w
}

func (w *le) boolean(v bool) *le {
	if v {
		return w.u8(1)
	}
	return w.u8(0)
}

func (w *le) raw(b []byte) *le { w.buf = append(w.buf, b...); return w }

func (w *le) zeros(n int) *le { return w.raw(make([]byte, n)) }

func (w *le) bytes() []byte { return w.buf }

// testKey returns a distinct, deterministic key per n.
func testKey(n int) solana.PublicKey {
	var k solana.PublicKey
	k[0] = byte(n)
	k[1] = byte(n >> 8)
	k[31] = 0xAA
	return k
}

func testKeys(from, count int) []solana.PublicKey {
	out := make([]solana.PublicKey, count)
	for i := range out {
		out[i] = testKey(from + i)
	}
	return out
}

var (
	testUser     = testKey(1000)
	testPool     = testKey(1001)
	testBaseMint = testKey(1002)
)

// buyEventPayload is a BuyEvent body at exactly MinLen.
func buyEventPayload(baseOut, quoteIn uint64, user solana.PublicKey) []byte {
	w := &le{}
	w.i64(1_700_000_000)
	w.u64(baseOut)     // base_amount_out
	w.u64(quoteIn + 5) // max_quote_amount_in
	w.u64(0).u64(0).u64(1_000_000).u64(2_000_000)
	w.u64(quoteIn - 10) // quote_amount_in
	w.u64(20).u64(7).u64(5).u64(2)
	w.u64(quoteIn - 1) // quote_amount_in_with_lp_fee
	w.u64(quoteIn)     // user_quote_amount_in
	w.key(testPool).key(user)
	w.key(testKey(1)).key(testKey(2)).key(testKey(3)).key(testKey(4)).key(testKey(5))
	w.u64(30).u64(1)
	w.boolean(true)
	w.u64(11).u64(12).u64(13)
	w.i64(1_699_999_999)
	return w.bytes()
}

func sellEventPayload(baseIn, quoteOut uint64, user solana.PublicKey) []byte {
	w := &le{}
	w.i64(1_700_000_000)
	w.u64(baseIn)
	w.u64(quoteOut - 5) // min_quote_amount_out
	w.u64(0).u64(0).u64(1_000_000).u64(2_000_000)
	w.u64(quoteOut + 10)
	w.u64(20).u64(7).u64(5).u64(2)
	w.u64(quoteOut + 1)
	w.u64(quoteOut) // user_quote_amount_out
	w.key(testPool).key(user)
	w.key(testKey(1)).key(testKey(2)).key(testKey(3)).key(testKey(4)).key(testKey(5))
	w.u64(30).u64(1)
	return w.bytes()
}

func withPrefix(prefix []byte, payload []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(payload))
	out = append(out, prefix...)
	return append(out, payload...)
}
