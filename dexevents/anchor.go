package dexevents

import (
	"crypto/sha256"
)

// ------ Anchor discriminator helpers ------

// EventIxTag prefixes every Anchor emit_cpi payload. It is the byte-reversed
// sha256("anchor:event")[:8], Anchor's u64 EVENT_IX_TAG written little-endian.
var EventIxTag = [8]byte{228, 69, 165, 46, 81, 203, 154, 29}

func anchorDiscriminator8(namespace, name string) [8]byte {
	// first 8 bytes of sha256("<namespace>:"+name)
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// AnchorInstructionDiscriminator returns sha256("global:"+name)[:8].
func AnchorInstructionDiscriminator(name string) [8]byte {
	return anchorDiscriminator8("global", name)
}

// AnchorAccountDiscriminator returns sha256("account:"+name)[:8].
func AnchorAccountDiscriminator(name string) [8]byte {
	return anchorDiscriminator8("account", name)
}

// AnchorEventDiscriminator returns the 16-byte self-CPI event prefix.
func AnchorEventDiscriminator(name string) [16]byte {
	var out [16]byte
	copy(out[:8], EventIxTag[:])
	ev := anchorDiscriminator8("event", name)
	copy(out[8:], ev[:])
	return out
}
