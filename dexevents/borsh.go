package dexevents

import (
	"fmt"
	"reflect"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var publicKeyType = reflect.TypeOf(solana.PublicKey{})

// decodeWire Borsh-decodes the fixed-size prefix of payload into v. Bytes at
// boolOffsets must be 0 or 1.
func decodeWire(payload []byte, minLen int, v interface{}, boolOffsets ...int) error {
	if len(payload) < minLen {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrDataTooShort, minLen, len(payload))
	}
	for _, off := range boolOffsets {
		if payload[off] > 1 {
			return fmt.Errorf("%w: bool byte %d at offset %d", ErrMalformed, payload[off], off)
		}
	}
	if err := ag_binary.NewBorshDecoder(payload[:minLen]).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// readOptionalBool reads a presence byte followed by a bool byte. An empty
// payload means the option is absent.
func readOptionalBool(payload []byte) (*bool, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	switch payload[0] {
	case 0:
		return nil, nil
	case 1:
		if len(payload) < 2 {
			return nil, fmt.Errorf("%w: option value missing", ErrDataTooShort)
		}
		if payload[1] > 1 {
			return nil, fmt.Errorf("%w: bool byte %d", ErrMalformed, payload[1])
		}
		v := payload[1] == 1
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: option flag %d", ErrMalformed, payload[0])
	}
}

// assignAccounts fills the PublicKey fields of dst (a struct pointer) from
// keys in declaration order. Fields past len(keys) stay zero.
func assignAccounts(dst interface{}, keys []solana.PublicKey, minAccounts int) error {
	if len(keys) < minAccounts {
		return fmt.Errorf("%w: need %d accounts, got %d", ErrDataTooShort, minAccounts, len(keys))
	}
	rv := reflect.ValueOf(dst).Elem()
	n := 0
	for i := 0; i < rv.NumField() && n < len(keys); i++ {
		if rv.Field(i).Type() != publicKeyType {
			continue
		}
		rv.Field(i).Set(reflect.ValueOf(keys[n]))
		n++
	}
	return nil
}
