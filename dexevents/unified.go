package dexevents

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// SwapContext carries the input/output mints learned from the token
// transfers around an instruction, independent of the record's own fields.
type SwapContext struct {
	FromMint solana.PublicKey `json:"fromMint"`
	ToMint   solana.PublicKey `json:"toMint"`
}

// EventMetadata is the shared transaction envelope attached to every decoded record.
type EventMetadata struct {
	Signature   solana.Signature `json:"signature"`
	Slot        uint64           `json:"slot"`
	BlockTime   int64            `json:"blockTime"`
	ReceivedAt  time.Time        `json:"receivedAt"`
	Program     solana.PublicKey `json:"program"`
	OuterIndex  int              `json:"outerIndex"`
	InnerIndex  int              `json:"innerIndex"`
	SwapContext *SwapContext     `json:"swapContext,omitempty"`

	// Transaction is the balance view of the originating transaction, when available.
	Transaction *RawTransaction `json:"-"`
}

// Field is one named wire value of a record.
type Field struct {
	Name  string
	Value interface{}
}

// UnifiedEvent is implemented by every decoded record. Records have value
// semantics: ApplyMetadata returns a merged copy and leaves the receiver as is.
type UnifiedEvent interface {
	EventType() EventType
	Protocol() Protocol
	Metadata() *EventMetadata
	ApplyMetadata(meta EventMetadata) (UnifiedEvent, error)
	MergeableFields() []Field
}

// Merge applies metadata and keeps the concrete record type.
func Merge[E UnifiedEvent](ev E, meta EventMetadata) (E, error) {
	merged, err := ev.ApplyMetadata(meta)
	if err != nil {
		return ev, err
	}
	out, ok := merged.(E)
	if !ok {
		return ev, fmt.Errorf("merge %T: got %T", ev, merged)
	}
	return out, nil
}

// envelope holds the metadata of a record. The zero value is unmerged.
type envelope struct {
	meta *EventMetadata
}

func (e envelope) Metadata() *EventMetadata { return e.meta }

func (e envelope) apply(meta EventMetadata) (envelope, error) {
	if e.meta != nil {
		return e, ErrMetadataApplied
	}
	return envelope{meta: &meta}, nil
}

// slot holds context-dependent fields that are filled at most once after decode.
type slot[T any] struct {
	v *T
}

func (s slot[T]) get() (T, bool) {
	if s.v == nil {
		var zero T
		return zero, false
	}
	return *s.v, true
}

func (s slot[T]) fill(v T) (slot[T], error) {
	if s.v != nil {
		return s, ErrContextFilled
	}
	return slot[T]{v: &v}, nil
}

// fieldsOf lists the json-tagged fields of the given structs in declaration order.
func fieldsOf(parts ...interface{}) []Field {
	var out []Field
	for _, p := range parts {
		rv := reflect.ValueOf(p)
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				continue
			}
			out = append(out, Field{Name: name, Value: rv.Field(i).Interface()})
		}
	}
	return out
}

// FieldMap flattens MergeableFields for JSON output.
func FieldMap(ev UnifiedEvent) map[string]interface{} {
	fields := ev.MergeableFields()
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}
