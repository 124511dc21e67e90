package sink

import (
	"context"
	"time"

	"github.com/franco-bianco/dexevents-go/dexevents"
)

// Sink persists decoded records. Implementations serialize their own writes
// and may be shared between goroutines.
type Sink interface {
	Write(ctx context.Context, records []Record) error
	Close() error
}

// Record is the flat, serializable form of one parsed event. Signature,
// OuterIndex and InnerIndex identify it within the chain.
type Record struct {
	Signature  string                 `json:"signature"`
	Slot       uint64                 `json:"slot"`
	BlockTime  int64                  `json:"blockTime"`
	ReceivedAt time.Time              `json:"receivedAt"`
	Program    string                 `json:"program"`
	Protocol   dexevents.Protocol     `json:"protocol"`
	EventType  dexevents.EventType    `json:"eventType"`
	OuterIndex int                    `json:"outerIndex"`
	InnerIndex int                    `json:"innerIndex"`
	Fields     map[string]interface{} `json:"fields"`

	Trade     *dexevents.TradeFact `json:"trade,omitempty"`
	Strategy  dexevents.Strategy   `json:"strategy,omitempty"`
	Liquidity string               `json:"liquidity,omitempty"`
}

// NewRecord flattens ev. The event must carry metadata.
func NewRecord(ev dexevents.ParsedEvent) Record {
	rec := Record{
		Protocol:  ev.Event.Protocol(),
		EventType: ev.Event.EventType(),
		Fields:    dexevents.FieldMap(ev.Event),
	}
	if meta := ev.Event.Metadata(); meta != nil {
		rec.Signature = meta.Signature.String()
		rec.Slot = meta.Slot
		rec.BlockTime = meta.BlockTime
		rec.ReceivedAt = meta.ReceivedAt
		rec.Program = meta.Program.String()
		rec.OuterIndex = meta.OuterIndex
		rec.InnerIndex = meta.InnerIndex
	}
	if ev.Trade != nil {
		trade := ev.Trade.Trade
		rec.Trade = &trade
		rec.Strategy = ev.Trade.Strategy
	}
	if ev.Liquidity != dexevents.LiquidityNone {
		rec.Liquidity = ev.Liquidity.String()
	}
	return rec
}

// NewRecords flattens every event of a transaction.
func NewRecords(events []dexevents.ParsedEvent) []Record {
	out := make([]Record, 0, len(events))
	for _, ev := range events {
		out = append(out, NewRecord(ev))
	}
	return out
}
