package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franco-bianco/dexevents-go/dexevents"
	"github.com/franco-bianco/dexevents-go/sink"
)

func TestMessageKeyedBySignature(t *testing.T) {
	rec := sink.Record{
		Signature:  "3xSig",
		Protocol:   dexevents.PUMPSWAP,
		EventType:  dexevents.PumpSwapSell,
		OuterIndex: 4,
		InnerIndex: 1,
		Fields:     map[string]interface{}{"base_amount_in": uint64(9)},
	}
	msg, err := message("dex-events", rec)
	require.NoError(t, err)

	require.NotNil(t, msg.TopicPartition.Topic)
	assert.Equal(t, "dex-events", *msg.TopicPartition.Topic)
	assert.Equal(t, []byte("3xSig"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "PumpSwapSell", string(msg.Headers[0].Value))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "PumpSwapSell", body["eventType"])
	assert.Equal(t, float64(4), body["outerIndex"])
}

func TestNewProducerValidates(t *testing.T) {
	_, err := NewProducer(context.Background(), Options{Topic: "x"})
	assert.Error(t, err)
	_, err = NewProducer(context.Background(), Options{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}
