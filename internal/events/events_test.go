package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukaan/backend/internal/inventory"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closes int
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closes++
	return nil
}

func TestKafkaPublisherKeysByProduct(t *testing.T) {
	writer := &recordingWriter{}
	p := newKafkaPublisher(writer, "stock")
	branch := int64(1)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := p.PublishStockEvents(context.Background(), []inventory.StockEvent{
		{ProductID: 7, Delta: decimal.NewFromInt(-2), Source: inventory.KindSale, ReferenceID: 11, BranchID: &branch, At: at},
		{ProductID: 9, Delta: decimal.NewFromInt(-1), Source: inventory.KindSale, ReferenceID: 11, BranchID: &branch, At: at},
	})
	require.NoError(t, err)
	require.Len(t, writer.msgs, 2)
	assert.Equal(t, "7", string(writer.msgs[0].Key))
	assert.Equal(t, "sale", string(writer.msgs[0].Headers[0].Value))

	var decoded inventory.StockEvent
	require.NoError(t, json.Unmarshal(writer.msgs[1].Value, &decoded))
	assert.Equal(t, int64(9), decoded.ProductID)
	assert.True(t, decoded.Delta.Equal(decimal.NewFromInt(-1)))
	assert.Equal(t, int64(11), decoded.ReferenceID)
}

func TestKafkaPublisherWrapsWriteErrors(t *testing.T) {
	boom := errors.New("broker down")
	p := newKafkaPublisher(&recordingWriter{err: boom}, "stock")

	err := p.PublishStockEvents(context.Background(), []inventory.StockEvent{{ProductID: 1}})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stock")
}

func TestKafkaPublisherCloseIsIdempotent(t *testing.T) {
	writer := &recordingWriter{}
	p := newKafkaPublisher(writer, "stock")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, writer.closes)

	err := p.PublishStockEvents(context.Background(), []inventory.StockEvent{{ProductID: 1}})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "stock")
	assert.Error(t, err)
}
