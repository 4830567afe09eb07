// Package publisher pushes executed trades onto the market data feed.
//
// Two modes, both optional and decoupled from matching:
//
//   - Direct: the service hands each trade to a kafka-go producer as it
//     executes. Fast, but a crash between execution and publish drops
//     the event.
//   - Outbox: trades land in the pebble archive first; a background
//     loop drains NEW records to Kafka via sarama, walking each through
//     SENT and ACKED so redelivery is idempotent.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"freya/domain/book"
	"freya/infra/archive"
	"freya/infra/kafka"
)

// Event is the wire form of one executed trade.
type Event struct {
	V      int    `json:"v"`
	Type   string `json:"type"`
	Index  uint64 `json:"index"`
	BuyID  uint64 `json:"buy_id"`
	SellID uint64 `json:"sell_id"`
	Price  int64  `json:"price"`
	Qty    int64  `json:"qty"`
	Seq    uint64 `json:"seq"`
}

func encodeEvent(idx uint64, t book.Trade) ([]byte, error) {
	return json.Marshal(Event{
		V:      1,
		Type:   "trade",
		Index:  idx,
		BuyID:  t.BuyID,
		SellID: t.SellID,
		Price:  t.Price,
		Qty:    t.Qty,
		Seq:    t.Seq,
	})
}

func eventKey(idx uint64) []byte {
	return []byte(fmt.Sprintf("%020d", idx))
}

// ---- direct mode ----

// Direct publishes each trade as it executes, keyed by ledger index.
type Direct struct {
	producer *kafka.Producer
}

func NewDirect(brokers []string, topic string) *Direct {
	return &Direct{producer: kafka.NewProducer(brokers, topic)}
}

func (d *Direct) Publish(ctx context.Context, idx uint64, t book.Trade) error {
	payload, err := encodeEvent(idx, t)
	if err != nil {
		return err
	}
	return d.producer.Send(ctx, eventKey(idx), payload)
}

func (d *Direct) Close() error {
	return d.producer.Close()
}

// ---- outbox mode ----

// Outbox drains the trade archive to Kafka on a ticker.
type Outbox struct {
	archive  *archive.TradeArchive
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *zap.Logger
}

func NewOutbox(
	arc *archive.TradeArchive,
	brokers []string,
	topic string,
	interval time.Duration,
	log *zap.Logger,
) (*Outbox, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Outbox{
		archive:  arc,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      log,
	}, nil
}

// Run drains pending records until ctx is canceled.
func (o *Outbox) Run(ctx context.Context) {
	o.log.Info("trade publisher started", zap.String("topic", o.topic))

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.drainOnce()
		}
	}
}

func (o *Outbox) drainOnce() {
	err := o.archive.ScanState(archive.StateNew, func(idx uint64, rec archive.Record) error {
		// SENT before the attempt: a redelivered event is harmless,
		// a silently dropped one is not.
		if err := o.archive.MarkSent(idx); err != nil {
			return err
		}

		payload, err := encodeEvent(idx, rec.Trade)
		if err != nil {
			return err
		}
		_, _, err = o.producer.SendMessage(&sarama.ProducerMessage{
			Topic: o.topic,
			Key:   sarama.ByteEncoder(eventKey(idx)),
			Value: sarama.ByteEncoder(payload),
		})
		if err != nil {
			// leave in SENT; the next sweep retries
			o.log.Warn("publish failed", zap.Uint64("index", idx), zap.Error(err))
			return nil
		}

		return o.archive.MarkAcked(idx)
	})
	if err != nil {
		o.log.Warn("outbox scan failed", zap.Error(err))
	}

	// Retry anything stuck in SENT from an earlier failed attempt.
	_ = o.archive.ScanState(archive.StateSent, func(idx uint64, rec archive.Record) error {
		payload, err := encodeEvent(idx, rec.Trade)
		if err != nil {
			return err
		}
		_, _, err = o.producer.SendMessage(&sarama.ProducerMessage{
			Topic: o.topic,
			Key:   sarama.ByteEncoder(eventKey(idx)),
			Value: sarama.ByteEncoder(payload),
		})
		if err != nil {
			return nil
		}
		return o.archive.MarkAcked(idx)
	})
}

func (o *Outbox) Close() error {
	return o.producer.Close()
}
