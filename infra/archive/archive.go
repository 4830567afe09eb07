// Package archive persists executed trades to a pebble store, keyed by
// ledger index. Each record doubles as a publish outbox entry with a
// NEW → SENT → ACKED state machine, so a crash between execution and
// publication never loses or duplicates a trade event downstream.
//
// The archive is an audit side channel: the book never reads it back,
// and archive failures must never affect matching state.
package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	"freya/domain/book"
)

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

// Record is one archived trade plus its outbox bookkeeping.
type Record struct {
	Trade       book.Trade
	State       State
	Retries     uint32
	LastAttempt int64
}

// binary layout: [state:1][retries:4][attempt:8][buy:8][sell:8][price:8][qty:8][seq:8]
const recordLen = 1 + 4 + 8 + 8 + 8 + 8 + 8 + 8

func encodeRecord(r Record) []byte {
	buf := make([]byte, recordLen)
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	binary.BigEndian.PutUint64(buf[13:21], r.Trade.BuyID)
	binary.BigEndian.PutUint64(buf[21:29], r.Trade.SellID)
	binary.BigEndian.PutUint64(buf[29:37], uint64(r.Trade.Price))
	binary.BigEndian.PutUint64(buf[37:45], uint64(r.Trade.Qty))
	binary.BigEndian.PutUint64(buf[45:53], r.Trade.Seq)
	return buf
}

func decodeRecord(b []byte) (Record, error) {
	if len(b) != recordLen {
		return Record{}, errors.New("archive: invalid record length")
	}
	return Record{
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Trade: book.Trade{
			BuyID:  binary.BigEndian.Uint64(b[13:21]),
			SellID: binary.BigEndian.Uint64(b[21:29]),
			Price:  int64(binary.BigEndian.Uint64(b[29:37])),
			Qty:    int64(binary.BigEndian.Uint64(b[37:45])),
			Seq:    binary.BigEndian.Uint64(b[45:53]),
		},
	}, nil
}

// TradeArchive is the pebble-backed store.
type TradeArchive struct {
	db *pebble.DB
}

func Open(dir string) (*TradeArchive, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &TradeArchive{db: db}, nil
}

func (a *TradeArchive) Close() error {
	return a.db.Close()
}

// Append stores an executed trade under its ledger index in StateNew.
func (a *TradeArchive) Append(idx uint64, t book.Trade) error {
	rec := Record{Trade: t, State: StateNew}
	return a.db.Set(keyFor(idx), encodeRecord(rec), pebble.Sync)
}

// MarkSent transitions a record to SENT before the publish attempt.
func (a *TradeArchive) MarkSent(idx uint64) error {
	return a.transition(idx, StateSent)
}

// MarkAcked transitions a record to ACKED after the broker confirms.
func (a *TradeArchive) MarkAcked(idx uint64) error {
	return a.transition(idx, StateAcked)
}

func (a *TradeArchive) transition(idx uint64, to State) error {
	rec, err := a.Get(idx)
	if err != nil {
		return err
	}
	rec.State = to
	rec.Retries++
	rec.LastAttempt = time.Now().UnixNano()
	return a.db.Set(keyFor(idx), encodeRecord(rec), pebble.Sync)
}

// Get returns the record at the given ledger index.
func (a *TradeArchive) Get(idx uint64) (Record, error) {
	val, closer, err := a.db.Get(keyFor(idx))
	if err != nil {
		return Record{}, err
	}
	defer closer.Close()
	return decodeRecord(val)
}

// ScanState visits every record in the given state, lowest ledger
// index first. The publisher drains StateNew through this.
func (a *TradeArchive) ScanState(state State, fn func(idx uint64, rec Record) error) error {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("trade/"),
		UpperBound: []byte("trade/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return err
		}
		if rec.State != state {
			continue
		}
		idx, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		if err := fn(idx, rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

func keyFor(idx uint64) []byte {
	return []byte(fmt.Sprintf("trade/%020d", idx))
}

func parseKey(b []byte) (uint64, error) {
	var idx uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte("trade/"))), "%d", &idx)
	return idx, err
}
