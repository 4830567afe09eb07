package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freya/domain/book"
)

func openTestArchive(t *testing.T) *TradeArchive {
	t.Helper()
	a, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAppendAndGet(t *testing.T) {
	a := openTestArchive(t)

	trade := book.Trade{BuyID: 1, SellID: 2, Price: 10000, Qty: 5, Seq: 7}
	require.NoError(t, a.Append(0, trade))

	rec, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, trade, rec.Trade)
	assert.Equal(t, StateNew, rec.State)
}

func TestStateTransitions(t *testing.T) {
	a := openTestArchive(t)
	require.NoError(t, a.Append(3, book.Trade{BuyID: 1, SellID: 2, Price: 100, Qty: 1, Seq: 1}))

	require.NoError(t, a.MarkSent(3))
	rec, err := a.Get(3)
	require.NoError(t, err)
	assert.Equal(t, StateSent, rec.State)
	assert.NotZero(t, rec.LastAttempt)

	require.NoError(t, a.MarkAcked(3))
	rec, err = a.Get(3)
	require.NoError(t, err)
	assert.Equal(t, StateAcked, rec.State)
}

func TestScanStateVisitsInLedgerOrder(t *testing.T) {
	a := openTestArchive(t)
	for i := uint64(0); i < 5; i++ {
		require.NoError(t, a.Append(i, book.Trade{BuyID: i, SellID: i + 100, Price: 100, Qty: 1, Seq: i}))
	}
	require.NoError(t, a.MarkSent(1))
	require.NoError(t, a.MarkSent(3))

	var visited []uint64
	err := a.ScanState(StateNew, func(idx uint64, rec Record) error {
		visited = append(visited, idx)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 2, 4}, visited)

	visited = nil
	err = a.ScanState(StateSent, func(idx uint64, rec Record) error {
		visited = append(visited, idx)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, visited)
}

func TestRecordCodec(t *testing.T) {
	rec := Record{
		Trade:       book.Trade{BuyID: 9, SellID: 8, Price: 12345, Qty: 42, Seq: 99},
		State:       StateSent,
		Retries:     3,
		LastAttempt: 1234567890,
	}
	got, err := decodeRecord(encodeRecord(rec))
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = decodeRecord([]byte{1, 2, 3})
	assert.Error(t, err)
}
