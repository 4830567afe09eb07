package service

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freya/domain/book"
	"freya/export"
	"freya/infra/memory"
	"freya/infra/sequence"
	"freya/metrics"
)

func newTestService(t *testing.T) (*OrderService, string) {
	t.Helper()
	dir := t.TempDir()
	pool := memory.NewPool(func() *book.Order { return &book.Order{} })
	svc := New(
		pool,
		sequence.New(0),
		sequence.New(0),
		export.New(dir, 2, zap.NewNop()),
		nil,
		nil,
		metrics.New("test"),
		zap.NewNop(),
	)
	return svc, dir
}

func TestPlaceOrderAssignsSequentialIDs(t *testing.T) {
	svc, _ := newTestService(t)

	id1, err := svc.PlaceOrder(book.Bid, 10000, 5)
	require.NoError(t, err)
	id2, err := svc.PlaceOrder(book.Bid, 9900, 5)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, uint64(2), id2)
}

func TestPlaceOrderRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PlaceOrder(book.Bid, 10000, 0)
	assert.ErrorIs(t, err, book.ErrInvalidQty)
	_, err = svc.PlaceOrder(book.Ask, -1, 5)
	assert.ErrorIs(t, err, book.ErrInvalidPrice)

	assert.Empty(t, svc.Snapshot())
	assert.Empty(t, svc.Trades())
}

func TestCrossThroughService(t *testing.T) {
	svc, _ := newTestService(t)

	buy, err := svc.PlaceOrder(book.Bid, 10000, 10)
	require.NoError(t, err)
	sell, err := svc.PlaceOrder(book.Ask, 9900, 5)
	require.NoError(t, err)

	trades := svc.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, buy, trades[0].BuyID)
	assert.Equal(t, sell, trades[0].SellID)
	assert.Equal(t, int64(10000), trades[0].Price)
	assert.Equal(t, int64(5), svc.TotalVolume())

	qty, ok := svc.Resting(buy)
	require.True(t, ok)
	assert.Equal(t, int64(5), qty)
}

func TestCancelAndModifyDelegate(t *testing.T) {
	svc, _ := newTestService(t)

	id, err := svc.PlaceOrder(book.Bid, 10000, 5)
	require.NoError(t, err)

	require.NoError(t, svc.ModifyOrder(id, 3, 9900))
	qty, ok := svc.Resting(id)
	require.True(t, ok)
	assert.Equal(t, int64(3), qty)

	require.NoError(t, svc.CancelOrder(id))
	assert.ErrorIs(t, svc.CancelOrder(id), book.ErrNotFound)
	assert.ErrorIs(t, svc.ModifyOrder(id, 1, 10000), book.ErrNotFound)
}

func TestAutoExportWritesAfterTrade(t *testing.T) {
	svc, dir := newTestService(t)
	svc.SetAutoExport(true)

	_, err := svc.PlaceOrder(book.Bid, 10000, 5)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no trade, no export")

	_, err = svc.PlaceOrder(book.Ask, 10000, 5)
	require.NoError(t, err)

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "one trades file and one book file")
}

func TestPoolRecyclingKeepsBookCorrect(t *testing.T) {
	svc, _ := newTestService(t)

	// Churn resolved orders through the pool, then verify fresh ones
	// are clean.
	for i := 0; i < 100; i++ {
		_, err := svc.PlaceOrder(book.Bid, 10000, 1)
		require.NoError(t, err)
		_, err = svc.PlaceOrder(book.Ask, 10000, 1)
		require.NoError(t, err)
	}
	require.Len(t, svc.Trades(), 100)
	assert.Empty(t, svc.Snapshot())

	id, err := svc.PlaceOrder(book.Bid, 9900, 7)
	require.NoError(t, err)
	qty, ok := svc.Resting(id)
	require.True(t, ok)
	assert.Equal(t, int64(7), qty)
}
