package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freya/domain/book"
	"freya/export"
	"freya/infra/memory"
	"freya/infra/sequence"
	"freya/metrics"
	"freya/service"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	pool := memory.NewPool(func() *book.Order { return &book.Order{} })
	svc := service.New(
		pool,
		sequence.New(0),
		sequence.New(0),
		export.New(t.TempDir(), 2, zap.NewNop()),
		nil,
		nil,
		metrics.New("feedtest"),
		zap.NewNop(),
	)
	return New(svc, 2, zap.NewNop())
}

func TestExecCommands(t *testing.T) {
	d := newTestDriver(t)

	tests := []struct {
		line string
		want string
	}{
		{"BUY 100.00 10", "Order 1 placed."},
		{"SELL 102 5", "Order 2 placed."},
		{"CANCEL 2", "Order cancelled."},
		{"CANCEL 2", "Order not found."},
		{"MODIFY 1 8 101", "Order modified."},
		{"MODIFY 99 1 100", "Order not found."},
		{"CANCEL abc", "Invalid id: abc"},
		{"BUY xyz 10", "Invalid price: xyz"},
		{"BUY 100 ten", "Invalid quantity: ten"},
		{"BUY 100", "Usage: BUY|SELL <price> <qty>"},
		{"HODL", "Unknown command: HODL"},
		{"BUY 100 0", "Order rejected: book: quantity must be positive"},
	}
	for _, tc := range tests {
		out, exit := d.Exec(tc.line)
		assert.False(t, exit, tc.line)
		assert.Equal(t, tc.want, out, tc.line)
	}
}

func TestExecExit(t *testing.T) {
	d := newTestDriver(t)
	_, exit := d.Exec("EXIT")
	assert.True(t, exit)
}

func TestRunScriptedSession(t *testing.T) {
	d := newTestDriver(t)

	script := strings.Join([]string{
		"BUY 100 10",
		"SELL 99 5",
		"PRINT",
		"EXIT",
		"BUY 50 1", // never reached
	}, "\n")

	var out strings.Builder
	require.NoError(t, d.Run(strings.NewReader(script), &out))

	got := out.String()
	assert.Contains(t, got, "Order 1 placed.")
	assert.Contains(t, got, "Order 2 placed.")
	assert.Contains(t, got, "Order Book:")
	assert.Contains(t, got, "Total Volume Traded: 5 units")
	assert.NotContains(t, got, "Order 3 placed.", "commands after EXIT are ignored")
}

func TestPrintGroupsLevels(t *testing.T) {
	d := newTestDriver(t)

	for _, line := range []string{
		"BUY 100 5",
		"BUY 100 3",
		"BUY 99 2",
		"SELL 101 4",
	} {
		out, _ := d.Exec(line)
		require.Contains(t, out, "placed.")
	}

	out, _ := d.Exec("PRINT")
	assert.Contains(t, out, "BIDS:")
	assert.Contains(t, out, "ASKS:")
	assert.Contains(t, out, "$100 x 2 orders: [ID 1, qty 5][ID 2, qty 3]")
	assert.Contains(t, out, "$99 x 1 orders: [ID 3, qty 2]")
	assert.Contains(t, out, "$101 x 1 orders: [ID 4, qty 4]")
}

func TestPriceFinerThanTickRounds(t *testing.T) {
	d := newTestDriver(t)

	out, _ := d.Exec("BUY 99.999 1")
	require.Equal(t, "Order 1 placed.", out)

	out, _ = d.Exec("PRINT")
	assert.Contains(t, out, "$100 x 1 orders")
}
