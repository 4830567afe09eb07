// Package export serializes trade and book snapshots to CSV files.
// It is a decoupled side effect of the engine: an export failure is
// reported to the caller and logged, never propagated into book state.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"freya/domain/book"
)

// Exporter writes one file per call into dir. The file sequence
// counter is exporter state: two exporters never share numbering.
type Exporter struct {
	dir   string
	scale int32
	seq   int
	log   *zap.Logger
}

func New(dir string, scale int32, log *zap.Logger) *Exporter {
	return &Exporter{dir: dir, scale: scale, log: log}
}

// Trades writes the full ledger, one row per trade:
// timestamp,buy_order_id,sell_order_id,price,quantity.
func (e *Exporter) Trades(trades []book.Trade) (string, error) {
	path, err := e.create("trades")
	if err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(trades)+1)
	rows = append(rows, []string{"timestamp", "buy_order_id", "sell_order_id", "price", "quantity"})
	for _, t := range trades {
		rows = append(rows, []string{
			strconv.FormatUint(t.Seq, 10),
			strconv.FormatUint(t.BuyID, 10),
			strconv.FormatUint(t.SellID, 10),
			book.FormatPrice(t.Price, e.scale),
			strconv.FormatInt(t.Qty, 10),
		})
	}
	return path, e.write(path, rows)
}

// Book writes one row per resting order, asks (ascending) then bids
// (descending): side,price,quantity,order_id,timestamp.
func (e *Exporter) Book(snapshot []book.RestingOrder) (string, error) {
	path, err := e.create("book")
	if err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(snapshot)+1)
	rows = append(rows, []string{"side", "price", "quantity", "order_id", "timestamp"})
	for _, o := range snapshot {
		rows = append(rows, []string{
			o.Side.String(),
			book.FormatPrice(o.Price, e.scale),
			strconv.FormatInt(o.Qty, 10),
			strconv.FormatUint(o.ID, 10),
			strconv.FormatUint(o.Seq, 10),
		})
	}
	return path, e.write(path, rows)
}

func (e *Exporter) create(kind string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}
	e.seq++
	return filepath.Join(e.dir, fmt.Sprintf("%s_%d.csv", kind, e.seq)), nil
}

func (e *Exporter) write(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	e.log.Debug("export written", zap.String("path", path), zap.Int("rows", len(rows)-1))
	return nil
}
