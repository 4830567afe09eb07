// Package service wires the order book to its collaborators: the order
// pool, the id/timestamp sequencers, the CSV exporter, the trade
// archive, the feed sink, and metrics.
//
// OrderService is the only write entry point. Every mutation runs to
// completion (including matching) before the side effects fire, so
// exports and publishes always observe post-mutation state.
package service

import (
	"context"

	"go.uber.org/zap"

	"freya/domain/book"
	"freya/export"
	"freya/infra/archive"
	"freya/infra/memory"
	"freya/infra/sequence"
	"freya/metrics"
)

// TradeSink receives executed trades in direct feed mode.
type TradeSink interface {
	Publish(ctx context.Context, idx uint64, t book.Trade) error
}

type OrderService struct {
	book  *book.Book
	pool  *memory.Pool[book.Order]
	ids   *sequence.Sequencer
	clock *sequence.Sequencer

	exporter *export.Exporter
	arc      *archive.TradeArchive // optional
	sink     TradeSink             // optional
	met      *metrics.Metrics
	log      *zap.Logger

	autoExport bool
}

func New(
	pool *memory.Pool[book.Order],
	ids *sequence.Sequencer,
	clock *sequence.Sequencer,
	exporter *export.Exporter,
	arc *archive.TradeArchive,
	sink TradeSink,
	met *metrics.Metrics,
	log *zap.Logger,
) *OrderService {
	s := &OrderService{
		pool:     pool,
		ids:      ids,
		clock:    clock,
		exporter: exporter,
		arc:      arc,
		sink:     sink,
		met:      met,
		log:      log,
	}
	s.book = book.New(s.recycle)
	return s
}

func (s *OrderService) recycle(o *book.Order) {
	o.Reset()
	s.pool.Put(o)
}

// ---- commands ----

// PlaceOrder submits a limit order and returns its assigned id.
// Invalid input (non-positive price or quantity) is rejected without
// touching the book.
func (s *OrderService) PlaceOrder(side book.Side, price, qty int64) (uint64, error) {
	id := s.ids.Next()
	seq := s.clock.Next()

	o := s.pool.Get()
	*o = book.Order{
		ID:    id,
		Side:  side,
		Price: price,
		Qty:   qty,
		Seq:   seq,
	}

	before := s.book.Ledger().Len()
	if err := s.book.Add(o); err != nil {
		s.recycle(o)
		s.met.OrdersRejected.Inc()
		s.log.Warn("order rejected",
			zap.Uint64("id", id),
			zap.Stringer("side", side),
			zap.Int64("price", price),
			zap.Int64("qty", qty),
			zap.Error(err),
		)
		return 0, err
	}

	s.met.OrdersAccepted.Inc()
	s.afterMutation(before)
	return id, nil
}

// CancelOrder removes a resting order. Removal cannot create a cross,
// so nothing matches.
func (s *OrderService) CancelOrder(id uint64) error {
	if err := s.book.Cancel(id); err != nil {
		return err
	}
	s.met.OrdersCanceled.Inc()
	s.updateGauges()
	return nil
}

// ModifyOrder replaces a resting order's price and quantity under the
// same id with a fresh timestamp. The order forfeits its queue
// position, and a price change may trigger matching.
func (s *OrderService) ModifyOrder(id uint64, qty, price int64) error {
	seq := s.clock.Next()
	before := s.book.Ledger().Len()
	if err := s.book.Modify(id, qty, price, seq); err != nil {
		return err
	}
	s.met.OrdersModified.Inc()
	s.afterMutation(before)
	return nil
}

// SetAutoExport toggles CSV export after every mutation that traded.
func (s *OrderService) SetAutoExport(on bool) {
	s.autoExport = on
}

// ---- queries ----

func (s *OrderService) Trades() []book.Trade { return s.book.Trades() }

func (s *OrderService) Depth() book.Depth { return s.book.Depth() }

func (s *OrderService) Snapshot() []book.RestingOrder { return s.book.Snapshot() }

func (s *OrderService) Resting(id uint64) (int64, bool) { return s.book.Resting(id) }

func (s *OrderService) TotalVolume() int64 { return s.book.Ledger().TotalVolume() }

// ---- exports ----

func (s *OrderService) ExportTrades() (string, error) {
	path, err := s.exporter.Trades(s.book.Trades())
	if err != nil {
		s.log.Warn("trade export failed", zap.Error(err))
	}
	return path, err
}

func (s *OrderService) ExportBook() (string, error) {
	path, err := s.exporter.Book(s.book.Snapshot())
	if err != nil {
		s.log.Warn("book export failed", zap.Error(err))
	}
	return path, err
}

// ---- side effects ----

// afterMutation pushes trades executed by the last mutation into the
// archive and the feed, refreshes gauges, and fires auto-export. All
// failures are logged and swallowed: the book is already correct.
func (s *OrderService) afterMutation(before int) {
	trades := s.book.Trades()
	for i := before; i < len(trades); i++ {
		t := trades[i]
		idx := uint64(i)

		s.met.TradesExecuted.Inc()
		s.met.VolumeTraded.Add(float64(t.Qty))
		s.log.Debug("trade executed",
			zap.Uint64("index", idx),
			zap.Uint64("buy_id", t.BuyID),
			zap.Uint64("sell_id", t.SellID),
			zap.Int64("price", t.Price),
			zap.Int64("qty", t.Qty),
		)

		if s.arc != nil {
			if err := s.arc.Append(idx, t); err != nil {
				s.log.Warn("trade archive failed", zap.Uint64("index", idx), zap.Error(err))
			}
		}
		if s.sink != nil {
			if err := s.sink.Publish(context.Background(), idx, t); err != nil {
				s.log.Warn("trade publish failed", zap.Uint64("index", idx), zap.Error(err))
			}
		}
	}

	s.updateGauges()

	if s.autoExport && len(trades) > before {
		_, _ = s.ExportTrades()
		_, _ = s.ExportBook()
	}
}

func (s *OrderService) updateGauges() {
	s.met.BookDepth.WithLabelValues("bid").Set(float64(s.book.Levels(book.Bid)))
	s.met.BookDepth.WithLabelValues("ask").Set(float64(s.book.Levels(book.Ask)))
	s.met.RestingOrders.Set(float64(s.book.RestingCount()))
}
