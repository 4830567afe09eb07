package book

// DepthLevel is one row of aggregated depth.
type DepthLevel struct {
	Price  int64
	Qty    int64
	Orders int
}

// Depth is the aggregated view of the book: bids best-first
// (descending price), asks best-first (ascending price).
type Depth struct {
	Bids []DepthLevel
	Asks []DepthLevel
}

// RestingOrder is one row of the per-order book dump.
type RestingOrder struct {
	Side  Side
	Price int64
	Qty   int64
	ID    uint64
	Seq   uint64
}

// Depth returns the aggregated depth per price level per side.
func (b *Book) Depth() Depth {
	d := Depth{}
	b.bids.Descend(func(lvl *Level) bool {
		d.Bids = append(d.Bids, DepthLevel{Price: lvl.Price, Qty: lvl.TotalQty, Orders: lvl.OrderCount})
		return true
	})
	b.asks.Ascend(func(lvl *Level) bool {
		d.Asks = append(d.Asks, DepthLevel{Price: lvl.Price, Qty: lvl.TotalQty, Orders: lvl.OrderCount})
		return true
	})
	return d
}

// Snapshot dumps every resting order: asks in ascending price order
// first, then bids descending, FIFO within each level. This is the
// fixed order the book export writes.
func (b *Book) Snapshot() []RestingOrder {
	out := make([]RestingOrder, 0, len(b.orders))
	collect := func(lvl *Level) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			out = append(out, RestingOrder{
				Side:  o.Side,
				Price: o.Price,
				Qty:   o.Qty,
				ID:    o.ID,
				Seq:   o.Seq,
			})
		}
		return true
	}
	b.asks.Ascend(collect)
	b.bids.Descend(collect)
	return out
}

// BestBid returns the highest bid level, or nil.
func (b *Book) BestBid() *Level { return b.bids.Max() }

// BestAsk returns the lowest ask level, or nil.
func (b *Book) BestAsk() *Level { return b.asks.Min() }

// Levels is the number of distinct price levels on a side.
func (b *Book) Levels(s Side) int { return b.treeFor(s).Len() }

// RestingCount is the number of orders currently resting on both sides.
func (b *Book) RestingCount() int { return len(b.orders) }
