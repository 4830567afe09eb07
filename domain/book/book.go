package book

import "errors"

var (
	// ErrNotFound is returned by Cancel/Modify when the id is unknown or
	// already filled/canceled.
	ErrNotFound = errors.New("book: order not found")

	ErrDuplicateID  = errors.New("book: order id already resting")
	ErrInvalidQty   = errors.New("book: quantity must be positive")
	ErrInvalidPrice = errors.New("book: price must be positive")
)

// Book is the order book: one level tree per side, a locator from
// order id to the live order, and the trade ledger.
//
// The locator invariant is the central correctness property: an id is
// present in b.orders iff that order is resting in exactly one level's
// queue. Every code path that touches a queue goes through insert or
// remove so the two can never drift apart.
type Book struct {
	bids   *LevelTree
	asks   *LevelTree
	orders map[uint64]*Order
	ledger *Ledger

	// release, when set, receives every order that leaves the book
	// (filled or canceled) so the caller can recycle it. Modify does
	// not release: the order object survives with fresh attributes.
	release func(*Order)
}

// New creates an empty book. release may be nil.
func New(release func(*Order)) *Book {
	return &Book{
		bids:    NewLevelTree(),
		asks:    NewLevelTree(),
		orders:  make(map[uint64]*Order, 1024),
		ledger:  NewLedger(),
		release: release,
	}
}

// Add validates and inserts a limit order, then matches to quiescence.
// The book takes ownership of o; on error o is untouched and remains
// the caller's.
func (b *Book) Add(o *Order) error {
	if o.Qty <= 0 {
		return ErrInvalidQty
	}
	if o.Price <= 0 {
		return ErrInvalidPrice
	}
	if _, dup := b.orders[o.ID]; dup {
		return ErrDuplicateID
	}
	b.insert(o)
	b.match()
	return nil
}

// Cancel removes a resting order. Cancellation can never create a
// cross, so no matching runs.
func (b *Book) Cancel(id uint64) error {
	o, ok := b.orders[id]
	if !ok {
		return ErrNotFound
	}
	b.remove(o)
	if b.release != nil {
		b.release(o)
	}
	return nil
}

// Modify reprices/resizes a resting order. It is cancel + fresh insert
// under the same id: the order forfeits its queue position and joins
// the tail of its (possibly new) level with the given sequence number.
// A price change may cross the book, so matching re-runs.
func (b *Book) Modify(id uint64, qty, price int64, seq uint64) error {
	o, ok := b.orders[id]
	if !ok {
		return ErrNotFound
	}
	if qty <= 0 {
		return ErrInvalidQty
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	b.remove(o)
	o.Qty = qty
	o.Price = price
	o.Seq = seq
	b.insert(o)
	b.match()
	return nil
}

// Resting reports the remaining quantity of a resting order.
func (b *Book) Resting(id uint64) (int64, bool) {
	o, ok := b.orders[id]
	if !ok {
		return 0, false
	}
	return o.Qty, true
}

// Trades returns the ledger in execution order (read-only).
func (b *Book) Trades() []Trade { return b.ledger.Trades() }

// Ledger exposes the trade ledger for read-only consumers.
func (b *Book) Ledger() *Ledger { return b.ledger }

// ---- matching ----

// match trades the best bid against the best ask while they cross.
// Each iteration moves min(buyQty, sellQty) > 0, so total resting
// quantity strictly decreases and the loop terminates.
func (b *Book) match() {
	for {
		bestBid := b.bids.Max()
		bestAsk := b.asks.Min()
		if bestBid == nil || bestAsk == nil || bestBid.Price < bestAsk.Price {
			return
		}

		buy := bestBid.Head()
		sell := bestAsk.Head()

		qty := buy.Qty
		if sell.Qty < qty {
			qty = sell.Qty
		}
		if qty <= 0 {
			panic("book: non-positive fill quantity")
		}

		// Passive-price convention: the trade prints at the price of
		// whichever order was already resting, i.e. the earlier one.
		price := sell.Price
		if buy.Seq < sell.Seq {
			price = buy.Price
		}
		seq := buy.Seq
		if sell.Seq > seq {
			seq = sell.Seq
		}

		b.ledger.Append(Trade{
			BuyID:  buy.ID,
			SellID: sell.ID,
			Price:  price,
			Qty:    qty,
			Seq:    seq,
		})

		b.fill(buy, qty)
		b.fill(sell, qty)
	}
}

func (b *Book) fill(o *Order, qty int64) {
	o.level.reduce(qty)
	o.Qty -= qty
	if o.Qty < 0 {
		panic("book: order quantity went negative")
	}
	if o.Qty == 0 {
		b.remove(o)
		if b.release != nil {
			b.release(o)
		}
	}
}

// ---- index/locator plumbing ----

func (b *Book) treeFor(s Side) *LevelTree {
	if s == Bid {
		return b.bids
	}
	return b.asks
}

func (b *Book) insert(o *Order) {
	b.orders[o.ID] = o
	b.treeFor(o.Side).Upsert(o.Price).Enqueue(o)
}

func (b *Book) remove(o *Order) {
	lvl := o.level
	side := o.Side
	lvl.Unlink(o)
	if lvl.Empty() {
		if !b.treeFor(side).Delete(lvl.Price) {
			panic("book: emptied level missing from index")
		}
	}
	delete(b.orders, o.ID)
}
