package book

type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "BUY"
	}
	return "SELL"
}

// Opposite returns the side an order matches against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Order is a resting limit instruction. Price and Qty are int64 ticks;
// Seq is a monotonic sequence number establishing time priority, not a
// wall-clock reading. While resting, the order is owned by exactly one
// price level's queue; the intrusive links and the level back-pointer
// exist so the locator can remove it in O(1).
type Order struct {
	ID    uint64
	Side  Side
	Price int64
	Qty   int64
	Seq   uint64

	level *Level
	next  *Order
	prev  *Order
}

// Next returns the order behind this one in its level's queue.
func (o *Order) Next() *Order { return o.next }

// Reset clears the order for pool reuse.
func (o *Order) Reset() { *o = Order{} }
