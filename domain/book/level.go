package book

// Level is one price level: a FIFO queue of resting orders sharing a
// price on one side. A level is never empty while present in its side's
// tree; the book deletes it the moment its last order leaves.
type Level struct {
	Price      int64
	TotalQty   int64
	OrderCount int

	head *Order
	tail *Order
}

// Head returns the order with time priority at this level.
func (l *Level) Head() *Order { return l.head }

func (l *Level) Empty() bool { return l.head == nil }

// Enqueue appends o at the tail of the queue and takes ownership.
func (l *Level) Enqueue(o *Order) {
	if l.head == nil {
		l.head = o
		l.tail = o
	} else {
		l.tail.next = o
		o.prev = l.tail
		l.tail = o
	}
	o.level = l
	l.TotalQty += o.Qty
	l.OrderCount++
}

// Unlink removes o from the queue. o must belong to this level.
func (l *Level) Unlink(o *Order) {
	if o.level != l {
		panic("book: unlink of order not owned by level")
	}
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	l.TotalQty -= o.Qty
	l.OrderCount--
	if l.TotalQty < 0 || l.OrderCount < 0 {
		panic("book: level accounting went negative")
	}
	o.level = nil
	o.next = nil
	o.prev = nil
}

// reduce lowers the head order's remaining quantity bookkeeping after a
// partial fill.
func (l *Level) reduce(qty int64) {
	l.TotalQty -= qty
	if l.TotalQty < 0 {
		panic("book: level quantity went negative")
	}
}
