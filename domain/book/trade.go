package book

// Trade records one executed match. Price is the resting (passive)
// order's price; Seq is the later of the two orders' sequence numbers,
// marking when the match became possible. Trades are appended to the
// ledger once and never mutated.
type Trade struct {
	BuyID  uint64
	SellID uint64
	Price  int64
	Qty    int64
	Seq    uint64
}

// Ledger is the append-only trade history, insertion order = execution
// order. It also tracks cumulative traded volume.
type Ledger struct {
	trades []Trade
	volume int64
}

func NewLedger() *Ledger {
	return &Ledger{trades: make([]Trade, 0, 1024)}
}

func (l *Ledger) Append(t Trade) {
	l.trades = append(l.trades, t)
	l.volume += t.Qty
}

// Trades returns the ledger in execution order. Callers must treat the
// returned slice as read-only.
func (l *Ledger) Trades() []Trade { return l.trades }

func (l *Ledger) Len() int { return len(l.trades) }

// TotalVolume is the sum of all executed trade quantities.
func (l *Ledger) TotalVolume() int64 { return l.volume }
