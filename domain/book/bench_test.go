package book

import "testing"

func BenchmarkAddResting(b *testing.B) {
	bk := New(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o := &Order{
			ID:    uint64(i + 1),
			Side:  Bid,
			Price: int64(1 + i%512),
			Qty:   10,
			Seq:   uint64(i + 1),
		}
		_ = bk.Add(o)
	}
}

func BenchmarkAddAndCancel(b *testing.B) {
	bk := New(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := uint64(i + 1)
		o := &Order{ID: id, Side: Bid, Price: int64(1 + i%512), Qty: 10, Seq: id}
		_ = bk.Add(o)
		_ = bk.Cancel(id)
	}
}

func BenchmarkMatchCross(b *testing.B) {
	bk := New(nil)
	seq := uint64(0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq++
		_ = bk.Add(&Order{ID: seq, Side: Bid, Price: 100, Qty: 1, Seq: seq})
		seq++
		_ = bk.Add(&Order{ID: seq, Side: Ask, Price: 100, Qty: 1, Seq: seq})
	}
}
