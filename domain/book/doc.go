// Package book implements a single-instrument limit order book with
// price-time priority matching.
//
// Each side of the book is a red-black tree of price levels; every
// level holds a FIFO queue of resting orders sharing that price. A
// locator map from order id to the live order gives O(1) cancel and
// modify without scanning a side. After every mutation the matching
// loop runs to quiescence, so the invariant "best bid < best ask"
// holds whenever control returns to the caller.
//
// The book is single-writer: all mutations must be serialized by the
// owning caller. Executed trades accumulate in an append-only ledger.
package book
