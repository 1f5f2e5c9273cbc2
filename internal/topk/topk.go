// Package topk selects the k highest-scoring items from a stream using a
// bounded min-heap. Equal scores favour the item offered first, so callers
// that offer items in index order get stable first-seen tie-breaking.
package topk

import (
	"container/heap"
)

// Item is a scored candidate. Index is the candidate's sequence number and
// breaks ties between equal scores (lower wins).
type Item struct {
	ID    string  `json:"id"`
	Index int     `json:"-"`
	Score float64 `json:"score"`
}

// Selector keeps the best k items offered so far.
type Selector struct {
	k int
	h itemHeap
}

func New(k int) *Selector {
	if k < 0 {
		k = 0
	}
	return &Selector{k: k, h: make(itemHeap, 0, k)}
}

// Offer considers item for the result set. The working set is seeded with the
// first k offers; afterwards an item replaces the current minimum only when
// it ranks strictly above it.
func (s *Selector) Offer(item Item) {
	if s.k == 0 {
		return
	}
	if s.h.Len() < s.k {
		heap.Push(&s.h, item)
		return
	}
	if worse(s.h[0], item) {
		s.h[0] = item
		heap.Fix(&s.h, 0)
	}
}

func (s *Selector) Len() int { return s.h.Len() }

// Results drains the selector and returns its items best first.
func (s *Selector) Results() []Item {
	result := make([]Item, s.h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&s.h).(Item)
	}
	return result
}

// IDs is Results reduced to identifiers.
func (s *Selector) IDs() []string {
	items := s.Results()
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// worse reports whether a ranks below b.
func worse(a, b Item) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Index > b.Index
}

type itemHeap []Item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool { return worse(h[i], h[j]) }

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x interface{}) {
	*h = append(*h, x.(Item))
}

func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
