package topk

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestSelectorOrdersDescending(t *testing.T) {
	s := New(3)
	scores := []float64{0.1, 0.7, 0.3, 0.9, 0.2, 0.5}
	for i, score := range scores {
		s.Offer(Item{ID: string(rune('a' + i)), Index: i, Score: score})
	}
	got := s.IDs()
	want := []string{"d", "b", "f"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestSelectorTiesKeepFirstSeen(t *testing.T) {
	s := New(2)
	for i, id := range []string{"x", "y", "z"} {
		s.Offer(Item{ID: id, Index: i, Score: 1})
	}
	got := s.IDs()
	want := []string{"x", "y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestSelectorFewerThanK(t *testing.T) {
	s := New(10)
	s.Offer(Item{ID: "only", Score: 2})
	if got := s.IDs(); len(got) != 1 || got[0] != "only" {
		t.Errorf("IDs() = %v", got)
	}
}

func TestSelectorZeroK(t *testing.T) {
	for _, k := range []int{0, -4} {
		s := New(k)
		s.Offer(Item{ID: "a", Score: 1})
		if got := s.Results(); len(got) != 0 {
			t.Errorf("k=%d: Results() = %v, want empty", k, got)
		}
	}
}

func TestSelectorMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	items := make([]Item, 500)
	for i := range items {
		items[i] = Item{ID: string(rune(0x4e00 + i)), Index: i, Score: rng.Float64()}
	}
	const k = 25
	s := New(k)
	for _, item := range items {
		s.Offer(item)
	}
	got := s.Results()

	sorted := append([]Item(nil), items...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if !reflect.DeepEqual(got, sorted[:k]) {
		t.Errorf("heap selection disagrees with full sort")
	}
}
