package index

import (
	"github.com/google/btree"

	"github.com/trigramsearch/lattice/trigram"
)

// TrigramCount pairs a trigram with the length of its posting list.
type TrigramCount struct {
	Trigram trigram.Trigram
	Count   int
}

// trigramCountItem adapts TrigramCount to btree.Item, ordering by Count
// ascending (ties broken by trigram value) so the btree's natural
// iteration order surfaces the smallest posting lists first.
type trigramCountItem TrigramCount

func (i trigramCountItem) Less(than btree.Item) bool {
	o := than.(trigramCountItem)
	if i.Count != o.Count {
		return i.Count < o.Count
	}
	return i.Trigram.Uint32() < o.Trigram.Uint32()
}

// TopTrigramsByPostingLength returns the n trigrams with the longest
// posting lists, descending by length. This is a supplemental
// introspection helper for index-health reporting — it does not
// participate in Search or Rebuild.
//
// Built on a github.com/google/btree ordered tree rather than a sort of
// the whole block table. The tree is rebuilt from every block on each
// call; nothing is cached between calls.
func (bt *BlockTable) TopTrigramsByPostingLength(n int) []TrigramCount {
	if n <= 0 || len(bt.Blocks) == 0 {
		return nil
	}

	tree := btree.New(32)
	for _, b := range bt.Blocks {
		tree.ReplaceOrInsert(trigramCountItem{Trigram: b.Trigram, Count: int(b.Len)})
	}

	out := make([]TrigramCount, 0, n)
	tree.Descend(func(item btree.Item) bool {
		out = append(out, TrigramCount(item.(trigramCountItem)))
		return len(out) < n
	})
	return out
}
