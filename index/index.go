// Package index holds the posting-list data structures and the delta
// buffer -> sorted blocks build pipeline for the trigram inverted index.
// It has no notion of documents' text or scoring; those live in arena and
// search respectively. The lattice package wires all three together.
package index

import (
	"sort"

	"github.com/trigramsearch/lattice/trigram"
)

// DocID identifies a document by its position in the arena.
type DocID = uint32

// Tunable limits carried over unchanged from the reference design.
const (
	MaxQueryTrigrams   = 30
	PrefixBonus        = 2
	MaxCandidates      = 100_000
	MaxQueryLength     = 1_000
	MaxSeedPostingList = 100_000

	// RadixSortThreshold is the delta-entry count at or above which
	// SortDelta switches from a comparison sort to a 7-pass LSD radix sort.
	RadixSortThreshold = 512
)

// PostingBlock names the contiguous slice of Postings belonging to one
// trigram: Postings[Offset : Offset+Len].
type PostingBlock struct {
	Trigram trigram.Trigram
	Offset  uint32
	Len     uint32
}

// DeltaEntry is one (trigram, doc) occurrence recorded before a rebuild
// folds it into sorted blocks.
type DeltaEntry struct {
	Trigram trigram.Trigram
	DocID   DocID
}

// BlockTable is the committed, sorted state of the inverted index: a
// sorted slice of blocks, each pointing at a run of its trigram's document
// ids in Postings. Both Blocks and Postings are replaced wholesale on
// every rebuild — there is no in-place mutation.
type BlockTable struct {
	Blocks   []PostingBlock
	Postings []DocID
}

// Find returns the index of the block for trigram t via binary search, or
// ok=false if the index has no postings for t.
func (bt *BlockTable) Find(t trigram.Trigram) (idx int, ok bool) {
	blocks := bt.Blocks
	n := len(blocks)
	i := sort.Search(n, func(i int) bool {
		return blocks[i].Trigram.Uint32() >= t.Uint32()
	})
	if i < n && blocks[i].Trigram == t {
		return i, true
	}
	return 0, false
}

// BlockPostings returns the slice of document ids for block.
func BlockPostings(block PostingBlock, postings []DocID) []DocID {
	return postings[block.Offset : block.Offset+block.Len]
}

// SortDelta sorts entries by (trigram, doc id) ascending, dispatching to a
// comparison sort below RadixSortThreshold entries and a 7-pass LSD radix
// sort at or above it (4 passes over the doc id's bytes LSB-first, 3 passes
// over the trigram's 24 packed bits).
func SortDelta(entries []DeltaEntry) {
	if len(entries) < RadixSortThreshold {
		sort.Slice(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.Trigram != b.Trigram {
				return a.Trigram.Uint32() < b.Trigram.Uint32()
			}
			return a.DocID < b.DocID
		})
		return
	}

	aux := make([]DeltaEntry, len(entries))
	radixPass(entries, aux, func(e DeltaEntry) byte { return byte(e.DocID) })
	radixPass(aux, entries, func(e DeltaEntry) byte { return byte(e.DocID >> 8) })
	radixPass(entries, aux, func(e DeltaEntry) byte { return byte(e.DocID >> 16) })
	radixPass(aux, entries, func(e DeltaEntry) byte { return byte(e.DocID >> 24) })
	radixPass(entries, aux, func(e DeltaEntry) byte { return byte(e.Trigram.Uint32()) })
	radixPass(aux, entries, func(e DeltaEntry) byte { return byte(e.Trigram.Uint32() >> 8) })
	radixPass(entries, aux, func(e DeltaEntry) byte { return byte(e.Trigram.Uint32() >> 16) })

	copy(entries, aux)
}

// radixPass performs one counting-sort pass of src into dst keyed by
// keyFn, a classic LSD radix sort building block: count occurrences of
// each byte value, prefix-sum into starting offsets, then scatter.
func radixPass(src, dst []DeltaEntry, keyFn func(DeltaEntry) byte) {
	var hist [256]uint32
	for _, e := range src {
		hist[keyFn(e)]++
	}

	var offsets [256]uint32
	var sum uint32
	for k := 0; k < 256; k++ {
		offsets[k] = sum
		sum += hist[k]
	}

	for _, e := range src {
		k := keyFn(e)
		dst[offsets[k]] = e
		offsets[k]++
	}
}

// BuildBlocksFromSorted converts a (trigram, doc id)-sorted run of entries
// into a BlockTable. entries must already be sorted by
// SortDelta. Consecutive equal doc ids within the same trigram's run are
// collapsed to one posting.
func BuildBlocksFromSorted(entries []DeltaEntry) BlockTable {
	if len(entries) == 0 {
		return BlockTable{}
	}

	blocks := make([]PostingBlock, 0)
	postings := make([]DocID, 0, len(entries))

	currentTrigram := entries[0].Trigram
	var currentOffset, currentLen uint32
	var lastDocID DocID
	haveLast := false

	flush := func() {
		blocks = append(blocks, PostingBlock{
			Trigram: currentTrigram,
			Offset:  currentOffset,
			Len:     currentLen,
		})
	}

	for _, e := range entries {
		if e.Trigram != currentTrigram {
			flush()
			currentOffset += currentLen
			currentTrigram = e.Trigram
			currentLen = 0
			haveLast = false
		}

		if !haveLast || lastDocID != e.DocID {
			postings = append(postings, e.DocID)
			currentLen++
			lastDocID = e.DocID
			haveLast = true
		}
	}
	flush()

	return BlockTable{Blocks: blocks, Postings: postings}
}

// Merge two-way merges a (trigram-sorted) committed BlockTable with a
// freshly built delta BlockTable, producing a new sorted BlockTable in
// O(len(a)+len(b)). Matching trigrams have their posting lists merged and
// deduplicated via MergeSortedDedup.
func Merge(a, b BlockTable) BlockTable {
	out := BlockTable{
		Blocks:   make([]PostingBlock, 0, len(a.Blocks)+len(b.Blocks)),
		Postings: make([]DocID, 0, len(a.Postings)+len(b.Postings)),
	}

	ai, bi := 0, 0
	for ai < len(a.Blocks) && bi < len(b.Blocks) {
		at := a.Blocks[ai].Trigram.Uint32()
		bt := b.Blocks[bi].Trigram.Uint32()

		switch {
		case at < bt:
			copyBlock(a.Blocks[ai], a.Postings, &out)
			ai++
		case at > bt:
			copyBlock(b.Blocks[bi], b.Postings, &out)
			bi++
		default:
			aList := BlockPostings(a.Blocks[ai], a.Postings)
			bList := BlockPostings(b.Blocks[bi], b.Postings)
			mergedOffset := uint32(len(out.Postings))
			out.Postings = MergeSortedDedup(aList, bList, out.Postings)
			mergedLen := uint32(len(out.Postings)) - mergedOffset
			out.Blocks = append(out.Blocks, PostingBlock{
				Trigram: a.Blocks[ai].Trigram,
				Offset:  mergedOffset,
				Len:     mergedLen,
			})
			ai++
			bi++
		}
	}
	for ; ai < len(a.Blocks); ai++ {
		copyBlock(a.Blocks[ai], a.Postings, &out)
	}
	for ; bi < len(b.Blocks); bi++ {
		copyBlock(b.Blocks[bi], b.Postings, &out)
	}

	return out
}

func copyBlock(block PostingBlock, sourcePostings []DocID, out *BlockTable) {
	newOffset := uint32(len(out.Postings))
	out.Postings = append(out.Postings, BlockPostings(block, sourcePostings)...)
	out.Blocks = append(out.Blocks, PostingBlock{
		Trigram: block.Trigram,
		Offset:  newOffset,
		Len:     block.Len,
	})
}

// MergeSortedDedup merges two ascending, deduplicated doc id slices,
// appending the result (also ascending and deduplicated) to out.
func MergeSortedDedup(a, b []DocID, out []DocID) []DocID {
	ai, bi := 0, 0
	for ai < len(a) && bi < len(b) {
		switch {
		case a[ai] < b[bi]:
			out = append(out, a[ai])
			ai++
		case a[ai] > b[bi]:
			out = append(out, b[bi])
			bi++
		default:
			out = append(out, a[ai])
			ai++
			bi++
		}
	}
	out = append(out, a[ai:]...)
	out = append(out, b[bi:]...)
	return out
}

// Rebuild folds delta (sorted in place) into committed, returning the new
// committed BlockTable. Takes the cold-start fast path (build directly)
// when committed currently has no blocks, otherwise merges.
func Rebuild(committed BlockTable, delta []DeltaEntry) BlockTable {
	if len(delta) == 0 {
		return committed
	}

	SortDelta(delta)
	deltaTable := BuildBlocksFromSorted(delta)

	if len(committed.Blocks) == 0 {
		return deltaTable
	}
	return Merge(committed, deltaTable)
}
