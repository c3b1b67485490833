// Package search implements the query evaluator: given a normalized query
// and a committed index.BlockTable, it resolves matching documents and
// scores them. It has no notion of normalization or storage — those are
// the caller's (lattice package's) job; search operates purely on packed
// trigrams, posting lists, and document lengths.
package search

import (
	"math"
	"sort"

	"github.com/trigramsearch/lattice/index"
	"github.com/trigramsearch/lattice/trigram"
)

// Config controls the evaluator's overlap requirement and reserves the
// two fuzzy-matching knobs the evaluator does not currently act on.
type Config struct {
	// MinOverlapRatio is the fraction of retained query trigrams (rounded
	// up, clamped to at least 1) that must hard-match for a document to
	// be considered at all.
	MinOverlapRatio float32

	// EnableFuzzy and MaxEditDistance are accepted for forward
	// compatibility with an edit-distance reranking pass; the evaluator
	// does not currently read them.
	EnableFuzzy     bool
	MaxEditDistance uint8
}

// DefaultConfig is the engine's default: 30% overlap required, fuzzy
// reranking nominally enabled (currently a no-op — see EnableFuzzy).
func DefaultConfig() Config {
	return Config{MinOverlapRatio: 0.3, EnableFuzzy: true, MaxEditDistance: 2}
}

// ExactConfig requires a higher overlap and disables fuzzy reranking.
func ExactConfig() Config {
	return Config{MinOverlapRatio: 0.5, EnableFuzzy: false, MaxEditDistance: 0}
}

// FuzzyConfig lowers the overlap requirement for more permissive matching.
func FuzzyConfig() Config {
	return Config{MinOverlapRatio: 0.2, EnableFuzzy: true, MaxEditDistance: 2}
}

// Result is one scored match. Its natural order (see Less) is ascending
// by score then by doc id, so that sorting descending yields best-match-
// first with a deterministic tiebreak.
type Result struct {
	DocID index.DocID
	Score float32
}

// Less reports whether r sorts before o under SearchResult's natural
// order: primary by score ascending, secondary by doc id ascending.
func (r Result) Less(o Result) bool {
	if r.Score != o.Score {
		return r.Score < o.Score
	}
	return r.DocID < o.DocID
}

// candidate tracks a document's accumulated trigram-match count while
// intersecting/merging posting lists.
type candidate struct {
	docID   index.DocID
	matches uint16
}

// queryTrigram is a retained query trigram's posting-list location plus
// its prefix bonus, ready for length-based sorting and merge-joining.
type queryTrigram struct {
	offset uint32
	length uint32
	bonus  uint8
}

// Scratch holds the evaluator's reusable buffers, owned by the caller
// (lattice.Engine) and passed in by pointer so repeated Eval calls don't
// allocate once the buffers have grown to their working size.
type Scratch struct {
	queryTrigrams []queryTrigram
	candidates    []candidate
	results       []Result
}

// Eval runs the full query evaluation pipeline against table using the
// already-normalized query bytes, writing results into scratch and
// returning up to limit of them, best match first.
//
// queryBytes longer than index.MaxQueryLength or shorter than 3 bytes, or
// limit == 0, resolve to no results without error — queries never fail.
func Eval(table *index.BlockTable, docLengths []uint32, cfg Config, queryBytes []byte, limit int, scratch *Scratch) []Result {
	if limit == 0 || len(queryBytes) > index.MaxQueryLength || len(queryBytes) < 3 {
		return nil
	}

	maxTrigrams := len(queryBytes) - 2
	if maxTrigrams > index.MaxQueryTrigrams {
		maxTrigrams = index.MaxQueryTrigrams
	}

	scratch.queryTrigrams = scratch.queryTrigrams[:0]
	for i := 0; i < maxTrigrams; i++ {
		t := trigram.FromBytes(queryBytes[i], queryBytes[i+1], queryBytes[i+2])
		bonus := uint8(1)
		if i < 3 {
			bonus = index.PrefixBonus
		}
		blockIdx, ok := table.Find(t)
		if !ok {
			continue
		}
		b := table.Blocks[blockIdx]
		scratch.queryTrigrams = append(scratch.queryTrigrams, queryTrigram{
			offset: b.Offset,
			length: b.Len,
			bonus:  bonus,
		})
	}

	if len(scratch.queryTrigrams) == 0 {
		return nil
	}

	sort.Slice(scratch.queryTrigrams, func(i, j int) bool {
		return scratch.queryTrigrams[i].length < scratch.queryTrigrams[j].length
	})

	if scratch.queryTrigrams[0].length > index.MaxSeedPostingList {
		return nil
	}

	total := len(scratch.queryTrigrams)
	requiredEnd := int(math.Ceil(float64(total) * float64(cfg.MinOverlapRatio)))
	if requiredEnd < 1 {
		requiredEnd = 1
	}
	if requiredEnd > total {
		requiredEnd = total
	}

	qt0 := scratch.queryTrigrams[0]
	if qt0.length > index.MaxCandidates {
		return nil
	}

	seed := table.Postings[qt0.offset : qt0.offset+qt0.length]
	scratch.candidates = scratch.candidates[:0]
	for _, docID := range seed {
		scratch.candidates = append(scratch.candidates, candidate{docID: docID, matches: uint16(qt0.bonus)})
	}

	for i := 1; i < requiredEnd; i++ {
		qt := scratch.queryTrigrams[i]
		postings := table.Postings[qt.offset : qt.offset+qt.length]
		scratch.candidates = hardIntersect(scratch.candidates, postings, qt.bonus)
		if len(scratch.candidates) == 0 {
			return nil
		}
	}

	for i := requiredEnd; i < total; i++ {
		qt := scratch.queryTrigrams[i]
		postings := table.Postings[qt.offset : qt.offset+qt.length]
		softMerge(scratch.candidates, postings, qt.bonus)
	}

	scratch.results = scratch.results[:0]
	for _, c := range scratch.candidates {
		score := computeScore(docLengths, c.docID, int(c.matches), total)
		scratch.results = append(scratch.results, Result{DocID: c.docID, Score: score})
	}

	if len(scratch.results) > limit {
		partialSortDescending(scratch.results, limit)
		scratch.results = scratch.results[:limit]
	}
	sort.Slice(scratch.results, func(i, j int) bool {
		a, b := scratch.results[i], scratch.results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.DocID < b.DocID
	})

	return scratch.results
}

// hardIntersect merge-joins candidates against postings, keeping only
// candidates present in postings and adding bonus to their match count.
// Non-matches are dropped. Runs in place via a write cursor, O(len(candidates)+len(postings)).
func hardIntersect(candidates []candidate, postings []index.DocID, bonus uint8) []candidate {
	writeIdx := 0
	postingIdx := 0
	bonus16 := uint16(bonus)

	for readIdx := 0; readIdx < len(candidates); readIdx++ {
		c := candidates[readIdx]

		for postingIdx < len(postings) && postings[postingIdx] < c.docID {
			postingIdx++
		}

		if postingIdx < len(postings) && postings[postingIdx] == c.docID {
			candidates[writeIdx] = candidate{docID: c.docID, matches: c.matches + bonus16}
			writeIdx++
			postingIdx++
		}
	}

	return candidates[:writeIdx]
}

// softMerge merge-joins candidates against postings, adding bonus to any
// candidate present in postings but never dropping a candidate.
func softMerge(candidates []candidate, postings []index.DocID, bonus uint8) {
	postingIdx := 0
	bonus16 := uint16(bonus)

	for i := range candidates {
		c := &candidates[i]
		for postingIdx < len(postings) && postings[postingIdx] < c.docID {
			postingIdx++
		}
		if postingIdx < len(postings) && postings[postingIdx] == c.docID {
			c.matches += bonus16
			postingIdx++
		}
	}
}

// computeScore implements match_ratio^2 * len_factor, where len_factor
// rewards shorter documents: 100/(1+sqrt(doc_len)), or 100 for an unknown
// or zero-length document.
func computeScore(docLengths []uint32, docID index.DocID, matches, queryTrigrams int) float32 {
	var docLen uint32
	if int(docID) < len(docLengths) {
		docLen = docLengths[docID]
	}

	lenFactor := float32(100)
	if docLen > 0 {
		lenFactor = 100.0 / (1.0 + float32(math.Sqrt(float64(docLen))))
	}

	denom := queryTrigrams
	if denom < 1 {
		denom = 1
	}
	matchRatio := float32(matches) / float32(denom)
	return matchRatio * matchRatio * lenFactor
}

// partialSortDescending partitions results so the top k (by descending
// score) occupy results[:k], via a single quickselect pass — avoiding a
// full sort when only the top-k survive to the final limit.
func partialSortDescending(results []Result, k int) {
	lo, hi := 0, len(results)-1
	for lo < hi {
		pivot := results[(lo+hi)/2].Score
		i, j := lo, hi
		for i <= j {
			for results[i].Score > pivot {
				i++
			}
			for results[j].Score < pivot {
				j--
			}
			if i <= j {
				results[i], results[j] = results[j], results[i]
				i++
				j--
			}
		}
		if k <= j {
			hi = j
		} else if k >= i {
			lo = i
		} else {
			return
		}
	}
}
