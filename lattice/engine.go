// Package lattice is the engine facade: it owns the arena, the committed
// and delta index state, document lengths, normalizer, and every reusable
// scratch buffer, wiring together arena, normalize, trigram, index,
// search, compress, and metrics into the single-threaded, synchronous API
// described for this search engine.
package lattice

import (
	"bytes"

	"github.com/trigramsearch/lattice/arena"
	"github.com/trigramsearch/lattice/index"
	"github.com/trigramsearch/lattice/metrics"
	"github.com/trigramsearch/lattice/normalize"
	"github.com/trigramsearch/lattice/search"
	"github.com/trigramsearch/lattice/trigram"
)

// SearchResult is a scored match returned by Search: ordered primarily by
// descending score, secondarily by ascending DocID.
type SearchResult = search.Result

// Engine is a single-threaded, in-process fuzzy full-text search engine
// over a trigram inverted index. It is not safe for concurrent use — all
// ingest/query buffers are owned mutably by the Engine and reused across
// calls.
type Engine struct {
	documents  *arena.Arena
	docLengths []uint32

	table index.BlockTable
	delta []index.DeltaEntry

	normalizer *normalize.Normalizer
	config     search.Config

	needsRebuild bool

	normBuf  bytes.Buffer
	queryBuf bytes.Buffer
	scratch  search.Scratch

	counters metrics.Counters
}

// New creates an empty Engine using the default search configuration
// (30% minimum trigram overlap).
func New() *Engine {
	return WithConfig(search.DefaultConfig())
}

// WithConfig creates an empty Engine using the given search configuration.
func WithConfig(cfg search.Config) *Engine {
	return &Engine{
		documents:  arena.WithCapacity(1024*1024, 1024),
		normalizer: normalize.Default(),
		config:     cfg,
	}
}

// Len returns the number of documents in the index.
func (e *Engine) Len() int {
	return e.documents.Len()
}

// IsEmpty reports whether the index contains no documents.
func (e *Engine) IsEmpty() bool {
	return e.documents.IsEmpty()
}

// Clear removes all documents and resets the index, including every
// lifetime counter.
func (e *Engine) Clear() {
	e.documents.Clear()
	e.docLengths = e.docLengths[:0]
	e.table = index.BlockTable{}
	e.delta = e.delta[:0]
	e.needsRebuild = false
	e.counters.Clear()
}

// Add normalizes and ingests content, returning its assigned document id.
// Rejects content over MaxDocumentBytes or containing a disallowed
// control character with a *DocumentError; any other outcome is success.
// Documents that normalize to under 3 bytes are stored (retrievable via
// Get) but contribute no trigrams — they can never be found by Search.
func (e *Engine) Add(content string) (index.DocID, error) {
	if err := validate(content); err != nil {
		return 0, err
	}

	e.normalizer.NormalizeInto(content, &e.normBuf)
	normalized := e.normBuf.String()

	docLen := uint32(len(normalized))
	docID, ok := e.documents.Push(normalized)
	if !ok {
		// validate() already enforces the same 65535 cap, so this is
		// unreachable in practice; kept as a defensive fallback rather
		// than a panic since Add's contract is to return an error.
		return 0, newTooLargeError(len(normalized), MaxDocumentBytes)
	}
	e.docLengths = append(e.docLengths, docLen)

	if len(normalized) >= 3 {
		trigram.Extract([]byte(normalized), func(t trigram.Trigram) {
			e.delta = append(e.delta, index.DeltaEntry{Trigram: t, DocID: docID})
		})
		e.needsRebuild = true
	}

	e.counters.DocumentsIndexed++
	e.counters.CurrentDocCount++
	return docID, nil
}

// AddBatch adds each of contents in order, returning the number added and
// failed and the most recent error encountered (nil if none failed).
func (e *Engine) AddBatch(contents []string) (added, failed int, lastErr error) {
	for _, c := range contents {
		if _, err := e.Add(c); err != nil {
			failed++
			lastErr = err
			continue
		}
		added++
	}
	return added, failed, lastErr
}

// Get returns the normalized text stored for id, or ("", false) if id is
// unknown.
func (e *Engine) Get(id index.DocID) (string, bool) {
	return e.documents.Get(id)
}

// Search resolves query against the index, returning up to limit results
// best-match-first. Rebuilds the committed index in-line first if any
// documents were added since the last Search or rebuild.
func (e *Engine) Search(query string, limit int) []SearchResult {
	e.counters.QueriesExecuted++

	if e.IsEmpty() || limit == 0 {
		return nil
	}

	// Checked against the raw query, before normalization: whitespace
	// collapsing or diacritic stripping can shrink a query by orders of
	// magnitude, so this must reject on the length the caller actually
	// sent, not what it normalizes to.
	if len(query) > index.MaxQueryLength {
		return nil
	}

	if e.needsRebuild {
		e.rebuild()
	}

	e.queryBuf.Reset()
	e.normalizer.NormalizeInto(query, &e.queryBuf)

	results := search.Eval(&e.table, e.docLengths, e.config, e.queryBuf.Bytes(), limit, &e.scratch)

	out := make([]SearchResult, len(results))
	copy(out, results)
	return out
}

func (e *Engine) rebuild() {
	e.table = index.Rebuild(e.table, e.delta)
	e.delta = e.delta[:0]
	e.needsRebuild = false
}

// Stats returns a snapshot of index size without computing compression.
func (e *Engine) Stats() metrics.Snapshot {
	return metrics.Stats(&e.table, e.documents.Len())
}

// StatsWithCompression returns a snapshot of index size including an exact
// compressed-postings size and ratio.
func (e *Engine) StatsWithCompression() metrics.Snapshot {
	return metrics.StatsWithCompression(&e.table, e.documents.Len())
}

// Metrics returns the engine's lifetime counters.
func (e *Engine) Metrics() metrics.Counters {
	return e.counters
}
