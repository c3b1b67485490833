// Package metrics holds the engine's lifetime counters and index-size
// snapshots, kept separate from the index and lattice packages so stats
// formatting and counter bookkeeping don't entangle with the hot path.
package metrics

import (
	"fmt"

	"github.com/trigramsearch/lattice/compress"
	"github.com/trigramsearch/lattice/index"
)

// Counters tracks the engine's lifetime activity. All three fields are
// reset together by Clear — there is no notion of a counter that survives
// a clear, since a cleared engine has no meaningful history left to report.
type Counters struct {
	DocumentsIndexed uint64
	QueriesExecuted  uint64
	CurrentDocCount  uint64
}

// Clear resets all counters to zero.
func (c *Counters) Clear() {
	*c = Counters{}
}

// topTrigramsReportSize bounds how many entries Stats/StatsWithCompression
// populate into Snapshot.TopTrigrams.
const topTrigramsReportSize = 10

// Snapshot is a point-in-time view of index size, optionally including a
// compression estimate.
type Snapshot struct {
	NumDocuments     int
	NumTrigrams      int
	TotalPostings    int
	CompressedBytes  int
	CompressionRatio float32
	HasCompression   bool

	// TopTrigrams holds the topTrigramsReportSize trigrams with the
	// longest posting lists, descending by length, for index-health
	// reporting.
	TopTrigrams []index.TrigramCount
}

// String renders the snapshot the way the reference implementation's
// Display impl does: "N docs, N trigrams, N postings[, compressed: ...]".
func (s Snapshot) String() string {
	out := fmt.Sprintf("%d docs, %d trigrams, %d postings", s.NumDocuments, s.NumTrigrams, s.TotalPostings)
	if s.HasCompression {
		original := s.TotalPostings * 4
		savings := original - s.CompressedBytes
		if savings < 0 {
			savings = 0
		}
		out += fmt.Sprintf(", compressed: %d bytes (%.1f%%, saved %d bytes)",
			s.CompressedBytes, s.CompressionRatio*100, savings)
	}
	return out
}

// MemoryUsageBytes approximates the index's resident size: 12 bytes per
// trigram block (trigram + offset + len, each a uint32) plus 4 bytes per
// posting.
func (s Snapshot) MemoryUsageBytes() int {
	return s.NumTrigrams*4*3 + s.TotalPostings*4
}

// Stats builds a Snapshot from a committed block table, without computing
// compression.
func Stats(table *index.BlockTable, numDocuments int) Snapshot {
	return Snapshot{
		NumDocuments:  numDocuments,
		NumTrigrams:   len(table.Blocks),
		TotalPostings: len(table.Postings),
		TopTrigrams:   table.TopTrigramsByPostingLength(topTrigramsReportSize),
	}
}

// StatsWithCompression builds a Snapshot that additionally compresses
// every posting block with delta+varint encoding to report an exact
// compressed size and ratio.
func StatsWithCompression(table *index.BlockTable, numDocuments int) Snapshot {
	s := Stats(table, numDocuments)

	if len(table.Postings) == 0 {
		s.HasCompression = true
		s.CompressionRatio = 1.0
		return s
	}

	var buf []byte
	total := 0
	for _, b := range table.Blocks {
		postings := index.BlockPostings(b, table.Postings)
		n, err := compress.CompressSorted(postings, &buf)
		if err == nil {
			total += n
		}
	}

	originalBytes := len(table.Postings) * 4
	ratio := float32(1.0)
	if originalBytes > 0 {
		ratio = float32(total) / float32(originalBytes)
	}

	s.HasCompression = true
	s.CompressedBytes = total
	s.CompressionRatio = ratio
	return s
}

// EstimateCompressed returns a fast compressed-size estimate without
// running a full compression pass, summing
// compress.EstimateCompressedSize over every block.
func EstimateCompressed(table *index.BlockTable) int {
	total := 0
	for _, b := range table.Blocks {
		postings := index.BlockPostings(b, table.Postings)
		total += compress.EstimateCompressedSize(postings)
	}
	return total
}
