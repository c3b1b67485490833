// Package arena implements a bump allocator for document text: every
// ingested document is appended to one contiguous buffer and referenced by
// an (offset, length) span instead of its own heap allocation.
package arena

import "math"

// DocID identifies a document by its position in the arena.
type DocID uint32

// DocSpan is an (offset, length) reference into the arena buffer.
type DocSpan struct {
	Offset uint32
	Length uint16
}

// maxDocLength is the largest document the arena can store: a DocSpan's
// Length field is a uint16.
const maxDocLength = math.MaxUint16

// initialBufferCap and initialSpanCap mirror the Rust original's starting
// capacities (64KiB buffer, room for 1024 documents) to avoid early
// reallocation in the common case.
const (
	initialBufferCap = 64 * 1024
	initialSpanCap   = 1024
	growthFloor      = 4096
)

// Arena is a bump-allocated store of document text.
//
// Push is O(1) amortized; Get is O(1). Documents are never freed
// individually — Clear resets the whole arena at once.
type Arena struct {
	buffer []byte
	spans  []DocSpan
	head   int
}

// New creates an empty Arena with default initial capacity.
func New() *Arena {
	return WithCapacity(initialBufferCap, initialSpanCap)
}

// WithCapacity creates an empty Arena pre-sized for bufferCap bytes of text
// and docCap documents.
func WithCapacity(bufferCap, docCap int) *Arena {
	return &Arena{
		buffer: make([]byte, 0, bufferCap),
		spans:  make([]DocSpan, 0, docCap),
	}
}

// Len returns the number of documents stored.
func (a *Arena) Len() int {
	return len(a.spans)
}

// IsEmpty reports whether the arena holds no documents.
func (a *Arena) IsEmpty() bool {
	return len(a.spans) == 0
}

// Clear resets the bump pointer and document spans but keeps the
// underlying buffer's capacity, so the next round of Push calls doesn't
// need to reallocate.
func (a *Arena) Clear() {
	a.head = 0
	a.buffer = a.buffer[:0]
	a.spans = a.spans[:0]
}

// Push appends text to the arena and returns its DocID. ok is false if
// text is longer than 65535 bytes, in which case the arena is left
// unmodified.
func (a *Arena) Push(text string) (id DocID, ok bool) {
	n := len(text)
	if n > maxDocLength {
		return 0, false
	}

	a.grow(n)

	offset := a.head
	a.buffer = append(a.buffer, text...)
	a.head = offset + n

	id = DocID(len(a.spans))
	a.spans = append(a.spans, DocSpan{Offset: uint32(offset), Length: uint16(n)})
	return id, true
}

// grow ensures the buffer has room for n more bytes past the current head,
// growing by 1.5x (with a 4KiB floor) rather than relying solely on
// append's own growth, so the arena's reallocation pattern stays
// predictable under heavy ingest.
func (a *Arena) grow(n int) {
	needed := a.head + n
	if needed <= cap(a.buffer) {
		return
	}

	newCap := cap(a.buffer) * 3 / 2
	if newCap < needed {
		newCap = needed
	}
	if newCap < growthFloor {
		newCap = growthFloor
	}

	grown := make([]byte, len(a.buffer), newCap)
	copy(grown, a.buffer)
	a.buffer = grown
}

// Get returns the text stored for id, or ("", false) if id is out of
// range.
func (a *Arena) Get(id DocID) (string, bool) {
	idx := int(id)
	if idx < 0 || idx >= len(a.spans) {
		return "", false
	}
	span := a.spans[idx]
	start := int(span.Offset)
	end := start + int(span.Length)
	return string(a.buffer[start:end]), true
}

// Span returns the raw (offset, length) span for id, for callers that
// need the length without materializing the text (e.g. document-length
// scoring).
func (a *Arena) Span(id DocID) (DocSpan, bool) {
	idx := int(id)
	if idx < 0 || idx >= len(a.spans) {
		return DocSpan{}, false
	}
	return a.spans[idx], true
}
