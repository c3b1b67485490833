// Package trigram implements the packed 3-byte index key used throughout
// the search engine.
package trigram

// Trigram packs three consecutive bytes of normalized document text into
// the low 24 bits of a uint32: (b0<<16)|(b1<<8)|b2. The extra 8 bits exist
// purely for alignment; only the low 24 bits are ever meaningful.
type Trigram uint32

// Max is the largest possible trigram value (0xFFFFFF).
const Max uint32 = 0xFFFFFF

// FromBytes packs three bytes into a Trigram.
func FromBytes(b0, b1, b2 byte) Trigram {
	return Trigram(uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2))
}

// FromString packs the first three bytes of s into a Trigram. Callers must
// ensure len(s) >= 3; it is only ever called on strings already known to
// satisfy that, so the precondition isn't re-validated here.
func FromString(s string) Trigram {
	return FromBytes(s[0], s[1], s[2])
}

// Bytes returns the three packed bytes in order.
func (t Trigram) Bytes() [3]byte {
	return [3]byte{
		byte(t >> 16),
		byte(t >> 8),
		byte(t),
	}
}

// Uint32 returns the underlying packed value.
func (t Trigram) Uint32() uint32 {
	return uint32(t)
}

// Extract slides a 3-byte window over b and calls emit for each trigram.
// Emits exactly max(0, len(b)-2) trigrams; emits nothing for b shorter
// than 3 bytes. Operates byte-wise: multi-byte UTF-8 sequences are split
// across trigrams, which is intentional (substring-level fuzzy matching
// over normalized bytes, see normalize package).
func Extract(b []byte, emit func(Trigram)) {
	if len(b) < 3 {
		return
	}
	for i := 0; i <= len(b)-3; i++ {
		emit(FromBytes(b[i], b[i+1], b[i+2]))
	}
}

// Count returns the number of trigrams Extract would emit for b, without
// extracting them.
func Count(b []byte) int {
	if len(b) < 3 {
		return 0
	}
	return len(b) - 2
}
