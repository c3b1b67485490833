package compress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeltaEncodeBasic(t *testing.T) {
	var out []uint32
	err := DeltaEncode([]uint32{100, 105, 110, 115}, &out)
	require.NoError(t, err)
	require.Equal(t, []uint32{100, 5, 5, 5}, out)
}

func TestDeltaEncodeWithDuplicates(t *testing.T) {
	var out []uint32
	err := DeltaEncode([]uint32{1, 1, 2, 2, 3}, &out)
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 0, 1, 0, 1}, out)
}

func TestDeltaEncodeEmpty(t *testing.T) {
	var out []uint32
	err := DeltaEncode(nil, &out)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestDeltaEncodeSingle(t *testing.T) {
	var out []uint32
	err := DeltaEncode([]uint32{42}, &out)
	require.NoError(t, err)
	require.Equal(t, []uint32{42}, out)
}

func TestDeltaEncodeNotSorted(t *testing.T) {
	var out []uint32
	err := DeltaEncode([]uint32{10, 5, 15}, &out)
	require.ErrorIs(t, err, ErrNotSorted)
}

func TestDeltaDecodeBasic(t *testing.T) {
	var out []uint32
	err := DeltaDecode([]uint32{100, 5, 5, 5}, &out)
	require.NoError(t, err)
	require.Equal(t, []uint32{100, 105, 110, 115}, out)
}

func TestDeltaRoundtrip(t *testing.T) {
	original := []uint32{1, 2, 5, 10, 20, 50, 100}
	var encoded, decoded []uint32

	require.NoError(t, DeltaEncode(original, &encoded))
	require.NoError(t, DeltaDecode(encoded, &decoded))
	require.Equal(t, original, decoded)
}

func TestVarintEncodeSingleByte(t *testing.T) {
	var buf [MaxVarintLen]byte

	n := EncodeVarint(0, buf[:])
	require.Equal(t, []byte{0x00}, buf[:n])

	n = EncodeVarint(127, buf[:])
	require.Equal(t, []byte{0x7F}, buf[:n])
}

func TestVarintEncodeTwoBytes(t *testing.T) {
	var buf [MaxVarintLen]byte
	n := EncodeVarint(150, buf[:])
	require.Equal(t, []byte{0x96, 0x01}, buf[:n])
}

func TestVarintRoundtrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 16383, 16384, 1 << 20, 1<<32 - 1}
	var buf [MaxVarintLen]byte

	for _, v := range values {
		n := EncodeVarint(v, buf[:])
		got, read, err := DecodeVarint(buf[:n])
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, n, read)
	}
}

func TestDecodeVarintBufferTooSmall(t *testing.T) {
	_, _, err := DecodeVarint([]byte{0x96})
	require.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestDecodeVarintInvalid(t *testing.T) {
	buf := make([]byte, 6)
	for i := range buf {
		buf[i] = 0x80
	}
	buf[5] = 0x01
	_, _, err := DecodeVarint(buf)
	require.ErrorIs(t, err, ErrInvalidVarint)
}

func TestCompressDecompressRoundtrip(t *testing.T) {
	input := []uint32{100, 105, 110, 115, 10000, 10050}
	var compressed []byte
	n, err := CompressSorted(input, &compressed)
	require.NoError(t, err)
	require.Equal(t, len(compressed), n)

	var decompressed []uint32
	require.NoError(t, DecompressSorted(compressed, &decompressed))
	require.Equal(t, input, decompressed)
}

func TestCompressSavesSpace(t *testing.T) {
	input := []uint32{100, 105, 110, 115}
	var compressed []byte
	n, err := CompressSorted(input, &compressed)
	require.NoError(t, err)
	require.Less(t, n, len(input)*4)
}

func TestCompressEmpty(t *testing.T) {
	var compressed []byte
	n, err := CompressSorted(nil, &compressed)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, compressed)

	var decompressed []uint32
	require.NoError(t, DecompressSorted(compressed, &decompressed))
	require.Empty(t, decompressed)
}

func TestEstimateCompressedSizeSmallGaps(t *testing.T) {
	est := EstimateCompressedSize([]uint32{1, 2, 3, 4, 5})
	require.Equal(t, MaxVarintLen+4*1, est)
}

func TestEstimateCompressedSizeSingleValue(t *testing.T) {
	est := EstimateCompressedSize([]uint32{42})
	require.Equal(t, MaxVarintLen, est)
}

func TestEstimateCompressedSizeEmpty(t *testing.T) {
	require.Zero(t, EstimateCompressedSize(nil))
}
