package rfc4648

import (
	"math"
	"slices"
	"unsafe"
)

// EncodedLength returns the number of bytes required to
// encode n bytes. It returns -1 if the input byte length
// cannot be encoded properly.
//
// If the input is zero, zero will be returned. Remember
// that UnsafeEncode requires the src argument
// to have a length greater than zero.
func (a Alphabet) EncodedLength(n int) int {
	if n < 0 {
		return -1
	}

	t := a.table()

	blocks := n / t.rawBlock
	if n%t.rawBlock != 0 {
		blocks++
	}

	if blocks > math.MaxInt/t.encBlock {
		return -1
	}

	return blocks * t.encBlock
}

func (a Alphabet) encodedLen(n int) int {
	result := a.EncodedLength(n)
	if result <= 0 {
		panic("rfc4648: invalid encode source length")
	}

	return result
}

// encode writes the encoded form of src to dst, padding a short final block.
//
// invariants:
//
// - len(dst) >= a.EncodedLength(len(src))
func (a Alphabet) encode(dst, src []byte) {
	t := a.table()

	switch a {
	case Hex:
		encodeHex(t, dst, src)
	case Base32Std, Base32Hex:
		encodeBase32(t, dst, src)
	case Base64Std, Base64URL:
		encodeBase64(t, dst, src)
	default:
		panic("rfc4648: invalid alphabet")
	}
}

func encodeHex(t *table, dst, src []byte) {
	dst = dst[:len(src)*2]

	for i, b := range src {
		dst[i*2] = t.enc[b>>4]
		dst[i*2+1] = t.enc[b&0x0F]
	}
}

func packBase32(t *table, dst []byte, b0, b1, b2, b3, b4 byte) {
	_ = dst[7]

	dst[0] = t.enc[b0>>3]
	dst[1] = t.enc[((b0<<2)|(b1>>6))&31]
	dst[2] = t.enc[(b1>>1)&31]
	dst[3] = t.enc[((b1<<4)|(b2>>4))&31]
	dst[4] = t.enc[((b2<<1)|(b3>>7))&31]
	dst[5] = t.enc[(b3>>2)&31]
	dst[6] = t.enc[((b3<<3)|(b4>>5))&31]
	dst[7] = t.enc[b4&31]
}

func encodeBase32(t *table, dst, src []byte) {
	for len(src) >= 5 {
		packBase32(t, dst, src[0], src[1], src[2], src[3], src[4])

		src = src[5:]
		dst = dst[8:]
	}

	if len(src) == 0 {
		return
	}

	// Tail: the missing bytes pack as zero bits, then every position past
	// the data symbols is overwritten with padding.
	var b [5]byte
	n := copy(b[:], src)

	packBase32(t, dst, b[0], b[1], b[2], b[3], b[4])

	for i := int(t.tailSymbols[n]); i < 8; i++ {
		dst[i] = padChar
	}
}

func packBase64(t *table, dst []byte, b0, b1, b2 byte) {
	_ = dst[3]

	v := uint(b0)<<16 | uint(b1)<<8 | uint(b2)

	dst[0] = t.enc[v>>18&0x3F]
	dst[1] = t.enc[v>>12&0x3F]
	dst[2] = t.enc[v>>6&0x3F]
	dst[3] = t.enc[v&0x3F]
}

func encodeBase64(t *table, dst, src []byte) {
	for len(src) >= 3 {
		packBase64(t, dst, src[0], src[1], src[2])

		src = src[3:]
		dst = dst[4:]
	}

	// Tail.
	switch len(src) {
	case 1:
		packBase64(t, dst, src[0], 0, 0)
		dst[2] = padChar
		dst[3] = padChar
	case 2:
		packBase64(t, dst, src[0], src[1], 0)
		dst[3] = padChar
	}
}

// UnsafeEncode fills dst with the encoded form of src.
//
// It should generally only be used when working with pre-validated
// sizes of data like in the case of data types with known byte-lengths.
//
// This function panics if the source is empty or if the destination
// does not have enough space in the slice for the encoded form of src.
//
// Knowing the length of the slice now occupied by the encoded form of src
// is the responsibility of the caller. It is always a.EncodedLength(len(src)).
//
// invariants:
//
// - len(src) > 0
//
// - len(dst) >= a.EncodedLength(len(src))
func (a Alphabet) UnsafeEncode(dst []byte, src []byte) {
	// guard statements forcing panics rather than letting next call
	// lead to undefined behaviors

	if n := a.encodedLen(len(src)); len(dst) < n {
		panic("rfc4648: encode destination too short")
	}

	a.encode(dst, src)
}

// Encode returns nil if src is empty, otherwise it returns the
// encoded form of src.
func (a Alphabet) Encode(src []byte) []byte {
	n := len(src)
	if n == 0 {
		return nil
	}

	dst := make([]byte, a.encodedLen(n))

	a.encode(dst, src)

	return dst
}

// EncodeString returns "" if src is empty, otherwise it returns the
// encoded form of src.
func (a Alphabet) EncodeString(src string) string {
	n := len(src)
	if n == 0 {
		return ""
	}

	dst := make([]byte, a.encodedLen(n))

	a.encode(dst, unsafe.Slice(unsafe.StringData(src), n))

	return unsafe.String(unsafe.SliceData(dst), len(dst))
}

// AppendEncode returns the encoded form of src appended to dst
// if src is not empty. If src is empty dst is returned as-is.
func (a Alphabet) AppendEncode(dst, src []byte) []byte {
	n := len(src)
	if n == 0 {
		return dst
	}

	n = a.encodedLen(n)
	orig := len(dst)

	dst = slices.Grow(dst, n)
	dst = dst[:orig+n]

	a.encode(dst[orig:], src)

	return dst
}

// AppendEncodeString returns the encoded form of src appended to dst
// if src is not empty. If src is empty dst is returned as-is.
func (a Alphabet) AppendEncodeString(dst []byte, src string) []byte {
	n := len(src)
	if n == 0 {
		return dst
	}

	return a.AppendEncode(dst, unsafe.Slice(unsafe.StringData(src), n))
}
