// Decoding rejects encodings whose final group carries non-zero bits past the
// last whole output byte. RFC 4648 allows decoders to ignore them but a
// canonical encoder always clears them, so a set bit means the value was
// produced by something else or was damaged along the way. Callers packing
// data into those bits must clear them before decoding.

package rfc4648

import "slices"

// DecodeOutcome is the result of a decode pass.
type DecodeOutcome struct {
	// N is the number of bytes written to the destination.
	N int
	// Terminated is true when the pass consumed a padded final group, so no
	// further input belongs to the same message. For Hex, which has no
	// padding, it reports that every digit was paired.
	Terminated bool
}

// DecodedLength returns the maximum number of bytes that n bytes
// of encoded input can decode to. Whitespace and padding only ever
// make the actual result shorter.
//
// If the input is negative -1 is returned.
func (a Alphabet) DecodedLength(n int) int {
	if n < 0 {
		return -1
	}

	t := a.table()

	// n/encBlock*rawBlock never overflows since rawBlock < encBlock
	return n / t.encBlock * t.rawBlock
}

// decode decodes src into dst and returns the number of src bytes consumed.
// Consumption stops after a padded final group.
//
// invariants:
//
// - len(dst) >= a.DecodedLength(len(src))
func (a Alphabet) decode(dst, src []byte) (DecodeOutcome, int, error) {
	t := a.table()

	switch a {
	case Hex:
		return decodeHex(t, dst, src)
	case Base32Std, Base32Hex, Base64Std, Base64URL:
		return decodePadded(t, dst, src)
	default:
		panic("rfc4648: invalid alphabet")
	}
}

func decodeHex(t *table, dst, src []byte) (DecodeOutcome, int, error) {
	var out DecodeOutcome
	var hi byte
	half := false

	for i, c := range src {
		if isSpace(c) {
			continue
		}

		v := t.dec[c]
		if v == invalidSym {
			return out, i, corrupt(i, ErrInvalidSymbol)
		}

		if !half {
			hi = v
			half = true
			continue
		}

		dst[out.N] = hi<<4 | v
		out.N++
		half = false
	}

	if half {
		return out, len(src), corrupt(len(src), ErrTruncatedInput)
	}

	out.Terminated = true
	return out, len(src), nil
}

func unpackBase32(dst []byte, q *[8]byte) {
	_ = dst[4]

	dst[0] = (q[0]<<3 | q[1]>>2)
	dst[1] = ((q[1]&0x03)<<6 | q[2]<<1 | q[3]>>4)
	dst[2] = ((q[3]&0x0F)<<4 | q[4]>>1)
	dst[3] = ((q[4]&0x01)<<7 | q[5]<<2 | q[6]>>3)
	dst[4] = ((q[6]&0x07)<<5 | q[7])
}

func unpackBase64(dst []byte, q *[8]byte) {
	_ = dst[2]

	dst[0] = q[0]<<2 | q[1]>>4
	dst[1] = q[1]<<4 | q[2]>>2
	dst[2] = q[2]<<6 | q[3]
}

// unpackTail decodes the data symbols of a padded final group into exactly
// len(dst) bytes. It reports false when bits past the last whole byte are
// set.
func unpackTail(dst []byte, syms []byte, bits uint) bool {
	var acc uint64
	for _, v := range syms {
		acc = acc<<bits | uint64(v)
	}

	have := uint(len(syms)) * bits
	want := uint(len(dst)) * 8

	if have > want {
		extra := have - want
		if acc&(1<<extra-1) != 0 {
			return false
		}
		acc >>= extra
	} else {
		acc <<= want - have
	}

	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(acc)
		acc >>= 8
	}

	return true
}

func decodePadded(t *table, dst, src []byte) (DecodeOutcome, int, error) {
	var out DecodeOutcome
	var q [8]byte

	si := 0
	for {
		j := 0
		lastData := 0

		for j < t.encBlock {
			if si == len(src) {
				if j == 0 {
					return out, si, nil
				}

				return out, si, corrupt(si, ErrTruncatedInput)
			}

			c := src[si]
			si++

			if isSpace(c) {
				continue
			}

			if c == padChar {
				return decodeFinal(t, dst, src, si-1, q[:j], lastData, out)
			}

			v := t.dec[c]
			if v == invalidSym {
				return out, si - 1, corrupt(si-1, ErrInvalidSymbol)
			}

			q[j] = v
			j++
			lastData = si - 1
		}

		if t.encBlock == 8 {
			unpackBase32(dst[out.N:], &q)
		} else {
			unpackBase64(dst[out.N:], &q)
		}
		out.N += t.rawBlock
	}
}

// decodeFinal validates the padding of a final group whose first pad symbol
// sits at src[padAt] and decodes the data symbols that preceded it.
func decodeFinal(t *table, dst, src []byte, padAt int, syms []byte, lastData int, out DecodeOutcome) (DecodeOutcome, int, error) {
	if len(syms) < 2 {
		return out, padAt, corrupt(padAt, ErrInvalidPadding)
	}

	si := padAt + 1
	for k := len(syms) + 1; k < t.encBlock; {
		if si == len(src) {
			return out, si, corrupt(si, ErrTruncatedInput)
		}

		c := src[si]
		si++

		if isSpace(c) {
			continue
		}

		if c != padChar {
			return out, si - 1, corrupt(si-1, ErrInvalidPadding)
		}

		k++
	}

	n := int(t.tailBytes[len(syms)])
	if n == 0 {
		return out, padAt, corrupt(padAt, ErrInvalidPadding)
	}

	if !unpackTail(dst[out.N:out.N+n], syms, t.bits) {
		return out, lastData, corrupt(lastData, ErrInvalidSymbol)
	}

	out.N += n
	out.Terminated = true

	return out, si, nil
}

// decodeAll decodes the whole of src. Anything but whitespace after a padded
// final group is an error.
func (a Alphabet) decodeAll(dst, src []byte) (DecodeOutcome, error) {
	out, consumed, err := a.decode(dst, src)
	if err != nil {
		return out, err
	}

	for i := consumed; i < len(src); i++ {
		if !isSpace(src[i]) {
			return out, corrupt(i, ErrInvalidPadding)
		}
	}

	return out, nil
}

// UnsafeDecode decodes the source slice into the destination slice.
//
// It should generally only be used when working with pre-validated
// sizes of data like in the case of data types with known byte-lengths.
//
// This function panics if the destination does not have enough space in
// the slice for the decoded form of src, as measured by a.DecodedLength.
//
// It is the parent context's responsibility to clear the dst slice
// should an error be returned and that be the ideal rollback state.
//
// The number of bytes written to dst is reported in the returned outcome.
//
// invariants:
//
// - len(dst) >= a.DecodedLength(len(src))
func (a Alphabet) UnsafeDecode(dst []byte, src []byte) (DecodeOutcome, error) {
	// guard statements forcing panics rather than letting next call
	// lead to undefined behaviors

	if n := a.DecodedLength(len(src)); len(dst) < n {
		panic("rfc4648: decode destination too short")
	}

	return a.decodeAll(dst, src)
}

// Decode returns the decoded form of src if src is not empty. If src is
// empty nil is returned.
//
// If an error occurs during decoding then it is returned along with a nil
// slice. No partially decoded output is ever returned.
func (a Alphabet) Decode(src []byte) ([]byte, error) {
	n := len(src)
	if n == 0 {
		return nil, nil
	}

	dst := make([]byte, a.DecodedLength(n))

	out, err := a.decodeAll(dst, src)
	if err != nil {
		return nil, err
	}

	return dst[:out.N], nil
}

// DecodeString is like Decode but takes its input as a string.
func (a Alphabet) DecodeString(src string) ([]byte, error) {
	return a.Decode([]byte(src))
}

// AppendDecode returns the decoded form of src appended to dst
// if src is not empty. If src is empty dst is returned as-is.
//
// If an error occurs during decoding then dst is returned with its
// original length along with the error.
func (a Alphabet) AppendDecode(dst, src []byte) ([]byte, error) {
	n := len(src)
	if n == 0 {
		return dst, nil
	}

	n = a.DecodedLength(n)
	orig := len(dst)

	dst = slices.Grow(dst, n)
	dst = dst[:orig+n]

	out, err := a.decodeAll(dst[orig:], src)
	if err != nil {
		return dst[:orig], err
	}

	return dst[:orig+out.N], nil
}

// Convert decodes src with a and returns it re-encoded with to.
func (a Alphabet) Convert(to Alphabet, src []byte) ([]byte, error) {
	raw, err := a.Decode(src)
	if err != nil {
		return nil, err
	}

	return to.Encode(raw), nil
}
