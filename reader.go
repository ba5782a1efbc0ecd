package rfc4648

import (
	"errors"
	"io"
)

// maxEmptyReads bounds how many consecutive (0, nil) reads from the source
// are tolerated before giving up with io.ErrNoProgress.
const maxEmptyReads = 100

// Reader decodes encoded bytes pulled from an underlying io.Reader.
// Whitespace between symbols is skipped. Reading stops at the first padded
// group, so anything following it in the source is left unread by the
// decoder.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	alpha Alphabet
	r     io.Reader
	err   error

	// atEnd is set once padding has been decoded or the source ran dry with
	// nothing pending.
	atEnd   bool
	srcDone bool

	// symbols counts the non-whitespace symbols handed to the decoder so far.
	symbols int64

	encoded byteQueue
	decoded byteQueue

	buf     [streamBufSize]byte
	scratch [streamBufSize]byte
}

// NewReader returns a Reader decoding r with a. It panics if a is not a
// valid alphabet.
func NewReader(a Alphabet, r io.Reader) *Reader {
	a.table()

	return &Reader{alpha: a, r: r}
}

// Read fills p with decoded bytes. Decoded bytes that do not fit in p are
// kept and served first by the next call.
//
// Read returns io.EOF once the message is over. A source that ends in the
// middle of a group yields a *CorruptInputError wrapping ErrTruncatedInput,
// unless the partial group already holds a bad symbol or misplaced padding.
// Errors from the source are returned as-is.
func (d *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	raw, enc := d.alpha.BlockSize()
	empty := 0

	for {
		// Copy leftover output from the last decode.
		if d.decoded.len() > 0 {
			return d.decoded.popFront(p), nil
		}

		if d.err != nil {
			return 0, d.err
		}
		if d.atEnd {
			return 0, io.EOF
		}

		// Decode whole groups already buffered.
		if q := d.encoded.len() / enc * enc; q > 0 {
			if limit := len(d.scratch) / raw * enc; q > limit {
				q = limit
			}

			// Bytes decoded ahead of a failure are still served first.
			if err := d.decodeGroups(q); err != nil {
				d.err = err
			}
			continue
		}

		if d.srcDone {
			// A partial group reports a bad symbol ahead of truncation.
			if n := d.encoded.len(); n > 0 {
				err := d.decodeGroups(n)
				if err == nil {
					err = &CorruptInputError{Offset: d.symbols, Err: ErrTruncatedInput}
				}
				d.err = err
				continue
			}

			d.atEnd = true
			return 0, io.EOF
		}

		// Read more data.
		if d.fill(len(p)) {
			empty = 0
		} else if empty++; empty >= maxEmptyReads {
			d.err = io.ErrNoProgress
		}
	}
}

// fill pulls enough encoded bytes from the source to produce want decoded
// bytes, at least one group and at most one buffer. It reports whether any
// bytes or a terminal condition arrived.
func (d *Reader) fill(want int) bool {
	raw, enc := d.alpha.BlockSize()

	if want > len(d.buf) {
		want = len(d.buf)
	}

	nn := (want + raw - 1) / raw * enc
	if nn < enc {
		nn = enc
	}
	if nn > len(d.buf) {
		nn = len(d.buf)
	}

	n, err := d.r.Read(d.buf[:nn])
	for _, c := range d.buf[:n] {
		if !isSpace(c) {
			d.encoded.pushByte(c)
		}
	}

	switch {
	case err == io.EOF:
		d.srcDone = true
	case err != nil:
		d.err = err
	}

	return n > 0 || err != nil
}

func (d *Reader) decodeGroups(q int) error {
	out, consumed, err := d.alpha.decode(d.scratch[:], d.encoded.peek(q))
	if err != nil {
		var cie *CorruptInputError
		if errors.As(err, &cie) {
			cie.Offset += d.symbols
		}

		d.decoded.pushBack(d.scratch[:out.N])
		d.encoded.reset()

		return err
	}

	d.symbols += int64(consumed)
	d.encoded.discard(q)
	d.decoded.pushBack(d.scratch[:out.N])

	if out.Terminated && d.alpha.Padded() {
		d.atEnd = true
		d.encoded.reset()
	}

	return nil
}

// EOF reports whether the Reader has nothing more to deliver: no decoded
// bytes are pending and either padding was seen or the source is exhausted
// with no encoded bytes left over.
func (d *Reader) EOF() bool {
	if d.decoded.len() > 0 {
		return false
	}

	return d.atEnd || (d.srcDone && d.encoded.len() == 0)
}
