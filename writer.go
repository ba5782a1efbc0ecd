package rfc4648

import "io"

const streamBufSize = 1024

// Writer encodes the bytes written to it and forwards the encoded form to
// an underlying io.Writer. Only a partial block, never more than four bytes,
// is ever held back. Close must be called to flush it.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	alpha  Alphabet
	w      io.Writer
	err    error
	closed bool

	pending  [5]byte
	npending int

	out [streamBufSize]byte
}

// NewWriter returns a Writer encoding with a into w. It panics if a is not
// a valid alphabet.
func NewWriter(a Alphabet, w io.Writer) *Writer {
	a.table()

	return &Writer{alpha: a, w: w}
}

// Write encodes p. Every complete block is pushed to the underlying writer
// before Write returns. Errors from the underlying writer are returned as-is
// and are sticky.
func (e *Writer) Write(p []byte) (n int, err error) {
	if e.closed {
		return 0, ErrWriterClosed
	}
	if e.err != nil {
		return 0, e.err
	}

	raw, enc := e.alpha.BlockSize()

	// Leading fringe.
	if e.npending > 0 {
		var i int
		for i = 0; i < len(p) && e.npending < raw; i++ {
			e.pending[e.npending] = p[i]
			e.npending++
		}
		n += i
		p = p[i:]
		if e.npending < raw {
			return n, nil
		}

		e.alpha.encode(e.out[:enc], e.pending[:raw])
		if _, e.err = e.w.Write(e.out[:enc]); e.err != nil {
			return n, e.err
		}
		e.npending = 0
	}

	// Large interior chunks.
	for len(p) >= raw {
		nn := len(e.out) / enc * raw
		if nn > len(p) {
			nn = len(p)
		}
		nn -= nn % raw

		e.alpha.encode(e.out[:], p[:nn])
		if _, e.err = e.w.Write(e.out[:nn/raw*enc]); e.err != nil {
			return n, e.err
		}

		n += nn
		p = p[nn:]
	}

	// Trailing fringe.
	e.npending = copy(e.pending[:], p)
	n += len(p)

	return n, nil
}

// Close flushes any pending bytes as a final padded block. It does not close
// the underlying writer. Calling Write or Close after Close returns
// ErrWriterClosed.
func (e *Writer) Close() error {
	if e.closed {
		return ErrWriterClosed
	}
	e.closed = true

	if e.err == nil && e.npending > 0 {
		_, enc := e.alpha.BlockSize()

		e.alpha.encode(e.out[:enc], e.pending[:e.npending])
		e.npending = 0
		_, e.err = e.w.Write(e.out[:enc])
	}

	return e.err
}
