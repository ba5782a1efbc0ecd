package rfc4648

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// chunkSizes drives write and read patterns in the streaming tests.
var chunkSizes = []int{1, 2, 3, 4, 5, 7, 64, 1000, 4096}

func randomBytes(seed uint64, n int) []byte {
	r := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))

	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.Uint32())
	}

	return b
}

func TestWriterMatchesEncode(t *testing.T) {
	t.Parallel()

	for _, a := range Alphabets {
		t.Run(a.String(), func(t *testing.T) {
			t.Parallel()

			is := assert.New(t)

			for _, n := range []int{0, 1, 2, 3, 4, 5, 6, 11, 1023, 1024, 1025, 3000} {
				data := randomBytes(uint64(n), n)
				exp := a.EncodeString(string(data))

				for _, chunk := range chunkSizes {
					var sink bytes.Buffer
					w := NewWriter(a, &sink)

					for p := data; len(p) > 0; {
						k := min(chunk, len(p))

						nn, err := w.Write(p[:k])
						is.NoError(err)
						is.Equal(k, nn)

						p = p[k:]
					}

					is.NoError(w.Close())
					is.Equal(exp, sink.String(), "n=%d chunk=%d", n, chunk)
				}
			}
		})
	}
}

func TestWriterHoldsBackPartialBlock(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	var sink bytes.Buffer
	w := NewWriter(Base32Std, &sink)

	_, err := w.Write([]byte("f"))
	is.NoError(err)
	is.Zero(sink.Len())

	_, err = w.Write([]byte("ooba"))
	is.NoError(err)
	is.Equal("MZXW6YTB", sink.String())

	_, err = w.Write([]byte("r"))
	is.NoError(err)
	is.Equal("MZXW6YTB", sink.String())

	is.NoError(w.Close())
	is.Equal("MZXW6YTBOI======", sink.String())
}

func TestWriterHexNeverPends(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	var sink bytes.Buffer
	w := NewWriter(Hex, &sink)

	for _, c := range []byte("foo") {
		_, err := w.Write([]byte{c})
		is.NoError(err)
	}
	is.Equal("666F6F", sink.String())

	is.NoError(w.Close())
	is.Equal("666F6F", sink.String())
}

func TestWriterClosed(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	var sink bytes.Buffer
	w := NewWriter(Base64Std, &sink)

	_, err := w.Write([]byte("fo"))
	is.NoError(err)
	is.NoError(w.Close())
	is.Equal("Zm8=", sink.String())

	n, err := w.Write([]byte("o"))
	is.Zero(n)
	is.ErrorIs(err, ErrWriterClosed)

	is.ErrorIs(w.Close(), ErrWriterClosed)
	is.Equal("Zm8=", sink.String())
}

type failingWriter struct {
	err    error
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, w.err
}

func TestWriterSinkError(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	errSink := errors.New("sink failed")
	sink := &failingWriter{err: errSink}
	w := NewWriter(Base64URL, sink)

	_, err := w.Write([]byte("fo"))
	is.NoError(err)
	is.Zero(sink.writes)

	_, err = w.Write([]byte("obar"))
	is.Same(errSink, err)
	is.Equal(1, sink.writes)

	// the failure is sticky and the sink is not retried
	_, err = w.Write([]byte("x"))
	is.Same(errSink, err)
	is.Same(errSink, w.Close())
	is.Equal(1, sink.writes)
}

func TestWriterSinkErrorOnClose(t *testing.T) {
	t.Parallel()

	is := assert.New(t)

	errSink := errors.New("sink failed")
	w := NewWriter(Base32Hex, &failingWriter{err: errSink})

	_, err := w.Write([]byte("fo"))
	is.NoError(err)
	is.Same(errSink, w.Close())
	is.ErrorIs(w.Close(), ErrWriterClosed)
}
