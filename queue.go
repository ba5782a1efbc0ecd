package rfc4648

// byteQueue is a growable FIFO of bytes. Space freed at the front is
// reclaimed by compacting before the backing array would have to grow.
type byteQueue struct {
	buf []byte
	off int
}

func (q *byteQueue) len() int {
	return len(q.buf) - q.off
}

func (q *byteQueue) reset() {
	q.buf = q.buf[:0]
	q.off = 0
}

func (q *byteQueue) makeRoom(n int) {
	if q.off == 0 || len(q.buf)+n <= cap(q.buf) {
		return
	}

	m := copy(q.buf, q.buf[q.off:])
	q.buf = q.buf[:m]
	q.off = 0
}

func (q *byteQueue) pushBack(p []byte) {
	q.makeRoom(len(p))
	q.buf = append(q.buf, p...)
}

func (q *byteQueue) pushByte(c byte) {
	q.makeRoom(1)
	q.buf = append(q.buf, c)
}

// peek returns the first n queued bytes without consuming them. The slice
// is only valid until the next push.
func (q *byteQueue) peek(n int) []byte {
	return q.buf[q.off : q.off+n]
}

func (q *byteQueue) discard(n int) {
	q.off += n
	if q.off >= len(q.buf) {
		q.reset()
	}
}

// popFront moves up to len(p) bytes from the front of the queue into p.
func (q *byteQueue) popFront(p []byte) int {
	n := copy(p, q.buf[q.off:])
	q.discard(n)
	return n
}
