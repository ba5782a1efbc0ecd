package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/josephcopenhaver/rfc4648"
	"github.com/josephcopenhaver/rfc4648/internal/config"
	"github.com/josephcopenhaver/rfc4648/internal/logger"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var log = logger.Get()

// Server streams every accepted connection through an rfc4648 Writer or
// Reader and sends the result back to the peer. A peer signals the end of
// its input by closing its write side.
type Server struct {
	alpha   rfc4648.Alphabet
	cfg     config.ServerConfig
	bufSize int
	limiter *rate.Limiter

	wg    sync.WaitGroup
	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// New returns a Server for alphabet a. cfg is expected to be validated.
func New(a rfc4648.Alphabet, cfg config.ServerConfig, bufSize int) *Server {
	return &Server{
		alpha:   a,
		cfg:     cfg,
		bufSize: bufSize,
		limiter: rate.NewLimiter(rate.Limit(cfg.AcceptRate), cfg.AcceptBurst),
		conns:   map[net.Conn]struct{}{},
	}
}

// ListenAndServe listens on the configured TCP address and serves until ctx
// is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return oops.Wrapf(err, "listening on %s", s.cfg.Listen)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is done, then closes ln and
// any open connections and waits for their handlers to return. It returns
// nil after a shutdown requested through ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.WithFields(logrus.Fields{
		"addr":     ln.Addr().String(),
		"alphabet": s.alpha.String(),
		"mode":     s.cfg.Mode,
	}).Info("Server listening.")

	err := s.acceptLoop(ctx, ln)

	cancel()
	s.closeConns()
	s.wg.Wait()

	log.WithField("addr", ln.Addr().String()).Info("Server stopped.")

	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return oops.Wrapf(err, "throttling accept")
		}

		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return oops.Wrapf(err, "accepting connection")
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)

			s.handle(conn)
		}()
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, conn)
	conn.Close()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.conns {
		conn.Close()
	}
}

func (s *Server) handle(conn net.Conn) {
	entry := log.WithFields(logrus.Fields{
		"conn":   uuid.NewString(),
		"remote": conn.RemoteAddr().String(),
		"mode":   s.cfg.Mode,
	})
	entry.Debug("Connection accepted.")

	start := time.Now()
	in := &idleReader{conn: conn, timeout: s.cfg.IdleTimeout}

	var n int64
	var err error
	switch s.cfg.Mode {
	case config.ModeDecode:
		n, err = s.decode(conn, in)
	default:
		n, err = s.encode(conn, in)
	}

	entry = entry.WithFields(logrus.Fields{
		"bytes":    n,
		"duration": time.Since(start),
	})

	if err != nil {
		entry.WithError(err).Warn("Connection failed.")
		return
	}

	entry.Debug("Connection done.")
}

// encode returns the number of raw bytes read from the peer.
func (s *Server) encode(conn net.Conn, in io.Reader) (int64, error) {
	w := rfc4648.NewWriter(s.alpha, conn)

	n, err := io.CopyBuffer(w, in, make([]byte, s.bufSize))
	if err != nil {
		return n, oops.Wrapf(err, "encoding stream")
	}

	if err := w.Close(); err != nil {
		return n, oops.Wrapf(err, "flushing encoded stream")
	}

	return n, closeWrite(conn)
}

// decode returns the number of decoded bytes sent to the peer.
func (s *Server) decode(conn net.Conn, in io.Reader) (int64, error) {
	r := rfc4648.NewReader(s.alpha, in)

	n, err := io.CopyBuffer(writerOnly{conn}, r, make([]byte, s.bufSize))
	if err != nil {
		err = oops.Wrapf(err, "decoding stream")
	} else {
		err = closeWrite(conn)
	}

	// Input past the end of the message is discarded until the peer is done.
	_, _ = io.Copy(io.Discard, in)

	return n, err
}

func closeWrite(conn net.Conn) error {
	cw, ok := conn.(interface{ CloseWrite() error })
	if !ok {
		return nil
	}

	if err := cw.CloseWrite(); err != nil && !errors.Is(err, net.ErrClosed) {
		return oops.Wrapf(err, "closing write side")
	}

	return nil
}

// idleReader pushes the read deadline forward before every read.
type idleReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (r *idleReader) Read(p []byte) (int, error) {
	if r.timeout > 0 {
		if err := r.conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
			return 0, err
		}
	}

	return r.conn.Read(p)
}

// writerOnly hides ReadFrom so io.CopyBuffer uses the configured buffer.
type writerOnly struct {
	io.Writer
}
