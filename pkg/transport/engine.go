package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

const (
	// maxRecordSize is the largest TLS record on the wire
	// (16 KiB plaintext plus header and expansion).
	maxRecordSize = 16384 + 2048

	// maxPlaintextSize is the largest plaintext fragment of one record.
	maxPlaintextSize = 16384
)

// Engine adapts a crypto/tls connection into a Session.
//
// The tls.Conn runs in a single goroutine against an in-memory ciphertext
// conn. The goroutine only makes progress while the owner is blocked in
// NewClientEngine, NewServerEngine, ProcessNewPackets or Close, so every
// other method observes it parked and the Session behaves like a
// synchronous, single-threaded object.
type Engine struct {
	conn *tls.Conn

	mu   sync.Mutex
	cond *sync.Cond

	staged    []byte   // read by ReadTLS, not yet handed to the engine
	in        []byte   // handed to the engine, not yet consumed
	out       [][]byte // ciphertext batches waiting for WriteTLS
	plaintext bytes.Buffer
	early     [][]byte // application data written before the handshake finished

	stagedEOF bool
	eof       bool
	eofSeen   bool
	parked    bool
	done      bool // handshake complete
	exited    bool
	closed    bool
	err       error

	// writeMu orders flushed early data before later Write calls.
	writeMu sync.Mutex
}

// NewClientEngine creates a client session. The returned engine has already
// queued its ClientHello.
func NewClientEngine(config *tls.Config) *Engine {
	e := newEngine()
	e.conn = tls.Client(&cipherConn{e: e}, config)
	e.start()
	return e
}

// NewServerEngine creates a server session waiting for a ClientHello.
func NewServerEngine(config *tls.Config) *Engine {
	e := newEngine()
	e.conn = tls.Server(&cipherConn{e: e}, config)
	e.start()
	return e
}

func newEngine() *Engine {
	e := &Engine{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

func (e *Engine) start() {
	go e.run()

	e.mu.Lock()
	e.waitQuiescent()
	e.mu.Unlock()
}

func (e *Engine) run() {
	err := e.conn.HandshakeContext(context.Background())
	if err == nil {
		e.mu.Lock()
		e.done = true
		early := e.early
		e.early = nil
		e.mu.Unlock()

		err = e.flushEarly(early)
	}
	if err == nil {
		err = e.readLoop()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.exited = true
	if err != nil && e.err == nil && !e.closed && !(e.done && errors.Is(err, io.EOF)) {
		e.err = err
	}
	e.cond.Broadcast()
}

func (e *Engine) flushEarly(early [][]byte) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	for _, p := range early {
		if _, err := e.conn.Write(p); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) readLoop() error {
	buf := make([]byte, maxPlaintextSize)
	for {
		n, err := e.conn.Read(buf)
		if n > 0 {
			e.mu.Lock()
			e.plaintext.Write(buf[:n])
			e.mu.Unlock()
		}
		if err != nil {
			return err
		}
	}
}

// quiescent reports whether the engine goroutine is waiting for input it
// has not been given, or has exited. Caller holds e.mu.
func (e *Engine) quiescent() bool {
	if e.exited {
		return true
	}
	return e.parked && len(e.in) == 0 && (!e.eof || e.eofSeen)
}

func (e *Engine) waitQuiescent() {
	for !e.quiescent() {
		e.cond.Wait()
	}
}

// IsHandshaking reports whether the handshake is still incomplete.
func (e *Engine) IsHandshaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.done
}

// WantsRead reports whether the engine is parked waiting for ciphertext
// and has nothing left to send.
func (e *Engine) WantsRead() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.exited && !e.closed && !e.eof && e.parked && len(e.out) == 0
}

// WantsWrite reports whether ciphertext is queued.
func (e *Engine) WantsWrite() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.out) > 0
}

// ReadTLS performs a single read from r and stages the ciphertext for the
// next ProcessNewPackets call. A closed engine returns ErrSessionClosed
// without touching r.
func (e *Engine) ReadTLS(r io.Reader) (int, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return 0, ErrSessionClosed
	}

	buf := make([]byte, maxRecordSize)
	n, err := r.Read(buf)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrSessionClosed
	}
	e.staged = append(e.staged, buf[:n]...)
	if errors.Is(err, io.EOF) {
		e.stagedEOF = true
	}
	return n, err
}

// ProcessNewPackets hands staged ciphertext to the TLS engine and blocks
// until it has been consumed. The first engine error is returned by every
// subsequent call.
func (e *Engine) ProcessNewPackets() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrSessionClosed
	}

	if len(e.staged) > 0 {
		e.in = append(e.in, e.staged...)
		e.staged = e.staged[:0]
	}
	if e.stagedEOF {
		e.eof = true
	}
	e.cond.Broadcast()
	e.waitQuiescent()
	return e.err
}

// WriteTLS writes the oldest queued ciphertext batch to w.
func (e *Engine) WriteTLS(w io.Writer) (int, error) {
	e.mu.Lock()
	if len(e.out) == 0 {
		e.mu.Unlock()
		return 0, nil
	}
	batch := e.out[0]
	e.mu.Unlock()

	n, err := w.Write(batch)

	e.mu.Lock()
	defer e.mu.Unlock()
	if n >= len(batch) {
		e.out = e.out[1:]
	} else if n > 0 {
		e.out[0] = batch[n:]
	}
	return n, err
}

// Read drains decrypted application data. It returns io.EOF once the
// buffer is empty.
func (e *Engine) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plaintext.Read(p)
}

// Buffered returns the number of decrypted bytes waiting to be read.
func (e *Engine) Buffered() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plaintext.Len()
}

// Write queues application data. Data written before the handshake
// completes is encrypted as soon as it does.
func (e *Engine) Write(p []byte) (int, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0, ErrSessionClosed
	}
	if !e.done {
		if e.exited {
			err := e.err
			e.mu.Unlock()
			if err == nil {
				err = ErrSessionClosed
			}
			return 0, err
		}
		e.early = append(e.early, bytes.Clone(p))
		e.mu.Unlock()
		return len(p), nil
	}
	e.mu.Unlock()

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.conn.Write(p)
}

// ConnectionState returns the negotiated TLS state. It is the zero value
// until the handshake has completed.
func (e *Engine) ConnectionState() tls.ConnectionState {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if !done {
		return tls.ConnectionState{}
	}
	return e.conn.ConnectionState()
}

// Close stops the engine goroutine. Queued ciphertext is discarded.
// It is safe to call Close multiple times.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.cond.Broadcast()
	for !e.exited {
		e.cond.Wait()
	}
	e.out = nil
	return nil
}

// cipherConn is the ciphertext side seen by tls.Conn.
type cipherConn struct {
	e *Engine
}

func (c *cipherConn) Read(p []byte) (int, error) {
	e := c.e
	e.mu.Lock()
	defer e.mu.Unlock()

	for len(e.in) == 0 {
		if e.closed {
			return 0, net.ErrClosed
		}
		if e.eof {
			e.eofSeen = true
			return 0, io.EOF
		}
		e.parked = true
		e.cond.Broadcast()
		e.cond.Wait()
		e.parked = false
	}
	n := copy(p, e.in)
	e.in = e.in[n:]
	return n, nil
}

func (c *cipherConn) Write(p []byte) (int, error) {
	e := c.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, net.ErrClosed
	}
	e.out = append(e.out, bytes.Clone(p))
	return len(p), nil
}

func (c *cipherConn) Close() error {
	e := c.e
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cond.Broadcast()
	return nil
}

func (c *cipherConn) LocalAddr() net.Addr                { return memAddr{} }
func (c *cipherConn) RemoteAddr() net.Addr               { return memAddr{} }
func (c *cipherConn) SetDeadline(t time.Time) error      { return nil }
func (c *cipherConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *cipherConn) SetWriteDeadline(t time.Time) error { return nil }

type memAddr struct{}

func (memAddr) Network() string { return "memory" }
func (memAddr) String() string  { return "engine" }
