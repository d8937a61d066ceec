package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tlsecho/tlsecho-go/pkg/log"
	"github.com/tlsecho/tlsecho-go/pkg/transport/mocks"
)

// countingSession finishes its handshake after a fixed number of reads and
// writes. Reads are wanted while any remain; so are writes.
type countingSession struct {
	reads, writes int // required
	didRead       int
	didWrite      int
	iterations    int // counted per WantsRead call
	never         bool
}

func (s *countingSession) IsHandshaking() bool {
	return s.never || s.didRead < s.reads || s.didWrite < s.writes
}

func (s *countingSession) WantsRead() bool {
	s.iterations++
	return s.never || s.didRead < s.reads
}

func (s *countingSession) WantsWrite() bool { return !s.never && s.didWrite < s.writes }

func (s *countingSession) ReadTLS(io.Reader) (int, error) {
	s.didRead++
	return 1, nil
}

func (s *countingSession) ProcessNewPackets() error { return nil }

func (s *countingSession) WriteTLS(io.Writer) (int, error) {
	s.didWrite++
	return 1, nil
}

func (s *countingSession) Read([]byte) (int, error)    { return 0, io.EOF }
func (s *countingSession) Write(p []byte) (int, error) { return len(p), nil }

func TestPumpTimesOutWhenHandshakeNeverCompletes(t *testing.T) {
	for _, budget := range []int{1, 2, 7, DefaultHandshakeBudget} {
		t.Run(fmt.Sprintf("budget=%d", budget), func(t *testing.T) {
			s := &countingSession{never: true}
			p := &Pump{Budget: budget}

			err := p.Run(s, &bytes.Buffer{})

			require.ErrorIs(t, err, ErrHandshakeTimeout)
			var timeout *HandshakeTimeoutError
			require.ErrorAs(t, err, &timeout)
			assert.Equal(t, budget, timeout.Budget)
			assert.Equal(t, budget, s.didRead)
		})
	}
}

func TestPumpDefaultBudget(t *testing.T) {
	s := &countingSession{never: true}

	err := FinishHandshake(s, &bytes.Buffer{})

	var timeout *HandshakeTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, DefaultHandshakeBudget, timeout.Budget)
	assert.Equal(t, DefaultHandshakeBudget, s.didRead)
}

func TestPumpBudgetBoundary(t *testing.T) {
	// Two reads means two iterations.
	s := &countingSession{reads: 2}
	err := (&Pump{Budget: 1}).Run(s, &bytes.Buffer{})
	require.ErrorIs(t, err, ErrHandshakeTimeout)
	assert.Equal(t, 1, s.didRead)

	s = &countingSession{reads: 2}
	err = (&Pump{Budget: 2}).Run(s, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 2, s.didRead)
}

func TestPumpCompletesWithinReadsPlusWrites(t *testing.T) {
	for n := 0; n <= 5; n++ {
		for m := 0; m <= 5; m++ {
			if n+m == 0 {
				continue
			}
			s := &countingSession{reads: n, writes: m}

			err := (&Pump{Budget: n + m}).Run(s, &bytes.Buffer{})

			require.NoError(t, err, "reads=%d writes=%d", n, m)
			assert.Equal(t, n, s.didRead)
			assert.Equal(t, m, s.didWrite)
			assert.LessOrEqual(t, s.iterations, n+m)
		}
	}
}

func TestPumpAlreadyEstablished(t *testing.T) {
	s := mocks.NewMockSession(t)
	s.EXPECT().IsHandshaking().Return(false).Once()

	require.NoError(t, FinishHandshake(s, &bytes.Buffer{}))
}

// orderingSession answers WantsRead/WantsWrite from a random script and
// records any call the pump should not have made.
type orderingSession struct {
	rng        *rand.Rand
	remaining  int
	lastWant   string // "read", "write" or ""
	lastAnswer bool
	violations []string
}

func (s *orderingSession) IsHandshaking() bool {
	s.lastWant = ""
	return s.remaining > 0
}

func (s *orderingSession) WantsRead() bool {
	s.lastWant, s.lastAnswer = "read", s.rng.Intn(2) == 0
	return s.lastAnswer
}

func (s *orderingSession) WantsWrite() bool {
	s.lastWant, s.lastAnswer = "write", s.rng.Intn(3) == 0
	if !s.lastAnswer {
		s.remaining--
	}
	return s.lastAnswer
}

func (s *orderingSession) ReadTLS(io.Reader) (int, error) {
	if s.lastWant != "read" || !s.lastAnswer {
		s.violations = append(s.violations, "ReadTLS without WantsRead")
	}
	s.lastWant = "readtls"
	return 1, nil
}

func (s *orderingSession) ProcessNewPackets() error {
	if s.lastWant != "readtls" {
		s.violations = append(s.violations, "ProcessNewPackets without ReadTLS")
	}
	return nil
}

func (s *orderingSession) WriteTLS(io.Writer) (int, error) {
	if s.lastWant != "write" || !s.lastAnswer {
		s.violations = append(s.violations, "WriteTLS after WantsWrite returned false")
	}
	s.lastWant = ""
	return 1, nil
}

func (s *orderingSession) Read([]byte) (int, error)    { return 0, io.EOF }
func (s *orderingSession) Write(p []byte) (int, error) { return len(p), nil }

func TestPumpOrderingInvariant(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		s := &orderingSession{
			rng:       rand.New(rand.NewSource(seed)),
			remaining: 1 + int(seed%10),
		}

		err := (&Pump{Budget: 64}).Run(s, &bytes.Buffer{})

		require.NoError(t, err, "seed %d", seed)
		require.Empty(t, s.violations, "seed %d", seed)
	}
}

func TestPumpSkipsReadWhenNotWanted(t *testing.T) {
	s := mocks.NewMockSession(t)
	s.EXPECT().IsHandshaking().Return(true).Once()
	s.EXPECT().WantsRead().Return(false).Once()
	s.EXPECT().WantsWrite().Return(true).Twice()
	s.EXPECT().WriteTLS(mock.Anything).Return(10, nil).Twice()
	s.EXPECT().WantsWrite().Return(false).Once()
	s.EXPECT().IsHandshaking().Return(false).Once()

	require.NoError(t, FinishHandshake(s, &bytes.Buffer{}))
}

func TestPumpReadErrorIsHandshakeIO(t *testing.T) {
	reset := errors.New("connection reset by peer")

	s := mocks.NewMockSession(t)
	s.EXPECT().IsHandshaking().Return(true).Once()
	s.EXPECT().WantsRead().Return(true).Once()
	s.EXPECT().ReadTLS(mock.Anything).Return(0, reset).Once()

	err := FinishHandshake(s, &bytes.Buffer{})

	assert.ErrorIs(t, err, ErrHandshakeIO)
	assert.ErrorIs(t, err, reset)
	assert.NotErrorIs(t, err, ErrHandshakeProtocol)
}

func TestPumpEOFIsHandshakeIO(t *testing.T) {
	s := mocks.NewMockSession(t)
	s.EXPECT().IsHandshaking().Return(true).Once()
	s.EXPECT().WantsRead().Return(true).Once()
	s.EXPECT().ReadTLS(mock.Anything).Return(0, io.EOF).Once()

	err := FinishHandshake(s, &bytes.Buffer{})

	assert.ErrorIs(t, err, ErrHandshakeIO)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestPumpProcessErrorIsHandshakeProtocol(t *testing.T) {
	bad := errors.New("tls: bad certificate")

	s := mocks.NewMockSession(t)
	s.EXPECT().IsHandshaking().Return(true).Once()
	s.EXPECT().WantsRead().Return(true).Once()
	s.EXPECT().ReadTLS(mock.Anything).Return(100, nil).Once()
	s.EXPECT().ProcessNewPackets().Return(bad).Once()

	err := FinishHandshake(s, &bytes.Buffer{})

	assert.ErrorIs(t, err, ErrHandshakeProtocol)
	assert.ErrorIs(t, err, bad)
}

func TestPumpWriteErrorIsHandshakeIO(t *testing.T) {
	pipe := errors.New("broken pipe")

	s := mocks.NewMockSession(t)
	s.EXPECT().IsHandshaking().Return(true).Once()
	s.EXPECT().WantsRead().Return(false).Once()
	s.EXPECT().WantsWrite().Return(true).Once()
	s.EXPECT().WriteTLS(mock.Anything).Return(0, pipe).Once()

	err := FinishHandshake(s, &bytes.Buffer{})

	assert.ErrorIs(t, err, ErrHandshakeIO)
	assert.ErrorIs(t, err, pipe)
}

func TestPumpStalledWriteFails(t *testing.T) {
	s := mocks.NewMockSession(t)
	s.EXPECT().IsHandshaking().Return(true).Once()
	s.EXPECT().WantsRead().Return(false).Once()
	s.EXPECT().WantsWrite().Return(true).Once()
	s.EXPECT().WriteTLS(mock.Anything).Return(0, nil).Once()

	err := FinishHandshake(s, &bytes.Buffer{})

	assert.ErrorIs(t, err, ErrHandshakeIO)
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestPumpPassesTransportThrough(t *testing.T) {
	transport := &loopback{in: bytes.NewBufferString("ciphertext")}

	s := mocks.NewMockSession(t)
	s.EXPECT().IsHandshaking().Return(true).Once()
	s.EXPECT().WantsRead().Return(true).Once()
	s.EXPECT().ReadTLS(mock.Anything).RunAndReturn(func(r io.Reader) (int, error) {
		buf := make([]byte, 64)
		return r.Read(buf)
	}).Once()
	s.EXPECT().ProcessNewPackets().Return(nil).Once()
	s.EXPECT().WantsWrite().Return(true).Once()
	s.EXPECT().WriteTLS(mock.Anything).RunAndReturn(func(w io.Writer) (int, error) {
		return w.Write([]byte("reply"))
	}).Once()
	s.EXPECT().WantsWrite().Return(false).Once()
	s.EXPECT().IsHandshaking().Return(false).Once()

	require.NoError(t, FinishHandshake(s, transport))
	assert.Equal(t, 0, transport.in.Len())
	assert.Equal(t, "reply", transport.out.String())
}

// loopback reads from in and writes to out.
type loopback struct {
	in  *bytes.Buffer
	out bytes.Buffer
}

func (l *loopback) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *loopback) Write(p []byte) (int, error) { return l.out.Write(p) }

func TestPumpCapturesRecordsAndState(t *testing.T) {
	capture := &recordingLogger{}
	s := &countingSession{reads: 2, writes: 3}

	p := &Pump{Capture: capture, ConnID: "conn-1", Role: log.RoleClient}
	require.NoError(t, p.Run(s, &bytes.Buffer{}))

	assert.Equal(t, 5, capture.count(log.CategoryRecord))
	assert.Equal(t, 1, capture.count(log.CategoryState))

	var in, out int
	for _, e := range capture.Events() {
		assert.Equal(t, "conn-1", e.ConnectionID)
		assert.Equal(t, log.RoleClient, e.LocalRole)
		if e.Record == nil {
			continue
		}
		if e.Direction == log.DirectionIn {
			in++
		} else {
			out++
		}
	}
	assert.Equal(t, 2, in)
	assert.Equal(t, 3, out)

	last := capture.Events()[len(capture.Events())-1]
	require.NotNil(t, last.StateChange)
	assert.Equal(t, "ESTABLISHED", last.StateChange.NewState)
}

func TestPumpCapturesRecordTypes(t *testing.T) {
	// A handshake record followed by a change_cipher_spec record.
	serverFlight := []byte{
		0x16, 0x03, 0x03, 0x00, 0x04, 0x02, 0x00, 0x00, 0x00,
		0x14, 0x03, 0x03, 0x00, 0x01, 0x01,
	}
	finished := []byte{0x17, 0x03, 0x03, 0x00, 0x02, 0xaa, 0xbb}
	transport := &loopback{in: bytes.NewBuffer(serverFlight)}

	s := mocks.NewMockSession(t)
	s.EXPECT().IsHandshaking().Return(true).Once()
	s.EXPECT().WantsRead().Return(true).Once()
	s.EXPECT().ReadTLS(mock.Anything).RunAndReturn(func(r io.Reader) (int, error) {
		buf := make([]byte, 64)
		return r.Read(buf)
	}).Once()
	s.EXPECT().ProcessNewPackets().Return(nil).Once()
	s.EXPECT().WantsWrite().Return(true).Once()
	s.EXPECT().WriteTLS(mock.Anything).RunAndReturn(func(w io.Writer) (int, error) {
		return w.Write(finished)
	}).Once()
	s.EXPECT().WantsWrite().Return(false).Once()
	s.EXPECT().IsHandshaking().Return(false).Once()

	capture := &recordingLogger{}
	p := &Pump{Capture: capture, ConnID: "conn-1", Role: log.RoleClient}
	require.NoError(t, p.Run(s, transport))

	var records []*log.RecordEvent
	for _, e := range capture.Events() {
		if e.Record != nil {
			records = append(records, e.Record)
		}
	}
	require.Len(t, records, 2)
	assert.Equal(t, len(serverFlight), records[0].Size)
	assert.Equal(t, []string{"handshake", "change_cipher_spec"}, records[0].ContentTypes)
	assert.Equal(t, len(finished), records[1].Size)
	assert.Equal(t, []string{"application_data"}, records[1].ContentTypes)
	assert.Equal(t, finished, transport.out.Bytes())
}

func TestPumpCapturesTimeout(t *testing.T) {
	capture := &recordingLogger{}
	s := &countingSession{never: true}

	err := (&Pump{Budget: 3, Capture: capture}).Run(s, &bytes.Buffer{})
	require.ErrorIs(t, err, ErrHandshakeTimeout)

	require.Equal(t, 1, capture.count(log.CategoryError))
	assert.Equal(t, 0, capture.count(log.CategoryState))
}
