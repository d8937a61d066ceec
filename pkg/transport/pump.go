package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/tlsecho/tlsecho-go/pkg/log"
)

// DefaultHandshakeBudget is the default number of pump iterations allowed
// before a handshake is abandoned.
const DefaultHandshakeBudget = 32

// LevelTrace is the slog level used for per-record pump messages.
const LevelTrace = slog.Level(-8)

// Pump drives a Session to handshake completion over a byte stream.
// The zero value is usable and applies DefaultHandshakeBudget.
type Pump struct {
	// Budget is the maximum number of iterations (default: 32).
	Budget int

	// Logger receives operational messages (optional).
	Logger *slog.Logger

	// Capture receives protocol events (optional).
	Capture log.Logger

	// ConnID identifies the connection in captured events.
	ConnID string

	// Role is recorded in captured events.
	Role log.Role
}

// FinishHandshake runs a Pump with the default budget.
func FinishHandshake(s Session, t io.ReadWriter) error {
	return (&Pump{}).Run(s, t)
}

// Run exchanges records until s reports the handshake complete.
//
// Each iteration reads at most once, and only if s wants to read, then
// writes until s has nothing left to send. Errors are returned at once.
func (p *Pump) Run(s Session, t io.ReadWriter) error {
	budget := p.Budget
	if budget <= 0 {
		budget = DefaultHandshakeBudget
	}

	tap := &recordTap{rw: t}
	remaining := budget
	iteration := 0
	for s.IsHandshaking() {
		if remaining == 0 {
			err := &HandshakeTimeoutError{Budget: budget}
			p.recordError(err)
			return err
		}
		remaining--
		iteration++

		if s.WantsRead() {
			p.trace("wants read", iteration)
			n, err := s.ReadTLS(tap)
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				err = handshakeIOError("read", err)
				p.recordError(err)
				return err
			}
			p.recordRecord(log.DirectionIn, n, iteration, tap.takeIn())

			if err := s.ProcessNewPackets(); err != nil {
				err = handshakeProtocolError(err)
				p.recordError(err)
				return err
			}
		}

		for s.WantsWrite() {
			p.trace("wants write", iteration)
			n, err := s.WriteTLS(tap)
			if err != nil {
				err = handshakeIOError("write", err)
				p.recordError(err)
				return err
			}
			if n == 0 {
				err = handshakeIOError("write", io.ErrShortWrite)
				p.recordError(err)
				return err
			}
			p.recordRecord(log.DirectionOut, n, iteration, tap.takeOut())
		}
	}

	if iteration > 0 {
		p.recordState("HANDSHAKING", "ESTABLISHED", iteration)
	}
	return nil
}

func (p *Pump) trace(msg string, iteration int) {
	if p.Logger == nil {
		return
	}
	p.Logger.Log(context.Background(), LevelTrace, msg,
		slog.String("conn_id", p.ConnID),
		slog.Int("iteration", iteration),
	)
}

func (p *Pump) recordRecord(dir log.Direction, n, iteration int, types []string) {
	if p.Logger != nil {
		p.Logger.Log(context.Background(), LevelTrace, "record",
			slog.String("conn_id", p.ConnID),
			slog.String("direction", dir.String()),
			slog.Int("bytes", n),
			slog.Any("types", types),
		)
	}
	if p.Capture == nil {
		return
	}
	p.Capture.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: p.ConnID,
		Direction:    dir,
		Layer:        log.LayerTransport,
		Category:     log.CategoryRecord,
		LocalRole:    p.Role,
		Record: &log.RecordEvent{
			Size:         n,
			Iteration:    iteration,
			ContentTypes: types,
		},
	})
}

func (p *Pump) recordState(oldState, newState string, iteration int) {
	if p.Capture == nil {
		return
	}
	p.Capture.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: p.ConnID,
		Layer:        log.LayerSession,
		Category:     log.CategoryState,
		LocalRole:    p.Role,
		StateChange: &log.StateChangeEvent{
			Entity:     log.StateEntitySession,
			OldState:   oldState,
			NewState:   newState,
			Iterations: iteration,
		},
	})
}

func (p *Pump) recordError(err error) {
	if p.Capture == nil {
		return
	}
	p.Capture.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: p.ConnID,
		Layer:        log.LayerSession,
		Category:     log.CategoryError,
		LocalRole:    p.Role,
		Error: &log.ErrorEventData{
			Layer:   log.LayerSession,
			Message: err.Error(),
			Context: "handshake",
		},
	})
}
