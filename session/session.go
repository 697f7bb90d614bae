// Package session implements the FIX 4.4 session engine: the logon
// handshake, sequence-number bookkeeping, the receive loop, heartbeat and
// test-request handling, the inbound queue, and the News-triggered restart
// scheduler. It is the core of this connector; everything else (wire
// codec, signing, transport) is a leaf dependency of this package.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/example/fixconnector/config"
	"github.com/example/fixconnector/metrics"
	"github.com/example/fixconnector/signing"
	"github.com/example/fixconnector/transport"
	"github.com/example/fixconnector/wire"
)

var validate = validator.New()

// transportConn is the subset of *transport.Conn the session engine drives.
// Defined here so tests can substitute an in-memory fake.
type transportConn interface {
	SendAll([]byte) error
	Recv(maxLen int) ([]byte, error)
	Close() error
}

// dialFunc opens a transportConn to endpoint. The production default wraps
// transport.Dial; tests inject a fake.
type dialFunc func(ctx context.Context, endpoint transport.Endpoint, timeout time.Duration) (transportConn, error)

func defaultDial(ctx context.Context, endpoint transport.Endpoint, timeout time.Duration) (transportConn, error) {
	return transport.Dial(ctx, endpoint, timeout)
}

// Params configures a Session. Factories (NewOrderEntrySession,
// NewMarketDataSession) fill in role-specific defaults before constructing
// the Session; callers rarely build Params directly.
type Params struct {
	Role               Role
	SenderCompID       string `validate:"required"`
	TargetCompID       string `validate:"required"`
	APIKey             string `validate:"required"`
	Signer             *signing.Signer `validate:"required"`
	Endpoint           string `validate:"required"`
	HeartBtIntSeconds  int    `validate:"gt=0"`
	MessageHandling    int    `validate:"oneof=1 2"`
	ResponseMode       int    `validate:"oneof=0 1 2"`
	DropCopyFlag       string `validate:"omitempty,oneof=Y N"`
	RecvWindowMillis   *int
	RestartEnabled     bool
	DialTimeout        time.Duration
	RestartDelay       time.Duration
	ReceiveBufferBytes int

	// Config supplies ambient defaults (heartbeat interval, timeouts, buffer
	// size) for any of the above fields the caller leaves at its zero value.
	// Defaults to config.Default() when nil, so callers that never load a
	// YAML file still get the same baseline a loaded Config would provide.
	Config *config.Config

	Logger  logrus.FieldLogger
	Metrics *metrics.Registry

	dial dialFunc
}

func (p *Params) applyDefaults() {
	if p.Config == nil {
		p.Config = config.Default()
	}
	sessCfg := p.Config.Session

	if p.HeartBtIntSeconds <= 0 {
		p.HeartBtIntSeconds = sessCfg.HeartBtIntSeconds
	}
	if p.DialTimeout <= 0 {
		p.DialTimeout = sessCfg.DialTimeout
	}
	if p.RestartDelay <= 0 {
		p.RestartDelay = sessCfg.RestartDelay
	}
	if p.ReceiveBufferBytes <= 0 {
		p.ReceiveBufferBytes = sessCfg.ReceiveBufferBytes
	}
	if p.Logger == nil {
		p.Logger = logrus.StandardLogger()
	}
	if p.dial == nil {
		p.dial = defaultDial
	}
}

// Session is a single FIX 4.4 connector session: one TLS transport, one
// inbound queue, one outbound sequence counter.
type Session struct {
	mu sync.Mutex

	params Params

	state  State
	outSeq int

	conn transportConn

	inbound *inboundQueue
	sent    []*wire.Message

	logger  logrus.FieldLogger
	metrics *metrics.Registry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logonResult chan error

	restart restartScheduler
}

// New validates params and constructs a disconnected Session. Callers
// normally reach this through NewOrderEntrySession/NewMarketDataSession
// rather than calling it directly.
func New(params Params) (*Session, error) {
	params.applyDefaults()
	if err := validate.Struct(&params); err != nil {
		return nil, fmt.Errorf("session: invalid parameters: %w", err)
	}

	s := &Session{
		params:  params,
		state:   StateDisconnected,
		outSeq:  1,
		inbound: newInboundQueue(),
		logger:  params.Logger.WithField("sender_comp_id", params.SenderCompID),
		metrics: params.Metrics,
	}
	s.restart.owner = s
	return s, nil
}

// State returns the session's current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// QueueSize returns how many messages are currently buffered in the
// inbound queue, for diagnostics and metrics scraping by callers.
func (s *Session) QueueSize() int {
	return s.inbound.len()
}

// enqueue pushes msg onto the inbound queue and refreshes the queue-depth
// gauge, keeping Prometheus in step with every admin/application message the
// receive loop files away for retrieval.
func (s *Session) enqueue(msg *wire.Message) {
	s.inbound.push(msg)
	s.updateQueueDepthMetric()
}

// updateQueueDepthMetric reports the inbound queue's current length to the
// metrics registry, if one was supplied.
func (s *Session) updateQueueDepthMetric() {
	if s.metrics != nil {
		s.metrics.QueueDepth.Set(float64(s.inbound.len()))
	}
}

// SentMessages returns a copy of every message this session has sent, for
// diagnostics only; it is never persisted.
func (s *Session) SentMessages() []*wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*wire.Message, len(s.sent))
	copy(out, s.sent)
	return out
}

// Logger exposes the session's injected logger to callers, per the public
// API surface's accessor requirement.
func (s *Session) Logger() logrus.FieldLogger {
	return s.logger
}

// CreateFixMessageWithBasicHeader returns a new message with BeginString, a
// placeholder BodyLength, and MsgType populated. SenderCompID, TargetCompID,
// MsgSeqNum, and SendingTime are stamped later by SendMessage.
func (s *Session) CreateFixMessageWithBasicHeader(msgType string) *wire.Message {
	return wire.NewMessage(msgType)
}

// SendMessage stamps SenderCompID, TargetCompID, MsgSeqNum, and SendingTime
// onto msg, finalizes BodyLength/CheckSum, and writes it to the transport.
// MsgSeqNum increases by one with every send; at restart cutover the
// counter is replaced wholesale by the successor's, which counts on from
// the successor's own Logon.
func (s *Session) SendMessage(msg *wire.Message) error {
	s.mu.Lock()
	connected := s.state == StateLoggedOn
	s.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}
	return s.stampAndSend(msg)
}

// stampAndSend stamps SenderCompID, TargetCompID, MsgSeqNum, and SendingTime
// onto msg, then encodes and writes it, all under a single lock acquisition
// so a restart cutover (performRestart) can never swap the transport/sequence
// counter out from under a send in progress — used by SendMessage, by Logout
// (which has already moved the state to LOGGING_OUT), and by the
// heartbeat/test-request paths, which send outside of SendMessage's
// connected-state check.
func (s *Session) stampAndSend(msg *wire.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.outSeq
	s.outSeq++
	msg.AppendPair(wire.TagSenderCompID, s.params.SenderCompID)
	msg.AppendPair(wire.TagTargetCompID, s.params.TargetCompID)
	msg.AppendInt(wire.TagMsgSeqNum, seq)
	msg.AppendPair(wire.TagSendingTime, formatFixTime(time.Now()))
	return s.transmitLocked(msg)
}

// transmitLocked encodes and writes an already-fully-stamped message,
// recording it for diagnostics and metrics. Callers must hold s.mu and must
// have already appended SenderCompID/TargetCompID/MsgSeqNum/SendingTime.
func (s *Session) transmitLocked(msg *wire.Message) error {
	encoded, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := s.conn.SendAll(encoded); err != nil {
		return err
	}

	s.sent = append(s.sent, msg)
	s.restart.noteOutboundSend()
	if s.metrics != nil {
		s.metrics.MessagesSent.Inc()
	}
	s.logger.Infof("sent %s", msg.MsgType())
	return nil
}

// Logout sends a Logout (MsgType 5) and transitions to LOGGING_OUT. The
// receive loop observes the server's Logout acknowledgement and transitions
// to CLOSED.
func (s *Session) Logout() error {
	s.mu.Lock()
	if s.state != StateLoggedOn {
		s.mu.Unlock()
		return ErrNotConnected
	}
	s.state = StateLoggingOut
	s.mu.Unlock()

	msg := s.CreateFixMessageWithBasicHeader(wire.MsgTypeLogout)
	return s.stampAndSend(msg)
}

// Disconnect stops the receive goroutine and closes the transport. It is
// idempotent: a second call observes StateClosed and returns immediately.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	conn := s.conn
	cancel := s.cancel
	s.mu.Unlock()

	s.restart.cancel()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
	s.wg.Wait()
	s.logger.Info("disconnected")
}
