package session

import (
	"bytes"
	"errors"
	"time"

	"github.com/example/fixconnector/wire"
)

// receiveLoop is the session's single cooperative read goroutine: read bytes,
// decode every complete frame, classify and dispatch each message. Grounded
// on the teacher's connectSOL read loop, which selects over a context-done
// signal, a transport error, and decoded data; here the equivalent select is
// folded into the blocking Recv call plus an explicit ctx.Done() check on
// every iteration, since wire.Decode is synchronous and CPU-bound.
func (s *Session) receiveLoop() {
	defer s.wg.Done()

	s.wg.Add(1)
	go s.heartbeatLoop()

	bufSize := s.params.ReceiveBufferBytes
	var pending []byte

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		chunk, err := s.conn.Recv(bufSize)
		if err != nil {
			s.logger.WithError(err).Warn("receive loop: transport error")
			s.onTransportDown()
			return
		}
		if chunk == nil {
			s.logger.Info("receive loop: connection closed by peer")
			s.onTransportDown()
			return
		}

		pending = append(pending, chunk...)
		for {
			msg, n, err := wire.Decode(pending)
			if errors.Is(err, wire.ErrNeedMore) {
				break
			}
			if errors.Is(err, wire.ErrChecksumMismatch) || errors.Is(err, wire.ErrMalformedMessage) {
				s.logger.WithError(err).Warn("receive loop: discarding corrupt frame")
				if n == 0 {
					// The frame's length is unknown: skip to the next
					// BeginString, or drop the buffer if there is none.
					next := bytes.Index(pending[1:], []byte("8="+wire.BeginString))
					if next < 0 {
						pending = nil
						break
					}
					n = next + 1
				}
				pending = pending[n:]
				continue
			}
			pending = pending[n:]
			s.handleMessage(msg)
		}
	}
}

// heartbeatLoop emits a Heartbeat whenever the elapsed time since the last
// outbound message reaches the configured interval. Grounded on the
// teacher's healthCheck ticker.
func (s *Session) heartbeatLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	threshold := time.Duration(s.params.HeartBtIntSeconds) * time.Second

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if s.State() != StateLoggedOn {
				continue
			}
			if s.restart.elapsedSinceLastSend() < threshold {
				continue
			}
			msg := s.CreateFixMessageWithBasicHeader(wire.MsgTypeHeartbeat)
			if err := s.stampAndSend(msg); err != nil {
				s.logger.WithError(err).Warn("heartbeat send failed")
			}
		}
	}
}

// handleMessage classifies one decoded message and dispatches it per the
// admin/application split: heartbeats are queued, test requests are
// echoed, resend requests are logged only, Reject/Logout/Logon drive
// lifecycle state, News arms the restart scheduler, everything else is
// queued for the application caller.
func (s *Session) handleMessage(msg *wire.Message) {
	if s.metrics != nil {
		s.metrics.MessagesRecv.Inc()
	}

	switch msg.MsgType() {
	case wire.MsgTypeHeartbeat:
		s.enqueue(msg)

	case wire.MsgTypeTestRequest:
		testReqID, _ := msg.GetString(wire.TagTestReqID)
		reply := s.CreateFixMessageWithBasicHeader(wire.MsgTypeHeartbeat)
		if testReqID != "" {
			reply.AppendPair(wire.TagTestReqID, testReqID)
		}
		if err := s.stampAndSend(reply); err != nil {
			s.logger.WithError(err).Warn("test request reply failed")
		}

	case wire.MsgTypeResendRequest:
		s.logger.Warn("resend request received; gap recovery not implemented")

	case wire.MsgTypeReject:
		s.enqueue(msg)
		s.resolveLogonResult(ErrLogonRejected)

	case wire.MsgTypeLogon:
		s.enqueue(msg)
		s.mu.Lock()
		s.state = StateLoggedOn
		s.mu.Unlock()
		s.resolveLogonResult(nil)

	case wire.MsgTypeLogout:
		s.enqueue(msg)
		s.handleLogout()

	case wire.MsgTypeNews:
		s.enqueue(msg)
		text, ok := msg.GetString(wire.TagText)
		if !ok {
			text, _ = msg.GetString(wire.TagHeadline)
		}
		s.logger.Infof("news: %s", text)
		s.restart.armOnNews()

	default:
		s.enqueue(msg)
	}
}

// handleLogout implements the dual paths a Logout can take: the solicited
// acknowledgement of our own Logout() call transitions cleanly to CLOSED;
// an unsolicited server Logout gets a reply Logout and also begins
// disconnecting, regardless of restart_enabled — News, not Logout, is the
// only trigger this connector recognizes for scheduled reconnection.
func (s *Session) handleLogout() {
	s.mu.Lock()
	solicited := s.state == StateLoggingOut
	s.mu.Unlock()

	s.resolveLogonResult(ErrLogonRejected)

	if solicited {
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
		return
	}

	s.logger.Info("Logout message received from server. Closing connection.")
	if err := s.Logout(); err != nil {
		s.logger.WithError(err).Warn("logout reply failed")
	}
	go s.Disconnect()
}

// onTransportDown marks the session closed after the underlying connection
// fails or is closed by the peer outside of a Logout handshake.
func (s *Session) onTransportDown() {
	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
	s.resolveLogonResult(ErrLogonRejected)
}

// resolveLogonResult delivers err to a pending Connect call, if any. Safe to
// call multiple times or with no pending handshake (the channel send is
// best-effort and non-blocking).
func (s *Session) resolveLogonResult(err error) {
	s.mu.Lock()
	ch := s.logonResult
	s.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- err:
	default:
	}
}
