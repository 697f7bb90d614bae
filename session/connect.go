package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/example/fixconnector/signing"
	"github.com/example/fixconnector/transport"
	"github.com/example/fixconnector/wire"
)

// Connect opens the transport, performs the Ed25519-signed Logon handshake,
// and starts the receive loop. It returns once the server's Logon reply is
// observed (success) or ErrLogonRejected if the server answers with a
// Reject or a Logout instead.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.state = StateConnecting
	s.mu.Unlock()

	endpoint, err := transport.ParseEndpoint(s.params.Endpoint)
	if err != nil {
		return err
	}
	conn, err := s.params.dial(ctx, endpoint, s.params.DialTimeout)
	if err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.conn = conn
	s.ctx = runCtx
	s.cancel = cancel
	s.logonResult = make(chan error, 1)
	s.mu.Unlock()

	s.wg.Add(1)
	go s.receiveLoop()

	if err := s.sendLogon(); err != nil {
		s.Disconnect()
		return err
	}

	select {
	case err := <-s.logonResult:
		if err != nil {
			s.Disconnect()
			return err
		}
	case <-time.After(s.params.DialTimeout):
		s.Disconnect()
		return ErrLogonRejected
	case <-ctx.Done():
		s.Disconnect()
		return ctx.Err()
	}

	s.logger.Info("logged on")
	return nil
}

// sendLogon builds and transmits the Logon message in the exact field order
// the Ed25519 signature's canonical payload and the venue both require:
// identity fields first, then the role-conditional RecvWindow, then
// EncryptMethod/HeartBtInt, then the signature fields, then
// ResetSeqNumFlag/Username/MessageHandling, then the Order Entry-only
// ResponseMode/DropCopyFlag.
func (s *Session) sendLogon() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.outSeq
	s.outSeq++
	ts := formatFixTime(time.Now())
	seqStr := strconv.Itoa(seq)

	msg := s.CreateFixMessageWithBasicHeader(wire.MsgTypeLogon)
	msg.AppendPair(wire.TagSenderCompID, s.params.SenderCompID)
	msg.AppendPair(wire.TagTargetCompID, s.params.TargetCompID)
	msg.AppendInt(wire.TagMsgSeqNum, seq)
	msg.AppendPair(wire.TagSendingTime, ts)

	if s.params.Role == RoleMarketData && s.params.RecvWindowMillis != nil {
		msg.AppendInt(wire.TagRecvWindow, *s.params.RecvWindowMillis)
	}

	msg.AppendInt(wire.TagEncryptMethod, 0)
	msg.AppendInt(wire.TagHeartBtInt, s.params.HeartBtIntSeconds)

	sig := s.params.Signer.Sign(signing.LogonPayload{
		MsgType:      wire.MsgTypeLogon,
		SenderCompID: s.params.SenderCompID,
		TargetCompID: s.params.TargetCompID,
		MsgSeqNum:    seqStr,
		SendingTime:  ts,
	})
	msg.AppendInt(wire.TagRawDataLength, len(sig))
	msg.AppendPair(wire.TagRawData, sig)

	msg.AppendPair(wire.TagResetSeqNumFlag, "Y")
	msg.AppendPair(wire.TagUsername, s.params.APIKey)
	msg.AppendInt(wire.TagMessageHandling, s.params.MessageHandling)

	if s.params.Role == RoleOrderEntry {
		msg.AppendInt(wire.TagResponseMode, s.params.ResponseMode)
		if s.params.DropCopyFlag != "" {
			msg.AppendPair(wire.TagDropCopyFlag, s.params.DropCopyFlag)
		}
	}

	if err := s.transmitLocked(msg); err != nil {
		return fmt.Errorf("session: sending logon: %w", err)
	}
	return nil
}
