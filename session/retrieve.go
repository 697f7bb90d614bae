package session

import (
	"time"

	"github.com/example/fixconnector/wire"
)

// RetrieveMessagesUntil blocks draining the inbound queue, returning every
// message drained up to and including the first whose MsgType is one of
// types and, if clOrdID is non-nil, whose ClOrdID (tag 11) also matches. If
// timeout elapses first, whatever has been drained so far is returned. A
// timeout of zero or less uses the session Config's RetrieveTimeout (20
// seconds by default).
func (s *Session) RetrieveMessagesUntil(types []string, clOrdID *string, timeout time.Duration) []*wire.Message {
	if timeout <= 0 {
		timeout = s.params.Config.Session.RetrieveTimeout
	}

	wanted := make(map[string]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	deadline := time.Now().Add(timeout)
	var drained []*wire.Message

	for {
		for {
			msg, ok := s.inbound.popFront()
			if !ok {
				break
			}
			s.updateQueueDepthMetric()
			drained = append(drained, msg)
			if matchesTarget(msg, wanted, clOrdID) {
				return drained
			}
		}

		if time.Now().After(deadline) {
			return drained
		}
		s.inbound.waitForItem(deadline)
	}
}

func matchesTarget(msg *wire.Message, wanted map[string]struct{}, clOrdID *string) bool {
	if _, ok := wanted[msg.MsgType()]; !ok {
		return false
	}
	if clOrdID == nil {
		return true
	}
	got, ok := msg.GetString(wire.TagClOrdID)
	return ok && got == *clOrdID
}

// GetAllNewMessagesReceived drains and returns every currently queued
// message without blocking.
func (s *Session) GetAllNewMessagesReceived() []*wire.Message {
	drained := s.inbound.drainAll()
	s.updateQueueDepthMetric()
	return drained
}
