package session

import (
	"context"
	"sync"
	"time"
)

// restartScheduler tracks the last outbound send time (for heartbeat
// pacing) and the News-triggered restart timer. Grounded on the teacher's
// runSession reconnect-with-backoff loop: a scheduled maintenance cutover
// that builds a fresh session via the same factory and swaps it in.
type restartScheduler struct {
	owner *Session

	mu         sync.Mutex
	lastSendAt time.Time
	armed      bool
	timer      *time.Timer
}

// noteOutboundSend records the time of a successful send; the heartbeat
// ticker keys off of it.
func (r *restartScheduler) noteOutboundSend() {
	r.mu.Lock()
	r.lastSendAt = time.Now()
	r.mu.Unlock()
}

func (r *restartScheduler) elapsedSinceLastSend() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastSendAt.IsZero() {
		return 0
	}
	return time.Since(r.lastSendAt)
}

// armOnNews idempotently schedules a restart RestartDelay from now. A News
// message while a restart is already armed is a no-op, per spec: "idempotent:
// if already scheduled, do not re-arm."
func (r *restartScheduler) armOnNews() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.owner.params.RestartEnabled || r.armed {
		return
	}
	r.armed = true
	delay := r.owner.params.RestartDelay
	r.timer = time.AfterFunc(delay, r.owner.performRestart)
	if r.owner.metrics != nil {
		r.owner.metrics.RestartsArmed.Inc()
	}
	r.owner.logger.Infof("restart armed, firing in %s", delay)
}

// cancel stops a pending restart timer. Called from Disconnect so a session
// torn down early doesn't fire a restart against a closed transport.
func (r *restartScheduler) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

// performRestart builds a successor session with the owner's parameters,
// logs it on, and cuts over: the successor's sequence number, transport,
// inbound queue, and sent-message list replace the owner's, and the old
// transport is disconnected. Grounded on the spec's restart relationship:
// "the successor session ... is created by the same factory function with
// identical parameters; ownership transfers atomically at cutover."
func (r *restartScheduler) performRestart() {
	owner := r.owner
	owner.logger.Info("restart: connecting successor session")

	successor, err := New(owner.params)
	if err != nil {
		owner.logger.WithError(err).Error("restart: building successor failed")
		return
	}
	if err := successor.Connect(context.Background()); err != nil {
		owner.logger.WithError(err).Error("restart: successor logon failed")
		return
	}

	owner.mu.Lock()
	oldConn := owner.conn
	oldCancel := owner.cancel

	owner.conn = successor.conn
	owner.outSeq = successor.outSeq
	owner.ctx = successor.ctx
	owner.cancel = successor.cancel
	owner.inbound = successor.inbound
	owner.sent = successor.sent
	owner.state = StateLoggedOn
	owner.mu.Unlock()

	owner.wg.Add(1)
	go func() {
		defer owner.wg.Done()
		successor.wg.Wait()
	}()

	if oldCancel != nil {
		oldCancel()
	}
	if oldConn != nil {
		oldConn.Close()
	}

	r.mu.Lock()
	r.armed = false
	r.mu.Unlock()

	if owner.metrics != nil {
		owner.metrics.RestartsApplied.Inc()
	}
	owner.logger.Info("restart: cutover complete")
}
