package session

import (
	"context"
	"sync"
	"time"

	"github.com/example/fixconnector/transport"
)

// fakeConn is an in-memory transportConn double: SendAll records frames,
// Recv yields whatever has been queued with push, Close is idempotent and
// unblocks any pending Recv with an orderly close.
type fakeConn struct {
	mu     sync.Mutex
	sent   [][]byte
	toRecv chan []byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{toRecv: make(chan []byte, 64)}
}

func (f *fakeConn) SendAll(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.mu.Lock()
	f.sent = append(f.sent, cp)
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) Recv(maxLen int) ([]byte, error) {
	b, ok := <-f.toRecv
	if !ok {
		return nil, nil
	}
	return b, nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.toRecv)
	}
	return nil
}

// push queues a raw frame for the next Recv call to return.
func (f *fakeConn) push(b []byte) {
	f.toRecv <- b
}

func (f *fakeConn) sentFrames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

// fakeDial returns a dialFunc that always hands back conn, ignoring the
// requested endpoint.
func fakeDial(conn *fakeConn) dialFunc {
	return func(ctx context.Context, endpoint transport.Endpoint, timeout time.Duration) (transportConn, error) {
		return conn, nil
	}
}

// waitUntil polls cond until it returns true or timeout elapses.
func waitUntil(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
