package events_test

import (
	"context"
	"sync"
	"time"

	"github.com/virtengine/virtengine-sub005/pkg/client"
)

// fakeConn is a scriptable client.Connection. Frames and errors pushed via
// pushFrame/fail are returned by Receive in order.
type fakeConn struct {
	recvCh chan recvResult

	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

type recvResult struct {
	frameBz []byte
	err     error
}

func newFakeConn() *fakeConn {
	return &fakeConn{recvCh: make(chan recvResult, 32)}
}

func (fc *fakeConn) Receive() ([]byte, error) {
	result, ok := <-fc.recvCh
	if !ok {
		return nil, context.Canceled
	}
	return result.frameBz, result.err
}

func (fc *fakeConn) Send(msg []byte) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.sent = append(fc.sent, msg)
	return nil
}

func (fc *fakeConn) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if !fc.closed {
		fc.closed = true
		close(fc.recvCh)
	}
	return nil
}

func (fc *fakeConn) pushFrame(frameBz []byte) {
	fc.recvCh <- recvResult{frameBz: frameBz}
}

func (fc *fakeConn) fail(err error) {
	fc.recvCh <- recvResult{err: err}
}

func (fc *fakeConn) isClosed() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	return fc.closed
}

func (fc *fakeConn) sentMessages() [][]byte {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	sent := make([][]byte, len(fc.sent))
	copy(sent, fc.sent)
	return sent
}

// fakeDialer hands out a fresh fakeConn per dial and records every
// connection in order.
type fakeDialer struct {
	mu      sync.Mutex
	conns   []*fakeConn
	dialErr error

	pendingFailures int
	failErr         error
}

func (fd *fakeDialer) DialContext(_ context.Context, _ string) (client.Connection, error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.pendingFailures > 0 {
		fd.pendingFailures--
		return nil, fd.failErr
	}

	if fd.dialErr != nil {
		return nil, fd.dialErr
	}

	conn := newFakeConn()
	fd.conns = append(fd.conns, conn)
	return conn, nil
}

// failNextDials makes the next n dials fail with err before dialing succeeds
// again.
func (fd *fakeDialer) failNextDials(n int, err error) {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	fd.pendingFailures = n
	fd.failErr = err
}

func (fd *fakeDialer) dialCount() int {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	return len(fd.conns)
}

func (fd *fakeDialer) conn(i int) *fakeConn {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	return fd.conns[i]
}

// waitReady blocks until the dialer has produced at least n connections,
// then gives the consumer a moment to attach its observer before frames are
// pushed.
func (fd *fakeDialer) waitReady(ctx context.Context, n int) bool {
	if !fd.waitForDials(ctx, n) {
		return false
	}
	time.Sleep(25 * time.Millisecond)
	return true
}

// waitForDials blocks until the dialer has produced at least n connections.
func (fd *fakeDialer) waitForDials(ctx context.Context, n int) bool {
	for {
		if fd.dialCount() >= n {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Millisecond):
		}
	}
}
