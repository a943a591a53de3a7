package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/httpy-web/httpy/config"
	"golang.org/x/sync/semaphore"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

type TCP struct {
	l      listener
	wg     *sync.WaitGroup
	mu     *sync.Mutex
	stop   *atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
}

func NewTCP() *TCP {
	tcp := newTCP(nil)
	return &tcp
}

func newTCP(l listener) TCP {
	ctx, cancel := context.WithCancel(context.Background())

	return TCP{
		l:      l,
		wg:     new(sync.WaitGroup),
		mu:     new(sync.Mutex),
		stop:   new(atomic.Bool),
		ctx:    ctx,
		cancel: cancel,
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) (err error) {
	t.l, err = bindTCP(addr)
	return err
}

func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Listen runs the accept loop until the transport is stopped. A slot is taken before
// accepting, so when cfg.MaxConns connections are being served, new clients stay in the
// backlog until one of them completes.
//
// The loop itself is counted by Wait, so every connection is registered while the
// counter is above zero and Wait can't miss one accepted right before the stop.
func (t *TCP) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	t.mu.Lock()
	if t.stop.Load() {
		t.mu.Unlock()
		return nil
	}

	t.wg.Add(1)
	t.mu.Unlock()
	defer t.wg.Done()

	sem := semaphore.NewWeighted(int64(max(cfg.MaxConns, 1)))

	for !t.stop.Load() {
		if err := sem.Acquire(t.ctx, 1); err != nil {
			// the only way to fail is the context being cancelled
			return nil
		}

		conn, err := t.accept(cfg.AcceptLoopInterruptPeriod)
		if err != nil {
			sem.Release(1)

			switch {
			case t.stop.Load():
				return nil
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			default:
				return err
			}
		}

		t.wg.Add(1)
		go func(conn net.Conn) {
			defer t.wg.Done()
			defer sem.Release(1)

			cb(conn)
			_ = conn.Close()
		}(conn)
	}

	return nil
}

func (t *TCP) accept(period time.Duration) (net.Conn, error) {
	if err := t.l.SetDeadline(time.Now().Add(period)); err != nil {
		return nil, err
	}

	return t.l.Accept()
}

// Stop makes the accept loop exit. Connections already accepted are left intact.
func (t *TCP) Stop() {
	t.mu.Lock()
	t.stop.Store(true)
	t.mu.Unlock()
	t.cancel()
}

func (t *TCP) Close() {
	if t.l != nil {
		_ = t.l.Close()
	}
}

// Wait blocks until the accept loop exits and every accepted connection is served.
// Must be called after Stop.
func (t *TCP) Wait() {
	t.wg.Wait()
}
