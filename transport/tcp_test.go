package transport

import (
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/httpy-web/httpy/config"
	"github.com/stretchr/testify/require"
)

func getNETConfig(maxConns int) config.NET {
	cfg := config.Default().NET
	cfg.MaxConns = maxConns
	cfg.AcceptLoopInterruptPeriod = 20 * time.Millisecond
	return cfg
}

func dial(t *testing.T, addr net.Addr) net.Conn {
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

func TestTCP(t *testing.T) {
	t.Run("admission", func(t *testing.T) {
		var served atomic.Int32
		release := make(chan struct{})
		tcp := NewTCP()
		require.NoError(t, tcp.Bind("127.0.0.1:0"))

		listenErr := runParallel(func() error {
			return tcp.Listen(getNETConfig(2), func(net.Conn) {
				served.Add(1)
				<-release
			})
		})

		dial(t, tcp.Addr())
		dial(t, tcp.Addr())
		require.Eventually(t, func() bool {
			return served.Load() == 2
		}, time.Second, time.Millisecond)

		// the third client waits in the backlog while both slots are taken
		dial(t, tcp.Addr())
		time.Sleep(100 * time.Millisecond)
		require.Equal(t, int32(2), served.Load())

		release <- struct{}{}
		require.Eventually(t, func() bool {
			return served.Load() == 3
		}, time.Second, time.Millisecond)

		close(release)
		tcp.Stop()
		tcp.Close()
		tcp.Wait()
		require.NoError(t, <-listenErr)
	})

	t.Run("graceful stop waits for in-flight connections", func(t *testing.T) {
		var finished atomic.Bool
		started := make(chan struct{})
		tcp := NewTCP()
		require.NoError(t, tcp.Bind("127.0.0.1:0"))

		listenErr := runParallel(func() error {
			return tcp.Listen(getNETConfig(4), func(net.Conn) {
				close(started)
				time.Sleep(50 * time.Millisecond)
				finished.Store(true)
			})
		})

		dial(t, tcp.Addr())
		<-started
		tcp.Stop()
		tcp.Close()
		require.NoError(t, <-listenErr)
		tcp.Wait()
		require.True(t, finished.Load())

		_, err := net.Dial("tcp", tcp.Addr().String())
		require.Error(t, err)
	})

	t.Run("stop while at capacity", func(t *testing.T) {
		release := make(chan struct{})
		tcp := NewTCP()
		require.NoError(t, tcp.Bind("127.0.0.1:0"))

		listenErr := runParallel(func() error {
			return tcp.Listen(getNETConfig(1), func(net.Conn) {
				<-release
			})
		})

		dial(t, tcp.Addr())
		time.Sleep(20 * time.Millisecond)
		tcp.Stop()

		select {
		case err := <-listenErr:
			require.NoError(t, err)
		case <-time.After(time.Second):
			require.Fail(t, "accept loop is stuck waiting for a slot")
		}

		close(release)
		tcp.Close()
		tcp.Wait()
	})
	t.Run("wait outlives the accept loop", func(t *testing.T) {
		var served atomic.Int32
		tcp := NewTCP()
		require.NoError(t, tcp.Bind("127.0.0.1:0"))

		listenErr := runParallel(func() error {
			return tcp.Listen(getNETConfig(4), func(net.Conn) {
				time.Sleep(10 * time.Millisecond)
				served.Add(1)
			})
		})

		for range 4 {
			dial(t, tcp.Addr())
		}

		tcp.Stop()
		tcp.Wait()

		// nothing accepted before the stop is left unserved once Wait returned
		count := served.Load()
		time.Sleep(30 * time.Millisecond)
		require.Equal(t, count, served.Load())

		select {
		case err := <-listenErr:
			require.NoError(t, err)
		case <-time.After(time.Second):
			require.Fail(t, "accept loop didn't exit")
		}
		tcp.Close()
	})

	t.Run("listen after stop", func(t *testing.T) {
		tcp := NewTCP()
		require.NoError(t, tcp.Bind("127.0.0.1:0"))
		tcp.Stop()
		require.NoError(t, tcp.Listen(getNETConfig(1), func(net.Conn) {
			require.Fail(t, "no connection must be accepted")
		}))
		tcp.Wait()
		tcp.Close()
	})
}
