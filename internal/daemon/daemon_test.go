package daemon

import (
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSessions struct {
	sweeps atomic.Int32
}

func (f *fakeSessions) SweepExpired() int {
	f.sweeps.Add(1)
	return 1
}

func (f *fakeSessions) ActiveSessions() int { return 3 }

func startRunner(t *testing.T, sessions Sessions, interval time.Duration) (*Runner, chan error) {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	runner := NewRunner("127.0.0.1:0", handler, sessions, interval, false, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- runner.Start() }()

	select {
	case <-runner.Ready():
	case err := <-done:
		t.Fatalf("runner exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not become ready")
	}
	return runner, done
}

func TestRunner_ServesUntilStopped(t *testing.T) {
	runner, done := startRunner(t, &fakeSessions{}, time.Hour)

	resp, err := http.Get(runner.URL())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	status := runner.GetStatus()
	assert.Equal(t, runner.URL(), status["url"])
	assert.Equal(t, 3, status["active_sessions"])

	runner.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_SweepsPeriodically(t *testing.T) {
	sessions := &fakeSessions{}
	runner, done := startRunner(t, sessions, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return sessions.sweeps.Load() >= 2
	}, 5*time.Second, 5*time.Millisecond)

	runner.Stop()
	require.NoError(t, <-done)
}

func TestRunner_ListenError(t *testing.T) {
	runner := NewRunner("256.0.0.1:bad", http.NotFoundHandler(), &fakeSessions{}, time.Minute, false, zap.NewNop())
	err := runner.Start()
	assert.Error(t, err)
	assert.Empty(t, runner.URL())
}

func TestRunner_TrayFallsBack(t *testing.T) {
	if _, err := NewTrayApp(nil, zap.NewNop()); err == nil {
		t.Skip("system tray available on this platform")
	}

	handler := http.NotFoundHandler()
	runner := NewRunner("127.0.0.1:0", handler, &fakeSessions{}, time.Minute, true, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- runner.Start() }()

	select {
	case <-runner.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not fall back to plain serving")
	}
	runner.Stop()
	require.NoError(t, <-done)
}
