package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Sessions is the part of the HTTP service the runner maintains
type Sessions interface {
	SweepExpired() int
	ActiveSessions() int
}

// Runner runs the HTTP service until it is told to stop
type Runner struct {
	addr          string
	handler       http.Handler
	sessions      Sessions
	sweepInterval time.Duration
	systemTray    bool
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	trayApp       *TrayApp

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
	started  time.Time
}

// NewRunner creates a runner serving handler on addr
func NewRunner(addr string, handler http.Handler, sessions Sessions, sweepInterval time.Duration, systemTray bool, logger *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	return &Runner{
		addr:          addr,
		handler:       handler,
		sessions:      sessions,
		sweepInterval: sweepInterval,
		systemTray:    systemTray,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		ready:         make(chan struct{}),
	}
}

// Start runs the service, with a tray icon when enabled and supported.
// It blocks until the service stops.
func (r *Runner) Start() error {
	if r.systemTray {
		r.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(r, r.logger)
		if err != nil {
			r.logger.Warn("Failed to initialize system tray", zap.Error(err))
			return r.serve()
		}
		r.trayApp = trayApp
		// Run tray (blocks until Quit)
		return r.trayApp.Run()
	}

	r.logger.Info("Running without system tray")
	return r.serve()
}

// Stop asks the runner to shut down
func (r *Runner) Stop() {
	r.cancel()
}

// Ready is closed once the listener accepts connections
func (r *Runner) Ready() <-chan struct{} {
	return r.ready
}

// URL returns the base URL of the running service
func (r *Runner) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listener == nil {
		return ""
	}
	addr := r.listener.Addr().(*net.TCPAddr)
	host := addr.IP.String()
	if addr.IP.IsUnspecified() {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(addr.Port)))
}

// GetStatus returns runner status
func (r *Runner) GetStatus() map[string]interface{} {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()

	return map[string]interface{}{
		"url":             r.URL(),
		"active_sessions": r.sessions.ActiveSessions(),
		"uptime":          time.Since(started).Round(time.Second).String(),
	}
}

func (r *Runner) serve() error {
	listener, err := net.Listen("tcp", r.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.addr, err)
	}

	r.mu.Lock()
	r.listener = listener
	r.started = time.Now()
	r.mu.Unlock()

	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	r.logger.Info("HTTP service started",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("sweep_interval", r.sweepInterval))
	close(r.ready)

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Info("Runner stopped")
			return r.shutdown(srv)

		case sig := <-sigChan:
			r.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			r.Stop()
			if r.trayApp != nil {
				r.trayApp.Stop()
			}
			return r.shutdown(srv)

		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("HTTP service failed: %w", err)

		case <-ticker.C:
			if removed := r.sessions.SweepExpired(); removed > 0 {
				r.logger.Debug("Session sweep finished",
					zap.Int("removed", removed),
					zap.Int("active", r.sessions.ActiveSessions()))
			}
		}
	}
}

func (r *Runner) shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP service: %w", err)
	}
	r.logger.Info("HTTP service shut down gracefully")
	return nil
}
