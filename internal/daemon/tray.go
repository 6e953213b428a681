//go:build windows

package daemon

import (
	_ "embed"
	"fmt"
	"os/exec"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"
)

//go:embed icon.ico
var trayIcon []byte

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	runner *Runner
	logger *zap.Logger
	quit   chan struct{}
	err    error
}

// NewTrayApp creates a new system tray application
func NewTrayApp(runner *Runner, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		runner: runner,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit) and returns
// the error the HTTP service stopped with
func (t *TrayApp) Run() error {
	systray.Run(t.onReady, t.onExit)
	return t.err
}

func (t *TrayApp) onReady() {
	systray.SetIcon(trayIcon)
	systray.SetTitle("TS")
	systray.SetTooltip("Timesheet payroll")

	mOpen := systray.AddMenuItem("Open", "Open the service in a browser")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show current status")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Stop the service and exit")

	// Serve in background; leaving the tray when serving ends
	go func() {
		t.err = t.runner.serve()
		systray.Quit()
	}()

	go func() {
		for {
			select {
			case <-mOpen.ClickedCh:
				t.logger.Info("Open clicked from tray")
				t.openBrowser()
			case <-mStatus.ClickedCh:
				t.logger.Info("Status clicked from tray")
				t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.runner.Stop()
				return
			case <-t.quit:
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
}

func (t *TrayApp) openBrowser() {
	select {
	case <-t.runner.Ready():
	default:
		t.logger.Warn("Service is not listening yet")
		return
	}
	url := t.runner.URL()
	if err := exec.Command("rundll32", "url.dll,FileProtocolHandler", url+"/healthz").Start(); err != nil {
		t.logger.Warn("Failed to open browser", zap.String("url", url), zap.Error(err))
	}
}

// showStatus shows the service address and session count
func (t *TrayApp) showStatus() {
	status := t.runner.GetStatus()
	t.logger.Info("Current status", zap.Any("status", status))

	message := fmt.Sprintf(
		"Address: %v\nActive sessions: %v\nUptime: %v",
		status["url"],
		status["active_sessions"],
		status["uptime"],
	)
	systray.SetTooltip(message)

	showMessageBox("Timesheet Status", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
