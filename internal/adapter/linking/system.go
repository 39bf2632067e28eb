package linking

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// SystemOpener hands URLs to the desktop's default handler.
type SystemOpener struct {
	goos string
	run  func(ctx context.Context, name string, args ...string) ([]byte, error)
	log  *zap.Logger
}

func NewSystemOpener(log *zap.Logger) *SystemOpener {
	return &SystemOpener{goos: runtime.GOOS, run: runCommand, log: log}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// CanOpen is always true for web URLs. Custom schemes are only checked on
// Linux, where xdg-mime knows the registered handlers.
func (o *SystemOpener) CanOpen(ctx context.Context, raw string) (bool, error) {
	scheme, err := schemeOf(raw)
	if err != nil {
		return false, err
	}
	if isWeb(scheme) {
		return true, nil
	}
	if o.goos != "linux" {
		return false, nil
	}
	out, err := o.run(ctx, "xdg-mime", "query", "default", "x-scheme-handler/"+scheme)
	if err != nil {
		o.log.Debug("xdg-mime query failed", zap.String("scheme", scheme), zap.Error(err))
		return false, nil
	}
	return strings.TrimSpace(string(out)) != "", nil
}

func (o *SystemOpener) Open(ctx context.Context, raw string) error {
	var name string
	var args []string
	switch o.goos {
	case "darwin":
		name, args = "open", []string{raw}
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", raw}
	default:
		name, args = "xdg-open", []string{raw}
	}
	if _, err := o.run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	o.log.Debug("Opened URL", zap.String("command", name))
	return nil
}

// PrintOpener writes URLs instead of opening them, for headless use. Only
// web URLs are reported as openable.
type PrintOpener struct {
	w io.Writer
}

func NewPrintOpener(w io.Writer) *PrintOpener {
	return &PrintOpener{w: w}
}

func (o *PrintOpener) CanOpen(ctx context.Context, raw string) (bool, error) {
	scheme, err := schemeOf(raw)
	if err != nil {
		return false, err
	}
	return isWeb(scheme), nil
}

func (o *PrintOpener) Open(ctx context.Context, raw string) error {
	_, err := fmt.Fprintf(o.w, "Open this link to pay: %s\n", raw)
	return err
}
