package linking

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

func schemeOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("url %q has no scheme", raw)
	}
	return strings.ToLower(u.Scheme), nil
}

func isWeb(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

// ParseInstalledSchemes reads the X-Installed-Schemes header sent by the
// mobile app: a comma separated list such as "momo, momosandbox".
func ParseInstalledSchemes(header string) []string {
	var out []string
	for _, part := range strings.Split(header, ",") {
		s := strings.ToLower(strings.TrimSpace(part))
		s = strings.TrimSuffix(s, "://")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SchemeSetOpener decides for a remote app. CanOpen is true for web URLs
// and for schemes the app said it can handle; Open only records the URL so
// the server can return it for the app to open.
type SchemeSetOpener struct {
	mu      sync.Mutex
	schemes map[string]bool
	opened  []string
}

func NewSchemeSetOpener(schemes []string) *SchemeSetOpener {
	set := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		set[strings.ToLower(s)] = true
	}
	return &SchemeSetOpener{schemes: set}
}

func (o *SchemeSetOpener) CanOpen(ctx context.Context, raw string) (bool, error) {
	scheme, err := schemeOf(raw)
	if err != nil {
		return false, err
	}
	return isWeb(scheme) || o.schemes[scheme], nil
}

func (o *SchemeSetOpener) Open(ctx context.Context, raw string) error {
	ok, err := o.CanOpen(ctx, raw)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("app cannot open %q links", raw)
	}
	o.mu.Lock()
	o.opened = append(o.opened, raw)
	o.mu.Unlock()
	return nil
}

// Opened returns the URLs accepted by Open, in order.
func (o *SchemeSetOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}
