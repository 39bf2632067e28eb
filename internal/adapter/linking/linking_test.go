package linking

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseInstalledSchemes(t *testing.T) {
	assert.Equal(t, []string{"momo", "momosandbox"}, ParseInstalledSchemes(" MoMo ,momosandbox://,, "))
	assert.Nil(t, ParseInstalledSchemes(""))
}

func TestSchemeSetOpener(t *testing.T) {
	ctx := context.Background()
	o := NewSchemeSetOpener([]string{"momo"})

	ok, err := o.CanOpen(ctx, "momo://app?action=pay")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = o.CanOpen(ctx, "momosandbox://app")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = o.CanOpen(ctx, "https://test-payment.momo.vn/pay")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = o.CanOpen(ctx, "no-scheme")
	assert.Error(t, err)

	require.NoError(t, o.Open(ctx, "https://test-payment.momo.vn/pay"))
	assert.Error(t, o.Open(ctx, "momosandbox://app"))
	assert.Equal(t, []string{"https://test-payment.momo.vn/pay"}, o.Opened())
}

func TestSystemOpener(t *testing.T) {
	var ran []string
	o := &SystemOpener{
		goos: "linux",
		log:  zap.NewNop(),
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			ran = append(ran, name)
			if name == "xdg-mime" {
				if args[2] == "x-scheme-handler/momo" {
					return []byte("momo.desktop\n"), nil
				}
				return []byte("\n"), nil
			}
			return nil, nil
		},
	}
	ctx := context.Background()

	ok, err := o.CanOpen(ctx, "momo://pay")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = o.CanOpen(ctx, "zalopay://pay")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, o.Open(ctx, "https://example.com"))
	assert.Equal(t, []string{"xdg-mime", "xdg-mime", "xdg-open"}, ran)

	o.goos = "darwin"
	ok, _ = o.CanOpen(ctx, "momo://pay")
	assert.False(t, ok)

	o.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 3")
	}
	assert.Error(t, o.Open(ctx, "https://example.com"))
}

func TestPrintOpener(t *testing.T) {
	var buf bytes.Buffer
	o := NewPrintOpener(&buf)

	ok, _ := o.CanOpen(context.Background(), "momo://pay")
	assert.False(t, ok)
	require.NoError(t, o.Open(context.Background(), "https://pay.example/x"))
	assert.Contains(t, buf.String(), "https://pay.example/x")
}
