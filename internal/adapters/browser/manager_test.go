package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/require"
)

type hooks struct {
	launchBins []string
	installs   int
	failFirst  bool
	failAll    bool
	installErr error
}

func newTestManager(h *hooks) *Manager {
	m := New(Config{Headless: true}, nil)
	m.lookPath = func() (string, bool) { return "/usr/bin/chromium", true }
	m.launch = func(bin string) (*launcher.Launcher, string, error) {
		h.launchBins = append(h.launchBins, bin)
		if h.failAll || (h.failFirst && len(h.launchBins) == 1) {
			return nil, "", errors.New("launch failed")
		}
		return nil, "ws://127.0.0.1:9222/devtools/browser/x", nil
	}
	m.install = func() (string, error) {
		h.installs++
		if h.installErr != nil {
			return "", h.installErr
		}
		return "/cache/rod/chromium", nil
	}
	m.connect = func(string) (*rod.Browser, error) { return rod.New(), nil }
	return m
}

func TestManager_RenderBeforeStart(t *testing.T) {
	m := New(Config{}, nil)
	_, err := m.Render(context.Background(), "https://example.com")
	require.ErrorIs(t, err, ErrNotStarted)
	require.False(t, m.Started())
}

func TestManager_StartFirstTry(t *testing.T) {
	h := &hooks{}
	m := newTestManager(h)

	require.NoError(t, m.Start(context.Background()))
	require.True(t, m.Started())
	require.Equal(t, []string{"/usr/bin/chromium"}, h.launchBins)
	require.Zero(t, h.installs)

	// idempotente
	require.NoError(t, m.Start(context.Background()))
	require.Len(t, h.launchBins, 1)
}

func TestManager_InstallsAndRetriesOnce(t *testing.T) {
	h := &hooks{failFirst: true}
	m := newTestManager(h)

	require.NoError(t, m.Start(context.Background()))
	require.Equal(t, 1, h.installs)
	require.Equal(t, []string{"/usr/bin/chromium", "/cache/rod/chromium"}, h.launchBins)
}

func TestManager_RetryFailurePropagates(t *testing.T) {
	h := &hooks{failAll: true}
	m := newTestManager(h)

	err := m.Start(context.Background())
	var se *SessionError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "launch", se.Op)
	require.Len(t, h.launchBins, 2, "un solo reintento")
	require.Equal(t, 1, h.installs)
	require.False(t, m.Started())
}

func TestManager_InstallFailure(t *testing.T) {
	h := &hooks{failFirst: true, installErr: errors.New("no network")}
	m := newTestManager(h)

	err := m.Start(context.Background())
	var se *SessionError
	require.ErrorAs(t, err, &se)
	require.Equal(t, "install", se.Op)
	require.Len(t, h.launchBins, 1)
}

func TestManager_MissingBinaryGoesStraightToInstall(t *testing.T) {
	m := New(Config{}, nil)
	m.lookPath = func() (string, bool) { return "", false }

	var installs int
	m.install = func() (string, error) {
		installs++
		return "", errors.New("offline")
	}

	err := m.Start(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, errBinaryMissing)
	require.Equal(t, 1, installs)
}

func TestConfig_Defaults(t *testing.T) {
	c := Config{}.withDefaults()
	require.Equal(t, DefaultTimeout, c.Timeout)
	require.Equal(t, DefaultUserAgent, c.UserAgent)
	require.Equal(t, defaultIdle, c.Idle)
}
