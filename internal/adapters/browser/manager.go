// Package browser es dueño del único Chromium del proceso y renderiza páginas
// aisladas para el scraper.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/145.0.0.0 Safari/537.36 Edg/145.0.0.0"
	DefaultTimeout   = 30 * time.Second
	defaultIdle      = 500 * time.Millisecond
	closeTimeout     = 5 * time.Second
)

// ErrNotStarted: se pidió una página antes de que Start terminara bien. Es un
// error de programación, no se reintenta.
var ErrNotStarted = errors.New("browser no iniciado")

var errBinaryMissing = errors.New("no se encontró binario de chromium")

// SessionError agrupa las fallas de lanzar/conectar el navegador.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string { return fmt.Sprintf("browser %s: %v", e.Op, e.Err) }
func (e *SessionError) Unwrap() error { return e.Err }

type Config struct {
	Headless  bool
	Bin       string        // vacío = buscar en el PATH
	UserAgent string        // header compartido por todas las páginas
	Timeout   time.Duration // por operación de página
	Idle      time.Duration // ventana sin requests para considerar la página asentada
}

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Idle <= 0 {
		c.Idle = defaultIdle
	}
	return c
}

type Manager struct {
	cfg Config
	log *zap.Logger

	mu       sync.RWMutex
	browser  *rod.Browser
	launcher *launcher.Launcher

	// puntos de inyección para tests
	lookPath func() (string, bool)
	launch   func(bin string) (*launcher.Launcher, string, error)
	install  func() (string, error)
	connect  func(controlURL string) (*rod.Browser, error)
}

func New(cfg Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{cfg: cfg.withDefaults(), log: log}
	m.lookPath = launcher.LookPath
	m.launch = m.launchBin
	m.install = func() (string, error) { return launcher.NewBrowser().Get() }
	m.connect = func(u string) (*rod.Browser, error) {
		b := rod.New().ControlURL(u)
		if err := b.Connect(); err != nil {
			return nil, err
		}
		return b, nil
	}
	return m
}

// Start lanza y conecta el navegador. Es idempotente: si ya hay uno vivo no hace nada.
// Si el primer lanzamiento falla, instala el binario y reintenta una sola vez.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return nil
	}

	bin := m.cfg.Bin
	if bin == "" {
		if p, ok := m.lookPath(); ok {
			bin = p
		}
	}

	l, u, err := m.launch(bin)
	if err != nil {
		m.log.Warn("no se pudo lanzar chromium, instalando binario", zap.String("bin", bin), zap.Error(err))
		path, ierr := m.install()
		if ierr != nil {
			return &SessionError{Op: "install", Err: errors.Join(err, ierr)}
		}
		l, u, err = m.launch(path)
		if err != nil {
			return &SessionError{Op: "launch", Err: err}
		}
		bin = path
	}

	if err := ctx.Err(); err != nil {
		m.kill(l)
		return &SessionError{Op: "start", Err: err}
	}

	b, err := m.connect(u)
	if err != nil {
		m.kill(l)
		return &SessionError{Op: "connect", Err: err}
	}

	m.browser, m.launcher = b, l
	m.log.Info("chromium listo", zap.String("bin", bin), zap.Bool("headless", m.cfg.Headless))
	return nil
}

func (m *Manager) launchBin(bin string) (*launcher.Launcher, string, error) {
	if bin == "" {
		return nil, "", errBinaryMissing
	}
	l := launcher.New().Bin(bin).Headless(m.cfg.Headless)
	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, "", err
	}
	return l, u, nil
}

func (m *Manager) kill(l *launcher.Launcher) {
	if l != nil {
		l.Kill()
	}
}

// Started indica si hay un navegador conectado.
func (m *Manager) Started() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// Render abre una página aislada, navega, espera a que la red quede quieta y
// devuelve el HTML renderizado. La página se cierra siempre.
//
// La operación se desacopla de la cancelación de ctx: una vez empezada corre
// hasta terminar o hasta el timeout fijo.
func (m *Manager) Render(ctx context.Context, url string) (string, error) {
	m.mu.RLock()
	b := m.browser
	m.mu.RUnlock()
	if b == nil {
		return "", ErrNotStarted
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.Timeout)
	defer cancel()

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("nueva página: %w", err)
	}
	defer func() {
		// ctx puede estar vencido; el cierre tiene su propio plazo corto
		cctx, ccancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer ccancel()
		if cerr := page.Context(cctx).Close(); cerr != nil {
			m.log.Debug("cerrar página", zap.String("url", url), zap.Error(cerr))
		}
	}()

	p := page.Context(ctx)
	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: m.cfg.UserAgent}); err != nil {
		return "", fmt.Errorf("user agent: %w", err)
	}

	waitIdle := p.WaitRequestIdle(m.cfg.Idle, nil, nil, nil)
	if err := p.Navigate(url); err != nil {
		return "", fmt.Errorf("navegar %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", fmt.Errorf("load %s: %w", url, err)
	}
	waitIdle()
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("esperar red %s: %w", url, err)
	}

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("html %s: %w", url, err)
	}
	return html, nil
}

// Close libera el navegador y el proceso lanzado.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.launcher != nil {
		m.launcher.Cleanup()
		m.launcher = nil
	}
	return err
}
