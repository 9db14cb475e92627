package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var testGames = []domain.GameDescriptor{
	{GameName: "UNO", GameID: "uno", RuleLink: "https://game.hullqin.cn/rules/uno"},
	{GameName: "五子棋", GameID: "gomoku", RuleLink: domain.NoRuleLink},
	{GameName: "璀璨宝石", GameID: "splendor", RuleLink: domain.NoRuleLink},
}

type fakeScraper struct {
	mu           sync.Mutex
	games        []domain.GameDescriptor
	catalogErr   error
	roomID       string
	resolveErr   error
	occupancy    *domain.Occupancy
	gate         chan struct{}
	catalogCalls int
	resolveCalls int
	occCalls     int
}

func (f *fakeScraper) FetchCatalog(context.Context) ([]domain.GameDescriptor, error) {
	f.mu.Lock()
	f.catalogCalls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return append([]domain.GameDescriptor(nil), f.games...), nil
}

func (f *fakeScraper) ResolveRoom(_ context.Context, _, roomID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if roomID != "" {
		return roomID, nil
	}
	f.resolveCalls++
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.roomID, nil
}

func (f *fakeScraper) FetchOccupancy(context.Context, string, string) (*domain.Occupancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.occCalls++
	return f.occupancy, nil
}

func (f *fakeScraper) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalogCalls
}

type memCatalog struct {
	mu    sync.Mutex
	st    domain.CatalogState
	saves int
}

func (m *memCatalog) Load(context.Context) (domain.CatalogState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st, nil
}

func (m *memCatalog) Save(_ context.Context, st domain.CatalogState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = st
	m.saves++
	return nil
}

func (m *memCatalog) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = domain.CatalogState{}
	return nil
}

func (m *memCatalog) state() domain.CatalogState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

var errBoom = errors.New("boom")
