package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserLimiter(t *testing.T) {
	clock := time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)
	l := newUserLimiter(5 * time.Second)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"))
	assert.True(t, l.Allow("u2"), "cada usuario tiene su ventana")

	clock = clock.Add(5 * time.Second)
	assert.True(t, l.Allow("u1"))
}

func TestHasAnyRole(t *testing.T) {
	assert.True(t, hasAnyRole([]string{"1", "2"}, []string{"3", "2"}))
	assert.False(t, hasAnyRole([]string{"1"}, []string{"3"}))
	assert.False(t, hasAnyRole([]string{"1"}, nil))
}
