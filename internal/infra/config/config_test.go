package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"ROOM_EXPIRED_SECONDS", "BROWSER_HEADLESS", "BROWSER_BIN", "OCCUPANCY_ENABLED",
		"HULLQIN_BASE_URL", "STORE_BACKEND", "DATA_DIR", "DATABASE_URL",
		"DISCORD_BOT_TOKEN", "DISCORD_GUILD_ID", "ADMIN_ROLE_IDS", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(false)
	require.NoError(t, err)
	assert.Equal(t, 1200*time.Second, cfg.RoomTTL)
	assert.True(t, cfg.BrowserHeadless)
	assert.False(t, cfg.OccupancyEnabled)
	assert.Equal(t, BackendFile, cfg.StoreBackend)
	assert.Equal(t, "https://game.hullqin.cn", cfg.BaseURL)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Empty(t, cfg.AdminRoleIDs)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROOM_EXPIRED_SECONDS", "60")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("OCCUPANCY_ENABLED", "true")
	t.Setenv("ADMIN_ROLE_IDS", " 1, 2 ,,3")
	t.Setenv("DISCORD_BOT_TOKEN", "tok")

	cfg, err := Load(true)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.RoomTTL)
	assert.False(t, cfg.BrowserHeadless)
	assert.True(t, cfg.OccupancyEnabled)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.AdminRoleIDs)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing discord token", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(true)
		require.ErrorContains(t, err, "DISCORD_BOT_TOKEN")
	})
	t.Run("postgres without url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_BACKEND", "postgres")
		_, err := Load(false)
		require.ErrorContains(t, err, "DATABASE_URL")
	})
	t.Run("bad ttl", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ROOM_EXPIRED_SECONDS", "-5")
		_, err := Load(false)
		require.Error(t, err)
	})
	t.Run("unknown backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORE_BACKEND", "redis")
		_, err := Load(false)
		require.Error(t, err)
	})
}
