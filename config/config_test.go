package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestSaveAndLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "daysim.yaml")
	want := Default()
	want.Date = "2021-03-15"
	require.NoError(t, want.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveAndLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "daysim.json")
	want := Default()
	want.Journal = JournalConfig{Type: "sqlite", DBPath: "./journal.db"}
	require.NoError(t, want.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Data.Provider = "ftp" }},
		{"csv without dir", func(c *Config) { c.Data.Dir = "" }},
		{"bad timezone", func(c *Config) { c.Session.Timezone = "Mars/Olympus" }},
		{"bad open time", func(c *Config) { c.Session.Open = "9am" }},
		{"close before open", func(c *Config) { c.Session.Open, c.Session.Close = "16:00", "09:30" }},
		{"bad date", func(c *Config) { c.Date = "15/03/2021" }},
		{"no assets", func(c *Config) { c.Assets = nil }},
		{"empty symbol", func(c *Config) { c.Assets[0].Symbol = "" }},
		{"negative spread", func(c *Config) { c.Assets[0].Spread = -0.1 }},
		{"no accounts", func(c *Config) { c.Accounts = nil }},
		{"empty account name", func(c *Config) { c.Accounts[0].Name = "" }},
		{"zero deposit", func(c *Config) { c.Accounts[0].Deposit = 0 }},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "kafka" }},
		{"csv journal missing files", func(c *Config) { c.Journal.BalancesFile = "" }},
		{"sqlite journal missing path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestJournalTypeNoneNeedsNothing(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Journal = JournalConfig{Type: "none"}
	assert.NoError(t, cfg.Validate())
	cfg.Journal = JournalConfig{}
	assert.NoError(t, cfg.Validate())
}

func TestTradingSession(t *testing.T) {
	t.Parallel()

	s, err := Default().TradingSession()
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+30*time.Minute, s.Open)
	assert.Equal(t, 16*time.Hour, s.Close)
	assert.Equal(t, "America/New_York", s.Loc.String())
}

func TestDay(t *testing.T) {
	t.Parallel()

	cfg := Default()
	day, err := cfg.Day()
	require.NoError(t, err)
	assert.True(t, day.IsZero())

	cfg.Date = "2021-03-15"
	day, err = cfg.Day()
	require.NoError(t, err)
	assert.Equal(t, 2021, day.Year())
	assert.Equal(t, time.March, day.Month())
	assert.Equal(t, 15, day.Day())
	assert.Equal(t, "America/New_York", day.Location().String())
}
