package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chart(t *testing.T) string {
	file := filepath.Join(t.TempDir(), "chart.bms")
	require.NoError(t, os.WriteFile(file, []byte("#TITLE x\n"), 0644))
	return file
}

func settings(t *testing.T, body string) string {
	file := filepath.Join(t.TempDir(), "bms.yaml")
	require.NoError(t, os.WriteFile(file, []byte(body), 0644))
	return file
}

func TestDefaults(t *testing.T) {
	file := chart(t)
	c, err := Parse([]string{file})
	require.NoError(t, err)

	assert.Equal(t, file, c.Chart)
	assert.Equal(t, time.Duration(0), c.Offset)
	assert.Equal(t, 1500*time.Millisecond, c.Delay)
	assert.Equal(t, 20.0, c.ScrollSpeed)
	assert.Equal(t, uint(4), c.BarRow)
	assert.Equal(t, "zsxdcfvgb", c.Keys)
	assert.Equal(t, 4*time.Millisecond, c.FramePeriod)
	assert.False(t, c.AutoPlay)
	assert.False(t, c.Strict)
	assert.Empty(t, c.Device)
	assert.Empty(t, c.MetricsAddr)
}

func TestFlags(t *testing.T) {
	c, err := Parse([]string{
		"-o", "12ms", "--auto-play", "--strict", "-s", "10",
		"--keys", "asd", "--metrics-addr", ":9090", "-v", chart(t),
	})
	require.NoError(t, err)
	assert.Equal(t, 12.0, c.OffsetMs())
	assert.True(t, c.AutoPlay)
	assert.True(t, c.Strict)
	assert.Equal(t, 10.0, c.ScrollSpeed)
	assert.Equal(t, ":9090", c.MetricsAddr)
	assert.Equal(t, "DEBUG", c.Level().String())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]string{})
	assert.Error(t, err, "chart is required")

	_, err = Parse([]string{filepath.Join(t.TempDir(), "missing.bms")})
	assert.Error(t, err)

	_, err = Parse([]string{"-s", "0", chart(t)})
	assert.Error(t, err)

	_, err = Parse([]string{"--keys", "", chart(t)})
	assert.Error(t, err)
}

func TestSettingsFile(t *testing.T) {
	file := settings(t, "offset: -8ms\nscroll_speed: 15\nkeys: qwe\nauto_play: true\nbar_row: 2\n")
	c, err := Parse([]string{"-c", file, chart(t)})
	require.NoError(t, err)
	assert.Equal(t, -8.0, c.OffsetMs())
	assert.Equal(t, 15.0, c.ScrollSpeed)
	assert.Equal(t, "qwe", c.Keys)
	assert.True(t, c.AutoPlay)
	assert.Equal(t, uint(2), c.BarRow)
	assert.Equal(t, 1500*time.Millisecond, c.Delay, "absent keys keep the flag default")
}

func TestFlagsWinOverSettings(t *testing.T) {
	file := settings(t, "offset: -8ms\nscroll_speed: 15\n")
	c, err := Parse([]string{"--config", file, "--offset", "3ms", chart(t)})
	require.NoError(t, err)
	assert.Equal(t, 3.0, c.OffsetMs())
	assert.Equal(t, 15.0, c.ScrollSpeed)
}

func TestBadSettings(t *testing.T) {
	_, err := Parse([]string{"-c", settings(t, "offset: [\n"), chart(t)})
	assert.Error(t, err)

	_, err = Parse([]string{"-c", settings(t, "scroll_speed: -1\n"), chart(t)})
	assert.Error(t, err)
}

func TestKeyLane(t *testing.T) {
	c := &Config{Keys: "zsxdcfvgb"}
	tests := []struct {
		key  rune
		lane int
	}{
		{'z', 1}, {'s', 2}, {'b', 9}, {'q', 0}, {'Z', 0},
	}
	for _, test := range tests {
		assert.Equal(t, test.lane, c.KeyLane(test.key), string(test.key))
	}
}
