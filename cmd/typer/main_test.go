package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typer/internal/config"
	"github.com/verte-zerg/typer/internal/layout"
	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/stats"
)

func validConfig() model.Config {
	return model.Config{
		Layout:     "latin",
		Objects:    10,
		Interval:   700 * time.Millisecond,
		Window:     150 * time.Millisecond,
		Preempt:    1200 * time.Millisecond,
		WeakTop:    8,
		WeakFactor: 2,
		WeakWindow: 20,
	}
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, validateConfig(validConfig()))

	cases := map[string]func(*model.Config){
		"objects":     func(c *model.Config) { c.Objects = 0 },
		"interval":    func(c *model.Config) { c.Interval = 0 },
		"window":      func(c *model.Config) { c.Window = 0 },
		"preempt":     func(c *model.Config) { c.Preempt = c.Window - time.Millisecond },
		"weak-top":    func(c *model.Config) { c.WeakTop = -1 },
		"weak-factor": func(c *model.Config) { c.WeakFactor = -0.5 },
		"weak-window": func(c *model.Config) { c.WeakWindow = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--"+name)
		})
	}
}

func TestDefaultConfigTemplateDecodesWhenUncommented(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Play.Layout)
	assert.Equal(t, defaultLayout, *cfg.Play.Layout)
	require.NotNil(t, cfg.Play.WindowMs)
	assert.Equal(t, 150, *cfg.Play.WindowMs)
	require.NotNil(t, cfg.Play.PreemptMs)
	assert.Equal(t, 1200, *cfg.Play.PreemptMs)
	require.NotNil(t, cfg.Play.WeakFactor)
	assert.InDelta(t, defaultWeakFactor, *cfg.Play.WeakFactor, 1e-9)
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	cmd := &cobra.Command{}
	var objects, interval int
	cmd.Flags().IntVar(&objects, "objects", 30, "")
	cmd.Flags().IntVar(&interval, "interval", 700, "")
	require.NoError(t, cmd.Flags().Set("objects", "5"))

	fromFile := 99
	applyIntConfig(cmd, "objects", &objects, &fromFile)
	applyIntConfig(cmd, "interval", &interval, &fromFile)
	applyIntConfig(cmd, "interval", &interval, nil)

	assert.Equal(t, 5, objects)
	assert.Equal(t, 99, interval)
}

func TestRenderKeyTableListsEveryTarget(t *testing.T) {
	out := renderKeyTable()
	for _, c := range layout.Alphabet() {
		assert.Contains(t, out, c.Upper())
	}
	assert.Contains(t, out, "Semicolon")
}

func TestWriteReport(t *testing.T) {
	report := stats.Report{
		Sessions: []model.SessionAggregate{{SessionID: 1, Hits: 3, Misses: 1, DurationMs: 60000}},
		Chars:    []model.CharAggregate{{Char: "а", Hits: 10, Misses: 2}},
		AllTime:  map[string]model.CharAggregate{"а": {Char: "а", Hits: 20, Misses: 5}},
	}
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, "cyrillic"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "typer stats · cyrillic\n"))
	assert.Contains(t, out, "Sessions: 1")
	assert.Contains(t, out, "А")
	assert.Contains(t, out, "80.00%")
}

func TestDefaultLayoutIsCyrillic(t *testing.T) {
	primary, err := layout.ParseLayout(defaultLayout)
	require.NoError(t, err)
	assert.Equal(t, layout.Cyrillic, primary)

	r := layout.Resolver{Primary: primary}
	dot, _ := layout.Cyrillic.Rune(layout.ExpectedRawKey('.'))
	assert.True(t, layout.IsMatch(r.KeyFor(dot), '.'))
}
