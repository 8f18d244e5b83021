package bootstrap

import (
	"labelfind/internal/config"
	"labelfind/internal/fuzzy"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func testConfig() *config.Config {
	return &config.Config{
		AppConfig:     &config.AppConfig{LogLevel: "info"},
		FinderConfig:  &config.FinderConfig{SearchFrames: true},
		BrowserConfig: &config.BrowserConfig{},
	}
}

func TestNewLogger(t *testing.T) {
	conf := testConfig()
	conf.AppConfig.LogLevel = "warn"

	logger, err := newLogger(conf)
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	conf := testConfig()
	conf.AppConfig.LogLevel = "loud"

	_, err := newLogger(conf)
	assert.ErrorContains(t, err, "LOG_LEVEL")
}

func TestNewFinder_CommonAncestorSwitch(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<body><div><span>Plan</span><div><button>Upgrade</button></div></div></body>`))
	require.NoError(t, err)

	conf := testConfig()

	_, err = newFinder(conf, zap.NewNop()).Find(doc, "Plan", []string{"button"})
	require.NoError(t, err)

	conf.FinderConfig.DisableCommonAncestor = true

	_, err = newFinder(conf, zap.NewNop()).Find(doc, "Plan", []string{"button"})
	assert.ErrorIs(t, err, fuzzy.ErrNotFound)
}
