package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexzimmer/portfolio/internal/config"
	"github.com/alexzimmer/portfolio/internal/logging"
)

func TestNew_WritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.log")

	logger, cleanup, err := logging.New(config.LogConfig{
		Level:      "info",
		File:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
	})
	require.NoError(t, err)

	logger.Debug("filtered out")
	logger.Info("health report produced")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"health report produced"`)
	assert.False(t, strings.Contains(string(data), "filtered out"), "debug line should be below threshold")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := logging.New(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}
