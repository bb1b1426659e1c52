package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	log, closer, err := New(Config{})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	require.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestWriter_DefaultsToStderr(t *testing.T) {
	out, _, err := writer("")
	require.NoError(t, err)
	require.Same(t, os.Stderr, out)

	out, _, err = writer("stdout")
	require.NoError(t, err)
	require.Same(t, os.Stdout, out)
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	require.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	log, closer, err := New(Config{Level: "debug", Output: path})
	require.NoError(t, err)
	log.Debug().Msg("hello")
	require.NoError(t, closer.Close())
	require.FileExists(t, path)
}

func TestBuild_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := build(&buf, "json", zerolog.InfoLevel)
	log.Info().Str("symbol", "BTC/USDT").Msg("cycle done")
	log.Debug().Msg("filtered")

	out := buf.String()
	require.Contains(t, out, `"symbol":"BTC/USDT"`)
	require.Contains(t, out, `"message":"cycle done"`)
	require.NotContains(t, out, "filtered")
}
