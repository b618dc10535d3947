package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInit_FirstCallWins(t *testing.T) {
	Reset()
	defer Reset()

	var first, second bytes.Buffer
	Init(Options{Level: "warn", Output: &first})
	Init(Options{Level: "debug", Output: &second})

	log := Get()
	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	assert.NotContains(t, first.String(), "dropped")
	assert.Contains(t, first.String(), "kept")
	assert.Contains(t, first.String(), `"service":"clientdesk"`)
	assert.Empty(t, second.String())
}

func TestGet_BeforeInitIsSilent(t *testing.T) {
	Reset()
	defer Reset()

	assert.Equal(t, zerolog.Disabled, Get().GetLevel())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, parseLevel("TRACE"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" debug "))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}
