package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		" WARN ":  WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"info":    InfoLevel,
		"verbose": InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestComponentWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: DebugLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	log := Component("entity_service")
	log.Debug().Str("entityID", "e-1").Msg("Entity created")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "entity_service", line["component"])
	assert.Equal(t, "e-1", line["entityID"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "Entity created", line["message"])
}
