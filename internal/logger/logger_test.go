package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureTagsComponent(t *testing.T) {
	defer SetLevel("info")

	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "test"})

	New("queue").Debug().Int("job", 7).Msg("submitted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "test", line["service"])
	assert.Equal(t, "queue", line["component"])
	assert.Equal(t, "submitted", line["message"])
	assert.EqualValues(t, 7, line["job"])
}

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	SetLevel("")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
