package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casamattos/internal/pkg/logger"
)

func TestLogger_WritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "info", false)

	log.Info("Lista finalizada.", map[string]interface{}{"lista_id": 7})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Lista finalizada.", entry["message"])
	assert.EqualValues(t, 7, entry["lista_id"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, "error", false)

	log.Debug("ignorado", nil)
	log.Info("ignorado", nil)
	log.Warn("ignorado", nil)
	assert.Zero(t, buf.Len())

	log.Error("Falha ao commitar transação.", errors.New("conn reset"))
	assert.Contains(t, buf.String(), "conn reset")
}
