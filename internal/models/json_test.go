package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPayload(t *testing.T) {
	payload, err := NewJSON(map[string]interface{}{"livro_id": 7, "xml": "<indice/>"})
	require.NoError(t, err)

	var decoded struct {
		LivroID uint64 `json:"livro_id"`
		XML     string `json:"xml"`
	}
	require.NoError(t, payload.Decode(&decoded))
	assert.EqualValues(t, 7, decoded.LivroID)
	assert.Equal(t, "<indice/>", decoded.XML)

	value, err := payload.Value()
	require.NoError(t, err)

	var scanned JSON
	require.NoError(t, scanned.Scan(value))
	assert.JSONEq(t, string(payload.JSON), string(scanned.JSON))
}
