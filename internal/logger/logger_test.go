package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTo_ProdIsJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewTo(&buf, "prod")

	log.Debug("hidden")
	require.Zero(t, buf.Len())

	log.Info("hello", "k", "v")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "hello", rec["msg"])
	require.Equal(t, "v", rec["k"])
	require.Equal(t, "publishing-backend", rec["service"])
}

func TestNewTo_DevIsTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	NewTo(&buf, "dev").Debug("visible")
	require.Contains(t, buf.String(), "msg=visible")
}
