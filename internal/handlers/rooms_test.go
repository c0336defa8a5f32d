package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONLogsEncodeFailureToServerLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()

	rec := httptest.NewRecorder()
	writeJSON(logger, rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "failed to encode response")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHealthHandler(t *testing.T) {
	logger, hook := test.NewNullLogger()

	rec := httptest.NewRecorder()
	HealthHandler(logger)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Empty(t, hook.AllEntries())
}
