package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_ReturnsNumericPercent(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/load", nil)
	rec := httptest.NewRecorder()

	h.Load(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var pct float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pct))
	require.GreaterOrEqual(t, pct, 0.0)
}
