package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		code     int
		status   string
		database string
	}{
		{"no database", nil, http.StatusOK, "ok", ""},
		{"reachable", pinger{}, http.StatusOK, "ok", "ok"},
		{"unreachable", pinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "degraded", "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
			before := time.Now().UTC()

			require.NoError(t, NewHandler(tt.db).Health(c))
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

			var body struct {
				Status   string `json:"status"`
				Time     string `json:"time"`
				Database string `json:"database"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.database, body.Database)

			at, err := time.Parse(time.RFC3339Nano, body.Time)
			require.NoError(t, err)
			assert.Equal(t, time.UTC, at.Location())
			assert.WithinDuration(t, before, at, 2*time.Second)
		})
	}
}
