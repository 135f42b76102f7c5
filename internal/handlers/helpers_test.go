package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

// nopConn satisfies realtime.Conn for handler tests that only need presence.
type nopConn struct{}

func (nopConn) WriteText([]byte) error { return nil }
func (nopConn) Close() error           { return nil }

func patchRequest(t *testing.T, path string, body []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}
