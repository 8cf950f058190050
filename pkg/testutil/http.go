// Package testutil holds HTTP helpers shared by handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurb/pkg/platform/middleware/admin"
)

// NewJSONRequest builds a request whose body is v marshaled to JSON. A nil
// v sends no body.
func NewJSONRequest(t *testing.T, method, path string, v any) *http.Request {
	t.Helper()
	var body io.Reader
	if v != nil {
		raw, err := json.Marshal(v)
		require.NoError(t, err, "marshal request body")
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AsAdmin adds the admin token and acting name headers.
func AsAdmin(req *http.Request, token, name string) *http.Request {
	req.Header.Set(admin.HeaderAdminToken, token)
	if name != "" {
		req.Header.Set(admin.HeaderAdminName, name)
	}
	return req
}

func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals the response body into T.
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "unmarshal response: %s", rec.Body.String())
	return out
}

// AssertError checks the status and the error envelope's description.
func AssertError(t *testing.T, rec *httptest.ResponseRecorder, status int, description string) {
	t.Helper()
	assert.Equal(t, status, rec.Code, "unexpected status code")
	body := Decode[map[string]string](t, rec)
	assert.Equal(t, description, body["error_description"])
}
