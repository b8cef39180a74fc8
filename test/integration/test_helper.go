package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// BaseURL points at a running api, e.g. http://localhost:8080.
var BaseURL = strings.TrimRight(os.Getenv("INTEGRATION_BASE_URL"), "/")

// requireServer skips the test unless INTEGRATION_BASE_URL is set.
func requireServer(t *testing.T) {
	t.Helper()
	if BaseURL == "" {
		t.Skip("integration tests are disabled; set INTEGRATION_BASE_URL to enable")
	}
}

func doJSON(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, BaseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token := os.Getenv("INTEGRATION_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
