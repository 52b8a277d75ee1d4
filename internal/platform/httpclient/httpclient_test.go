package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	c, err := NewWithBaseURL(srv.URL+"/", time.Second)
	require.NoError(t, err)

	var out struct {
		Echo string `json:"echo"`
	}
	err = c.DoJSON(context.Background(), http.MethodPost, "v1/echo",
		map[string]string{"Authorization": "Bearer k"}, map[string]string{"msg": "hola"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hola", out.Echo)
}

func TestDo_Non2xxReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
	}))
	defer srv.Close()

	c := New(time.Second)
	_, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.Error(t, err)

	wrapped := fmt.Errorf("ocr: %w", err)
	assert.Equal(t, http.StatusPaymentRequired, StatusCode(wrapped))

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.LessOrEqual(t, len(he.Body), 515)
}

func TestResolveURL(t *testing.T) {
	c := New(0)
	_, err := c.resolveURL("/x")
	assert.Error(t, err)

	got, err := c.resolveURL("https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", got)

	_, err = NewWithBaseURL("::not a url", time.Second)
	assert.Error(t, err)
}

func TestStatusCode_NoHTTPError(t *testing.T) {
	assert.Equal(t, 0, StatusCode(fmt.Errorf("boom")))
}
