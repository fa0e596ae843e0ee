package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thea-protocol/thea-sdk-go/pkg/sdkerrors"
)

func TestGet_DecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/things", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		json.NewEncoder(w).Encode(map[string]string{"name": "thing-42"})
	}))
	defer server.Close()

	c := New(server.URL)
	var out struct {
		Name string `json:"name"`
	}
	params := url.Values{}
	params.Set("id", "42")
	require.NoError(t, c.Get(context.Background(), "/things", params, &out))
	assert.Equal(t, "thing-42", out.Name)
}

func TestPost_SendsJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["msg"])
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer server.Close()

	c := New(server.URL)
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Post(context.Background(), "/echo", map[string]string{"msg": "hello"}, nil, &out))
	assert.True(t, out.OK)
}

func TestErrorsCarryMethodAndPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(server.URL)
	err := c.Get(context.Background(), "/broken", nil, nil)
	require.Error(t, err)

	var apiErr *sdkerrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, sdkerrors.KindAPICall, apiErr.Kind)
	assert.Equal(t, http.MethodGet, apiErr.Method)
	assert.Equal(t, "/broken", apiErr.Path)
	assert.Contains(t, err.Error(), "503")
}

func TestGet_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := New(server.URL)
	var out map[string]string
	err := c.Get(context.Background(), "/garbled", nil, &out)
	assert.Equal(t, sdkerrors.KindAPICall, sdkerrors.KindOf(err))
}
