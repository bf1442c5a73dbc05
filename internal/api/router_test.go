package api_test

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/dom/gemrealm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Health(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.BaseURL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestRouter_MetricsAfterRegistration(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json",
		bytes.NewBufferString(`{"username":"alice","password":"secret1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.APIURL("/auth/register"), "application/json",
		bytes.NewBufferString(`{"username":"alice","password":"secret1"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = http.Get(ts.BaseURL() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gemrealm_registrations_total{result="success"} 1`)
	assert.Contains(t, string(body), `gemrealm_registrations_total{result="username_taken"} 1`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.APIURL("/auth/login"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
