package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vizfeed/beacon/cfg"
	"github.com/vizfeed/beacon/marker"
	"github.com/vizfeed/beacon/publisher"
)

func newTestServer(t *testing.T) (*httptest.Server, *publisher.MarkerRegistry) {
	t.Helper()

	registry, err := publisher.NewMarkerRegistry(publisher.RegistryConfig{
		TopicNamespace: "test",
		TopicName:      "markers",
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	RegisterRoutes(mux, NewAdminHandlers(registry))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, registry
}

func doRequest(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAdmin_StageApplyGetFlow(t *testing.T) {
	srv, registry := newTestServer(t)

	m := marker.Marker{FrameID: "base_link", Shape: marker.ShapeCube}

	resp := doRequest(t, http.MethodPut, srv.URL+"/admin/markers/goal", m)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "upsert", body["staged"])

	// Not committed yet.
	resp = doRequest(t, http.MethodGet, srv.URL+"/admin/markers/goal", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, srv.URL+"/admin/apply", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, float64(1), body["committed"])

	resp = doRequest(t, http.MethodGet, srv.URL+"/admin/markers/goal", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "goal", body["name"])

	// Delete and re-apply.
	resp = doRequest(t, http.MethodDelete, srv.URL+"/admin/markers/goal", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	registry.ApplyChanges()
	assert.Equal(t, 0, registry.CommittedLen())
}

func TestAdmin_ListAndStats(t *testing.T) {
	srv, registry := newTestServer(t)

	registry.Insert("a", marker.Marker{Shape: marker.ShapeCube})
	registry.Insert("b", marker.Marker{Shape: marker.ShapeSphere})
	registry.ApplyChanges()

	resp := doRequest(t, http.MethodGet, srv.URL+"/admin/markers/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["count"])

	resp = doRequest(t, http.MethodGet, srv.URL+"/admin/stats", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "test.markers", body["topic"])
	assert.Equal(t, float64(2), body["committed"])
	assert.Equal(t, float64(0), body["pending"])
}

func TestAdmin_DeleteAll(t *testing.T) {
	srv, registry := newTestServer(t)

	registry.Insert("a", marker.Marker{})
	registry.ApplyChanges()

	resp := doRequest(t, http.MethodDelete, srv.URL+"/admin/markers/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	registry.ApplyChanges()
	assert.Equal(t, 0, registry.CommittedLen())
}

func TestAdmin_SlashNamedMarker(t *testing.T) {
	srv, registry := newTestServer(t)

	m := marker.Marker{FrameID: "base_link", Shape: marker.ShapeCube}

	resp := doRequest(t, http.MethodPut, srv.URL+"/admin/markers/robot/arm", m)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "robot/arm", body["name"])

	registry.ApplyChanges()

	resp = doRequest(t, http.MethodGet, srv.URL+"/admin/markers/robot/arm", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "robot/arm", body["name"])

	resp = doRequest(t, http.MethodDelete, srv.URL+"/admin/markers/robot/arm", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	registry.ApplyChanges()
	assert.Equal(t, 0, registry.CommittedLen())
}

func TestAdmin_InvalidMarkerBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/admin/markers/x", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdmin_AuthToken(t *testing.T) {
	original := cfg.Config.Admin.AuthToken
	cfg.Config.Admin.AuthToken = "secret"
	defer func() { cfg.Config.Admin.AuthToken = original }()

	srv, _ := newTestServer(t)

	// Missing token
	resp := doRequest(t, http.MethodGet, srv.URL+"/admin/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Correct token
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/admin/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")

	okResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer okResp.Body.Close()
	assert.Equal(t, http.StatusOK, okResp.StatusCode)
}
