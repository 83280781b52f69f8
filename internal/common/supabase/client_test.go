package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{URL: srv.URL, ServiceKey: "service-key"})
	require.NoError(t, err)
	return c.WithHTTPClient(srv.Client())
}

func TestNewClient_RequiresConfig(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(Config{URL: "::bad", ServiceKey: "k"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Insert(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/applications", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var row map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		assert.Equal(t, "AAMOI-20250101-1234", row["tracking_number"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"1"}]`))
	})

	body, err := c.Insert(context.Background(), "applications", map[string]string{"tracking_number": "AAMOI-20250101-1234"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(body))
}

func TestClient_Insert_Conflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
	})

	_, err := c.Insert(context.Background(), "applications", map[string]string{})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), "supabase API error 409")
}

func TestClient_UploadAndSign(t *testing.T) {
	var uploaded []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/storage/v1/object/applications/AAMOI-20250101-1234/passport/1700000000000_scan.pdf":
			assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
			assert.Equal(t, "false", r.Header.Get("x-upsert"))
			uploaded, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"Key":"applications/AAMOI-20250101-1234/passport/1700000000000_scan.pdf"}`))
		case "/storage/v1/object/sign/applications/AAMOI-20250101-1234/passport/1700000000000_scan.pdf":
			var body map[string]int64
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(3600), body["expiresIn"])
			_, _ = w.Write([]byte(`{"signedURL":"/object/sign/applications/x?token=abc"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	path := "AAMOI-20250101-1234/passport/1700000000000_scan.pdf"
	require.NoError(t, c.Upload(context.Background(), "applications", path, "application/pdf", []byte("%PDF")))
	assert.Equal(t, "%PDF", string(uploaded))

	signed, err := c.SignedURL(context.Background(), "applications", path, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, c.baseURL+"/storage/v1/object/sign/applications/x?token=abc", signed)

	assert.Equal(t, c.baseURL+"/storage/v1/object/public/applications/"+path, c.PublicURL("applications", path))
}

func TestClient_SignedURL_MissingField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	})

	_, err := c.SignedURL(context.Background(), "applications", "a/b", time.Minute)
	assert.ErrorContains(t, err, "missing signedURL")
}

func TestClient_Insert_CancelledContext(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Insert(ctx, "applications", map[string]string{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
