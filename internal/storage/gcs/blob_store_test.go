package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newTestClient creates a storage client pointed at a test server.
func newTestClient(t *testing.T, handler http.Handler) *storage.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(nil, Config{Bucket: "b"})
	assert.Error(t, err)

	client := newTestClient(t, http.NotFoundHandler())
	_, err = New(client, Config{})
	assert.Error(t, err)
}

func TestObjectName(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	plain, err := New(client, Config{Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "index.html", plain.ObjectName("index.html"))

	prefixed, err := New(client, Config{Bucket: "b", Prefix: "/tracker/"})
	require.NoError(t, err)
	assert.Equal(t, "tracker/index.html", prefixed.ObjectName("/index.html"))
}

func TestPutObjectUploads(t *testing.T) {
	const bucket = "test-bucket"
	body := "<html>bills</html>"

	// This handler simulates the GCS JSON API for multipart uploads.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, fmt.Sprintf("/upload/storage/v1/b/%s/o", bucket))
		assert.Equal(t, "site/index.html", r.URL.Query().Get("name"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), body)
		assert.Contains(t, string(raw), "text/html")

		fmt.Fprintln(w, `{ "name": "site/index.html", "bucket": "`+bucket+`" }`)
	})

	store, err := New(newTestClient(t, handler), Config{Bucket: bucket, Prefix: "site"})
	require.NoError(t, err)

	uri, err := store.PutObject(context.Background(), "index.html", "text/html; charset=utf-8", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "gs://test-bucket/site/index.html", uri)
}

func TestPutObjectServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	store, err := New(newTestClient(t, handler), Config{Bucket: "test-bucket"})
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "bills.json", "application/json", strings.NewReader("{}"))
	assert.Error(t, err)
}

func TestPutObjectRequiresPath(t *testing.T) {
	store, err := New(newTestClient(t, http.NotFoundHandler()), Config{Bucket: "b"})
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), " ", "text/plain", strings.NewReader("x"))
	assert.Error(t, err)
}
