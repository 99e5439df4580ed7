package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCloudinary(t *testing.T, cfg CloudinaryConfig, handler http.HandlerFunc) *Cloudinary {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg.APIBase = server.URL
	cfg.HTTPClient = server.Client()
	backend, err := NewCloudinary(cfg)
	require.NoError(t, err)
	return backend
}

func TestNewCloudinaryValidation(t *testing.T) {
	_, err := NewCloudinary(CloudinaryConfig{})
	require.Error(t, err)

	_, err = NewCloudinary(CloudinaryConfig{CloudName: "demo"})
	require.Error(t, err, "neither preset nor key pair configured")

	_, err = NewCloudinary(CloudinaryConfig{CloudName: "demo", UploadPreset: "unsigned"})
	require.NoError(t, err)

	_, err = NewCloudinary(CloudinaryConfig{CloudName: "demo", APIKey: "k", APISecret: "s"})
	require.NoError(t, err)
}

func TestCloudinaryStoreUnsignedSendsPreset(t *testing.T) {
	backend := newTestCloudinary(t, CloudinaryConfig{CloudName: "demo", UploadPreset: "email-preset"},
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/demo/image/upload", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Equal(t, "email-preset", r.FormValue("upload_preset"))
			require.Equal(t, "emails/abc123", r.FormValue("public_id"))
			require.Empty(t, r.FormValue("api_key"))

			file, _, err := r.FormFile("file")
			require.NoError(t, err)
			payload, err := io.ReadAll(file)
			require.NoError(t, err)
			require.Equal(t, []byte("pixels"), payload)

			json.NewEncoder(w).Encode(map[string]string{
				"secure_url": "https://res.cloudinary.test/demo/image/upload/emails/abc123",
			})
		})

	url, err := backend.Store(context.Background(), "emails/abc123", []byte("pixels"))
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.test/demo/image/upload/emails/abc123", url)
}

func TestCloudinaryStoreSignedSignsRequest(t *testing.T) {
	const secret = "top-secret"
	backend := newTestCloudinary(t, CloudinaryConfig{CloudName: "demo", APIKey: "key123", APISecret: secret},
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Equal(t, "key123", r.FormValue("api_key"))
			require.NotEmpty(t, r.FormValue("timestamp"))

			toSign := fmt.Sprintf("public_id=%s&timestamp=%s", r.FormValue("public_id"), r.FormValue("timestamp"))
			sum := sha1.Sum([]byte(toSign + secret))
			require.Equal(t, hex.EncodeToString(sum[:]), r.FormValue("signature"))

			json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://res.cloudinary.test/x"})
		})

	url, err := backend.Store(context.Background(), "emails/def456", []byte("pixels"))
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.test/x", url)
}

func TestCloudinaryStoreAuthFailure(t *testing.T) {
	backend := newTestCloudinary(t, CloudinaryConfig{CloudName: "demo", UploadPreset: "p"},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	_, err := backend.Store(context.Background(), "emails/x", []byte("pixels"))
	require.ErrorIs(t, err, ErrAuth)
}

func TestCloudinaryStoreTransportFailure(t *testing.T) {
	backend := newTestCloudinary(t, CloudinaryConfig{CloudName: "demo", UploadPreset: "p"},
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
	_, err := backend.Store(context.Background(), "emails/x", []byte("pixels"))
	require.ErrorIs(t, err, ErrTransport)
}

func TestCloudinaryProbeUnsignedIsAlwaysMiss(t *testing.T) {
	called := false
	backend := newTestCloudinary(t, CloudinaryConfig{CloudName: "demo", UploadPreset: "p"},
		func(w http.ResponseWriter, r *http.Request) { called = true })

	_, ok, err := backend.Probe(context.Background(), "emails/x")
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, called, "unsigned mode must not hit the admin API")
}

func TestCloudinaryProbeHitAndMiss(t *testing.T) {
	backend := newTestCloudinary(t, CloudinaryConfig{CloudName: "demo", APIKey: "k", APISecret: "s"},
		func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "k", user)
			require.Equal(t, "s", pass)

			if r.URL.Path == "/demo/resources/image/upload/emails/present" {
				json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://res.cloudinary.test/present"})
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})

	url, ok, err := backend.Probe(context.Background(), "emails/present")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "https://res.cloudinary.test/present", url)

	// A 404 is a miss, not an error.
	_, ok, err = backend.Probe(context.Background(), "emails/absent")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryBackendIdempotentStore(t *testing.T) {
	backend := NewMemory("https://cdn.example")
	first, err := backend.Store(context.Background(), "emails/k", []byte("v"))
	require.NoError(t, err)
	second, err := backend.Store(context.Background(), "emails/k", []byte("v"))
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, backend.Len())

	url, ok, err := backend.Probe(context.Background(), "emails/k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first, url)
}
