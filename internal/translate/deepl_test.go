package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
)

func TestDeepLClientTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "key-123", r.PostForm.Get("auth_key"))
		assert.Equal(t, "Hola", r.PostForm.Get("text"))
		assert.Equal(t, "EN", r.PostForm.Get("target_lang"))
		assert.Equal(t, "ES", r.PostForm.Get("source_lang"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translations":[{"detected_source_language":"ES","text":"Hello"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewDeepLClient("key-123", srv.URL)
	out, err := client.Translate(context.Background(), "Hola", TargetEnglish)
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
}

func TestDeepLClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"invalid auth key"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewDeepLClient("bad-key", srv.URL)
	_, err := client.Translate(context.Background(), "Hola", TargetEnglish)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTranslation.Code, appErrors.FromError(err).Code)
}

func TestDeepLClientMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translations":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewDeepLClient("key-123", srv.URL)
	_, err := client.Translate(context.Background(), "Hola", TargetEnglish)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTranslation.Code, appErrors.FromError(err).Code)
}

func TestDeepLClientUnreachableHost(t *testing.T) {
	client := NewDeepLClient("key-123", "http://127.0.0.1:1")
	_, err := client.Translate(context.Background(), "Hola", TargetEnglish)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTranslation.Code, appErrors.FromError(err).Code)
}
