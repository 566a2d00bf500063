package netx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFromPresignedURL(t *testing.T) {
	t.Run("success 200 OK", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte("audio-bytes"))
		}))
		defer ts.Close()

		data, err := DownloadFromPresignedURL(ts.URL + "/obj?X-Amz-Signature=abc")
		require.NoError(t, err)
		assert.Equal(t, []byte("audio-bytes"), data)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		_, err := DownloadFromPresignedURL(ts.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download failed")
	})
}
