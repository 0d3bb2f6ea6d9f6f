package netx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadToPresignedURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotMethod, gotCT, gotQuery string
		var gotBody []byte

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotQuery = r.URL.RawQuery
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		err := UploadToPresignedURL(context.Background(), ts.Client(), ts.URL+"/gameshelf/covers/1/x?X-Amz-Signature=abc", pngHeader)
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "image/png", gotCT)
		assert.Equal(t, "X-Amz-Signature=abc", gotQuery)
		assert.Equal(t, pngHeader, gotBody)
	})

	t.Run("non-200 carries body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("SignatureDoesNotMatch"))
		}))
		defer ts.Close()

		err := UploadToPresignedURL(context.Background(), nil, ts.URL, []byte("data"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
		assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
	})

	t.Run("bad url", func(t *testing.T) {
		err := UploadToPresignedURL(context.Background(), nil, "://bad", []byte("x"))
		require.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.Error(t, UploadToPresignedURL(ctx, nil, ts.URL, []byte("x")))
	})
}
