package gzippedhttp

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, payload string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func gunzipBytes(t *testing.T, compressed []byte) string {
	t.Helper()

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	decompressed, err := io.ReadAll(zr)
	require.NoError(t, err)

	return string(decompressed)
}

func TestGzipResponse(t *testing.T) {
	handler := GzipResponse(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		response.WriteHeader(http.StatusOK)
		_, err := response.Write([]byte("hello, compressed world"))
		require.NoError(t, err)
	}))

	t.Run("compresses for accepting clients", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, "hello, compressed world", gunzipBytes(t, recorder.Body.Bytes()))
	})

	t.Run("marks error responses as compressed too", func(t *testing.T) {
		errHandler := GzipResponse(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			response.WriteHeader(http.StatusNotFound)
			_, err := response.Write([]byte(`{"message":"Item não encontrado"}`))
			require.NoError(t, err)
		}))

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()
		errHandler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, `{"message":"Item não encontrado"}`, gunzipBytes(t, recorder.Body.Bytes()))
	})

	t.Run("leaves other clients alone", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, "hello, compressed world", recorder.Body.String())
	})
}

func TestUngzipRequest(t *testing.T) {
	var gotBody string
	handler := UngzipRequest(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		require.NoError(t, err)
		gotBody = string(body)
		response.WriteHeader(http.StatusOK)
	}))

	t.Run("decompresses gzip bodies", func(t *testing.T) {
		gotBody = ""
		request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(gzipBytes(t, `{"name":"Wallet"}`)))
		request.Header.Set("Content-Encoding", "gzip")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, `{"name":"Wallet"}`, gotBody)
	})

	t.Run("passes plain bodies through", func(t *testing.T) {
		gotBody = ""
		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Wallet"}`))
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, `{"name":"Wallet"}`, gotBody)
	})

	t.Run("rejects corrupt gzip bodies", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("definitely not gzip"))
		request.Header.Set("Content-Encoding", "gzip")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}
