package netx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutPresigned_Success(t *testing.T) {
	var gotBody, gotCT, gotMethod string
	var gotLen int64

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		gotLen = r.ContentLength
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	err := PutPresigned(context.Background(), ts.Client(), ts.URL+"/obj?X-Amz-Signature=abc", "text/plain", 9, strings.NewReader("hello, s3"))
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "text/plain", gotCT)
	require.Equal(t, int64(9), gotLen)
	require.Equal(t, "hello, s3", gotBody)
}

func TestPutPresigned_DefaultsContentType(t *testing.T) {
	var gotCT string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
	}))
	defer ts.Close()

	require.NoError(t, PutPresigned(context.Background(), nil, ts.URL, "", 0, strings.NewReader("")))
	require.Equal(t, "application/octet-stream", gotCT)
}

func TestPutPresigned_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("SignatureDoesNotMatch"))
	}))
	defer ts.Close()

	err := PutPresigned(context.Background(), ts.Client(), ts.URL, "text/plain", 1, strings.NewReader("x"))
	var pe *PutError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, http.StatusForbidden, pe.StatusCode)
	require.Contains(t, err.Error(), "403")
	require.Contains(t, err.Error(), "SignatureDoesNotMatch")
}

func TestPutPresigned_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	err := PutPresigned(context.Background(), nil, url, "text/plain", 1, strings.NewReader("x"))
	require.Error(t, err)
	var pe *PutError
	require.False(t, errors.As(err, &pe))
}

func TestOpenBrowser_UsesPlatformCommand(t *testing.T) {
	orig := startCommand
	t.Cleanup(func() { startCommand = orig })

	var gotName string
	var gotArgs []string
	startCommand = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	require.NoError(t, OpenBrowser("http://example/files/s/b1/d/f1"))
	require.NotEmpty(t, gotName)
	require.Equal(t, "http://example/files/s/b1/d/f1", gotArgs[len(gotArgs)-1])
	if runtime.GOOS == "linux" {
		require.Equal(t, "xdg-open", gotName)
	}
}

func TestOpenBrowser_BlankTargetIsNoop(t *testing.T) {
	orig := startCommand
	t.Cleanup(func() { startCommand = orig })
	startCommand = func(string, ...string) error { t.Fatal("must not start a command"); return nil }

	require.NoError(t, OpenBrowser("  "))
}
