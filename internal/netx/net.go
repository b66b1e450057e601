// Package netx holds the few raw-network helpers the client needs outside the
// JSON API: the presigned-URL PUT and opening a URL in the user's browser.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"strings"

	"github.com/dmitrijs2005/gophbucket/internal/common"
)

const maxErrorBodyBytes int64 = 4 << 10

// PutError reports a non-2xx answer from a presigned upload URL.
type PutError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *PutError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload failed: %s", e.Status)
	}
	return fmt.Sprintf("upload failed: %s; body: %s", e.Status, e.Body)
}

// PutPresigned streams body to a presigned PUT url. size is sent as the
// request's Content-Length when it is not negative; storage endpoints reject
// chunked uploads.
func PutPresigned(ctx context.Context, hc *http.Client, url, contentType string, size int64, body io.Reader) error {
	if hc == nil {
		hc = http.DefaultClient
	}
	if contentType == "" {
		contentType = common.DefaultContentType
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.Header.Set(common.ContentTypeHeaderName, contentType)
	if size >= 0 {
		req.ContentLength = size
	}
	if size == 0 {
		req.Body = http.NoBody
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &PutError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(b))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// startCommand is a test seam for exec.Command(...).Start.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenBrowser asks the desktop to open target in a new browser tab. It does
// not wait for the browser to exit.
func OpenBrowser(target string) error {
	if strings.TrimSpace(target) == "" {
		return nil
	}
	switch runtime.GOOS {
	case "darwin":
		return startCommand("open", target)
	case "windows":
		return startCommand("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return startCommand("xdg-open", target)
	}
}
