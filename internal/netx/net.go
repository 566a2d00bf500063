// Package netx contains small HTTP helpers for transferring blobs via
// presigned object-storage URLs.
package netx

import (
	"fmt"
	"io"
	"net/http"
)

// DownloadFromPresignedURL fetches an object via a presigned GET URL and
// returns its content. Intended for one-shot audio/content downloads; the
// whole body is read into memory.
func DownloadFromPresignedURL(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}
	return io.ReadAll(resp.Body)
}
