package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vantagesource/qualis/pkg/storage"
)

const fetchTimeout = 30 * time.Second

// resolveDocument materializes an audit document reference as raw bytes.
// References come in three forms: http(s) URLs fetched directly, absolute
// filesystem paths read from disk, and everything else treated as an object
// key in the configured storage container.
func (r *Runtime) resolveDocument(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return fetchDocument(ctx, ref, r.MaxDocumentBytes)
	case strings.HasPrefix(ref, "/"):
		data, err := os.ReadFile(ref)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrDocumentMissing, ref)
			}
			return nil, fmt.Errorf("read document %s: %w", ref, err)
		}
		return data, nil
	default:
		obj, err := r.Storage.Download(ctx, ref)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrDocumentMissing, ref)
			}
			return nil, fmt.Errorf("download document %s: %w", ref, err)
		}
		defer obj.Body.Close()

		data, err := io.ReadAll(obj.Body)
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", ref, err)
		}
		return data, nil
	}
}

func fetchDocument(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrTransient, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrDocumentMissing, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrTransient, url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: document %s exceeds %d bytes", ErrParse, url, maxBytes)
	}
	return data, nil
}
