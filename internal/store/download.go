package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/dmorgan81/seedream/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// Asset is where a downloaded image was saved. MirrorKey is empty when no
// mirror is configured or the mirror upload failed.
type Asset struct {
	Path      string
	MirrorKey string
}

type Downloader interface {
	Download(ctx context.Context, source, name string) (Asset, error)
}

// DownloadError covers transport failures, non-2xx responses and local write
// failures for a single image.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// HTTPDownloader relies on Client.Timeout to bound a download, including a
// body that stalls after the headers arrived.
type HTTPDownloader struct {
	Client *http.Client
	Local  Uploader
	Mirror Uploader
}

func NewHTTPDownloader(i *do.Injector) (Downloader, error) {
	d := &HTTPDownloader{
		Client: do.MustInvoke[*http.Client](i),
		Local:  do.MustInvokeNamed[Uploader](i, "local"),
	}
	if do.MustInvokeNamed[string](i, "bucket") != "" {
		mirror, err := do.InvokeNamed[Uploader](i, "mirror")
		if err != nil {
			return nil, fmt.Errorf("s3 mirror: %w", err)
		}
		d.Mirror = mirror
	}
	return d, nil
}

func (d *HTTPDownloader) Download(ctx context.Context, source, name string) (Asset, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("download").With("url", source, "name", name)
	log.Info("downloading image")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return Asset{}, &DownloadError{URL: source, Err: err}
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return Asset{}, &DownloadError{URL: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Asset{}, &DownloadError{URL: source, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Asset{}, &DownloadError{URL: source, Err: err}
	}

	params := UploadParams{
		Name:        name,
		Data:        data,
		ContentType: http.DetectContentType(data),
		Metadata:    map[string]string{"source-url": source},
	}

	var asset Asset
	if asset.Path, err = d.Local.Upload(ctx, params); err != nil {
		return Asset{}, &DownloadError{URL: source, Err: err}
	}

	if d.Mirror != nil {
		if key, err := d.Mirror.Upload(ctx, params); err != nil {
			log.Warn("mirror upload failed", "error", err)
		} else {
			asset.MirrorKey = key
		}
	}
	return asset, nil
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".webp"}

// FileName builds the local name of the index-th (1-based) image of a call.
// The extension follows the source URL and falls back to .jpg.
func FileName(version, requestID string, index int, source string) string {
	ext := ".jpg"
	if u, err := url.Parse(source); err == nil {
		e := strings.ToLower(path.Ext(u.Path))
		ext = lo.Ternary(lo.Contains(imageExts, e), e, ext)
	}
	return fmt.Sprintf("seedream-%s-%s-%d%s", version, requestID, index, ext)
}
