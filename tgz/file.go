package tgz

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Bot API caps getFile downloads at 20 MB.
const maxDownloadSize = 20 << 20

// File is a downloadable file resolved via getFile.
type File struct {
	tg *TGZ

	ID   string
	Path string
	Size int64
}

// File resolves a file id into a downloadable File.
func (t *TGZ) File(ctx context.Context, fileID string) (*File, error) {
	resp, err := t.api.Call(ctx, "getFile", map[string]any{"file_id": fileID})
	if err != nil {
		return nil, err
	}
	var info struct {
		FilePath string `json:"file_path"`
		FileSize int64  `json:"file_size"`
	}
	if err := resp.Decode(&info); err != nil {
		return nil, errors.Wrap(err, "decode getFile result")
	}
	return &File{
		tg:   t,
		ID:   fileID,
		Path: info.FilePath,
		Size: info.FileSize,
	}, nil
}

// URL returns the direct download URL.
func (f *File) URL() string {
	return f.tg.api.FileURL(f.Path)
}

// Download streams the file contents.  The caller closes the reader.
func (f *File) Download(ctx context.Context) (io.ReadCloser, error) {
	if f.Size >= maxDownloadSize {
		return nil, errors.Errorf("file %s exceeds the 20 MB download limit", f.ID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build download request")
	}
	resp, err := f.tg.api.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "download file %s", f.ID)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("download file %s: unexpected status %d", f.ID, resp.StatusCode)
	}
	return resp.Body, nil
}

// Save downloads the file to path. When path is an existing directory the
// file keeps its remote base name. Returns the final path written.
func (f *File) Save(ctx context.Context, path string) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, filepath.Base(f.Path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o775); err != nil {
		return "", errors.Wrap(err, "create download directory")
	}

	body, err := f.Download(ctx)
	if err != nil {
		return "", err
	}
	defer body.Close()

	out, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create download file")
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
