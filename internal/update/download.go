package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// fallbackName is used in the data directory when no temp file can be created.
const fallbackName = "imdb_download.xml"

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 2 * time.Minute,
	}
}

// createTempFile opens imdb_<uuid>.xml in the temp directory, falling back to
// a fixed name in the data directory.
func (s *Service) createTempFile() (*os.File, error) {
	name := filepath.Join(s.tempDir, "imdb_"+uuid.NewString()+".xml")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err == nil {
		return f, nil
	}

	dataDir := s.options().DataDir
	s.logger.Warn().Err(err).Str("path", name).Msg("Failed to create temp file, using data directory")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return os.Create(filepath.Join(dataDir, fallbackName))
}

// download fetches url into a temp file and returns its path. The caller
// removes the file.
func (s *Service) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent())

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	file, err := s.createTempFile()
	if err != nil {
		return "", err
	}
	path := file.Name()

	written, err := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("download read error: %w", err)
	}
	if written == 0 {
		os.Remove(path)
		return "", errors.New("downloaded file is empty")
	}

	s.logger.Debug().
		Str("url", url).
		Str("path", path).
		Int64("size", written).
		Dur("elapsed", time.Since(startTime)).
		Msg("Downloaded file")
	return path, nil
}
