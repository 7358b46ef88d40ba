package clipimage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/clipshr/internal/downloaders"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/utils"
)

const (
	DefaultUserAgent = "Mozilla/5.0"
	chunkSize        = 8192
	acceptImages     = "image/*,*/*;q=0.8"
)

// Details is what the fetch phase learns about a direct image link.
type Details struct {
	URL         string
	Filename    string
	Title       string
	Host        string
	ContentType string
	Size        int64
	Data        []byte
	FetchedAt   time.Time
}

func (d *Details) TypeLabel() string {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(d.Filename), "."))
	return fmt.Sprintf("Image (%s)", ext)
}

func (d *Details) Format() media.Format {
	return media.ImageFormat(d.Filename, d.Size)
}

type Downloader struct {
	client utils.HTTPDoer
}

func New(client utils.HTTPDoer) *Downloader {
	return &Downloader{client: client}
}

// NewFromConfig builds the default HTTP client for image links.
func NewFromConfig(cfg utils.HTTPClientConfig) *Downloader {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = utils.DefaultTimeout
	}
	client := utils.NewClipHTTPClient(cfg)
	if !client.HasHeader("Accept") {
		client.SetHeader("Accept", acceptImages)
	}
	return New(client)
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GET request: %v", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing GET request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP Error: %d", utils.ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp, nil
}

func contentType(resp *http.Response) string {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return strings.ToLower(resp.Header.Get("Content-Type"))
	}
	return mediaType
}

// Fetch downloads the image into memory and describes it.
func (d *Downloader) Fetch(ctx context.Context, url string) (*Details, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()
	ct := contentType(resp)
	if !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("image download failed: URL did not return an image (got: %s)", ct)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image download failed: error reading response body: %v", err)
	}
	filename := media.ImageFilename(url)
	log.Debug().Str("op", "image/Fetch").Msgf("Fetched %s (%d bytes)", filename, len(data))
	return &Details{
		URL:         url,
		Filename:    filename,
		Title:       filename,
		Host:        media.SourceHost(url),
		ContentType: ct,
		Size:        int64(len(data)),
		Data:        data,
		FetchedAt:   time.Now(),
	}, nil
}

// Download streams the image to outputPath through a .part file in a temp
// folder next to it. An existing file is never overwritten; the final path
// is returned.
func (d *Downloader) Download(ctx context.Context, url, outputPath string, onProgress downloaders.ProgressFunc) (string, error) {
	tempDir := filepath.Join(filepath.Dir(outputPath), utils.TempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return "", fmt.Errorf("error creating temp directory: %v", err)
	}
	tempOutputPath := filepath.Join(tempDir, filepath.Base(outputPath)) + ".part"

	resp, err := d.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	outFile, err := os.OpenFile(tempOutputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("error creating output file: %v", err)
	}
	progress := downloaders.Progress{Total: resp.ContentLength, Started: time.Now()}
	if progress.Total < 0 {
		progress.Total = 0
	}
	buffer := make([]byte, chunkSize)
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				outFile.Close()
				return "", fmt.Errorf("error writing to output file: %v", writeErr)
			}
			progress.Downloaded += int64(bytesRead)
			if onProgress != nil && progress.Total > 0 {
				onProgress(progress)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			outFile.Close()
			return "", fmt.Errorf("error reading response body: %v", readErr)
		}
	}
	outFile.Sync()
	if err := outFile.Close(); err != nil {
		return "", fmt.Errorf("error closing output file: %v", err)
	}

	if utils.FileExists(outputPath) {
		outputPath = utils.RenewOutputPath(outputPath)
	}
	if err := os.Rename(tempOutputPath, outputPath); err != nil {
		return "", fmt.Errorf("error renaming (finalizing) output file: %v", err)
	}
	os.Remove(tempDir)
	log.Debug().Str("op", "image/Download").Msgf("Image download successful for %s", outputPath)
	return outputPath, nil
}
