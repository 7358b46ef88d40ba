package clipytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/clipshr/internal/downloaders"
	"github.com/tanq16/clipshr/internal/media"
)

const OutputTemplate = "%(title)s.%(ext)s"

var ErrUnsupportedURL = errors.New("this URL is not supported, try a video/audio link from a supported platform or a direct image link (.jpg, .png, .gif, .webp, ...)")

type Options struct {
	Proxy         string
	ProbeTimeout  time.Duration
	MergeFormat   string
	ProgressEvery time.Duration
}

// Request describes one media download.
type Request struct {
	URL       string
	FormatID  string
	OutputDir string
	Trim      *media.Trim
	Embed     bool
}

type Client struct {
	opts Options
}

func NewClient(opts Options) *Client {
	if opts.ProbeTimeout == 0 {
		opts.ProbeTimeout = 2 * time.Minute
	}
	if opts.MergeFormat == "" {
		opts.MergeFormat = "mp4"
	}
	if opts.ProgressEvery == 0 {
		opts.ProgressEvery = 500 * time.Millisecond
	}
	return &Client{opts: opts}
}

// EnsureInstalled resolves a usable yt-dlp binary, downloading it into the
// library cache when none is found.
func EnsureInstalled(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("error resolving yt-dlp: %v", err)
	}
	log.Debug().Str("op", "ytdlp/EnsureInstalled").Msgf("Using yt-dlp %s at %s", resolved.Version, resolved.Executable)
	return resolved.Version, nil
}

// Probe fetches metadata and the format table without downloading.
func (c *Client) Probe(ctx context.Context, url string) (*media.Info, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ProbeTimeout)
	defer cancel()
	dl := ytdlp.New().
		DumpSingleJSON().
		SkipDownload().
		NoWarnings().
		NoPlaylist()
	if c.opts.Proxy != "" {
		dl.Proxy(c.opts.Proxy)
	}
	log.Debug().Str("op", "ytdlp/Probe").Msgf("Probing %s", url)
	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fetchError(err, result)
	}
	info, err := media.ParseInfo([]byte(result.Stdout))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %v", err)
	}
	if info.WebpageURL == "" {
		info.WebpageURL = url
	}
	return info, nil
}

func fetchError(err error, result *ytdlp.Result) error {
	msg := err.Error()
	if result != nil {
		msg += " " + result.Stderr
	}
	if strings.Contains(msg, "Unsupported URL") || strings.Contains(msg, "No video") {
		return ErrUnsupportedURL
	}
	return fmt.Errorf("failed to fetch metadata: %v", err)
}

// Download runs the extractor and returns the path of the finished file.
func (c *Client) Download(ctx context.Context, req Request, onProgress downloaders.ProgressFunc) (string, error) {
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %v", err)
	}
	dl := ytdlp.New().
		Format(req.FormatID).
		Output(filepath.Join(req.OutputDir, OutputTemplate)).
		NoPlaylist().
		MergeOutputFormat(c.opts.MergeFormat)
	if req.Trim != nil {
		dl.DownloadSections(req.Trim.Section()).ForceKeyframesAtCuts()
	}
	if req.Embed {
		dl.EmbedMetadata().EmbedThumbnail()
	}
	if c.opts.Proxy != "" {
		dl.Proxy(c.opts.Proxy)
	}
	dl.ProgressFunc(c.opts.ProgressEvery, func(update ytdlp.ProgressUpdate) {
		if onProgress == nil {
			return
		}
		onProgress(downloaders.Progress{
			Downloaded: int64(update.DownloadedBytes),
			Total:      int64(update.TotalBytes),
			Started:    update.Started,
			ETA:        update.ETA(),
		})
	})

	started := time.Now()
	log.Debug().Str("op", "ytdlp/Download").Msgf("Downloading %s as %s", req.URL, req.FormatID)
	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		return "", fmt.Errorf("download failed: %v", err)
	}
	if path := extractedPath(result); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		log.Debug().Str("op", "ytdlp/Download").Msgf("Reported file %s not found, scanning output folder", path)
	}
	path, err := newestFile(req.OutputDir, started)
	if err != nil {
		return "", fmt.Errorf("download finished but output file was not found: %v", err)
	}
	return path, nil
}

func extractedPath(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	info, err := result.GetExtractedInfo()
	if err != nil || len(info) == 0 || info[0].Filename == nil {
		return ""
	}
	return *info[0].Filename
}

// newestFile returns the most recently modified regular file in dir that was
// written at or after since.
func newestFile(dir string, since time.Time) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasSuffix(entry.Name(), ".part") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime()
		if mod.Before(since.Add(-time.Second)) {
			continue
		}
		if newest == "" || mod.After(newestTime) {
			newest = filepath.Join(dir, entry.Name())
			newestTime = mod
		}
	}
	if newest == "" {
		return "", errors.New("no new file in output folder")
	}
	return newest, nil
}
