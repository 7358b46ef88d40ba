package media

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tanq16/clipshr/internal/utils"
)

// RawFormat is one entry of the extractor's format table. Sizes and rates
// are floats because the extractor emits estimates as fractional numbers.
type RawFormat struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	FPS            float64 `json:"fps"`
	ABR            float64 `json:"abr"`
	Filesize       float64 `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

func (f RawFormat) HasVideo() bool {
	return f.VCodec != "" && f.VCodec != "none"
}

func (f RawFormat) HasAudio() bool {
	return f.ACodec != "" && f.ACodec != "none"
}

// KnownSize returns filesize, falling back to filesize_approx, or 0.
func (f RawFormat) KnownSize() int64 {
	if f.Filesize > 0 {
		return int64(f.Filesize)
	}
	if f.FilesizeApprox > 0 {
		return int64(f.FilesizeApprox)
	}
	return 0
}

// Info is the probed metadata of a media page.
type Info struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Uploader   string      `json:"uploader"`
	Channel    string      `json:"channel"`
	Extractor  string      `json:"extractor"`
	UploadDate string      `json:"upload_date"`
	Duration   float64     `json:"duration"`
	Thumbnail  string      `json:"thumbnail"`
	WebpageURL string      `json:"webpage_url"`
	Ext        string      `json:"ext"`
	Formats    []RawFormat `json:"formats"`
}

func ParseInfo(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("error decoding media info: %v", err)
	}
	if info.Title == "" {
		info.Title = "Unknown Title"
	}
	return &info, nil
}

// Source is the uploader, falling back to channel then extractor.
func (i *Info) Source() string {
	for _, s := range []string{i.Uploader, i.Channel, i.Extractor} {
		if s != "" {
			return s
		}
	}
	return "Unknown"
}

// Date renders the YYYYMMDD upload date as YYYY-MM-DD.
func (i *Info) Date() string {
	if len(i.UploadDate) != 8 {
		return "Unknown"
	}
	t, err := time.Parse("20060102", i.UploadDate)
	if err != nil {
		return "Unknown"
	}
	return t.Format("2006-01-02")
}

func (i *Info) HasDuration() bool {
	return i.Duration > 0
}

func (i *Info) DurationText() string {
	if !i.HasDuration() {
		return ""
	}
	return utils.FormatClock(time.Duration(i.Duration) * time.Second)
}

func (i *Info) TypeLabel() string {
	ext := strings.ToUpper(i.Ext)
	if ext == "" {
		ext = "UNKNOWN"
	}
	if i.HasDuration() {
		return fmt.Sprintf("Media (%s) - Duration: %s", ext, i.DurationText())
	}
	return fmt.Sprintf("Media (%s)", ext)
}
