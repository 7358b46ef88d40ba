package media

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tanq16/clipshr/internal/utils"
)

const (
	BestFormatID  = "bestvideo+bestaudio/best"
	ImageFormatID = "image_original"
)

// raw ids the extractor may list that duplicate the composite
var skippedIDs = map[string]bool{
	"bestvideo":           true,
	"bestaudio":           true,
	"bestvideo+bestaudio": true,
}

type Kind int

const (
	KindBest Kind = iota
	KindCombined
	KindVideoOnly
	KindAudioOnly
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindBest:
		return "best"
	case KindCombined:
		return "video+audio"
	case KindVideoOnly:
		return "video"
	case KindAudioOnly:
		return "audio"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Format is a selectable download choice as shown to the user.
type Format struct {
	ID        string
	Quality   string
	Ext       string
	Size      string
	Kind      Kind
	Height    int
	ABR       float64
	Estimated bool
}

func (f Format) NeedsFFmpeg() bool {
	return f.Kind == KindBest
}

type FormatList struct {
	Video []Format
	Audio []Format
}

func (l FormatList) All() []Format {
	all := make([]Format, 0, len(l.Video)+len(l.Audio))
	all = append(all, l.Video...)
	return append(all, l.Audio...)
}

func (l FormatList) Find(id string) (Format, bool) {
	for _, f := range l.All() {
		if f.ID == id {
			return f, true
		}
	}
	return Format{}, false
}

// BestFormat is the merged best-quality choice with its size estimated from
// the largest video-bearing and largest audio-only formats.
func BestFormat(raw []RawFormat) Format {
	var bestVideo, bestAudio int64
	for _, f := range raw {
		size := f.KnownSize()
		if f.HasVideo() && size > bestVideo {
			bestVideo = size
		}
		if f.HasAudio() && !f.HasVideo() && size > bestAudio {
			bestAudio = size
		}
	}
	size := "~Size Unknown"
	if estimate := bestVideo + bestAudio; estimate > 0 {
		size = "~" + utils.FormatBytes(uint64(estimate))
	}
	return Format{
		ID:        BestFormatID,
		Quality:   "BEST QUALITY (Full Video + Audio)",
		Ext:       "MP4 (Merged)",
		Size:      size,
		Kind:      KindBest,
		Estimated: true,
	}
}

// BuildFormatList groups formats for selection. The best composite always
// leads the video list; other formats without a known size are dropped.
func BuildFormatList(raw []RawFormat) FormatList {
	var list FormatList
	var video, audio []Format
	for _, f := range raw {
		if skippedIDs[f.FormatID] || f.FormatID == BestFormatID {
			continue
		}
		size := f.KnownSize()
		if size <= 0 {
			continue
		}
		format := Format{
			ID:     f.FormatID,
			Ext:    strings.ToUpper(f.Ext),
			Size:   utils.FormatBytes(uint64(size)),
			Height: f.Height,
			ABR:    f.ABR,
		}
		if format.Ext == "" {
			format.Ext = "UNKNOWN"
		}
		switch {
		case f.HasVideo() && f.HasAudio():
			format.Kind = KindCombined
			format.Quality = videoQuality(f) + " (Video + Audio)"
			video = append(video, format)
		case f.HasVideo():
			format.Kind = KindVideoOnly
			format.Quality = videoQuality(f) + " (Video Only)"
			video = append(video, format)
		case f.HasAudio():
			format.Kind = KindAudioOnly
			format.Quality = "Audio Only - " + audioQuality(f)
			audio = append(audio, format)
		}
	}
	sort.SliceStable(video, func(i, j int) bool { return video[i].Height > video[j].Height })
	sort.SliceStable(audio, func(i, j int) bool { return audio[i].ABR > audio[j].ABR })
	list.Video = append([]Format{BestFormat(raw)}, video...)
	list.Audio = audio
	return list
}

func videoQuality(f RawFormat) string {
	quality := "Unknown"
	if f.Height > 0 {
		quality = fmt.Sprintf("%dp", f.Height)
	}
	if f.FPS > 30 {
		quality += fmt.Sprintf(" %dfps", int(f.FPS))
	}
	return quality
}

func audioQuality(f RawFormat) string {
	if f.ABR > 0 {
		return fmt.Sprintf("%dkbps", int(f.ABR))
	}
	return "Unknown Quality"
}

// ImageFormat is the single choice offered for a direct image link.
func ImageFormat(filename string, size int64) Format {
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(filename), "."))
	return Format{
		ID:      ImageFormatID,
		Quality: fmt.Sprintf("Original %s Format", ext),
		Ext:     ext,
		Size:    utils.FormatSize(size),
		Kind:    KindImage,
	}
}
