package downloaders

import (
	"fmt"
	"time"

	"github.com/tanq16/clipshr/internal/utils"
)

// Progress is a point-in-time snapshot reported by a downloader. Total is
// zero when the size is not known.
type Progress struct {
	Downloaded int64
	Total      int64
	Started    time.Time
	ETA        time.Duration
}

type ProgressFunc func(Progress)

// Percent is in [0,100], or -1 when the total is unknown.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return -1
	}
	pct := float64(p.Downloaded) / float64(p.Total) * 100
	return max(0, min(pct, 100))
}

func (p Progress) Speed() string {
	if p.Started.IsZero() {
		return utils.FormatSpeed(0, 0)
	}
	return utils.FormatSpeed(p.Downloaded, time.Since(p.Started).Seconds())
}

// MediaStatus renders "Speed: X/s | ETA: Ns".
func (p Progress) MediaStatus() string {
	status := "Speed: " + p.Speed()
	if p.ETA > 0 {
		status += fmt.Sprintf(" | ETA: %ds", int(p.ETA.Seconds()))
	}
	return status
}

// ImageStatus renders "Downloaded: X".
func (p Progress) ImageStatus() string {
	return "Downloaded: " + utils.FormatBytes(uint64(max(p.Downloaded, 0)))
}
