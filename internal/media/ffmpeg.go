package media

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrFFmpegMissing = errors.New("FFmpeg not found! Trimming and merging require FFmpeg. Please install FFmpeg and add it to your system PATH")

// CheckFFmpeg runs `ffmpeg -version` and checks the banner.
func CheckFFmpeg(ctx context.Context, ffmpegPath string) error {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if _, err := exec.LookPath(ffmpegPath); err != nil {
		log.Debug().Str("op", "media/CheckFFmpeg").Err(err).Msg("ffmpeg not on PATH")
		return ErrFFmpegMissing
	}
	cmdCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	stdout, err := exec.CommandContext(cmdCtx, ffmpegPath, "-version").Output()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFFmpegMissing, err)
	}
	if !strings.HasPrefix(string(stdout), "ffmpeg version") {
		return fmt.Errorf("%w: unexpected output from %s", ErrFFmpegMissing, ffmpegPath)
	}
	return nil
}

// FFmpegVersion returns the first line of the version banner.
func FFmpegVersion(ctx context.Context, ffmpegPath string) (string, error) {
	if err := CheckFFmpeg(ctx, ffmpegPath); err != nil {
		return "", err
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	cmdCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	stdout, err := exec.CommandContext(cmdCtx, ffmpegPath, "-version").Output()
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(stdout), "\n")
	return strings.TrimSpace(line), nil
}
