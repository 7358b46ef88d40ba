package archive

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/clipshr/internal/history"
)

// Uploader is the subset of manager.Uploader used for backups.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type Target struct {
	Bucket string
	Prefix string
}

func (t Target) String() string {
	return "s3://" + path.Join(t.Bucket, t.Prefix)
}

func (t Target) key(parts ...string) string {
	return path.Join(append([]string{t.Prefix}, parts...)...)
}

func ParseS3URL(url string) (Target, error) {
	if !strings.HasPrefix(url, "s3://") {
		return Target{}, fmt.Errorf("invalid S3 URL format, expected s3://bucket/prefix")
	}
	parts := strings.SplitN(strings.TrimPrefix(url, "s3://"), "/", 2)
	if parts[0] == "" {
		return Target{}, fmt.Errorf("invalid S3 URL format, missing bucket")
	}
	target := Target{Bucket: parts[0]}
	if len(parts) > 1 {
		target.Prefix = strings.Trim(parts[1], "/")
	}
	return target, nil
}

type Report struct {
	Uploaded []string
	Missing  []string
	Failed   map[string]error
}

type Archiver struct {
	uploader Uploader
	target   Target
}

func New(uploader Uploader, target Target) *Archiver {
	return &Archiver{uploader: uploader, target: target}
}

// NewS3Archiver builds an uploader from the shared AWS profile.
func NewS3Archiver(ctx context.Context, profile string, target Target) (*Archiver, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRetryMode("adaptive"),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %v", err)
	}
	uploader := manager.NewUploader(s3.NewFromConfig(cfg), func(u *manager.Uploader) {
		u.PartSize = 16 * 1024 * 1024
		u.Concurrency = 4
	})
	return New(uploader, target), nil
}

func (a *Archiver) uploadFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()
	input := &s3.PutObjectInput{
		Bucket: aws.String(a.target.Bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	_, err = a.uploader.Upload(ctx, input)
	return err
}

// Backup uploads the ledger document, then every referenced file that still
// exists under folder. File failures are collected; a ledger upload failure
// aborts.
func (a *Archiver) Backup(ctx context.Context, ledger *history.Ledger, folder string, onFile func(name string)) (Report, error) {
	report := Report{Failed: make(map[string]error)}
	if err := a.uploadFile(ctx, ledger.Path(), a.target.key(history.FileName)); err != nil {
		if os.IsNotExist(err) {
			return report, fmt.Errorf("no history to archive at %s", ledger.Path())
		}
		return report, fmt.Errorf("error uploading history: %v", err)
	}
	report.Uploaded = append(report.Uploaded, history.FileName)
	seen := make(map[string]bool)
	for _, record := range ledger.LoadAll() {
		if seen[record.Filename] {
			continue
		}
		seen[record.Filename] = true
		localPath, err := history.LocalPath(folder, record.Filename)
		if err != nil {
			log.Warn().Str("op", "archive/Backup").Err(err).Msg("Skipping entry")
			report.Failed[record.Filename] = err
			continue
		}
		if !fileExists(localPath) {
			report.Missing = append(report.Missing, record.Filename)
			continue
		}
		if onFile != nil {
			onFile(record.Filename)
		}
		if err := a.uploadFile(ctx, localPath, a.target.key("media", record.Filename)); err != nil {
			log.Warn().Str("op", "archive/Backup").Err(err).Msgf("Upload failed for %s", record.Filename)
			report.Failed[record.Filename] = err
			continue
		}
		report.Uploaded = append(report.Uploaded, record.Filename)
	}
	return report, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
