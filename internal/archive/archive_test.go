package archive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/tanq16/clipshr/internal/history"
)

type fakeUploader struct {
	objects map[string]string
	failKey string
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	key := aws.ToString(input.Key)
	if key == f.failKey {
		return nil, errors.New("access denied")
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(input.Bucket)+"/"+key] = string(data)
	return &manager.UploadOutput{Location: key}, nil
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		url     string
		want    Target
		wantErr bool
	}{
		{"s3://bucket", Target{Bucket: "bucket"}, false},
		{"s3://bucket/backups/clips/", Target{Bucket: "bucket", Prefix: "backups/clips"}, false},
		{"s3://", Target{}, true},
		{"https://bucket", Target{}, true},
	}
	for _, tt := range tests {
		got, err := ParseS3URL(tt.url)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseS3URL(%q) = %+v, %v", tt.url, got, err)
		}
	}
}

func TestBackup(t *testing.T) {
	home := t.TempDir()
	folder := filepath.Join(home, "media")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	ledger := history.Open(filepath.Join(home, history.FileName))
	for _, name := range []string{"a.mp4", "gone.mp4", "b.png", "a.mp4", "denied.mp3"} {
		if err := ledger.Append(history.Record{Timestamp: "2024-01-01 00:00:00", OriginalURL: "https://x/" + name, Filename: name}); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"a.mp4", "b.png", "denied.mp3"} {
		if err := os.WriteFile(filepath.Join(folder, name), []byte("data-"+name), 0644); err != nil {
			t.Fatal(err)
		}
	}
	up := &fakeUploader{objects: map[string]string{}, failKey: "backup/media/denied.mp3"}
	var seen []string
	report, err := New(up, Target{Bucket: "bkt", Prefix: "backup"}).Backup(context.Background(), ledger, folder, func(name string) {
		seen = append(seen, name)
	})
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	want := []string{"bkt/backup/history.json", "bkt/backup/media/a.mp4", "bkt/backup/media/b.png"}
	var got []string
	for k := range up.objects {
		got = append(got, k)
	}
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("Uploaded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Uploaded %v, want %v", got, want)
		}
	}
	if up.objects["bkt/backup/media/a.mp4"] != "data-a.mp4" {
		t.Error("Unexpected uploaded content")
	}
	if len(report.Missing) != 1 || report.Missing[0] != "gone.mp4" {
		t.Errorf("Unexpected missing %v", report.Missing)
	}
	if _, ok := report.Failed["denied.mp3"]; !ok || len(report.Failed) != 1 {
		t.Errorf("Unexpected failures %v", report.Failed)
	}
	if len(seen) != 3 {
		t.Errorf("Expected 3 file callbacks, got %v", seen)
	}
}

func TestBackupSkipsEscapingNames(t *testing.T) {
	home := t.TempDir()
	folder := filepath.Join(home, "media")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	ledger := history.Open(filepath.Join(home, history.FileName))
	if err := ledger.Append(history.Record{Timestamp: "2024-01-01 00:00:00", OriginalURL: "https://x", Filename: "../" + history.FileName}); err != nil {
		t.Fatal(err)
	}
	up := &fakeUploader{objects: map[string]string{}}
	report, err := New(up, Target{Bucket: "bkt", Prefix: "backup"}).Backup(context.Background(), ledger, folder, nil)
	if err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	if len(up.objects) != 1 {
		t.Errorf("Expected only the ledger uploaded, got %v", up.objects)
	}
	if ferr := report.Failed["../"+history.FileName]; !errors.Is(ferr, history.ErrUnsafeFilename) {
		t.Errorf("Expected unsafe name rejected, got %v", ferr)
	}
}

func TestBackupWithoutLedger(t *testing.T) {
	ledger := history.Open(filepath.Join(t.TempDir(), history.FileName))
	up := &fakeUploader{objects: map[string]string{}}
	if _, err := New(up, Target{Bucket: "bkt"}).Backup(context.Background(), ledger, t.TempDir(), nil); err == nil {
		t.Error("Expected error when no history exists")
	}
}
