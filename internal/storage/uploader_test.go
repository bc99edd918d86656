package storage

import (
	"context"
	"errors"
	"testing"
)

type recordingUploader struct {
	objects []string
	failOn  string
}

func (r *recordingUploader) UploadFile(ctx context.Context, objectName, filePath string) error {
	if filePath == r.failOn {
		return errors.New("boom")
	}
	r.objects = append(r.objects, objectName)
	return nil
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		folder, file, want string
	}{
		{"", "output/export_2024-01-01_to_2024-01-31.csv", "export_2024-01-01_to_2024-01-31.csv"},
		{"reports", "output/a.csv", "reports/a.csv"},
		{"/reports/2024/", "/tmp/out/a.csv", "reports/2024/a.csv"},
	}

	for _, tt := range tests {
		if got := ObjectName(tt.folder, tt.file); got != tt.want {
			t.Errorf("ObjectName(%q, %q) = %q, want %q", tt.folder, tt.file, got, tt.want)
		}
	}
}

func TestUploadAll(t *testing.T) {
	u := &recordingUploader{}
	if err := UploadAll(context.Background(), u, "hospitable", "output/a.csv", "output/b.csv"); err != nil {
		t.Fatalf("UploadAll() error = %v", err)
	}
	if len(u.objects) != 2 || u.objects[0] != "hospitable/a.csv" || u.objects[1] != "hospitable/b.csv" {
		t.Errorf("objects = %v", u.objects)
	}
}

func TestUploadAll_StopsOnError(t *testing.T) {
	u := &recordingUploader{failOn: "output/a.csv"}
	if err := UploadAll(context.Background(), u, "", "output/a.csv", "output/b.csv"); err == nil {
		t.Fatal("expected error")
	}
	if len(u.objects) != 0 {
		t.Errorf("no object should be uploaded after a failure, got %v", u.objects)
	}
}
