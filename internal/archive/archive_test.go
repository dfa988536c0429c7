package archive

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

func TestKey(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	k := Key("monthly_summary_2024_03.xlsx", at)
	re := regexp.MustCompile(`^reports/2024/monthly_summary_2024_03-[0-9a-f-]{36}\.xlsx$`)
	if !re.MatchString(k) {
		t.Fatalf("unexpected key %q", k)
	}
	if Key("a.xlsx", at) == Key("a.xlsx", at) {
		t.Fatal("keys should be unique")
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"reports/2024/a.xlsx", false},
		{"", true},
		{"/etc/passwd", true},
		{"../escape.xlsx", true},
		{"reports/../../x", true},
	}
	for _, tt := range tests {
		_, err := sanitizeKey(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("sanitizeKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
	}
}

func TestFSSinkPut(t *testing.T) {
	root := t.TempDir()
	sink, err := NewFSSink(root)
	if err != nil {
		t.Fatal(err)
	}
	loc, err := sink.Put(context.Background(), "reports/2024/x.xlsx", []byte("PK-data"), "")
	if err != nil {
		t.Fatal(err)
	}
	if loc != filepath.Join(root, "reports", "2024", "x.xlsx") {
		t.Fatalf("location = %q", loc)
	}
	got, err := os.ReadFile(loc)
	if err != nil || string(got) != "PK-data" {
		t.Fatalf("read back %q, %v", got, err)
	}
	entries, _ := os.ReadDir(filepath.Dir(loc))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}

	if _, err := sink.Put(context.Background(), "../x", []byte("x"), ""); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}

type recordedPut struct {
	method, path, contentType string
	body                      []byte
}

func TestS3SinkPut(t *testing.T) {
	var (
		mu  sync.Mutex
		got []recordedPut
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, recordedPut{r.Method, r.URL.Path, r.Header.Get("Content-Type"), body})
		mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := NewS3Sink(context.Background(), S3Config{
		Bucket:    "rehab-reports",
		Endpoint:  srv.URL,
		PathStyle: true,
	}, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")))
	if err != nil {
		t.Fatal(err)
	}

	loc, err := sink.Put(context.Background(), "reports/2024/x.xlsx", []byte("workbook-bytes"), "application/test")
	if err != nil {
		t.Fatal(err)
	}
	if loc != "s3://rehab-reports/reports/2024/x.xlsx" {
		t.Fatalf("location = %q", loc)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("got %d requests", len(got))
	}
	req := got[0]
	if req.method != http.MethodPut || req.path != "/rehab-reports/reports/2024/x.xlsx" {
		t.Fatalf("request = %s %s", req.method, req.path)
	}
	if req.contentType != "application/test" {
		t.Fatalf("content type = %q", req.contentType)
	}
	if !bytes.Contains(req.body, []byte("workbook-bytes")) {
		t.Fatalf("body = %q", req.body)
	}
}

func TestS3SinkRequiresBucket(t *testing.T) {
	if _, err := NewS3Sink(context.Background(), S3Config{}); err == nil || !strings.Contains(err.Error(), "bucket") {
		t.Fatalf("expected bucket error, got %v", err)
	}
}

func TestDriverIsValid(t *testing.T) {
	for _, d := range []Driver{DriverNone, DriverFS, DriverS3} {
		if !d.IsValid() {
			t.Errorf("%s should be valid", d)
		}
	}
	if Driver("gcs").IsValid() {
		t.Error("gcs should be invalid")
	}
}
