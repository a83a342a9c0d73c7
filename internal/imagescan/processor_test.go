package imagescan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// stubDetector returns a fixed answer and records whether it ran.
type stubDetector struct {
	mu     sync.Mutex
	result bool
	calls  int
}

func (d *stubDetector) Detect(_ context.Context, _ string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.result, nil
}

func (d *stubDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// stubRecorder captures recorded images in memory.
type stubRecorder struct {
	mu      sync.Mutex
	records []string
}

func (r *stubRecorder) InsertImage(_ context.Context, uuid, _ string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, uuid)
	return true, nil
}

func (r *stubRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.records...)
}

// serveImage returns a test server that serves data with the given
// content type on every request.
func serveImage(t *testing.T, contentType string, data []byte) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		if _, err := w.Write(data); err != nil {
			t.Error(err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// countFiles walks dir and counts regular files.
func countFiles(t *testing.T, dir string) int {
	t.Helper()

	count := 0
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("failed to walk %s: %v", dir, err)
	}
	return count
}

func TestProcessorProcess(t *testing.T) {
	t.Parallel()

	t.Run("face found saves image and records it", func(t *testing.T) {
		t.Parallel()

		srv := serveImage(t, "image/png", pngHeader(640, 480))
		outDir := t.TempDir()
		detector := &stubDetector{result: true}
		recorder := &stubRecorder{}

		p := NewProcessor(srv.Client(), outDir, 128, 128, detector, recorder, nil)
		p.Process(context.Background(), srv.URL+"/pic.png", "https://example.com/page")

		records := recorder.recorded()
		if len(records) != 1 {
			t.Fatalf("recorded %d images, want 1", len(records))
		}

		saved := filepath.Join(outDir, records[0], records[0]+".png")
		if _, err := os.Stat(saved); err != nil {
			t.Errorf("saved image not found at %s: %v", saved, err)
		}

		// The temp copy must be gone.
		if n := countFiles(t, filepath.Join(outDir, "temp")); n != 0 {
			t.Errorf("%d files left in temp dir, want 0", n)
		}
	})

	t.Run("no face deletes the download", func(t *testing.T) {
		t.Parallel()

		srv := serveImage(t, "image/png", pngHeader(640, 480))
		outDir := t.TempDir()
		detector := &stubDetector{result: false}
		recorder := &stubRecorder{}

		p := NewProcessor(srv.Client(), outDir, 128, 128, detector, recorder, nil)
		p.Process(context.Background(), srv.URL+"/pic.png", "https://example.com/page")

		if len(recorder.recorded()) != 0 {
			t.Error("rejected image was recorded")
		}
		if n := countFiles(t, outDir); n != 0 {
			t.Errorf("%d files left under output dir, want 0", n)
		}
	})

	t.Run("undersized image skips the detector", func(t *testing.T) {
		t.Parallel()

		srv := serveImage(t, "image/png", pngHeader(64, 64))
		outDir := t.TempDir()
		detector := &stubDetector{result: true}
		recorder := &stubRecorder{}

		p := NewProcessor(srv.Client(), outDir, 128, 128, detector, recorder, nil)
		p.Process(context.Background(), srv.URL+"/small.png", "https://example.com/page")

		if detector.callCount() != 0 {
			t.Error("detector ran on an undersized image")
		}
		if len(recorder.recorded()) != 0 {
			t.Error("undersized image was recorded")
		}
	})

	t.Run("unknown dimensions fall through to the detector", func(t *testing.T) {
		t.Parallel()

		srv := serveImage(t, "image/png", make([]byte, 64))
		outDir := t.TempDir()
		detector := &stubDetector{result: false}
		recorder := &stubRecorder{}

		p := NewProcessor(srv.Client(), outDir, 128, 128, detector, recorder, nil)
		p.Process(context.Background(), srv.URL+"/mystery.png", "https://example.com/page")

		if detector.callCount() != 1 {
			t.Errorf("detector ran %d times, want 1", detector.callCount())
		}
	})

	t.Run("non-image content type is dropped before download", func(t *testing.T) {
		t.Parallel()

		srv := serveImage(t, "text/html", []byte("<html>not an image</html>"))
		outDir := t.TempDir()
		detector := &stubDetector{result: true}
		recorder := &stubRecorder{}

		p := NewProcessor(srv.Client(), outDir, 128, 128, detector, recorder, nil)
		p.Process(context.Background(), srv.URL+"/fake.png", "https://example.com/page")

		if detector.callCount() != 0 {
			t.Error("detector ran on non-image content")
		}
		if len(recorder.recorded()) != 0 {
			t.Error("non-image content was recorded")
		}
	})
}

func TestExtensionFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "png", url: "https://example.com/a.png", want: "png"},
		{name: "uppercase jpeg", url: "https://example.com/b.JPEG", want: "jpeg"},
		{name: "query ignored", url: "https://example.com/c.webp?w=100", want: "webp"},
		{name: "no extension", url: "https://example.com/image", want: "jpg"},
		{name: "unknown extension", url: "https://example.com/d.css", want: "jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := extensionFor(tt.url); got != tt.want {
				t.Errorf("extensionFor(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
