package imagescan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxImageSize limits how many bytes are downloaded per image candidate.
const maxImageSize = 20 * 1024 * 1024

// knownExtensions are the file extensions preserved when naming a
// downloaded image; anything else falls back to .jpg.
var knownExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true,
}

// Recorder persists accepted images. Satisfied by database.CrawlDB.
type Recorder interface {
	// InsertImage records a saved image. It reports whether the uuid was new.
	InsertImage(ctx context.Context, uuid, sourceURL string) (bool, error)
}

// Processor downloads image candidates, filters them by size, runs the
// face detector, and keeps positives under a per-uuid directory.
//
// Processor failures are contained: every error is logged and swallowed so
// the crawl's frontier and visited state never depend on the image
// pipeline.
type Processor struct {
	// client is the HTTP client used for downloads, shared with the
	// page fetcher so the pipeline inherits its timeout and transport.
	client *http.Client

	// outputDir is where accepted images are stored (one subdirectory per
	// image uuid). Temp downloads live under outputDir/temp.
	outputDir string

	// minWidth and minHeight reject images too small to hold a usable face.
	minWidth  int
	minHeight int

	// detector judges downloaded images.
	detector Detector

	// recorder persists accepted images.
	recorder Recorder

	logger *slog.Logger
}

// NewProcessor creates a Processor writing accepted images to outputDir.
func NewProcessor(client *http.Client, outputDir string, minWidth, minHeight int, detector Detector, recorder Recorder, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		client:    client,
		outputDir: outputDir,
		minWidth:  minWidth,
		minHeight: minHeight,
		detector:  detector,
		recorder:  recorder,
		logger:    logger,
	}
}

// Process runs the full pipeline for one image candidate found on
// sourceURL. It never returns an error; failures are logged and the
// candidate is dropped.
func (p *Processor) Process(ctx context.Context, imageURL, sourceURL string) {
	tempPath, err := p.download(ctx, imageURL)
	if err != nil {
		p.logger.Debug("image download failed", "url", imageURL, "error", err)
		return
	}

	keep := false
	defer func() {
		if !keep {
			if err := os.Remove(tempPath); err != nil {
				p.logger.Debug("failed to remove temp image", "path", tempPath, "error", err)
			}
		}
	}()

	ok, err := p.largeEnough(tempPath)
	if err != nil {
		p.logger.Debug("image size check failed", "url", imageURL, "error", err)
		return
	}
	if !ok {
		p.logger.Debug("image too small", "url", imageURL)
		return
	}

	hasFace, err := p.detector.Detect(ctx, tempPath)
	if err != nil {
		p.logger.Warn("face detector failed", "url", imageURL, "error", err)
		return
	}
	if !hasFace {
		p.logger.Debug("no face detected", "url", imageURL)
		return
	}

	id := strings.TrimSuffix(filepath.Base(tempPath), filepath.Ext(tempPath))
	if err := p.save(ctx, tempPath, id, sourceURL); err != nil {
		p.logger.Warn("failed to save image", "url", imageURL, "error", err)
		return
	}

	keep = true
	p.logger.Info("face found", "uuid", id, "url", imageURL, "source", sourceURL)
}

// download fetches the image into a uuid-named file under outputDir/temp
// and returns its path. Non-image content types are rejected.
func (p *Processor) download(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "image/") {
		return "", fmt.Errorf("not an image: content type %q", ct)
	}

	tempDir := filepath.Join(p.outputDir, "temp")
	if err := os.MkdirAll(tempDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	name := uuid.NewString() + "." + extensionFor(imageURL)
	tempPath := filepath.Join(tempDir, name)

	f, err := os.Create(tempPath) //nolint:gosec // Path is built from a fresh uuid
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxImageSize)); err != nil {
		f.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return tempPath, nil
}

// largeEnough reports whether the image at path meets the minimum
// dimensions. Images whose format cannot be sniffed pass; the detector
// gets the final say.
func (p *Processor) largeEnough(path string) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path was created by download
	if err != nil {
		return false, fmt.Errorf("failed to read image: %w", err)
	}

	w, h, ok := Dimensions(data)
	if !ok {
		return true, nil
	}
	return w >= p.minWidth && h >= p.minHeight, nil
}

// save moves an accepted image from its temp location into a per-uuid
// directory and records it.
func (p *Processor) save(ctx context.Context, tempPath, id, sourceURL string) error {
	dir := filepath.Join(p.outputDir, id)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	finalPath := filepath.Join(dir, filepath.Base(tempPath))
	if err := os.Rename(tempPath, finalPath); err != nil {
		return fmt.Errorf("failed to move image: %w", err)
	}

	if _, err := p.recorder.InsertImage(ctx, id, sourceURL); err != nil {
		return fmt.Errorf("failed to record image: %w", err)
	}
	return nil
}

// extensionFor picks a file extension from the image URL's path, falling
// back to jpg for unrecognized or missing extensions.
func extensionFor(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "jpg"
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if knownExtensions[ext] {
		return ext
	}
	return "jpg"
}
