package localmedia

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/neurobridge-coursegraph/internal/domain/course"
	"github.com/yungbote/neurobridge-coursegraph/internal/platform/logger"
)

// Prober resolves a media id to the duration of <dir>/<id>.<ext> as reported by ffprobe.
//
// REQUIRED BINARY: ffprobe (ffmpeg package) in PATH.
type Prober struct {
	log        *logger.Logger
	dir        string
	ffprobe    string
	extensions []string
	timeout    time.Duration
	run        func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func New(log *logger.Logger, dir string) *Prober {
	if log == nil {
		log = logger.NewNop()
	}
	return &Prober{
		log:        log.With("service", "MediaProbe"),
		dir:        dir,
		ffprobe:    "ffprobe",
		extensions: []string{".mp4", ".webm", ".mov", ".m4v"},
		timeout:    30 * time.Second,
		run:        runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w; out=%s", name, err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

func (p *Prober) AssertReady() error {
	if _, err := exec.LookPath(p.ffprobe); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", p.ffprobe, err)
	}
	return nil
}

// Resolve reports not-found when no file exists for the id. Ids that would escape dir are never found.
func (p *Prober) Resolve(mediaID string) (course.MediaRecord, bool, error) {
	path, ok := p.locate(mediaID)
	if !ok {
		return course.MediaRecord{}, false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	out, err := p.run(ctx, p.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return course.MediaRecord{}, false, fmt.Errorf("localmedia: probe %s: %w", path, err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || secs < 0 {
		return course.MediaRecord{}, false, fmt.Errorf("localmedia: probe %s: unexpected duration %q", path, strings.TrimSpace(string(out)))
	}
	p.log.Debug("probed media", "media_id", mediaID, "path", path, "seconds", secs)
	return course.MediaRecord{
		MediaID:         mediaID,
		Status:          course.MediaStatusUploaded,
		DurationSeconds: int(secs),
		ClientVideoID:   filepath.Base(path),
	}, true, nil
}

func (p *Prober) locate(mediaID string) (string, bool) {
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" || mediaID != filepath.Base(mediaID) || mediaID == "." || mediaID == ".." {
		return "", false
	}
	for _, ext := range p.extensions {
		path := filepath.Join(p.dir, mediaID+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
