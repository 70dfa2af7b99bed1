// Package storage writes capture snapshots to disk, preferring an external
// storage mount and falling back to the user's home directory when the mount
// is missing or read-only.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"thermalview/internal/encoder"
	"thermalview/internal/frame"
)

// DefaultPrimaryDir is the external capture mount checked first.
const DefaultPrimaryDir = "/mnt/thermal_storage/thermal_captures"

// Handler resolves capture paths and persists encoded frames.
type Handler struct {
	primary  string
	fallback string
	enc      encoder.Encoder
	log      zerolog.Logger

	now func() time.Time
}

// Info describes the storage location currently in use.
type Info struct {
	Path       string
	TotalBytes uint64
	FreeBytes  uint64
	External   bool
}

// New creates a handler rooted at primary, with a home-directory fallback.
// Both directories are created eagerly; a primary that cannot be created is
// logged and simply never selected.
func New(primary string, enc encoder.Encoder, log zerolog.Logger) (*Handler, error) {
	if primary == "" {
		primary = DefaultPrimaryDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("storage: resolve home: %w", err)
	}
	h := &Handler{
		primary:  primary,
		fallback: filepath.Join(home, "thermal_captures"),
		enc:      enc,
		log:      log,
		now:      time.Now,
	}
	if err := os.MkdirAll(h.primary, 0o755); err != nil {
		h.log.Warn().Err(err).Str("dir", h.primary).Msg("primary capture dir unavailable")
	}
	if err := os.MkdirAll(h.fallback, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create fallback dir: %w", err)
	}
	return h, nil
}

// Dir returns the directory captures will be written to right now.
func (h *Handler) Dir() string {
	if unix.Access(h.primary, unix.W_OK) == nil {
		return h.primary
	}
	return h.fallback
}

// CapturePath builds a timestamped path for a new capture file.
func (h *Handler) CapturePath(prefix string) string {
	if prefix == "" {
		prefix = "thermal"
	}
	stamp := h.now().Format("20060102_150405")
	return filepath.Join(h.Dir(), fmt.Sprintf("%s_%s.jpg", prefix, stamp))
}

// SaveCapture encodes the frame and writes it to a fresh capture path,
// returning the path written.
func (h *Handler) SaveCapture(f *frame.Frame) (string, error) {
	data, err := h.enc.Encode(f)
	if err != nil {
		return "", fmt.Errorf("storage: encode capture: %w", err)
	}
	path := h.CapturePath("thermal")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", path, err)
	}
	h.log.Info().Str("path", path).Int("bytes", len(data)).Msg("capture saved")
	return path, nil
}

// Info reports capacity for the active storage directory.
func (h *Handler) Info() (*Info, error) {
	dir := h.Dir()
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return nil, fmt.Errorf("storage: statfs %s: %w", dir, err)
	}
	bsize := uint64(st.Bsize)
	return &Info{
		Path:       dir,
		TotalBytes: st.Blocks * bsize,
		FreeBytes:  st.Bavail * bsize,
		External:   strings.HasPrefix(dir, "/mnt/"),
	}, nil
}
