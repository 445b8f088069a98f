package upload

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"lukechampine.com/blake3"

	"captiontrans/internal/logging"
	"captiontrans/internal/services"
)

// DefaultChunkSize is the read size used when copying an upload to disk.
const DefaultChunkSize = 1 << 20

const component = "upload"

// SupportedExtensions lists the media extensions the service accepts.
var SupportedExtensions = []string{".mp3", ".wav", ".m4a", ".mp4", ".mkv"}

// Policy constrains what Store accepts.
type Policy struct {
	// AllowedExtensions are lower-case and include the leading dot.
	AllowedExtensions []string
	MaxBytes          int64
	// Dir receives the temp file. Empty means os.TempDir().
	Dir       string
	ChunkSize int
}

// Artifact is a fully written upload on local disk.
type Artifact struct {
	Path     string
	Size     int64
	Digest   string
	Filename string
	Ext      string
}

// Stem returns the original filename without directory or extension.
func (a *Artifact) Stem() string {
	base := filepath.Base(a.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Remove deletes the temp file. A file that is already gone is ignored; any
// other failure is logged and swallowed.
func (a *Artifact) Remove(logger *slog.Logger) {
	if a == nil || a.Path == "" {
		return
	}
	removeQuietly(a.Path, logger)
}

// ValidateFilename checks that filename is present and carries an allowed
// extension, returning the lower-cased extension.
func ValidateFilename(filename string, allowed []string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" {
		return "", services.Wrap(services.ErrInvalidInput, component, "validate", "Uploaded file must include a filename.", nil)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || !slices.Contains(allowed, ext) {
		sorted := slices.Clone(allowed)
		slices.Sort(sorted)
		msg := fmt.Sprintf("Unsupported file type. Allowed extensions: %s.", strings.Join(sorted, ", "))
		return "", services.Wrap(services.ErrInvalidInput, component, "validate", msg, nil)
	}
	return ext, nil
}

// Store validates filename and copies src into a new temp file in bounded
// chunks. Copying stops as soon as more than policy.MaxBytes have been read.
func Store(ctx context.Context, src io.Reader, filename string, policy Policy, logger *slog.Logger) (*Artifact, error) {
	ext, err := ValidateFilename(filename, policy.AllowedExtensions)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, services.Wrap(services.ErrInvalidInput, component, "store", "No file was uploaded.", nil)
	}

	chunk := policy.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	dir := policy.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	file, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "create temp file", "Failed to store the uploaded file.", err)
	}
	path := file.Name()

	size, digest, copyErr := copyBounded(ctx, file, src, policy.MaxBytes, chunk)
	closeErr := file.Close()
	if copyErr == nil && closeErr != nil {
		copyErr = services.Wrap(services.ErrStorage, component, "close temp file", "Failed to store the uploaded file.", closeErr)
	}
	if copyErr == nil && size == 0 {
		copyErr = services.Wrap(services.ErrEmptyUpload, component, "store", "Uploaded file is empty.", nil)
	}
	if copyErr != nil {
		removeQuietly(path, logger)
		return nil, copyErr
	}

	return &Artifact{
		Path:     path,
		Size:     size,
		Digest:   digest,
		Filename: strings.TrimSpace(filename),
		Ext:      ext,
	}, nil
}

func copyBounded(ctx context.Context, dst io.Writer, src io.Reader, maxBytes int64, chunk int) (int64, string, error) {
	hasher := blake3.New(32, nil)
	out := io.MultiWriter(dst, hasher)
	buf := make([]byte, chunk)
	var total int64

	for {
		if err := ctx.Err(); err != nil {
			return total, "", services.Wrap(services.ErrStorage, component, "read upload", "Failed to store the uploaded file.", err)
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > maxBytes {
				msg := fmt.Sprintf("File exceeds maximum upload size of %d MB.", maxBytes/(1024*1024))
				return total, "", services.Wrap(services.ErrPayloadTooLarge, component, "read upload", msg, nil)
			}
			if _, err := out.Write(buf[:n]); err != nil {
				return total, "", services.Wrap(services.ErrStorage, component, "write temp file", "Failed to store the uploaded file.", err)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return total, "", classifyReadError(readErr, maxBytes)
		}
	}
	return total, hex.EncodeToString(hasher.Sum(nil)), nil
}

// classifyReadError maps a body read failure. http.MaxBytesReader reports an
// oversized request body as a read error, which is a size violation rather
// than an I/O fault.
func classifyReadError(err error, maxBytes int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		msg := fmt.Sprintf("File exceeds maximum upload size of %d MB.", maxBytes/(1024*1024))
		return services.Wrap(services.ErrPayloadTooLarge, component, "read upload", msg, err)
	}
	return services.Wrap(services.ErrStorage, component, "read upload", "Failed to store the uploaded file.", err)
}

func removeQuietly(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.WarnWithContext(logger, "failed to remove upload temp file", "upload_cleanup_failed",
			logging.String("temp_path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the upload temp directory"),
			logging.String(logging.FieldImpact, "a temporary upload file may remain on disk"),
		)
	}
}
