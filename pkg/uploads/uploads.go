// Package uploads stores attachment and background image files under the
// public uploads directory and hands back the /uploads/ URLs persisted on
// messages and preferences.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"anonymchat/pkg/logger"
)

// URLPrefix is the public path the uploads directory is served under.
const URLPrefix = "/uploads/"

var dir string

// Init prepares the uploads directory and keeps a global handle, the same
// ambient arrangement the store uses.
func Init(d string) error {
	if d == "" {
		return fmt.Errorf("empty uploads dir")
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		logger.Error("uploads_init_failed", "dir", d, "error", err)
		return err
	}
	dir = d
	logger.Info("uploads_ready", "dir", d)
	return nil
}

// Dir returns the uploads directory for static file serving.
func Dir() string { return dir }

func randPart() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// sanitizeBase strips path separators and whitespace from a client-supplied
// filename component.
func sanitizeBase(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return name
}

// SaveAttachment writes an uploaded file under a collision-resistant name
// derived from the original: <basename>-<unixms>-<rand><ext>. Returns the
// public URL stored on the message.
func SaveAttachment(originalName string, r io.Reader) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("uploads not initialized; call uploads.Init first")
	}
	clean := sanitizeBase(originalName)
	ext := filepath.Ext(clean)
	base := strings.TrimSuffix(clean, ext)
	name := fmt.Sprintf("%s-%d-%s%s", base, time.Now().UTC().UnixMilli(), randPart(), ext)
	if err := writeFile(name, r); err != nil {
		return "", err
	}
	return URLPrefix + name, nil
}

// SaveBackground writes a preference background image under the
// userbg-<nickname>-<rand><ext> convention.
func SaveBackground(nickname, originalName string, r io.Reader) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("uploads not initialized; call uploads.Init first")
	}
	ext := filepath.Ext(sanitizeBase(originalName))
	if ext == "" {
		ext = ".gif"
	}
	name := fmt.Sprintf("userbg-%s-%s%s", sanitizeBase(nickname), randPart(), ext)
	if err := writeFile(name, r); err != nil {
		return "", err
	}
	return URLPrefix + name, nil
}

func writeFile(name string, r io.Reader) error {
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("upload_write_failed", "path", path, "error", err)
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		logger.Error("upload_write_failed", "path", path, "error", err)
		_ = os.Remove(path)
		return err
	}
	logger.Info("upload_saved", "name", name)
	return nil
}

// Remove deletes the file behind an /uploads/ URL. Best-effort: failures
// are logged, never surfaced; a message or preference delete must not fail
// because its media is already gone.
func Remove(urlPath string) {
	if dir == "" || urlPath == "" || !strings.HasPrefix(urlPath, URLPrefix) {
		return
	}
	name := filepath.Base(strings.TrimPrefix(urlPath, URLPrefix))
	if name == "" || name == "." || name == ".." {
		return
	}
	if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
		logger.Warn("upload_remove_failed", "url", urlPath, "error", err)
		return
	}
	logger.Info("upload_removed", "url", urlPath)
}
