package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Saver stores uploaded images below StaticDir and produces the public
// URLs they are served under.
type Saver struct {
	StaticDir string
	Mount     string // URL prefix of the static mount, e.g. "/static"
}

// Save writes the uploaded file under destDir with a random unique name
// keeping the original extension, and returns its public URL. A nil file
// or an empty original filename is a no-op returning "".
//
// On a write failure the partial destination file is removed, so a failed
// Save never leaves anything on disk.
func (s *Saver) Save(file *multipart.FileHeader, destDir string) (string, error) {
	if file == nil || file.Filename == "" {
		return "", nil
	}

	ext := filepath.Ext(file.Filename)
	name := strings.ReplaceAll(uuid.New().String(), "-", "") + ext
	destPath := filepath.Join(destDir, name)

	if err := s.write(file, destPath); err != nil {
		os.Remove(destPath)
		return "", err
	}

	rel, err := filepath.Rel(s.StaticDir, destPath)
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("upload: resolve public path: %w", err)
	}
	return s.Mount + "/" + filepath.ToSlash(rel), nil
}

func (s *Saver) write(file *multipart.FileHeader, destPath string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("upload: open source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("upload: create %s: %w", destPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("upload: write %s: %w", destPath, err)
	}
	return nil
}

// Remove deletes the file behind a public URL previously returned by Save.
// Callers treat this as best-effort cleanup and ignore the error.
func (s *Saver) Remove(publicURL string) error {
	if publicURL == "" {
		return nil
	}
	rel := strings.TrimPrefix(publicURL, s.Mount+"/")
	full := filepath.Join(s.StaticDir, filepath.FromSlash(rel))
	if _, err := os.Stat(full); err != nil {
		return err
	}
	return os.Remove(full)
}
