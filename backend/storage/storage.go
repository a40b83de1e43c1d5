package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store manages material files in the uploads directory.
type Store struct {
	Dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{Dir: dir}, nil
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
	".xls":  true,
	".xlsx": true,
	".txt":  true,
	".zip":  true,
	".rar":  true,
	".7z":   true,
}

// Allowed reports whether the file's extension may be uploaded.
func Allowed(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// StoredName builds a collision-resistant on-disk name for an upload:
// a UTC timestamp prefix plus a random id, keeping the original
// extension.
func StoredName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s_%s%s", time.Now().UTC().Format("20060102150405"), uuid.NewString(), ext)
}

// Path resolves a stored name inside the uploads directory. The base
// of the name is taken so callers cannot escape the directory.
func (s *Store) Path(storedName string) string {
	return filepath.Join(s.Dir, filepath.Base(storedName))
}

func (s *Store) Remove(storedName string) error {
	return os.Remove(s.Path(storedName))
}
