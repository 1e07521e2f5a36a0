package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	errs "github.com/Temm4ancki/VK-to-TG-post/internal/core/errors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FileStore persists the processed set as a JSON array of keys. Every persist
// rewrites the whole file; O(n) per mark is acceptable at this system's
// volume but is a scaling ceiling, not a long-term design.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full key set. A missing or empty file yields an empty set;
// unparsable content returns ErrLedgerCorrupt so startup can refuse to
// continue instead of silently redelivering.
func (s *FileStore) Load(_ context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read ledger file %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", errs.ErrLedgerCorrupt, s.path, err)
	}

	return keys, nil
}

// Persist atomically rewrites the full key set via a temp file and rename.
// The parent directory is created on first use.
func (s *FileStore) Persist(_ context.Context, keys []string) error {
	if keys == nil {
		keys = []string{}
	}

	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal ledger keys: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create ledger dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("write temp ledger file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("close temp ledger file: %w", err)
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("chmod temp ledger file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replace ledger file %s: %w", s.path, err)
	}

	return nil
}
