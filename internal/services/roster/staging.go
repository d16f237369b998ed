package roster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

type stagedFile struct {
	path string
	tmp  string
}

// Appends stage every store before replacing any, so staging and
// replacement are separate steps rather than one atomic.WriteFile call.

// stage writes data to a temp file next to path
func stage(path string, data []byte) (stagedFile, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return stagedFile{}, err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return stagedFile{}, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return stagedFile{}, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return stagedFile{}, err
	}
	return stagedFile{path: path, tmp: f.Name()}, nil
}

// commit moves every staged file into place, continuing past failures
func commit(staged []stagedFile) error {
	var errs []error
	for _, sf := range staged {
		if err := atomic.ReplaceFile(sf.tmp, sf.path); err != nil {
			_ = os.Remove(sf.tmp)
			errs = append(errs, fmt.Errorf("replace %s: %w", filepath.Base(sf.path), err))
		}
	}
	return errors.Join(errs...)
}

func discard(staged []stagedFile) {
	for _, sf := range staged {
		_ = os.Remove(sf.tmp)
	}
}

func writeFileAtomic(path string, data []byte) error {
	sf, err := stage(path, data)
	if err != nil {
		return err
	}
	return commit([]stagedFile{sf})
}
