package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jbonatakis/accomplish/internal/logger"
)

// writeFileAtomic replaces path with data so readers never observe a partly
// written config. The temp file lives next to path so the rename stays on
// one filesystem.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, removeStaged(tmp))
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod staged config: %w", err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write staged config: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync staged config: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close staged config: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	// The new config is in place; a failed dir fsync only weakens durability.
	if serr := syncDir(dir); serr != nil {
		logger.Warn("sync config dir", "dir", dir, "error", serr)
	}
	return nil
}

// syncDir makes a rename in dir durable on POSIX. Windows has no equivalent.
var syncDir = func(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

func removeStaged(f *os.File) error {
	_ = f.Close()
	if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
