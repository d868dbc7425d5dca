package cache

import (
	"errors"
	"os"
)

// ensureDir creates dir. With strict set, the directory is created (or
// tightened) to 0700.
func ensureDir(dir string, strict bool) error {
	if dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if strict {
		perm = 0o700
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}
	if strict {
		if info, err := os.Stat(dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(dir, 0o700)
		}
	}
	return nil
}

func fileMode(strict bool) os.FileMode {
	if strict {
		return 0o600
	}
	return 0o644
}
