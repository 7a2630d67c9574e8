package safeio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxManifestSize bounds manifest reads. Real Cargo.toml files are a few
// kilobytes; anything near this limit is not a manifest.
const MaxManifestSize = 8 << 20

// ErrTooLarge is returned by ReadFileLimited when the file exceeds the limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// ReadFileLimited reads path, failing once more than limit bytes are seen.
func ReadFileLimited(path string, limit int64) ([]byte, error) {
	// #nosec G304 -- reading the manifest the user pointed at is the point
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w (%d bytes)", path, ErrTooLarge, limit)
	}
	return data, nil
}

// WriteOptions controls WriteFileAtomic.
type WriteOptions struct {
	// Backup copies the current contents to path+".bak" before replacing it.
	Backup bool
}

// WriteFileAtomic replaces path with data through a temporary file in the
// same directory, preserving the existing file mode when possible. When the
// file does not exist, it uses a sane default of 0644.
func WriteFileAtomic(path string, data []byte, opts WriteOptions) error {
	var mode os.FileMode = 0o644
	st, err := os.Stat(path)
	switch {
	case err == nil:
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	if opts.Backup && st != nil {
		if err := copyFile(path, path+".bak", mode); err != nil {
			return fmt.Errorf("backup %s: %w", path, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	// #nosec G304 -- src is the manifest being rewritten
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, mode)
}
