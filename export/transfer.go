package export

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"syscall"

	"github.com/otiai10/copy"
)

// TransferFunc copies or moves a single file from src to dst.
type TransferFunc func(src, dst string) error

// CopyFile copies src to dst, replacing dst if it exists. A symlinked src
// is followed so dst receives the artifact's bytes.
func CopyFile(src, dst string) error {
	return copy.Copy(src, dst, copy.Options{
		OnSymlink:     func(string) copy.SymlinkAction { return copy.Deep },
		Sync:          true,
		PreserveTimes: true,
	})
}

// MoveFile renames src to dst. Across filesystems, or when src is a
// symlink, it falls back to a copy followed by removal of src.
func MoveFile(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return copyAndRemove(src, dst)
	}

	err = os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyAndRemove(src, dst)
}

func copyAndRemove(src, dst string) error {
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// checksum returns the size and hex SHA-256 of the file at path.
func checksum(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
