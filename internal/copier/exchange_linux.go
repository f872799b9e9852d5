package copier

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// exchangeDirs atomically swaps the directories at a and b.
func exchangeDirs(a, b string) error {
	err := unix.Renameat2(unix.AT_FDCWD, a, unix.AT_FDCWD, b, unix.RENAME_EXCHANGE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EINVAL), errors.Is(err, unix.EOPNOTSUPP):
		return errors.Mark(errors.Wrapf(err, "exchanging %s", b), errExchangeUnsupported)
	default:
		return errors.Wrapf(err, "exchanging %s", b)
	}
}
