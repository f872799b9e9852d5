package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
)

// FileHash records the content digest of one file in a tree.
type FileHash struct {
	// Path is slash-separated and relative to the tree root.
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// HashFile returns the hex-encoded SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashTree hashes every regular file below root. The result is sorted by path.
func HashTree(root string) ([]FileHash, error) {
	var hashes []FileHash
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sum, err := HashFile(path)
		if err != nil {
			return errors.Wrapf(err, "hashing %s", rel)
		}
		hashes = append(hashes, FileHash{Path: filepath.ToSlash(rel), SHA256: sum})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i].Path < hashes[j].Path })
	return hashes, nil
}

// CopyDir recursively copies the contents of src into dst, creating dst if
// needed. Files keep their permission bits. Symlinks are skipped.
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil
		}
	})
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return errors.Wrap(err, "stat source file")
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrap(err, "creating destination file")
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.Wrap(err, "copying file")
	}

	return errors.Wrap(dstFile.Close(), "closing destination file")
}
