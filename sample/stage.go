package sample

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BioSina/MAPle/config"
	"github.com/BioSina/MAPle/errors"
)

// Stage copies (keepRaw) or moves every qualifying read file of inDir into
// rawDir and returns the names of the files it transferred. A file already
// present in rawDir with the same size is not transferred again.
func Stage(ctx context.Context, inDir, rawDir string, keepRaw bool) ([]string, error) {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return nil, errors.InputNotFound(inDir).WithCause(err)
	}
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return nil, errors.DirectoryMissing(rawDir).WithCause(err)
	}

	var staged []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return staged, errors.Canceled(err)
		}
		name := entry.Name()
		if entry.IsDir() || !IsReadFile(name) {
			continue
		}
		src := filepath.Join(inDir, name)
		dst := filepath.Join(rawDir, name)

		if sameSize(src, dst) {
			if !keepRaw {
				if err := os.Remove(src); err != nil {
					return staged, stagingFailed(name, rawDir, err)
				}
			}
			continue
		}

		if keepRaw {
			err = CopyFile(src, dst)
		} else {
			err = moveFile(src, dst)
		}
		if err != nil {
			return staged, stagingFailed(name, rawDir, err)
		}
		staged = append(staged, name)
	}
	return staged, nil
}

func stagingFailed(name, rawDir string, err error) error {
	return errors.SetupFailed(fmt.Sprintf("Read file %s cannot be staged into %s.", name, rawDir), err).
		WithDetail("file", name)
}

// Setup stages the input directory into rawDir and returns the samples with
// paths inside rawDir. Only the files that came from inDir are considered,
// so leftovers of earlier runs in rawDir are ignored. When inDir holds no
// read files, because an earlier run already moved them, the samples are
// taken from rawDir instead.
func Setup(ctx context.Context, inDir, rawDir string, naming config.Naming, keepRaw bool) ([]Sample, error) {
	if info, err := os.Stat(inDir); err != nil || !info.IsDir() {
		return nil, errors.InputNotFound(inDir).WithCause(err)
	}

	input, err := Discover(inDir, naming)
	if err != nil {
		return nil, err
	}
	if _, err := Stage(ctx, inDir, rawDir, keepRaw); err != nil {
		return nil, err
	}

	if len(input) == 0 {
		return Discover(rawDir, naming)
	}

	abs, err := filepath.Abs(rawDir)
	if err != nil {
		return nil, errors.Internal(err)
	}
	samples := make([]Sample, len(input))
	for i, s := range input {
		samples[i] = Sample{Name: s.Name, R1: stagedPath(abs, s.R1), R2: stagedPath(abs, s.R2)}
	}
	return samples, nil
}

// stagedPath returns where the input file at path lives inside rawDir, or
// "" when it is not there.
func stagedPath(rawDir, path string) string {
	if path == "" {
		return ""
	}
	dst := filepath.Join(rawDir, filepath.Base(path))
	if info, err := os.Stat(dst); err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return dst
}

func sameSize(src, dst string) bool {
	si, err := os.Stat(src)
	if err != nil {
		return false
	}
	di, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return si.Mode().IsRegular() && di.Mode().IsRegular() && si.Size() == di.Size()
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Rename fails across devices.
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// CopyFile copies src to dst. It writes to a temporary name first so an
// interrupted copy never looks complete.
func CopyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if info, statErr := in.Stat(); statErr == nil {
		_ = os.Chmod(tmp.Name(), info.Mode().Perm())
	}
	return os.Rename(tmp.Name(), dst)
}
