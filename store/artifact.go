package store

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/healthsignals/mindgauge/pkg/errors"
)

// Open returns a reader over an artifact at an s3:// URI or local path.
func Open(uri string) (io.ReadCloser, error) {
	if IsS3URI(uri) {
		return openS3Object(uri)
	}
	f, err := os.Open(uri)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", uri)
	}
	return f, nil
}

// Writer produces one artifact. Close publishes it at its final name; Abort
// discards everything written, so a failed producer never leaves a partial
// artifact that looks complete.
type Writer interface {
	io.Writer
	Close() error
	Abort() error
}

// Create returns a writer for an artifact at an s3:// URI or local path.
// Local writes go through a temp file and rename so readers never observe a
// partially written artifact; S3 writes upload on Close.
func Create(uri string) (Writer, error) {
	if IsS3URI(uri) {
		return newBufferedS3Writer(uri)
	}
	if dir := filepath.Dir(uri); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating directory for %s", uri)
		}
	}
	f, err := os.CreateTemp(filepath.Dir(uri), ".artifact-*")
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", uri)
	}
	return &atomicFileWriter{f: f, dest: uri}, nil
}

type atomicFileWriter struct {
	f    *os.File
	dest string
}

func (w *atomicFileWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *atomicFileWriter) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		os.Remove(w.f.Name())
		return err
	}
	if err := w.f.Close(); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	return os.Rename(w.f.Name(), w.dest)
}

func (w *atomicFileWriter) Abort() error {
	w.f.Close()
	return os.Remove(w.f.Name())
}

// List returns the artifact names directly under a location, which is either
// an s3:// prefix or a local directory.
func List(location string) ([]string, error) {
	if IsS3URI(location) {
		keys, err := listS3Objects(location)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(keys))
		for i, key := range keys {
			names[i] = path.Base(key)
		}
		return names, nil
	}
	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", location)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// FindByExt returns the full URI of the first artifact under location whose
// name carries the given extension.
func FindByExt(location, ext string) (string, error) {
	names, err := List(location)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if strings.HasSuffix(name, ext) {
			return Join(location, name), nil
		}
	}
	return "", errors.Wrapf(errors.ErrNoArtifact, "no %s artifact under %s", ext, location)
}
