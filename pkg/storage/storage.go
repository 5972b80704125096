// Package storage opens the inputs and outputs of a conversion, on local
// disk or in an S3-compatible object store.
//
// Outputs are staged: nothing appears under the destination name until the
// writer is committed, so a conversion that fails halfway never leaves a
// truncated Ogg file behind.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// ErrAborted is the upload error seen by a backend when a Writer is aborted.
var ErrAborted = errors.New("storage: write aborted")

// FileStore is a minimal interface for file-oriented storage.
//
// Names are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Open opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Create starts writing the named file. Parent directories are created
	// automatically. An existing file is replaced on Commit.
	Create(ctx context.Context, name string) (Writer, error)

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, name string) (bool, error)
}

// Writer is an output in progress. Exactly one of Commit or Abort must be
// called.
type Writer interface {
	io.Writer

	// Commit publishes the data under the destination name.
	Commit() error

	// Abort discards everything written.
	Abort() error
}

// Location is a parsed input or output reference.
type Location struct {
	// Bucket is set for s3:// locations.
	Bucket string
	// Dir is the store root: a local directory, or empty for S3.
	Dir string
	// Name is the file name relative to the store root.
	Name string
}

// IsS3 reports whether the location refers to an object store.
func (l Location) IsS3() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsS3() {
		return "s3://" + l.Bucket + "/" + l.Name
	}
	return filepath.Join(l.Dir, filepath.FromSlash(l.Name))
}

// ParseLocation parses "s3://bucket/key" or a local file path.
func ParseLocation(s string) (Location, error) {
	if rest, ok := strings.CutPrefix(s, "s3://"); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		key = strings.TrimPrefix(path.Clean("/"+key), "/")
		if bucket == "" || key == "" {
			return Location{}, errors.New("storage: s3 location needs a bucket and a key: " + s)
		}
		return Location{Bucket: bucket, Name: key}, nil
	}
	if s == "" {
		return Location{}, errors.New("storage: empty location")
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return Location{}, err
	}
	return Location{Dir: filepath.Dir(abs), Name: filepath.Base(abs)}, nil
}

// Open returns a store for the location. S3 locations use a client built
// from opts.
func Open(loc Location, opts S3Options) FileStore {
	if loc.IsS3() {
		return NewS3(NewS3Client(opts), loc.Bucket, "")
	}
	return NewLocal(loc.Dir)
}
