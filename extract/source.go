package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source is the input handle owned by one extraction call. It always
// exposes a rewindable stream (the fallback path re-reads the same bytes)
// and can materialize the bytes to a file on demand for backends that only
// operate on paths. Any temporary materialization is removed by Close,
// which the orchestrator defers on every exit path.
//
// A Source is never shared across concurrent calls.
type Source struct {
	name string
	rs   io.ReadSeeker
	ra   io.ReaderAt
	size int64

	path    string // pre-existing on-disk location, if any
	tmpPath string // lazily created materialization, removed by Close
	file    *os.File
}

// NewFileSource opens a file-backed source streamed directly from storage.
func NewFileSource(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &Source{
		name: filepath.Base(path),
		rs:   f,
		ra:   f,
		size: info.Size(),
		path: path,
		file: f,
	}, nil
}

// NewBytesSource wraps an in-memory buffer. The name hint is required for
// type detection since no path exists to infer it from.
func NewBytesSource(data []byte, name string) *Source {
	r := bytes.NewReader(data)
	return &Source{name: name, rs: r, ra: r, size: int64(len(data))}
}

// NewReaderSource adapts an arbitrary reader. Seekable readers that also
// support ReaderAt are used as-is; anything else is spooled to a temporary
// file up front, because the fallback path requires rewinding.
func NewReaderSource(r io.Reader, name string) (*Source, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		if ra, ok := r.(io.ReaderAt); ok {
			size, err := rs.Seek(0, io.SeekEnd)
			if err != nil {
				return nil, fmt.Errorf("size stream: %w", err)
			}
			if _, err := rs.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("rewind stream: %w", err)
			}
			return &Source{name: name, rs: rs, ra: ra, size: size}, nil
		}
	}

	tmp, err := os.CreateTemp("", "textkit-*")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("spool stream: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("rewind spool file: %w", err)
	}
	return &Source{
		name:    name,
		rs:      tmp,
		ra:      tmp,
		size:    size,
		tmpPath: tmp.Name(),
		file:    tmp,
	}, nil
}

// Name returns the filename hint used for type detection.
func (s *Source) Name() string { return s.name }

// Reader exposes the underlying stream. Strategies receive it positioned at
// offset 0.
func (s *Source) Reader() io.ReadSeeker { return s.rs }

// ReaderAt exposes random access to the same bytes.
func (s *Source) ReaderAt() io.ReaderAt { return s.ra }

// Size reports the input length in bytes.
func (s *Source) Size() int64 { return s.size }

// Rewind seeks the stream back to offset 0.
func (s *Source) Rewind() error {
	if _, err := s.rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind source: %w", err)
	}
	return nil
}

// FilePath returns an on-disk location for the input, materializing the
// stream to a temporary file on first use when the source is not already
// file-backed. The stream position is preserved for the caller by a rewind
// after copying.
func (s *Source) FilePath() (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	if s.tmpPath != "" {
		return s.tmpPath, nil
	}

	tmp, err := os.CreateTemp("", "textkit-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if err := s.Rewind(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if _, err := io.Copy(tmp, s.rs); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("materialize source: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := s.Rewind(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	s.tmpPath = tmp.Name()
	return s.tmpPath, nil
}

// Close releases the underlying file handle, if any, and deterministically
// removes any temporary materialization. It never relies on process exit
// for cleanup.
func (s *Source) Close() error {
	var first error
	if s.file != nil {
		if err := s.file.Close(); err != nil && first == nil {
			first = err
		}
		s.file = nil
	}
	if s.tmpPath != "" {
		if err := os.Remove(s.tmpPath); err != nil && !os.IsNotExist(err) && first == nil {
			first = err
		}
		s.tmpPath = ""
	}
	return first
}
