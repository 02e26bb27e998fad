package trace

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Codec is the compression of a trace file.
type Codec uint8

// Enumeration of trace codecs.
const (
	CodecNone Codec = iota
	CodecLZ4
	CodecSnappy
)

// CodecFor picks the codec from the file extension.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lz4":
		return CodecLZ4
	case ".sz", ".snappy":
		return CodecSnappy
	default:
		return CodecNone
	}
}

type readCloser struct {
	io.Reader
	file *os.File
}

func (r *readCloser) Close() error {
	return r.file.Close()
}

// Open opens a trace file for reading, decompressing it if its extension
// asks for it.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	rc := &readCloser{file: f}

	switch CodecFor(path) {
	case CodecLZ4:
		rc.Reader = lz4.NewReader(f)
	case CodecSnappy:
		rc.Reader = snappy.NewReader(f)
	default:
		rc.Reader = f
	}

	return rc, nil
}

type writeCloser struct {
	io.Writer
	codec io.WriteCloser
	file  *os.File
}

func (w *writeCloser) Close() error {
	var err error
	if w.codec != nil {
		err = w.codec.Close()
	}

	return errors.Join(err, w.file.Close())
}

// Create creates a trace file, compressing it if its extension asks for it.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	wc := &writeCloser{file: f}

	switch CodecFor(path) {
	case CodecLZ4:
		wc.codec = lz4.NewWriter(f)
	case CodecSnappy:
		wc.codec = snappy.NewBufferedWriter(f)
	}

	if wc.codec != nil {
		wc.Writer = wc.codec
	} else {
		wc.Writer = f
	}

	return wc, nil
}
