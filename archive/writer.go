package archive

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/etnz/finance/failure"
	"github.com/etnz/finance/secure"
	"github.com/klauspost/compress/zip"
)

// ErrStreamOpen is returned when an output stream is requested while
// another one is still open.
var ErrStreamOpen = failure.New(failure.Logic, "an output stream is already open")

// ErrClosed is returned when a closed Writer is used.
var ErrClosed = failure.New(failure.Logic, "archive is closed")

// Writer writes an archive.
//
// Files are written one at a time with OutputStream. Close writes the
// header entry and completes the archive.
type Writer struct {
	zw      *zip.Writer
	keys    *secure.Keys
	entries []*FileEntry
	names   map[string]bool
	open    *stream
	closed  bool
	failed  error // an entry was started but not recorded

	// set by Create.
	file *os.File
	path string
}

// NewWriter returns a Writer writing the archive to w. keys is only needed
// for encrypted files and may be nil otherwise.
func NewWriter(w io.Writer, keys *secure.Keys) *Writer {
	return &Writer{
		zw:    zip.NewWriter(w),
		keys:  keys,
		names: map[string]bool{HeaderName: true},
	}
}

// Create returns a Writer writing the archive to a temporary file renamed
// to path by a successful Close. Abort, or a failing Close, removes it: a
// partial archive never exists under path.
func Create(path string, keys *secure.Keys) (*Writer, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, failure.Wrap(failure.IO, err, "cannot create archive %q", path)
	}
	w := NewWriter(f, keys)
	w.file, w.path = f, path
	return w, nil
}

// Entries returns the entries written so far.
func (w *Writer) Entries() []*FileEntry { return append([]*FileEntry(nil), w.entries...) }

// OutputStream opens a new file named name. Data written to the stream
// goes through the layers selected by mode. The entry is recorded when the
// stream is closed. Only one stream may be open at a time.
func (w *Writer) OutputStream(name string, mode Mode) (io.WriteCloser, error) {
	switch {
	case w.closed:
		return nil, ErrClosed
	case w.failed != nil:
		return nil, w.incomplete()
	case w.open != nil:
		return nil, ErrStreamOpen
	case name == "":
		return nil, failure.New(failure.Data, "empty file name")
	case w.names[name]:
		return nil, failure.New(failure.Data, "duplicate file name %q", name)
	}
	s := &stream{w: w, entry: &FileEntry{Name: name}, mode: mode}
	if mode.encrypted() {
		if w.keys == nil {
			return nil, secure.ErrNotInitialised
		}
		pair, err := w.keys.KeyPair()
		if err != nil {
			return nil, err
		}
		s.pair = pair
	}

	zf, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return nil, w.fail(failure.Wrap(failure.IO, err, "cannot create entry %q", name))
	}
	if err := s.layers(zf); err != nil {
		return nil, w.fail(err)
	}
	w.names[name] = true
	w.open = s
	log.Debug("archive stream opened", "name", name, "mode", mode)
	return s, nil
}

// fail records that the zip holds an entry missing from the header, and
// returns err.
func (w *Writer) fail(err error) error {
	if w.failed == nil {
		w.failed = err
	}
	return err
}

func (w *Writer) incomplete() error {
	return failure.New(failure.Logic, "archive holds a failed entry").Because(w.failed)
}

// Close writes the header entry and completes the archive. With Create, the
// temporary file is then renamed to its final path. An archive where an entry
// failed is never completed: Close abandons it and returns an error.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	if w.open != nil {
		return ErrStreamOpen
	}
	if w.failed != nil {
		return errors.Join(w.incomplete(), w.Abort())
	}
	w.closed = true
	err := w.finish()
	if w.file == nil {
		return err
	}
	if cerr := w.file.Close(); cerr != nil && err == nil {
		err = failure.Wrap(failure.IO, cerr, "cannot close archive")
	}
	if err == nil {
		err = failure.Wrap(failure.IO, os.Rename(w.file.Name(), w.path), "cannot rename archive")
	}
	if err != nil {
		return errors.Join(err, os.Remove(w.file.Name()))
	}
	log.Debug("archive written", "path", w.path, "files", len(w.entries))
	return nil
}

func (w *Writer) finish() error {
	hw, err := w.zw.CreateHeader(&zip.FileHeader{Name: HeaderName, Method: zip.Deflate})
	if err != nil {
		return failure.Wrap(failure.IO, err, "cannot create header")
	}
	if _, err := io.WriteString(hw, EncodeHeader(w.entries)); err != nil {
		return failure.Wrap(failure.IO, err, "cannot write header")
	}
	return failure.Wrap(failure.IO, w.zw.Close(), "cannot complete archive")
}

// Abort abandons the archive. With Create, the temporary file is removed.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.open = nil
	if w.file == nil {
		return nil
	}
	return errors.Join(w.file.Close(), os.Remove(w.file.Name()))
}

// stream is the output stream of one file.
type stream struct {
	w     *Writer
	entry *FileEntry
	mode  Mode

	raw, compressed, encrypted *secure.DigestWriter
	compressor                 io.WriteCloser
	pair                       *secure.KeyPair
	key, iv                    []byte
	closed                     bool
}

func (s *stream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	n, err := s.raw.Write(p)
	if err != nil {
		return n, s.w.fail(failure.Wrap(failure.IO, err, "cannot write %q", s.entry.Name))
	}
	return n, nil
}

// layers builds the digest, compress and encrypt writers down to zf.
func (s *stream) layers(zf io.Writer) error {
	var err error
	sink := zf
	if s.mode.encrypted() {
		if s.key, s.iv, err = secure.NewSecretKey(); err != nil {
			return err
		}
		s.encrypted = secure.NewDigestWriter(sink)
		if sink, err = secure.NewEncryptWriter(s.encrypted, s.key, s.iv); err != nil {
			return err
		}
	}
	if s.mode.compressed() {
		s.compressed = secure.NewDigestWriter(sink)
		if s.compressor, err = secure.NewCompressWriter(s.compressed); err != nil {
			return err
		}
		sink = s.compressor
	}
	s.raw = secure.NewDigestWriter(sink)
	return nil
}

// Close flushes the layers and records the entry. When it fails, the Writer
// refuses to complete the archive.
func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.w.open = nil
	if err := s.record(); err != nil {
		return s.w.fail(err)
	}
	return nil
}

func (s *stream) record() error {
	if s.compressor != nil {
		if err := s.compressor.Close(); err != nil {
			return failure.Wrap(failure.IO, err, "cannot compress %q", s.entry.Name)
		}
	}
	e := s.entry
	e.Raw = s.raw.Digest()
	if s.compressed != nil {
		e.Compressed = s.compressed.Digest()
	}
	if s.encrypted != nil {
		e.Encrypted = s.encrypted.Digest()
		wrapped, err := s.pair.WrapSecret(s.key)
		if err != nil {
			return err
		}
		sig, err := s.pair.Sign(secure.SignatureData(wrapped, s.iv, e.Encrypted, e.Compressed, e.Raw))
		if err != nil {
			return err
		}
		e.SecretKey, e.InitVector, e.Signature = secure.Obscure(wrapped), s.iv, sig
	}
	s.w.entries = append(s.w.entries, e)
	log.Debug("archive entry recorded", "name", e.Name, "mode", s.mode, "raw", e.Raw.Length, "stored", e.Size())
	return nil
}
