package archive

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/etnz/finance/failure"
	"github.com/etnz/finance/secure"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Reader reads an archive.
type Reader struct {
	zr      *zip.Reader
	keys    *secure.Keys
	entries []*FileEntry
	files   map[string]*zip.File
	closer  io.Closer
}

// NewReader reads the header of the archive held by r. keys is only needed
// for encrypted files and may be nil otherwise.
func NewReader(r io.ReaderAt, size int64, keys *secure.Keys) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, failure.Wrap(failure.Data, err, "not an archive")
	}
	ar := &Reader{zr: zr, keys: keys, files: make(map[string]*zip.File)}
	for _, f := range zr.File {
		ar.files[f.Name] = f
	}
	hf, ok := ar.files[HeaderName]
	if !ok {
		return nil, failure.New(failure.Data, "archive has no %s entry", HeaderName)
	}
	rc, err := hf.Open()
	if err != nil {
		return nil, failure.Wrap(failure.Data, err, "cannot open header")
	}
	defer rc.Close()
	blob, err := io.ReadAll(rc)
	if err != nil {
		return nil, classify(err, "cannot read header")
	}
	if ar.entries, err = DecodeHeader(string(blob)); err != nil {
		return nil, err
	}
	for _, e := range ar.entries {
		if _, ok := ar.files[e.Name]; !ok {
			return nil, failure.New(failure.Data, "archive has no entry %q", e.Name).WithObject(e)
		}
	}
	log.Debug("archive opened", "files", len(ar.entries))
	return ar, nil
}

// Open opens the archive file at path.
func Open(path string, keys *secure.Keys) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, failure.Wrap(failure.IO, err, "cannot open archive")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, failure.Wrap(failure.IO, err, "cannot open archive")
	}
	r, err := NewReader(f, info.Size(), keys)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Close releases the file opened by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Entries returns a copy of the entries of the archive.
func (r *Reader) Entries() []*FileEntry {
	c := make([]*FileEntry, len(r.entries))
	for i, e := range r.entries {
		v := *e
		c[i] = &v
	}
	return c
}

// Entry returns a copy of the entry named name, or nil.
func (r *Reader) Entry(name string) *FileEntry {
	for _, e := range r.entries {
		if e.Name == name {
			v := *e
			return &v
		}
	}
	return nil
}

// InputStream returns the content of the file described by e.
//
// The signature of an encrypted file is verified before any byte is
// returned. Digests are verified while reading: the stream fails rather
// than reaching EOF if any layer differs from e. Integrity failures are
// crypto errors, read failures io errors.
func (r *Reader) InputStream(e *FileEntry) (io.ReadCloser, error) {
	f, ok := r.files[e.Name]
	if !ok || e.Name == HeaderName {
		return nil, failure.New(failure.Data, "archive has no entry %q", e.Name)
	}
	if e.Raw == nil {
		return nil, failure.New(failure.Data, "entry %q has no raw digest", e.Name).WithObject(e)
	}
	var key []byte
	if e.Encrypted != nil {
		var err error
		if key, err = r.secretKey(e); err != nil {
			return nil, err
		}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, classify(err, "cannot open entry %q", e.Name)
	}
	in := &input{name: e.Name, closer: rc}
	var src io.Reader = rc
	if e.Encrypted != nil {
		d := secure.NewDigestReader(src, e.Encrypted)
		in.lower = append(in.lower, d)
		if src, err = secure.NewDecryptReader(d, key, e.InitVector); err != nil {
			rc.Close()
			return nil, err
		}
	}
	if e.Compressed != nil {
		d := secure.NewDigestReader(src, e.Compressed)
		in.lower = append(in.lower, d)
		in.decompressor = secure.NewCompressReader(d)
		src = in.decompressor
	}
	in.raw = secure.NewDigestReader(src, e.Raw)
	return in, nil
}

// secretKey verifies the signature of e and returns its file key.
func (r *Reader) secretKey(e *FileEntry) ([]byte, error) {
	if r.keys == nil {
		return nil, secure.ErrNotInitialised
	}
	pair, err := r.keys.KeyPair()
	if err != nil {
		return nil, err
	}
	wrapped, err := secure.Reveal(e.SecretKey)
	if err != nil {
		return nil, err
	}
	data := secure.SignatureData(wrapped, e.InitVector, e.Encrypted, e.Compressed, e.Raw)
	if err := pair.Verify(data, e.Signature); err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "entry %q", e.Name)
	}
	return pair.UnwrapSecret(wrapped)
}

// input reads one file through the inverse layers.
type input struct {
	name         string
	raw          *secure.DigestReader
	lower        []*secure.DigestReader // outermost first
	decompressor io.ReadCloser
	closer       io.Closer
	err          error
}

func (in *input) Read(p []byte) (int, error) {
	if in.err != nil {
		return 0, in.err
	}
	n, err := in.raw.Read(p)
	if errors.Is(err, io.EOF) {
		// the decompressor stops at its final block: drain the layers below
		// so that their digests are checked too.
		if len(in.lower) > 0 {
			if _, derr := io.Copy(io.Discard, in.lower[len(in.lower)-1]); derr != nil {
				err = derr
			}
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		in.err = classify(err, "cannot read %q", in.name)
		return n, in.err
	}
	return n, err
}

func (in *input) Close() error {
	var err error
	if in.decompressor != nil {
		err = in.decompressor.Close()
	}
	return errors.Join(err, in.closer.Close())
}

// classify returns err as a crypto error when it comes from corrupt data,
// an io error otherwise.
func classify(err error, format string, args ...any) error {
	var (
		fe       *failure.Error
		corrupt  flate.CorruptInputError
		internal flate.InternalError
	)
	switch {
	case errors.As(err, &fe):
		return err
	case errors.As(err, &corrupt), errors.As(err, &internal),
		errors.Is(err, zip.ErrChecksum), errors.Is(err, zip.ErrFormat),
		errors.Is(err, io.ErrUnexpectedEOF):
		return failure.Wrap(failure.Crypto, err, format, args...)
	default:
		return failure.Wrap(failure.IO, err, format, args...)
	}
}
