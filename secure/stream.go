package secure

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/etnz/finance/failure"
	"github.com/klauspost/compress/flate"
)

const (
	// SecretKeySize is the size of the per-file AES-256 keys.
	SecretKeySize = 32
	// IVSize is the size of the per-file initialization vectors.
	IVSize = aes.BlockSize
)

// Digest is the SHA-256 sum and the length of the bytes of a stream.
type Digest struct {
	Data   []byte
	Length int64
}

// Equal reports whether d and e describe the same bytes.
func (d *Digest) Equal(e *Digest) bool {
	if d == nil || e == nil {
		return d == e
	}
	return d.Length == e.Length && bytes.Equal(d.Data, e.Data)
}

func (d *Digest) String() string {
	if d == nil {
		return "<none>"
	}
	return fmt.Sprintf("%x (%d bytes)", d.Data, d.Length)
}

// DigestWriter digests the bytes written through it.
type DigestWriter struct {
	w io.Writer
	h hash.Hash
	n int64
}

// NewDigestWriter returns a DigestWriter writing to w.
func NewDigestWriter(w io.Writer) *DigestWriter {
	return &DigestWriter{w: w, h: sha256.New()}
}

// Write writes p to the underlying writer and digests what was written.
func (d *DigestWriter) Write(p []byte) (int, error) {
	n, err := d.w.Write(p)
	d.h.Write(p[:n])
	d.n += int64(n)
	return n, err
}

// Digest returns the digest of the bytes written so far.
func (d *DigestWriter) Digest() *Digest {
	return &Digest{Data: d.h.Sum(nil), Length: d.n}
}

// DigestReader digests the bytes read through it and checks them against
// an expected digest. Reaching EOF with other bytes than expected, or reading
// more bytes than expected, fails with ErrDigestMismatch.
type DigestReader struct {
	r    io.Reader
	h    hash.Hash
	n    int64
	want *Digest
	err  error
}

// NewDigestReader returns a DigestReader reading from r and expecting want.
func NewDigestReader(r io.Reader, want *Digest) *DigestReader {
	return &DigestReader{r: r, h: sha256.New(), want: want}
}

func (d *DigestReader) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n, err := d.r.Read(p)
	d.h.Write(p[:n])
	d.n += int64(n)
	if d.n > d.want.Length {
		d.err = ErrDigestMismatch.Because(fmt.Errorf("read %d bytes, want %d", d.n, d.want.Length))
		return n, d.err
	}
	if errors.Is(err, io.EOF) {
		if got := d.Digest(); !got.Equal(d.want) {
			d.err = ErrDigestMismatch.Because(fmt.Errorf("got %v, want %v", got, d.want))
			return n, d.err
		}
	}
	return n, err
}

// Digest returns the digest of the bytes read so far.
func (d *DigestReader) Digest() *Digest {
	return &Digest{Data: d.h.Sum(nil), Length: d.n}
}

// NewSecretKey returns a fresh random AES-256 key and IV.
func NewSecretKey() (key, iv []byte, err error) {
	key = make([]byte, SecretKeySize)
	iv = make([]byte, IVSize)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, failure.Wrap(failure.Crypto, err, "cannot generate key")
	}
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, failure.Wrap(failure.Crypto, err, "cannot generate iv")
	}
	return key, iv, nil
}

func newCTR(key, iv []byte) (cipher.Stream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "invalid secret key")
	}
	if len(iv) != block.BlockSize() {
		return nil, failure.New(failure.Crypto, "invalid iv length %d", len(iv))
	}
	return cipher.NewCTR(block, iv), nil
}

// NewEncryptWriter returns a writer encrypting to w with AES-256-CTR.
func NewEncryptWriter(w io.Writer, key, iv []byte) (io.Writer, error) {
	s, err := newCTR(key, iv)
	if err != nil {
		return nil, err
	}
	return cipher.StreamWriter{S: s, W: w}, nil
}

// NewDecryptReader reverses NewEncryptWriter.
func NewDecryptReader(r io.Reader, key, iv []byte) (io.Reader, error) {
	s, err := newCTR(key, iv)
	if err != nil {
		return nil, err
	}
	return cipher.StreamReader{S: s, R: r}, nil
}

// NewCompressWriter returns a writer deflating to w. It must be closed to
// flush the last block.
func NewCompressWriter(w io.Writer) (io.WriteCloser, error) {
	fw, err := flate.NewWriter(w, flate.BestCompression)
	if err != nil {
		return nil, failure.Wrap(failure.Logic, err, "cannot compress")
	}
	return fw, nil
}

// NewCompressReader reverses NewCompressWriter.
func NewCompressReader(r io.Reader) io.ReadCloser { return flate.NewReader(r) }
