package archive

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/etnz/finance/failure"
	"github.com/etnz/finance/secure"
)

// HeaderName is the zip entry holding the encoded metadata of every other entry.
const HeaderName = "zipHeader"

// header encoding alphabet.
const (
	fileSep  = ";"
	propSep  = "/"
	valueSep = "="
	longSep  = "!"
)

// property names.
const (
	propName       = "Name"
	propRaw        = "RawData"
	propCompressed = "CompressedData"
	propEncrypted  = "EncryptedData"
	propSignature  = "Signature"
	propSecretKey  = "SecretKey"
	propInitVector = "InitVector"
)

// Mode selects the layers a file goes through.
type Mode int

const (
	Raw Mode = iota
	Compress
	Encrypt
	CompressAndEncrypt
)

var modeNames = []string{"RAW", "COMPRESS", "ENCRYPT", "COMPRESS_AND_ENCRYPT"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses a mode name, case insensitive.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return Raw, fmt.Errorf("unknown mode %q, want one of %s", s, strings.Join(modeNames, ", "))
}

func (m Mode) compressed() bool { return m == Compress || m == CompressAndEncrypt }
func (m Mode) encrypted() bool  { return m == Encrypt || m == CompressAndEncrypt }

// Digest is the digest and length of one layer of a file.
type Digest = secure.Digest

// FileEntry is the metadata of one file of an archive.
//
// Raw is always set. Compressed and Encrypted are set when the file went
// through the matching layer. Signature, SecretKey (the obscured wrapped
// key) and InitVector are set for encrypted files.
type FileEntry struct {
	Name       string
	Raw        *Digest
	Compressed *Digest
	Encrypted  *Digest
	Signature  []byte
	SecretKey  []byte
	InitVector []byte
}

// Mode returns the mode the file was written with.
func (e *FileEntry) Mode() Mode {
	switch {
	case e.Compressed != nil && e.Encrypted != nil:
		return CompressAndEncrypt
	case e.Encrypted != nil:
		return Encrypt
	case e.Compressed != nil:
		return Compress
	default:
		return Raw
	}
}

// Size returns the number of bytes stored in the zip entry.
func (e *FileEntry) Size() int64 {
	for _, d := range []*Digest{e.Encrypted, e.Compressed, e.Raw} {
		if d != nil {
			return d.Length
		}
	}
	return 0
}

// EncodeHeader encodes the entries as the content of the header entry.
//
// Each entry is a sequence of name=hexbytes!hexlong properties joined by
// "/", entries are joined by ";". Either sub-field may be empty.
func EncodeHeader(entries []*FileEntry) string {
	recs := make([]string, 0, len(entries))
	for _, e := range entries {
		var props []string
		add := func(name string, b []byte, l *int64) {
			v := hex.EncodeToString(b) + longSep
			if l != nil {
				v += strconv.FormatInt(*l, 16)
			}
			props = append(props, name+valueSep+v)
		}
		addDigest := func(name string, d *Digest) {
			if d != nil {
				add(name, d.Data, &d.Length)
			}
		}
		addBytes := func(name string, b []byte) {
			if b != nil {
				add(name, b, nil)
			}
		}
		add(propName, []byte(e.Name), nil)
		addDigest(propRaw, e.Raw)
		addDigest(propCompressed, e.Compressed)
		addDigest(propEncrypted, e.Encrypted)
		addBytes(propSignature, e.Signature)
		addBytes(propSecretKey, e.SecretKey)
		addBytes(propInitVector, e.InitVector)
		recs = append(recs, strings.Join(props, propSep))
	}
	return strings.Join(recs, fileSep)
}

// DecodeHeader is the exact inverse of EncodeHeader. Duplicate properties,
// malformed hex and entries without a name are data errors.
func DecodeHeader(s string) ([]*FileEntry, error) {
	if s == "" {
		return nil, nil
	}
	var entries []*FileEntry
	for i, rec := range strings.Split(s, fileSep) {
		e, err := decodeEntry(rec)
		if err != nil {
			return nil, failure.Wrap(failure.Data, err, "invalid header record %d", i)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeEntry(rec string) (*FileEntry, error) {
	e := new(FileEntry)
	seen := make(map[string]bool)
	hasName := false
	for _, prop := range strings.Split(rec, propSep) {
		name, value, ok := strings.Cut(prop, valueSep)
		if !ok {
			return nil, fmt.Errorf("property %q has no value", prop)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate property %q", name)
		}
		seen[name] = true
		hexBytes, hexLong, ok := strings.Cut(value, longSep)
		if !ok || strings.Contains(hexLong, longSep) {
			return nil, fmt.Errorf("property %q: malformed value %q", name, value)
		}
		b, err := hex.DecodeString(hexBytes)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		var l *int64
		if hexLong != "" {
			v, err := strconv.ParseInt(hexLong, 16, 64)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			l = &v
		}
		digest := func() (*Digest, error) {
			if l == nil {
				return nil, fmt.Errorf("property %q has no length", name)
			}
			return &Digest{Data: b, Length: *l}, nil
		}
		switch name {
		case propName:
			e.Name, hasName = string(b), true
		case propRaw:
			e.Raw, err = digest()
		case propCompressed:
			e.Compressed, err = digest()
		case propEncrypted:
			e.Encrypted, err = digest()
		case propSignature:
			e.Signature = b
		case propSecretKey:
			e.SecretKey = b
		case propInitVector:
			e.InitVector = b
		default:
			log.Warn("ignoring unknown archive property", "property", name)
		}
		if err != nil {
			return nil, err
		}
	}
	if !hasName || e.Name == "" {
		return nil, fmt.Errorf("record has no name")
	}
	return e, nil
}
