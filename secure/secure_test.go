package secure

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/finance/failure"
	"github.com/google/go-cmp/cmp"
)

// testIterations keeps key derivation fast in tests.
const testIterations = 1000

var testKeyPair = sync.OnceValues(GenerateKeyPair)

func fixedPrompt(password string) Prompt {
	return func(bool) ([]byte, error) { return []byte(password), nil }
}

func TestPasswordKey_WrapUnwrap(t *testing.T) {
	p, err := NewPasswordKey([]byte("correct horse"), testIterations)
	if err != nil {
		t.Fatalf("NewPasswordKey() error = %v", err)
	}
	key, _, err := NewSecretKey()
	if err != nil {
		t.Fatalf("NewSecretKey() error = %v", err)
	}
	wrapped, err := p.WrapKey(key)
	if err != nil {
		t.Fatalf("WrapKey() error = %v", err)
	}
	if bytes.Contains(wrapped, key) {
		t.Errorf("WrapKey() leaks the key")
	}

	// same password, reloaded from storage.
	stored, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	q, err := ParsePasswordKey(stored)
	if err != nil {
		t.Fatalf("ParsePasswordKey() error = %v", err)
	}
	if _, err := q.UnwrapKey(wrapped); !failure.Is(err, failure.Logic) {
		t.Errorf("UnwrapKey() on a locked key error = %v, want a logic error", err)
	}
	if err := q.Unlock([]byte("wrong")); !errors.Is(err, ErrBadPassword) {
		t.Errorf("Unlock(wrong) error = %v, want %v", err, ErrBadPassword)
	}
	if err := q.Unlock([]byte("correct horse")); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	got, err := q.UnwrapKey(wrapped)
	if err != nil {
		t.Fatalf("UnwrapKey() error = %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Errorf("UnwrapKey() = %x, want %x", got, key)
	}

	// another password never yields key material.
	other, err := NewPasswordKey([]byte("battery staple"), testIterations)
	if err != nil {
		t.Fatalf("NewPasswordKey() error = %v", err)
	}
	if got, err := other.UnwrapKey(wrapped); !failure.Is(err, failure.Crypto) || got != nil {
		t.Errorf("UnwrapKey() with another password = %x, %v, want a crypto error", got, err)
	}
}

func TestParsePasswordKey_Invalid(t *testing.T) {
	for _, data := range []string{"", "{", `{"iterations":10,"salt":"AAAA","hash":"AAAA"}`} {
		if _, err := ParsePasswordKey([]byte(data)); !failure.Is(err, failure.Data) {
			t.Errorf("ParsePasswordKey(%q) error = %v, want a data error", data, err)
		}
	}
}

func TestKeyPair(t *testing.T) {
	k, err := testKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}
	secret := []byte("0123456789abcdef0123456789abcdef")
	wrapped, err := k.WrapSecret(secret)
	if err != nil {
		t.Fatalf("WrapSecret() error = %v", err)
	}
	if got, err := k.UnwrapSecret(wrapped); err != nil || !bytes.Equal(got, secret) {
		t.Errorf("UnwrapSecret() = %x, %v, want %x", got, err, secret)
	}
	wrapped[0] ^= 1
	if _, err := k.UnwrapSecret(wrapped); !failure.Is(err, failure.Crypto) {
		t.Errorf("UnwrapSecret() of a tampered secret error = %v, want a crypto error", err)
	}

	sig, err := k.Sign([]byte("payload"))
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if err := k.Verify([]byte("payload"), sig); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
	if err := k.Verify([]byte("payloaD"), sig); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify() of other data error = %v, want %v", err, ErrBadSignature)
	}

	p, _ := NewPasswordKey([]byte("pw"), testIterations)
	w, err := k.wrap(p)
	if err != nil {
		t.Fatalf("wrap() error = %v", err)
	}
	back, err := unwrapKeyPair(p, w)
	if err != nil {
		t.Fatalf("unwrapKeyPair() error = %v", err)
	}
	if !back.priv.Equal(k.priv) {
		t.Errorf("unwrapKeyPair() returned another key")
	}
}

func TestKeys_Lifecycle(t *testing.T) {
	store := NewMemStore()
	keys := NewKeys(store, testIterations)
	if _, err := keys.KeyPair(); !errors.Is(err, ErrNotInitialised) {
		t.Errorf("KeyPair() before Init error = %v, want %v", err, ErrNotInitialised)
	}
	if _, err := keys.EncryptSecret([]byte("x")); !failure.Is(err, failure.Logic) {
		t.Errorf("EncryptSecret() before Init error = %v, want a logic error", err)
	}
	if keys.Exists() {
		t.Errorf("Exists() on an empty store = true")
	}

	var prompts atomic.Int32
	prompt := func(create bool) ([]byte, error) {
		prompts.Add(1)
		if !create {
			t.Errorf("first Init() asked to check a password")
		}
		return []byte("secret"), nil
	}
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := keys.Init(prompt); err != nil {
				t.Errorf("Init() error = %v", err)
			}
		}()
	}
	wg.Wait()
	if prompts.Load() != 1 {
		t.Errorf("Init() prompted %d times, want 1", prompts.Load())
	}
	if !keys.Initialised() || !keys.Exists() {
		t.Fatalf("Init() did not initialise the keys")
	}

	sealed, err := keys.EncryptSecret([]byte("api token"))
	if err != nil {
		t.Fatalf("EncryptSecret() error = %v", err)
	}
	pair, _ := keys.KeyPair()
	wrapped, err := pair.WrapSecret([]byte("file key"))
	if err != nil {
		t.Fatalf("WrapSecret() error = %v", err)
	}

	// a second process with a wrong password.
	bad := NewKeys(store, testIterations)
	if err := bad.Init(fixedPrompt("nope")); !errors.Is(err, ErrBadPassword) {
		t.Errorf("Init(wrong password) error = %v, want %v", err, ErrBadPassword)
	}
	if bad.Initialised() {
		t.Errorf("Init(wrong password) initialised the keys")
	}

	// and with the right one.
	again := NewKeys(store, testIterations)
	if err := again.Init(fixedPrompt("secret")); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	checkKeys(t, again, sealed, wrapped)

	if err := again.ChangePassword(fixedPrompt("new secret")); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	reloaded := NewKeys(store, testIterations)
	if err := reloaded.Init(fixedPrompt("secret")); !errors.Is(err, ErrBadPassword) {
		t.Errorf("Init(old password) error = %v, want %v", err, ErrBadPassword)
	}
	if err := reloaded.Init(fixedPrompt("new secret")); err != nil {
		t.Fatalf("Init(new password) error = %v", err)
	}
	checkKeys(t, reloaded, sealed, wrapped)

	if err := reloaded.Regenerate(fixedPrompt("fresh")); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if _, err := reloaded.DecryptSecret(sealed); !failure.Is(err, failure.Crypto) {
		t.Errorf("DecryptSecret() after Regenerate() error = %v, want a crypto error", err)
	}
}

func checkKeys(t *testing.T, keys *Keys, sealed, wrapped []byte) {
	t.Helper()
	if got, err := keys.DecryptSecret(sealed); err != nil || string(got) != "api token" {
		t.Errorf("DecryptSecret() = %q, %v, want %q", got, err, "api token")
	}
	pair, err := keys.KeyPair()
	if err != nil {
		t.Fatalf("KeyPair() error = %v", err)
	}
	if got, err := pair.UnwrapSecret(wrapped); err != nil || string(got) != "file key" {
		t.Errorf("UnwrapSecret() = %q, %v, want %q", got, err, "file key")
	}
}

func TestDiskStore(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	if s.Has("a") {
		t.Errorf("Has() on an empty store = true")
	}
	if _, err := s.Read("a"); !failure.Is(err, failure.IO) {
		t.Errorf("Read() of a missing key error = %v, want an io error", err)
	}
	if err := s.Write("a", []byte("value")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got, err := s.Read("a"); err != nil || string(got) != "value" {
		t.Errorf("Read() = %q, %v, want %q", got, err, "value")
	}
	if err := s.Erase("a"); err != nil || s.Has("a") {
		t.Errorf("Erase() error = %v, Has() = %v", err, s.Has("a"))
	}
}

func TestDigestReader(t *testing.T) {
	var buf bytes.Buffer
	w := NewDigestWriter(&buf)
	io.WriteString(w, "hello, world")
	want := w.Digest()
	if want.Length != 12 {
		t.Fatalf("Digest().Length = %d, want 12", want.Length)
	}

	testCases := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "same", data: "hello, world"},
		{name: "tampered", data: "hello, World", wantErr: true},
		{name: "short", data: "hello", wantErr: true},
		{name: "long", data: "hello, world!", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := io.ReadAll(NewDigestReader(strings.NewReader(tc.data), want))
			if tc.wantErr {
				if !errors.Is(err, ErrDigestMismatch) {
					t.Errorf("ReadAll() error = %v, want %v", err, ErrDigestMismatch)
				}
				return
			}
			if err != nil || string(got) != tc.data {
				t.Errorf("ReadAll() = %q, %v, want %q", got, err, tc.data)
			}
		})
	}
}

func TestPipeline(t *testing.T) {
	raw := bytes.Repeat([]byte("a line of a journal\n"), 500)
	key, iv, err := NewSecretKey()
	if err != nil {
		t.Fatalf("NewSecretKey() error = %v", err)
	}

	var sink bytes.Buffer
	encrypted := NewDigestWriter(&sink)
	ew, err := NewEncryptWriter(encrypted, key, iv)
	if err != nil {
		t.Fatalf("NewEncryptWriter() error = %v", err)
	}
	compressed := NewDigestWriter(ew)
	cw, err := NewCompressWriter(compressed)
	if err != nil {
		t.Fatalf("NewCompressWriter() error = %v", err)
	}
	plain := NewDigestWriter(cw)
	if _, err := plain.Write(raw); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := cw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if compressed.Digest().Length >= int64(len(raw)) {
		t.Errorf("compressed %d bytes into %d", len(raw), compressed.Digest().Length)
	}
	if encrypted.Digest().Length != int64(sink.Len()) {
		t.Errorf("encrypted digest length = %d, want %d", encrypted.Digest().Length, sink.Len())
	}

	dr, err := NewDecryptReader(NewDigestReader(&sink, encrypted.Digest()), key, iv)
	if err != nil {
		t.Fatalf("NewDecryptReader() error = %v", err)
	}
	zr := NewCompressReader(NewDigestReader(dr, compressed.Digest()))
	defer zr.Close()
	got, err := io.ReadAll(NewDigestReader(zr, plain.Digest()))
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Errorf("round trip changed the data")
	}
}

func TestObscure(t *testing.T) {
	defer func(f func() time.Time) { now = f }(now)
	key := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	now = func() time.Time { return time.Unix(0, 1) }
	a := Obscure(key)
	now = func() time.Time { return time.Unix(0, 2) }
	b := Obscure(key)
	if bytes.Equal(a, b) {
		t.Errorf("Obscure() gave the same bytes at two times")
	}
	for _, o := range [][]byte{a, b} {
		got, err := Reveal(o)
		if err != nil {
			t.Fatalf("Reveal() error = %v", err)
		}
		if diff := cmp.Diff(key, got); diff != "" {
			t.Errorf("Reveal() mismatch (-want +got):\n%s", diff)
		}
	}
	if _, err := Reveal([]byte{1, 2}); !failure.Is(err, failure.Data) {
		t.Errorf("Reveal() of a short value error = %v, want a data error", err)
	}
}

func TestSignatureData(t *testing.T) {
	d := &Digest{Data: []byte{0xaa}, Length: 1}
	testCases := []struct {
		name                       string
		key, iv                    []byte
		encrypted, compressed, raw *Digest
		want                       []byte
	}{
		{
			name: "raw only",
			raw:  d,
			want: []byte{0xaa, 0, 0, 0, 0, 0, 0, 0, 1},
		},
		{
			name:      "encrypted",
			key:       []byte{1},
			iv:        []byte{2},
			encrypted: d,
			raw:       &Digest{Data: []byte{0xbb}, Length: 2},
			want:      []byte{1, 2, 0xaa, 0, 0, 0, 0, 0, 0, 0, 1, 0xbb, 0, 0, 0, 0, 0, 0, 0, 2},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SignatureData(tc.key, tc.iv, tc.encrypted, tc.compressed, tc.raw)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("SignatureData() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
