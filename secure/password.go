package secure

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"fmt"

	"github.com/etnz/finance/failure"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 iteration count of new password keys.
	DefaultIterations = 600_000
	saltSize          = 16
	hashSize          = 32
	wrapKeySize       = 32
)

// PasswordKey is the key derived from the user password.
//
// A random salt is generated once. PBKDF2 derives 64 bytes from the password
// and the salt: the first half is a verification hash, the only derived
// value stored, the second half the key wrapping the long-lived keys.
type PasswordKey struct {
	Iterations int    `json:"iterations"`
	Salt       []byte `json:"salt"`
	Hash       []byte `json:"hash"`

	wrap []byte // set once unlocked
}

// NewPasswordKey creates a password key with a fresh salt, unlocked with password.
func NewPasswordKey(password []byte, iterations int) (*PasswordKey, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "cannot generate salt")
	}
	p := &PasswordKey{Iterations: iterations, Salt: salt}
	p.Hash, p.wrap = p.derive(password)
	return p, nil
}

// ParsePasswordKey decodes a password key stored with Marshal. The key is locked.
func ParsePasswordKey(data []byte) (*PasswordKey, error) {
	var p PasswordKey
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, failure.Wrap(failure.Data, err, "invalid password key")
	}
	if len(p.Salt) != saltSize || len(p.Hash) != hashSize || p.Iterations <= 0 {
		return nil, failure.New(failure.Data, "invalid password key")
	}
	return &p, nil
}

// Marshal encodes the stored part of the key: iterations, salt and verification hash.
func (p *PasswordKey) Marshal() ([]byte, error) { return json.Marshal(p) }

func (p *PasswordKey) derive(password []byte) (hash, wrap []byte) {
	dk := pbkdf2.Key(password, p.Salt, p.Iterations, hashSize+wrapKeySize, sha256.New)
	return dk[:hashSize], dk[hashSize:]
}

// Unlock checks password against the stored hash, and enables wrapping.
func (p *PasswordKey) Unlock(password []byte) error {
	hash, wrap := p.derive(password)
	if subtle.ConstantTimeCompare(hash, p.Hash) != 1 {
		return ErrBadPassword
	}
	p.wrap = wrap
	return nil
}

// Unlocked reports whether the key can wrap and unwrap.
func (p *PasswordKey) Unlocked() bool { return p.wrap != nil }

// WrapKey encrypts key with AES-256-GCM. The result is nonce followed by ciphertext.
func (p *PasswordKey) WrapKey(key []byte) ([]byte, error) {
	aead, err := p.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(key)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "cannot generate nonce")
	}
	return aead.Seal(nonce, nonce, key, nil), nil
}

// UnwrapKey reverses WrapKey. A key wrapped under another password fails
// with a crypto error.
func (p *PasswordKey) UnwrapKey(wrapped []byte) ([]byte, error) {
	aead, err := p.aead()
	if err != nil {
		return nil, err
	}
	return open(aead, wrapped)
}

func (p *PasswordKey) aead() (cipher.AEAD, error) {
	if p.wrap == nil {
		return nil, failure.New(failure.Logic, "password key is locked")
	}
	return newGCM(p.wrap)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "invalid key")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "invalid key")
	}
	return aead, nil
}

// open decrypts nonce followed by ciphertext.
func open(aead cipher.AEAD, sealed []byte) ([]byte, error) {
	ns := aead.NonceSize()
	if len(sealed) < ns+aead.Overhead() {
		return nil, failure.New(failure.Crypto, "sealed data too short: %d bytes", len(sealed))
	}
	plain, err := aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "cannot unwrap")
	}
	return plain, nil
}

func (p *PasswordKey) String() string {
	return fmt.Sprintf("password key (%d iterations, unlocked=%v)", p.Iterations, p.Unlocked())
}
