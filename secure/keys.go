package secure

import (
	"crypto/cipher"
	"crypto/rand"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/etnz/finance/failure"
)

// keystore entries.
const (
	entryPassword = "password"
	entryKeyPair  = "keypair"
	entryDatabase = "database"
)

const databaseKeySize = 32

// Prompt asks the user for a password. create is true when the password is
// being chosen rather than checked, so that the prompt can ask twice.
type Prompt func(create bool) ([]byte, error)

// Keys is the key material of the process.
//
// It is created once with NewKeys and passed to everything needing
// encryption. Init loads the keys from the store, or generates them on the
// first run; it is safe to call from several goroutines, at most one of them
// prompts. After Init the keys are read-only until Regenerate or
// ChangePassword, which are exclusive.
type Keys struct {
	store      Store
	iterations int

	mu       sync.RWMutex
	password *PasswordKey
	pair     *KeyPair
	db       []byte
}

// NewKeys returns uninitialised keys persisted in store. iterations is the
// PBKDF2 count of a newly created password key, 0 for DefaultIterations.
func NewKeys(store Store, iterations int) *Keys {
	return &Keys{store: store, iterations: iterations}
}

// Initialised reports whether Init succeeded.
func (k *Keys) Initialised() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.pair != nil
}

// Exists reports whether the store already holds keys.
func (k *Keys) Exists() bool { return k.store.Has(entryPassword) }

// Init loads the keys, prompting for the password, or generates them when
// the store is empty. It does nothing once the keys are initialised.
func (k *Keys) Init(prompt Prompt) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pair != nil {
		return nil
	}
	if !k.store.Has(entryPassword) {
		return k.generate(prompt)
	}
	return k.load(prompt)
}

// Regenerate replaces every key with new ones under a new password. Backups
// made with the previous keys can no longer be read.
func (k *Keys) Regenerate(prompt Prompt) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.generate(prompt)
}

// ChangePassword wraps the current keys under a new password.
func (k *Keys) ChangePassword(prompt Prompt) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pair == nil {
		return ErrNotInitialised
	}
	password, err := prompt(true)
	if err != nil {
		return err
	}
	p, err := NewPasswordKey(password, k.iterations)
	if err != nil {
		return err
	}
	if err := k.save(p, k.pair, k.db); err != nil {
		return err
	}
	k.password = p
	log.Info("keystore password changed")
	return nil
}

func (k *Keys) generate(prompt Prompt) error {
	password, err := prompt(true)
	if err != nil {
		return err
	}
	p, err := NewPasswordKey(password, k.iterations)
	if err != nil {
		return err
	}
	pair, err := GenerateKeyPair()
	if err != nil {
		return err
	}
	db := make([]byte, databaseKeySize)
	if _, err := rand.Read(db); err != nil {
		return failure.Wrap(failure.Crypto, err, "cannot generate database key")
	}
	if err := k.save(p, pair, db); err != nil {
		return err
	}
	k.password, k.pair, k.db = p, pair, db
	log.Info("generated new keys", "bits", KeyPairBits, "iterations", p.Iterations)
	return nil
}

// save writes the password key last: a store without it is empty.
func (k *Keys) save(p *PasswordKey, pair *KeyPair, db []byte) error {
	wpair, err := pair.wrap(p)
	if err != nil {
		return err
	}
	wdb, err := p.WrapKey(db)
	if err != nil {
		return err
	}
	pk, err := p.Marshal()
	if err != nil {
		return failure.Wrap(failure.Data, err, "cannot encode password key")
	}
	if k.store.Has(entryPassword) {
		if err := k.store.Erase(entryPassword); err != nil {
			return err
		}
	}
	if err := k.store.Write(entryKeyPair, wpair); err != nil {
		return err
	}
	if err := k.store.Write(entryDatabase, wdb); err != nil {
		return err
	}
	return k.store.Write(entryPassword, pk)
}

func (k *Keys) load(prompt Prompt) error {
	data, err := k.store.Read(entryPassword)
	if err != nil {
		return err
	}
	p, err := ParsePasswordKey(data)
	if err != nil {
		return err
	}
	password, err := prompt(false)
	if err != nil {
		return err
	}
	if err := p.Unlock(password); err != nil {
		return err
	}
	wpair, err := k.store.Read(entryKeyPair)
	if err != nil {
		return err
	}
	pair, err := unwrapKeyPair(p, wpair)
	if err != nil {
		return err
	}
	wdb, err := k.store.Read(entryDatabase)
	if err != nil {
		return err
	}
	db, err := p.UnwrapKey(wdb)
	if err != nil {
		return err
	}
	k.password, k.pair, k.db = p, pair, db
	log.Debug("keys loaded")
	return nil
}

// KeyPair returns the asymmetric key.
func (k *Keys) KeyPair() (*KeyPair, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.pair == nil {
		return nil, ErrNotInitialised
	}
	return k.pair, nil
}

// EncryptSecret encrypts a configuration secret with the database key.
func (k *Keys) EncryptSecret(plain []byte) ([]byte, error) {
	aead, err := k.database()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "cannot generate nonce")
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

// DecryptSecret reverses EncryptSecret.
func (k *Keys) DecryptSecret(sealed []byte) ([]byte, error) {
	aead, err := k.database()
	if err != nil {
		return nil, err
	}
	return open(aead, sealed)
}

func (k *Keys) database() (cipher.AEAD, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.db == nil {
		return nil, ErrNotInitialised
	}
	return newGCM(k.db)
}
