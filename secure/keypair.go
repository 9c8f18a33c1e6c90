package secure

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"

	"github.com/etnz/finance/failure"
)

// KeyPairBits is the size of generated RSA keys.
const KeyPairBits = 2048

// KeyPair is the long-lived asymmetric key. It wraps the per-file symmetric
// keys and signs backups.
type KeyPair struct {
	priv *rsa.PrivateKey
}

// GenerateKeyPair returns a new random key pair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeyPairBits)
	if err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "cannot generate key pair")
	}
	return &KeyPair{priv: priv}, nil
}

// WrapSecret encrypts a short secret with the public key (RSA-OAEP, SHA-256).
func (k *KeyPair) WrapSecret(secret []byte) ([]byte, error) {
	w, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &k.priv.PublicKey, secret, nil)
	if err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "cannot wrap secret")
	}
	return w, nil
}

// UnwrapSecret reverses WrapSecret.
func (k *KeyPair) UnwrapSecret(wrapped []byte) ([]byte, error) {
	s, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, k.priv, wrapped, nil)
	if err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "cannot unwrap secret")
	}
	return s, nil
}

// Sign signs data with the private key (RSA-PSS over SHA-256).
func (k *KeyPair) Sign(data []byte) ([]byte, error) {
	d := sha256.Sum256(data)
	sig, err := rsa.SignPSS(rand.Reader, k.priv, crypto.SHA256, d[:], nil)
	if err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "cannot sign")
	}
	return sig, nil
}

// Verify checks a signature made by Sign.
func (k *KeyPair) Verify(data, sig []byte) error {
	d := sha256.Sum256(data)
	if err := rsa.VerifyPSS(&k.priv.PublicKey, crypto.SHA256, d[:], sig, nil); err != nil {
		return ErrBadSignature.Because(err)
	}
	return nil
}

// wrap encodes the private key (PKCS#8) wrapped by p.
func (k *KeyPair) wrap(p *PasswordKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(k.priv)
	if err != nil {
		return nil, failure.Wrap(failure.Crypto, err, "cannot encode key pair")
	}
	return p.WrapKey(der)
}

// unwrapKeyPair reverses KeyPair.wrap.
func unwrapKeyPair(p *PasswordKey, wrapped []byte) (*KeyPair, error) {
	der, err := p.UnwrapKey(wrapped)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, failure.Wrap(failure.Data, err, "invalid key pair")
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, failure.New(failure.Data, "key pair is a %T, not an RSA key", key)
	}
	return &KeyPair{priv: priv}, nil
}
