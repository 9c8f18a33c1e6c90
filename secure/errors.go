package secure

import "github.com/etnz/finance/failure"

var (
	// ErrNotInitialised is returned when keys are used before Keys.Init.
	ErrNotInitialised = failure.New(failure.Logic, "keys are not initialised")
	// ErrBadPassword is returned when a password does not unlock the keystore.
	ErrBadPassword = failure.New(failure.Crypto, "bad password")
	// ErrDigestMismatch is returned when a stream does not match its recorded digest.
	ErrDigestMismatch = failure.New(failure.Crypto, "digest mismatch")
	// ErrBadSignature is returned when a signature does not verify.
	ErrBadSignature = failure.New(failure.Crypto, "bad signature")
)
