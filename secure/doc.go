// Package secure holds the key material and the stream layers used to
// produce tamper-evident, optionally encrypted backups.
//
// Three keys are involved. A PasswordKey is derived from the user password
// and only wraps the two long-lived keys: the KeyPair, which wraps the
// per-file symmetric keys and signs backups, and the database key, which
// encrypts persisted configuration secrets. Keys holds them for the
// process and loads them from a Store on first use.
//
// Stream layers are composed by the caller, typically:
//
//	raw --digest--> compress --digest--> encrypt --digest--> sink
//
// so that on restore each digest can be checked at its own layer.
package secure
