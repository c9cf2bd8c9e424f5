// Package credentials stores profile secrets (the kinit password) in the
// operating system's keychain and hands them out as protected values.
package credentials

import (
	stderrors "errors"

	"github.com/zalando/go-keyring"

	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/util"
)

// KindKinit is the secret kind used for Kerberos authentication.
const KindKinit = "kinit"

// ErrNotFound is returned by a Store when no secret exists for the key.
var ErrNotFound = stderrors.New("secret not found")

// Store gets and sets a password by (key, account).
// Keys have the form "<profile>_<kind>"; the account is the local user.
type Store interface {
	Get(key, account string) (string, error)
	Set(key, account, secret string) error
}

// Keyring is a Store backed by the OS keychain
// (macOS Keychain, Secret Service on Linux, Windows Credential Manager).
type Keyring struct{}

// NewKeyring returns the OS keychain store.
func NewKeyring() *Keyring {
	return &Keyring{}
}

// Get returns the secret for key/account, or ErrNotFound.
func (k *Keyring) Get(key, account string) (string, error) {
	secret, err := keyring.Get(key, account)
	if err != nil {
		if stderrors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", errors.WrapWithCode(err, errors.ErrCredential,
			"Couldn't read from the system keyring",
			"Make sure a keyring service is running and unlocked.")
	}
	return secret, nil
}

// Set stores the secret for key/account, replacing any previous value.
func (k *Keyring) Set(key, account, secret string) error {
	if err := keyring.Set(key, account, secret); err != nil {
		return errors.WrapWithCode(err, errors.ErrCredential,
			"Couldn't write to the system keyring",
			"Make sure a keyring service is running and unlocked.")
	}
	return nil
}

// Lookup fetches the secret of the given kind for a profile as a protected
// Secret. A missing secret is an ErrCredential error pointing at the setup
// command; the caller must Destroy the returned Secret.
func Lookup(store Store, profile, kind, account string) (*Secret, error) {
	pw, err := store.Get(util.PasswordKey(profile, kind), account)
	if err != nil && !stderrors.Is(err, ErrNotFound) {
		return nil, err
	}
	if pw == "" {
		return nil, errors.New(errors.ErrCredential,
			"No "+kind+" password stored for profile '"+profile+"'",
			"Add it with: issho config "+profile+"  (or edit ~/.issho/config.toml and re-run setup)")
	}
	return NewSecret(pw), nil
}

// Save stores a secret of the given kind for a profile.
func Save(store Store, profile, kind, account, secret string) error {
	return store.Set(util.PasswordKey(profile, kind), account, secret)
}
