// Package certmgr declares the abstract identity-encryption operations
// the presence advertisement factory depends on. The real certificate
// manager (key derivation, IBE, metadata decryption) lives above this
// layer and is out of scope here; this package only names the interface
// and provides a deterministic in-memory double for tests.
package certmgr

import "errors"

// IdentityType selects which of the caller's identities to encode.
type IdentityType int

const (
	Private IdentityType = iota
	Trusted
	Public
	Provisioned
)

// Identity names which credential an advertisement is broadcast under.
type Identity struct {
	Type IdentityType
}

// ErrIdentity is returned when no metadata key / encryption is currently
// available for an identity (spec.md §7 IdentityError). CreateAdvertisement
// propagates it unmodified.
var ErrIdentity = errors.New("certmgr: identity unavailable")

// Manager is the abstract certificate manager collaborator.
type Manager interface {
	// GetBaseEncryptedMetadataKey returns the encrypted metadata key
	// bytes to embed as the identity data element's value.
	GetBaseEncryptedMetadataKey(identity Identity) ([]byte, error)

	// EncryptDataElements encrypts the tx-power/action block for a
	// non-public identity, keyed by the given salt.
	EncryptDataElements(identity Identity, salt []byte, plaintext []byte) ([]byte, error)
}

// Static is a deterministic in-memory Manager double, useful for tests
// that need to reproduce a specific wire fixture without pulling in real
// cryptography.
type Static struct {
	MetadataKey   []byte
	EncryptedData []byte
}

func (s Static) GetBaseEncryptedMetadataKey(Identity) ([]byte, error) {
	if s.MetadataKey == nil {
		return nil, ErrIdentity
	}
	return s.MetadataKey, nil
}

func (s Static) EncryptDataElements(_ Identity, _ []byte, _ []byte) ([]byte, error) {
	if s.EncryptedData == nil {
		return nil, ErrIdentity
	}
	return s.EncryptedData, nil
}
