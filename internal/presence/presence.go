// Package presence implements the presence advertisement factory:
// CreateAdvertisement encodes an identity plus TLV data elements into the
// service-data bytes broadcast under the copresence UUID.
package presence

import (
	"fmt"

	"github.com/jorka30/nearby/internal/certmgr"
	"github.com/jorka30/nearby/internal/wireformat"
)

// BaseVersion is the version byte at the start of every presence body.
const BaseVersion = 0

// Request describes one outbound presence advertisement.
type Request struct {
	Identity certmgr.Identity
	Salt     []byte
	TxPower  int8
	Action   uint16
}

// identityFieldType maps a certmgr identity type to its data-element
// field type. Anything unrecognized is treated as Provisioned.
func identityFieldType(t certmgr.IdentityType) byte {
	switch t {
	case certmgr.Private:
		return wireformat.PrivateIdentity
	case certmgr.Trusted:
		return wireformat.TrustedIdentity
	case certmgr.Public:
		return wireformat.PublicIdentity
	default:
		return wireformat.ProvisionedIdentity
	}
}

// Factory builds presence advertisements against a certificate manager.
type Factory struct {
	Certs certmgr.Manager
}

// NewFactory returns a Factory backed by certs.
func NewFactory(certs certmgr.Manager) Factory {
	return Factory{Certs: certs}
}

// CreateAdvertisement runs the base-NP algorithm (spec component F):
//
//  1. emit the base version byte
//  2. optionally emit a salt data element
//  3. fetch and emit the (possibly encrypted) identity metadata key
//  4. build tx-power || action and encrypt it unless the identity is
//     public, in which case it is appended in the clear
//
// It returns the service-data bytes keyed by the copresence UUID.
func (f Factory) CreateAdvertisement(req Request) (map[wireformat.UUID][]byte, error) {
	var p wireformat.DataElementAppender
	if err := p.Append(BaseVersion, nil); err != nil {
		return nil, fmt.Errorf("presence: encode version: %w", err)
	}

	if len(req.Salt) > 0 {
		if err := p.Append(wireformat.Salt, req.Salt); err != nil {
			return nil, fmt.Errorf("presence: encode salt: %w", err)
		}
	}

	metadataKey, err := f.Certs.GetBaseEncryptedMetadataKey(req.Identity)
	if err != nil {
		return nil, err
	}
	if err := p.Append(identityFieldType(req.Identity.Type), metadataKey); err != nil {
		return nil, fmt.Errorf("presence: encode identity: %w", err)
	}

	var inner wireformat.DataElementAppender
	if err := inner.Append(wireformat.TxPower, []byte{byte(req.TxPower)}); err != nil {
		return nil, fmt.Errorf("presence: encode tx power: %w", err)
	}
	actionBytes := []byte{byte(req.Action >> 8), byte(req.Action)}
	if err := inner.Append(wireformat.Action, actionBytes); err != nil {
		return nil, fmt.Errorf("presence: encode action: %w", err)
	}

	innerBlock := inner.Bytes()
	if req.Identity.Type != certmgr.Public {
		encrypted, err := f.Certs.EncryptDataElements(req.Identity, req.Salt, innerBlock)
		if err != nil {
			return nil, err
		}
		innerBlock = encrypted
	}
	p.AppendRaw(innerBlock)

	return map[wireformat.UUID][]byte{
		wireformat.CopresenceServiceUUID: p.Bytes(),
	}, nil
}
