// Package pkcs8 implements the PKCS#8 PrivateKeyInfo container (RFC 5208)
// and its v2 OneAsymmetricKey extension (RFC 5958), together with the
// EncryptedPrivateKeyInfo wrapper whose PBES2 pipeline lives in pkcs5.
//
// The private-key payload stays opaque here: it is that algorithm's own DER
// structure, re-decoded by the caller once the algorithm OID is known. The
// ECPrivateKey helper covers the one re-decode this module knows about.
package pkcs8

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/opd-ai/keycodec/internal/trace"
	"github.com/opd-ai/keycodec/sec1"
	"github.com/opd-ai/keycodec/spki"
	"github.com/opd-ai/keycodec/zeroize"
)

// ErrUnsupportedVersion reports a PrivateKeyInfo version outside {0, 1}.
// Callers may match it to reject future-format keys gracefully.
var ErrUnsupportedVersion = errors.New("pkcs8: unsupported PrivateKeyInfo version")

// PrivateKeyInfo versions: v1 is RFC 5208, v2 is the RFC 5958
// OneAsymmetricKey form that may carry a public key.
const (
	VersionV1 = 0
	VersionV2 = 1
)

// PrivateKeyInfo is a decoded PKCS#8 private-key container.
//
//	PrivateKeyInfo ::= SEQUENCE {
//	  version                   INTEGER { v1(0), v2(1) },
//	  privateKeyAlgorithm       AlgorithmIdentifier,
//	  privateKey                OCTET STRING,
//	  attributes           [0] IMPLICIT SET OPTIONAL,
//	  publicKey            [1] IMPLICIT BIT STRING OPTIONAL
//	}
//
// PrivateKey holds the algorithm-specific DER blob. Attributes holds the
// raw content of the [0] element, passed through untouched. PublicKey is
// only legal with version 1; Marshal upgrades the version automatically
// when a public key is present.
type PrivateKeyInfo struct {
	Version    int
	Algorithm  spki.AlgorithmIdentifier
	PrivateKey []byte
	Attributes []byte
	PublicKey  []byte
}

var (
	tagAttributes = cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()
	tagPublicKey  = cryptobyte_asn1.Tag(1).ContextSpecific()
)

// Parse decodes a DER PrivateKeyInfo.
func Parse(der []byte) (*PrivateKeyInfo, error) {
	log := trace.Logger("pkcs8", "Parse")

	input := cryptobyte.String(der)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cryptobyte_asn1.SEQUENCE) {
		return nil, fmt.Errorf("pkcs8: PrivateKeyInfo is not a SEQUENCE: %w", spki.ErrMalformedDER)
	}
	if !input.Empty() {
		return nil, fmt.Errorf("pkcs8: trailing bytes after PrivateKeyInfo: %w", spki.ErrMalformedDER)
	}

	var version int64
	if !body.ReadASN1Integer(&version) {
		return nil, fmt.Errorf("pkcs8: bad version INTEGER: %w", spki.ErrMalformedDER)
	}
	if version != VersionV1 && version != VersionV2 {
		return nil, fmt.Errorf("pkcs8: version %d: %w", version, ErrUnsupportedVersion)
	}

	alg, err := spki.ReadAlgorithmIdentifier(&body)
	if err != nil {
		return nil, err
	}

	var rawKey cryptobyte.String
	if !body.ReadASN1(&rawKey, cryptobyte_asn1.OCTET_STRING) {
		return nil, fmt.Errorf("pkcs8: bad privateKey OCTET STRING: %w", spki.ErrMalformedDER)
	}

	info := &PrivateKeyInfo{
		Version:    int(version),
		Algorithm:  alg,
		PrivateKey: append([]byte(nil), rawKey...),
	}

	var attrs cryptobyte.String
	var hasAttrs bool
	if !body.ReadOptionalASN1(&attrs, &hasAttrs, tagAttributes) {
		return nil, fmt.Errorf("pkcs8: bad attributes field: %w", spki.ErrMalformedDER)
	}
	if hasAttrs {
		info.Attributes = append([]byte(nil), attrs...)
	}

	var pub cryptobyte.String
	var hasPub bool
	if !body.ReadOptionalASN1(&pub, &hasPub, tagPublicKey) {
		return nil, fmt.Errorf("pkcs8: bad publicKey field: %w", spki.ErrMalformedDER)
	}
	if hasPub {
		if version == VersionV1 {
			return nil, fmt.Errorf("pkcs8: v1 PrivateKeyInfo has no publicKey field: %w", spki.ErrMalformedDER)
		}
		// [1] IMPLICIT BIT STRING: content is the unused-bit count followed
		// by the key bytes. Key material is always byte aligned.
		if len(pub) == 0 || pub[0] != 0 {
			return nil, fmt.Errorf("pkcs8: publicKey BIT STRING with partial final byte: %w", spki.ErrMalformedDER)
		}
		info.PublicKey = append([]byte(nil), pub[1:]...)
	}

	if !body.Empty() {
		return nil, fmt.Errorf("pkcs8: unexpected trailing elements in PrivateKeyInfo: %w", spki.ErrMalformedDER)
	}

	log.WithFields(map[string]interface{}{
		"version":    info.Version,
		"algorithm":  info.Algorithm.OID.String(),
		"has_attrs":  info.Attributes != nil,
		"has_public": info.PublicKey != nil,
	}).Debug("decoded PrivateKeyInfo")
	return info, nil
}

// Marshal encodes the structure as DER. The emitted version is 1 whenever a
// public key is present, otherwise whatever Version holds (the zero value
// being v1). A version pinned outside {0, 1} fails.
func (info *PrivateKeyInfo) Marshal() ([]byte, error) {
	version := info.Version
	if info.PublicKey != nil {
		version = VersionV2
	}
	if version != VersionV1 && version != VersionV2 {
		return nil, fmt.Errorf("pkcs8: version %d: %w", version, ErrUnsupportedVersion)
	}

	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(int64(version))
		info.Algorithm.AddTo(b)
		b.AddASN1OctetString(info.PrivateKey)
		if info.Attributes != nil {
			b.AddASN1(tagAttributes, func(b *cryptobyte.Builder) {
				b.AddBytes(info.Attributes)
			})
		}
		if info.PublicKey != nil {
			b.AddASN1(tagPublicKey, func(b *cryptobyte.Builder) {
				b.AddUint8(0)
				b.AddBytes(info.PublicKey)
			})
		}
	})
	return b.Bytes()
}

// ECPrivateKey re-decodes the opaque payload as a SEC1 ECPrivateKey. It
// fails unless the algorithm is id-ecPublicKey.
func (info *PrivateKeyInfo) ECPrivateKey() (*sec1.PrivateKey, error) {
	if err := info.Algorithm.AssertOID(spki.OIDECPublicKey); err != nil {
		return nil, err
	}
	return sec1.Parse(info.PrivateKey)
}

// NamedCurve returns the curve OID from the algorithm parameters of an
// id-ecPublicKey key.
func (info *PrivateKeyInfo) NamedCurve() (spki.ObjectIdentifier, error) {
	if err := info.Algorithm.AssertOID(spki.OIDECPublicKey); err != nil {
		return spki.ObjectIdentifier{}, err
	}
	return info.Algorithm.ParametersOID()
}

// Wipe overwrites the private-key payload. The structure must not be used
// afterwards.
func (info *PrivateKeyInfo) Wipe() {
	zeroize.Wipe(info.PrivateKey)
}
