// Package sec1 implements the SEC1 ECPrivateKey DER structure and the SEC1
// elliptic-curve point octet-string codec (RFC 5915 / SEC1 v2).
//
// The structure is curve-agnostic: the private scalar's width is accepted as
// given and decoded point coordinates are not checked against any curve.
// Both validations belong to the curve-aware caller.
package sec1

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/opd-ai/keycodec/internal/trace"
	"github.com/opd-ai/keycodec/spki"
	"github.com/opd-ai/keycodec/zeroize"
)

// ErrUnsupportedVersion reports an ECPrivateKey whose version INTEGER is
// not ecPrivkeyVer1. Callers may match it to detect future-format keys.
var ErrUnsupportedVersion = errors.New("sec1: unsupported ECPrivateKey version")

// ecPrivkeyVer1 is the only version SEC1 defines.
const ecPrivkeyVer1 = 1

// PrivateKey is a decoded SEC1 ECPrivateKey.
//
//	ECPrivateKey ::= SEQUENCE {
//	  version        INTEGER { ecPrivkeyVer1(1) } (ecPrivkeyVer1),
//	  privateKey     OCTET STRING,
//	  parameters [0] ECParameters OPTIONAL,
//	  publicKey  [1] BIT STRING OPTIONAL
//	}
//
// NamedCurve is nil when the parameters field is absent; PublicKey is nil
// when the publicKey field is absent and otherwise holds the SEC1 point
// octets carried inside the bit string.
type PrivateKey struct {
	Scalar     []byte
	NamedCurve *spki.ObjectIdentifier
	PublicKey  []byte
}

var (
	tagParameters = cryptobyte_asn1.Tag(0).Constructed().ContextSpecific()
	tagPublicKey  = cryptobyte_asn1.Tag(1).Constructed().ContextSpecific()
)

// Parse decodes a DER ECPrivateKey. The optional fields may each be absent,
// but when present must appear in schema order; duplicated or reordered
// context tags fail with spki.ErrMalformedDER.
func Parse(der []byte) (*PrivateKey, error) {
	log := trace.Logger("sec1", "Parse")

	input := cryptobyte.String(der)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cryptobyte_asn1.SEQUENCE) {
		return nil, fmt.Errorf("sec1: ECPrivateKey is not a SEQUENCE: %w", spki.ErrMalformedDER)
	}
	if !input.Empty() {
		return nil, fmt.Errorf("sec1: trailing bytes after ECPrivateKey: %w", spki.ErrMalformedDER)
	}

	var version int64
	if !body.ReadASN1Integer(&version) {
		return nil, fmt.Errorf("sec1: bad version INTEGER: %w", spki.ErrMalformedDER)
	}
	if version != ecPrivkeyVer1 {
		return nil, fmt.Errorf("sec1: version %d: %w", version, ErrUnsupportedVersion)
	}

	var rawScalar cryptobyte.String
	if !body.ReadASN1(&rawScalar, cryptobyte_asn1.OCTET_STRING) {
		return nil, fmt.Errorf("sec1: bad privateKey OCTET STRING: %w", spki.ErrMalformedDER)
	}

	key := &PrivateKey{Scalar: append([]byte(nil), rawScalar...)}

	var params cryptobyte.String
	var hasParams bool
	if !body.ReadOptionalASN1(&params, &hasParams, tagParameters) {
		return nil, fmt.Errorf("sec1: bad parameters field: %w", spki.ErrMalformedDER)
	}
	if hasParams {
		var rawOID cryptobyte.String
		if !params.ReadASN1(&rawOID, cryptobyte_asn1.OBJECT_IDENTIFIER) || !params.Empty() {
			return nil, fmt.Errorf("sec1: parameters are not a named curve OID: %w", spki.ErrMalformedDER)
		}
		oid, err := spki.OIDFromDER(rawOID)
		if err != nil {
			return nil, err
		}
		key.NamedCurve = &oid
	}

	var pub cryptobyte.String
	var hasPub bool
	if !body.ReadOptionalASN1(&pub, &hasPub, tagPublicKey) {
		return nil, fmt.Errorf("sec1: bad publicKey field: %w", spki.ErrMalformedDER)
	}
	if hasPub {
		point, err := readWholeByteBitString(&pub)
		if err != nil {
			return nil, fmt.Errorf("sec1: publicKey: %w", err)
		}
		if !pub.Empty() {
			return nil, fmt.Errorf("sec1: trailing bytes in publicKey field: %w", spki.ErrMalformedDER)
		}
		key.PublicKey = point
	}

	// A context tag here is either a duplicate or was out of order.
	if !body.Empty() {
		return nil, fmt.Errorf("sec1: unexpected trailing elements in ECPrivateKey: %w", spki.ErrMalformedDER)
	}

	log.WithFields(map[string]interface{}{
		"scalar_len": len(key.Scalar),
		"has_curve":  key.NamedCurve != nil,
		"has_public": key.PublicKey != nil,
	}).Debug("decoded ECPrivateKey")
	return key, nil
}

// Marshal encodes the key as DER, emitting version, scalar, then the
// optional fields in schema order and omitting absent ones entirely.
func (k *PrivateKey) Marshal() ([]byte, error) {
	if len(k.Scalar) == 0 {
		return nil, fmt.Errorf("sec1: empty private scalar: %w", spki.ErrMalformedDER)
	}

	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(ecPrivkeyVer1)
		b.AddASN1OctetString(k.Scalar)
		if k.NamedCurve != nil {
			b.AddASN1(tagParameters, func(b *cryptobyte.Builder) {
				b.AddASN1(cryptobyte_asn1.OBJECT_IDENTIFIER, func(b *cryptobyte.Builder) {
					b.AddBytes(k.NamedCurve.DER())
				})
			})
		}
		if k.PublicKey != nil {
			b.AddASN1(tagPublicKey, func(b *cryptobyte.Builder) {
				b.AddASN1BitString(k.PublicKey)
			})
		}
	})
	return b.Bytes()
}

// Wipe overwrites the private scalar. The key must not be used afterwards.
func (k *PrivateKey) Wipe() {
	zeroize.Wipe(k.Scalar)
}

// readWholeByteBitString reads a BIT STRING whose bit count is a whole
// number of bytes and returns a copy of its bytes. Key material in these
// formats is always byte-aligned.
func readWholeByteBitString(s *cryptobyte.String) ([]byte, error) {
	var raw cryptobyte.String
	if !s.ReadASN1(&raw, cryptobyte_asn1.BIT_STRING) {
		return nil, fmt.Errorf("not a BIT STRING: %w", spki.ErrMalformedDER)
	}
	if len(raw) == 0 || raw[0] != 0 {
		return nil, fmt.Errorf("BIT STRING with partial final byte: %w", spki.ErrMalformedDER)
	}
	return append([]byte(nil), raw[1:]...), nil
}
