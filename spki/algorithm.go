package spki

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var derNull = []byte{0x05, 0x00}

// AlgorithmIdentifier pairs an algorithm OID with the raw DER of its
// optional parameter element. Parameters is nil when the field is absent
// and holds the complete TLV of the parameter element otherwise; its
// interpretation (a curve OID, a PBES2 parameter sequence, NULL, ...) is up
// to whoever recognizes the OID.
type AlgorithmIdentifier struct {
	OID        ObjectIdentifier
	Parameters []byte
}

// ParseAlgorithmIdentifier decodes a standalone DER AlgorithmIdentifier.
// Trailing bytes after the sequence are rejected.
func ParseAlgorithmIdentifier(der []byte) (AlgorithmIdentifier, error) {
	input := cryptobyte.String(der)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cryptobyte_asn1.SEQUENCE) {
		return AlgorithmIdentifier{}, fmt.Errorf("spki: AlgorithmIdentifier is not a SEQUENCE: %w", ErrMalformedDER)
	}
	if !input.Empty() {
		return AlgorithmIdentifier{}, fmt.Errorf("spki: trailing bytes after AlgorithmIdentifier: %w", ErrMalformedDER)
	}
	return readAlgorithmIdentifierBody(&body)
}

// ReadAlgorithmIdentifier consumes one AlgorithmIdentifier SEQUENCE from s.
// It is the entry point used by the sec1/pkcs8/pkcs5 structure parsers.
func ReadAlgorithmIdentifier(s *cryptobyte.String) (AlgorithmIdentifier, error) {
	var body cryptobyte.String
	if !s.ReadASN1(&body, cryptobyte_asn1.SEQUENCE) {
		return AlgorithmIdentifier{}, fmt.Errorf("spki: AlgorithmIdentifier is not a SEQUENCE: %w", ErrMalformedDER)
	}
	return readAlgorithmIdentifierBody(&body)
}

func readAlgorithmIdentifierBody(body *cryptobyte.String) (AlgorithmIdentifier, error) {
	var rawOID cryptobyte.String
	if !body.ReadASN1(&rawOID, cryptobyte_asn1.OBJECT_IDENTIFIER) {
		return AlgorithmIdentifier{}, fmt.Errorf("spki: AlgorithmIdentifier missing OID: %w", ErrMalformedDER)
	}
	oid, err := OIDFromDER(rawOID)
	if err != nil {
		return AlgorithmIdentifier{}, err
	}

	ai := AlgorithmIdentifier{OID: oid}
	if !body.Empty() {
		var param cryptobyte.String
		var tag cryptobyte_asn1.Tag
		if !body.ReadAnyASN1Element(&param, &tag) {
			return AlgorithmIdentifier{}, fmt.Errorf("spki: bad AlgorithmIdentifier parameters: %w", ErrMalformedDER)
		}
		if !body.Empty() {
			return AlgorithmIdentifier{}, fmt.Errorf("spki: trailing bytes after AlgorithmIdentifier parameters: %w", ErrMalformedDER)
		}
		ai.Parameters = append([]byte(nil), param...)
	}
	return ai, nil
}

// Marshal encodes the AlgorithmIdentifier as a DER SEQUENCE.
func (ai AlgorithmIdentifier) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	ai.AddTo(b)
	return b.Bytes()
}

// AddTo appends the AlgorithmIdentifier SEQUENCE to an in-progress builder.
func (ai AlgorithmIdentifier) AddTo(b *cryptobyte.Builder) {
	if ai.OID.IsZero() {
		b.SetError(fmt.Errorf("spki: cannot encode zero OID: %w", ErrMalformedDER))
		return
	}
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cryptobyte_asn1.OBJECT_IDENTIFIER, func(b *cryptobyte.Builder) {
			b.AddBytes(ai.OID.der)
		})
		if ai.Parameters != nil {
			b.AddBytes(ai.Parameters)
		}
	})
}

// ParametersOID interprets the parameter element as an OBJECT IDENTIFIER,
// the shape used by id-ecPublicKey to carry a named curve.
func (ai AlgorithmIdentifier) ParametersOID() (ObjectIdentifier, error) {
	if ai.Parameters == nil {
		return ObjectIdentifier{}, fmt.Errorf("spki: no parameters present: %w", ErrMalformedDER)
	}
	input := cryptobyte.String(ai.Parameters)
	var rawOID cryptobyte.String
	if !input.ReadASN1(&rawOID, cryptobyte_asn1.OBJECT_IDENTIFIER) || !input.Empty() {
		return ObjectIdentifier{}, fmt.Errorf("spki: parameters are not an OID: %w", ErrMalformedDER)
	}
	return OIDFromDER(rawOID)
}

// IsNullParameters reports whether the parameter element is an ASN.1 NULL,
// the conventional placeholder for algorithms without parameters.
func (ai AlgorithmIdentifier) IsNullParameters() bool {
	return bytes.Equal(ai.Parameters, derNull)
}

// Equal compares OID and raw parameter bytes. The OID comparison is
// constant-time; parameters are public structure and compared directly.
func (ai AlgorithmIdentifier) Equal(other AlgorithmIdentifier) bool {
	return ai.OID.Equal(other.OID) && bytes.Equal(ai.Parameters, other.Parameters)
}

// AssertOID fails with ErrMalformedDER unless the identifier carries the
// expected OID. Used by callers that already know which algorithm a
// structure must contain.
func (ai AlgorithmIdentifier) AssertOID(want ObjectIdentifier) error {
	if !ai.OID.Equal(want) {
		return fmt.Errorf("spki: unexpected algorithm %v (want %v): %w", ai.OID, want, ErrMalformedDER)
	}
	return nil
}
