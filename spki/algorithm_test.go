package spki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AlgorithmIdentifier for id-ecPublicKey with prime256v1 parameters, as
// emitted by OpenSSL inside a PKCS#8 EC key.
var ecP256AlgID = []byte{
	0x30, 0x13,
	0x06, 0x07, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01,
	0x06, 0x08, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07,
}

func TestParseAlgorithmIdentifier(t *testing.T) {
	ai, err := ParseAlgorithmIdentifier(ecP256AlgID)
	require.NoError(t, err)
	assert.True(t, ai.OID.Equal(OIDECPublicKey))

	curve, err := ai.ParametersOID()
	require.NoError(t, err)
	assert.True(t, curve.Equal(OIDNamedCurveP256))

	out, err := ai.Marshal()
	require.NoError(t, err)
	assert.Equal(t, ecP256AlgID, out)
}

func TestParseAlgorithmIdentifierNoParameters(t *testing.T) {
	der := []byte{0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70}
	ai, err := ParseAlgorithmIdentifier(der)
	require.NoError(t, err)
	assert.True(t, ai.OID.Equal(OIDEd25519))
	assert.Nil(t, ai.Parameters)
	assert.False(t, ai.IsNullParameters())

	out, err := ai.Marshal()
	require.NoError(t, err)
	assert.Equal(t, der, out)
}

func TestParseAlgorithmIdentifierNullParameters(t *testing.T) {
	der := []byte{
		0x30, 0x0d,
		0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x01, 0x01,
		0x05, 0x00,
	}
	ai, err := ParseAlgorithmIdentifier(der)
	require.NoError(t, err)
	assert.True(t, ai.OID.Equal(OIDRSAEncryption))
	assert.True(t, ai.IsNullParameters())

	_, err = ai.ParametersOID()
	assert.ErrorIs(t, err, ErrMalformedDER)
}

func TestParseAlgorithmIdentifierRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		der  []byte
	}{
		{"not a sequence", []byte{0x04, 0x02, 0x01, 0x02}},
		{"missing oid", []byte{0x30, 0x02, 0x05, 0x00}},
		{"trailing bytes after sequence", append(append([]byte(nil), ecP256AlgID...), 0x00)},
		{"extra element inside sequence", []byte{
			0x30, 0x09,
			0x06, 0x03, 0x2b, 0x65, 0x70,
			0x05, 0x00,
			0x05, 0x00,
		}},
		{"truncated", ecP256AlgID[:10]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAlgorithmIdentifier(tt.der)
			assert.ErrorIs(t, err, ErrMalformedDER)
		})
	}
}

func TestAlgorithmIdentifierEqualAndAssert(t *testing.T) {
	ai, err := ParseAlgorithmIdentifier(ecP256AlgID)
	require.NoError(t, err)

	other := AlgorithmIdentifier{OID: OIDECPublicKey}
	assert.False(t, ai.Equal(other), "parameter bytes differ")
	assert.NoError(t, ai.AssertOID(OIDECPublicKey))
	assert.ErrorIs(t, ai.AssertOID(OIDEd25519), ErrMalformedDER)
}

func TestMarshalZeroOID(t *testing.T) {
	_, err := AlgorithmIdentifier{}.Marshal()
	assert.ErrorIs(t, err, ErrMalformedDER)
}
