package spki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOIDCanonicalEncoding(t *testing.T) {
	tests := []struct {
		name   string
		dotted string
		der    []byte
	}{
		{
			name:   "id-ecPublicKey",
			dotted: "1.2.840.10045.2.1",
			der:    []byte{0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01},
		},
		{
			name:   "prime256v1",
			dotted: "1.2.840.10045.3.1.7",
			der:    []byte{0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07},
		},
		{
			name:   "pbes2",
			dotted: "1.2.840.113549.1.5.13",
			der:    []byte{0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x05, 0x0d},
		},
		{
			name:   "joint-iso large second arc",
			dotted: "2.999.3",
			der:    []byte{0x88, 0x37, 0x03},
		},
		{
			name:   "ed25519",
			dotted: "1.3.101.112",
			der:    []byte{0x2b, 0x65, 0x70},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oid, err := ParseOID(tt.dotted)
			require.NoError(t, err)
			assert.Equal(t, tt.der, oid.DER())
			assert.Equal(t, tt.dotted, oid.String())

			back, err := OIDFromDER(tt.der)
			require.NoError(t, err)
			assert.True(t, back.Equal(oid))
			assert.Equal(t, oid.Arcs(), back.Arcs())
		})
	}
}

func TestOIDFromDERRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", []byte{}},
		{"leading continuation byte", []byte{0x80, 0x01}},
		{"non-minimal inner arc", []byte{0x2a, 0x80, 0x01}},
		{"truncated arc", []byte{0x2a, 0x86}},
		{"trailing continuation", []byte{0x2a, 0xff}},
		{"arc overflow", []byte{0x2a, 0x90, 0x80, 0x80, 0x80, 0x80, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OIDFromDER(tt.content)
			assert.ErrorIs(t, err, ErrMalformedDER)
		})
	}
}

func TestNewOIDArcConstraints(t *testing.T) {
	_, err := NewOID(3, 1)
	assert.ErrorIs(t, err, ErrMalformedDER, "first arc above 2")

	_, err = NewOID(1, 40)
	assert.ErrorIs(t, err, ErrMalformedDER, "second arc must be below 40 when first is 0 or 1")

	_, err = NewOID(1)
	assert.ErrorIs(t, err, ErrMalformedDER, "single arc")

	oid, err := NewOID(2, 100, 3)
	require.NoError(t, err)
	assert.Equal(t, "2.100.3", oid.String())
}

func TestOIDEqual(t *testing.T) {
	a := MustOID("1.2.840.10045.3.1.7")
	b := MustOID("1.2.840.10045.3.1.7")
	c := MustOID("1.3.132.0.34")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(ObjectIdentifier{}))
	assert.True(t, ObjectIdentifier{}.IsZero())
}

func TestOIDImmutability(t *testing.T) {
	oid := MustOID("1.2.840.10045.2.1")
	der := oid.DER()
	der[0] = 0xff
	arcs := oid.Arcs()
	arcs[0] = 99

	assert.Equal(t, []byte{0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01}, oid.DER())
	assert.Equal(t, []uint32{1, 2, 840, 10045, 2, 1}, oid.Arcs())
}
