package sec1

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/keycodec/spki"
)

var p256OID = spki.OIDNamedCurveP256

func testKey(t *testing.T, withCurve, withPublic bool) *PrivateKey {
	t.Helper()
	key := &PrivateKey{Scalar: make([]byte, 32)}
	_, err := rand.Read(key.Scalar)
	require.NoError(t, err)

	if withCurve {
		oid := p256OID
		key.NamedCurve = &oid
	}
	if withPublic {
		x := make([]byte, 32)
		y := make([]byte, 32)
		_, err = rand.Read(x)
		require.NoError(t, err)
		_, err = rand.Read(y)
		require.NoError(t, err)
		point, err := EncodePoint(32, x, y, false)
		require.NoError(t, err)
		key.PublicKey = point
	}
	return key
}

func TestPrivateKeyRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		withCurve  bool
		withPublic bool
	}{
		{"scalar only", false, false},
		{"with curve", true, false},
		{"with public", false, true},
		{"with curve and public", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := testKey(t, tt.withCurve, tt.withPublic)

			der, err := key.Marshal()
			require.NoError(t, err)

			back, err := Parse(der)
			require.NoError(t, err)
			assert.Equal(t, key.Scalar, back.Scalar)
			assert.Equal(t, key.PublicKey, back.PublicKey)
			if tt.withCurve {
				require.NotNil(t, back.NamedCurve)
				assert.True(t, back.NamedCurve.Equal(p256OID))
			} else {
				assert.Nil(t, back.NamedCurve)
			}

			again, err := back.Marshal()
			require.NoError(t, err)
			assert.Equal(t, der, again, "re-encoding must be byte identical")
		})
	}
}

// The deterministic layout from SEC1: a 32-byte scalar with the P-256 curve
// OID and an uncompressed public point always starts 30 77 02 01 01 04 20.
func TestPrivateKeyKnownAnswerLayout(t *testing.T) {
	scalar := bytes.Repeat([]byte{0x11}, 32)
	x := bytes.Repeat([]byte{0x22}, 32)
	y := bytes.Repeat([]byte{0x33}, 32)
	point, err := EncodePoint(32, x, y, false)
	require.NoError(t, err)

	oid := p256OID
	key := &PrivateKey{Scalar: scalar, NamedCurve: &oid, PublicKey: point}

	der, err := key.Marshal()
	require.NoError(t, err)

	var expected []byte
	expected = append(expected, 0x30, 0x77)
	expected = append(expected, 0x02, 0x01, 0x01)
	expected = append(expected, 0x04, 0x20)
	expected = append(expected, scalar...)
	expected = append(expected, 0xa0, 0x0a, 0x06, 0x08, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x03, 0x01, 0x07)
	expected = append(expected, 0xa1, 0x44, 0x03, 0x42, 0x00)
	expected = append(expected, point...)
	assert.Equal(t, expected, der)

	back, err := Parse(der)
	require.NoError(t, err)
	assert.Equal(t, scalar, back.Scalar)
	assert.True(t, back.NamedCurve.Equal(p256OID))
	assert.Equal(t, point, back.PublicKey)
}

func TestParseRejectsWrongVersion(t *testing.T) {
	for _, version := range []byte{0x00, 0x02, 0x7f} {
		der := []byte{0x30, 0x07, 0x02, 0x01, version, 0x04, 0x02, 0xaa, 0xbb}
		_, err := Parse(der)
		assert.ErrorIs(t, err, ErrUnsupportedVersion, "version %d", version)
	}
}

func TestParseRejectsTagOrderViolations(t *testing.T) {
	// [1] before [0]: both tags valid on their own, order is not.
	var der []byte
	der = append(der, 0x30, 0x13)
	der = append(der, 0x02, 0x01, 0x01)
	der = append(der, 0x04, 0x02, 0xaa, 0xbb)
	der = append(der, 0xa1, 0x04, 0x03, 0x02, 0x00, 0xff)
	der = append(der, 0xa0, 0x04, 0x06, 0x02, 0x2b, 0x65)
	_, err := Parse(der)
	assert.ErrorIs(t, err, spki.ErrMalformedDER)

	// duplicate [0]
	var dup []byte
	dup = append(dup, 0x30, 0x13)
	dup = append(dup, 0x02, 0x01, 0x01)
	dup = append(dup, 0x04, 0x02, 0xaa, 0xbb)
	dup = append(dup, 0xa0, 0x04, 0x06, 0x02, 0x2b, 0x65)
	dup = append(dup, 0xa0, 0x04, 0x06, 0x02, 0x2b, 0x65)
	_, err = Parse(dup)
	assert.ErrorIs(t, err, spki.ErrMalformedDER)
}

func TestParseRejectsStructuralDamage(t *testing.T) {
	key := testKey(t, true, true)
	der, err := key.Marshal()
	require.NoError(t, err)

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := Parse(append(append([]byte(nil), der...), 0x00))
		assert.ErrorIs(t, err, spki.ErrMalformedDER)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := Parse(der[:len(der)-3])
		assert.ErrorIs(t, err, spki.ErrMalformedDER)
	})
	t.Run("not a sequence", func(t *testing.T) {
		_, err := Parse([]byte{0x04, 0x01, 0x00})
		assert.ErrorIs(t, err, spki.ErrMalformedDER)
	})
	t.Run("bit string with partial byte", func(t *testing.T) {
		var bad []byte
		bad = append(bad, 0x30, 0x0d)
		bad = append(bad, 0x02, 0x01, 0x01)
		bad = append(bad, 0x04, 0x02, 0xaa, 0xbb)
		bad = append(bad, 0xa1, 0x04, 0x03, 0x02, 0x03, 0xf8)
		_, err := Parse(bad)
		assert.ErrorIs(t, err, spki.ErrMalformedDER)
	})
}

func TestMarshalRejectsEmptyScalar(t *testing.T) {
	_, err := (&PrivateKey{}).Marshal()
	assert.ErrorIs(t, err, spki.ErrMalformedDER)
}

func TestPrivateKeyWipe(t *testing.T) {
	key := testKey(t, false, false)
	key.Wipe()
	assert.Equal(t, make([]byte, 32), key.Scalar)
}
