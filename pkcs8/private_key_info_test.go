package pkcs8

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/keycodec/sec1"
	"github.com/opd-ai/keycodec/spki"
)

func ecAlgorithm(t *testing.T) spki.AlgorithmIdentifier {
	t.Helper()
	curveParam := append([]byte{0x06, 0x08}, spki.OIDNamedCurveP256.DER()...)
	return spki.AlgorithmIdentifier{OID: spki.OIDECPublicKey, Parameters: curveParam}
}

func testECInfo(t *testing.T) *PrivateKeyInfo {
	t.Helper()
	scalar := make([]byte, 32)
	_, err := rand.Read(scalar)
	require.NoError(t, err)

	payload, err := (&sec1.PrivateKey{Scalar: scalar}).Marshal()
	require.NoError(t, err)

	return &PrivateKeyInfo{
		Algorithm:  ecAlgorithm(t),
		PrivateKey: payload,
	}
}

func TestPrivateKeyInfoRoundTrip(t *testing.T) {
	emptySet := []byte{0x31, 0x00}
	pub := bytes.Repeat([]byte{0x5a}, 65)

	tests := []struct {
		name    string
		mutate  func(*PrivateKeyInfo)
		version int
	}{
		{"v1 minimal", func(info *PrivateKeyInfo) {}, VersionV1},
		{"v1 with attributes", func(info *PrivateKeyInfo) {
			info.Attributes = emptySet
		}, VersionV1},
		{"v2 with public key", func(info *PrivateKeyInfo) {
			info.PublicKey = pub
		}, VersionV2},
		{"v2 with attributes and public key", func(info *PrivateKeyInfo) {
			info.Attributes = emptySet
			info.PublicKey = pub
		}, VersionV2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := testECInfo(t)
			tt.mutate(info)

			der, err := info.Marshal()
			require.NoError(t, err)

			back, err := Parse(der)
			require.NoError(t, err)
			assert.Equal(t, tt.version, back.Version, "version follows public-key presence")
			assert.True(t, back.Algorithm.Equal(info.Algorithm))
			assert.Equal(t, info.PrivateKey, back.PrivateKey)
			assert.Equal(t, info.Attributes, back.Attributes)
			assert.Equal(t, info.PublicKey, back.PublicKey)

			again, err := back.Marshal()
			require.NoError(t, err)
			assert.Equal(t, der, again, "re-encoding must be byte identical")
		})
	}
}

func TestMarshalNeverEmitsPublicKeyForV1(t *testing.T) {
	info := testECInfo(t)
	der, err := info.Marshal()
	require.NoError(t, err)
	// The [1] context tag (0x81) must not appear as a top-level element;
	// quickest check: parsing back yields v1 and no public key.
	back, err := Parse(der)
	require.NoError(t, err)
	assert.Equal(t, VersionV1, back.Version)
	assert.Nil(t, back.PublicKey)
}

func TestMarshalRejectsPinnedBadVersion(t *testing.T) {
	info := testECInfo(t)
	info.Version = 7
	_, err := info.Marshal()
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestParseRejectsUnknownVersion(t *testing.T) {
	for _, version := range []byte{0x02, 0x7f} {
		der := []byte{
			0x30, 0x0e,
			0x02, 0x01, version,
			0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70,
			0x04, 0x02, 0xaa, 0xbb,
		}
		_, err := Parse(der)
		assert.ErrorIs(t, err, ErrUnsupportedVersion, "version %d", version)
	}
}

func TestParseRejectsPublicKeyWithV1(t *testing.T) {
	der := []byte{
		0x30, 0x13,
		0x02, 0x01, 0x00,
		0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70,
		0x04, 0x02, 0xaa, 0xbb,
		0x81, 0x03, 0x00, 0xcc, 0xdd,
	}
	_, err := Parse(der)
	assert.ErrorIs(t, err, spki.ErrMalformedDER)
}

func TestParseRejectsTagOrderViolation(t *testing.T) {
	// v2 key with [1] before [0]: both fields valid alone, order is not.
	der := []byte{
		0x30, 0x17,
		0x02, 0x01, 0x01,
		0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70,
		0x04, 0x02, 0xaa, 0xbb,
		0x81, 0x03, 0x00, 0xcc, 0xdd,
		0xa0, 0x02, 0x31, 0x00,
	}
	_, err := Parse(der)
	assert.ErrorIs(t, err, spki.ErrMalformedDER)
}

func TestParseRejectsStructuralDamage(t *testing.T) {
	info := testECInfo(t)
	der, err := info.Marshal()
	require.NoError(t, err)

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := Parse(append(append([]byte(nil), der...), 0x00))
		assert.ErrorIs(t, err, spki.ErrMalformedDER)
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := Parse(der[:len(der)-2])
		assert.ErrorIs(t, err, spki.ErrMalformedDER)
	})
	t.Run("missing algorithm", func(t *testing.T) {
		_, err := Parse([]byte{0x30, 0x03, 0x02, 0x01, 0x00})
		assert.ErrorIs(t, err, spki.ErrMalformedDER)
	})
	t.Run("partial-byte public key bit string", func(t *testing.T) {
		bad := []byte{
			0x30, 0x13,
			0x02, 0x01, 0x01,
			0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70,
			0x04, 0x02, 0xaa, 0xbb,
			0x81, 0x03, 0x04, 0xcc, 0xdd,
		}
		_, err := Parse(bad)
		assert.ErrorIs(t, err, spki.ErrMalformedDER)
	})
}

func TestECPrivateKeyHelper(t *testing.T) {
	scalar := bytes.Repeat([]byte{0x42}, 32)
	payload, err := (&sec1.PrivateKey{Scalar: scalar}).Marshal()
	require.NoError(t, err)

	info := &PrivateKeyInfo{Algorithm: ecAlgorithm(t), PrivateKey: payload}

	ecKey, err := info.ECPrivateKey()
	require.NoError(t, err)
	assert.Equal(t, scalar, ecKey.Scalar)

	curve, err := info.NamedCurve()
	require.NoError(t, err)
	assert.True(t, curve.Equal(spki.OIDNamedCurveP256))

	// Foreign algorithm: helper must refuse rather than misparse.
	info.Algorithm = spki.AlgorithmIdentifier{OID: spki.OIDEd25519}
	_, err = info.ECPrivateKey()
	assert.ErrorIs(t, err, spki.ErrMalformedDER)
}

func TestPrivateKeyInfoWipe(t *testing.T) {
	info := testECInfo(t)
	payloadLen := len(info.PrivateKey)
	info.Wipe()
	assert.Equal(t, make([]byte, payloadLen), info.PrivateKey)
}
