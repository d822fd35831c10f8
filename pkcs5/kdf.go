package pkcs5

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	"github.com/opd-ai/keycodec/spki"
)

// KDFParameters is the closed set of key-derivation functions PBES2 can
// name here: PBKDF2 or scrypt. Anything else fails at parse time with
// ErrUnsupportedKDF, so no open registration surface exists.
type KDFParameters interface {
	// DeriveKey stretches the password to exactly length bytes. The caller
	// owns the result and must wipe it.
	DeriveKey(password []byte, length int) ([]byte, error)

	algorithmIdentifier() (spki.AlgorithmIdentifier, error)
	sealedKDF()
}

// PBKDF2Params mirrors PBKDF2-params from RFC 8018 §5.2. A zero KeyLength
// means the optional field was absent and the cipher decides; a non-zero
// value must agree with the cipher's key size. A zero-value PRF means
// HMAC-SHA1, the schema default.
type PBKDF2Params struct {
	Salt       []byte
	Iterations int
	KeyLength  int
	PRF        spki.ObjectIdentifier
}

func (p *PBKDF2Params) sealedKDF() {}

func (p *PBKDF2Params) prfHash() (func() hash.Hash, error) {
	prf := p.PRF
	if prf.IsZero() {
		prf = OIDHMACWithSHA1
	}
	switch {
	case prf.Equal(OIDHMACWithSHA1):
		return sha1.New, nil
	case prf.Equal(OIDHMACWithSHA224):
		return sha256.New224, nil
	case prf.Equal(OIDHMACWithSHA256):
		return sha256.New, nil
	case prf.Equal(OIDHMACWithSHA384):
		return sha512.New384, nil
	case prf.Equal(OIDHMACWithSHA512):
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("pkcs5: PRF %v: %w", prf, ErrUnsupportedKDF)
	}
}

// DeriveKey runs PBKDF2 with the configured PRF.
func (p *PBKDF2Params) DeriveKey(password []byte, length int) ([]byte, error) {
	if p.KeyLength != 0 && p.KeyLength != length {
		return nil, fmt.Errorf("pkcs5: PBKDF2 keyLength %d does not match cipher key size %d: %w",
			p.KeyLength, length, spki.ErrMalformedDER)
	}
	if p.Iterations < 1 {
		return nil, fmt.Errorf("pkcs5: PBKDF2 iteration count %d: %w", p.Iterations, spki.ErrMalformedDER)
	}
	h, err := p.prfHash()
	if err != nil {
		return nil, err
	}
	return pbkdf2.Key(password, p.Salt, p.Iterations, length, h), nil
}

func (p *PBKDF2Params) algorithmIdentifier() (spki.AlgorithmIdentifier, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1OctetString(p.Salt)
		b.AddASN1Int64(int64(p.Iterations))
		if p.KeyLength > 0 {
			b.AddASN1Int64(int64(p.KeyLength))
		}
		// DER: the DEFAULT HMAC-SHA1 PRF must be omitted.
		if !p.PRF.IsZero() && !p.PRF.Equal(OIDHMACWithSHA1) {
			spki.AlgorithmIdentifier{OID: p.PRF, Parameters: []byte{0x05, 0x00}}.AddTo(b)
		}
	})
	params, err := b.Bytes()
	if err != nil {
		return spki.AlgorithmIdentifier{}, err
	}
	return spki.AlgorithmIdentifier{OID: OIDPBKDF2, Parameters: params}, nil
}

// ScryptParams mirrors scrypt-params from RFC 7914 §7.1.
type ScryptParams struct {
	Salt            []byte
	Cost            int
	BlockSize       int
	Parallelization int
	KeyLength       int
}

func (p *ScryptParams) sealedKDF() {}

// DeriveKey runs scrypt. Invalid cost parameters surface from the scrypt
// primitive and are reported as unsupported KDF configurations.
func (p *ScryptParams) DeriveKey(password []byte, length int) ([]byte, error) {
	if p.KeyLength != 0 && p.KeyLength != length {
		return nil, fmt.Errorf("pkcs5: scrypt keyLength %d does not match cipher key size %d: %w",
			p.KeyLength, length, spki.ErrMalformedDER)
	}
	key, err := scrypt.Key(password, p.Salt, p.Cost, p.BlockSize, p.Parallelization, length)
	if err != nil {
		return nil, fmt.Errorf("pkcs5: scrypt parameters (N=%d r=%d p=%d): %v: %w",
			p.Cost, p.BlockSize, p.Parallelization, err, ErrUnsupportedKDF)
	}
	return key, nil
}

func (p *ScryptParams) algorithmIdentifier() (spki.AlgorithmIdentifier, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1OctetString(p.Salt)
		b.AddASN1Int64(int64(p.Cost))
		b.AddASN1Int64(int64(p.BlockSize))
		b.AddASN1Int64(int64(p.Parallelization))
		if p.KeyLength > 0 {
			b.AddASN1Int64(int64(p.KeyLength))
		}
	})
	params, err := b.Bytes()
	if err != nil {
		return spki.AlgorithmIdentifier{}, err
	}
	return spki.AlgorithmIdentifier{OID: OIDScrypt, Parameters: params}, nil
}

// parseKDF dispatches on the keyDerivationFunc OID.
func parseKDF(ai spki.AlgorithmIdentifier) (KDFParameters, error) {
	switch {
	case ai.OID.Equal(OIDPBKDF2):
		return parsePBKDF2Params(ai.Parameters)
	case ai.OID.Equal(OIDScrypt):
		return parseScryptParams(ai.Parameters)
	default:
		return nil, fmt.Errorf("pkcs5: KDF %v: %w", ai.OID, ErrUnsupportedKDF)
	}
}

func parsePBKDF2Params(raw []byte) (*PBKDF2Params, error) {
	input := cryptobyte.String(raw)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("pkcs5: bad PBKDF2-params framing: %w", spki.ErrMalformedDER)
	}

	// The salt CHOICE also admits an otherSource AlgorithmIdentifier; only
	// the specified OCTET STRING form appears in real keys.
	if body.PeekASN1Tag(cryptobyte_asn1.SEQUENCE) {
		return nil, fmt.Errorf("pkcs5: PBKDF2 otherSource salt: %w", ErrUnsupportedKDF)
	}
	var salt cryptobyte.String
	if !body.ReadASN1(&salt, cryptobyte_asn1.OCTET_STRING) {
		return nil, fmt.Errorf("pkcs5: bad PBKDF2 salt: %w", spki.ErrMalformedDER)
	}

	params := &PBKDF2Params{Salt: append([]byte(nil), salt...)}

	var iterations int64
	if !body.ReadASN1Integer(&iterations) || iterations < 1 {
		return nil, fmt.Errorf("pkcs5: bad PBKDF2 iteration count: %w", spki.ErrMalformedDER)
	}
	params.Iterations = int(iterations)

	if body.PeekASN1Tag(cryptobyte_asn1.INTEGER) {
		var keyLength int64
		if !body.ReadASN1Integer(&keyLength) || keyLength < 1 {
			return nil, fmt.Errorf("pkcs5: bad PBKDF2 keyLength: %w", spki.ErrMalformedDER)
		}
		params.KeyLength = int(keyLength)
	}

	if !body.Empty() {
		prf, err := spki.ReadAlgorithmIdentifier(&body)
		if err != nil {
			return nil, err
		}
		if !body.Empty() {
			return nil, fmt.Errorf("pkcs5: trailing bytes in PBKDF2-params: %w", spki.ErrMalformedDER)
		}
		params.PRF = prf.OID
	}

	// Reject unknown PRFs at parse time rather than deep in derivation.
	if _, err := params.prfHash(); err != nil {
		return nil, err
	}
	return params, nil
}

func parseScryptParams(raw []byte) (*ScryptParams, error) {
	input := cryptobyte.String(raw)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("pkcs5: bad scrypt-params framing: %w", spki.ErrMalformedDER)
	}

	var salt cryptobyte.String
	if !body.ReadASN1(&salt, cryptobyte_asn1.OCTET_STRING) {
		return nil, fmt.Errorf("pkcs5: bad scrypt salt: %w", spki.ErrMalformedDER)
	}
	params := &ScryptParams{Salt: append([]byte(nil), salt...)}

	var cost, blockSize, parallelization int64
	if !body.ReadASN1Integer(&cost) || cost < 1 ||
		!body.ReadASN1Integer(&blockSize) || blockSize < 1 ||
		!body.ReadASN1Integer(&parallelization) || parallelization < 1 {
		return nil, fmt.Errorf("pkcs5: bad scrypt cost parameters: %w", spki.ErrMalformedDER)
	}
	params.Cost = int(cost)
	params.BlockSize = int(blockSize)
	params.Parallelization = int(parallelization)

	if !body.Empty() {
		var keyLength int64
		if !body.ReadASN1Integer(&keyLength) || keyLength < 1 {
			return nil, fmt.Errorf("pkcs5: bad scrypt keyLength: %w", spki.ErrMalformedDER)
		}
		params.KeyLength = int(keyLength)
		if !body.Empty() {
			return nil, fmt.Errorf("pkcs5: trailing bytes in scrypt-params: %w", spki.ErrMalformedDER)
		}
	}
	return params, nil
}
