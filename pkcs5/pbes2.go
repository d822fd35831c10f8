package pkcs5

import (
	"fmt"
	"io"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/opd-ai/keycodec/internal/trace"
	"github.com/opd-ai/keycodec/spki"
	"github.com/opd-ai/keycodec/zeroize"
)

// Parameters is a decoded PBES2 parameter structure: one KDF and one
// encryption scheme.
type Parameters struct {
	KDF    KDFParameters
	Scheme EncryptionScheme
}

// ParseParameters decodes the AlgorithmIdentifier of an encrypted key.
// Only id-PBES2 is supported; any other OID fails with
// ErrUnsupportedScheme.
func ParseParameters(ai spki.AlgorithmIdentifier) (*Parameters, error) {
	if !ai.OID.Equal(OIDPBES2) {
		return nil, fmt.Errorf("pkcs5: scheme %v: %w", ai.OID, ErrUnsupportedScheme)
	}

	input := cryptobyte.String(ai.Parameters)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cryptobyte_asn1.SEQUENCE) || !input.Empty() {
		return nil, fmt.Errorf("pkcs5: bad PBES2-params framing: %w", spki.ErrMalformedDER)
	}

	kdfAlg, err := spki.ReadAlgorithmIdentifier(&body)
	if err != nil {
		return nil, err
	}
	encAlg, err := spki.ReadAlgorithmIdentifier(&body)
	if err != nil {
		return nil, err
	}
	if !body.Empty() {
		return nil, fmt.Errorf("pkcs5: trailing bytes in PBES2-params: %w", spki.ErrMalformedDER)
	}

	kdf, err := parseKDF(kdfAlg)
	if err != nil {
		return nil, err
	}
	scheme, err := parseEncryptionScheme(encAlg)
	if err != nil {
		return nil, err
	}
	return &Parameters{KDF: kdf, Scheme: scheme}, nil
}

// AlgorithmIdentifier assembles the PBES2 AlgorithmIdentifier carrying
// these parameters, the exact inverse of ParseParameters.
func (p *Parameters) AlgorithmIdentifier() (spki.AlgorithmIdentifier, error) {
	kdfAlg, err := p.KDF.algorithmIdentifier()
	if err != nil {
		return spki.AlgorithmIdentifier{}, err
	}
	encAlg, err := p.Scheme.algorithmIdentifier()
	if err != nil {
		return spki.AlgorithmIdentifier{}, err
	}

	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		kdfAlg.AddTo(b)
		encAlg.AddTo(b)
	})
	params, err := b.Bytes()
	if err != nil {
		return spki.AlgorithmIdentifier{}, err
	}
	return spki.AlgorithmIdentifier{OID: OIDPBES2, Parameters: params}, nil
}

// Decrypt derives the key from the password and decrypts the ciphertext.
// The derived key is wiped before return on every path; the returned
// plaintext belongs to the caller, who must wipe it.
func (p *Parameters) Decrypt(password, ciphertext []byte, opts ...Option) ([]byte, error) {
	cfg := applyOptions(opts)
	log := trace.Logger("pkcs5", "Decrypt").WithField("cipher", p.Scheme.Cipher.String())

	if p.Scheme.Cipher.Legacy() && !cfg.legacyCiphers {
		return nil, fmt.Errorf("pkcs5: %v requires the legacy cipher opt-in: %w",
			p.Scheme.Cipher, ErrUnsupportedCipher)
	}

	key, err := p.KDF.DeriveKey(password, p.Scheme.Cipher.KeySize())
	if err != nil {
		return nil, err
	}
	defer zeroize.Wipe(key)

	plaintext, err := p.Scheme.decrypt(key, ciphertext)
	if err != nil {
		return nil, err
	}
	log.WithField("plaintext_len", len(plaintext)).Debug("PBES2 decrypt complete")
	return plaintext, nil
}

// Encrypt derives the key and encrypts the plaintext. The derived key is
// wiped before return; the plaintext argument is left untouched.
func (p *Parameters) Encrypt(password, plaintext []byte) ([]byte, error) {
	key, err := p.KDF.DeriveKey(password, p.Scheme.Cipher.KeySize())
	if err != nil {
		return nil, err
	}
	defer zeroize.Wipe(key)

	return p.Scheme.encrypt(key, plaintext)
}

// NewParameters builds encryption parameters with a fresh salt and IV drawn
// from rand. Defaults are PBKDF2-HMAC-SHA256 with 600000 iterations and
// AES-256-CBC; WithScrypt, WithPBKDF2Iterations and WithCipher adjust them.
func NewParameters(rand io.Reader, opts ...Option) (*Parameters, error) {
	cfg := applyOptions(opts)

	if cfg.cipher.Legacy() {
		// Legacy DES variants decrypt old material only; new keys never
		// get them.
		return nil, fmt.Errorf("pkcs5: refusing to encrypt with %v: %w", cfg.cipher, ErrUnsupportedCipher)
	}

	salt := make([]byte, cfg.saltSize)
	if _, err := io.ReadFull(rand, salt); err != nil {
		return nil, fmt.Errorf("pkcs5: reading salt: %w", err)
	}
	iv := make([]byte, cfg.cipher.BlockSize())
	if _, err := io.ReadFull(rand, iv); err != nil {
		return nil, fmt.Errorf("pkcs5: reading IV: %w", err)
	}

	var kdf KDFParameters
	if cfg.useScrypt {
		kdf = &ScryptParams{
			Salt:            salt,
			Cost:            cfg.scryptCost,
			BlockSize:       cfg.scryptBlockSize,
			Parallelization: cfg.scryptParallel,
			KeyLength:       cfg.cipher.KeySize(),
		}
	} else {
		kdf = &PBKDF2Params{
			Salt:       salt,
			Iterations: cfg.iterations,
			PRF:        OIDHMACWithSHA256,
		}
	}

	return &Parameters{
		KDF:    kdf,
		Scheme: EncryptionScheme{Cipher: cfg.cipher, IV: iv},
	}, nil
}
