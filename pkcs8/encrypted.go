package pkcs8

import (
	"fmt"
	"io"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/opd-ai/keycodec/internal/trace"
	"github.com/opd-ai/keycodec/pkcs5"
	"github.com/opd-ai/keycodec/spki"
	"github.com/opd-ai/keycodec/zeroize"
)

// EncryptedPrivateKeyInfo pairs a PBES2 AlgorithmIdentifier with the
// ciphertext of a serialized PrivateKeyInfo. It exists only around the
// encrypt/decrypt calls and holds no derived secrets itself.
//
//	EncryptedPrivateKeyInfo ::= SEQUENCE {
//	  encryptionAlgorithm AlgorithmIdentifier,
//	  encryptedData       OCTET STRING
//	}
type EncryptedPrivateKeyInfo struct {
	Algorithm     spki.AlgorithmIdentifier
	EncryptedData []byte
}

// ParseEncrypted decodes a DER EncryptedPrivateKeyInfo. The encryption
// parameters are validated lazily, at Decrypt time.
func ParseEncrypted(der []byte) (*EncryptedPrivateKeyInfo, error) {
	input := cryptobyte.String(der)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cryptobyte_asn1.SEQUENCE) {
		return nil, fmt.Errorf("pkcs8: EncryptedPrivateKeyInfo is not a SEQUENCE: %w", spki.ErrMalformedDER)
	}
	if !input.Empty() {
		return nil, fmt.Errorf("pkcs8: trailing bytes after EncryptedPrivateKeyInfo: %w", spki.ErrMalformedDER)
	}

	alg, err := spki.ReadAlgorithmIdentifier(&body)
	if err != nil {
		return nil, err
	}
	var data cryptobyte.String
	if !body.ReadASN1(&data, cryptobyte_asn1.OCTET_STRING) {
		return nil, fmt.Errorf("pkcs8: bad encryptedData OCTET STRING: %w", spki.ErrMalformedDER)
	}
	if !body.Empty() {
		return nil, fmt.Errorf("pkcs8: unexpected trailing elements in EncryptedPrivateKeyInfo: %w", spki.ErrMalformedDER)
	}

	return &EncryptedPrivateKeyInfo{
		Algorithm:     alg,
		EncryptedData: append([]byte(nil), data...),
	}, nil
}

// Marshal encodes the structure as DER.
func (e *EncryptedPrivateKeyInfo) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cryptobyte_asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		e.Algorithm.AddTo(b)
		b.AddASN1OctetString(e.EncryptedData)
	})
	return b.Bytes()
}

// Decrypt derives a key from the password per the PBES2 parameters,
// decrypts the payload and parses it as a PrivateKeyInfo. The decrypted
// plaintext buffer is wiped before return on every path; the parsed
// structure carries its own copy, which the caller owns (and should Wipe).
//
// A wrong password surfaces as pkcs5.ErrDecryptionFailed, or, when the
// padding happens to survive, as the DER parse failure of the garbage
// plaintext. Neither reveals which cipher-level check failed.
func (e *EncryptedPrivateKeyInfo) Decrypt(password []byte, opts ...pkcs5.Option) (*PrivateKeyInfo, error) {
	log := trace.Logger("pkcs8", "Decrypt")

	params, err := pkcs5.ParseParameters(e.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := params.Decrypt(password, e.EncryptedData, opts...)
	if err != nil {
		return nil, err
	}
	defer zeroize.Wipe(plaintext)

	info, err := Parse(plaintext)
	if err != nil {
		return nil, err
	}
	log.WithField("algorithm", info.Algorithm.OID.String()).Debug("decrypted private key")
	return info, nil
}

// Encrypt serializes info, encrypts it under the password and wraps the
// result. Salt and IV come from rand; scheme and KDF choices come from
// opts (PBKDF2-HMAC-SHA256 with AES-256-CBC by default). The intermediate
// plaintext serialization is wiped before return.
func Encrypt(rand io.Reader, info *PrivateKeyInfo, password []byte, opts ...pkcs5.Option) (*EncryptedPrivateKeyInfo, error) {
	params, err := pkcs5.NewParameters(rand, opts...)
	if err != nil {
		return nil, err
	}

	plaintext, err := info.Marshal()
	if err != nil {
		return nil, err
	}
	defer zeroize.Wipe(plaintext)

	ciphertext, err := params.Encrypt(password, plaintext)
	if err != nil {
		return nil, err
	}
	alg, err := params.AlgorithmIdentifier()
	if err != nil {
		return nil, err
	}
	return &EncryptedPrivateKeyInfo{Algorithm: alg, EncryptedData: ciphertext}, nil
}
