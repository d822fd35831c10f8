package pkcs5

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/opd-ai/keycodec/spki"
	"github.com/opd-ai/keycodec/zeroize"
)

// Cipher enumerates the symmetric ciphers PBES2 can name here. The set is
// closed; an unrecognized OID fails with ErrUnsupportedCipher.
type Cipher int

const (
	AES128CBC Cipher = iota
	AES192CBC
	AES256CBC
	// DESEDE3CBC and DESCBC decrypt legacy material only, behind
	// WithLegacyCiphers. Their key sizes are far below modern margins.
	DESEDE3CBC
	DESCBC
)

func (c Cipher) String() string {
	switch c {
	case AES128CBC:
		return "aes-128-cbc"
	case AES192CBC:
		return "aes-192-cbc"
	case AES256CBC:
		return "aes-256-cbc"
	case DESEDE3CBC:
		return "des-ede3-cbc"
	case DESCBC:
		return "des-cbc"
	default:
		return fmt.Sprintf("Cipher(%d)", int(c))
	}
}

// KeySize returns the symmetric key length in bytes.
func (c Cipher) KeySize() int {
	switch c {
	case AES128CBC:
		return 16
	case AES192CBC:
		return 24
	case AES256CBC:
		return 32
	case DESEDE3CBC:
		return 24
	case DESCBC:
		return 8
	default:
		return 0
	}
}

// BlockSize returns the cipher block (and IV) length in bytes.
func (c Cipher) BlockSize() int {
	switch c {
	case AES128CBC, AES192CBC, AES256CBC:
		return aes.BlockSize
	case DESEDE3CBC, DESCBC:
		return des.BlockSize
	default:
		return 0
	}
}

// Legacy reports whether the cipher is accepted only behind the explicit
// opt-in.
func (c Cipher) Legacy() bool {
	return c == DESEDE3CBC || c == DESCBC
}

// OID returns the cipher's encryption-scheme OID.
func (c Cipher) OID() spki.ObjectIdentifier {
	switch c {
	case AES128CBC:
		return OIDAES128CBC
	case AES192CBC:
		return OIDAES192CBC
	case AES256CBC:
		return OIDAES256CBC
	case DESEDE3CBC:
		return OIDDESEDE3CBC
	case DESCBC:
		return OIDDESCBC
	default:
		return spki.ObjectIdentifier{}
	}
}

func (c Cipher) newBlock(key []byte) (cipher.Block, error) {
	switch c {
	case AES128CBC, AES192CBC, AES256CBC:
		return aes.NewCipher(key)
	case DESEDE3CBC:
		return des.NewTripleDESCipher(key)
	case DESCBC:
		return des.NewCipher(key)
	default:
		return nil, fmt.Errorf("pkcs5: %v: %w", c, ErrUnsupportedCipher)
	}
}

func cipherByOID(oid spki.ObjectIdentifier) (Cipher, bool) {
	for _, c := range []Cipher{AES128CBC, AES192CBC, AES256CBC, DESEDE3CBC, DESCBC} {
		if oid.Equal(c.OID()) {
			return c, true
		}
	}
	return 0, false
}

// EncryptionScheme is a cipher plus its IV, the decoded form of the PBES2
// encryptionScheme AlgorithmIdentifier.
type EncryptionScheme struct {
	Cipher Cipher
	IV     []byte
}

func parseEncryptionScheme(ai spki.AlgorithmIdentifier) (EncryptionScheme, error) {
	c, ok := cipherByOID(ai.OID)
	if !ok {
		return EncryptionScheme{}, fmt.Errorf("pkcs5: cipher %v: %w", ai.OID, ErrUnsupportedCipher)
	}

	input := cryptobyte.String(ai.Parameters)
	var iv cryptobyte.String
	if !input.ReadASN1(&iv, cryptobyte_asn1.OCTET_STRING) || !input.Empty() {
		return EncryptionScheme{}, fmt.Errorf("pkcs5: bad %v IV parameters: %w", c, spki.ErrMalformedDER)
	}
	if len(iv) != c.BlockSize() {
		return EncryptionScheme{}, fmt.Errorf("pkcs5: %v IV length %d: %w", c, len(iv), spki.ErrMalformedDER)
	}
	return EncryptionScheme{Cipher: c, IV: append([]byte(nil), iv...)}, nil
}

func (s EncryptionScheme) algorithmIdentifier() (spki.AlgorithmIdentifier, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1OctetString(s.IV)
	params, err := b.Bytes()
	if err != nil {
		return spki.AlgorithmIdentifier{}, err
	}
	return spki.AlgorithmIdentifier{OID: s.Cipher.OID(), Parameters: params}, nil
}

// decrypt runs CBC decryption and strips PKCS#7 padding. The padding check
// is constant-time over the final block and every failure collapses into
// ErrDecryptionFailed.
func (s EncryptionScheme) decrypt(key, ciphertext []byte) ([]byte, error) {
	block, err := s.Cipher.newBlock(key)
	if err != nil {
		return nil, fmt.Errorf("pkcs5: %v: %w", err, ErrDecryptionFailed)
	}
	bs := s.Cipher.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, fmt.Errorf("pkcs5: ciphertext length %d: %w", len(ciphertext), ErrDecryptionFailed)
	}

	buf := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, s.IV).CryptBlocks(buf, ciphertext)

	last := buf[len(buf)-bs:]
	padLen := int(last[bs-1])
	valid := subtle.ConstantTimeLessOrEq(1, padLen) & subtle.ConstantTimeLessOrEq(padLen, bs)
	for i := 0; i < bs; i++ {
		inPad := subtle.ConstantTimeLessOrEq(bs-i, padLen)
		eq := subtle.ConstantTimeByteEq(last[i], byte(padLen))
		valid &= subtle.ConstantTimeSelect(inPad, eq, 1)
	}
	if valid != 1 {
		zeroize.Wipe(buf)
		return nil, ErrDecryptionFailed
	}
	plaintext := buf[:len(buf)-padLen]
	zeroize.Wipe(buf[len(plaintext):])
	return plaintext, nil
}

// encrypt applies PKCS#7 padding and runs CBC encryption. The padded
// plaintext copy is encrypted in place, so no cleartext staging buffer
// survives the call.
func (s EncryptionScheme) encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := s.Cipher.newBlock(key)
	if err != nil {
		return nil, fmt.Errorf("pkcs5: %v: %w", err, ErrUnsupportedCipher)
	}
	bs := s.Cipher.BlockSize()
	padLen := bs - len(plaintext)%bs

	buf := make([]byte, len(plaintext)+padLen)
	copy(buf, plaintext)
	for i := len(plaintext); i < len(buf); i++ {
		buf[i] = byte(padLen)
	}
	cipher.NewCBCEncrypter(block, s.IV).CryptBlocks(buf, buf)
	return buf, nil
}
