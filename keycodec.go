package keycodec

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/opd-ai/keycodec/internal/trace"
	"github.com/opd-ai/keycodec/pemutil"
	"github.com/opd-ai/keycodec/pkcs5"
	"github.com/opd-ai/keycodec/pkcs8"
	"github.com/opd-ai/keycodec/sec1"
	"github.com/opd-ai/keycodec/spki"
)

// ErrUnknownFormat reports bytes that parse as none of the supported key
// structures.
var ErrUnknownFormat = errors.New("keycodec: unrecognized key format")

// KeyKind identifies which structure a Key holds.
type KeyKind int

const (
	// KindSEC1 is a bare SEC1 ECPrivateKey ("EC PRIVATE KEY").
	KindSEC1 KeyKind = iota
	// KindPKCS8 is a PrivateKeyInfo ("PRIVATE KEY").
	KindPKCS8
	// KindEncryptedPKCS8 is an EncryptedPrivateKeyInfo that was not
	// decrypted because no password was supplied.
	KindEncryptedPKCS8
)

func (k KeyKind) String() string {
	switch k {
	case KindSEC1:
		return "sec1"
	case KindPKCS8:
		return "pkcs8"
	case KindEncryptedPKCS8:
		return "encrypted-pkcs8"
	default:
		return fmt.Sprintf("KeyKind(%d)", int(k))
	}
}

// Key is a parsed private key. Exactly one of the three fields is non-nil,
// indicated by Kind.
type Key struct {
	Kind      KeyKind
	SEC1      *sec1.PrivateKey
	PKCS8     *pkcs8.PrivateKeyInfo
	Encrypted *pkcs8.EncryptedPrivateKeyInfo
}

// ParsePEM decodes one PEM block and parses its DER content according to
// the label. A nil password leaves an encrypted key sealed (Kind
// KindEncryptedPKCS8); a non-nil password decrypts it to KindPKCS8.
// Options gate legacy ciphers during that decryption.
func ParsePEM(data, password []byte, opts ...pkcs5.Option) (*Key, error) {
	label, der, err := pemutil.Decode(data)
	if err != nil {
		return nil, err
	}
	trace.Logger("keycodec", "ParsePEM").WithField("label", label).Debug("decoded PEM block")

	switch label {
	case pemutil.TypeECPrivateKey:
		key, err := sec1.Parse(der)
		if err != nil {
			return nil, err
		}
		return &Key{Kind: KindSEC1, SEC1: key}, nil

	case pemutil.TypePrivateKey:
		info, err := pkcs8.Parse(der)
		if err != nil {
			return nil, err
		}
		return &Key{Kind: KindPKCS8, PKCS8: info}, nil

	case pemutil.TypeEncryptedPrivateKey:
		encrypted, err := pkcs8.ParseEncrypted(der)
		if err != nil {
			return nil, err
		}
		if password == nil {
			return &Key{Kind: KindEncryptedPKCS8, Encrypted: encrypted}, nil
		}
		info, err := encrypted.Decrypt(password, opts...)
		if err != nil {
			return nil, err
		}
		return &Key{Kind: KindPKCS8, PKCS8: info}, nil

	default:
		return nil, fmt.Errorf("%w: label %q", pemutil.ErrLabelMismatch, label)
	}
}

// ParseDER tries the supported structures in turn: PKCS#8, then SEC1, then
// the encrypted container. Version errors are surfaced as-is so callers
// can detect future-format keys instead of falling through to
// ErrUnknownFormat.
func ParseDER(der, password []byte, opts ...pkcs5.Option) (*Key, error) {
	if info, err := pkcs8.Parse(der); err == nil {
		return &Key{Kind: KindPKCS8, PKCS8: info}, nil
	} else if errors.Is(err, pkcs8.ErrUnsupportedVersion) {
		return nil, err
	}

	if key, err := sec1.Parse(der); err == nil {
		return &Key{Kind: KindSEC1, SEC1: key}, nil
	} else if errors.Is(err, sec1.ErrUnsupportedVersion) {
		return nil, err
	}

	if encrypted, err := pkcs8.ParseEncrypted(der); err == nil {
		if password == nil {
			return &Key{Kind: KindEncryptedPKCS8, Encrypted: encrypted}, nil
		}
		info, err := encrypted.Decrypt(password, opts...)
		if err != nil {
			return nil, err
		}
		return &Key{Kind: KindPKCS8, PKCS8: info}, nil
	}

	return nil, ErrUnknownFormat
}

// MarshalDER serializes the key back to its format's DER encoding.
func (k *Key) MarshalDER() ([]byte, error) {
	switch k.Kind {
	case KindSEC1:
		return k.SEC1.Marshal()
	case KindPKCS8:
		return k.PKCS8.Marshal()
	case KindEncryptedPKCS8:
		return k.Encrypted.Marshal()
	default:
		return nil, ErrUnknownFormat
	}
}

// MarshalPEM serializes the key and frames it under its fixed label.
func (k *Key) MarshalPEM() ([]byte, error) {
	der, err := k.MarshalDER()
	if err != nil {
		return nil, err
	}
	switch k.Kind {
	case KindSEC1:
		return pemutil.Encode(pemutil.TypeECPrivateKey, der), nil
	case KindPKCS8:
		return pemutil.Encode(pemutil.TypePrivateKey, der), nil
	default:
		return pemutil.Encode(pemutil.TypeEncryptedPrivateKey, der), nil
	}
}

// EncryptPEM serializes info, encrypts it under password and frames the
// result as an ENCRYPTED PRIVATE KEY block. Salt and IV come from
// crypto/rand.
func EncryptPEM(info *pkcs8.PrivateKeyInfo, password []byte, opts ...pkcs5.Option) ([]byte, error) {
	encrypted, err := pkcs8.Encrypt(rand.Reader, info, password, opts...)
	if err != nil {
		return nil, err
	}
	der, err := encrypted.Marshal()
	if err != nil {
		return nil, err
	}
	return pemutil.Encode(pemutil.TypeEncryptedPrivateKey, der), nil
}

// Wipe erases whichever secret payload the key carries.
func (k *Key) Wipe() {
	switch k.Kind {
	case KindSEC1:
		if k.SEC1 != nil {
			k.SEC1.Wipe()
		}
	case KindPKCS8:
		if k.PKCS8 != nil {
			k.PKCS8.Wipe()
		}
	}
}

// Curve reports the named-curve OID of an EC key in either container, or
// the zero OID when none is recorded.
func (k *Key) Curve() spki.ObjectIdentifier {
	switch k.Kind {
	case KindSEC1:
		if k.SEC1.NamedCurve != nil {
			return *k.SEC1.NamedCurve
		}
	case KindPKCS8:
		if oid, err := k.PKCS8.NamedCurve(); err == nil {
			return oid
		}
	}
	return spki.ObjectIdentifier{}
}
