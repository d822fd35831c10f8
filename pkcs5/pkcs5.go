// Package pkcs5 implements the PBES2 password-based encryption pipeline
// from RFC 8018 used to protect PKCS#8 private keys at rest.
//
// A PBES2 AlgorithmIdentifier decomposes into a key-derivation function
// (PBKDF2 or scrypt) and an encryption scheme (AES-CBC, with DES-EDE3-CBC
// and DES-CBC available for legacy material behind an explicit opt-in).
// This package parses and assembles those parameter structures and drives
// the derive-then-cipher call order; the KDF and cipher primitives
// themselves come from x/crypto and the standard library.
//
// Derived keys and plaintext produced here are wiped before return on every
// exit path. Padding failures are reported as the single generic
// ErrDecryptionFailed so a caller cannot be turned into a padding oracle.
package pkcs5

import (
	"errors"

	"github.com/opd-ai/keycodec/spki"
)

func mustOID(s string) spki.ObjectIdentifier { return spki.MustOID(s) }

var (
	// ErrUnsupportedScheme reports an encryption AlgorithmIdentifier whose
	// OID is not id-PBES2.
	ErrUnsupportedScheme = errors.New("pkcs5: unsupported encryption scheme")

	// ErrUnsupportedKDF reports a key-derivation OID other than PBKDF2 or
	// scrypt, or PBKDF2 with an unknown PRF.
	ErrUnsupportedKDF = errors.New("pkcs5: unsupported key derivation function")

	// ErrUnsupportedCipher reports an encryption-scheme OID outside the
	// supported set, or a legacy DES cipher without the opt-in.
	ErrUnsupportedCipher = errors.New("pkcs5: unsupported cipher")

	// ErrDecryptionFailed reports a failed decryption. It is deliberately
	// free of detail: wrong password, corrupt ciphertext and bad padding
	// are indistinguishable.
	ErrDecryptionFailed = errors.New("pkcs5: decryption failed")
)

// PBES2 algorithm universe (RFC 8018, RFC 7914, NIST CSOR).
var (
	OIDPBES2  = mustOID("1.2.840.113549.1.5.13")
	OIDPBKDF2 = mustOID("1.2.840.113549.1.5.12")
	OIDScrypt = mustOID("1.3.6.1.4.1.11591.4.11")

	OIDHMACWithSHA1   = mustOID("1.2.840.113549.2.7")
	OIDHMACWithSHA224 = mustOID("1.2.840.113549.2.8")
	OIDHMACWithSHA256 = mustOID("1.2.840.113549.2.9")
	OIDHMACWithSHA384 = mustOID("1.2.840.113549.2.10")
	OIDHMACWithSHA512 = mustOID("1.2.840.113549.2.11")

	OIDAES128CBC  = mustOID("2.16.840.1.101.3.4.1.2")
	OIDAES192CBC  = mustOID("2.16.840.1.101.3.4.1.22")
	OIDAES256CBC  = mustOID("2.16.840.1.101.3.4.1.42")
	OIDDESCBC     = mustOID("1.3.14.3.2.7")
	OIDDESEDE3CBC = mustOID("1.2.840.113549.3.7")
)
