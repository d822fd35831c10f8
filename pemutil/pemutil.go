// Package pemutil frames DER key material as PEM text (RFC 7468). Only the
// three private-key labels this module produces are meaningful here; the
// framing itself is label-agnostic.
package pemutil

import (
	"bytes"
	"encoding/pem"
	"errors"
	"fmt"
)

// PEM labels fixed per structure type.
const (
	// TypeECPrivateKey frames a SEC1 ECPrivateKey.
	TypeECPrivateKey = "EC PRIVATE KEY"
	// TypePrivateKey frames a PKCS#8 PrivateKeyInfo (v1 or v2).
	TypePrivateKey = "PRIVATE KEY"
	// TypeEncryptedPrivateKey frames an EncryptedPrivateKeyInfo.
	TypeEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
)

var (
	// ErrInvalidFraming reports text that is not a single well-formed PEM
	// block: missing or damaged boundaries, headers, or surrounding
	// garbage.
	ErrInvalidFraming = errors.New("pemutil: invalid PEM framing")

	// ErrLabelMismatch reports a well-formed block carrying a different
	// label than the caller demanded.
	ErrLabelMismatch = errors.New("pemutil: PEM label mismatch")
)

var beginMarker = []byte("-----BEGIN ")

// Encode frames der under the given label.
func Encode(label string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: label, Bytes: der})
}

// Decode parses exactly one PEM block and returns its label and DER bytes.
// Surrounding non-whitespace text, encapsulation headers and trailing
// blocks all fail with ErrInvalidFraming: a key file holds one key.
func Decode(data []byte) (string, []byte, error) {
	idx := bytes.Index(data, beginMarker)
	if idx < 0 {
		return "", nil, fmt.Errorf("%w: no BEGIN boundary", ErrInvalidFraming)
	}
	if len(bytes.TrimSpace(data[:idx])) != 0 {
		return "", nil, fmt.Errorf("%w: text before BEGIN boundary", ErrInvalidFraming)
	}

	block, rest := pem.Decode(data)
	if block == nil {
		return "", nil, fmt.Errorf("%w: no decodable block", ErrInvalidFraming)
	}
	if len(bytes.TrimSpace(rest)) != 0 {
		return "", nil, fmt.Errorf("%w: trailing data after END boundary", ErrInvalidFraming)
	}
	// RFC 7468 forbids encapsulation headers for these types.
	if len(block.Headers) != 0 {
		return "", nil, fmt.Errorf("%w: unexpected encapsulation headers", ErrInvalidFraming)
	}
	return block.Type, block.Bytes, nil
}

// DecodeTyped is Decode with label enforcement.
func DecodeTyped(data []byte, label string) ([]byte, error) {
	got, der, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if got != label {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrLabelMismatch, got, label)
	}
	return der, nil
}
