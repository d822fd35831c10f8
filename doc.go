// Package keycodec decodes and encodes private-key material in the two
// standardized binary formats produced by OpenSSL, HSMs and TLS stacks:
// SEC1 elliptic-curve private keys and PKCS#8 private-key information
// objects, including the password-encrypted PBES2 variant.
//
// This package is the label-dispatching facade over the format packages:
// spki (object identifiers and AlgorithmIdentifier), sec1 (EC keys and
// point encoding), pkcs8 (the algorithm-agnostic container), pkcs5 (the
// PBES2 encryption pipeline) and pemutil (PEM text framing).
//
// # Getting Started
//
// Parse whatever kind of key a PEM file holds:
//
//	key, err := keycodec.ParsePEM(data, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer key.Wipe()
//
//	switch key.Kind {
//	case keycodec.KindSEC1:
//	    fmt.Println("EC key, curve:", key.SEC1.NamedCurve)
//	case keycodec.KindPKCS8:
//	    fmt.Println("PKCS#8 key, algorithm:", key.PKCS8.Algorithm.OID)
//	case keycodec.KindEncryptedPKCS8:
//	    fmt.Println("encrypted key; re-run with a password to open it")
//	}
//
// Passing a password decrypts an encrypted key transparently:
//
//	key, err := keycodec.ParsePEM(data, []byte("passphrase"))
//
// # Core Types
//
//   - [Key]: a parsed key tagged with the format it arrived in
//   - [KeyKind]: which of the three formats matched
//
// # Security Model
//
// Every structure is parsed in one pass from complete in-memory bytes and
// serialized to a fresh buffer; nothing streams, blocks or retries. Buffers
// holding private scalars, derived keys or decrypted plaintext are wiped
// when the library is done with them, and Key.Wipe extends that discipline
// to the caller's copy. Decryption failures are deliberately opaque: wrong
// password, corrupt ciphertext and bad padding are indistinguishable.
package keycodec
