package spki

// Well-known key-algorithm and named-curve OIDs. The PBES2/KDF/cipher
// universe lives in the pkcs5 package.
var (
	// OIDECPublicKey is id-ecPublicKey (RFC 5480).
	OIDECPublicKey = MustOID("1.2.840.10045.2.1")

	// OIDRSAEncryption is rsaEncryption (RFC 8017).
	OIDRSAEncryption = MustOID("1.2.840.113549.1.1.1")

	// OIDEd25519 is id-Ed25519 (RFC 8410).
	OIDEd25519 = MustOID("1.3.101.112")

	// OIDX25519 is id-X25519 (RFC 8410).
	OIDX25519 = MustOID("1.3.101.110")

	OIDNamedCurveP224      = MustOID("1.3.132.0.33")
	OIDNamedCurveP256      = MustOID("1.2.840.10045.3.1.7")
	OIDNamedCurveP384      = MustOID("1.3.132.0.34")
	OIDNamedCurveP521      = MustOID("1.3.132.0.35")
	OIDNamedCurveSecp256k1 = MustOID("1.3.132.0.10")
)
