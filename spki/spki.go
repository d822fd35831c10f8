// Package spki implements the ASN.1 building blocks shared by every key
// format in this module: object identifiers with their canonical DER arc
// encoding, and the X.509 AlgorithmIdentifier that pairs an OID with opaque
// algorithm parameters.
//
// The package deliberately knows nothing about which algorithms exist.
// Callers compare OIDs against the constants defined here (or their own) and
// interpret parameter bytes themselves.
package spki

import "errors"

// ErrMalformedDER reports a structural DER violation: wrong tag, truncated
// or non-minimal encoding, trailing bytes, or out-of-order optional fields.
// Higher-level packages wrap this sentinel so errors.Is works across the
// whole module.
var ErrMalformedDER = errors.New("malformed DER")
