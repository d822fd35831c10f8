package spki

import (
	"crypto/subtle"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ObjectIdentifier is an immutable dotted sequence of arcs together with its
// canonical X.690 arc encoding, computed once at construction. The zero
// value is not a valid OID; IsZero reports it.
type ObjectIdentifier struct {
	arcs []uint32
	der  []byte
}

// NewOID builds an OID from its arcs. The first arc must be 0, 1 or 2, and
// when the first arc is 0 or 1 the second must be below 40, per X.690.
func NewOID(arcs ...uint32) (ObjectIdentifier, error) {
	if len(arcs) < 2 {
		return ObjectIdentifier{}, fmt.Errorf("spki: OID needs at least two arcs: %w", ErrMalformedDER)
	}
	if arcs[0] > 2 {
		return ObjectIdentifier{}, fmt.Errorf("spki: first OID arc %d out of range: %w", arcs[0], ErrMalformedDER)
	}
	if arcs[0] < 2 && arcs[1] >= 40 {
		return ObjectIdentifier{}, fmt.Errorf("spki: second OID arc %d out of range: %w", arcs[1], ErrMalformedDER)
	}

	cp := make([]uint32, len(arcs))
	copy(cp, arcs)
	return ObjectIdentifier{arcs: cp, der: encodeArcs(cp)}, nil
}

// ParseOID parses dotted-decimal notation such as "1.2.840.10045.3.1.7".
func ParseOID(s string) (ObjectIdentifier, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return ObjectIdentifier{}, fmt.Errorf("spki: OID %q needs at least two arcs: %w", s, ErrMalformedDER)
	}
	arcs := make([]uint32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return ObjectIdentifier{}, fmt.Errorf("spki: OID %q arc %d: %w", s, i, ErrMalformedDER)
		}
		arcs[i] = uint32(v)
	}
	return NewOID(arcs...)
}

// MustOID is ParseOID for package-level constants; it panics on a bad
// literal.
func MustOID(s string) ObjectIdentifier {
	oid, err := ParseOID(s)
	if err != nil {
		panic(err)
	}
	return oid
}

// OIDFromDER decodes the content bytes of an OBJECT IDENTIFIER element.
// Arc encodings must be minimal: a leading 0x80 continuation byte at the
// start of any arc is rejected, as are truncated arcs and arcs that do not
// fit an unsigned 32-bit value.
func OIDFromDER(content []byte) (ObjectIdentifier, error) {
	if len(content) == 0 {
		return ObjectIdentifier{}, fmt.Errorf("spki: empty OID: %w", ErrMalformedDER)
	}

	var arcs []uint32
	var v uint64
	start := true
	for i, b := range content {
		if start && b == 0x80 {
			return ObjectIdentifier{}, fmt.Errorf("spki: non-minimal OID arc at byte %d: %w", i, ErrMalformedDER)
		}
		start = false
		if v > math.MaxUint64>>7 {
			return ObjectIdentifier{}, fmt.Errorf("spki: OID arc overflow: %w", ErrMalformedDER)
		}
		v = v<<7 | uint64(b&0x7f)
		if b&0x80 != 0 {
			continue
		}

		if len(arcs) == 0 {
			first, second, err := splitFirstArcs(v)
			if err != nil {
				return ObjectIdentifier{}, err
			}
			arcs = append(arcs, first, second)
		} else {
			if v > math.MaxUint32 {
				return ObjectIdentifier{}, fmt.Errorf("spki: OID arc overflow: %w", ErrMalformedDER)
			}
			arcs = append(arcs, uint32(v))
		}
		v = 0
		start = true
	}
	if !start {
		return ObjectIdentifier{}, fmt.Errorf("spki: truncated OID arc: %w", ErrMalformedDER)
	}

	cp := make([]byte, len(content))
	copy(cp, content)
	return ObjectIdentifier{arcs: arcs, der: cp}, nil
}

func splitFirstArcs(v uint64) (uint32, uint32, error) {
	switch {
	case v < 40:
		return 0, uint32(v), nil
	case v < 80:
		return 1, uint32(v - 40), nil
	case v-80 <= math.MaxUint32:
		return 2, uint32(v - 80), nil
	default:
		return 0, 0, fmt.Errorf("spki: OID arc overflow: %w", ErrMalformedDER)
	}
}

func encodeArcs(arcs []uint32) []byte {
	var out []byte
	out = appendBase128(out, uint64(arcs[0])*40+uint64(arcs[1]))
	for _, a := range arcs[2:] {
		out = appendBase128(out, uint64(a))
	}
	return out
}

func appendBase128(dst []byte, v uint64) []byte {
	n := 1
	for t := v; t >= 0x80; t >>= 7 {
		n++
	}
	for i := n - 1; i > 0; i-- {
		dst = append(dst, byte(v>>(uint(i)*7))|0x80)
	}
	return append(dst, byte(v&0x7f))
}

// IsZero reports whether the OID is the invalid zero value.
func (oid ObjectIdentifier) IsZero() bool {
	return len(oid.arcs) == 0
}

// Arcs returns a copy of the arc sequence.
func (oid ObjectIdentifier) Arcs() []uint32 {
	cp := make([]uint32, len(oid.arcs))
	copy(cp, oid.arcs)
	return cp
}

// DER returns a copy of the canonical arc encoding (the content bytes of
// the OBJECT IDENTIFIER element, without tag or length).
func (oid ObjectIdentifier) DER() []byte {
	cp := make([]byte, len(oid.der))
	copy(cp, oid.der)
	return cp
}

// Equal reports structural equality. The comparison runs in constant time
// over the canonical encodings because OID matching gates secret-dependent
// branches during decryption-scheme dispatch.
func (oid ObjectIdentifier) Equal(other ObjectIdentifier) bool {
	if len(oid.der) != len(other.der) {
		return false
	}
	return subtle.ConstantTimeCompare(oid.der, other.der) == 1
}

// String renders dotted-decimal notation, or "<nil>" for the zero value.
func (oid ObjectIdentifier) String() string {
	if oid.IsZero() {
		return "<nil>"
	}
	var sb strings.Builder
	for i, a := range oid.arcs {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	return sb.String()
}
