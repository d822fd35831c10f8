package sec1

import (
	"errors"
	"fmt"
)

// ErrInvalidPointEncoding reports a point octet string whose first byte and
// length do not match any recognized SEC1 form for the given field size.
var ErrInvalidPointEncoding = errors.New("sec1: invalid point encoding")

// PointForm classifies the three SEC1 point octet-string layouts.
type PointForm int

const (
	// FormIdentity is the point at infinity: a single 0x00 byte.
	FormIdentity PointForm = iota
	// FormCompressed is 0x02/0x03 followed by the X coordinate.
	FormCompressed
	// FormUncompressed is 0x04 followed by X and Y.
	FormUncompressed
)

func (f PointForm) String() string {
	switch f {
	case FormIdentity:
		return "identity"
	case FormCompressed:
		return "compressed"
	case FormUncompressed:
		return "uncompressed"
	default:
		return fmt.Sprintf("PointForm(%d)", int(f))
	}
}

// Point is a decoded SEC1 point. X and Y are fixed-width big-endian field
// elements; X is nil for the identity, Y is nil unless the form is
// uncompressed. For a compressed point YIsOdd carries the parity bit from
// the prefix. No curve membership check is performed here; that belongs to
// whoever consumes the coordinates.
type Point struct {
	Form   PointForm
	X      []byte
	Y      []byte
	YIsOdd bool
}

// EncodePoint serializes coordinates into the SEC1 octet-string form.
// fieldSize is the byte width of a field element; x and y are big-endian
// values no wider than fieldSize (shorter values are left-padded). A nil x
// and y selects the point at infinity, which always encodes to the single
// identity byte regardless of the compressed flag.
func EncodePoint(fieldSize int, x, y []byte, compressed bool) ([]byte, error) {
	if fieldSize < 1 {
		return nil, fmt.Errorf("sec1: field size %d: %w", fieldSize, ErrInvalidPointEncoding)
	}
	if x == nil && y == nil {
		return []byte{0x00}, nil
	}
	if len(x) > fieldSize || len(y) > fieldSize {
		return nil, fmt.Errorf("sec1: coordinate wider than field size %d: %w", fieldSize, ErrInvalidPointEncoding)
	}
	if y == nil {
		return nil, fmt.Errorf("sec1: finite point needs both coordinates: %w", ErrInvalidPointEncoding)
	}

	if compressed {
		out := make([]byte, 1+fieldSize)
		out[0] = 0x02
		if len(y) > 0 && y[len(y)-1]&1 == 1 {
			out[0] = 0x03
		}
		copy(out[1+fieldSize-len(x):], x)
		return out, nil
	}

	out := make([]byte, 1+2*fieldSize)
	out[0] = 0x04
	copy(out[1+fieldSize-len(x):], x)
	copy(out[1+2*fieldSize-len(y):], y)
	return out, nil
}

// DecodePoint classifies and splits a SEC1 point octet string. The length
// must be exactly 1 (identity), 1+fieldSize (compressed) or 1+2*fieldSize
// (uncompressed) and must agree with the first byte; anything else fails
// with ErrInvalidPointEncoding. Bytes are copied, never aliased.
func DecodePoint(fieldSize int, data []byte) (Point, error) {
	if fieldSize < 1 {
		return Point{}, fmt.Errorf("sec1: field size %d: %w", fieldSize, ErrInvalidPointEncoding)
	}
	if len(data) == 0 {
		return Point{}, fmt.Errorf("sec1: empty point: %w", ErrInvalidPointEncoding)
	}

	switch data[0] {
	case 0x00:
		if len(data) != 1 {
			return Point{}, fmt.Errorf("sec1: identity point must be a single byte: %w", ErrInvalidPointEncoding)
		}
		return Point{Form: FormIdentity}, nil

	case 0x02, 0x03:
		if len(data) != 1+fieldSize {
			return Point{}, fmt.Errorf("sec1: compressed point length %d for field size %d: %w", len(data), fieldSize, ErrInvalidPointEncoding)
		}
		return Point{
			Form:   FormCompressed,
			X:      append([]byte(nil), data[1:]...),
			YIsOdd: data[0] == 0x03,
		}, nil

	case 0x04:
		if len(data) != 1+2*fieldSize {
			return Point{}, fmt.Errorf("sec1: uncompressed point length %d for field size %d: %w", len(data), fieldSize, ErrInvalidPointEncoding)
		}
		return Point{
			Form: FormUncompressed,
			X:    append([]byte(nil), data[1:1+fieldSize]...),
			Y:    append([]byte(nil), data[1+fieldSize:]...),
		}, nil

	default:
		return Point{}, fmt.Errorf("sec1: unknown point prefix 0x%02x: %w", data[0], ErrInvalidPointEncoding)
	}
}
