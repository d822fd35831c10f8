// Package zeroize erases sensitive byte buffers.
//
// Private scalars, derived symmetric keys and decrypted plaintext must not
// outlive the call that produced them. Wipe overwrites a buffer in place;
// callers defer it on every exit path.
package zeroize

import "runtime"

// Wipe overwrites b with zeros. It is safe to call on a nil or empty slice.
//
// runtime.KeepAlive pins the slice so the compiler cannot conclude the
// stores are dead and elide them.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// WipeAll wipes every buffer in the list.
func WipeAll(bufs ...[]byte) {
	for _, b := range bufs {
		Wipe(b)
	}
}
