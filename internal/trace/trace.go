// Package trace provides the shared logrus field convention for library
// packages. Logging stays at Debug and below; with the default logrus level
// the library is silent. Key material, passwords and plaintext are never
// placed in fields.
package trace

import "github.com/sirupsen/logrus"

// Logger returns an entry carrying the standard package/function fields.
func Logger(pkg, function string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"package":  pkg,
		"function": function,
	})
}
