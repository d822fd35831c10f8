package pkcs5

// defaultIterations follows current OWASP guidance for PBKDF2-HMAC-SHA256.
const defaultIterations = 600000

const defaultSaltSize = 16

type config struct {
	legacyCiphers bool
	cipher        Cipher
	iterations    int
	saltSize      int

	useScrypt       bool
	scryptCost      int
	scryptBlockSize int
	scryptParallel  int
}

// Option adjusts decryption gating or encryption parameter choices.
type Option func(*config)

func applyOptions(opts []Option) config {
	cfg := config{
		cipher:     AES256CBC,
		iterations: defaultIterations,
		saltSize:   defaultSaltSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLegacyCiphers permits decrypting DES-CBC and DES-EDE3-CBC material.
// Encryption never emits these ciphers.
func WithLegacyCiphers() Option {
	return func(cfg *config) { cfg.legacyCiphers = true }
}

// WithCipher selects the cipher used when encrypting.
func WithCipher(c Cipher) Option {
	return func(cfg *config) { cfg.cipher = c }
}

// WithPBKDF2Iterations overrides the PBKDF2 iteration count used when
// encrypting.
func WithPBKDF2Iterations(n int) Option {
	return func(cfg *config) { cfg.iterations = n }
}

// WithScrypt selects scrypt as the encryption KDF with the given cost,
// block-size and parallelization parameters.
func WithScrypt(n, r, p int) Option {
	return func(cfg *config) {
		cfg.useScrypt = true
		cfg.scryptCost = n
		cfg.scryptBlockSize = r
		cfg.scryptParallel = p
	}
}

// WithSaltSize overrides the generated salt length in bytes.
func WithSaltSize(n int) Option {
	return func(cfg *config) { cfg.saltSize = n }
}
