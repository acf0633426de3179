package configs

import "time"

// Auth configures HS256 bearer tokens. The subject claim carries the
// caller's account address.
type Auth struct {
	HMACSecret string        `env:"HMAC_SECRET"`
	Issuer     string        `env:"ISSUER" envDefault:"realdream"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	ClockSkew  time.Duration `env:"CLOCK_SKEW" envDefault:"2m"`
}
