package config

import (
	"time"
)

// BCELConfig holds the BCEL OnePay gateway credentials and endpoint.
// Available() on the gateway provider is driven entirely by whether the
// credentials are present; there is no separate enable flag.
type BCELConfig struct {
	MerchantID string
	SecretKey  string
	Endpoint   string
	Timeout    time.Duration
}

// Configured reports whether the gateway has live credentials.
func (c BCELConfig) Configured() bool {
	return c.MerchantID != "" && c.SecretKey != ""
}

// PaymentConfig holds payment and rental lifecycle configuration.
type PaymentConfig struct {
	BCEL BCELConfig

	// MaxRentalsPerMovie caps concurrent paid rentals per movie.
	// Zero or negative disables enforcement.
	MaxRentalsPerMovie int

	// PendingTTL is how long a pending payment may stay pending before the
	// worker sweep marks it failed.
	PendingTTL time.Duration
}

// DefaultMaxRentalsPerMovie is the rental cap applied when
// MAX_RENTALS_PER_MOVIE is unset.
const DefaultMaxRentalsPerMovie = 50

// LoadPaymentConfig reads payment configuration from the environment.
//
// Recognized variables:
//   - BCEL_MERCHANT_ID, BCEL_SECRET_KEY, BCEL_ENDPOINT, BCEL_TIMEOUT
//   - MAX_RENTALS_PER_MOVIE (default 50; <=0 disables the cap)
//   - PAYMENT_PENDING_TTL (default 24h)
func LoadPaymentConfig() PaymentConfig {
	return PaymentConfig{
		BCEL: BCELConfig{
			MerchantID: GetEnvString("BCEL_MERCHANT_ID", ""),
			SecretKey:  GetEnvString("BCEL_SECRET_KEY", ""),
			Endpoint:   GetEnvString("BCEL_ENDPOINT", "https://payment.bcel.la/onepay"),
			Timeout:    GetEnvDuration("BCEL_TIMEOUT", 15*time.Second),
		},
		MaxRentalsPerMovie: GetEnvInt("MAX_RENTALS_PER_MOVIE", DefaultMaxRentalsPerMovie),
		PendingTTL:         GetEnvDuration("PAYMENT_PENDING_TTL", 24*time.Hour),
	}
}
