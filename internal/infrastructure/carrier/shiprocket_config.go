package carrier

import (
	"errors"
	"time"
)

// ShiprocketConfig holds configuration for the Shiprocket aggregator API.
// Shiprocket authenticates with an email/password login that returns a
// bearer token valid for a fixed window.
type ShiprocketConfig struct {
	// Email is the API user email from the Shiprocket panel
	Email string
	// Password is the API user password
	Password string
	// ChannelID is the sales-channel identifier orders are booked under
	ChannelID string
	// APIBaseURL is the base URL for the Shiprocket API
	APIBaseURL string
	// TokenValidity is how long a login token is honoured before the
	// adapter lazily re-authenticates
	TokenValidity time.Duration
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// ShiprocketProductionAPIURL is the production API endpoint
	ShiprocketProductionAPIURL = "https://apiv2.shiprocket.in/v1/external"
	// shiprocketDefaultTokenValidity matches the vendor's 10-day token window
	shiprocketDefaultTokenValidity = 240 * time.Hour
)

// Errors for Shiprocket configuration
var (
	ErrShiprocketConfigMissingEmail    = errors.New("shiprocket: email is required")
	ErrShiprocketConfigMissingPassword = errors.New("shiprocket: password is required")
)

// NewShiprocketConfig creates a new Shiprocket configuration with defaults
func NewShiprocketConfig(email, password, channelID string) *ShiprocketConfig {
	return &ShiprocketConfig{
		Email:          email,
		Password:       password,
		ChannelID:      channelID,
		APIBaseURL:     ShiprocketProductionAPIURL,
		TokenValidity:  shiprocketDefaultTokenValidity,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Shiprocket configuration
func (c *ShiprocketConfig) Validate() error {
	if c.Email == "" {
		return ErrShiprocketConfigMissingEmail
	}
	if c.Password == "" {
		return ErrShiprocketConfigMissingPassword
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = ShiprocketProductionAPIURL
	}
	if c.TokenValidity <= 0 {
		c.TokenValidity = shiprocketDefaultTokenValidity
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// IsComplete reports whether every required credential field is present.
// Unlike Validate it never mutates defaults; it backs IsConfigured.
func (c *ShiprocketConfig) IsComplete() bool {
	return c != nil && c.Email != "" && c.Password != ""
}
