package carrier

import (
	"errors"
	"time"
)

// XpressbeesConfig holds configuration for the Xpressbees courier API.
// Xpressbees authenticates with an email/password login that returns a
// JWT valid for 24 hours.
type XpressbeesConfig struct {
	// Email is the API account email
	Email string
	// Password is the API account password
	Password string
	// APIBaseURL is the base URL for the Xpressbees API
	APIBaseURL string
	// TokenValidity is how long a login token is honoured before the
	// adapter lazily re-authenticates
	TokenValidity time.Duration
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// XpressbeesProductionAPIURL is the production API endpoint
	XpressbeesProductionAPIURL = "https://shipment.xpressbees.com/api"
	// xpressbeesDefaultTokenValidity matches the vendor's 24-hour JWT window
	xpressbeesDefaultTokenValidity = 24 * time.Hour
)

// Errors for Xpressbees configuration
var (
	ErrXpressbeesConfigMissingEmail    = errors.New("xpressbees: email is required")
	ErrXpressbeesConfigMissingPassword = errors.New("xpressbees: password is required")
)

// NewXpressbeesConfig creates a new Xpressbees configuration with defaults
func NewXpressbeesConfig(email, password string) *XpressbeesConfig {
	return &XpressbeesConfig{
		Email:          email,
		Password:       password,
		APIBaseURL:     XpressbeesProductionAPIURL,
		TokenValidity:  xpressbeesDefaultTokenValidity,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Xpressbees configuration
func (c *XpressbeesConfig) Validate() error {
	if c.Email == "" {
		return ErrXpressbeesConfigMissingEmail
	}
	if c.Password == "" {
		return ErrXpressbeesConfigMissingPassword
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = XpressbeesProductionAPIURL
	}
	if c.TokenValidity <= 0 {
		c.TokenValidity = xpressbeesDefaultTokenValidity
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// IsComplete reports whether every required credential field is present.
func (c *XpressbeesConfig) IsComplete() bool {
	return c != nil && c.Email != "" && c.Password != ""
}
