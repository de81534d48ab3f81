package carrier

import "errors"

// DelhiveryConfig holds configuration for the Delhivery API. Delhivery uses
// a static API token sent on every request; there is no login step.
type DelhiveryConfig struct {
	// APIKey is the static token from the Delhivery panel
	APIKey string
	// ClientName is the registered client identifier shipments are booked under
	ClientName string
	// PickupLocationName is the registered warehouse used when a request
	// does not name one
	PickupLocationName string
	// APIBaseURL is the base URL for the Delhivery API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// DelhiveryProductionAPIURL is the production API endpoint
const DelhiveryProductionAPIURL = "https://track.delhivery.com"

// Errors for Delhivery configuration
var (
	ErrDelhiveryConfigMissingAPIKey     = errors.New("delhivery: api key is required")
	ErrDelhiveryConfigMissingClientName = errors.New("delhivery: client name is required")
)

// NewDelhiveryConfig creates a new Delhivery configuration with defaults
func NewDelhiveryConfig(apiKey, clientName string) *DelhiveryConfig {
	return &DelhiveryConfig{
		APIKey:         apiKey,
		ClientName:     clientName,
		APIBaseURL:     DelhiveryProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Delhivery configuration
func (c *DelhiveryConfig) Validate() error {
	if c.APIKey == "" {
		return ErrDelhiveryConfigMissingAPIKey
	}
	if c.ClientName == "" {
		return ErrDelhiveryConfigMissingClientName
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DelhiveryProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// IsComplete reports whether every required credential field is present.
func (c *DelhiveryConfig) IsComplete() bool {
	return c != nil && c.APIKey != "" && c.ClientName != ""
}
