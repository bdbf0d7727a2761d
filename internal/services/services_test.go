package services

import (
	"time"

	"github.com/desertthunder/favsync/internal/shared"
)

// testHTTPConfig keeps retries fast and the limiter out of the way.
func testHTTPConfig() shared.HTTPConfig {
	return shared.HTTPConfig{
		RequestsPerSecond: 1000,
		RetryAttempts:     3,
		RetryBaseDelay:    shared.Duration{Duration: time.Millisecond},
		RetryMaxDelay:     shared.Duration{Duration: 5 * time.Millisecond},
		Timeout:           shared.Duration{Duration: 5 * time.Second},
	}
}
