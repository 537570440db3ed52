package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration validates that a duration is positive (greater
// than zero). Used for window and interval validation where a non-zero,
// positive value is required.
func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}

// ValidateDurationRange validates that a duration is within a specified
// range. The duration must be >= min and <= max (inclusive).
//
// Example:
//
//	// Validate cleanup interval is between 1 minute and 1 hour
//	if err := ValidateDurationRange(interval, 1*time.Minute, 1*time.Hour); err != nil {
//	    return fmt.Errorf("invalid cleanup interval: %w", err)
//	}
func ValidateDurationRange(d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("invalid range: min (%v) cannot be greater than max (%v)", min, max)
	}

	if d < min {
		return fmt.Errorf("duration %v is below minimum %v", d, min)
	}

	if d > max {
		return fmt.Errorf("duration %v exceeds maximum %v", d, max)
	}

	return nil
}
