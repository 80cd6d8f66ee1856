package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error.
// Config values are validated at load time, so the fallback only guards
// values built outside LoadConfig.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("value", durationStr).Dur("fallback", defaultDuration).Msg("Invalid duration, using fallback")
		return defaultDuration
	}
	return duration
}

