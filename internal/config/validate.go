package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Validate checks every required input, logs each failed check on its own and
// returns the parsed settings together with the number of failed checks.
// Settings are only meaningful when the count is zero.
func (c *Config) Validate(log zerolog.Logger) (Settings, int) {
	var (
		s      Settings
		errors int
	)

	fail := func(field string, value interface{}, msg string) {
		errors++
		log.Error().
			Str("field", field).
			Interface("value", value).
			Msg(msg)
	}

	s.Token = strings.TrimSpace(c.Token)
	if s.Token == "" {
		fail("PAT", "", "Credential token is missing")
	}

	s.PropertyName = strings.TrimSpace(c.PropertyName)
	s.PropertyID = strings.TrimSpace(c.PropertyID)
	if s.PropertyName == "" && s.PropertyID == "" {
		fail("PROPERTY_NAME", "", "Either a property name or a property id is required")
	}

	start, err := parseDate(c.StartDate)
	if err != nil {
		fail("START_DATE", c.StartDate, fmt.Sprintf("Start date is invalid: %v", err))
	}
	s.StartDate = start

	end, err := parseDate(c.EndDate)
	if err != nil {
		fail("END_DATE", c.EndDate, fmt.Sprintf("End date is invalid: %v", err))
	}
	s.EndDate = end

	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		fail("END_DATE", c.EndDate, "End date is before start date")
	}

	if s.Debug, err = parseFlag(c.Debug); err != nil {
		fail("DEBUG", c.Debug, "Debug flag must be a boolean")
	}

	if s.Accounting, err = parseFlag(c.Accounting); err != nil {
		fail("ACCOUNTING", c.Accounting, "Accounting flag must be a boolean")
	}

	if s.HTTPTimeout, err = ParseTimeout(c.HTTPTimeout); err != nil {
		fail("HTTP_TIMEOUT", c.HTTPTimeout, "HTTP timeout must be a positive duration")
	}

	if errors == 0 {
		log.Debug().
			Str("start_date", s.StartDate.Format(DateLayout)).
			Str("end_date", s.EndDate.Format(DateLayout)).
			Bool("debug", s.Debug).
			Bool("accounting", s.Accounting).
			Msg("Configuration validated")
	}

	return s, errors
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("value is empty, expected YYYY-MM-DD")
	}
	return time.Parse(DateLayout, value)
}

// DefaultHTTPTimeout applies when HTTP_TIMEOUT is empty.
const DefaultHTTPTimeout = 30 * time.Second

// ParseTimeout parses a positive Go duration; empty means DefaultHTTPTimeout.
func ParseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultHTTPTimeout, nil
	}
	timeout, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("timeout %s is not positive", value)
	}
	return timeout, nil
}

// parseFlag accepts the usual boolean spellings; empty means false.
func parseFlag(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(strings.ToLower(value))
}
