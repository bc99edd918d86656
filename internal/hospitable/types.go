package hospitable

import (
	"errors"
	"fmt"

	"hostexport/internal/reservation"
)

var (
	// ErrFetchFailed wraps every failure to obtain data from the API:
	// transport errors, non-2xx responses and undecodable bodies.
	ErrFetchFailed = errors.New("hospitable fetch failed")

	// ErrPropertyNotFound is returned when no property matches the configured name.
	ErrPropertyNotFound = errors.New("property not found")
)

// Property is an entry of GET /properties.
type Property struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PublicName string `json:"public_name,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

// PropertiesResponse is the envelope of GET /properties.
type PropertiesResponse struct {
	Data []Property `json:"data"`
}

// ReservationsResponse is the envelope of GET /reservations. Pagination
// metadata is ignored: a run reads a single page.
type ReservationsResponse struct {
	Data []reservation.Raw `json:"data"`
}

// APIError describes a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("hospitable API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("hospitable API error (status %d): %s", e.StatusCode, e.Body)
}

// Is lets callers match any API error with errors.Is(err, ErrFetchFailed).
func (e *APIError) Is(target error) bool {
	return target == ErrFetchFailed
}

type errorResponse struct {
	Message string `json:"message"`
	Reason  string `json:"reason_phrase,omitempty"`
}
