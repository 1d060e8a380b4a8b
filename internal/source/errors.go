package source

import "fmt"

// ErrEmptyURL is returned when a detail fetch is requested for a candidate
// whose search entry carried no URL. It is checked before any request is
// issued and is never retried.
var ErrEmptyURL = fmt.Errorf("source: empty detail url")

// TransportError is a network or non-2xx failure talking to the source
// site. It is item-scoped: the caller logs it and moves on.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source: GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("source: GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
