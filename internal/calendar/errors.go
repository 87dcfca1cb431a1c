package calendar

import "fmt"

// StoreUnavailableError reports that the calendar store could not be
// reached or queried: session open, default-folder lookup, and restriction
// application all surface through it. It is fatal to the fetch and carries
// no retry semantics.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("calendar store unavailable: %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// NormalizationError reports that a single appointment could not be
// normalized because a required field was missing or unusable. It never
// surfaces past the fetch orchestrator, which discards the item and keeps
// going.
type NormalizationError struct {
	Subject string
	Field   string
}

func (e *NormalizationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("normalize appointment: missing required field %s", e.Field)
	}
	return fmt.Sprintf("normalize appointment %q: missing required field %s", e.Subject, e.Field)
}
