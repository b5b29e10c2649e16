package catalog

import "fmt"

// FetchError reports any failure reaching or decoding the remote catalog.
type FetchError struct {
	Op  string // e.g. "list sets", "get card swsh1-1"
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("catalog %s (%s): %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError is returned when the catalog answers 404.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}
