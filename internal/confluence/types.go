package confluence

import "fmt"

// Page is the content representation returned by the store for reads and
// successful writes.
type Page struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Title   string  `json:"title"`
	Space   Space   `json:"space"`
	Version Version `json:"version"`
	Body    Body    `json:"body"`
}

// Space identifies the namespace a page belongs to.
type Space struct {
	Key string `json:"key"`
}

// Version carries the monotonically increasing number guarding optimistic
// concurrency. A write declares the version it produces; the store rejects
// writes whose declared number does not match its expectation.
type Version struct {
	Number int `json:"number"`
}

// Body holds the storage-format representation of a page body.
type Body struct {
	Storage Storage `json:"storage"`
}

// Storage is the store's native body representation.
type Storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// PageUpdate is the full representation submitted on a write.
type PageUpdate struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Title   string  `json:"title"`
	Space   Space   `json:"space"`
	Body    Body    `json:"body"`
	Version Version `json:"version"`
}

// APIError is the structured error body the store returns on non-2xx
// responses. A 409 status means the declared version lost the optimistic
// concurrency check.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("confluence: HTTP %d: %s", e.StatusCode, e.Message)
}
