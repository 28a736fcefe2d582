// Package entity contains the core business objects of the project.
package entity

// NormalizedLink is the canonical form of an inbound URL, custom-scheme or
// https. It is a transient value with no persistence: produced per inbound
// URL and consumed immediately by the dispatch table.
type NormalizedLink struct {
	Path   string            // Bare path with scheme, host and leading slashes stripped.
	Params map[string]string // Decoded query parameters.
}

// Param returns the named query parameter, or the empty string if absent.
func (l NormalizedLink) Param(name string) string {
	return l.Params[name]
}

// HasParam reports whether the named query parameter is present.
func (l NormalizedLink) HasParam(name string) bool {
	_, ok := l.Params[name]

	return ok
}
