package checker

import (
	"net/http"
	"net/textproto"
	"sort"
	"strings"
)

// NotSet is reported in place of a header value when the header is absent.
const NotSet = "Not Set"

// Headers is a read-only, case-insensitive view of response headers.
// Every name maps to the ordered sequence of values received on the wire.
type Headers struct {
	values map[string][]string
}

// NewHeaders copies h, merging keys that only differ in case.
func NewHeaders(h http.Header) Headers {
	values := make(map[string][]string, len(h))
	for name, vals := range h {
		key := textproto.CanonicalMIMEHeaderKey(name)
		values[key] = append(values[key], vals...)
	}
	return Headers{values: values}
}

// Lookup returns the values for name and whether the header was present at all.
func (h Headers) Lookup(name string) ([]string, bool) {
	vals, ok := h.values[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok || len(vals) == 0 {
		return nil, false
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out, true
}

// Has reports whether name was present.
func (h Headers) Has(name string) bool {
	_, ok := h.Lookup(name)
	return ok
}

// First returns the first value of name.
func (h Headers) First(name string) (string, bool) {
	vals, ok := h.Lookup(name)
	if !ok {
		return "", false
	}
	return vals[0], true
}

// Get returns the first value of name or "".
func (h Headers) Get(name string) string {
	v, _ := h.First(name)
	return v
}

// Values returns every value of name; nil when absent.
func (h Headers) Values(name string) []string {
	vals, _ := h.Lookup(name)
	return vals
}

// Joined returns all values joined by ", ", or NotSet when the header is absent.
func (h Headers) Joined(name string) string {
	vals, ok := h.Lookup(name)
	if !ok {
		return NotSet
	}
	return strings.Join(vals, ", ")
}

// Names returns the canonical header names in sorted order.
func (h Headers) Names() []string {
	names := make([]string, 0, len(h.values))
	for name := range h.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct header names.
func (h Headers) Len() int { return len(h.values) }
