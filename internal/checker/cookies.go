package checker

import (
	"net/http"
	"strings"
)

// CookieNote lists the hardening flags a Set-Cookie header is missing.
type CookieNote struct {
	Name            string
	MissingSecure   bool
	MissingHTTPOnly bool
	MissingSameSite bool
}

// String renders the note as "name: missing Secure, HttpOnly".
func (n CookieNote) String() string {
	var missing []string
	if n.MissingSecure {
		missing = append(missing, "Secure")
	}
	if n.MissingHTTPOnly {
		missing = append(missing, "HttpOnly")
	}
	if n.MissingSameSite {
		missing = append(missing, "SameSite")
	}
	return n.Name + ": missing " + strings.Join(missing, ", ")
}

// AnalyzeCookies inspects Set-Cookie headers for missing Secure, HttpOnly and SameSite flags.
// Cookies with every flag set are omitted.
func AnalyzeCookies(h Headers) []CookieNote {
	raw := h.Values("Set-Cookie")
	if len(raw) == 0 {
		return nil
	}

	resp := &http.Response{Header: http.Header{"Set-Cookie": raw}}
	var notes []CookieNote
	for _, cookie := range resp.Cookies() {
		note := CookieNote{
			Name:            cookie.Name,
			MissingSecure:   !cookie.Secure,
			MissingHTTPOnly: !cookie.HttpOnly,
			MissingSameSite: cookie.SameSite == 0 || cookie.SameSite == http.SameSiteDefaultMode,
		}
		if note.MissingSecure || note.MissingHTTPOnly || note.MissingSameSite {
			notes = append(notes, note)
		}
	}
	return notes
}
