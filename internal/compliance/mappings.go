// Package compliance maps scanner checks onto controls of common security frameworks.
package compliance

import (
	"sort"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

// Framework identifies a compliance framework.
type Framework struct {
	ID   string
	Name string
}

// Mapping lists the controls a check provides evidence for.
type Mapping struct {
	Check    checker.CheckName
	Controls map[string][]string // framework ID -> requirement IDs
	Priority map[string]string   // framework ID -> Critical, High, Medium, Low
}

var frameworks = []Framework{
	{ID: "iso27001", Name: "ISO/IEC 27001:2022"},
	{ID: "jisq27001", Name: "JIS Q 27001"},
	{ID: "kisms", Name: "K-ISMS"},
	{ID: "mtcs", Name: "MTCS SS 584"},
	{ID: "fisc", Name: "FISC Security Guidelines"},
}

var mappings = map[checker.CheckName]Mapping{
	checker.CheckHTTPS: {
		Controls: map[string][]string{
			"iso27001":  {"A.8.24", "A.8.9"},
			"jisq27001": {"A.8.24", "A.10.1.1"},
			"kisms":     {"2.8.1", "2.8.2"},
			"mtcs":      {"CC-02", "IVS-05"},
			"fisc":      {"Network Security 3-1"},
		},
		Priority: uniform("Critical", "iso27001", "jisq27001", "kisms", "mtcs", "fisc"),
	},
	checker.CheckHSTS: {
		Controls: map[string][]string{
			"iso27001":  {"A.8.24"},
			"jisq27001": {"A.8.24"},
			"kisms":     {"2.8.1"},
			"mtcs":      {"CC-02"},
			"fisc":      {"Network Security 3-1"},
		},
		Priority: uniform("High", "iso27001", "jisq27001", "kisms", "mtcs", "fisc"),
	},
	checker.CheckCSRF: {
		Controls: map[string][]string{
			"iso27001":  {"A.8.16"},
			"jisq27001": {"A.8.16"},
			"kisms":     {"2.7.3"},
		},
		Priority: uniform("High", "iso27001", "jisq27001", "kisms"),
	},
	checker.CheckCORS: {
		Controls: map[string][]string{
			"iso27001":  {"A.8.16", "A.8.20"},
			"jisq27001": {"A.8.16"},
			"kisms":     {"2.7.1"},
			"fisc":      {"System Development 4-3"},
		},
		Priority: uniform("High", "iso27001", "jisq27001", "kisms", "fisc"),
	},
	checker.CheckFormValidation: {
		Controls: map[string][]string{
			"iso27001":  {"A.8.28"},
			"jisq27001": {"A.14.2.5"},
			"kisms":     {"2.10.7"},
		},
		Priority: uniform("Low", "iso27001", "jisq27001", "kisms"),
	},
	checker.CheckSecurityHeaders: {
		Controls: map[string][]string{
			"iso27001":  {"A.8.16", "A.8.23"},
			"jisq27001": {"A.8.16"},
			"kisms":     {"2.7.3"},
			"mtcs":      {"IVS-05"},
		},
		Priority: uniform("Medium", "iso27001", "jisq27001", "kisms", "mtcs"),
	},
	checker.CheckXSSProtection: {
		Controls: map[string][]string{
			"iso27001":  {"A.8.16", "A.8.28"},
			"jisq27001": {"A.8.16"},
			"kisms":     {"2.7.3"},
		},
		Priority: uniform("Medium", "iso27001", "jisq27001", "kisms"),
	},
	checker.CheckSSL: {
		Controls: map[string][]string{
			"iso27001":  {"A.8.24"},
			"jisq27001": {"A.8.24"},
			"kisms":     {"2.8.2"},
			"mtcs":      {"IVS-05"},
		},
		Priority: uniform("High", "iso27001", "jisq27001", "kisms", "mtcs"),
	},
}

func uniform(priority string, ids ...string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = priority
	}
	return out
}

// Frameworks returns the supported frameworks.
func Frameworks() []Framework {
	out := make([]Framework, len(frameworks))
	copy(out, frameworks)
	return out
}

// LookupFramework finds a framework by ID.
func LookupFramework(id string) (Framework, bool) {
	for _, f := range frameworks {
		if f.ID == id {
			return f, true
		}
	}
	return Framework{}, false
}

// MappingFor returns the controls covered by a check.
func MappingFor(name checker.CheckName) (Mapping, bool) {
	m, ok := mappings[name]
	if !ok {
		return Mapping{}, false
	}
	m.Check = name
	return m, true
}

// ControlsFor returns the requirement IDs of framework that a check maps to, sorted.
func ControlsFor(name checker.CheckName, framework string) []string {
	m, ok := mappings[name]
	if !ok {
		return nil
	}
	controls := append([]string(nil), m.Controls[framework]...)
	sort.Strings(controls)
	return controls
}

// ChecksForFramework returns the checks with at least one control in framework, in report order.
func ChecksForFramework(framework string) []checker.CheckName {
	var out []checker.CheckName
	for _, name := range checker.CheckNames() {
		if len(mappings[name].Controls[framework]) > 0 {
			out = append(out, name)
		}
	}
	return out
}
