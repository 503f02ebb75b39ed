package compliance

import (
	"testing"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

func TestEveryCheckIsMapped(t *testing.T) {
	for _, name := range checker.CheckNames() {
		m, ok := MappingFor(name)
		if !ok {
			t.Fatalf("no mapping for %s", name)
		}
		if m.Check != name {
			t.Errorf("mapping check = %q, want %q", m.Check, name)
		}
		if len(m.Controls["iso27001"]) == 0 {
			t.Errorf("%s has no iso27001 controls", name)
		}
		for framework := range m.Controls {
			if _, ok := LookupFramework(framework); !ok {
				t.Errorf("%s references unknown framework %q", name, framework)
			}
			if m.Priority[framework] == "" {
				t.Errorf("%s has no priority for %s", name, framework)
			}
		}
	}
}

func TestControlsFor(t *testing.T) {
	got := ControlsFor(checker.CheckHTTPS, "iso27001")
	want := []string{"A.8.24", "A.8.9"}
	if len(got) != len(want) {
		t.Fatalf("ControlsFor = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ControlsFor = %v, want %v", got, want)
		}
	}

	if got := ControlsFor(checker.CheckName("unknown"), "iso27001"); got != nil {
		t.Errorf("expected nil for unknown check, got %v", got)
	}
}

func TestChecksForFramework(t *testing.T) {
	got := ChecksForFramework("fisc")
	want := []checker.CheckName{checker.CheckHTTPS, checker.CheckHSTS, checker.CheckCORS}
	if len(got) != len(want) {
		t.Fatalf("ChecksForFramework(fisc) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}

	if len(ChecksForFramework("iso27001")) != len(checker.CheckNames()) {
		t.Error("every check should map to iso27001")
	}
	if got := ChecksForFramework("nope"); len(got) != 0 {
		t.Errorf("unknown framework should match nothing, got %v", got)
	}
}

func TestFrameworksReturnsCopy(t *testing.T) {
	list := Frameworks()
	list[0].Name = "mutated"
	if f, _ := LookupFramework(list[0].ID); f.Name == "mutated" {
		t.Fatal("Frameworks must return a copy")
	}
}
