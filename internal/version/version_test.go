package version

import (
	"strings"
	"testing"
)

func TestString_Dirty(t *testing.T) {
	oldVersion, oldDirty := Version, Dirty
	defer func() { Version, Dirty = oldVersion, oldDirty }()

	Version, Dirty = "1.2.3", "false"
	if got := String(); got != "1.2.3" {
		t.Errorf("String() = %q, want %q", got, "1.2.3")
	}

	Dirty = "true"
	if got := String(); got != "1.2.3-dirty" {
		t.Errorf("String() = %q, want %q", got, "1.2.3-dirty")
	}
	if !Get().Dirty {
		t.Error("Get().Dirty = false, want true")
	}
}

func TestUserAgent(t *testing.T) {
	if ua := UserAgent(); !strings.HasPrefix(ua, "detag/") {
		t.Errorf("UserAgent() = %q, want detag/ prefix", ua)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	for _, want := range []string{"detag", "Commit:", "Go version:", "OS/Arch:"} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() missing %q:\n%s", want, full)
		}
	}
}
