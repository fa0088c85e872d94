package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withPlainOutput(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func override(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = version, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColoredKeepsTextWithoutColor(t *testing.T) {
	withPlainOutput(t)
	for _, v := range []string{"0.1.0-dev", "1.2.3", "1.0.0-beta.1", "1.2.3-rc.1+build.123"} {
		override(t, v, "", "")
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}

func TestColoredLeavesOddVersionsAlone(t *testing.T) {
	override(t, "nightly", "", "")
	if got := Colored(); got != "nightly" {
		t.Errorf("Colored() = %q", got)
	}
}

func TestBannerOptionalFields(t *testing.T) {
	withPlainOutput(t)
	override(t, "1.2.3", "", "")
	if got := Banner(); got != "phpc 1.2.3\n" {
		t.Errorf("Banner() = %q", got)
	}

	override(t, "1.2.3", "abc123def456", "2024-01-15T10:30:00Z")
	got := Banner()
	if !strings.Contains(got, "commit: abc123def456\n") || !strings.Contains(got, "built:  2024-01-15T10:30:00Z\n") {
		t.Errorf("Banner() = %q", got)
	}
}
