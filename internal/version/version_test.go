package version

import "testing"

func TestString(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.2.0", "abc123", "2026-01-02"
	if got, want := String(), "v1.2.0 (abc123, 2026-01-02)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
