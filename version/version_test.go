package version

import (
	"strings"
	"testing"
)

func withBuild(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	v, c, b := Version, Commit, BuildTime
	Version, Commit, BuildTime = version, commit, buildTime
	t.Cleanup(func() { Version, Commit, BuildTime = v, c, b })
}

func TestGetDevBuild(t *testing.T) {
	withBuild(t, "dev", "", "")
	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected 'dev', got %q", info.Version)
	}
	if info.Release {
		t.Error("dev must not be a release")
	}
	if info.GoVersion == "" {
		t.Error("expected go version from build info")
	}
}

func TestGetLinkTimeValuesWin(t *testing.T) {
	withBuild(t, "1.2.0", "abcdef123456", "2026-03-01T10:00:00Z")
	info := Get()
	if info.Commit != "abcdef1" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.Commit)
	}
	if info.BuildTime != "2026-03-01T10:00:00Z" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
}

func TestDirtyVersionIsNotRelease(t *testing.T) {
	withBuild(t, "1.2.0-dirty", "abc1234", "")
	if Get().Release {
		t.Error("dirty version must not be a release")
	}
}

func TestShortAndString(t *testing.T) {
	i := Info{Version: "1.2.0", Commit: "abc1234"}
	if got := i.Short(); got != "1.2.0-abc1234" {
		t.Errorf("Short() = %q", got)
	}
	i.Dirty = true
	if got := i.Short(); got != "1.2.0-abc1234-dirty" {
		t.Errorf("Short() = %q", got)
	}
	i.BuildTime = "2026-03-01T10:00:00Z"
	if got := i.String(); !strings.HasSuffix(got, "(built 2026-03-01T10:00:00Z)") {
		t.Errorf("String() = %q", got)
	}
}
