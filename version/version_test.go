package version

import (
	"strings"
	"testing"
)

func TestInfoShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"dev", Info{Version: "dev"}, "dev"},
		{"commit", Info{Version: "1.4.0", GitCommit: "abc1234"}, "1.4.0-abc1234"},
		{"dirty", Info{Version: "1.4.0", GitCommit: "abc1234", Dirty: true}, "1.4.0-abc1234-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfoIsRelease(t *testing.T) {
	if (Info{Version: "dev"}).IsRelease() {
		t.Error("dev must not be a release")
	}
	if (Info{Version: "1.4.0", Dirty: true}).IsRelease() {
		t.Error("dirty build must not be a release")
	}
	if !(Info{Version: "1.4.0"}).IsRelease() {
		t.Error("expected release")
	}
}

func TestInfoString(t *testing.T) {
	got := Info{Version: "1.4.0", BuildTime: "2026-01-02T03:04:05Z", GoVersion: "go1.26.0"}.String()
	for _, want := range []string{"1.4.0", "built 2026-01-02T03:04:05Z", "go1.26.0"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestGetUsesLinkedValues(t *testing.T) {
	orig := [3]string{Version, GitCommit, BuildTime}
	defer func() { Version, GitCommit, BuildTime = orig[0], orig[1], orig[2] }()

	Version, GitCommit, BuildTime = "2.0.0", "0123456789abcdef", "2026-05-01T00:00:00Z"
	info := Get()
	if info.Version != "2.0.0" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.GitCommit != "0123456" {
		t.Errorf("GitCommit = %q, want truncated to 7", info.GitCommit)
	}
	if info.BuildTime != "2026-05-01T00:00:00Z" {
		t.Errorf("BuildTime = %q", info.BuildTime)
	}
}
