package firefox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lotas/tabdedupe/internal/types"
)

const sampleINI = `[General]
StartWithLastProfile=1
Version=2

[Profile0]
Name=default-release
IsRelative=1
Path=abc123.default-release
Default=1

[Profile1]
Name=dev-edition
IsRelative=0
Path=%ABS%
Default=0

[Profile2]
Name=no-session
IsRelative=1
Path=empty.profile

[Install308046B0AF4A39CB]
Default=abc123.default-release
Locked=1
`

func TestParseINI(t *testing.T) {
	profiles, err := parseINI(strings.NewReader(sampleINI))
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profile sections, got %d", len(profiles))
	}
	if !profiles[0].IsRelative || !profiles[0].IsDefault || profiles[0].Path != "abc123.default-release" {
		t.Errorf("profile 0 = %+v", profiles[0])
	}
}

func TestParseProfilesINI(t *testing.T) {
	dir := t.TempDir()
	absProfileDir := t.TempDir()
	iniPath := filepath.Join(dir, "profiles.ini")
	os.WriteFile(iniPath, []byte(strings.ReplaceAll(sampleINI, "%ABS%", absProfileDir)), 0o644)

	// Only profiles with a session file pass the filter.
	for _, p := range []string{filepath.Join(dir, "abc123.default-release"), absProfileDir} {
		backups := filepath.Join(p, "sessionstore-backups")
		os.MkdirAll(backups, 0o755)
		os.WriteFile(filepath.Join(backups, "previous.jsonlz4"), []byte("dummy"), 0o644)
	}
	os.MkdirAll(filepath.Join(dir, "empty.profile"), 0o755)

	profiles, err := ParseProfilesINI(iniPath, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Path != filepath.Join(dir, "abc123.default-release") {
		t.Errorf("expected resolved path, got %q", profiles[0].Path)
	}
	if profiles[1].Path != absProfileDir {
		t.Errorf("expected absolute path %q, got %q", absProfileDir, profiles[1].Path)
	}
	if got := SessionPath(profiles[1].Path); filepath.Base(got) != "previous.jsonlz4" {
		t.Errorf("SessionPath = %q, want previous.jsonlz4 fallback", got)
	}
}

func TestSelectProfile(t *testing.T) {
	profiles := []types.Profile{
		{Name: "work"},
		{Name: "home", IsDefault: true},
	}
	if p, err := SelectProfile(profiles, ""); err != nil || p.Name != "home" {
		t.Errorf("default: got %+v, %v", p, err)
	}
	if p, err := SelectProfile(profiles, "work"); err != nil || p.Name != "work" {
		t.Errorf("by name: got %+v, %v", p, err)
	}
	if _, err := SelectProfile(profiles, "missing"); err == nil {
		t.Error("expected error for unknown profile")
	}
	if p, err := SelectProfile(profiles[:1], ""); err != nil || p.Name != "work" {
		t.Errorf("no default: got %+v, %v", p, err)
	}
	if _, err := SelectProfile(nil, ""); err == nil {
		t.Error("expected error for no profiles")
	}
}

func TestFindFirefoxDir(t *testing.T) {
	dir := FindFirefoxDir()
	if dir == "" {
		t.Skip("no Firefox directory found on this system")
	}
	t.Logf("found Firefox dir: %s", dir)
}
