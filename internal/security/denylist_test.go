package security

import "testing"

func TestDenylist_BasicDeny(t *testing.T) {
	d := NewDenylist([]string{"**/.env*", "**/*.key"})

	cases := map[string]bool{
		".env":            true,
		"config/.env":     true,
		"secrets/api.key": true,
		"README.md":       false,
	}
	for path, want := range cases {
		if got := d.IsDenied(path); got != want {
			t.Errorf("IsDenied(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDenylist_DirectoryPatterns(t *testing.T) {
	d := NewDenylist([]string{"**/.aws/**", "**/secrets/**"})

	cases := map[string]bool{
		".aws/credentials":      true,
		"home/user/.aws/config": true,
		"secrets/api_key.txt":   true,
		"aws_config.toml":       false,
	}
	for path, want := range cases {
		if got := d.IsDenied(path); got != want {
			t.Errorf("IsDenied(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDenylist_MatchingPattern(t *testing.T) {
	d := NewDenylist([]string{"**/.env*"})

	pattern, ok := d.MatchingPattern(".env")
	if !ok || pattern != "**/.env*" {
		t.Errorf("MatchingPattern(%q) = %q,%v, want %q,true", ".env", pattern, ok, "**/.env*")
	}

	_, ok = d.MatchingPattern("README.md")
	if ok {
		t.Error("expected no match for README.md")
	}
}
