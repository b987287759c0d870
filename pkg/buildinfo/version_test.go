package buildinfo

import "testing"

func TestCacheVersion(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	tests := []struct {
		version, commit, want string
	}{
		{"v1.0.0", "abcdef0123456789", "v1.0.0"},
		{"dev", "none", "dev"},
		{"dev", "abcdef0123456789", "dev+abcdef012345"},
		{"dev", "abc", "dev+abc"},
	}
	for _, tt := range tests {
		Version, Commit = tt.version, tt.commit
		if got := CacheVersion(); got != tt.want {
			t.Errorf("CacheVersion() with %s/%s = %q, want %q", tt.version, tt.commit, got, tt.want)
		}
	}
}
