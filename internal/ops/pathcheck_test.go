package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/errors"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func TestValidatePath_Rejects(t *testing.T) {
	allowed := t.TempDir()
	other := t.TempDir()
	sub := filepath.Join(allowed, "sub")
	if err := os.MkdirAll(sub, 0700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(sub, "nested.jsonl"))
	writeFile(t, filepath.Join(other, "outside.jsonl"))

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed}

	tests := []struct {
		name string
		path string
		mode PathCheckMode
		code errors.ErrorCode
	}{
		{"empty", "", PathCheckWrite, errors.ErrInvalidRequest},
		{"parent traversal", "../backup.jsonl", PathCheckWrite, errors.ErrInvalidRequest},
		{"mid-path traversal", allowed + "/../x.jsonl", PathCheckWrite, errors.ErrInvalidRequest},
		{"forward-slash traversal", "a/../../x.jsonl", PathCheckWrite, errors.ErrInvalidRequest},
		{"no extension", filepath.Join(allowed, "backup"), PathCheckWrite, errors.ErrInvalidRequest},
		{"json extension", filepath.Join(allowed, "backup.json"), PathCheckWrite, errors.ErrInvalidRequest},
		{"outside allowed", filepath.Join(other, "outside.jsonl"), PathCheckRead, errors.ErrInvalidRequest},
		{"nested read", filepath.Join(sub, "nested.jsonl"), PathCheckRead, errors.ErrInvalidRequest},
		{"nested write", filepath.Join(sub, "out.jsonl"), PathCheckWrite, errors.ErrInvalidRequest},
		{"missing file", filepath.Join(allowed, "missing.jsonl"), PathCheckRead, errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePath(tt.path, tt.mode, cfg)
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidatePath(%q) error = %v, want %s", tt.path, err, tt.code)
			}
		})
	}
}

func TestValidatePath_AllowedDirectory(t *testing.T) {
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	in := filepath.Join(allowed, "in.jsonl")
	writeFile(t, in)

	got, err := ValidatePath(in, PathCheckRead, cfg)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if got != in {
		t.Errorf("ValidatePath() = %q, want %q", got, in)
	}
	if _, err := ValidatePath(filepath.Join(allowed, "new.jsonl"), PathCheckWrite, cfg); err != nil {
		t.Errorf("write error = %v", err)
	}
}

func TestValidatePath_DefaultConfigRestricts(t *testing.T) {
	_, err := ValidatePath(filepath.Join(t.TempDir(), "backup.jsonl"), PathCheckWrite, config.DefaultConfig())
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestValidatePath_UnsafePathsSkipDirectoryRule(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	in := filepath.Join(dir, "in.jsonl")
	writeFile(t, in)
	if _, err := ValidatePath(in, PathCheckRead, cfg); err != nil {
		t.Errorf("read error = %v", err)
	}
	if _, err := ValidatePath(filepath.Join(dir, "out.jsonl"), PathCheckWrite, cfg); err != nil {
		t.Errorf("write error = %v", err)
	}
	if _, err := ValidatePath(filepath.Join(dir, "gone.jsonl"), PathCheckRead, cfg); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing file error = %v, want NOT_FOUND", err)
	}
}

func TestValidatePath_SymlinkRejected(t *testing.T) {
	target := filepath.Join(t.TempDir(), "target.jsonl")
	writeFile(t, target)

	for _, unsafe := range []bool{false, true} {
		dir := t.TempDir()
		link := filepath.Join(dir, "link.jsonl")
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("cannot create symlink: %v", err)
		}
		cfg := config.DefaultConfig()
		cfg.AllowedPaths = []string{dir}
		cfg.AllowUnsafePaths = unsafe

		for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
			if _, err := ValidatePath(link, mode, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("unsafe=%v mode=%d error = %v, want INVALID_REQUEST", unsafe, mode, err)
			}
		}
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := map[string]bool{
		"/home/user/file.jsonl":    false,
		"../file.jsonl":            true,
		"/home/../etc/passwd":      true,
		"./file.jsonl":             false,
		"/home/.hidden/file.jsonl": false,
		"file..name.jsonl":         false,
		"/tmp/a/b/../c.jsonl":      true,
		"..":                       true,
	}
	for path, want := range tests {
		if got := containsTraversal(path); got != want {
			t.Errorf("containsTraversal(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"six helix bundle", "six helix bundle"},
		{"path/to/file", "path-to-file"},
		{"path\\to\\file", "path-to-file"},
		{"foo..bar", "foo-bar"},
		{"../../../etc/passwd", "etc-passwd"},
		{"../foo/bar\\..\\baz", "foo-bar-baz"},
		{"foo\x00bar\x01", "foobar"},
		{"../../..", "unnamed"},
		{"tile-中文", "tile-中文"},
		{"---a---b---", "a-b"},
	}
	for _, tt := range tests {
		if got := SanitizeForFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeForFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
