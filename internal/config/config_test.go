package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinBreakLen != 35 {
		t.Fatalf("MinBreakLen = %d, want 35", cfg.MinBreakLen)
	}
	if cfg.ShortOligoLen != 20 {
		t.Fatalf("ShortOligoLen = %d, want 20", cfg.ShortOligoLen)
	}
	if len(cfg.Palette) != len(DefaultPalette) {
		t.Fatalf("Palette length = %d, want %d", len(cfg.Palette), len(DefaultPalette))
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"min_break_len": 42, "verify_invariants": true}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinBreakLen != 42 {
		t.Fatalf("MinBreakLen = %d, want 42", cfg.MinBreakLen)
	}
	if !cfg.VerifyInvariants {
		t.Fatal("VerifyInvariants = false, want true")
	}
	if cfg.ShortOligoLen != 20 {
		t.Errorf("ShortOligoLen = %d, want default 20", cfg.ShortOligoLen)
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := "min_break_len = 28\npalette = [\"#111111\", \"#222222\"]\ndisabled_tools = [\"breaks_apply\"]\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinBreakLen != 28 {
		t.Errorf("MinBreakLen = %d, want 28", cfg.MinBreakLen)
	}
	if len(cfg.Palette) != 2 || cfg.Palette[0] != "#111111" {
		t.Errorf("Palette = %v, want overlay palette", cfg.Palette)
	}
	if len(cfg.DisabledTools) != 1 || cfg.DisabledTools[0] != "breaks_apply" {
		t.Errorf("DisabledTools = %v, want [breaks_apply]", cfg.DisabledTools)
	}
}

func TestLoad_JSONPreferredOverTOML(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(`{"min_break_len": 40}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("min_break_len = 10\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MinBreakLen != 40 {
		t.Errorf("MinBreakLen = %d, want 40 (config.json wins)", cfg.MinBreakLen)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	if err := os.WriteFile(configPath, []byte("min_break_len = = 3"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	globalConfig := `{"min_break_len": 50, "disabled_tools": ["breaks_apply"]}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	repoDir := filepath.Join(repoRoot, ".origami")
	if err := os.MkdirAll(repoDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	repoConfig := `{"min_break_len": 30, "disabled_tools": ["design_delete"]}`
	if err := os.WriteFile(filepath.Join(repoDir, "config.json"), []byte(repoConfig), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.MinBreakLen != 30 {
		t.Errorf("MinBreakLen = %d, want 30 (repo override)", cfg.MinBreakLen)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools = %v, want 2 merged entries", cfg.DisabledTools)
	}
	if cfg.DisabledTools[0] != "breaks_apply" || cfg.DisabledTools[1] != "design_delete" {
		t.Errorf("DisabledTools = %v, want [breaks_apply design_delete]", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_NestedStartDir(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	repoDir := filepath.Join(repoRoot, ".origami")
	if err := os.MkdirAll(repoDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(repoDir, "config.toml"), []byte("short_oligo_len = 12\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	nested := filepath.Join(repoRoot, "designs", "tiles")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(globalDir, nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.ShortOligoLen != 12 {
		t.Errorf("ShortOligoLen = %d, want 12", cfg.ShortOligoLen)
	}
	if cfg.MinBreakLen != 35 {
		t.Errorf("MinBreakLen = %d, want default 35", cfg.MinBreakLen)
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		MinBreakLen:   35,
		Palette:       []string{"#aaaaaa"},
		AllowedPaths:  []string{"/a", " /b "},
		DisabledTypes: []string{"breaks"},
	}
	overlay := &Config{
		ShortOligoLen:    15,
		AllowedPaths:     []string{"/b", "/c"},
		AllowUnsafePaths: true,
	}

	got := Merge(base, overlay)

	if got.MinBreakLen != 35 {
		t.Errorf("MinBreakLen = %d, want 35 (base kept)", got.MinBreakLen)
	}
	if got.ShortOligoLen != 15 {
		t.Errorf("ShortOligoLen = %d, want 15", got.ShortOligoLen)
	}
	if len(got.Palette) != 1 || got.Palette[0] != "#aaaaaa" {
		t.Errorf("Palette = %v, want base palette", got.Palette)
	}
	if len(got.AllowedPaths) != 3 {
		t.Errorf("AllowedPaths = %v, want 3 deduplicated entries", got.AllowedPaths)
	}
	if !got.AllowUnsafePaths {
		t.Error("AllowUnsafePaths = false, want true")
	}
	if len(got.DisabledTypes) != 1 {
		t.Errorf("DisabledTypes = %v, want [breaks]", got.DisabledTypes)
	}
}

func TestMergeStringSlice_EmptyIsNil(t *testing.T) {
	if got := mergeStringSlice([]string{" "}, nil); got != nil {
		t.Errorf("mergeStringSlice() = %v, want nil", got)
	}
}
