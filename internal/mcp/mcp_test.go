package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/db"
	"github.com/hpungsan/origami/internal/errors"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests
	cfg.VerifyInvariants = true
	return database, cfg
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// call runs a handler and returns its parsed success payload.
func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) map[string]any {
	t.Helper()
	result, err := handler(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return parseOutput(t, result)
}

// result extracts the "result" object of an ops.Output payload.
func resultOf(t *testing.T, out map[string]any) map[string]any {
	t.Helper()
	r, ok := out["result"].(map[string]any)
	if !ok {
		t.Fatalf("no result object in %v", out)
	}
	return r
}

func TestHandleDesignCreate(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "valid",
			args: map[string]any{"name": "Rect Tile", "title": "rectangle"},
		},
		{
			name:      "duplicate name",
			args:      map[string]any{"name": "rect tile"},
			wantError: true,
			errorCode: "NAME_ALREADY_EXISTS",
		},
		{
			name:      "missing name",
			args:      map[string]any{},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "unknown argument",
			args:      map[string]any{"name": "x", "workspace": "default"},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "wrong type",
			args:      map[string]any{"name": 12},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleDesignCreate(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantError {
				if !result.IsError {
					t.Fatal("expected error result")
				}
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			out := parseOutput(t, result)
			if out["name"] != "Rect Tile" || out["name_norm"] != "rect tile" {
				t.Errorf("output = %v", out)
			}
			if id, _ := out["id"].(string); len(id) != 26 {
				t.Errorf("id = %v, want ULID", out["id"])
			}
		})
	}
}

func TestHandlers_DesignWorkflow(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ref := map[string]any{"design": "tile"}
	with := func(extra map[string]any) map[string]any {
		args := map[string]any{"design": "tile"}
		for k, v := range extra {
			args[k] = v
		}
		return args
	}

	call(t, h.HandleDesignCreate, map[string]any{"name": "tile"})
	call(t, h.HandleHelixAdd, with(map[string]any{"helix": 0, "min_idx": 0, "max_idx": 99}))

	scaffold := resultOf(t, call(t, h.HandleStrandAdd, with(map[string]any{"helix": 0, "direction": "forward", "low_idx": 0, "high_idx": 89})))
	staple := resultOf(t, call(t, h.HandleStrandAdd, with(map[string]any{"helix": 0, "direction": "reverse", "low_idx": 0, "high_idx": 79})))
	if scaffold["direction"] != float64(0) || staple["direction"] != float64(1) {
		t.Fatalf("directions = %v, %v", scaffold["direction"], staple["direction"])
	}

	summary := call(t, h.HandleOligoSetScaffold, with(map[string]any{"oligo": scaffold["oligo"]}))
	if summary["scaffold"] != scaffold["oligo"] {
		t.Errorf("scaffold = %v, want %v", summary["scaffold"], scaffold["oligo"])
	}

	applied := resultOf(t, call(t, h.HandleSequenceApply, with(map[string]any{"oligo": scaffold["oligo"], "sequence": strings.Repeat("A", 90)})))
	if applied["applied"] != float64(90) {
		t.Errorf("applied = %v, want 90", applied["applied"])
	}
	changed := resultOf(t, call(t, h.HandleSequencePropagate, with(map[string]any{"oligo": scaffold["oligo"]})))
	if got := changed["changed"].([]any); len(got) != 1 || got[0] != staple["oligo"] {
		t.Errorf("changed = %v, want [%v]", got, staple["oligo"])
	}

	plan := resultOf(t, call(t, h.HandleBreaksPlan, with(map[string]any{"oligo": staple["oligo"], "min_break_len": 30})))
	instructions := plan["instructions"].([]any)
	if len(instructions) != 2 {
		t.Fatalf("instructions = %v, want 2", instructions)
	}
	report := resultOf(t, call(t, h.HandleBreaksApply, with(map[string]any{"instructions": instructions})))
	if report["split"] != float64(2) {
		t.Errorf("split = %v, want 2", report["split"])
	}

	oligos := call(t, h.HandleOligoList, ref)
	list := oligos["result"].([]any)
	if len(list) != 4 {
		t.Fatalf("oligo count = %d, want 4", len(list))
	}
	for _, item := range list {
		o := item.(map[string]any)
		if o["id"] == scaffold["oligo"] {
			continue
		}
		seq, _ := o["sequence"].(string)
		if strings.Trim(seq, "T") != "" || len(seq) != int(o["length"].(float64)) {
			t.Errorf("staple %v sequence = %q", o["id"], seq)
		}
	}

	rendered := resultOf(t, call(t, h.HandleDesignReport, ref))
	if !strings.Contains(rendered["content"].(string), "# tile") {
		t.Errorf("report content = %q", rendered["content"])
	}

	opened := call(t, h.HandleDesignOpen, ref)
	snap := opened["snapshot"].(map[string]any)
	if strands := snap["strands"].([]any); len(strands) != 4 {
		t.Errorf("snapshot strands = %d, want 4", len(strands))
	}
}

func TestHandleStrandAdd_Errors(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	ctx := context.Background()
	call(t, h.HandleDesignCreate, map[string]any{"name": "tile"})
	call(t, h.HandleHelixAdd, map[string]any{"design": "tile", "helix": 0, "min_idx": 0, "max_idx": 20})
	call(t, h.HandleStrandAdd, map[string]any{"design": "tile", "helix": 0, "direction": "fwd", "low_idx": 0, "high_idx": 10})

	tests := []struct {
		name string
		args map[string]any
		code string
	}{
		{"bad direction", map[string]any{"design": "tile", "helix": 0, "direction": "up", "low_idx": 12, "high_idx": 14}, "INVALID_REQUEST"},
		{"overlap", map[string]any{"design": "tile", "helix": 0, "direction": "fwd", "low_idx": 5, "high_idx": 14}, "OVERLAP"},
		{"out of range", map[string]any{"design": "tile", "helix": 0, "direction": "rev", "low_idx": 15, "high_idx": 30}, "INDEX_OUT_OF_RANGE"},
		{"missing helix", map[string]any{"design": "tile", "helix": 4, "direction": "rev", "low_idx": 0, "high_idx": 3}, "NOT_FOUND"},
		{"ambiguous", map[string]any{"design": "tile", "design_id": "x", "helix": 0, "direction": "rev", "low_idx": 0, "high_idx": 3}, "AMBIGUOUS_ADDRESSING"},
		{"no design", map[string]any{"helix": 0, "direction": "rev", "low_idx": 0, "high_idx": 3}, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleStrandAdd(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected error result")
			}
			assertErrorCode(t, result, tt.code)
		})
	}
}

func TestHandleDesignExportImport(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	call(t, h.HandleDesignCreate, map[string]any{"name": "tile"})
	call(t, h.HandleHelixAdd, map[string]any{"design": "tile", "helix": 0, "min_idx": 0, "max_idx": 20})

	path := filepath.Join(t.TempDir(), "tile.jsonl")
	exported := call(t, h.HandleDesignExport, map[string]any{"design": "tile", "path": path})
	if exported["count"] != float64(1) {
		t.Fatalf("count = %v, want 1", exported["count"])
	}

	result, err := h.HandleDesignImport(context.Background(), makeRequest(map[string]any{"path": path, "mode": "replace"}))
	if err != nil {
		t.Fatal(err)
	}
	assertErrorCode(t, result, "INVALID_REQUEST")

	imported := call(t, h.HandleDesignImport, map[string]any{"path": path, "mode": "rename"})
	if imported["imported"] != float64(1) {
		t.Fatalf("imported = %v, want 1", imported["imported"])
	}
	helices := call(t, h.HandleHelixList, map[string]any{"design": "tile-2"})
	if list := helices["result"].([]any); len(list) != 1 {
		t.Errorf("helices = %v", list)
	}

	listed := call(t, h.HandleDesignList, map[string]any{})
	if items := listed["items"].([]any); len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
}

func TestHandleDesignDeleteAndPurge(t *testing.T) {
	database, cfg := testSetup(t)
	h := NewHandlers(database, cfg)
	call(t, h.HandleDesignCreate, map[string]any{"name": "tile"})

	deleted := call(t, h.HandleDesignDelete, map[string]any{"design": "tile"})
	if deleted["deleted"] != true {
		t.Errorf("deleted = %v", deleted["deleted"])
	}
	purged := call(t, h.HandleDesignPurge, map[string]any{})
	if purged["purged"] != float64(1) {
		t.Errorf("purged = %v, want 1", purged["purged"])
	}

	result, err := h.HandleDesignOpen(context.Background(), makeRequest(map[string]any{"design": "tile"}))
	if err != nil {
		t.Fatal(err)
	}
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestServerRegistration(t *testing.T) {
	database, cfg := testSetup(t)

	s := NewServer(database, cfg, "test")
	tools := s.ListTools()
	if len(tools) != len(toolRegistry) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry))
	}
	for name, entry := range toolRegistry {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
		if entry.def.Name != name {
			t.Errorf("tool %q defined with name %q", name, entry.def.Name)
		}
		if !contains(KnownTypes, GetTypeForTool(name)) {
			t.Errorf("tool %q has unknown type", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg := testSetup(t)

	cfg.DisabledTools = []string{"design_purge", "design_purge", "breaks_auto"}
	cfg.DisabledTypes = []string{"sequence"}
	tools := NewServer(database, cfg, "test").ListTools()

	want := len(toolRegistry) - 2 - 3
	if len(tools) != want {
		t.Errorf("registered tool count = %d, want %d", len(tools), want)
	}
	for _, name := range []string{"design_purge", "breaks_auto", "sequence_apply", "sequence_clear", "sequence_propagate"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
	for _, name := range []string{"design_create", "strand_add", "breaks_plan"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("tool %q should be registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, cfg := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	if tools := NewServer(database, cfg, "test").ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabled(t *testing.T) {
	if unknown := ValidateDisabledTools([]string{"design_purge", "fake_tool"}); len(unknown) != 1 || unknown[0] != "fake_tool" {
		t.Errorf("ValidateDisabledTools() = %v", unknown)
	}
	if unknown := ValidateDisabledTools(AllToolNames()); len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
	if unknown := ValidateDisabledTypes([]string{"breaks", "capsule"}); len(unknown) != 1 || unknown[0] != "capsule" {
		t.Errorf("ValidateDisabledTypes() = %v", unknown)
	}
}

func TestExpandTypesToTools(t *testing.T) {
	if got := ExpandTypesToTools(nil); got != nil {
		t.Errorf("ExpandTypesToTools(nil) = %v", got)
	}
	got := ExpandTypesToTools([]string{"xover"})
	if len(got) != 2 || !contains(got, "xover_create") || !contains(got, "xover_remove") {
		t.Errorf("ExpandTypesToTools(xover) = %v", got)
	}
}

func TestGetTypeForTool(t *testing.T) {
	tests := map[string]string{
		"strand_split":       "strand",
		"helix_set_property": "helix",
		"nounderscore":       "",
		"_leading":           "",
	}
	for name, want := range tests {
		if got := GetTypeForTool(name); got != want {
			t.Errorf("GetTypeForTool(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrapped := fmt.Errorf("instruction at helix 3 forward idx 40: %w", errors.NewOverlap(3, 40, 60, 7))

	errObj := errorObject(t, errorResult(wrapped))
	if errObj["code"] != string(errors.ErrOverlap) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrOverlap)
	}
	msg := errObj["message"].(string)
	if !strings.HasPrefix(msg, "instruction at helix 3") {
		t.Errorf("message should keep wrapper context, got: %s", msg)
	}
	if strings.Contains(msg, "OVERLAP:") {
		t.Errorf("message should not repeat the code, got: %s", msg)
	}
}

func TestErrorResult_PlainErrorIsInternal(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("disk full")))
	if errObj["code"] != string(errors.ErrInternal) || errObj["message"] != "an internal error occurred" {
		t.Errorf("error = %v", errObj)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewNotFound("design", "abc")))
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected IsError=true")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in payload: %v", payload)
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	if code := errorObject(t, result)["code"]; code != expectedCode {
		t.Errorf("got error code %v, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
