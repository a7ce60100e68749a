package mcp

import (
	"database/sql"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/origami/internal/config"
)

// KnownTypes lists all valid tool group names.
var KnownTypes = []string{"design", "helix", "strand", "xover", "oligo", "sequence", "breaks"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"design_create": {designCreateDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDesignCreate }},
	"design_open":   {designOpenDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDesignOpen }},
	"design_update": {designUpdateDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDesignUpdate }},
	"design_list":   {designListDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDesignList }},
	"design_delete": {designDeleteDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDesignDelete }},
	"design_purge":  {designPurgeDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDesignPurge }},
	"design_export": {designExportDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDesignExport }},
	"design_import": {designImportDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDesignImport }},
	"design_report": {designReportDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleDesignReport }},

	"helix_add":          {helixAddDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleHelixAdd }},
	"helix_remove":       {helixRemoveDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleHelixRemove }},
	"helix_list":         {helixListDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleHelixList }},
	"helix_properties":   {helixPropertiesDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleHelixProperties }},
	"helix_set_property": {helixSetPropertyDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleHelixSetProperty }},

	"strand_add":    {strandAddDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleStrandAdd }},
	"strand_remove": {strandRemoveDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleStrandRemove }},
	"strand_split":  {strandSplitDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleStrandSplit }},
	"strand_merge":  {strandMergeDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleStrandMerge }},
	"strand_get":    {strandGetDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleStrandGet }},

	"xover_create": {xoverCreateDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleXoverCreate }},
	"xover_remove": {xoverRemoveDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleXoverRemove }},

	"oligo_get":          {oligoGetDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleOligoGet }},
	"oligo_list":         {oligoListDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleOligoList }},
	"oligo_set_color":    {oligoSetColorDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleOligoSetColor }},
	"oligo_set_scaffold": {oligoSetScaffoldDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleOligoSetScaffold }},

	"sequence_apply":     {sequenceApplyDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSequenceApply }},
	"sequence_clear":     {sequenceClearDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSequenceClear }},
	"sequence_propagate": {sequencePropagateDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleSequencePropagate }},

	"breaks_plan":  {breaksPlanDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleBreaksPlan }},
	"breaks_apply": {breaksApplyDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleBreaksApply }},
	"breaks_auto":  {breaksAutoDef, func(h *Handlers) server.ToolHandlerFunc { return h.HandleBreaksAuto }},
}

// AllToolNames returns every registered tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if !slices.Contains(KnownTypes, name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the group name from a tool name
// ("strand_split" → "strand").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	tools := make([]string, 0)
	for name := range toolRegistry {
		if slices.Contains(types, GetTypeForTool(name)) {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates an MCP server with the design tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are left out.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"origami",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandlers(db, cfg)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the MCP tools over stdio.
func Run(db *sql.DB, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(db, cfg, version))
}
