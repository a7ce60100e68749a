package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Tool arguments decode straight into the ops input types.

// HandleDesignCreate handles design_create.
func (h *Handlers) HandleDesignCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.CreateInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Create(ctx, h.db, input))
}

// HandleDesignOpen handles design_open.
func (h *Handlers) HandleDesignOpen(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.Ref](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Open(ctx, h.db, h.cfg, input))
}

// HandleDesignUpdate handles design_update.
func (h *Handlers) HandleDesignUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.UpdateInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Update(ctx, h.db, h.cfg, input))
}

// HandleDesignList handles design_list.
func (h *Handlers) HandleDesignList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ListInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.List(ctx, h.db, input))
}

// HandleDesignDelete handles design_delete.
func (h *Handlers) HandleDesignDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.Ref](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Delete(ctx, h.db, input))
}

// HandleDesignPurge handles design_purge.
func (h *Handlers) HandleDesignPurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.PurgeInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Purge(ctx, h.db, input))
}

// HandleDesignExport handles design_export.
func (h *Handlers) HandleDesignExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ExportInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Export(ctx, h.db, h.cfg, input))
}

// HandleDesignImport handles design_import.
func (h *Handlers) HandleDesignImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ImportInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Import(ctx, h.db, h.cfg, input))
}

// HandleDesignReport handles design_report.
func (h *Handlers) HandleDesignReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ReportInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Report(ctx, h.db, h.cfg, input))
}

// HandleHelixAdd handles helix_add.
func (h *Handlers) HandleHelixAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.AddHelixInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.AddHelix(ctx, h.db, h.cfg, input))
}

// HandleHelixRemove handles helix_remove.
func (h *Handlers) HandleHelixRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.HelixInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.RemoveHelix(ctx, h.db, h.cfg, input))
}

// HandleHelixList handles helix_list.
func (h *Handlers) HandleHelixList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.Ref](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Helices(ctx, h.db, h.cfg, input))
}

// HandleHelixProperties handles helix_properties.
func (h *Handlers) HandleHelixProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.HelixPropertiesInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.HelixProperties(ctx, h.db, h.cfg, input))
}

// HandleHelixSetProperty handles helix_set_property.
func (h *Handlers) HandleHelixSetProperty(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.SetHelixPropertyInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.SetHelixProperty(ctx, h.db, h.cfg, input))
}

// HandleStrandAdd handles strand_add.
func (h *Handlers) HandleStrandAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.AddStrandInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.AddStrand(ctx, h.db, h.cfg, input))
}

// HandleStrandRemove handles strand_remove.
func (h *Handlers) HandleStrandRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.StrandInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.RemoveStrand(ctx, h.db, h.cfg, input))
}

// HandleStrandSplit handles strand_split.
func (h *Handlers) HandleStrandSplit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.SplitStrandInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.SplitStrand(ctx, h.db, h.cfg, input))
}

// HandleStrandMerge handles strand_merge.
func (h *Handlers) HandleStrandMerge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.MergeStrandInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.MergeStrand(ctx, h.db, h.cfg, input))
}

// HandleStrandGet handles strand_get.
func (h *Handlers) HandleStrandGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.PositionInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.GetStrand(ctx, h.db, h.cfg, input))
}

// HandleXoverCreate handles xover_create.
func (h *Handlers) HandleXoverCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.XoverInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.CreateXover(ctx, h.db, h.cfg, input))
}

// HandleXoverRemove handles xover_remove.
func (h *Handlers) HandleXoverRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.XoverInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.RemoveXover(ctx, h.db, h.cfg, input))
}

// HandleOligoGet handles oligo_get.
func (h *Handlers) HandleOligoGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.PositionInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.GetOligoAt(ctx, h.db, h.cfg, input))
}

// HandleOligoList handles oligo_list.
func (h *Handlers) HandleOligoList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.Ref](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.Oligos(ctx, h.db, h.cfg, input))
}

// HandleOligoSetColor handles oligo_set_color.
func (h *Handlers) HandleOligoSetColor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.SetOligoColorInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.SetOligoColor(ctx, h.db, h.cfg, input))
}

// HandleOligoSetScaffold handles oligo_set_scaffold.
func (h *Handlers) HandleOligoSetScaffold(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.OligoInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.SetScaffold(ctx, h.db, h.cfg, input))
}

// HandleSequenceApply handles sequence_apply.
func (h *Handlers) HandleSequenceApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ApplySequenceInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.ApplySequence(ctx, h.db, h.cfg, input))
}

// HandleSequenceClear handles sequence_clear.
func (h *Handlers) HandleSequenceClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.OligoInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.ClearSequence(ctx, h.db, h.cfg, input))
}

// HandleSequencePropagate handles sequence_propagate.
func (h *Handlers) HandleSequencePropagate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.OligoInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.PropagateComplement(ctx, h.db, h.cfg, input))
}

// HandleBreaksPlan handles breaks_plan.
func (h *Handlers) HandleBreaksPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.PlanBreaksInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.PlanBreaks(ctx, h.db, h.cfg, input))
}

// HandleBreaksApply handles breaks_apply.
func (h *Handlers) HandleBreaksApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ApplyBreaksInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.ApplyBreaks(ctx, h.db, h.cfg, input))
}

// HandleBreaksAuto handles breaks_auto.
func (h *Handlers) HandleBreaksAuto(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.AutoBreakInput](req)
	if err != nil {
		return badRequest(err), nil
	}
	return respond(ops.AutoBreak(ctx, h.db, h.cfg, input))
}

// Result helpers

func respond[T any](data T, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(data)
}

func badRequest(err error) *mcp.CallToolResult {
	return errorResult(errors.NewInvalidRequest(err.Error()))
}

// errorResult creates an MCP error result from any error, with IsError set
// so clients recognize the failure. INTERNAL errors never carry details,
// which may hold file paths or SQL text.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var oErr *errors.OrigamiError
	if stderrors.As(err, &oErr) {
		// Keep context added by wrappers such as the break executor.
		msg := oErr.Message
		if prefix := strings.TrimSuffix(err.Error(), oErr.Error()); prefix != err.Error() && prefix != "" {
			msg = prefix + msg
		}
		errorObj := map[string]any{
			"code":    oErr.Code,
			"message": msg,
			"status":  oErr.Status,
		}
		if oErr.Code != errors.ErrInternal && oErr.Details != nil {
			errorObj["details"] = oErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
