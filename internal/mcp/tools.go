package mcp

import "github.com/mark3labs/mcp-go/mcp"

// designTool builds a tool that addresses one design by design_id or design.
func designTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	all := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("design_id", mcp.Description("Design ULID. Give this or design, not both.")),
		mcp.WithString("design", mcp.Description("Design name, matched case-insensitively. Give this or design_id, not both.")),
	}
	return mcp.NewTool(name, append(all, opts...)...)
}

func helixParam(name, description string) mcp.ToolOption {
	return mcp.WithNumber(name, mcp.Required(), mcp.Description(description))
}

func directionParam() mcp.ToolOption {
	return mcp.WithString("direction", mcp.Required(),
		mcp.Description("Strand direction: forward (5' at the low index) or reverse."),
		mcp.Enum("forward", "reverse", "fwd", "rev"))
}

func helixListParam() mcp.ToolOption {
	return mcp.WithArray("helices", mcp.Required(),
		mcp.Description("Helix ids."),
		mcp.Items(map[string]any{"type": "integer"}))
}

func minBreakLenParam() mcp.ToolOption {
	return mcp.WithNumber("min_break_len", mcp.Description("Target fragment length. Defaults to the configured min_break_len."))
}

var (
	designCreateDef = mcp.NewTool("design_create",
		mcp.WithDescription("Create a new, empty design. Names are unique among active designs."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Design name.")),
		mcp.WithString("title", mcp.Description("Optional display title.")),
	)
	designOpenDef = designTool("design_open",
		"Load a design and return its full snapshot of helices, strands and oligos.")
	designUpdateDef = designTool("design_update",
		"Change a design's title. An empty title clears it.",
		mcp.WithString("title", mcp.Required(), mcp.Description("New title.")),
	)
	designListDef = mcp.NewTool("design_list",
		mcp.WithDescription("List designs, most recently updated first."),
		mcp.WithNumber("limit", mcp.Description("Page size, default 20, max 100.")),
		mcp.WithNumber("offset", mcp.Description("Items to skip.")),
		mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted designs.")),
	)
	designDeleteDef = designTool("design_delete",
		"Soft-delete a design. Its name becomes free; design_purge removes it for good.")
	designPurgeDef = mcp.NewTool("design_purge",
		mcp.WithDescription("Permanently remove soft-deleted designs."),
		mcp.WithNumber("older_than_days", mcp.Description("Only purge designs deleted more than this many days ago.")),
	)
	designExportDef = designTool("design_export",
		"Write designs to a JSONL file. With no design given, every design is exported.",
		mcp.WithString("path", mcp.Description("Output .jsonl path. Defaults to ~/.origami/exports/<name>-<timestamp>.jsonl.")),
		mcp.WithBoolean("include_deleted", mcp.Description("Also export soft-deleted designs.")),
	)
	designImportDef = mcp.NewTool("design_import",
		mcp.WithDescription("Import designs from a JSONL export file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Input .jsonl path.")),
		mcp.WithString("mode", mcp.Description("error (default, all or nothing) or rename (fresh ids and numbered names on collision)."),
			mcp.Enum("error", "rename")),
	)
	designReportDef = designTool("design_report",
		"Render the oligo list: scaffold first, then staples by color with short ones flagged.",
		mcp.WithString("format", mcp.Description("markdown (default) or html."), mcp.Enum("markdown", "html")),
	)

	helixAddDef = designTool("helix_add",
		"Add a virtual helix with an inclusive index domain.",
		helixParam("helix", "New helix id."),
		mcp.WithNumber("min_idx", mcp.Required(), mcp.Description("Lowest base index.")),
		mcp.WithNumber("max_idx", mcp.Required(), mcp.Description("Highest base index.")),
	)
	helixRemoveDef = designTool("helix_remove",
		"Remove a helix that carries no strands.",
		helixParam("helix", "Helix id."),
	)
	helixListDef = designTool("helix_list",
		"List helices with their domains and strand counts.")
	helixPropertiesDef = designTool("helix_properties",
		"Combine the properties of several helices, reporting conflicting values.",
		helixListParam(),
	)
	helixSetPropertyDef = designTool("helix_set_property",
		"Set one property on several helices. min_idx and max_idx are read-only.",
		helixListParam(),
		mcp.WithString("key", mcp.Required(), mcp.Description("Property key.")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Property value.")),
	)

	strandAddDef = designTool("strand_add",
		"Add a strand covering [low_idx, high_idx]. It starts as its own oligo.",
		helixParam("helix", "Helix id."),
		directionParam(),
		mcp.WithNumber("low_idx", mcp.Required(), mcp.Description("Lowest covered index.")),
		mcp.WithNumber("high_idx", mcp.Required(), mcp.Description("Highest covered index.")),
	)
	strandRemoveDef = designTool("strand_remove",
		"Remove an unconnected strand and its oligo.",
		mcp.WithNumber("strand", mcp.Required(), mcp.Description("Strand id.")),
	)
	strandSplitDef = designTool("strand_split",
		"Split a strand into [low, idx-1] and [idx, high], joined by a crossover so the oligo stays whole.",
		mcp.WithNumber("strand", mcp.Required(), mcp.Description("Strand id.")),
		mcp.WithNumber("idx", mcp.Required(), mcp.Description("Low index of the upper piece.")),
	)
	strandMergeDef = designTool("strand_merge",
		"Merge two abutting strands joined by a crossover into one.",
		mcp.WithNumber("left", mcp.Required(), mcp.Description("Strand id.")),
		mcp.WithNumber("right", mcp.Required(), mcp.Description("Strand id.")),
	)
	strandGetDef = designTool("strand_get",
		"Find the strand covering a base position.",
		helixParam("helix", "Helix id."),
		directionParam(),
		mcp.WithNumber("idx", mcp.Required(), mcp.Description("Base index.")),
	)

	xoverCreateDef = designTool("xover_create",
		"Connect the 3' end of strand_5p to the 5' end of strand_3p, merging their oligos or closing a circle.",
		mcp.WithNumber("strand_5p", mcp.Required(), mcp.Description("Strand whose 3' end is linked.")),
		mcp.WithNumber("strand_3p", mcp.Required(), mcp.Description("Strand whose 5' end is linked.")),
	)
	xoverRemoveDef = designTool("xover_remove",
		"Remove a crossover, splitting a linear oligo in two or opening a circular one.",
		mcp.WithNumber("strand_5p", mcp.Required(), mcp.Description("Strand whose 3' end is linked.")),
		mcp.WithNumber("strand_3p", mcp.Required(), mcp.Description("Strand whose 5' end is linked.")),
	)

	oligoGetDef = designTool("oligo_get",
		"Find the oligo owning the strand that covers a base position.",
		helixParam("helix", "Helix id."),
		directionParam(),
		mcp.WithNumber("idx", mcp.Required(), mcp.Description("Base index.")),
	)
	oligoListDef = designTool("oligo_list",
		"List every oligo with its strands, length, color and sequence.")
	oligoSetColorDef = designTool("oligo_set_color",
		"Recolor an oligo.",
		mcp.WithNumber("oligo", mcp.Required(), mcp.Description("Oligo id.")),
		mcp.WithString("color", mcp.Required(), mcp.Description("Color, e.g. #cc0000.")),
	)
	oligoSetScaffoldDef = designTool("oligo_set_scaffold",
		"Mark an oligo as the scaffold and give it the scaffold color. Oligo 0 clears the mark.",
		mcp.WithNumber("oligo", mcp.Required(), mcp.Description("Oligo id, or 0.")),
	)

	sequenceApplyDef = designTool("sequence_apply",
		"Assign bases to an oligo from its 5' end. Extra bases are truncated with a warning.",
		mcp.WithNumber("oligo", mcp.Required(), mcp.Description("Oligo id.")),
		mcp.WithString("sequence", mcp.Required(), mcp.Description("Bases, 5' to 3'.")),
	)
	sequenceClearDef = designTool("sequence_clear",
		"Remove every assigned base of an oligo.",
		mcp.WithNumber("oligo", mcp.Required(), mcp.Description("Oligo id.")),
	)
	sequencePropagateDef = designTool("sequence_propagate",
		"Write the complement of an oligo's bases onto the strands paired with it.",
		mcp.WithNumber("oligo", mcp.Required(), mcp.Description("Source oligo id.")),
	)

	breaksPlanDef = designTool("breaks_plan",
		"Propose cuts that fragment one oligo into pieces near min_break_len. Changes nothing.",
		mcp.WithNumber("oligo", mcp.Required(), mcp.Description("Oligo id.")),
		minBreakLenParam(),
	)
	breaksApplyDef = designTool("breaks_apply",
		"Execute a break plan. Instructions that no longer fit are skipped and reported.",
		mcp.WithArray("instructions", mcp.Required(),
			mcp.Description("Instructions as returned by breaks_plan."),
			mcp.Items(map[string]any{"type": "object"})),
	)
	breaksAutoDef = designTool("breaks_auto",
		"Break every linear staple longer than min_break_len, leaving the scaffold whole.",
		minBreakLenParam(),
	)
)
