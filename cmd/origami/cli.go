package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/origami/internal/breaks"
	"github.com/hpungsan/origami/internal/config"
	"github.com/hpungsan/origami/internal/errors"
	"github.com/hpungsan/origami/internal/ops"
	"github.com/hpungsan/origami/internal/part"
)

// maxStdinBytes bounds piped sequences and break plans.
const maxStdinBytes = 16 << 20

// newCLIApp creates the CLI application with all command groups.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "origami",
		Usage:   "DNA origami design store",
		Version: Version,
		Commands: []*cli.Command{
			designCmd(db, cfg),
			helixCmd(db, cfg),
			strandCmd(db, cfg),
			xoverCmd(db, cfg),
			oligoCmd(db, cfg),
			sequenceCmd(db, cfg),
			breaksCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// refFlags address a design by name; a positional argument or --id gives its id.
func refFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "design", Aliases: []string{"d"}, Usage: "Design name"},
		&cli.StringFlag{Name: "id", Usage: "Design id"},
	}, extra...)
}

func refFrom(c *cli.Context) ops.Ref {
	if c.NArg() > 0 {
		return ops.Ref{ID: c.Args().First()}
	}
	return ops.Ref{ID: c.String("id"), Name: c.String("design")}
}

func positionFlags() []cli.Flag {
	return refFlags(
		&cli.IntFlag{Name: "helix", Aliases: []string{"H"}, Required: true, Usage: "Helix id"},
		&cli.StringFlag{Name: "dir", Required: true, Usage: "Direction: forward|reverse"},
		&cli.IntFlag{Name: "idx", Aliases: []string{"i"}, Required: true, Usage: "Base index"},
	)
}

func positionFrom(c *cli.Context) ops.PositionInput {
	return ops.PositionInput{
		Ref:       refFrom(c),
		Helix:     part.HelixID(c.Int("helix")),
		Direction: c.String("dir"),
		Index:     c.Int("idx"),
	}
}

// run executes one operation and prints its result.
func run[T any](out T, err error) error {
	if err != nil {
		return outputError(err)
	}
	return outputJSON(out)
}

// designCmd groups design lifecycle commands.
func designCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "design",
		Usage: "Create, list, export and report on designs",
		Subcommands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create an empty design",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Display title"},
				},
				Action: func(c *cli.Context) error {
					input := ops.CreateInput{Name: c.Args().First()}
					if c.IsSet("title") {
						title := c.String("title")
						input.Title = &title
					}
					return run(ops.Create(c.Context, db, input))
				},
			},
			{
				Name:      "open",
				Usage:     "Print a design with its full snapshot",
				ArgsUsage: "[id]",
				Flags:     refFlags(),
				Action: func(c *cli.Context) error {
					return run(ops.Open(c.Context, db, cfg, refFrom(c)))
				},
			},
			{
				Name:      "update",
				Usage:     "Change a design's title",
				ArgsUsage: "[id]",
				Flags: refFlags(
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "New title (empty clears it)"},
				),
				Action: func(c *cli.Context) error {
					title := c.String("title")
					return run(ops.Update(c.Context, db, cfg, ops.UpdateInput{Ref: refFrom(c), Title: &title}))
				},
			},
			{
				Name:  "list",
				Usage: "List designs, most recently updated first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Items to skip"},
					&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted designs"},
				},
				Action: func(c *cli.Context) error {
					return run(ops.List(c.Context, db, ops.ListInput{
						Limit:          c.Int("limit"),
						Offset:         c.Int("offset"),
						IncludeDeleted: c.Bool("include-deleted"),
					}))
				},
			},
			{
				Name:      "delete",
				Usage:     "Soft-delete a design",
				ArgsUsage: "[id]",
				Flags:     refFlags(),
				Action: func(c *cli.Context) error {
					return run(ops.Delete(c.Context, db, refFrom(c)))
				},
			},
			{
				Name:  "purge",
				Usage: "Permanently delete soft-deleted designs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
				},
				Action: func(c *cli.Context) error {
					input := ops.PurgeInput{}
					if olderThan := c.String("older-than"); olderThan != "" {
						days, err := parseDuration(olderThan)
						if err != nil {
							return outputError(errors.NewInvalidRequest(err.Error()))
						}
						input.OlderThanDays = &days
					}
					return run(ops.Purge(c.Context, db, input))
				},
			},
			{
				Name:      "export",
				Usage:     "Export one design, or all of them, to a JSONL file",
				ArgsUsage: "[id]",
				Flags: refFlags(
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.origami/exports/<name>-<timestamp>.jsonl)"},
					&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted designs"},
				),
				Action: func(c *cli.Context) error {
					return run(ops.Export(c.Context, db, cfg, ops.ExportInput{
						Ref:            refFrom(c),
						Path:           c.String("path"),
						IncludeDeleted: c.Bool("include-deleted"),
					}))
				},
			},
			{
				Name:  "import",
				Usage: "Import designs from a JSONL file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|rename"},
				},
				Action: func(c *cli.Context) error {
					return run(ops.Import(c.Context, db, cfg, ops.ImportInput{
						Path: c.String("path"),
						Mode: ops.ImportMode(c.String("mode")),
					}))
				},
			},
			{
				Name:      "report",
				Usage:     "Print the oligo report",
				ArgsUsage: "[id]",
				Flags: refFlags(
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: ops.FormatMarkdown, Usage: "markdown|html"},
					&cli.BoolFlag{Name: "json", Usage: "Print the structured report as JSON"},
				),
				Action: func(c *cli.Context) error {
					out, err := ops.Report(c.Context, db, cfg, ops.ReportInput{Ref: refFrom(c), Format: c.String("format")})
					if err != nil {
						return outputError(err)
					}
					if c.Bool("json") {
						return outputJSON(out)
					}
					_, err = io.WriteString(os.Stdout, out.Result.Content)
					return err
				},
			},
		},
	}
}

// helixCmd groups virtual helix commands.
func helixCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "helix",
		Usage: "Add, remove and label virtual helices",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a helix with an inclusive index domain",
				Flags: refFlags(
					&cli.IntFlag{Name: "helix", Aliases: []string{"H"}, Required: true, Usage: "Helix id"},
					&cli.IntFlag{Name: "min", Usage: "Lowest base index"},
					&cli.IntFlag{Name: "max", Required: true, Usage: "Highest base index"},
				),
				Action: func(c *cli.Context) error {
					return run(ops.AddHelix(c.Context, db, cfg, ops.AddHelixInput{
						Ref:    refFrom(c),
						Helix:  part.HelixID(c.Int("helix")),
						MinIdx: c.Int("min"),
						MaxIdx: c.Int("max"),
					}))
				},
			},
			{
				Name:  "remove",
				Usage: "Remove an empty helix",
				Flags: refFlags(
					&cli.IntFlag{Name: "helix", Aliases: []string{"H"}, Required: true, Usage: "Helix id"},
				),
				Action: func(c *cli.Context) error {
					return run(ops.RemoveHelix(c.Context, db, cfg, ops.HelixInput{Ref: refFrom(c), Helix: part.HelixID(c.Int("helix"))}))
				},
			},
			{
				Name:  "list",
				Usage: "List helices",
				Flags: refFlags(),
				Action: func(c *cli.Context) error {
					return run(ops.Helices(c.Context, db, cfg, refFrom(c)))
				},
			},
			{
				Name:  "props",
				Usage: "Show the combined properties of helices",
				Flags: refFlags(
					&cli.StringFlag{Name: "helices", Required: true, Usage: "Comma-separated helix ids"},
				),
				Action: func(c *cli.Context) error {
					ids, err := parseHelices(c.String("helices"))
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}
					return run(ops.HelixProperties(c.Context, db, cfg, ops.HelixPropertiesInput{Ref: refFrom(c), Helices: ids}))
				},
			},
			{
				Name:  "set",
				Usage: "Set a property on helices",
				Flags: refFlags(
					&cli.StringFlag{Name: "helices", Required: true, Usage: "Comma-separated helix ids"},
					&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Required: true, Usage: "Property key"},
					&cli.StringFlag{Name: "value", Usage: "Property value"},
				),
				Action: func(c *cli.Context) error {
					ids, err := parseHelices(c.String("helices"))
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}
					return run(ops.SetHelixProperty(c.Context, db, cfg, ops.SetHelixPropertyInput{
						Ref:     refFrom(c),
						Helices: ids,
						Key:     c.String("key"),
						Value:   c.String("value"),
					}))
				},
			},
		},
	}
}

// strandCmd groups strand commands.
func strandCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	strandFlag := func() cli.Flag {
		return &cli.Int64Flag{Name: "strand", Aliases: []string{"s"}, Required: true, Usage: "Strand id"}
	}
	return &cli.Command{
		Name:  "strand",
		Usage: "Add, split, merge and look up strands",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a strand covering [low, high]",
				Flags: refFlags(
					&cli.IntFlag{Name: "helix", Aliases: []string{"H"}, Required: true, Usage: "Helix id"},
					&cli.StringFlag{Name: "dir", Required: true, Usage: "Direction: forward|reverse"},
					&cli.IntFlag{Name: "low", Required: true, Usage: "Lowest covered index"},
					&cli.IntFlag{Name: "high", Required: true, Usage: "Highest covered index"},
				),
				Action: func(c *cli.Context) error {
					return run(ops.AddStrand(c.Context, db, cfg, ops.AddStrandInput{
						Ref:       refFrom(c),
						Helix:     part.HelixID(c.Int("helix")),
						Direction: c.String("dir"),
						Low:       c.Int("low"),
						High:      c.Int("high"),
					}))
				},
			},
			{
				Name:  "remove",
				Usage: "Remove an unconnected strand",
				Flags: refFlags(strandFlag()),
				Action: func(c *cli.Context) error {
					return run(ops.RemoveStrand(c.Context, db, cfg, ops.StrandInput{Ref: refFrom(c), Strand: part.StrandID(c.Int64("strand"))}))
				},
			},
			{
				Name:  "split",
				Usage: "Split a strand into [low, idx-1] and [idx, high]",
				Flags: refFlags(strandFlag(),
					&cli.IntFlag{Name: "idx", Aliases: []string{"i"}, Required: true, Usage: "Low index of the upper piece"},
				),
				Action: func(c *cli.Context) error {
					return run(ops.SplitStrand(c.Context, db, cfg, ops.SplitStrandInput{
						Ref:    refFrom(c),
						Strand: part.StrandID(c.Int64("strand")),
						Index:  c.Int("idx"),
					}))
				},
			},
			{
				Name:  "merge",
				Usage: "Merge two abutting connected strands",
				Flags: refFlags(
					&cli.Int64Flag{Name: "left", Required: true, Usage: "Strand id"},
					&cli.Int64Flag{Name: "right", Required: true, Usage: "Strand id"},
				),
				Action: func(c *cli.Context) error {
					return run(ops.MergeStrand(c.Context, db, cfg, ops.MergeStrandInput{
						Ref:   refFrom(c),
						Left:  part.StrandID(c.Int64("left")),
						Right: part.StrandID(c.Int64("right")),
					}))
				},
			},
			{
				Name:  "get",
				Usage: "Find the strand covering a position",
				Flags: positionFlags(),
				Action: func(c *cli.Context) error {
					return run(ops.GetStrand(c.Context, db, cfg, positionFrom(c)))
				},
			},
		},
	}
}

// xoverCmd groups crossover commands.
func xoverCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	flags := func() []cli.Flag {
		return refFlags(
			&cli.Int64Flag{Name: "from", Required: true, Usage: "Strand whose 3' end is linked"},
			&cli.Int64Flag{Name: "to", Required: true, Usage: "Strand whose 5' end is linked"},
		)
	}
	input := func(c *cli.Context) ops.XoverInput {
		return ops.XoverInput{
			Ref:      refFrom(c),
			Strand5p: part.StrandID(c.Int64("from")),
			Strand3p: part.StrandID(c.Int64("to")),
		}
	}
	return &cli.Command{
		Name:  "xover",
		Usage: "Create and remove crossovers",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Link the 3' end of --from to the 5' end of --to",
				Flags: flags(),
				Action: func(c *cli.Context) error {
					return run(ops.CreateXover(c.Context, db, cfg, input(c)))
				},
			},
			{
				Name:  "remove",
				Usage: "Unlink a crossover",
				Flags: flags(),
				Action: func(c *cli.Context) error {
					return run(ops.RemoveXover(c.Context, db, cfg, input(c)))
				},
			},
		},
	}
}

// oligoCmd groups oligo commands.
func oligoCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	oligoFlag := func() cli.Flag {
		return &cli.Int64Flag{Name: "oligo", Aliases: []string{"o"}, Required: true, Usage: "Oligo id"}
	}
	return &cli.Command{
		Name:  "oligo",
		Usage: "Inspect, recolor and mark oligos",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Find the oligo at a position",
				Flags: positionFlags(),
				Action: func(c *cli.Context) error {
					return run(ops.GetOligoAt(c.Context, db, cfg, positionFrom(c)))
				},
			},
			{
				Name:  "list",
				Usage: "List oligos",
				Flags: refFlags(),
				Action: func(c *cli.Context) error {
					return run(ops.Oligos(c.Context, db, cfg, refFrom(c)))
				},
			},
			{
				Name:  "color",
				Usage: "Recolor an oligo",
				Flags: refFlags(oligoFlag(),
					&cli.StringFlag{Name: "color", Aliases: []string{"c"}, Required: true, Usage: "Color, e.g. #cc0000"},
				),
				Action: func(c *cli.Context) error {
					return run(ops.SetOligoColor(c.Context, db, cfg, ops.SetOligoColorInput{
						Ref:   refFrom(c),
						Oligo: part.OligoID(c.Int64("oligo")),
						Color: c.String("color"),
					}))
				},
			},
			{
				Name:  "scaffold",
				Usage: "Mark an oligo as the scaffold (0 clears)",
				Flags: refFlags(oligoFlag()),
				Action: func(c *cli.Context) error {
					return run(ops.SetScaffold(c.Context, db, cfg, ops.OligoInput{Ref: refFrom(c), Oligo: part.OligoID(c.Int64("oligo"))}))
				},
			},
		},
	}
}

// sequenceCmd groups sequence commands.
func sequenceCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	oligoFlag := func() cli.Flag {
		return &cli.Int64Flag{Name: "oligo", Aliases: []string{"o"}, Required: true, Usage: "Oligo id"}
	}
	oligoInput := func(c *cli.Context) ops.OligoInput {
		return ops.OligoInput{Ref: refFrom(c), Oligo: part.OligoID(c.Int64("oligo"))}
	}
	return &cli.Command{
		Name:  "sequence",
		Usage: "Assign, clear and propagate base sequences",
		Subcommands: []*cli.Command{
			{
				Name:  "apply",
				Usage: "Assign bases from the 5' end (reads stdin when --seq is absent)",
				Flags: refFlags(oligoFlag(),
					&cli.StringFlag{Name: "seq", Usage: "Bases, 5' to 3'"},
				),
				Action: func(c *cli.Context) error {
					seq := c.String("seq")
					if seq == "" && stdinHasData() {
						text, err := readStdin(maxStdinBytes)
						if err != nil {
							return outputError(errors.NewInvalidRequest(err.Error()))
						}
						seq = strings.Join(strings.Fields(text), "")
					}
					return run(ops.ApplySequence(c.Context, db, cfg, ops.ApplySequenceInput{
						Ref:      refFrom(c),
						Oligo:    part.OligoID(c.Int64("oligo")),
						Sequence: seq,
					}))
				},
			},
			{
				Name:  "clear",
				Usage: "Remove every base of an oligo",
				Flags: refFlags(oligoFlag()),
				Action: func(c *cli.Context) error {
					return run(ops.ClearSequence(c.Context, db, cfg, oligoInput(c)))
				},
			},
			{
				Name:  "propagate",
				Usage: "Write an oligo's complement onto its paired strands",
				Flags: refFlags(oligoFlag()),
				Action: func(c *cli.Context) error {
					return run(ops.PropagateComplement(c.Context, db, cfg, oligoInput(c)))
				},
			},
		},
	}
}

// breaksCmd groups the break planner commands.
func breaksCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	lenFlag := func() cli.Flag {
		return &cli.IntFlag{Name: "min-len", Aliases: []string{"l"}, Usage: "Target fragment length (default from config)"}
	}
	return &cli.Command{
		Name:  "breaks",
		Usage: "Plan and apply staple breaks",
		Subcommands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "Propose cuts for one oligo",
				Flags: refFlags(lenFlag(),
					&cli.Int64Flag{Name: "oligo", Aliases: []string{"o"}, Required: true, Usage: "Oligo id"},
				),
				Action: func(c *cli.Context) error {
					return run(ops.PlanBreaks(c.Context, db, cfg, ops.PlanBreaksInput{
						Ref:         refFrom(c),
						Oligo:       part.OligoID(c.Int64("oligo")),
						MinBreakLen: c.Int("min-len"),
					}))
				},
			},
			{
				Name:  "apply",
				Usage: "Apply a plan piped on stdin (the output of 'breaks plan')",
				Flags: refFlags(),
				Action: func(c *cli.Context) error {
					if !stdinHasData() {
						return outputError(errors.NewInvalidRequest("break plan must be piped via stdin"))
					}
					text, err := readStdin(maxStdinBytes)
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}
					plan, err := parsePlan(text)
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}
					return run(ops.ApplyBreaks(c.Context, db, cfg, ops.ApplyBreaksInput{Ref: refFrom(c), Instructions: plan}))
				},
			},
			{
				Name:  "auto",
				Usage: "Break every linear staple longer than the target length",
				Flags: refFlags(lenFlag()),
				Action: func(c *cli.Context) error {
					return run(ops.AutoBreak(c.Context, db, cfg, ops.AutoBreakInput{Ref: refFrom(c), MinBreakLen: c.Int("min-len")}))
				},
			},
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var oErr *errors.OrigamiError
	if stderrors.As(err, &oErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", oErr.Code, oErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from stdin.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}

// parseHelices splits a comma-separated list of helix ids.
func parseHelices(s string) ([]part.HelixID, error) {
	var ids []part.HelixID
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid helix id: %q", p)
		}
		ids = append(ids, part.HelixID(n))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one helix id is required")
	}
	return ids, nil
}

// parsePlan accepts either the JSON printed by 'breaks plan' or a bare
// instruction array.
func parsePlan(text string) ([]breaks.Instruction, error) {
	var planned ops.Output[*ops.BreakPlan]
	if err := json.Unmarshal([]byte(text), &planned); err == nil && planned.Result != nil {
		return planned.Result.Instructions, nil
	}
	var list []breaks.Instruction
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("invalid break plan: %v", err)
	}
	return list, nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
