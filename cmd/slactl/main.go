package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/slaworks/sla-service/internal/compliance"
)

type rootOptions struct {
	matrixFile string
	atRisk     float64
	overdue    float64
	asJSON     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "slactl",
		Short:         "Inspect SLA windows and classify deadlines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaults := compliance.DefaultThresholds()
	root.PersistentFlags().StringVar(&opts.matrixFile, "file", "", "YAML matrix replacing the built-in one")
	root.PersistentFlags().Float64Var(&opts.atRisk, "at-risk", defaults.AtRisk, "at-risk threshold percentage")
	root.PersistentFlags().Float64Var(&opts.overdue, "overdue", defaults.Overdue, "overdue threshold percentage")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(matrixCmd(opts), classifyCmd(opts))
	return root
}

func (o *rootOptions) engine() (*compliance.Engine, error) {
	matrix := compliance.DefaultMatrix()
	if o.matrixFile != "" {
		loaded, err := compliance.LoadMatrix(o.matrixFile)
		if err != nil {
			return nil, err
		}
		matrix = loaded
	}
	thresholds := compliance.Thresholds{AtRisk: o.atRisk, Overdue: o.overdue}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return compliance.NewEngine(matrix, thresholds), nil
}

func matrixCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Print the tier x priority deadline matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			entries := engine.Matrix().Entries()
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Window", "Tier", "Priority", "Hours", "Length"})
			for _, entry := range entries {
				length := time.Duration(entry.Hours * float64(time.Hour))
				tw.AppendRow(table.Row{entry.Kind, entry.Tier, entry.Priority, entry.Hours, compliance.FormatDuration(length)})
			}
			tw.Render()
			return nil
		},
	}
}

type classifyOptions struct {
	start       string
	deadline    string
	completedAt string
	now         string
	tier        string
	priority    string
	kind        string
}

func classifyCmd(opts *rootOptions) *cobra.Command {
	var c classifyOptions
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one window",
		Long: `Classify a window given either an explicit --deadline or a
--tier/--priority pair resolved through the matrix. Times are RFC3339.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			window, err := c.window(engine)
			if err != nil {
				return err
			}
			now := time.Now()
			if c.now != "" {
				if now, err = parseFlagTime("now", c.now); err != nil {
					return err
				}
			}
			status := engine.ClassifyWindow(window, now)
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), status)
			}
			return renderStatus(cmd.OutOrStdout(), window, status)
		},
	}
	cmd.Flags().StringVar(&c.start, "start", "", "window start (required)")
	cmd.Flags().StringVar(&c.deadline, "deadline", "", "explicit deadline")
	cmd.Flags().StringVar(&c.completedAt, "completed-at", "", "completion time")
	cmd.Flags().StringVar(&c.now, "now", "", "evaluation time, defaults to the current time")
	cmd.Flags().StringVar(&c.tier, "tier", "", "SLA tier")
	cmd.Flags().StringVar(&c.priority, "priority", "", "priority")
	cmd.Flags().StringVar(&c.kind, "kind", string(compliance.WindowResolution), "window kind: response or resolution")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func (c classifyOptions) window(engine *compliance.Engine) (compliance.Window, error) {
	start, err := parseFlagTime("start", c.start)
	if err != nil {
		return compliance.Window{}, err
	}
	w := compliance.Window{Start: start}
	if c.completedAt != "" {
		completedAt, err := parseFlagTime("completed-at", c.completedAt)
		if err != nil {
			return compliance.Window{}, err
		}
		w.CompletedAt = &completedAt
	}

	if c.deadline != "" {
		if w.Deadline, err = parseFlagTime("deadline", c.deadline); err != nil {
			return compliance.Window{}, err
		}
		return w, nil
	}
	if c.tier == "" || c.priority == "" {
		return compliance.Window{}, fmt.Errorf("either --deadline or --tier and --priority is required")
	}
	tier, err := compliance.ParseTier(c.tier)
	if err != nil {
		return compliance.Window{}, err
	}
	priority, err := compliance.ParsePriority(c.priority)
	if err != nil {
		return compliance.Window{}, err
	}
	kind, err := compliance.ParseWindowKind(c.kind)
	if err != nil {
		return compliance.Window{}, err
	}
	w.Kind = kind
	if length, ok := engine.Matrix().Duration(tier, priority, kind); ok {
		w.Deadline = start.Add(length)
	}
	return w, nil
}

func renderStatus(out io.Writer, window compliance.Window, status *compliance.ComplianceStatus) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"Start", "Deadline", "Status", "Consumed", "Remaining"})
	if status == nil {
		tw.AppendRow(table.Row{window.Start.Format(time.RFC3339), "-", "not tracked", "-", "-"})
	} else {
		tw.AppendRow(table.Row{
			window.Start.Format(time.RFC3339),
			status.Deadline.Format(time.RFC3339),
			status.Status,
			fmt.Sprintf("%.1f%%", status.Percentage),
			status.RemainingText,
		})
	}
	tw.Render()
	return nil
}

func parseFlagTime(name, val string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return t, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
