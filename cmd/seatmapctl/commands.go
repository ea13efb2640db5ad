package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/seatmap-editor/internal/editor"
	"github.com/iliyamo/seatmap-editor/internal/model"
	"github.com/iliyamo/seatmap-editor/internal/report"
	"github.com/iliyamo/seatmap-editor/internal/seatrange"
	"github.com/iliyamo/seatmap-editor/internal/utils"
)

func readDocument(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return model.LoadDocument(data)
}

func (a *app) applyCmd() *cobra.Command {
	var (
		req        editor.Request
		output     string
		resultPath string
		tiersPath  string
		tierFlags  []string
		noLimit    bool
	)
	cmd := &cobra.Command{
		Use:   "apply <seatmap.json>",
		Short: "Apply availability and price edits to a seat map",
		Long: `Apply marks the seats named by --ranges available and, unless --no-limit
is given, every other seat unavailable.  --price-only changes prices without
touching availability; --tier/--tiers price several groups of seats at once
(multi-tier mode).  Seats flagged as pillars or "not for sale" always end up
unavailable.`,
		Example: `  seatmapctl apply venue.json -o out.json --ranges "Stalls A1-A20, Circle ROW 3 - 89-93" --price 55
  seatmapctl apply venue.json --price-only --price 65 --price-scope all
  seatmapctl apply venue.json --tier "Stalls A1-A10=80" --tier "Stalls B1-B10=60"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if tiersPath != "" {
				groups, err := loadTiers(tiersPath)
				if err != nil {
					return err
				}
				req.Groups = append(req.Groups, groups...)
			}
			for _, v := range tierFlags {
				g, err := parseTier(v)
				if err != nil {
					return err
				}
				req.Groups = append(req.Groups, g)
			}
			req.MultiTier = len(req.Groups) > 0
			if noLimit {
				limit := false
				req.LimitToSelected = &limit
			}

			res, err := editor.NewEngine(a.log).Apply(doc, req)
			if err != nil {
				return err
			}
			out, err := doc.Encode()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				if _, err := cmd.OutOrStdout().Write(out); err != nil {
					return err
				}
			} else if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if resultPath != "" {
				if err := writeJSON(resultPath, res); err != nil {
					return err
				}
			}
			printResult(cmd.ErrOrStderr(), res)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	f.StringVarP(&req.RangeText, "ranges", "r", "", `Seat ranges, e.g. "Stalls A1-A20, Circle ROW 3 - 89-93"`)
	f.StringVarP(&req.GlobalPrice, "price", "p", "", "Price for the selected seats")
	f.BoolVar(&req.PriceOnly, "price-only", false, "Only change prices, leave availability alone")
	f.StringVar(&req.PriceScope, "price-scope", editor.PriceScopeAuto, "Price-only scope: auto, all, available")
	f.StringVar(&tiersPath, "tiers", "", "YAML file with pricing tiers")
	f.StringArrayVar(&tierFlags, "tier", nil, `Pricing tier "RANGES=PRICE" (repeatable)`)
	f.BoolVar(&noLimit, "no-limit", false, "Leave seats outside the ranges untouched")
	f.StringVar(&resultPath, "result", "", "Write the full result as JSON to this file")
	return cmd
}

func (a *app) parseCmd() *cobra.Command {
	var (
		ranges string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "parse <seatmap.json>",
		Short: "Show which seats a range expression selects, without editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			idx := editor.BuildIndex(doc, a.log)
			parsed := idx.Parse(ranges)
			res, err := editor.NewEngine(a.log).Preview(doc, editor.Request{RangeText: ranges})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"chunks": parsed.Chunks, "result": res})
			}
			for _, ch := range parsed.Chunks {
				seats := make([]string, 0, len(ch.Keys))
				for _, k := range ch.Keys {
					seats = append(seats, idx.DisplayKey(k))
				}
				fmt.Fprintf(w, "%s -> %d seat(s): %s\n", ch.Text, len(seats), strings.Join(seats, ", "))
			}
			printResult(w, res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&ranges, "ranges", "r", "", "Seat ranges to resolve")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	_ = cmd.MarkFlagRequired("ranges")
	return cmd
}

func (a *app) summaryCmd() *cobra.Command {
	var xlsxPath string
	cmd := &cobra.Command{
		Use:   "summary <seatmap.json>",
		Short: "Print seat counts and prices per row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			sum := editor.Summarize(doc)
			if xlsxPath != "" {
				data, err := report.SummaryWorkbook(sum)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
					return fmt.Errorf("write workbook: %w", err)
				}
				a.log.Info("summary workbook written")
			}
			return printSummary(cmd.OutOrStdout(), sum)
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the summary as an Excel workbook")
	return cmd
}

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <label>...",
		Short: "Show how seat labels are normalized and split",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tNORMALIZED\tPREFIX\tNUMBER")
			for _, raw := range args {
				norm := seatrange.Normalize(raw)
				prefix, n, ok := seatrange.Split(norm)
				num := "-"
				if ok {
					num = fmt.Sprint(n)
				} else {
					prefix = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", raw, norm, prefix, num)
			}
			return tw.Flush()
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		sub, role, secret string
		ttl               time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator JWT for the seat map API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			tok, err := utils.NewAccessToken(secret, sub, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "", "Operator id (JWT subject)")
	cmd.Flags().StringVar(&role, "role", "EDITOR", "Role: OWNER or EDITOR")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default: $JWT_SECRET)")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printResult(w io.Writer, res *editor.Result) {
	fmt.Fprintf(w, "mode=%s requested=%d matched=%d missing=%d updated=%d blocked=%d available=%d unavailable=%d\n",
		res.Mode, res.Requested, len(res.Matched), len(res.Missing), len(res.Updated),
		len(res.Blocked), res.Available, res.Unavailable)
	if len(res.Missing) > 0 {
		fmt.Fprintf(w, "missing: %s\n", strings.Join(res.Missing, ", "))
	}
	for _, u := range res.Unparsed {
		fmt.Fprintf(w, "unparsed: %s\n", u)
	}
	for _, c := range res.Collisions {
		fmt.Fprintf(w, "collision: %s (%s replaced %s)\n", c.Seat, c.Kept, c.Replaced)
	}
	if res.Overlaps > 0 {
		fmt.Fprintf(w, "overlapping tier seats: %d (first tier wins)\n", res.Overlaps)
	}
}

func printSummary(w io.Writer, sum editor.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tROW\tPRICE\tSEATS\tAV\tUAV\tBLOCKED\tSEAT PRICES")
	for _, sec := range sum.Sections {
		for _, r := range sec.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
				r.Section, r.Row, r.Price, r.Seats, r.Available, r.Unavailable, r.Blocked, strings.Join(r.Prices, ", "))
		}
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%d\t%d\t%d\t%d\t\n", sum.Seats, sum.Available, sum.Unavailable, sum.Blocked)
	return tw.Flush()
}
