package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"electional-engine/internal/astrocontext"
	"electional-engine/internal/domain"
	"electional-engine/internal/filter"
	"electional-engine/internal/generator"
	"electional-engine/internal/reporting"
	"electional-engine/internal/storage/memory"
)

var aspectsCmd = &cobra.Command{
	Use:   "aspects",
	Short: "List the strongest aspects at noon of a date",
	RunE:  runAspects,
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show moon phase and Mercury status for a date",
	RunE:  runContext,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan months for optimal timing windows",
	Long: `
Scan every hour of the target months with the houses, aspects and electional
methods and keep the best windows per day as generated calendar events.

Examples:
  # February 2025 for love and career
  electional scan --month 2025-02 --priorities love,career

  # A quarter, keeping previous results, with a Markdown/CSV report
  electional scan --month 2025-01 --months 3 --priorities money --keep-existing --output-dir out
`,
	RunE: runScan,
}

var filterCmd = &cobra.Command{
	Use:   "filter [query]",
	Short: "Filter the calendar",
	Long: `
Apply the filter pipeline to the calendar. The query uses the same keys as the
HTTP API, e.g. "mercury=all&moonPhase=waxing&score=6_plus".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilter,
}

// Command flags
var (
	date         string
	month        string
	months       int
	priorities   []string
	keepExisting bool
	minScore     int
	outputDir    string
	showCounts   bool
)

func init() {
	aspectsCmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD), defaults to today")
	contextCmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD), defaults to today")

	scanCmd.Flags().StringVar(&month, "month", "", "First month to scan (YYYY-MM), defaults to the current month")
	scanCmd.Flags().IntVar(&months, "months", 1, "Number of months to scan")
	scanCmd.Flags().StringSliceVar(&priorities, "priorities", nil, "Priority tags (career, love, creativity, money, health, spiritual, communication, travel, home, learning)")
	scanCmd.Flags().IntVar(&minScore, "min-score", generator.DefaultMinScore, "Lowest event score kept (1-10)")
	scanCmd.Flags().BoolVar(&keepExisting, "keep-existing", false, "Keep previously generated events in the range")
	scanCmd.Flags().StringVar(&outputDir, "output-dir", "", "Write REPORT.md, EVENTS.csv and DAYS.csv to this directory")

	filterCmd.Flags().StringVar(&date, "date", "", "Only events on this date (YYYY-MM-DD)")
	filterCmd.Flags().BoolVar(&showCounts, "counts", false, "Print per-option match counts")

	rootCmd.AddCommand(aspectsCmd, contextCmd, scanCmd, filterCmd)
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", v)
	}
	return t, nil
}

func runAspects(cmd *cobra.Command, args []string) error {
	day, err := parseDate(date)
	if err != nil {
		return err
	}
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	list := eng.detector.Daily(day)
	fmt.Printf("Aspects for %s (noon UTC)\n\n", day.Format(domain.DateLayout))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ASPECT\tORB\tSTRENGTH\tNATURE\tWINDOW")
	for _, a := range list {
		window := "all day"
		if !a.IsAllDay && a.StartTime != nil && a.EndTime != nil {
			window = a.StartTime.String() + "-" + a.EndTime.String()
		}
		label := a.Label()
		if a.Fallback {
			label += " (fallback)"
		}
		fmt.Fprintf(w, "%s\t%.2f°\t%d\t%s\t%s\n", label, a.OrbUsed, a.Strength, a.Nature, window)
	}
	return w.Flush()
}

func runContext(cmd *cobra.Command, args []string) error {
	day, err := parseDate(date)
	if err != nil {
		return err
	}
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	c := eng.context.Evaluate(day)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Date\t%s\n", day.Format(domain.DateLayout))
	fmt.Fprintf(w, "Moon phase\t%s (%d%% illuminated)\n", c.MoonPhase, c.Illumination)
	fmt.Fprintf(w, "Next new moon\tin %.1f days\n", c.DaysToNextNew)
	fmt.Fprintf(w, "Next full moon\tin %.1f days\n", c.DaysToNextFull)
	fmt.Fprintf(w, "Mercury\t%s\n", c.MercuryStatus)
	if c.NextRetrograde != nil {
		fmt.Fprintf(w, "Next retrograde\t%s\n", c.NextRetrograde.Format(domain.DateLayout))
	}
	if c.NextDirect != nil {
		fmt.Fprintf(w, "Next direct\t%s\n", c.NextDirect.Format(domain.DateLayout))
	}
	mf := astrocontext.DetectMagicFormula(eng.detector.Chart(day))
	switch {
	case mf.Full:
		fmt.Fprintf(w, "Magic formula\tfull (Jupiter-Pluto %.1f°)\n", mf.JupiterPlutoDegree)
	case mf.Partial:
		fmt.Fprintf(w, "Magic formula\tpartial (Jupiter-Pluto %.1f°)\n", mf.JupiterPlutoDegree)
	default:
		fmt.Fprintf(w, "Magic formula\tinactive (Jupiter-Pluto %.1f°)\n", mf.JupiterPlutoDegree)
	}
	return w.Flush()
}

func runScan(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	ref := time.Now().UTC()
	if month != "" {
		ref, err = time.Parse("2006-01", month)
		if err != nil {
			return fmt.Errorf("invalid month %q: use YYYY-MM", month)
		}
	}
	tags := make([]domain.Priority, 0, len(priorities))
	for _, p := range priorities {
		tags = append(tags, domain.Priority(strings.TrimSpace(p)))
	}

	dayScores := memory.NewDayScoreStore()
	runs := memory.NewGenerationRunStore()
	gen := generator.New(generator.Options{
		Adapter:   eng.adapter,
		Book:      eng.book,
		Detector:  eng.detector,
		Context:   eng.context,
		DayScores: dayScores,
		Runs:      runs,
		MinScore:  minScore,
		Verbose:   verbose,
	})

	loc := location()
	req := generator.Request{
		UserID:       userID,
		Location:     &loc,
		Priorities:   tags,
		Month:        ref,
		Months:       months,
		KeepExisting: keepExisting,
	}

	// Ctrl-C cancels the scan and keeps what was selected so far.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := gen.Run(ctx, req, generator.Handlers{
		OnProgress: func(p generator.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%3d%%] %-60s", p.Percent, p.Message)
		},
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s %s: %d days, %d calculations, %d candidates, %d saved (%d duplicates, %d cleared)\n",
		res.RunID, res.State, res.DaysScanned, res.Calculations, res.CandidatesFound,
		len(res.Events), res.Duplicates, res.Cleared)
	if res.Warning != "" {
		fmt.Printf("Warning: %s\n", res.Warning)
	}
	for _, e := range res.Errors {
		fmt.Printf("Error: %s\n", e)
	}
	printEvents(res.Events)

	if outputDir == "" {
		return nil
	}
	report, err := reporting.NewGenerator(eng.events, dayScores, runs).Generate(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	return writeReport(outputDir, report)
}

func writeReport(dir string, r *reporting.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	files := map[string]string{
		"REPORT.md":  reporting.RenderMarkdown(r),
		"EVENTS.csv": reporting.RenderCSV(r.Events),
		"DAYS.csv":   reporting.RenderDaysCSV(r.Days),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("  - %s\n", path)
	}
	return nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	var query url.Values
	if len(args) == 1 {
		var err error
		query, err = url.ParseQuery(args[0])
		if err != nil {
			return fmt.Errorf("invalid query: %w", err)
		}
	}
	state, err := filter.FromQuery(query)
	if err != nil {
		return err
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	ctx := context.Background()
	events, err := eng.book.Events(ctx, userID)
	if err != nil {
		return err
	}

	p := filter.New(state, filter.DefaultContext())
	matched := p.Apply(events)
	if date != "" {
		day, err := parseDate(date)
		if err != nil {
			return err
		}
		matched = p.ApplyDay(events, day)
	}

	fmt.Printf("%d of %d events match", len(matched), len(events))
	if active := state.Active(); len(active) > 0 {
		fmt.Printf(" [%s]", strings.Join(active, ", "))
	}
	fmt.Println()
	printEvents(matched)

	if showCounts {
		fmt.Println()
		printCounts(filter.CalculateCounts(events, filter.DefaultContext()))
	}
	return nil
}

func printEvents(events []*domain.Event) {
	if len(events) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nDATE\tTIME\tSCORE\tTYPE\tMETHOD\tTITLE")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", e.Date, e.Time, e.Score, e.Type, e.TimingMethod, e.Title)
	}
	w.Flush()
}

func printCounts(c filter.Counts) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	rows := []struct {
		name  string
		count int
	}{
		{"mercury=direct", c.MercuryDirect},
		{"mercury=retrograde", c.MercuryRetrograde},
		{"moonPhase=waxing", c.MoonWaxing},
		{"moonPhase=new", c.MoonNew},
		{"moonPhase=full", c.MoonFull},
		{"moonPhase=waning", c.MoonWaning},
		{"dignity=exalted", c.DignityExalted},
		{"dignity=no_debility", c.DignityNoDebility},
		{"malefic=no_mars_saturn", c.MaleficAvoid},
		{"malefic=soft_aspects", c.MaleficSoft},
		{"score=8_plus", c.Score8Plus},
		{"score=6_plus", c.Score6Plus},
		{"electional=ready", c.ElectionalReady},
		{"electional=benefics_angular", c.ElectionalAngular},
		{"jupiterSector=current_favored", c.JupiterFavored},
		{"jupiterSector=avoid_saturn", c.JupiterAvoidSaturn},
		{"magicFormula=sun_jupiter_pluto", c.MagicFormulaFull},
		{"magicFormula=jupiter_pluto", c.MagicFormulaPartial},
		{"voidMoon=avoid_void", c.VoidMoonAvoid},
		{"voidMoon=allow_declination", c.VoidMoonDeclination},
		{"ingress=three_week_window", c.IngressThreeWeek},
		{"ingress=exact_ingress", c.IngressExact},
		{"economicCycle=expansion", c.EconomicExpansion},
		{"economicCycle=consolidation", c.EconomicConsolidation},
	}
	fmt.Fprintln(w, "OPTION\tMATCHES")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\n", r.name, r.count)
	}
	w.Flush()
}
