// Package main provides the electional command line: aspect and context
// lookups, optimal timing scans and calendar filtering on the built-in
// ephemeris.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"electional-engine/internal/aspects"
	"electional-engine/internal/astrocontext"
	"electional-engine/internal/calendar"
	"electional-engine/internal/config"
	"electional-engine/internal/domain"
	"electional-engine/internal/ephemeris"
	"electional-engine/internal/storage"
	"electional-engine/internal/storage/memory"
	"electional-engine/internal/storage/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "electional",
	Short: "Astrological timing and filtering engine",
	Long: `Compute aspects and astronomical context for a date, scan months for
optimal timing windows, and filter the resulting calendar.

Events are kept in memory unless --sqlite-path points at a local database.`,
	SilenceUsage: true,
}

// Global flags
var (
	sqlitePath string
	userID     string
	latitude   float64
	longitude  float64
	verbose    bool
	mercury    config.MercuryConfig
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	}

	mercury = cfg.Mercury
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite-path", cfg.Storage.SQLitePath, "SQLite file holding the calendar")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "local", "Calendar owner")
	rootCmd.PersistentFlags().Float64Var(&latitude, "lat", cfg.Location.Latitude, "Observer latitude")
	rootCmd.PersistentFlags().Float64Var(&longitude, "lon", cfg.Location.Longitude, "Observer longitude")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", cfg.Generator.Verbose, "Verbose component logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// engine bundles the collaborators every command needs.
type engine struct {
	adapter  *ephemeris.Adapter
	detector *aspects.Detector
	context  *astrocontext.Evaluator
	events   storage.EventStore
	book     *calendar.Book
	close    func()
}

func newEngine() (*engine, error) {
	adapter := ephemeris.NewAdapter(ephemeris.NewMeanElements())
	e := &engine{
		adapter:  adapter,
		detector: aspects.NewDetector(adapter, aspects.Options{Verbose: verbose}),
		context:  astrocontext.NewEvaluator(nil),
		events:   memory.NewEventStore(),
		close:    func() {},
	}
	if len(mercury.Periods) > 0 {
		e.context.Extend(astrocontext.PeriodsFrom(mercury.Periods), mercury.HorizonEnd)
	}
	if sqlitePath != "" {
		store, err := sqlite.Open(sqlitePath)
		if err != nil {
			return nil, err
		}
		e.events = store
		e.close = func() { store.Close() }
	}
	e.book = calendar.New(calendar.Options{Local: e.events, Verbose: verbose})
	return e, nil
}

func location() domain.Location {
	return domain.Location{Latitude: latitude, Longitude: longitude}
}
