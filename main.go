package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/csmith/biglittle/matcher"
	"github.com/csmith/biglittle/model"
	"github.com/csmith/biglittle/roster"
	"github.com/csmith/biglittle/stores"
	"github.com/csmith/envflag/v2"
	"github.com/csmith/slogflags"
)

var (
	store = flag.String("store", "json", "Where preferences are read from and results saved to: json, sqlite or postgres")

	bigsFile    = flag.String("bigs-file", "bigs.json", "JSON file of Big preferences")
	littlesFile = flag.String("littles-file", "littles.json", "JSON file of Little preferences")
	resultsFile = flag.String("results-file", "matches.json", "JSON file to save results to")
	sqlitePath  = flag.String("sqlite-path", "biglittle.db", "Path to the SQLite database")
	postgresDSN = flag.String("postgres-dsn", "", "PostgreSQL connection string")

	school       = flag.String("school", "", "School of the chapter to match")
	organization = flag.String("organization", "", "Organization of the chapter to match")
	createdBy    = flag.String("created-by", "", "Who the saved result is attributed to")

	fuzzyNames = flag.Bool("fuzzy-names", false, "Correct misspelled names in preference lists before matching")
	dryRun     = flag.Bool("dry-run", false, "Don't save the result, just print the matches")
	period     = flag.Duration("period", 0, "Length of time between each run. If zero, will run once and exit.")
)

type chapterStore interface {
	model.ProfileStore
	model.ResultStore
}

func main() {
	envflag.Parse()
	_ = slogflags.Logger(slogflags.WithSetDefault(true))

	st, closer, err := selectedStore()
	if err != nil {
		slog.Error("Failed to get store", "error", err)
		os.Exit(1)
	}
	defer closer()

	chapter := model.Chapter{School: *school, Organization: *organization}
	ctx := context.Background()

	if period.Minutes() < 1 {
		slog.Debug("Period is less than 1 minute, doing a one-shot run")
		if err := run(ctx, st, chapter); err != nil {
			slog.Error("Failed to match chapter", "chapter", chapter.Key(), "error", err)
			closer()
			os.Exit(1)
		}
		return
	}

	for {
		if err := run(ctx, st, chapter); err != nil {
			slog.Error("Failed to match chapter", "chapter", chapter.Key(), "error", err)
		}
		slog.Info("Sleeping until next run", "period", period)
		time.Sleep(*period)
	}
}

func selectedStore() (chapterStore, func(), error) {
	switch *store {
	case "json":
		return &stores.JSONFiles{
			BigsPath:    *bigsFile,
			LittlesPath: *littlesFile,
			ResultsPath: *resultsFile,
		}, func() {}, nil

	case "sqlite":
		st := &stores.SQLite{Path: *sqlitePath}
		return st, closeLogged(st.Close), nil

	case "postgres":
		if *postgresDSN == "" {
			return nil, nil, fmt.Errorf("postgres-dsn must be specified")
		}
		st := &stores.Postgres{DSN: *postgresDSN}
		return st, closeLogged(st.Close), nil

	case "":
		return nil, nil, fmt.Errorf("store must be specified")

	default:
		return nil, nil, fmt.Errorf("store not valid: %s", *store)
	}
}

func closeLogged(closer func() error) func() {
	return func() {
		if err := closer(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}
}

func run(ctx context.Context, st chapterStore, chapter model.Chapter) error {
	bigs, littles, err := st.Preferences(ctx, chapter)
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	if *fuzzyNames {
		bigs, littles = reconcile(bigs, littles)
	}

	assignment := matcher.Assign(bigs, littles)
	unplacedBigs, unplacedLittles := matcher.Unplaced(bigs, littles, assignment)

	slog.Info(
		"Calculated matches",
		"chapter", chapter.Key(),
		"bigs", len(bigs),
		"littles", len(littles),
		"matched_bigs", len(assignment),
		"unplaced_bigs", len(unplacedBigs),
		"unplaced_littles", len(unplacedLittles),
	)

	printAssignment(os.Stdout, assignment)

	for _, big := range unplacedBigs {
		slog.Warn("Unplaced", "big", big, "chapter", chapter.Key())
	}
	for _, little := range unplacedLittles {
		slog.Warn("Unplaced", "little", little, "chapter", chapter.Key())
	}

	if *dryRun {
		slog.Info("Dry run, not saving result", "chapter", chapter.Key())
		return nil
	}

	result := model.NewResult(chapter, assignment, *createdBy)
	if err := st.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	slog.Info("Saved result", "chapter", chapter.Key(), "id", result.ID)
	return nil
}

// reconcile corrects each side's lists against the names registered on the other side
func reconcile(bigs, littles model.Preferences) (model.Preferences, model.Preferences) {
	fixedBigs, bigCorrections := roster.Reconcile(bigs, littles.Names())
	fixedLittles, littleCorrections := roster.Reconcile(littles, bigs.Names())

	for _, c := range append(bigCorrections, littleCorrections...) {
		slog.Info("Corrected name in preferences", "person", c.Person, "from", c.From, "to", c.To)
	}

	return fixedBigs, fixedLittles
}

func printAssignment(w io.Writer, assignment model.Assignment) {
	bigs := make([]string, 0, len(assignment))
	for big := range assignment {
		bigs = append(bigs, big)
	}
	sort.Strings(bigs)

	for _, big := range bigs {
		_, _ = fmt.Fprintf(w, "%s ❤️ %s\n", big, strings.Join(assignment[big], ", "))
	}
}
