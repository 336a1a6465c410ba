package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/lifttrack/internal/models"
	"github.com/meltforce/lifttrack/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	InstancesCreated int
	SetsInserted     int

	RejectedRows []string
}

// Row is one parsed line of a workout export file.
type Row struct {
	Date     string
	Exercise string
	Instance int
	SetOrder int
	Reps     int
	Weight   int
}

// Importer reads workout CSV exports from a directory and inserts sets into
// the database. Imports are single-user.
type Importer struct {
	db     *storage.DB
	log    *slog.Logger
	userID int
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(db *storage.DB, log *slog.Logger, userID int, dryRun bool) *Importer {
	return &Importer{db: db, log: log, userID: userID, dryRun: dryRun}
}

// Import processes all .csv files in the given directory. Files already
// recorded in the state database are skipped.
func (imp *Importer) Import(ctx context.Context, dir string, state *StateDB) (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return &imp.stats, err
	}
	sort.Strings(files)

	for _, f := range files {
		rel := filepath.Base(f)

		info, err := os.Stat(f)
		if err != nil {
			imp.log.Warn("stat failed", "file", rel, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		hash, err := HashFile(f)
		if err != nil {
			imp.log.Warn("hash failed", "file", rel, "error", err)
			imp.stats.FilesErrored++
			continue
		}

		if state != nil {
			done, err := state.IsImported(rel, info.Size(), hash)
			if err != nil {
				return &imp.stats, fmt.Errorf("checking state for %s: %w", rel, err)
			}
			if done {
				imp.stats.FilesSkipped++
				continue
			}
		}

		if err := imp.importFile(ctx, f); err != nil {
			return &imp.stats, fmt.Errorf("importing %s: %w", rel, err)
		}
		imp.stats.FilesProcessed++

		if state != nil && !imp.dryRun {
			if err := state.MarkImported(rel, info.Size(), hash); err != nil {
				return &imp.stats, fmt.Errorf("marking %s imported: %w", rel, err)
			}
		}
	}

	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, rejected, err := ParseRows(f)
	if err != nil {
		return err
	}
	for _, r := range rejected {
		imp.log.Warn("rejected row", "file", filepath.Base(path), "reason", r)
	}
	imp.stats.RejectedRows = append(imp.stats.RejectedRows, rejected...)

	return imp.insertRows(ctx, rows)
}

// insertRows groups rows by day, exercise and instance, then inserts each
// group as one exercise instance with its sets in order.
func (imp *Importer) insertRows(ctx context.Context, rows []Row) error {
	for _, group := range GroupRows(rows) {
		if imp.dryRun {
			imp.stats.InstancesCreated++
			imp.stats.SetsInserted += len(group)
			continue
		}

		first := group[0]
		workout, err := imp.db.GetOrCreateWorkout(ctx, imp.userID, first.Date)
		if err != nil {
			return fmt.Errorf("workout for %s: %w", first.Date, err)
		}

		instance, err := imp.db.CreateInstance(ctx, workout.ID, first.Exercise)
		if err != nil {
			return fmt.Errorf("instance for %s on %s: %w", first.Exercise, first.Date, err)
		}
		imp.stats.InstancesCreated++

		for _, r := range group {
			if _, err := imp.db.InsertSet(ctx, instance.ID, r.Reps, r.Weight, r.SetOrder); err != nil {
				return fmt.Errorf("set for %s on %s: %w", first.Exercise, first.Date, err)
			}
			imp.stats.SetsInserted++
		}
	}
	return nil
}

// ParseRows parses a workout export in the format
// "date,exercise,instance,set_order,reps,weight". A header line is allowed
// and skipped. Invalid rows are collected, not fatal.
func ParseRows(r io.Reader) ([]Row, []string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var rows []Row
	var rejected []string

	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line++

		if len(record) != 6 {
			rejected = append(rejected, fmt.Sprintf("line %d: want 6 fields, got %d", line, len(record)))
			continue
		}
		if line == 1 && strings.EqualFold(record[0], "date") {
			continue
		}

		row, reason := parseRow(record)
		if reason != "" {
			rejected = append(rejected, fmt.Sprintf("line %d: %s", line, reason))
			continue
		}
		rows = append(rows, row)
	}

	return rows, rejected, nil
}

func parseRow(record []string) (Row, string) {
	date := strings.TrimSpace(record[0])
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Row{}, "invalid date " + date
	}

	exercise := strings.TrimSpace(record[1])
	if !models.KnownExercise(exercise) {
		return Row{}, "unknown exercise " + exercise
	}

	nums := make([]int, 4)
	names := []string{"instance", "set_order", "reps", "weight"}
	for i, field := range record[2:] {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 0 {
			return Row{}, names[i] + " must be a non-negative integer"
		}
		nums[i] = n
	}
	if nums[0] < 1 {
		return Row{}, "instance must be >= 1"
	}

	return Row{
		Date:     date,
		Exercise: exercise,
		Instance: nums[0],
		SetOrder: nums[1],
		Reps:     nums[2],
		Weight:   nums[3],
	}, ""
}

// GroupRows splits rows into per-instance groups, ordered by date, then
// exercise, then the instance number from the file. Sets within a group keep
// their set_order.
func GroupRows(rows []Row) [][]Row {
	type key struct {
		date     string
		exercise string
		instance int
	}

	byKey := map[key][]Row{}
	var keys []key
	for _, r := range rows {
		k := key{r.Date, r.Exercise, r.Instance}
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], r)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		if keys[i].exercise != keys[j].exercise {
			return keys[i].exercise < keys[j].exercise
		}
		return keys[i].instance < keys[j].instance
	})

	groups := make([][]Row, 0, len(keys))
	for _, k := range keys {
		group := byKey[k]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SetOrder < group[j].SetOrder
		})
		groups = append(groups, group)
	}
	return groups
}
