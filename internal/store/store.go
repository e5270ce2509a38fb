package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dgallion1/harvestparse/internal/harvest"
)

const schema = `
CREATE TABLE IF NOT EXISTS parse_run (
	run_id       TEXT PRIMARY KEY,
	source_file  TEXT NOT NULL,
	species      TEXT NOT NULL,
	year         INTEGER NOT NULL,
	harvest_rows INTEGER NOT NULL,
	dau_rows     INTEGER NOT NULL,
	warnings     INTEGER NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS harvest_record (
	id                     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id                 TEXT NOT NULL,
	species                TEXT NOT NULL,
	year                   INTEGER NOT NULL,
	gmu                    INTEGER NOT NULL,
	method                 TEXT NOT NULL,
	season                 TEXT NOT NULL,
	license_type           TEXT,
	table_type             TEXT NOT NULL,
	bulls                  INTEGER,
	cows                   INTEGER,
	calves                 INTEGER,
	total_harvest          INTEGER,
	total_hunters          INTEGER,
	pct_success            INTEGER,
	total_rec_days         INTEGER,
	antlered_harvest       INTEGER,
	antlered_hunters       INTEGER,
	antlered_pct_success   INTEGER,
	antlerless_harvest     INTEGER,
	antlerless_hunters     INTEGER,
	antlerless_pct_success INTEGER
);
CREATE INDEX IF NOT EXISTS harvest_record_year ON harvest_record(species, year, gmu);
CREATE TABLE IF NOT EXISTS dau_record (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id            TEXT NOT NULL,
	species           TEXT NOT NULL,
	year              INTEGER NOT NULL,
	dau               TEXT NOT NULL,
	hunters_estimate  INTEGER, hunters_se  INTEGER, hunters_lcl  INTEGER, hunters_ucl  INTEGER,
	harvest_estimate  INTEGER, harvest_se  INTEGER, harvest_lcl  INTEGER, harvest_ucl  INTEGER,
	pct_success       REAL,
	rec_days_estimate INTEGER, rec_days_se INTEGER, rec_days_lcl INTEGER, rec_days_ucl INTEGER,
	sample_rate       REAL,
	response_rate     REAL
);
CREATE INDEX IF NOT EXISTS dau_record_year ON dau_record(species, year, dau);
`

// Store persists parsed records in an embedded SQLite database. Each
// (species, year) holds the rows of the most recent save only.
type Store struct {
	Db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// Batch workers share one connection so writes queue rather than hit SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{Db: db}, nil
}

func (s *Store) Close() error {
	return s.Db.Close()
}

// SaveResult replaces the stored rows for the result's species and year in a
// single transaction and returns the new run id.
func (s *Store) SaveResult(ctx context.Context, res *harvest.Result) (string, error) {
	runID := uuid.New().String()

	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"harvest_record", "dau_record", "parse_run"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE species = ? AND year = ?`, res.Species, res.Year); err != nil {
			return "", fmt.Errorf("error clearing %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO parse_run(run_id, source_file, species, year, harvest_rows, dau_rows, warnings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, res.Document, res.Species, res.Year,
		len(res.Harvest), len(res.DAU), len(res.Warnings), time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("error inserting parse run: %w", err)
	}

	hstmt, err := tx.PrepareContext(ctx,
		`INSERT INTO harvest_record(
			run_id, species, year, gmu, method, season, license_type, table_type,
			bulls, cows, calves, total_harvest, total_hunters, pct_success, total_rec_days,
			antlered_harvest, antlered_hunters, antlered_pct_success,
			antlerless_harvest, antlerless_hunters, antlerless_pct_success
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare harvest insert: %w", err)
	}
	defer hstmt.Close()

	for _, r := range res.Harvest {
		f := r.Flat()
		if _, err := hstmt.ExecContext(ctx,
			runID, f.Species, f.Year, f.GMU, f.Method, f.Season, nullString(f.LicenseType), f.TableType,
			f.Bulls, f.Cows, f.Calves, f.TotalHarvest, f.TotalHunters, f.PctSuccess, f.TotalRecDays,
			f.AntleredHarvest, f.AntleredHunters, f.AntleredPctSuccess,
			f.AntlerlessHarvest, f.AntlerlessHunters, f.AntlerlessPctSuccess,
		); err != nil {
			return "", fmt.Errorf("error inserting harvest record gmu %d: %w", f.GMU, err)
		}
	}

	dstmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dau_record(
			run_id, species, year, dau,
			hunters_estimate, hunters_se, hunters_lcl, hunters_ucl,
			harvest_estimate, harvest_se, harvest_lcl, harvest_ucl,
			pct_success,
			rec_days_estimate, rec_days_se, rec_days_lcl, rec_days_ucl,
			sample_rate, response_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare dau insert: %w", err)
	}
	defer dstmt.Close()

	for _, r := range res.DAU {
		if _, err := dstmt.ExecContext(ctx,
			runID, r.Species, r.Year, r.DAU,
			r.Hunters.Estimate, r.Hunters.SE, r.Hunters.LCL, r.Hunters.UCL,
			r.Harvest.Estimate, r.Harvest.SE, r.Harvest.LCL, r.Harvest.UCL,
			r.PctSuccess,
			r.RecDays.Estimate, r.RecDays.SE, r.RecDays.LCL, r.RecDays.UCL,
			r.SampleRate, r.ResponseRate,
		); err != nil {
			return "", fmt.Errorf("error inserting dau record %s: %w", r.DAU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// Years lists the years stored for a species, ascending.
func (s *Store) Years(ctx context.Context, species string) ([]int, error) {
	rows, err := s.Db.QueryContext(ctx,
		`SELECT DISTINCT year FROM parse_run WHERE species = ? ORDER BY year`, species)
	if err != nil {
		return nil, fmt.Errorf("error listing years: %w", err)
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("error scanning year: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating years: %w", err)
	}
	return years, nil
}

// HarvestRecords returns the stored flat rows for one species and year in
// insertion order.
func (s *Store) HarvestRecords(ctx context.Context, species string, year int) ([]harvest.FlatHarvest, error) {
	rows, err := s.Db.QueryContext(ctx,
		`SELECT year, species, gmu, method, season, COALESCE(license_type, ''), table_type,
			bulls, cows, calves, total_harvest, total_hunters, pct_success, total_rec_days,
			antlered_harvest, antlered_hunters, antlered_pct_success,
			antlerless_harvest, antlerless_hunters, antlerless_pct_success
		FROM harvest_record
		WHERE species = ? AND year = ?
		ORDER BY id`, species, year)
	if err != nil {
		return nil, fmt.Errorf("error finding harvest records: %w", err)
	}
	defer rows.Close()

	var out []harvest.FlatHarvest
	for rows.Next() {
		var f harvest.FlatHarvest
		err := rows.Scan(
			&f.Year, &f.Species, &f.GMU, &f.Method, &f.Season, &f.LicenseType, &f.TableType,
			&f.Bulls, &f.Cows, &f.Calves, &f.TotalHarvest, &f.TotalHunters, &f.PctSuccess, &f.TotalRecDays,
			&f.AntleredHarvest, &f.AntleredHunters, &f.AntleredPctSuccess,
			&f.AntlerlessHarvest, &f.AntlerlessHunters, &f.AntlerlessPctSuccess,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning harvest record: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating harvest records: %w", err)
	}
	return out, nil
}

// DAUCount returns the number of stored DAU rows for one species and year.
func (s *Store) DAUCount(ctx context.Context, species string, year int) (int, error) {
	var n int
	err := s.Db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dau_record WHERE species = ? AND year = ?`, species, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting dau records: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
