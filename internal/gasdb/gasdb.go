package gasdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/patrickmn/go-cache"

	"github.com/rubiojr/gasmap/pkg/api"
)

const (
	defaultCacheExpirationMinutes = 10
	defaultCacheCleanupMinutes    = 30
	defaultCacheSize              = -1024 * 1024 // negative value for pages
	defaultPageSize               = 4096
	deleteBatchSize               = 100
	deleteRecordsPause            = 50 * time.Millisecond

	dateLayout = "2006-01-02"
)

var ErrNoData = errors.New("no data available")

// Storage keeps raw daily responses of the fuel price API, one row per day.
type Storage struct {
	db    *sql.DB
	cache *cache.Cache
	log   *slog.Logger
}

func NewStorage(ctx context.Context, dbPath string, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := configureSQLitePragmas(ctx, db, defaultCacheSize); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	c := cache.New(defaultCacheExpirationMinutes*time.Minute, defaultCacheCleanupMinutes*time.Minute)

	return &Storage{
		db:    db,
		cache: c,
		log:   logger,
	}, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS fuel_prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT UNIQUE NOT NULL,
		data BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fuel_prices_date ON fuel_prices(date);
	`

	_, err := db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}
	return nil
}

func configureSQLitePragmas(ctx context.Context, db *sql.DB, cacheSize int) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA auto_vacuum = INCREMENTAL",
		"PRAGMA temp_store = FILE",
		"PRAGMA mmap_size = 0",
		// 64MB, the raw responses are around 10MB each
		"PRAGMA soft_heap_limit = 67108864",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA cache_size = %d", cacheSize),
		fmt.Sprintf("PRAGMA page_size = %d", defaultPageSize),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("error running %q: %w", p, err)
		}
	}
	return nil
}

func (s *Storage) Close() error {
	if s.cache != nil {
		s.cache.Flush()
	}
	return s.db.Close()
}

// SavePrices stores the raw response for date, replacing any previous one.
func (s *Storage) SavePrices(ctx context.Context, date time.Time, data []byte) error {
	dateStr := date.Format(dateLayout)

	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO fuel_prices (date, data) VALUES (?, ?)", dateStr, data)
	if err != nil {
		return fmt.Errorf("error inserting data: %w", err)
	}

	s.cache.Delete(dateStr)
	s.log.Debug("Saved prices", "date", dateStr, "bytes", len(data))
	return nil
}

func (s *Storage) HasDate(ctx context.Context, date time.Time) (bool, error) {
	dateStr := date.Format(dateLayout)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fuel_prices WHERE date = ?", dateStr).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error checking date existence: %w", err)
	}
	return count > 0, nil
}

// GetPrices returns the decoded snapshot stored for date. A missing day yields
// an error wrapping ErrNoData.
func (s *Storage) GetPrices(ctx context.Context, date time.Time) (*api.GasStationList, error) {
	dateStr := date.Format(dateLayout)

	if cachedData, found := s.cache.Get(dateStr); found {
		s.log.Debug("Using cached data", "key", dateStr)
		return cachedData.(*api.GasStationList), nil
	}

	var jsonData []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM fuel_prices WHERE date = ?", dateStr).Scan(&jsonData)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w for date %s", ErrNoData, dateStr)
		}
		return nil, fmt.Errorf("error querying database: %w", err)
	}

	pricesResponse, err := api.DecodeStationList(jsonData)
	if err != nil {
		return nil, fmt.Errorf("error decoding stored data for %s: %w", dateStr, err)
	}

	s.cache.Set(dateStr, pricesResponse, cache.DefaultExpiration)
	return pricesResponse, nil
}

// GetAllDates returns all dates present in the fuel_prices table, sorted ascending.
func (s *Storage) GetAllDates(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date FROM fuel_prices ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("error querying dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, fmt.Errorf("error scanning date: %w", err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error: %w", err)
	}
	return dates, nil
}

// GetLastUpdateDate returns the most recent stored day, or nil when the store
// is empty.
func (s *Storage) GetLastUpdateDate(ctx context.Context) (*time.Time, error) {
	var dateStr string
	err := s.db.QueryRowContext(ctx, "SELECT date FROM fuel_prices ORDER BY date DESC LIMIT 1").Scan(&dateStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying last update date: %w", err)
	}

	lastUpdate, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("error parsing date %s: %w", dateStr, err)
	}

	return &lastUpdate, nil
}

// DeleteOldRecords removes snapshots older than daysOld days, a few rows at a
// time so the WAL stays small, and returns how many were deleted.
func (s *Storage) DeleteOldRecords(ctx context.Context, daysOld int) (int, error) {
	cutoffDate := time.Now().AddDate(0, 0, -daysOld).Format(dateLayout)
	s.log.Info("Starting cleanup of old records", "cutoff_date", cutoffDate)

	deletedCount := 0
	for {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM fuel_prices WHERE ROWID IN (SELECT ROWID FROM fuel_prices WHERE date < ? ORDER BY ROWID LIMIT ?)",
			cutoffDate, deleteBatchSize)
		if err != nil {
			return deletedCount, fmt.Errorf("error deleting fuel_prices records: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return deletedCount, fmt.Errorf("error counting deleted records: %w", err)
		}
		if n == 0 {
			break
		}
		deletedCount += int(n)
		s.log.Debug("Deleted fuel_prices records", "count", deletedCount)

		select {
		case <-ctx.Done():
			return deletedCount, ctx.Err()
		case <-time.After(deleteRecordsPause):
		}
	}

	s.cache.Flush()
	s.log.Info("Completed fuel_prices cleanup", "deleted_count", deletedCount)

	if deletedCount > 0 {
		if _, err := s.db.ExecContext(ctx, "PRAGMA incremental_vacuum(1000)"); err != nil {
			return deletedCount, fmt.Errorf("error performing incremental vacuum: %w", err)
		}
	}
	return deletedCount, nil
}
