package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// TimeRange represents different time window options
type TimeRange int

const (
	Range30Min TimeRange = iota
	Range1Hour
	Range6Hour
	Range1Day
	Range1Week
)

func (t TimeRange) String() string {
	switch t {
	case Range30Min:
		return "30min"
	case Range1Hour:
		return "1hour"
	case Range6Hour:
		return "6hours"
	case Range1Day:
		return "1day"
	case Range1Week:
		return "1week"
	default:
		return "unknown"
	}
}

// Duration returns the time duration for the range
func (t TimeRange) Duration() time.Duration {
	switch t {
	case Range30Min:
		return 30 * time.Minute
	case Range1Hour:
		return 1 * time.Hour
	case Range6Hour:
		return 6 * time.Hour
	case Range1Day:
		return 24 * time.Hour
	case Range1Week:
		return 7 * 24 * time.Hour
	default:
		return 30 * time.Minute
	}
}

// Bucket returns the width of one aggregated data point
func (t TimeRange) Bucket() time.Duration {
	switch t {
	case Range1Hour:
		return time.Minute
	case Range6Hour:
		return 5 * time.Minute
	case Range1Day:
		return 30 * time.Minute
	case Range1Week:
		return 3 * time.Hour
	default:
		return 30 * time.Second
	}
}

// DataPoint is the number of changes within one bucket
type DataPoint struct {
	Timestamp time.Time
	Count     int
}

// RegionChange is one region replaced by a sync tick
type RegionChange struct {
	Region     string
	Generation uint64
	Size       int
	Timestamp  time.Time
}

// ViewEvent is one switch of the video panel
type ViewEvent struct {
	Mode       string
	Identifier string
	Timestamp  time.Time
}

// Storage journals dashboard activity
type Storage struct {
	db        *sql.DB
	retention time.Duration
	logger    *slog.Logger
	writeChan chan any
	flushChan chan chan struct{}
	closeChan chan struct{}
	wg        sync.WaitGroup
}

// NewStorage opens (or creates) the journal database at path
func NewStorage(path string, retention time.Duration, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps writes serialized
	db.SetMaxOpenConns(1)

	// Create tables
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	storage := &Storage{
		db:        db,
		retention: retention,
		logger:    logger.With("component", "storage"),
		writeChan: make(chan any, 1000),
		flushChan: make(chan chan struct{}),
		closeChan: make(chan struct{}),
	}

	storage.wg.Add(2)
	// Start background writer
	go storage.writer()
	// Start cleanup routine
	go storage.cleanup()

	return storage, nil
}

// createTables creates the database schema
func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS region_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		region TEXT NOT NULL,
		generation INTEGER,
		size INTEGER,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_region_time
	ON region_changes(region, timestamp);

	CREATE TABLE IF NOT EXISTS view_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mode TEXT NOT NULL,
		identifier TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_view_time
	ON view_events(timestamp);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// RecordChange queues a region change for writing
func (s *Storage) RecordChange(c RegionChange) {
	s.enqueue(c)
}

// RecordView queues a view switch for writing
func (s *Storage) RecordView(e ViewEvent) {
	s.enqueue(e)
}

func (s *Storage) enqueue(entry any) {
	select {
	case s.writeChan <- entry:
	default:
		// Channel full, drop rather than stall the dashboard
	}
}

// Flush blocks until every queued entry is written
func (s *Storage) Flush() {
	done := make(chan struct{})
	select {
	case s.flushChan <- done:
		<-done
	case <-s.closeChan:
	}
}

// writer runs in background and batch writes to database
func (s *Storage) writer() {
	defer s.wg.Done()

	buffer := make([]any, 0, 100)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	drain := func() {
		for {
			select {
			case entry := <-s.writeChan:
				buffer = append(buffer, entry)
			default:
				return
			}
		}
	}

	for {
		select {
		case entry := <-s.writeChan:
			buffer = append(buffer, entry)
			if len(buffer) >= 50 {
				s.batchWrite(buffer)
				buffer = buffer[:0]
			}

		case <-ticker.C:
			if len(buffer) > 0 {
				s.batchWrite(buffer)
				buffer = buffer[:0]
			}

		case done := <-s.flushChan:
			drain()
			if len(buffer) > 0 {
				s.batchWrite(buffer)
				buffer = buffer[:0]
			}
			close(done)

		case <-s.closeChan:
			// Final flush on close
			drain()
			if len(buffer) > 0 {
				s.batchWrite(buffer)
			}
			return
		}
	}
}

// batchWrite writes a batch of entries to the database. Failures drop the
// batch and are logged.
func (s *Storage) batchWrite(entries []any) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Warn("journal batch dropped", "stage", "begin", "entries", len(entries), "err", err)
		return
	}
	defer tx.Rollback()

	changeStmt, err := tx.Prepare(`
		INSERT INTO region_changes (region, generation, size, timestamp)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		s.logger.Warn("journal batch dropped", "stage", "prepare", "table", "region_changes", "entries", len(entries), "err", err)
		return
	}
	defer changeStmt.Close()

	viewStmt, err := tx.Prepare(`
		INSERT INTO view_events (mode, identifier, timestamp)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		s.logger.Warn("journal batch dropped", "stage", "prepare", "table", "view_events", "entries", len(entries), "err", err)
		return
	}
	defer viewStmt.Close()

	for _, entry := range entries {
		switch e := entry.(type) {
		case RegionChange:
			if _, err := changeStmt.Exec(e.Region, int64(e.Generation), e.Size, e.Timestamp.Unix()); err != nil {
				s.logger.Warn("journal entry dropped", "table", "region_changes", "region", e.Region, "err", err)
			}
		case ViewEvent:
			if _, err := viewStmt.Exec(e.Mode, e.Identifier, e.Timestamp.Unix()); err != nil {
				s.logger.Warn("journal entry dropped", "table", "view_events", "identifier", e.Identifier, "err", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Warn("journal batch dropped", "stage", "commit", "entries", len(entries), "err", err)
	}
}

// Query returns the number of changes of a region per bucket over the range,
// oldest first, with empty buckets included
func (s *Storage) Query(region string, timeRange TimeRange) ([]DataPoint, error) {
	return s.query(region, timeRange, time.Now())
}

func (s *Storage) query(region string, timeRange TimeRange, now time.Time) ([]DataPoint, error) {
	bucket := int64(timeRange.Bucket() / time.Second)
	end := now.Unix()/bucket*bucket + bucket
	start := end - int64(timeRange.Duration()/time.Second)

	rows, err := s.db.Query(`
		SELECT (timestamp / ?) * ? AS bucket, COUNT(*)
		FROM region_changes
		WHERE region = ? AND timestamp >= ? AND timestamp < ?
		GROUP BY bucket
		ORDER BY bucket ASC
	`, bucket, bucket, region, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var b int64
		var n int
		if err := rows.Scan(&b, &n); err != nil {
			continue
		}
		counts[b] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	points := make([]DataPoint, 0, (end-start)/bucket)
	for b := start; b < end; b += bucket {
		points = append(points, DataPoint{Timestamp: time.Unix(b, 0), Count: counts[b]})
	}
	return points, nil
}

// RecentViews returns the latest view switches, newest first
func (s *Storage) RecentViews(limit int) ([]ViewEvent, error) {
	rows, err := s.db.Query(`
		SELECT mode, identifier, timestamp
		FROM view_events
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ViewEvent
	for rows.Next() {
		var e ViewEvent
		var ts int64
		if err := rows.Scan(&e.Mode, &e.Identifier, &ts); err != nil {
			continue
		}
		e.Timestamp = time.Unix(ts, 0)
		events = append(events, e)
	}
	return events, rows.Err()
}

// cleanup removes old data periodically
func (s *Storage) cleanup() {
	defer s.wg.Done()

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Prune(time.Now().Add(-s.retention)); err != nil {
				s.logger.Warn("journal cleanup failed", "err", err)
			}

		case <-s.closeChan:
			return
		}
	}
}

// Prune deletes journal rows older than cutoff in batches to avoid long locks
func (s *Storage) Prune(cutoff time.Time) (int64, error) {
	const batchSize = 1000
	var total int64
	for _, table := range []string{"region_changes", "view_events"} {
		for {
			result, err := s.db.Exec(
				"DELETE FROM "+table+" WHERE id IN (SELECT id FROM "+table+" WHERE timestamp < ? LIMIT ?)",
				cutoff.Unix(),
				batchSize,
			)
			if err != nil {
				return total, err
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return total, err
			}
			total += rowsAffected
			if rowsAffected < batchSize {
				break
			}
		}
	}
	return total, nil
}

// Close flushes pending entries and closes the storage
func (s *Storage) Close() error {
	close(s.closeChan)
	s.wg.Wait()
	return s.db.Close()
}
