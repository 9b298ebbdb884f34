package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"stockpulse/src/helpers"
	"stockpulse/src/logger"
	"stockpulse/src/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) *SQLiteStore {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// SQLite types: REAL for float64, TEXT for string and timestamps
	query := `
		CREATE TABLE IF NOT EXISTS watchlist (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL UNIQUE,
			target_price REAL NOT NULL,
			added_date TIMESTAMP NOT NULL,
			is_alert_triggered BOOLEAN NOT NULL DEFAULT FALSE,
			last_checked TIMESTAMP NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create watchlist table: %w", err)
	}

	d.Logger.Info("SQLiteStore initialized successfully (%s)", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Ping() error {
	return d.DB.Ping()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) ListAll() ([]models.MWatchlistEntry, error) {
	rows, err := d.DB.Query(`
		SELECT id, symbol, target_price, added_date, is_alert_triggered, last_checked
		FROM watchlist
		ORDER BY added_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.MWatchlistEntry
	for rows.Next() {
		var e models.MWatchlistEntry
		if err := rows.Scan(&e.ID, &e.Symbol, &e.TargetPrice, &e.AddedDate, &e.IsAlertTriggered, &e.LastChecked); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) FindBySymbol(symbol string) (*models.MWatchlistEntry, error) {
	var e models.MWatchlistEntry
	err := d.DB.QueryRow(`
		SELECT id, symbol, target_price, added_date, is_alert_triggered, last_checked
		FROM watchlist
		WHERE symbol = ?
	`, symbol).Scan(&e.ID, &e.Symbol, &e.TargetPrice, &e.AddedDate, &e.IsAlertTriggered, &e.LastChecked)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Insert(symbol string, targetPrice float64) (*models.MWatchlistEntry, error) {
	id := uuid.NewString()

	_, err := d.DB.Exec(`
		INSERT INTO watchlist (id, symbol, target_price, added_date, is_alert_triggered, last_checked)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, FALSE, CURRENT_TIMESTAMP)
	`, id, symbol, targetPrice)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, helpers.NewDuplicateError("stock already in watchlist")
		}
		return nil, err
	}

	return d.findByID(id)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Update(id string, fields models.MWatchlistUpdate) (*models.MWatchlistEntry, error) {
	set := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	if fields.TargetPrice != nil {
		set = append(set, "target_price = ?")
		args = append(args, *fields.TargetPrice)
	}
	if fields.IsAlertTriggered != nil {
		set = append(set, "is_alert_triggered = ?")
		args = append(args, *fields.IsAlertTriggered)
	}
	if fields.LastChecked != nil {
		set = append(set, "last_checked = ?")
		args = append(args, *fields.LastChecked)
	}

	if len(set) == 0 {
		return nil, helpers.NewValidationError("no fields to update")
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE watchlist SET %s WHERE id = ?", strings.Join(set, ", "))

	res, err := d.DB.Exec(query, args...)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, helpers.NewNotFoundError("watchlist item not found")
	}

	return d.findByID(id)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Delete(id string) error {
	res, err := d.DB.Exec(`DELETE FROM watchlist WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return helpers.NewNotFoundError("watchlist item not found")
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) findByID(id string) (*models.MWatchlistEntry, error) {
	var e models.MWatchlistEntry
	err := d.DB.QueryRow(`
		SELECT id, symbol, target_price, added_date, is_alert_triggered, last_checked
		FROM watchlist
		WHERE id = ?
	`, id).Scan(&e.ID, &e.Symbol, &e.TargetPrice, &e.AddedDate, &e.IsAlertTriggered, &e.LastChecked)

	if err == sql.ErrNoRows {
		return nil, helpers.NewNotFoundError("watchlist item not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
