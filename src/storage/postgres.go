package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"stockpulse/src/helpers"
	"stockpulse/src/logger"
	"stockpulse/src/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// The watchlist must survive restarts, so create rather than recreate.
	query := `
		CREATE TABLE IF NOT EXISTS watchlist (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL UNIQUE,
			target_price DOUBLE PRECISION NOT NULL,
			added_date TIMESTAMPTZ NOT NULL,
			is_alert_triggered BOOLEAN NOT NULL DEFAULT FALSE,
			last_checked TIMESTAMPTZ NOT NULL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create watchlist table: %w", err)
	}

	if _, err := d.DB.Exec(`CREATE INDEX IF NOT EXISTS watchlist_added_date_idx ON watchlist (added_date DESC)`); err != nil {
		return fmt.Errorf("failed to create added_date index: %w", err)
	}

	d.Logger.Info("PostgresStore initialized successfully")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Ping() error {
	return d.DB.Ping()
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) ListAll() ([]models.MWatchlistEntry, error) {
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

func (d *PostgresStore) FindBySymbol(symbol string) (*models.MWatchlistEntry, error) {
	var e models.MWatchlistEntry
	err := d.DB.QueryRow(`
		SELECT id, symbol, target_price, added_date, is_alert_triggered, last_checked
		FROM watchlist
		WHERE symbol = $1
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

func (d *PostgresStore) Insert(symbol string, targetPrice float64) (*models.MWatchlistEntry, error) {
	var e models.MWatchlistEntry
	err := d.DB.QueryRow(`
		INSERT INTO watchlist (id, symbol, target_price, added_date, is_alert_triggered, last_checked)
		VALUES ($1, $2, $3, NOW(), FALSE, NOW())
		RETURNING id, symbol, target_price, added_date, is_alert_triggered, last_checked
	`, uuid.NewString(), symbol, targetPrice).Scan(&e.ID, &e.Symbol, &e.TargetPrice, &e.AddedDate, &e.IsAlertTriggered, &e.LastChecked)

	if err != nil {
		// 23505 is unique_violation: the symbol is already watched.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, helpers.NewDuplicateError("stock already in watchlist")
		}
		return nil, err
	}
	return &e, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Update(id string, fields models.MWatchlistUpdate) (*models.MWatchlistEntry, error) {
	set := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	if fields.TargetPrice != nil {
		args = append(args, *fields.TargetPrice)
		set = append(set, fmt.Sprintf("target_price = $%d", len(args)))
	}
	if fields.IsAlertTriggered != nil {
		args = append(args, *fields.IsAlertTriggered)
		set = append(set, fmt.Sprintf("is_alert_triggered = $%d", len(args)))
	}
	if fields.LastChecked != nil {
		args = append(args, *fields.LastChecked)
		set = append(set, fmt.Sprintf("last_checked = $%d", len(args)))
	}

	if len(set) == 0 {
		return nil, helpers.NewValidationError("no fields to update")
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE watchlist SET %s
		WHERE id = $%d
		RETURNING id, symbol, target_price, added_date, is_alert_triggered, last_checked
	`, strings.Join(set, ", "), len(args))

	var e models.MWatchlistEntry
	err := d.DB.QueryRow(query, args...).Scan(&e.ID, &e.Symbol, &e.TargetPrice, &e.AddedDate, &e.IsAlertTriggered, &e.LastChecked)
	if err == sql.ErrNoRows {
		return nil, helpers.NewNotFoundError("watchlist item not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Delete(id string) error {
	res, err := d.DB.Exec(`DELETE FROM watchlist WHERE id = $1`, id)
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

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
