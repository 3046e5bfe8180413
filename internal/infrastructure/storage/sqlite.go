package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quantex/auto-engine/internal/domain"
)

// SQLiteStore persists settings documents and cached per-symbol market
// constraints. Settings are stored as one JSON payload per logic name.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS settings_documents (
			logic_name TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS symbol_constraints (
			symbol TEXT PRIMARY KEY,
			price_precision INTEGER,
			quantity_precision INTEGER,
			min_notional REAL,
			min_quantity REAL,
			updated_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

// SettingsRepository implementation

func (s *SQLiteStore) SaveSettings(ctx context.Context, settings *domain.AutoTradingSettings) error {
	if settings == nil || settings.LogicName == "" {
		return fmt.Errorf("settings must carry a logic name")
	}
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings %s: %w", settings.LogicName, err)
	}
	query := `INSERT INTO settings_documents (logic_name, payload, updated_at) VALUES (?, ?, ?)
			  ON CONFLICT(logic_name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	_, err = s.db.ExecContext(ctx, query, settings.LogicName, string(payload), time.Now().UTC())
	return err
}

func (s *SQLiteStore) LoadSettings(ctx context.Context, logicName string) (*domain.AutoTradingSettings, error) {
	query := `SELECT payload FROM settings_documents WHERE logic_name = ?`
	row := s.db.QueryRowContext(ctx, query, logicName)

	var payload string
	if err := row.Scan(&payload); err != nil {
		return nil, err
	}
	var settings domain.AutoTradingSettings
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings %s: %w", logicName, err)
	}
	return &settings, nil
}

func (s *SQLiteStore) ListSettings(ctx context.Context) ([]string, error) {
	query := `SELECT logic_name FROM settings_documents ORDER BY logic_name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ConstraintsRepository implementation

func (s *SQLiteStore) SaveConstraints(ctx context.Context, c *domain.MarketConstraints) error {
	if c == nil || c.Symbol == "" {
		return fmt.Errorf("constraints must carry a symbol")
	}
	query := `INSERT INTO symbol_constraints (symbol, price_precision, quantity_precision, min_notional, min_quantity, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT(symbol) DO UPDATE SET
				price_precision = excluded.price_precision,
				quantity_precision = excluded.quantity_precision,
				min_notional = excluded.min_notional,
				min_quantity = excluded.min_quantity,
				updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		c.Symbol, nullInt(c.PricePrecision), nullInt(c.QuantityPrecision),
		nullFloat(c.MinNotional), nullFloat(c.MinQuantity), time.Now().UTC())
	return err
}

func (s *SQLiteStore) GetConstraints(ctx context.Context, symbol string) (*domain.MarketConstraints, error) {
	query := `SELECT symbol, price_precision, quantity_precision, min_notional, min_quantity FROM symbol_constraints WHERE symbol = ?`
	row := s.db.QueryRowContext(ctx, query, symbol)

	var c domain.MarketConstraints
	var priceP, qtyP sql.NullInt64
	var minNotional, minQty sql.NullFloat64
	if err := row.Scan(&c.Symbol, &priceP, &qtyP, &minNotional, &minQty); err != nil {
		return nil, err
	}
	if priceP.Valid {
		v := int(priceP.Int64)
		c.PricePrecision = &v
	}
	if qtyP.Valid {
		v := int(qtyP.Int64)
		c.QuantityPrecision = &v
	}
	if minNotional.Valid {
		v := minNotional.Float64
		c.MinNotional = &v
	}
	if minQty.Valid {
		v := minQty.Float64
		c.MinQuantity = &v
	}
	return &c, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
