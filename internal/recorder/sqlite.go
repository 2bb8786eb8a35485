package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"PriceSentinel/internal/execution"
	"PriceSentinel/internal/model"
)

// SQLiteRecorder persists signals, rejections, and orders to a SQLite
// database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads do not block the bar path.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			signal_type    TEXT,
			confidence     REAL,
			price          REAL,
			reason         TEXT,
			bar_quality    TEXT,
			structure      TEXT,
			trend_strength REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol)`,

		`CREATE TABLE IF NOT EXISTS rejections (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			signal_type TEXT,
			confidence  REAL,
			reason      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rejections_ts ON rejections(timestamp)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			order_id  TEXT,
			symbol    TEXT NOT NULL,
			side      TEXT,
			fraction  REAL,
			price     REAL,
			stop      REAL,
			reason    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_ts ON orders(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(sig *model.TradingSignal, ctx *model.PriceActionContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var quality, structure string
	var strength float64
	if ctx != nil {
		quality = string(ctx.BarQuality)
		structure = string(ctx.MarketStructure)
		strength = ctx.TrendStrength
	}

	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, symbol, signal_type, confidence, price, reason, bar_quality, structure, trend_strength)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		sig.Timestamp.Unix(), sig.Symbol, string(sig.SignalType),
		sig.Confidence, sig.Price, sig.Reason,
		quality, structure, strength,
	)
	return err
}

func (r *SQLiteRecorder) RecordRejection(symbol, reason string, sig *model.TradingSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var signalType string
	var confidence float64
	if sig != nil {
		signalType = string(sig.SignalType)
		confidence = sig.Confidence
	}

	_, err := r.db.Exec(`INSERT INTO rejections
		(timestamp, symbol, signal_type, confidence, reason)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), symbol, signalType, confidence, reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordOrder(o *execution.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO orders
		(timestamp, order_id, symbol, side, fraction, price, stop, reason)
		VALUES (?,?,?,?,?,?,?,?)`,
		o.Timestamp.Unix(), o.ID.String(), o.Symbol, string(o.Side),
		o.Fraction, o.Price, o.Stop, o.Reason,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
