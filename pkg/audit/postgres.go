package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/wardenlabs/warden/pkg/engine"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_records (
	audit_id          UUID PRIMARY KEY,
	fingerprint       TEXT NOT NULL,
	ts                TIMESTAMPTZ NOT NULL,
	query             TEXT NOT NULL,
	response          TEXT NOT NULL,
	original_response TEXT NOT NULL,
	domain            TEXT NOT NULL,
	decision          TEXT NOT NULL,
	reason            TEXT NOT NULL,
	risk_score        DOUBLE PRECISION NOT NULL,
	confidence        DOUBLE PRECISION NOT NULL,
	detail            JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_records_ts ON audit_records (ts);
CREATE INDEX IF NOT EXISTS idx_audit_records_decision ON audit_records (decision);
CREATE INDEX IF NOT EXISTS idx_audit_records_fingerprint ON audit_records (fingerprint);
`

const sweepInterval = time.Hour

// PostgresSink stores the full evaluation record, including the unredacted
// response. Rows past the retention window are swept hourly. This is the one
// place the original response of a blocked evaluation is persisted; access
// to the table is an operator concern.
type PostgresSink struct {
	pool      *pgxpool.Pool
	retention time.Duration
	logger    *zap.Logger
	stop      chan struct{}
	done      chan struct{}
}

// NewPostgres connects, ensures the schema, and starts the retention
// sweeper.
func NewPostgres(ctx context.Context, dsn string, retention time.Duration, logger *zap.Logger) (*PostgresSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, auditSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init audit schema: %w", err)
	}

	s := &PostgresSink{
		pool:      pool,
		retention: retention,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.sweepLoop()
	return s, nil
}

// Write inserts one record. The detail column carries the redacted trail as
// JSON; the original response lives only in its dedicated column.
func (s *PostgresSink) Write(ctx context.Context, trail *engine.AuditTrail) error {
	detail, err := json.Marshal(trail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_records
			(audit_id, fingerprint, ts, query, response, original_response,
			 domain, decision, reason, risk_score, confidence, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (audit_id) DO NOTHING
	`, trail.AuditID, trail.Fingerprint, trail.Timestamp,
		trail.Query, trail.Response, trail.OriginalResponse(),
		string(trail.Domain), trail.Decision.String(), string(trail.Reason),
		trail.RiskScore, trail.Confidence, detail)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (s *PostgresSink) sweepLoop() {
	defer close(s.done)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *PostgresSink) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	cmd, err := s.pool.Exec(ctx, `DELETE FROM audit_records WHERE ts < $1`, cutoff)
	if err != nil {
		s.logger.Warn("audit retention sweep failed", zap.Error(err))
		return
	}
	if rows := cmd.RowsAffected(); rows > 0 {
		s.logger.Info("audit retention sweep",
			zap.Int64("deleted", rows), zap.Time("cutoff", cutoff))
	}
}

// Close stops the sweeper and releases the pool.
func (s *PostgresSink) Close() error {
	close(s.stop)
	<-s.done
	s.pool.Close()
	return nil
}
