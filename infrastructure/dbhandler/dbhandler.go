package dbhandler

import (
	"context"

	"database/sql"

	"github.com/behrang/sqlbatch"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	// SQLSTATE serialization_failure and deadlock_detected
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"

	defaultMaxRetry = 5
)

// DBHandler contains a connection to database.
type DBHandler struct {
	DB       *sql.DB
	Logger   *zap.Logger
	MaxRetry int
}

func New(db *sql.DB, logger *zap.Logger) DBHandler {
	return DBHandler{DB: db, Logger: logger, MaxRetry: defaultMaxRetry}
}

// Batch creates a transaction and executes the batch of commands in that transaction.
// If a retryable error is received, the batch is retried up to MaxRetry times.
func (handler DBHandler) Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {

	attempt := 0
	for {
		results, err := handler.tryBatch(opts, commands)
		if IsRetryable(err) && attempt < handler.MaxRetry {
			attempt++
			handler.logger().Warn("🟡 retryable postgres error, retrying",
				zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		return results, err
	}
}

func (handler DBHandler) tryBatch(opts *sql.TxOptions, commands []sqlbatch.Command) (results []interface{}, err error) {

	results = make([]interface{}, len(commands))

	tx, err := handler.DB.BeginTx(context.Background(), opts)
	if err != nil {
		return
	}
	defer tx.Rollback()

	results, err = sqlbatch.Batch(tx, commands)

	if err == nil {
		err = tx.Commit()
	}

	return
}

func (handler DBHandler) logger() *zap.Logger {
	if handler.Logger == nil {
		return zap.NewNop()
	}
	return handler.Logger
}

// IsRetryable reports whether err is a transient conflict worth running the transaction again for.
func IsRetryable(err error) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}
