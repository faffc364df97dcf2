// Package txn runs multi-document writes in a MongoDB transaction when the
// deployment supports one, and falls back to sequential writes otherwise.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// codeIllegalOperation is what a standalone mongod answers to a
// transaction: "Transaction numbers are only allowed on a replica set
// member or mongos".
const codeIllegalOperation = 20

const standaloneMsg = "transaction numbers are only allowed"

// IsNotSupported reports whether err means the server cannot run transactions
// at all (a standalone mongod in development). Errors from a transaction that
// did start, such as write conflicts, are not matched.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == codeIllegalOperation {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), standaloneMsg)
}

// Run executes fn inside a transaction. When the deployment rejects
// transactions, fn is re-run once against ctx without a session.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	err := client.UseSession(ctx, func(sc mongo.SessionContext) error {
		_, err := sc.WithTransaction(sc, func(sc mongo.SessionContext) (interface{}, error) {
			return nil, fn(sc)
		})
		return err
	})
	if err == nil || !IsNotSupported(err) {
		return err
	}
	if log != nil {
		log.Debug("transactions unavailable, running without", zap.Error(err))
	}
	return fn(ctx)
}
