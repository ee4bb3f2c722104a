package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
	"github.com/library-tracker/cmd/api/book"
)

const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
	pqConnectionClass     = pq.ErrorClass("08")
	pqTooManyConnections  = pq.ErrorCode("53300")
	pqAdminShutdown       = pq.ErrorCode("57P01")
	pqCrashShutdown       = pq.ErrorCode("57P02")
	pqCannotConnectNow    = pq.ErrorCode("57P03")
)

/* Wraps known PostgreSQL and connection faults with the matching book error. Unknown errors are returned as they are. */
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqUniqueViolation:
			return fmt.Errorf("%w: %w", book.ErrResponseDuplicateEntry, err)
		case pqErr.Code == pqForeignKeyViolation:
			return fmt.Errorf("%w: %w", book.ErrResponseGenreNotFound, err)
		case pqErr.Code.Class() == pqConnectionClass,
			pqErr.Code == pqTooManyConnections,
			pqErr.Code == pqAdminShutdown,
			pqErr.Code == pqCrashShutdown,
			pqErr.Code == pqCannotConnectNow:
			return fmt.Errorf("%w: %w", book.ErrResponseStorageUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", book.ErrResponseStorageUnavailable, err)
	}
	return err
}
