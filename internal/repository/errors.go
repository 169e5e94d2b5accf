package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"insurance-service/internal/models"
	"io"
	"net"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const pqUniqueViolation = "23505"

// classifyError maps driver errors onto the models error taxonomy. Errors it
// does not recognise are returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", models.ErrNotFound, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("%w: %s", models.ErrDuplicateKey, pqErr.Constraint)
		}
		// class 08 is connection exceptions, 57014 is a cancelled statement
		if strings.HasPrefix(string(pqErr.Code), "08") || pqErr.Code == "57014" {
			return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
		}
		return err
	}

	if isUnavailable(err) {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, redis.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// boundedCall gives every store call its own deadline so a stalled store
// surfaces as ErrStoreUnavailable instead of hanging.
type boundedCall struct {
	timeout time.Duration
}

func (b boundedCall) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}
