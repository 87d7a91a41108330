package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/withdrawal/internal/domain/errors"
	"github.com/polkiloo/withdrawal/internal/server/http/dto"
)

// IdempotencyKeyHeader names the header carrying the client idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

var (
	errInvalidAccountID      = domainErrors.Validation("Request.InvalidAccountId", "Account id must be an integer.")
	errInvalidAmountFormat   = domainErrors.Validation("Request.InvalidAmount", "Amount must be a decimal number.")
	errInvalidIdempotencyKey = domainErrors.Validation("Request.InvalidIdempotencyKey", "Idempotency key must be a UUID.")
)

// writeProblem renders err as a problem body. Missing resources map to 404,
// every other outcome to 400.
func writeProblem(c *gin.Context, err error) {
	var typed *domainErrors.Error
	if !errors.As(err, &typed) {
		typed = domainErrors.ErrWithdrawalFailed
	}

	status := http.StatusBadRequest
	if typed.Kind == domainErrors.KindNotFound {
		status = http.StatusNotFound
	}

	c.AbortWithStatusJSON(status, dto.ProblemResponse{
		Status: status,
		Code:   typed.Code,
		Detail: typed.Description,
	})
}

func parseIdempotencyKey(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, domainErrors.ErrIdempotencyKeyRequired
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errInvalidIdempotencyKey
	}
	if key == uuid.Nil {
		return uuid.Nil, domainErrors.ErrIdempotencyKeyRequired
	}
	return key, nil
}
