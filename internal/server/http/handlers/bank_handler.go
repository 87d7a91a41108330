package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/withdrawal/internal/domain/errors"
	"github.com/polkiloo/withdrawal/internal/domain/model"
	"github.com/polkiloo/withdrawal/internal/server/http/dto"
)

// BankHandler manages account endpoints.
type BankHandler struct {
	facade BankFacade
}

// NewBankHandler constructs BankHandler.
func NewBankHandler(facade BankFacade) *BankHandler {
	return &BankHandler{facade: facade}
}

// Withdraw handles POST /api/bank/withdraw?accountId=&amount=.
func (h *BankHandler) Withdraw(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Query("accountId"), 10, 64)
	if err != nil {
		writeProblem(c, errInvalidAccountID)
		return
	}

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		writeProblem(c, errInvalidAmountFormat)
		return
	}
	if !model.ValidAmount(amount) {
		writeProblem(c, domainErrors.ErrInvalidAmount)
		return
	}

	key, err := parseIdempotencyKey(c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		writeProblem(c, err)
		return
	}

	msg, err := h.facade.Withdraw(c.Request.Context(), accountID, amount, key)
	if err != nil {
		writeProblem(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WithdrawResponse{Message: msg})
}

// Account handles GET /api/bank/accounts/:id.
func (h *BankHandler) Account(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeProblem(c, errInvalidAccountID)
		return
	}

	account, err := h.facade.Balance(c.Request.Context(), accountID)
	if err != nil {
		writeProblem(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AccountResponse{ID: account.ID, Balance: account.Balance})
}

// Request handles GET /api/bank/withdrawals/:key.
func (h *BankHandler) Request(c *gin.Context) {
	key, err := parseIdempotencyKey(c.Param("key"))
	if err != nil {
		writeProblem(c, err)
		return
	}

	req, err := h.facade.Request(c.Request.Context(), key)
	if err != nil {
		writeProblem(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WithdrawalRequestResponse{
		IdempotencyKey: req.IdempotencyKey,
		AccountID:      req.AccountID,
		Amount:         req.Amount,
		Outcome:        string(req.Outcome),
		Result:         req.Result,
		CreatedAt:      req.CreatedAt,
	})
}
