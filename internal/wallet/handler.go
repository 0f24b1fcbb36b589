package wallet

import (
	"context"
	"net/http"
	"strconv"

	"tutorconnect/internal/api"
	"tutorconnect/internal/apperr"
	"tutorconnect/internal/auth"

	"github.com/gin-gonic/gin"
)

type Service interface {
	Balance(ctx context.Context, userID int) (*Wallet, error)
	Transactions(ctx context.Context, userID, limit, offset int) ([]Transaction, error)
	Deposit(ctx context.Context, userID int, req DepositRequest) (*Wallet, *Transaction, error)
	Withdraw(ctx context.Context, userID int, req WithdrawRequest) (*Wallet, *Transaction, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	w, err := h.service.Balance(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	txs, err := h.service.Transactions(c.Request.Context(), userID, 10, 0)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Wallet: w, Transactions: txs})
}

func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.service.Transactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

func (h *Handler) Deposit(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "Invalid request body")
		return
	}

	w, tx, err := h.service.Deposit(c.Request.Context(), userID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MutationResponse{Wallet: w, Transaction: tx})
}

func (h *Handler) Withdraw(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "Invalid request body")
		return
	}

	w, tx, err := h.service.Withdraw(c.Request.Context(), userID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MutationResponse{Wallet: w, Transaction: tx})
}
