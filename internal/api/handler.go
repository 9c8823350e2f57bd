package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cash-change/internal/calculator"
	"github.com/eugenenazirov/cash-change/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxTransactionsLimit = 1000

// Handler wires calculator and transaction history dependencies into HTTP handlers.
type Handler struct {
	calculator calculator.Calculator
	history    storage.History
	logger     *zap.Logger

	clock func() time.Time
	newID func() string
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithIDGenerator overrides how transaction IDs are generated.
func WithIDGenerator(gen func() string) HandlerOption {
	return func(h *Handler) {
		h.newID = gen
	}
}

// WithLogger attaches a logger for per-calculation debug output.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(calc calculator.Calculator, history storage.History, opts ...HandlerOption) *Handler {
	h := &Handler{
		calculator: calc,
		history:    history,
		logger:     zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
		newID: func() string {
			return ulid.Make().String()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDenominations(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, denominationsResponse{Denominations: calculator.Denominations()})
}

func (h *Handler) handleChange(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if req.TotalPrice == nil || req.CashInserted == nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "totalPrice and cashInserted are required")
		return
	}
	price, cash := *req.TotalPrice, *req.CashInserted

	start := time.Now()
	result, calcErr := h.calculator.CalculateChange(price, cash)
	elapsed := time.Since(start)

	if calcErr != nil {
		switch {
		case errors.Is(calcErr, calculator.ErrInsufficientFunds):
			shortfall := price - cash
			if math.IsInf(shortfall, 0) || math.IsNaN(shortfall) {
				writeError(w, http.StatusUnprocessableEntity, "Insufficient funds", calcErr.Error())
				return
			}
			suggestion := fmt.Sprintf("Insert at least %s more", formatAmount(shortfall))
			writeError(w, http.StatusUnprocessableEntity, "Insufficient funds", calcErr.Error(), suggestion)
		case errors.Is(calcErr, calculator.ErrInvalidTotalPrice):
			writeError(w, http.StatusBadRequest, "Invalid total price", calcErr.Error())
		case errors.Is(calcErr, calculator.ErrNonIntegerArgument):
			writeError(w, http.StatusBadRequest, "Invalid amount", calcErr.Error())
		default:
			writeInternalError(w, calcErr)
		}
		return
	}

	tx := storage.Transaction{
		ID:           h.newID(),
		TotalPrice:   int64(price),
		CashInserted: int64(cash),
		Status:       result.Status,
		Change:       result.Change,
		CreatedAt:    h.clock(),
	}
	if err := h.history.Add(tx); err != nil {
		writeInternalError(w, err)
		return
	}

	h.logger.Debug("change calculated",
		zap.String("transaction_id", tx.ID),
		zap.Int64("total_price", tx.TotalPrice),
		zap.Int64("cash_inserted", tx.CashInserted),
		zap.String("status", string(result.Status.Code)),
		zap.Int64("pieces", result.Change.Pieces()),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)
	if !result.Status.Succeeded() {
		h.logger.Warn("change not fully decomposed",
			zap.String("transaction_id", tx.ID),
			zap.Int64("leftover", tx.CashInserted-tx.TotalPrice-result.Change.Total()),
		)
	}

	resp := changeResponse{
		ID:                tx.ID,
		TotalPrice:        tx.TotalPrice,
		CashInserted:      tx.CashInserted,
		Status:            result.Status,
		Change:            result.Change,
		TotalChange:       result.Change.Total(),
		TotalPieces:       result.Change.Pieces(),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 || value > maxTransactionsLimit {
			writeError(w, http.StatusBadRequest, "Invalid request",
				fmt.Sprintf("limit must be an integer between 1 and %d", maxTransactionsLimit))
			return
		}
		limit = value
	}

	txs, err := h.history.List(limit)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionsResponse{
		Transactions: txs,
		Count:        len(txs),
	})
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type changeRequest struct {
	TotalPrice   *float64 `json:"totalPrice"`
	CashInserted *float64 `json:"cashInserted"`
}

type changeResponse struct {
	ID                string               `json:"id"`
	TotalPrice        int64                `json:"totalPrice"`
	CashInserted      int64                `json:"cashInserted"`
	Status            calculator.Status    `json:"status"`
	Change            calculator.Breakdown `json:"change"`
	TotalChange       int64                `json:"totalChange"`
	TotalPieces       int64                `json:"totalPieces"`
	CalculationTimeMs int64                `json:"calculationTimeMs"`
}

type denominationsResponse struct {
	Denominations []int64 `json:"denominations"`
}

type transactionsResponse struct {
	Transactions []storage.Transaction `json:"transactions"`
	Count        int                   `json:"count"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
