package cxc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Directoryofsites/Finaxis-sub003/internal/observability"
	"github.com/Directoryofsites/Finaxis-sub003/internal/platform/httpx"
)

// Handler exposes the receivable endpoints consumed by the statement and
// aging report screens.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler builds Handler instance. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics, validator: validator.New()}
}

// MountRoutes registers CXC routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/units/{unitID}/statement", h.unitStatement)
	r.Post("/units/{unitID}/payments/preview", h.previewPayment)
	r.Get("/aging", h.agingReport)
}

// unitStatement returns the replayed statement for one unit, optionally
// frozen at ?as_of=YYYY-MM-DD.
func (h *Handler) unitStatement(w http.ResponseWriter, r *http.Request) {
	unitID, err := strconv.ParseInt(chi.URLParam(r, "unitID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid unit ID")
		return
	}

	asOf, ok := parseAsOf(r.URL.Query().Get("as_of"))
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "as_of must be YYYY-MM-DD")
		return
	}

	result, err := h.service.UnitStatement(r.Context(), unitID, asOf)
	if err != nil {
		h.metrics.CountReplay(replayOutcome(err))
		h.respondError(w, r, "unit statement", err)
		return
	}
	h.metrics.CountReplay("ok")
	httpx.JSON(w, http.StatusOK, statementResponse(result))
}

// PreviewPaymentRequest is the payment-registration helper input.
type PreviewPaymentRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// previewPayment simulates how a proposed payment would be applied so the
// registration form can default the receivable account.
func (h *Handler) previewPayment(w http.ResponseWriter, r *http.Request) {
	unitID, err := strconv.ParseInt(chi.URLParam(r, "unitID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid unit ID")
		return
	}

	var req PreviewPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be a decimal number")
		return
	}

	preview, err := h.service.PreviewUnitPayment(r.Context(), unitID, amount)
	if err != nil {
		h.respondError(w, r, "preview payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, preview)
}

// agingReport returns the portfolio-wide aging report.
func (h *Handler) agingReport(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseAsOf(r.URL.Query().Get("as_of"))
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "as_of must be YYYY-MM-DD")
		return
	}

	report, err := h.service.PortfolioAging(r.Context(), asOf)
	if err != nil {
		h.respondError(w, r, "aging report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, validation.Reason))
	case errors.Is(err, ErrUnitNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: unit", httpx.ErrNotFound))
	default:
		h.logger.Error(op, slog.Any("error", err), slog.String("path", r.URL.Path))
		httpx.RespondError(w, err)
	}
}

func replayOutcome(err error) string {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return "validation_error"
	}
	return "error"
}

func parseAsOf(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return asOf, true
}

// statementView shapes the replay result for JSON consumers. Warnings ride
// along as soft badges; they never block the numbers.
type statementView struct {
	PendingDebts   []Debt          `json:"pending_debts"`
	Transactions   []Transaction   `json:"transactions"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreditBalance  decimal.Decimal `json:"credit_balance"`
	Snapshot       *Snapshot       `json:"snapshot,omitempty"`
	Warnings       []string        `json:"warnings"`
}

func statementResponse(result *ReplayResult) statementView {
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return statementView{
		PendingDebts:   result.PendingDebts,
		Transactions:   result.Transactions,
		CurrentBalance: result.CurrentBalance,
		CreditBalance:  result.CreditBalance,
		Snapshot:       result.Snapshot,
		Warnings:       warnings,
	}
}
