package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bkaratas/account-service/internal/api/httpx"
	"github.com/bkaratas/account-service/internal/api/validate"
	"github.com/bkaratas/account-service/internal/middleware"
	"github.com/bkaratas/account-service/internal/models"
	"github.com/bkaratas/account-service/internal/services"
)

type AccountsHandler struct {
	accounts *services.AccountService
}

func NewAccountsHandler(as *services.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: as}
}

func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.FromCtx(r.Context())
	a, err := h.accounts.Create(r.Context(), u.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.FromCtx(r.Context())
	accounts, err := h.accounts.List(r.Context(), u.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	httpx.WriteJSON(w, http.StatusOK, accounts)
}

func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.FromCtx(r.Context())
	a, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"), u.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

type depositReq struct {
	Amount string `json:"amount"`
}

func (h *AccountsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.FromCtx(r.Context())
	var req depositReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	amount, fe := validate.Amount("amount", req.Amount)
	if fe != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", "Invalid deposit amount", validate.Errs{*fe})
		return
	}
	a, err := h.accounts.Deposit(r.Context(), chi.URLParam(r, "id"), u.UserID, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

type transferReq struct {
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type transferResp struct {
	Message  string `json:"message"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

func (h *AccountsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.FromCtx(r.Context())
	var req transferReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if e := validate.Required("receiver", req.Receiver); e != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", e.Msg, validate.Errs{*e})
		return
	}
	amount, fe := validate.Amount("amount", req.Amount)
	if fe != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", "Invalid transfer amount", validate.Errs{*fe})
		return
	}
	res, err := h.accounts.Transfer(r.Context(), chi.URLParam(r, "id"), req.Receiver, u.UserID, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, transferResp{
		Message:  "success",
		Sender:   res.Sender,
		Receiver: res.Receiver,
		Amount:   res.Amount.String(),
	})
}

// writeServiceError maps engine failures to transport statuses: guard
// rejections are 400, missing accounts 404, lost version races 409.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAccountNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Account not found", nil)
	case errors.Is(err, services.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrSameAccount),
		errors.Is(err, services.ErrInvalidSource),
		errors.Is(err, services.ErrInvalidTarget),
		errors.Is(err, services.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
