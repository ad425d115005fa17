package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

// maxBodyBytes 請求 body 上限
const maxBodyBytes = 1 << 20

// Handler REST 介面，所有操作都委派給 CoreUseCase
type Handler struct {
	core     *usecase.CoreUseCase
	validate *validator.Validate
	log      logrus.FieldLogger
}

func NewHandler(core *usecase.CoreUseCase, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		core:     core,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	currency := domain.DefaultCurrency
	if req.Currency != "" {
		c, err := domain.ParseCurrency(req.Currency)
		if err != nil {
			h.writeError(w, err)
			return
		}
		currency = c
	}
	id, err := h.core.CreateAccount(r.Context(), req.Owner, req.Initial, currency)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, createAccountResponse{ID: id, Currency: currency})
}

// ListAccounts GET /accounts?owner=
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.core.ListAccounts(r.Context(), r.URL.Query().Get("owner")))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountParam(w, r)
	if !ok {
		return
	}
	acc, err := h.core.GetAccount(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, acc)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountParam(w, r)
	if !ok {
		return
	}
	acc, err := h.core.GetAccount(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balanceResponse{
		ID:        acc.ID,
		Balance:   acc.Balance,
		Currency:  acc.Currency,
		Formatted: acc.Currency.Format(acc.Balance),
	})
}

func (h *Handler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountParam(w, r)
	if !ok {
		return
	}
	if err := h.core.CloseAccount(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !h.decode(w, r, &req) {
		return
	}
	txID, err := h.core.Deposit(r.Context(), *req.ID, req.Amount, req.Description)
	h.writeTx(w, txID, err)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !h.decode(w, r, &req) {
		return
	}
	txID, err := h.core.Withdraw(r.Context(), *req.ID, req.Amount, req.Description)
	h.writeTx(w, txID, err)
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	txID, err := h.core.Transfer(r.Context(), *req.From, *req.To, req.Amount, req.Description)
	h.writeTx(w, txID, err)
}

// RecordTransaction POST /transactions 多分錄交易
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if !h.decode(w, r, &req) {
		return
	}
	entries := make([]domain.TransactionEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = domain.TransactionEntry{AccountID: *e.AccountID, Debit: e.Debit, Credit: e.Credit}
	}
	txID, err := h.core.RecordTransaction(r.Context(), req.Description, entries)
	h.writeTx(w, txID, err)
}

// ListTransactions GET /transactions?account=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter *domain.AccountID
	if raw := r.URL.Query().Get("account"); raw != "" {
		id, err := parseAccountID(raw)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_account_id", Message: err.Error()})
			return
		}
		filter = &id
	}
	h.writeJSON(w, http.StatusOK, h.core.ListTransactions(r.Context(), filter))
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report := h.core.Report(r.Context())
	resp := reportResponse{TotalAssets: report.TotalAssets}
	if acc := report.Richest; acc != nil {
		label := fmt.Sprintf("%d (%s)", acc.ID, acc.Owner)
		resp.RichestAccount = &label
		resp.RichestBalance = &acc.Balance
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if !h.decode(w, r, &req) {
		return
	}
	key := req.key()
	n, err := h.core.Save(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshotResponse{Key: key, Bytes: n, Message: "saved ledger snapshot " + key})
}

func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if !h.decode(w, r, &req) {
		return
	}
	key := req.key()
	if err := h.core.Load(r.Context(), key); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snapshotResponse{Key: key, Message: "loaded ledger snapshot " + key})
}

func (req snapshotRequest) key() string {
	switch {
	case req.Key != "":
		return req.Key
	case req.Path != "":
		return filepath.Base(req.Path)
	default:
		return usecase.DefaultSnapshotKey
	}
}

func (h *Handler) writeTx(w http.ResponseWriter, txID domain.TransactionID, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, txResponse{TxID: txID})
}

// decode 解析並驗證 JSON body，失敗時已寫入回應
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	// 空 body 視為空物件，交給 validator 判斷必填欄位
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_json", Message: err.Error()})
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		h.writeError(w, err)
		return false
	}
	return true
}

func (h *Handler) accountParam(w http.ResponseWriter, r *http.Request) (domain.AccountID, bool) {
	id, err := parseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_account_id", Message: err.Error()})
		return 0, false
	}
	return id, true
}

func parseAccountID(raw string) (domain.AccountID, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q", raw)
	}
	return domain.AccountID(id), nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, body := toErrorResponse(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	h.writeJSON(w, status, body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Warn("write response")
	}
}
