package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
)

type errorKind struct {
	err    error
	status int
	code   string
}

// errorKinds 依序比對，第一個 errors.Is 成立的決定回應
var errorKinds = []errorKind{
	{domain.ErrAccountNotFound, http.StatusNotFound, "account_not_found"},
	{usecase.ErrSnapshotNotFound, http.StatusNotFound, "snapshot_not_found"},
	{domain.ErrAccountClosed, http.StatusConflict, "account_closed"},
	{domain.ErrNonZeroBalance, http.StatusConflict, "non_zero_balance"},
	{domain.ErrSystemAccount, http.StatusConflict, "system_account"},
	{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds"},
	{domain.ErrBalanceOverflow, http.StatusUnprocessableEntity, "balance_overflow"},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domain.ErrSelfTransfer, http.StatusBadRequest, "self_transfer"},
	{domain.ErrEmptyTransaction, http.StatusBadRequest, "empty_transaction"},
	{domain.ErrUnbalancedTransaction, http.StatusBadRequest, "unbalanced_transaction"},
	{domain.ErrInvalidCurrency, http.StatusBadRequest, "invalid_currency"},
	{domain.ErrMalformedSnapshot, http.StatusBadRequest, "malformed_snapshot"},
	{domain.ErrIDOverflow, http.StatusInsufficientStorage, "account_id_exhausted"},
	{domain.ErrTxIDOverflow, http.StatusInsufficientStorage, "transaction_id_exhausted"},
	{usecase.ErrSnapshotStoreNotConfigured, http.StatusServiceUnavailable, "snapshot_store_not_configured"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
}

// toErrorResponse 把錯誤轉成 HTTP 狀態碼與回應內容
func toErrorResponse(err error) (int, errorResponse) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = "failed on '" + fe.Tag() + "'"
		}
		return http.StatusBadRequest, errorResponse{
			Code:    "validation_failed",
			Message: "request validation failed",
			Details: details,
		}
	}

	status, code := http.StatusInternalServerError, "internal"
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			status, code = k.status, k.code
			break
		}
	}
	return status, errorResponse{
		Code:    code,
		Message: err.Error(),
		Details: errorDetails(err),
	}
}

func errorDetails(err error) map[string]any {
	var accErr *domain.AccountError
	if errors.As(err, &accErr) {
		details := map[string]any{"account_id": accErr.AccountID}
		if errors.Is(accErr.Kind, domain.ErrInsufficientFunds) {
			details["balance"] = accErr.Balance
			details["amount"] = accErr.Amount
		}
		if errors.Is(accErr.Kind, domain.ErrNonZeroBalance) {
			details["balance"] = accErr.Balance
		}
		return details
	}
	var unbalanced *domain.UnbalancedError
	if errors.As(err, &unbalanced) {
		return map[string]any{
			"debit_sum":  unbalanced.DebitSum,
			"credit_sum": unbalanced.CreditSum,
		}
	}
	return nil
}
