package account

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"txdemo/internal/application/service"
)

type AccountHandler struct {
	balanceService *service.GetBalanceService
}

type BalanceResponse struct {
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
}

func NewAccountHandler(balanceService *service.GetBalanceService) *AccountHandler {
	return &AccountHandler{balanceService: balanceService}
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	balance, err := h.balanceService.Execute(r.Context(), owner)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{
		Owner:   owner,
		Balance: balance.StringFixed(2),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
