package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"txdemo/internal/application/service"
	"txdemo/internal/domain"
)

// executor is the contract every transfer variant satisfies.
type executor interface {
	Execute(ctx context.Context, cmd service.TransferCommand) error
}

type TransferHandler struct {
	repository executor
	managed    executor
	manual     executor
	autoCommit executor
}

func NewTransferHandler(
	repository *service.RepositoryTransferService,
	managed *service.ManagedTransferService,
	manual *service.ManualTransferService,
	autoCommit *service.AutoCommitTransferService,
) *TransferHandler {
	return &TransferHandler{
		repository: repository,
		managed:    managed,
		manual:     manual,
		autoCommit: autoCommit,
	}
}

func (h *TransferHandler) TransferRepository(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.repository)
}

func (h *TransferHandler) TransferManaged(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.managed)
}

func (h *TransferHandler) TransferManual(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.manual)
}

func (h *TransferHandler) TransferAutoCommit(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.autoCommit)
}

func (h *TransferHandler) run(w http.ResponseWriter, r *http.Request, exec executor) {
	cmd, err := parseCommand(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := exec.Execute(r.Context(), cmd); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseCommand(r *http.Request) (service.TransferCommand, error) {
	query := r.URL.Query()
	amount, err := decimal.NewFromString(query.Get("amount"))
	if err != nil {
		return service.TransferCommand{}, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, query.Get("amount"))
	}
	failMidway := false
	if raw := query.Get("failMidway"); raw != "" {
		failMidway, err = strconv.ParseBool(raw)
		if err != nil {
			return service.TransferCommand{}, fmt.Errorf("invalid failMidway value: %q", raw)
		}
	}
	return service.TransferCommand{
		From:       query.Get("from"),
		To:         query.Get("to"),
		Amount:     amount,
		FailMidway: failMidway,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}
