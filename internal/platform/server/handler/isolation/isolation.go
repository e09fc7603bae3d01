package isolation

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"txdemo/internal/application/service"
	"txdemo/internal/domain"
)

type IsolationHandler struct {
	demoService *service.IsolationDemoService
}

func NewIsolationHandler(demoService *service.IsolationDemoService) *IsolationHandler {
	return &IsolationHandler{demoService: demoService}
}

type NonRepeatableResponse struct {
	Isolation  string `json:"isolation"`
	FirstRead  string `json:"firstRead"`
	SecondRead string `json:"secondRead"`
	Anomaly    bool   `json:"anomaly"`
	Note       string `json:"note"`
}

func (h *IsolationHandler) NonRepeatable(w http.ResponseWriter, r *http.Request) {
	level, err := domain.ParseIsolationLevel(queryOrDefault(r, "level", "READ_COMMITTED"))
	if err != nil {
		writeError(w, err)
		return
	}
	delta, err := decimal.NewFromString(queryOrDefault(r, "delta", "5.00"))
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.demoService.NonRepeatableRead(r.Context(), service.NonRepeatableReadQuery{
		Owner: queryOrDefault(r, "owner", "alice"),
		Delta: delta,
		Level: level,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NonRepeatableResponse{
		Isolation:  result.Isolation.String(),
		FirstRead:  result.FirstRead.StringFixed(2),
		SecondRead: result.SecondRead.StringFixed(2),
		Anomaly:    result.Anomaly,
		Note:       "anomaly=true indicates a non-repeatable read occurred",
	})
}

type PhantomResponse struct {
	Isolation   string `json:"isolation"`
	FirstCount  int    `json:"firstCount"`
	SecondCount int    `json:"secondCount"`
	Anomaly     bool   `json:"anomaly"`
	Note        string `json:"note"`
}

func (h *IsolationHandler) Phantom(w http.ResponseWriter, r *http.Request) {
	level, err := domain.ParseIsolationLevel(queryOrDefault(r, "level", "READ_COMMITTED"))
	if err != nil {
		writeError(w, err)
		return
	}
	threshold, err := decimal.NewFromString(queryOrDefault(r, "threshold", "50.00"))
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.demoService.PhantomRead(r.Context(), service.PhantomReadQuery{
		Threshold: threshold,
		Level:     level,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PhantomResponse{
		Isolation:   result.Isolation.String(),
		FirstCount:  result.FirstCount,
		SecondCount: result.SecondCount,
		Anomaly:     result.Anomaly,
		Note:        "anomaly=true indicates a phantom read (row count changed during transaction)",
	})
}

func queryOrDefault(r *http.Request, key, fallback string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}
