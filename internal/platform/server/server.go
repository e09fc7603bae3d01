package server

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"txdemo/internal/platform/config"
	"txdemo/internal/platform/server/handler/account"
	"txdemo/internal/platform/server/handler/health"
	"txdemo/internal/platform/server/handler/isolation"
	"txdemo/internal/platform/server/handler/transfer"
)

type Server struct {
	httpAddr string
	engine   *chi.Mux
}

func NewServer(cfg config.Config,
	accounts *account.AccountHandler,
	transfers *transfer.TransferHandler,
	isolations *isolation.IsolationHandler) Server {
	srv := Server{
		engine:   chi.NewRouter(),
		httpAddr: ":" + cfg.ServerPort,
	}
	srv.engine.Use(middleware.Logger)
	srv.registerRoutes(accounts, transfers, isolations)
	return srv
}

func (s *Server) Run() error {
	log.Println("Server Running on:", s.httpAddr)
	return http.ListenAndServe(s.httpAddr, s.engine)
}

// Handler exposes the routed mux, mainly for tests driving the API through
// an httptest server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes(
	accounts *account.AccountHandler,
	transfers *transfer.TransferHandler,
	isolations *isolation.IsolationHandler) {
	s.engine.Get("/health", health.CheckHandler)
	s.engine.Get("/api/accounts/{owner}/balance", accounts.GetBalance)
	s.engine.Get("/api/isolation/non-repeatable", isolations.NonRepeatable)
	s.engine.Get("/api/isolation/phantom", isolations.Phantom)
	s.engine.Post("/api/transfer/jpa", transfers.TransferRepository)
	s.engine.Post("/api/transfer/jdbc-txmgr", transfers.TransferManaged)
	s.engine.Post("/api/transfer/jdbc-manual", transfers.TransferManual)
	s.engine.Post("/api/transfer/jdbc-no-tx", transfers.TransferAutoCommit)
}
