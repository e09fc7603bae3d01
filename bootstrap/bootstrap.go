package bootstrap

import (
	"context"
	"database/sql"

	"go.uber.org/dig"

	"txdemo/internal/application/service"
	"txdemo/internal/domain"
	"txdemo/internal/platform/config"
	"txdemo/internal/platform/repository"
	"txdemo/internal/platform/server"
	"txdemo/internal/platform/server/handler/account"
	"txdemo/internal/platform/server/handler/isolation"
	"txdemo/internal/platform/server/handler/transfer"
)

func Run() error {
	container := dig.New()
	serviceConstructors := []interface{}{
		config.LoadConfig,
		openDatabase,
		repository.NewSQLiteAccountRepository,
		asAccountRepository,
		asManualTransactor,
		service.NewGetBalanceService,
		service.NewSeedAccountsService,
		service.NewRepositoryTransferService,
		service.NewManagedTransferService,
		service.NewManualTransferService,
		service.NewAutoCommitTransferService,
		service.NewIsolationDemoService,
		account.NewAccountHandler,
		transfer.NewTransferHandler,
		isolation.NewIsolationHandler,
		server.NewServer,
	}
	for _, constructor := range serviceConstructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return container.Invoke(func(s server.Server,
		repo *repository.SQLiteAccountRepository,
		seed *service.SeedAccountsService) error {
		ctx := context.Background()
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := seed.Execute(ctx); err != nil {
			return err
		}
		return s.Run()
	})
}

func openDatabase(cfg config.Config) (*sql.DB, error) {
	return repository.OpenDatabase(cfg.DatabasePath)
}

func asAccountRepository(repo *repository.SQLiteAccountRepository) domain.AccountRepository {
	return repo
}

func asManualTransactor(repo *repository.SQLiteAccountRepository) domain.ManualTransactor {
	return repo
}
