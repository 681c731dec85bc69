package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	companyRepo := newPgxCompanyRepository(dbPool)
	customerRepo := newPgxCustomerRepository(dbPool)
	projectRepo := newPgxProjectRepository(dbPool)
	timeEntryRepo := newPgxTimeEntryRepository(dbPool)
	expenseRepo := newPgxExpenseRepository(dbPool)
	documentRepo := newPgxDocumentRepository(dbPool)
	exportRepo := newPgxExportRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)
	integrationTokenRepo := newPgxIntegrationTokenRepository(dbPool)

	return portsrepo.RepositoryProvider{
		UserRepo:             userRepo,
		CompanyRepo:          companyRepo,
		CustomerRepo:         customerRepo,
		ProjectRepo:          projectRepo,
		TimeEntryRepo:        timeEntryRepo,
		ExpenseRepo:          expenseRepo,
		DocumentRepo:         documentRepo,
		ExportRepo:           exportRepo,
		ReportingRepo:        reportingRepo,
		IntegrationTokenRepo: integrationTokenRepo,
	}
}
