package services

import (
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	pdfRenderer portssvc.DocumentPDFRenderer,
	workbookRenderer portssvc.ExportWorkbookRenderer,
	mailer portssvc.Mailer,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Company service first since every other service authorizes through it.
	container.User = NewUserService(repos.UserRepo)
	container.Company = NewCompanyService(repos.CompanyRepo, repos.UserRepo)

	authorizer := container.Company.(portssvc.CompanyAuthorizerSvc)

	container.Customer = NewCustomerService(repos.CustomerRepo, repos.CompanyRepo, authorizer)
	container.Project = NewProjectService(repos.ProjectRepo, repos.CustomerRepo, authorizer)
	container.TimeEntry = NewTimeEntryService(repos.TimeEntryRepo, repos.ProjectRepo, authorizer)
	container.Expense = NewExpenseService(repos.ExpenseRepo, repos.ProjectRepo, authorizer)
	container.Invoicing = NewInvoicingService(
		repos.TimeEntryRepo,
		repos.ExpenseRepo,
		repos.CustomerRepo,
		repos.ProjectRepo,
		repos.CompanyRepo,
		repos.DocumentRepo,
		authorizer,
	)
	container.Document = NewDocumentService(repos.DocumentRepo, repos.CustomerRepo, repos.CompanyRepo, pdfRenderer, mailer, authorizer)
	container.Export = NewExportService(repos.ExportRepo, repos.DocumentRepo, repos.ExpenseRepo, workbookRenderer, authorizer)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.ExpenseRepo, WithReportingCompanyAuthorizer(authorizer))
	container.IntegrationToken = NewIntegrationTokenService(repos.IntegrationTokenRepo, container.User)

	container.TokenService = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
