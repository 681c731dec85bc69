package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	UserRepo             UserRepositoryFacade
	CompanyRepo          CompanyRepositoryFacade
	CustomerRepo         CustomerRepositoryFacade
	ProjectRepo          ProjectRepositoryFacade
	TimeEntryRepo        TimeEntryRepositoryFacade
	ExpenseRepo          ExpenseRepositoryFacade
	DocumentRepo         DocumentRepositoryWithTx
	ExportRepo           ExportRepositoryFacade
	ReportingRepo        ReportingRepository
	IntegrationTokenRepo IntegrationTokenRepository
}
