package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	User             UserSvcFacade
	Company          CompanySvcFacade
	Customer         CustomerSvcFacade
	Project          ProjectSvcFacade
	TimeEntry        TimeEntrySvcFacade
	Expense          ExpenseSvcFacade
	Invoicing        InvoicingSvcFacade
	Document         DocumentSvcFacade
	Export           ExportSvc
	Reporting        ReportingService
	IntegrationToken IntegrationTokenSvc

	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
}
