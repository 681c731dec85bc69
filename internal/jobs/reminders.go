package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
)

// PaymentReminderJob mails customers about issued documents that are past
// their due date. It is scheduled via cron from main.
type PaymentReminderJob struct {
	documentRepo portsrepo.DocumentRepositoryWithTx
	customerRepo portsrepo.CustomerRepositoryFacade
	companyRepo  portsrepo.CompanyRepositoryFacade
	mailer       portssvc.Mailer
	logger       *slog.Logger
}

// NewPaymentReminderJob creates a new reminder job.
func NewPaymentReminderJob(
	documentRepo portsrepo.DocumentRepositoryWithTx,
	customerRepo portsrepo.CustomerRepositoryFacade,
	companyRepo portsrepo.CompanyRepositoryFacade,
	mailer portssvc.Mailer,
	logger *slog.Logger,
) *PaymentReminderJob {
	return &PaymentReminderJob{
		documentRepo: documentRepo,
		customerRepo: customerRepo,
		companyRepo:  companyRepo,
		mailer:       mailer,
		logger:       logger,
	}
}

// Run sends one reminder mail per overdue document. A failure for one
// document does not stop the rest of the run.
func (j *PaymentReminderJob) Run(ctx context.Context) {
	now := time.Now().UTC()

	overdue, err := j.documentRepo.FindOverdueDocuments(ctx, now)
	if err != nil {
		j.logger.Error("Failed to list overdue documents for reminders", slog.String("error", err.Error()))
		return
	}
	if len(overdue) == 0 {
		j.logger.Info("No overdue documents, skipping reminder run")
		return
	}

	sent := 0
	for _, doc := range overdue {
		customer, err := j.customerRepo.FindCustomerByID(ctx, doc.CompanyID, doc.CustomerID)
		if err != nil {
			j.logger.Error("Failed to load customer for reminder", slog.String("document_id", doc.DocumentID), slog.String("error", err.Error()))
			continue
		}
		if customer.Email == "" {
			j.logger.Warn("Customer has no email address, skipping reminder", slog.String("document_id", doc.DocumentID), slog.String("customer_id", customer.CustomerID))
			continue
		}

		company, err := j.companyRepo.FindCompanyByID(ctx, doc.CompanyID)
		if err != nil {
			j.logger.Error("Failed to load company for reminder", slog.String("document_id", doc.DocumentID), slog.String("error", err.Error()))
			continue
		}

		number := doc.DocumentID
		if doc.DocumentNumber != nil {
			number = *doc.DocumentNumber
		}
		daysOverdue := 0
		if doc.DueDate != nil {
			daysOverdue = int(now.Sub(*doc.DueDate).Hours() / 24)
		}

		subject := fmt.Sprintf("Payment reminder: invoice %s", number)
		body := fmt.Sprintf(
			"Dear %s,\n\nOur records show that invoice %s over %s %s issued by %s is %d day(s) past due.\n\nPlease arrange payment at your earliest convenience. If the payment has already been made, kindly disregard this message.\n\nBest regards,\n%s",
			customer.Name, number, doc.Total.StringFixed(2), doc.CurrencyCode, company.Name, daysOverdue, company.Name,
		)

		if err := j.mailer.Send(ctx, customer.Email, subject, body, "", nil); err != nil {
			j.logger.Error("Failed to send payment reminder", slog.String("document_id", doc.DocumentID), slog.String("error", err.Error()))
			continue
		}
		sent++
	}

	j.logger.Info("Payment reminder run complete", slog.Int("overdue", len(overdue)), slog.Int("sent", sent))
}
