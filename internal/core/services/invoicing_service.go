package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ostwerk/billable_app/internal/apperrors"
	"github.com/ostwerk/billable_app/internal/core/domain"
	portsrepo "github.com/ostwerk/billable_app/internal/core/ports/repositories"
	portssvc "github.com/ostwerk/billable_app/internal/core/ports/services"
	"github.com/ostwerk/billable_app/internal/dto"
	"github.com/ostwerk/billable_app/internal/utils/taxation"
)

var (
	ErrEntryNotEligible   = errors.New("time entry is not eligible for invoicing")
	ErrExpenseNotEligible = errors.New("expense is not eligible for invoicing")
	ErrWrongCustomer      = errors.New("item does not belong to the invoice customer")
	ErrInvalidGrouping    = errors.New("unknown grouping policy")
)

// invoicingService turns approved unbilled work into draft invoices. It owns
// line grouping, tax resolution and the document aggregate computation; the
// persistence transaction lives in the document repository.
type invoicingService struct {
	BaseService
	timeEntryRepo portsrepo.TimeEntryReader
	expenseRepo   portsrepo.ExpenseReader
	customerRepo  portsrepo.CustomerReader
	projectRepo   portsrepo.ProjectReader
	companyRepo   portsrepo.CompanyReader
	documentRepo  portsrepo.DocumentRepositoryWithTx
}

// NewInvoicingService creates a new invoicing service.
func NewInvoicingService(
	timeEntryRepo portsrepo.TimeEntryReader,
	expenseRepo portsrepo.ExpenseReader,
	customerRepo portsrepo.CustomerReader,
	projectRepo portsrepo.ProjectReader,
	companyRepo portsrepo.CompanyReader,
	documentRepo portsrepo.DocumentRepositoryWithTx,
	authorizer portssvc.CompanyAuthorizerSvc,
) portssvc.InvoicingSvcFacade {
	return &invoicingService{
		BaseService:   BaseService{CompanyAuthorizer: authorizer},
		timeEntryRepo: timeEntryRepo,
		expenseRepo:   expenseRepo,
		customerRepo:  customerRepo,
		projectRepo:   projectRepo,
		companyRepo:   companyRepo,
		documentRepo:  documentRepo,
	}
}

var _ portssvc.InvoicingSvcFacade = (*invoicingService)(nil)

// GetUnbilledTimeEntries retrieves approved, billable, uninvoiced time
// entries, optionally restricted to one customer.
func (s *invoicingService) GetUnbilledTimeEntries(ctx context.Context, companyID string, customerID *string, userID string) ([]domain.TimeEntry, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	entries, err := s.timeEntryRepo.FindUnbilledTimeEntries(ctx, companyID, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch unbilled time entries", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch unbilled time entries: %w", err)
	}
	if entries == nil {
		return []domain.TimeEntry{}, nil
	}
	return entries, nil
}

// GetUnbilledExpenses retrieves approved, reimbursable, unexported expenses,
// optionally restricted to one customer.
func (s *invoicingService) GetUnbilledExpenses(ctx context.Context, companyID string, customerID *string, userID string) ([]domain.Expense, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindUnbilledExpenses(ctx, companyID, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch unbilled expenses", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch unbilled expenses: %w", err)
	}
	if expenses == nil {
		return []domain.Expense{}, nil
	}
	return expenses, nil
}

// monthWindow returns the first and last day of a calendar month.
func monthWindow(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// GetUnbilledItemsForProjectMonth retrieves a project's unbilled work in a
// calendar month together with a value summary.
func (s *invoicingService) GetUnbilledItemsForProjectMonth(ctx context.Context, companyID, projectID string, year, month int, userID string) (*dto.UnbilledItemsResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.FindProjectByID(ctx, companyID, projectID); err != nil {
		return nil, err
	}

	from, to := monthWindow(year, month)
	entries, err := s.timeEntryRepo.FindUnbilledTimeEntriesInRange(ctx, companyID, projectID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch unbilled time entries for month", slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to fetch unbilled time entries: %w", err)
	}
	expenses, err := s.expenseRepo.FindUnbilledExpensesInRange(ctx, companyID, projectID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch unbilled expenses for month", slog.String("project_id", projectID))
		return nil, fmt.Errorf("failed to fetch unbilled expenses: %w", err)
	}

	return &dto.UnbilledItemsResponse{
		TimeEntries: dto.ToTimeEntryResponses(entries),
		Expenses:    dto.ToExpenseResponses(expenses),
		Summary:     summarize(entries, expenses),
	}, nil
}

// summarize computes the month summary shown before invoice creation. It
// stays numerically consistent with what creation would persist, skipping
// per-line tax granularity.
func summarize(entries []domain.TimeEntry, expenses []domain.Expense) dto.MonthSummary {
	totalHours := decimal.Zero
	timeValue := decimal.Zero
	for _, e := range entries {
		totalHours = totalHours.Add(e.Hours)
		timeValue = timeValue.Add(e.Hours.Mul(e.EffectiveRate))
	}
	timeValue = taxation.RoundMoney(timeValue)

	expenseValue := decimal.Zero
	for _, x := range expenses {
		expenseValue = expenseValue.Add(x.Amount)
	}

	return dto.MonthSummary{
		TotalHours:     totalHours,
		TimeValue:      timeValue,
		ExpenseValue:   expenseValue,
		EstimatedTotal: timeValue.Add(expenseValue),
		EntryCount:     len(entries),
		ExpenseCount:   len(expenses),
	}
}

// CreateInvoiceFromEntries builds a draft invoice from the selected time
// entries and expenses and persists it atomically with the entry linking.
func (s *invoicingService) CreateInvoiceFromEntries(ctx context.Context, companyID string, req dto.CreateInvoiceFromEntriesRequest, creatorUserID string) (*dto.GetDocumentResponse, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	customer, entries, expenses, err := s.resolveSelection(ctx, companyID, req)
	if err != nil {
		return nil, err
	}

	return s.createInvoice(ctx, companyID, *customer, entries, expenses, req.GroupBy, req.PaymentTermsDays, req.Notes, creatorUserID)
}

// CreateInvoiceForProjectMonth invoices everything a project accrued in a
// calendar month, resolving the customer from the project.
func (s *invoicingService) CreateInvoiceForProjectMonth(ctx context.Context, companyID string, req dto.CreateInvoiceForProjectMonthRequest, creatorUserID string) (*dto.GetDocumentResponse, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindProjectByID(ctx, companyID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindCustomerByID(ctx, companyID, project.CustomerID)
	if err != nil {
		return nil, err
	}

	from, to := monthWindow(req.Year, req.Month)

	var entries []domain.TimeEntry
	if req.IncludeTime == nil || *req.IncludeTime {
		entries, err = s.timeEntryRepo.FindUnbilledTimeEntriesInRange(ctx, companyID, req.ProjectID, from, to)
		if err != nil {
			s.LogError(ctx, err, "Failed to fetch unbilled time entries for month", slog.String("project_id", req.ProjectID))
			return nil, fmt.Errorf("failed to fetch unbilled time entries: %w", err)
		}
	}

	var expenses []domain.Expense
	if req.IncludeExpenses == nil || *req.IncludeExpenses {
		expenses, err = s.expenseRepo.FindUnbilledExpensesInRange(ctx, companyID, req.ProjectID, from, to)
		if err != nil {
			s.LogError(ctx, err, "Failed to fetch unbilled expenses for month", slog.String("project_id", req.ProjectID))
			return nil, fmt.Errorf("failed to fetch unbilled expenses: %w", err)
		}
	}

	return s.createInvoice(ctx, companyID, *customer, entries, expenses, req.GroupBy, req.PaymentTermsDays, req.Notes, creatorUserID)
}

// PreviewInvoice computes the lines and totals an invoice creation would
// produce without persisting anything.
func (s *invoicingService) PreviewInvoice(ctx context.Context, companyID string, req dto.CreateInvoiceFromEntriesRequest, userID string) (*dto.InvoicePreviewResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	customer, entries, expenses, err := s.resolveSelection(ctx, companyID, req)
	if err != nil {
		return nil, err
	}

	rate := taxation.ResolveCustomerRate(*customer)
	groupBy := req.GroupBy
	if groupBy == "" {
		groupBy = domain.GroupByProject
	}
	lines, err := buildLines(entries, expenses, groupBy, rate)
	if err != nil {
		return nil, err
	}
	subtotal, taxAmount, total, breakdown := aggregateLines(lines)

	breakdownResp := make(map[string]decimal.Decimal, len(breakdown))
	for r, amount := range breakdown {
		breakdownResp[string(r)] = amount
	}

	return &dto.InvoicePreviewResponse{
		CustomerID:   customer.CustomerID,
		CurrencyCode: customer.CurrencyCode,
		Lines:        dto.ToDocumentLineResponses(lines),
		Subtotal:     subtotal,
		TaxAmount:    taxAmount,
		Total:        total,
		TaxBreakdown: breakdownResp,
	}, nil
}

// resolveSelection loads the customer and the explicitly selected time
// entries and expenses, verifying every row is eligible and belongs to the
// customer. Missing or ineligible rows abort the operation; the aggregator
// never silently drops part of a selection.
func (s *invoicingService) resolveSelection(ctx context.Context, companyID string, req dto.CreateInvoiceFromEntriesRequest) (*domain.Customer, []domain.TimeEntry, []domain.Expense, error) {
	customer, err := s.customerRepo.FindCustomerByID(ctx, companyID, req.CustomerID)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(req.TimeEntryIDs) == 0 && len(req.ExpenseIDs) == 0 {
		return nil, nil, nil, apperrors.ErrNothingToInvoice
	}

	entries, err := s.timeEntryRepo.FindTimeEntriesByIDs(ctx, companyID, req.TimeEntryIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch selected time entries", slog.String("company_id", companyID))
		return nil, nil, nil, fmt.Errorf("failed to fetch selected time entries: %w", err)
	}
	if len(entries) != len(req.TimeEntryIDs) {
		return nil, nil, nil, fmt.Errorf("%w: one or more selected time entries", apperrors.ErrNotFound)
	}
	if err := s.checkEntriesEligible(ctx, companyID, entries, customer.CustomerID); err != nil {
		return nil, nil, nil, err
	}

	expenses, err := s.expenseRepo.FindExpensesByIDs(ctx, companyID, req.ExpenseIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch selected expenses", slog.String("company_id", companyID))
		return nil, nil, nil, fmt.Errorf("failed to fetch selected expenses: %w", err)
	}
	if len(expenses) != len(req.ExpenseIDs) {
		return nil, nil, nil, fmt.Errorf("%w: one or more selected expenses", apperrors.ErrNotFound)
	}
	if err := s.checkExpensesEligible(ctx, companyID, expenses, customer.CustomerID); err != nil {
		return nil, nil, nil, err
	}

	return customer, entries, expenses, nil
}

func (s *invoicingService) checkEntriesEligible(ctx context.Context, companyID string, entries []domain.TimeEntry, customerID string) error {
	// The by-IDs fetch joins names but not the customer ID, so project
	// ownership is verified once per distinct project.
	projectCustomer := make(map[string]string)
	for _, e := range entries {
		if e.Status != domain.TimeEntryApproved || !e.IsBillable || e.DocumentID != nil {
			return fmt.Errorf("%w: %v: %s", apperrors.ErrValidation, ErrEntryNotEligible, e.TimeEntryID)
		}
		custID, ok := projectCustomer[e.ProjectID]
		if !ok {
			project, err := s.projectRepo.FindProjectByID(ctx, companyID, e.ProjectID)
			if err != nil {
				return fmt.Errorf("failed to resolve project %s: %w", e.ProjectID, err)
			}
			custID = project.CustomerID
			projectCustomer[e.ProjectID] = custID
		}
		if custID != customerID {
			return fmt.Errorf("%w: %v: time entry %s", apperrors.ErrValidation, ErrWrongCustomer, e.TimeEntryID)
		}
	}
	return nil
}

func (s *invoicingService) checkExpensesEligible(ctx context.Context, companyID string, expenses []domain.Expense, customerID string) error {
	projectCustomer := make(map[string]string)
	for _, x := range expenses {
		if x.Status != domain.ExpenseApproved || !x.IsReimbursable || x.ExportID != nil {
			return fmt.Errorf("%w: %v: %s", apperrors.ErrValidation, ErrExpenseNotEligible, x.ExpenseID)
		}
		if x.ProjectID == nil {
			continue // company-level expense, no customer binding to check
		}
		custID, ok := projectCustomer[*x.ProjectID]
		if !ok {
			project, err := s.projectRepo.FindProjectByID(ctx, companyID, *x.ProjectID)
			if err != nil {
				return fmt.Errorf("failed to resolve project %s: %w", *x.ProjectID, err)
			}
			custID = project.CustomerID
			projectCustomer[*x.ProjectID] = custID
		}
		if custID != customerID {
			return fmt.Errorf("%w: %v: expense %s", apperrors.ErrValidation, ErrWrongCustomer, x.ExpenseID)
		}
	}
	return nil
}

// createInvoice builds the lines, computes the document aggregates and
// persists everything in one transaction.
func (s *invoicingService) createInvoice(ctx context.Context, companyID string, customer domain.Customer, entries []domain.TimeEntry, expenses []domain.Expense, groupBy domain.GroupingPolicy, paymentTermsDays *int, notes string, creatorUserID string) (*dto.GetDocumentResponse, error) {
	if len(entries) == 0 && len(expenses) == 0 {
		return nil, apperrors.ErrNothingToInvoice
	}
	if groupBy == "" {
		groupBy = domain.GroupByProject
	}
	if !groupBy.IsValid() {
		return nil, fmt.Errorf("%w: %v: %s", apperrors.ErrValidation, ErrInvalidGrouping, groupBy)
	}

	rate := taxation.ResolveCustomerRate(customer)
	lines, err := buildLines(entries, expenses, groupBy, rate)
	if err != nil {
		return nil, err
	}
	subtotal, taxAmount, total, breakdown := aggregateLines(lines)

	currency := customer.CurrencyCode
	if currency == "" {
		company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve company currency: %w", err)
		}
		currency = company.DefaultCurrencyCode
	}
	terms := customer.PaymentTermsDays
	if paymentTermsDays != nil {
		terms = *paymentTermsDays
	}

	now := time.Now()
	document := domain.Document{
		DocumentID:       uuid.NewString(),
		CompanyID:        companyID,
		CustomerID:       customer.CustomerID,
		ProjectID:        commonProjectID(lines),
		DocumentType:     domain.DocumentInvoice,
		Status:           domain.DocumentDraft,
		Subtotal:         subtotal,
		TaxAmount:        taxAmount,
		Total:            total,
		TaxBreakdown:     breakdown,
		CurrencyCode:     currency,
		PaymentTermsDays: terms,
		Notes:            notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	for i := range lines {
		lines[i].DocumentID = document.DocumentID
	}

	timeEntryIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		timeEntryIDs = append(timeEntryIDs, e.TimeEntryID)
	}

	if err := s.documentRepo.SaveDocument(ctx, document, lines, timeEntryIDs); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.LogInfo(ctx, "Invoice creation lost a race for a time entry", slog.String("company_id", companyID), slog.String("customer_id", customer.CustomerID))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to persist invoice", slog.String("company_id", companyID), slog.String("customer_id", customer.CustomerID))
		return nil, fmt.Errorf("failed to persist invoice: %w", err)
	}

	s.LogInfo(ctx, "Draft invoice created",
		slog.String("document_id", document.DocumentID),
		slog.String("customer_id", customer.CustomerID),
		slog.Int("line_count", len(lines)),
		slog.String("total", total.String()))

	return &dto.GetDocumentResponse{
		Document: dto.ToDocumentResponse(&document),
		Lines:    dto.ToDocumentLineResponses(lines),
	}, nil
}

// buildLines folds the selected work into document lines. Time lines all
// carry the single customer-resolved rate; expense lines keep their stored
// tax, never re-taxed. Each line references the consumed source rows.
func buildLines(entries []domain.TimeEntry, expenses []domain.Expense, groupBy domain.GroupingPolicy, rate domain.TaxRate) ([]domain.DocumentLine, error) {
	var lines []domain.DocumentLine
	var err error

	switch groupBy {
	case domain.GroupByProject, domain.GroupBySummary:
		lines, err = buildGroupedTimeLines(entries, groupBy, rate)
	case domain.GroupByEntry:
		lines, err = buildPerEntryTimeLines(entries, rate)
	default:
		return nil, fmt.Errorf("%w: %v: %s", apperrors.ErrValidation, ErrInvalidGrouping, groupBy)
	}
	if err != nil {
		return nil, err
	}

	for _, x := range expenses {
		line, err := buildExpenseLine(x)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	for i := range lines {
		lines[i].LineNumber = i + 1
	}
	return lines, nil
}

// buildGroupedTimeLines emits one line per distinct project, preserving the
// order in which projects first appear in the selection. The unit price is
// the hour-weighted average of the entry rates; the subtotal is computed
// from the unrounded time value so the weighting introduces no drift.
func buildGroupedTimeLines(entries []domain.TimeEntry, groupBy domain.GroupingPolicy, rate domain.TaxRate) ([]domain.DocumentLine, error) {
	type group struct {
		projectID   string
		projectName string
		hours       decimal.Decimal
		value       decimal.Decimal
		entryIDs    []string
	}
	var order []string
	groups := make(map[string]*group)

	for _, e := range entries {
		g, ok := groups[e.ProjectID]
		if !ok {
			g = &group{projectID: e.ProjectID, projectName: e.ProjectName, hours: decimal.Zero, value: decimal.Zero}
			groups[e.ProjectID] = g
			order = append(order, e.ProjectID)
		}
		g.hours = g.hours.Add(e.Hours)
		g.value = g.value.Add(e.Hours.Mul(e.EffectiveRate))
		g.entryIDs = append(g.entryIDs, e.TimeEntryID)
	}

	fraction, err := taxation.Fraction(rate)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.DocumentLine, 0, len(order))
	for _, projectID := range order {
		g := groups[projectID]

		unitPrice := decimal.Zero
		if g.hours.IsPositive() {
			unitPrice = g.value.Div(g.hours)
		}
		subtotal := taxation.RoundMoney(g.value)
		tax := taxation.RoundMoney(subtotal.Mul(fraction))

		description := fmt.Sprintf("%s (%s hours)", g.projectName, g.hours.String())
		if groupBy == domain.GroupBySummary {
			description = "Professional services"
		}

		pid := g.projectID
		lines = append(lines, domain.DocumentLine{
			LineID:       uuid.NewString(),
			Description:  description,
			Quantity:     g.hours,
			Unit:         "h",
			UnitPrice:    unitPrice,
			TaxRate:      rate,
			Subtotal:     subtotal,
			TaxAmount:    tax,
			Total:        subtotal.Add(tax),
			TimeEntryIDs: g.entryIDs,
			ProjectID:    &pid,
		})
	}
	return lines, nil
}

// buildPerEntryTimeLines emits one line per individual time entry.
func buildPerEntryTimeLines(entries []domain.TimeEntry, rate domain.TaxRate) ([]domain.DocumentLine, error) {
	lines := make([]domain.DocumentLine, 0, len(entries))
	for _, e := range entries {
		subtotal, tax, total, err := taxation.LineAmounts(e.Hours, e.EffectiveRate, rate)
		if err != nil {
			return nil, err
		}

		description := e.Description
		if description == "" {
			description = e.ProjectName
		}
		description = fmt.Sprintf("%s: %s", e.EntryDate.Format("2006-01-02"), description)

		pid := e.ProjectID
		lines = append(lines, domain.DocumentLine{
			LineID:       uuid.NewString(),
			Description:  description,
			Quantity:     e.Hours,
			Unit:         "h",
			UnitPrice:    e.EffectiveRate,
			TaxRate:      rate,
			Subtotal:     subtotal,
			TaxAmount:    tax,
			Total:        total,
			TimeEntryIDs: []string{e.TimeEntryID},
			ProjectID:    &pid,
		})
	}
	return lines, nil
}

// buildExpenseLine emits a line for one expense. The gross amount splits
// into the stored tax portion and a net subtotal; nothing is recomputed.
func buildExpenseLine(x domain.Expense) (domain.DocumentLine, error) {
	subtotal := x.Amount.Sub(x.TaxAmount)

	description := x.Description
	if description == "" {
		description = string(x.Category)
	}
	description = fmt.Sprintf("Expense %s: %s", x.ExpenseDate.Format("2006-01-02"), description)

	return domain.DocumentLine{
		LineID:      uuid.NewString(),
		Description: description,
		Quantity:    decimal.NewFromInt(1),
		Unit:        "pcs",
		UnitPrice:   subtotal,
		TaxRate:     x.TaxRate,
		Subtotal:    subtotal,
		TaxAmount:   x.TaxAmount,
		Total:       x.Amount,
		ExpenseIDs:  []string{x.ExpenseID},
		ProjectID:   x.ProjectID,
	}, nil
}

// aggregateLines computes the document totals and the per-rate tax
// breakdown. Rates contributing zero tax are omitted from the breakdown.
func aggregateLines(lines []domain.DocumentLine) (subtotal, taxAmount, total decimal.Decimal, breakdown map[domain.TaxRate]decimal.Decimal) {
	subtotal = decimal.Zero
	taxAmount = decimal.Zero
	breakdown = make(map[domain.TaxRate]decimal.Decimal)

	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
		taxAmount = taxAmount.Add(l.TaxAmount)
		if !l.TaxAmount.IsZero() {
			breakdown[l.TaxRate] = breakdown[l.TaxRate].Add(l.TaxAmount)
		}
	}
	total = subtotal.Add(taxAmount)
	return subtotal, taxAmount, total, breakdown
}

// commonProjectID returns the shared project reference when every line
// points at the same non-nil project, otherwise nil.
func commonProjectID(lines []domain.DocumentLine) *string {
	var common *string
	for i, l := range lines {
		if l.ProjectID == nil {
			return nil
		}
		if i == 0 {
			common = l.ProjectID
			continue
		}
		if *l.ProjectID != *common {
			return nil
		}
	}
	return common
}
