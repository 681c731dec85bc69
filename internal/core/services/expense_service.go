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
	ErrAmountNotPositive  = errors.New("amount must be positive")
	ErrNotExpenseOwner    = errors.New("only the owner may modify an expense")
	ErrExpenseNotEditable = errors.New("only draft expenses can be edited")
)

// expenseService handles expense capture and its approval flow.
type expenseService struct {
	BaseService
	expenseRepo portsrepo.ExpenseRepositoryFacade
	projectRepo portsrepo.ProjectReader
}

// NewExpenseService creates a new expense service.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, projectRepo portsrepo.ProjectReader, authorizer portssvc.CompanyAuthorizerSvc) portssvc.ExpenseSvcFacade {
	return &expenseService{
		BaseService: BaseService{CompanyAuthorizer: authorizer},
		expenseRepo: expenseRepo,
		projectRepo: projectRepo,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// grossTaxPortion computes the tax contained in a gross amount for a rate.
// The tax amount is fixed at capture time and never recomputed at invoicing.
func grossTaxPortion(amount decimal.Decimal, rate domain.TaxRate) (decimal.Decimal, error) {
	fraction, err := taxation.Fraction(rate)
	if err != nil {
		return decimal.Zero, err
	}
	if fraction.IsZero() {
		return decimal.Zero, nil
	}
	one := decimal.NewFromInt(1)
	return taxation.RoundMoney(amount.Mul(fraction).Div(one.Add(fraction))), nil
}

// CreateExpense records a new draft expense for the creator.
func (s *expenseService) CreateExpense(ctx context.Context, companyID string, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrAmountNotPositive)
	}

	if req.ProjectID != nil {
		if _, err := s.projectRepo.FindProjectByID(ctx, companyID, *req.ProjectID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: project %s not found", apperrors.ErrValidation, *req.ProjectID)
			}
			return nil, fmt.Errorf("failed to validate project: %w", err)
		}
	}

	rate := req.TaxRate
	if rate == "" {
		rate = domain.TaxStandard20
	}
	category := req.Category
	if category == "" {
		category = domain.ExpenseOther
	}
	taxAmount, err := grossTaxPortion(req.Amount, rate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now()
	expense := domain.Expense{
		ExpenseID:      uuid.NewString(),
		CompanyID:      companyID,
		ProjectID:      req.ProjectID,
		UserID:         creatorUserID,
		ExpenseDate:    req.ExpenseDate,
		Amount:         req.Amount,
		TaxRate:        rate,
		TaxAmount:      taxAmount,
		Category:       category,
		Description:    req.Description,
		IsReimbursable: req.IsReimbursable,
		Status:         domain.ExpenseDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense in repository", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.LogInfo(ctx, "Expense created", slog.String("expense_id", expense.ExpenseID))
	return &expense, nil
}

// GetExpenseByID retrieves an expense. Requires READONLY role.
func (s *expenseService) GetExpenseByID(ctx context.Context, companyID, expenseID string, requestingUserID string) (*domain.Expense, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	expense, err := s.expenseRepo.FindExpenseByID(ctx, companyID, expenseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find expense by ID in repository", slog.String("expense_id", expenseID))
		}
		return nil, err
	}
	return expense, nil
}

// ListExpenses retrieves a paginated list of a company's expenses.
func (s *expenseService) ListExpenses(ctx context.Context, companyID string, userID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	expenses, nextToken, err := s.expenseRepo.ListExpensesByCompany(ctx, companyID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expenses from repository", slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return &dto.ListExpensesResponse{
		Expenses:  dto.ToExpenseResponses(expenses),
		NextToken: nextToken,
	}, nil
}

// UpdateExpense updates a draft expense. Only the owner may edit it. The tax
// portion is recomputed when the amount or rate changes.
func (s *expenseService) UpdateExpense(ctx context.Context, companyID, expenseID string, req dto.UpdateExpenseRequest, requestingUserID string) (*domain.Expense, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, companyID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.UserID != requestingUserID {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrForbidden, ErrNotExpenseOwner)
	}
	if expense.Status != domain.ExpenseDraft {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrExpenseNotEditable)
	}

	if req.ProjectID != nil {
		if _, err := s.projectRepo.FindProjectByID(ctx, companyID, *req.ProjectID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: project %s not found", apperrors.ErrValidation, *req.ProjectID)
			}
			return nil, fmt.Errorf("failed to validate project: %w", err)
		}
		expense.ProjectID = req.ProjectID
	}
	if req.ExpenseDate != nil {
		expense.ExpenseDate = *req.ExpenseDate
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrAmountNotPositive)
		}
		expense.Amount = *req.Amount
	}
	if req.TaxRate != nil {
		expense.TaxRate = *req.TaxRate
	}
	if req.Amount != nil || req.TaxRate != nil {
		taxAmount, err := grossTaxPortion(expense.Amount, expense.TaxRate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		expense.TaxAmount = taxAmount
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.IsReimbursable != nil {
		expense.IsReimbursable = *req.IsReimbursable
	}
	expense.LastUpdatedAt = time.Now()
	expense.LastUpdatedBy = requestingUserID

	if err := s.expenseRepo.UpdateExpense(ctx, *expense); err != nil {
		s.LogError(ctx, err, "Failed to update expense in repository", slog.String("expense_id", expenseID))
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes a draft expense. Only the owner may delete it.
func (s *expenseService) DeleteExpense(ctx context.Context, companyID, expenseID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, companyID, domain.RoleMember); err != nil {
		return err
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, companyID, expenseID)
	if err != nil {
		return err
	}
	if expense.UserID != requestingUserID {
		return fmt.Errorf("%w: %v", apperrors.ErrForbidden, ErrNotExpenseOwner)
	}
	if expense.Status != domain.ExpenseDraft {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrExpenseNotEditable)
	}

	if err := s.expenseRepo.DeleteExpense(ctx, companyID, expenseID); err != nil {
		s.LogError(ctx, err, "Failed to delete expense", slog.String("expense_id", expenseID))
		return err
	}
	s.LogInfo(ctx, "Expense deleted", slog.String("expense_id", expenseID))
	return nil
}

// SubmitExpense moves a draft or rejected expense to SUBMITTED. Owner only.
func (s *expenseService) SubmitExpense(ctx context.Context, companyID, expenseID string, requestingUserID string) (*domain.Expense, error) {
	return s.transition(ctx, companyID, expenseID, domain.ExpenseSubmitted, requestingUserID, true)
}

// ApproveExpense moves a submitted expense to APPROVED. Admin only.
func (s *expenseService) ApproveExpense(ctx context.Context, companyID, expenseID string, approverUserID string) (*domain.Expense, error) {
	if err := s.AuthorizeUser(ctx, approverUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.transition(ctx, companyID, expenseID, domain.ExpenseApproved, approverUserID, false)
}

// RejectExpense moves a submitted expense to REJECTED. Admin only.
func (s *expenseService) RejectExpense(ctx context.Context, companyID, expenseID string, approverUserID string) (*domain.Expense, error) {
	if err := s.AuthorizeUser(ctx, approverUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.transition(ctx, companyID, expenseID, domain.ExpenseRejected, approverUserID, false)
}

func (s *expenseService) transition(ctx context.Context, companyID, expenseID string, target domain.ExpenseStatus, actorUserID string, ownerOnly bool) (*domain.Expense, error) {
	if ownerOnly {
		if err := s.AuthorizeUser(ctx, actorUserID, companyID, domain.RoleMember); err != nil {
			return nil, err
		}
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, companyID, expenseID)
	if err != nil {
		return nil, err
	}
	if ownerOnly && expense.UserID != actorUserID {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrForbidden, ErrNotExpenseOwner)
	}
	if !expense.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %v: %s -> %s", apperrors.ErrValidation, ErrInvalidTransition, expense.Status, target)
	}

	now := time.Now()
	if err := s.expenseRepo.UpdateExpenseStatus(ctx, companyID, expenseID, target, actorUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to update expense status", slog.String("expense_id", expenseID), slog.String("target_status", string(target)))
		return nil, err
	}

	expense.Status = target
	expense.LastUpdatedAt = now
	expense.LastUpdatedBy = actorUserID
	s.LogInfo(ctx, "Expense status changed", slog.String("expense_id", expenseID), slog.String("status", string(target)))
	return expense, nil
}
