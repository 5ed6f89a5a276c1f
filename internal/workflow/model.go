package workflow

import (
	"strings"
	"time"

	"institute-system/internal/entities"
	"institute-system/pkg/constants"
	apperrors "institute-system/pkg/errors"
)

// Actor — кто выполняет действие. Передаётся явным аргументом: движок
// не читает сессию из контекста, чтобы ядро тестировалось без моков.
type Actor struct {
	ID   string
	Name string
	Role entities.Role
}

// CreationInput — данные новой заявки от заявителя.
type CreationInput struct {
	InstituteID   uint64
	Type          entities.RequestType
	Title         string
	Description   string
	Category      string
	Priority      string
	Quantity      *int
	EstimatedCost *float64
	Reason        string
}

// ValidateCreation проверяет входные данные и собирает полностью
// заполненную заявку. Нарушения собираются ВСЕ сразу, а не до первого.
// Заявитель — flow[0], поэтому первым согласующим становится flow[1].
func ValidateCreation(input CreationInput, requester Actor, id string, now time.Time) (*entities.Request, error) {
	policy, err := PolicyFor(input.Type)
	if err != nil {
		return nil, err
	}

	verr := apperrors.NewValidationError()

	if strings.TrimSpace(input.Title) == "" {
		verr.Add("title", "заполните название")
	}
	if strings.TrimSpace(input.Description) == "" {
		verr.Add("description", "заполните описание")
	}
	if strings.TrimSpace(input.Category) == "" {
		verr.Add("category", "заполните категорию")
	}
	if !constants.IsAllowedPriority(input.Priority) {
		verr.Add("priority", "приоритет должен быть одним из: low, medium, high, urgent")
	}
	if input.Quantity != nil && *input.Quantity <= 0 {
		verr.Add("quantity", "количество должно быть больше нуля")
	}
	if input.EstimatedCost != nil && *input.EstimatedCost < 0 {
		verr.Add("estimatedCost", "стоимость не может быть отрицательной")
	}
	if len(policy.Roles) >= 1 && requester.Role != policy.Roles[0] {
		verr.Add("role", "заявку этого типа подаёт роль "+string(policy.Roles[0]))
	}

	if verr.HasViolations() {
		return nil, verr
	}

	flow := append([]entities.Role(nil), policy.Roles...)

	return &entities.Request{
		ID:            id,
		InstituteID:   input.InstituteID,
		Type:          input.Type,
		Status:        entities.Status{Outcome: entities.OutcomePending, Suffixed: policy.Suffixed},
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Category:      strings.TrimSpace(input.Category),
		Priority:      input.Priority,
		Quantity:      input.Quantity,
		EstimatedCost: input.EstimatedCost,
		Reason:        strings.TrimSpace(input.Reason),
		CreatedBy:     requester.ID,
		CreatedByName: requester.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
		// Заявитель — flow[0]; действовать должен следующий в цепочке.
		CurrentApproverRole: flow[1],
		ApprovalFlow:        flow,
		History: []entities.HistoryEntry{{
			Action: entities.ActionCreated,
			By:     requester.ID,
			ByName: requester.Name,
			Role:   requester.Role,
			At:     now,
		}},
		Version: 1,
	}, nil
}

// CanTransition — чистый предикат без побочных эффектов: действовать
// может только текущая согласующая роль, и только пока заявка
// не достигла терминального статуса.
func CanTransition(req *entities.Request, actingRole entities.Role) bool {
	return !req.Status.IsTerminal() && actingRole == req.CurrentApproverRole
}
