package errors

import (
	"fmt"
	"strings"
)

// Ошибки процесса согласования заявок. Сервисный слой пробрасывает их
// наверх как есть; HTTP-код подбирается в utils.ErrorResponse.

// ValidationError собирает ВСЕ нарушения полей при создании заявки,
// а не только первое.
type ValidationError struct {
	Violations map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Violations: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Violations[field] = message
}

func (e *ValidationError) HasViolations() bool { return len(e.Violations) > 0 }

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for field, msg := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "ошибка валидации заявки: " + strings.Join(parts, "; ")
}

// InvalidTransitionError: действие выполняет роль, которая сейчас не
// является согласующей для заявки.
type InvalidTransitionError struct {
	RequestID    string
	ActingRole   string
	ExpectedRole string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("недопустимый переход: заявка %s ожидает действия роли %q, а действует %q",
		e.RequestID, e.ExpectedRole, e.ActingRole)
}

// TerminalStateError: заявка уже согласована или отклонена.
type TerminalStateError struct {
	RequestID string
	Status    string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("заявка %s уже обработана (статус %q)", e.RequestID, e.Status)
}

// StaleStateError: состояние заявки в хранилище ушло вперёд относительно
// того, что видел вызывающий. Нужно перечитать и повторить.
type StaleStateError struct {
	RequestID     string
	SeenVersion   int64
	ActualVersion int64
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("заявка %s изменена конкурентно: ожидалась версия %d, в хранилище %d",
		e.RequestID, e.SeenVersion, e.ActualVersion)
}
