package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role — код роли из таблицы roles; цепочка согласования состоит из них.
type Role string

// RequestType определяет набор категорийных полей и цепочку согласования.
type RequestType string

const (
	TypeWorkshop      RequestType = "workshop"
	TypeLab           RequestType = "lab"
	TypePlumbingStock RequestType = "plumbing_stock"
	TypeElectrical    RequestType = "electrical_maintenance"
	TypeLibraryStock  RequestType = "library_stock"
	TypeDocument      RequestType = "document"
)

// Outcome — исход текущей стадии заявки.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeForwarded Outcome = "forwarded"
	OutcomeApproved  Outcome = "approved"
	OutcomeRejected  Outcome = "rejected"
)

// Status — статус заявки как тегированная пара (исход, роль).
// В хранилище сериализуется в плоскую строку легаси-формата:
// "pending" / "forwarded" / "approved" / "rejected" для простых цепочек,
// "forwarded_to_registrar" / "approved_by_principal" / "rejected_by_<role>"
// для документных. Suffixed фиксируется при создании заявки.
type Status struct {
	Outcome  Outcome
	Role     Role
	Suffixed bool
}

// IsTerminal: согласованные и отклонённые заявки не принимают переходов.
func (s Status) IsTerminal() bool {
	return s.Outcome == OutcomeApproved || s.Outcome == OutcomeRejected
}

// Encode сплющивает статус в легаси-строку для границы хранилища.
func (s Status) Encode() string {
	if !s.Suffixed || s.Outcome == OutcomePending {
		return string(s.Outcome)
	}
	switch s.Outcome {
	case OutcomeForwarded:
		return "forwarded_to_" + string(s.Role)
	case OutcomeApproved:
		return "approved_by_" + string(s.Role)
	case OutcomeRejected:
		return "rejected_by_" + string(s.Role)
	}
	return string(s.Outcome)
}

// ParseStatus восстанавливает тегированный статус из легаси-строки.
func ParseStatus(raw string) (Status, error) {
	switch raw {
	case "pending":
		return Status{Outcome: OutcomePending}, nil
	case "forwarded":
		return Status{Outcome: OutcomeForwarded}, nil
	case "approved":
		return Status{Outcome: OutcomeApproved}, nil
	case "rejected":
		return Status{Outcome: OutcomeRejected}, nil
	}

	for prefix, outcome := range map[string]Outcome{
		"forwarded_to_": OutcomeForwarded,
		"approved_by_":  OutcomeApproved,
		"rejected_by_":  OutcomeRejected,
	} {
		if strings.HasPrefix(raw, prefix) && len(raw) > len(prefix) {
			return Status{Outcome: outcome, Role: Role(raw[len(prefix):]), Suffixed: true}, nil
		}
	}

	return Status{}, fmt.Errorf("неизвестный статус заявки: %q", raw)
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Encode())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// HistoryEntry — запись аудита. Role — роль, которая ДЕЙСТВОВАЛА
// (согласующий до перехода), а не та, которой заявка досталась.
type HistoryEntry struct {
	Action string    `json:"action"`
	By     string    `json:"by"`
	ByName string    `json:"byName,omitempty"`
	Role   Role      `json:"role"`
	At     time.Time `json:"at"`
}

// Действия в аудите.
const (
	ActionCreated   = "created"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionForwarded = "forwarded"
)

// Request — заявка на согласование (оборудование, документ, обслуживание).
// Мутируется только через workflow.Engine; история append-only, записи
// никогда не удаляются и не переупорядочиваются.
type Request struct {
	ID                  string         `json:"id"`
	InstituteID         uint64         `json:"instituteId"`
	Type                RequestType    `json:"type"`
	Status              Status         `json:"status"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	Category            string         `json:"category"`
	Priority            string         `json:"priority"`
	Quantity            *int           `json:"quantity,omitempty"`
	EstimatedCost       *float64       `json:"estimatedCost,omitempty"`
	Reason              string         `json:"reason,omitempty"`
	Notes               string         `json:"notes,omitempty"`
	CreatedBy           string         `json:"createdBy"`
	CreatedByName       string         `json:"createdByName"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	CurrentApproverRole Role           `json:"currentApproverRole"`
	ApprovalFlow        []Role         `json:"approvalFlow"`
	History             []HistoryEntry `json:"history"`
	Version             int64          `json:"version"`
}

// Clone возвращает глубокую копию заявки. Движок мутирует только копию,
// чтобы при ошибке записи у вызывающего осталось нетронутое состояние.
func (r *Request) Clone() *Request {
	cp := *r
	cp.ApprovalFlow = append([]Role(nil), r.ApprovalFlow...)
	cp.History = append([]HistoryEntry(nil), r.History...)
	if r.Quantity != nil {
		q := *r.Quantity
		cp.Quantity = &q
	}
	if r.EstimatedCost != nil {
		c := *r.EstimatedCost
		cp.EstimatedCost = &c
	}
	return &cp
}
