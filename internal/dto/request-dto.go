package dto

import "institute-system/internal/entities"

type CreateRequestDTO struct {
	Type          string   `json:"type" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Priority      string   `json:"priority" validate:"required,priority_level"`
	Quantity      *int     `json:"quantity,omitempty"`
	EstimatedCost *float64 `json:"estimatedCost,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// ActionRequestDTO — тело approve/reject/forward. Владелец нужен только
// для документных заявок (они лежат под documentRequests/{userId}/{id}).
// Version — версия, которую видел дашборд перед действием.
type ActionRequestDTO struct {
	Type    string `json:"type" validate:"required"`
	OwnerID string `json:"ownerId,omitempty"`
	Version int64  `json:"version" validate:"required,min=1"`
	Reason  string `json:"reason,omitempty"`
}

// HistoryEntryDTO — элемент таймлайна заявки для фронтенда.
type HistoryEntryDTO struct {
	Action string `json:"action"`
	By     string `json:"by"`
	ByName string `json:"byName,omitempty"`
	Role   string `json:"role"`
	At     string `json:"at"`
}

// RequestTimelineDTO — история заявки целиком.
type RequestTimelineDTO struct {
	RequestID string            `json:"requestId"`
	Status    string            `json:"status"`
	Events    []HistoryEntryDTO `json:"events"`
}

// DashboardStatsDTO — счётчики ролевого дашборда.
type DashboardStatsDTO struct {
	Actionable int `json:"actionable"`
	Approved   int `json:"approved"`
	Rejected   int `json:"rejected"`
	InFlight   int `json:"inFlight"`
}

func TimelineFromRequest(req *entities.Request) *RequestTimelineDTO {
	events := make([]HistoryEntryDTO, 0, len(req.History))
	for _, h := range req.History {
		events = append(events, HistoryEntryDTO{
			Action: h.Action,
			By:     h.By,
			ByName: h.ByName,
			Role:   string(h.Role),
			At:     h.At.Format("2006-01-02 15:04:05"),
		})
	}
	return &RequestTimelineDTO{
		RequestID: req.ID,
		Status:    req.Status.Encode(),
		Events:    events,
	}
}
