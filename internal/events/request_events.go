package events

import "institute-system/internal/entities"

const (
	RequestCreatedName      = "request.created"
	RequestTransitionedName = "request.transitioned"
)

// RequestCreated публикуется после записи новой заявки в хранилище.
type RequestCreated struct {
	Request   *entities.Request
	ActorName string
}

func (e RequestCreated) Name() string { return RequestCreatedName }

// RequestTransitioned публикуется после успешного approve/reject/forward.
type RequestTransitioned struct {
	Request   *entities.Request
	Action    string
	ActorName string
}

func (e RequestTransitioned) Name() string { return RequestTransitionedName }
