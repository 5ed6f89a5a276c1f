package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"institute-system/internal/entities"
	"institute-system/internal/events"
	"institute-system/pkg/eventbus"
	"institute-system/pkg/websocket"
)

const messageTypeRequestNotification = "REQUEST_NOTIFICATION"

// NotificationListener превращает события движка согласования
// в WebSocket-уведомления ролевых дашбордов.
type NotificationListener struct {
	hub    *websocket.Hub
	logger *zap.Logger
}

func NewNotificationListener(hub *websocket.Hub, logger *zap.Logger) *NotificationListener {
	return &NotificationListener{hub: hub, logger: logger}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.RequestCreatedName, l.handleCreated)
	bus.Subscribe(events.RequestTransitionedName, l.handleTransitioned)
}

func (l *NotificationListener) handleCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestCreated)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	// Новую заявку видит первая согласующая роль.
	return l.notifyRole(string(e.Request.CurrentApproverRole), e.Request, e.ActorName,
		fmt.Sprintf("Новая заявка «%s» ожидает вашего решения", e.Request.Title))
}

func (l *NotificationListener) handleTransitioned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestTransitioned)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	req := e.Request
	if req.Status.IsTerminal() {
		// Терминальный исход — уведомляем роль заявителя (flow[0]).
		if len(req.ApprovalFlow) == 0 {
			return nil
		}
		verb := "согласована"
		if req.Status.Outcome == entities.OutcomeRejected {
			verb = "отклонена"
		}
		return l.notifyRole(string(req.ApprovalFlow[0]), req, e.ActorName,
			fmt.Sprintf("Заявка «%s» %s", req.Title, verb))
	}

	// Продвижение по цепочке — уведомляем следующую согласующую роль.
	return l.notifyRole(string(req.CurrentApproverRole), req, e.ActorName,
		fmt.Sprintf("Заявка «%s» передана вам на рассмотрение", req.Title))
}

func (l *NotificationListener) notifyRole(role string, req *entities.Request, actorName, message string) error {
	payload := websocket.RequestNotificationPayload{
		RequestID: req.ID,
		Type:      string(req.Type),
		Status:    req.Status.Encode(),
		Title:     req.Title,
		ActorName: actorName,
		Message:   message,
	}

	if err := l.hub.SendMessageToRole(role, payload, messageTypeRequestNotification); err != nil {
		l.logger.Error("Не удалось отправить уведомление",
			zap.String("role", role),
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
