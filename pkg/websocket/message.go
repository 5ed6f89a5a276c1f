package websocket

import "time"

// Envelope — это "конверт", в котором отправляются сообщения.
// Тип сообщения позволяет фронтенду понять, что делать с payload.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// RequestNotificationPayload — уведомление ролевого дашборда о том,
// что по заявке требуется действие или она была обработана.
type RequestNotificationPayload struct {
	RequestID string `json:"requestId"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Title     string `json:"title"`
	ActorName string `json:"actorName"`
	Message   string `json:"message"`
}
