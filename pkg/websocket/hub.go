package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub управляет всеми клиентами и рассылкой сообщений.
// Клиенты группируются по роли: дашборды ролевые, и уведомление о заявке
// адресуется роли, которая сейчас должна её обработать.
type Hub struct {
	clients     map[*Client]bool
	roleClients map[string][]*Client
	Register    chan *Client
	unregister  chan *Client
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		roleClients: make(map[string][]*Client),
		Register:    make(chan *Client),
		unregister:  make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.roleClients[client.Role] = append(h.roleClients[client.Role], client)
			log.Printf("Клиент зарегистрирован: userID %d, роль %s", client.UserID, client.Role)
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				clients := h.roleClients[client.Role]
				for i, c := range clients {
					if c == client {
						h.roleClients[client.Role] = append(clients[:i], clients[i+1:]...)
						break
					}
				}
				if len(h.roleClients[client.Role]) == 0 {
					delete(h.roleClients, client.Role)
				}
				log.Printf("Клиент отсоединен: userID %d", client.UserID)
			}
			h.mu.Unlock()
		}
	}
}

// SendMessageToRole отправляет уведомление всем подключённым дашбордам роли.
func (h *Hub) SendMessageToRole(role string, payload interface{}, messageType string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	envelope := Envelope{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	messageBytes, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("Ошибка сериализации сообщения для WebSocket: %v", err)
		return err
	}

	if clients, ok := h.roleClients[role]; ok {
		for _, client := range clients {
			select {
			case client.Send <- messageBytes:
			default:
			}
		}
	}

	return nil
}
