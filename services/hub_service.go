package services

import (
	"encoding/json"
	"log/slog"

	"quill/models"
)

// Publisher delivers live events for a post topic. A nil Publisher is
// allowed wherever one is accepted.
type Publisher interface {
	Publish(topic, eventType string, data interface{})
}

type HubService struct {
	hub  *models.Hub
	done chan struct{}
}

func NewHubService() *HubService {
	hub := models.NewHub()
	service := &HubService{hub: hub, done: make(chan struct{})}

	go service.Run()

	return service
}

func (h *HubService) GetHub() *models.Hub {
	return h.hub
}

func (h *HubService) Run() {
	for {
		select {
		case client := <-h.hub.Register:
			h.registerClient(client)

		case client := <-h.hub.Unregister:
			h.unregisterClient(client)

		case message := <-h.hub.Broadcast:
			h.broadcastToTopic(message)

		case <-h.done:
			for client := range h.hub.Clients {
				h.unregisterClient(client)
			}
			return
		}
	}
}

// Register hands client to the run loop. It reports false once the hub has
// stopped.
func (h *HubService) Register(client *models.Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.hub.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client from the run loop. After Stop it returns at once.
func (h *HubService) Unregister(client *models.Client) {
	select {
	case h.hub.Unregister <- client:
	case <-h.done:
	}
}

// Stop ends the run loop and closes every client's send channel.
func (h *HubService) Stop() {
	close(h.done)
}

func (h *HubService) registerClient(client *models.Client) {
	h.hub.Clients[client] = true
	h.hub.TopicClients[client.Topic] = append(h.hub.TopicClients[client.Topic], client)
	slog.Debug("live client registered", "client", client.ID, "topic", client.Topic, "user_id", client.UserID)
}

func (h *HubService) unregisterClient(client *models.Client) {
	if _, ok := h.hub.Clients[client]; !ok {
		return
	}
	delete(h.hub.Clients, client)
	close(client.Send)

	clients := h.hub.TopicClients[client.Topic]
	for i, c := range clients {
		if c == client {
			h.hub.TopicClients[client.Topic] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.hub.TopicClients[client.Topic]) == 0 {
		delete(h.hub.TopicClients, client.Topic)
	}
	slog.Debug("live client unregistered", "client", client.ID, "topic", client.Topic)
}

func (h *HubService) broadcastToTopic(message models.TopicMessage) {
	recipients := h.hub.TopicClients[message.Topic]
	if message.Target != nil {
		if !h.hub.Clients[message.Target] {
			return
		}
		recipients = []*models.Client{message.Target}
	}
	for _, client := range append([]*models.Client(nil), recipients...) {
		select {
		case client.Send <- message.Payload:
		default:
			slog.Warn("dropping slow live client", "client", client.ID, "topic", client.Topic)
			h.unregisterClient(client)
		}
	}
}

func (h *HubService) Publish(topic, eventType string, data interface{}) {
	payload, err := json.Marshal(models.WSMessage{Type: eventType, Data: data})
	if err != nil {
		slog.Error("failed to marshal live event", "type", eventType, "error", err)
		return
	}

	select {
	case h.hub.Broadcast <- models.TopicMessage{Topic: topic, Payload: payload}:
	default:
		slog.Warn("live event dropped, broadcast queue full", "type", eventType, "topic", topic)
	}
}

// Send queues payload for a single client through the run loop, so it never
// races with the client being unregistered.
func (h *HubService) Send(client *models.Client, payload []byte) {
	select {
	case h.hub.Broadcast <- models.TopicMessage{Topic: client.Topic, Target: client, Payload: payload}:
	default:
		slog.Warn("live reply dropped, broadcast queue full", "client", client.ID)
	}
}

func publish(p Publisher, topic, eventType string, data interface{}) {
	if p == nil {
		return
	}
	p.Publish(topic, eventType, data)
}
