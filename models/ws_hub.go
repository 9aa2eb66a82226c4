package models

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub holds live clients grouped by topic (a post slug). Only the hub's run
// loop touches the maps.
type Hub struct {
	Clients      map[*Client]bool
	Broadcast    chan TopicMessage
	Register     chan *Client
	Unregister   chan *Client
	TopicClients map[string][]*Client
}

type Client struct {
	ID     string
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	Topic  string
	UserID uint
}

// TopicMessage is delivered to every client of Topic, or only to Target
// when it is set.
type TopicMessage struct {
	Topic   string
	Target  *Client
	Payload []byte
}

type WSMessage struct {
	Type     string      `json:"type"`
	Data     interface{} `json:"data"`
	ClientID string      `json:"client_id,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		Clients:      make(map[*Client]bool),
		Broadcast:    make(chan TopicMessage, 64),
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		TopicClients: make(map[string][]*Client),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, topic string, userID uint) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Topic:  topic,
		UserID: userID,
	}
}
