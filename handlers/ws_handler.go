package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"quill/middleware"
	"quill/models"
	"quill/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocketHandler streams live events (likes, new comments) for a single
// published post.
type WebSocketHandler struct {
	hubService  *services.HubService
	postService *services.PostService
	upgrader    websocket.Upgrader
}

func NewWebSocketHandler(hubService *services.HubService, postService *services.PostService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hubService:  hubService,
		postService: postService,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(allowedOrigins),
		},
	}
}

// checkOrigin accepts same-host requests and any origin in allowed. An
// allowed list of "*" accepts everything.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		host := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
		return strings.EqualFold(host, r.Host)
	}
}

// HandleLive godoc
// @Summary Subscribe to live events of a post
// @Tags posts
// @Param handle path string true "@username"
// @Param slug path string true "Post slug"
// @Success 101
// @Failure 404 {object} map[string]string
// @Router /{handle}/{slug}/live/ [get]
func (wh *WebSocketHandler) HandleLive(c *gin.Context) {
	handle := c.Param("handle")
	if !strings.HasPrefix(handle, "@") {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found.", "level": "error"})
		return
	}

	post, err := wh.postService.FindBySlug(c.Request.Context(), c.Param("slug"), services.SlugFilter{
		AuthorUsername: strings.TrimPrefix(handle, "@"),
		Status:         models.StatusPublished,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"message": "Post not found.", "level": "error"})
		return
	}

	conn, err := wh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("failed to upgrade live connection", "slug", post.Slug, "error", err)
		return
	}

	var userID uint
	if user := middleware.CurrentUser(c); user != nil {
		userID = user.ID
	}

	client := models.NewClient(wh.hubService.GetHub(), conn, post.Slug, userID)
	slog.Debug("live connection opened", "client", client.ID, "slug", post.Slug, "user_id", userID)

	if !wh.hubService.Register(client) {
		slog.Debug("live hub stopped, closing connection", "client", client.ID)
		conn.Close()
		return
	}
	go wh.writePump(client)
	go wh.readPump(client)
}

func (wh *WebSocketHandler) readPump(client *models.Client) {
	defer func() {
		wh.hubService.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("unexpected live close", "client", client.ID, "error", err)
			}
			return
		}

		var wsMessage models.WSMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			slog.Debug("ignoring malformed live message", "client", client.ID, "error", err)
			continue
		}

		switch wsMessage.Type {
		case "client_connect":
			reply, err := json.Marshal(models.WSMessage{
				Type: "client_connected",
				Data: map[string]string{"client_id": client.ID, "topic": client.Topic},
			})
			if err != nil {
				slog.Error("failed to marshal live reply", "client", client.ID, "error", err)
				continue
			}
			wh.hubService.Send(client, reply)
		default:
			slog.Debug("unknown live message type", "type", wsMessage.Type, "client", client.ID)
		}
	}
}

func (wh *WebSocketHandler) writePump(client *models.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(client.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.Send)
			}

			if err := w.Close(); err != nil {
				slog.Debug("live write failed", "client", client.ID, "error", err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
