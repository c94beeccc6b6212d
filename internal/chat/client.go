package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	"github.com/Barkat-Ullah/seed-lift-backend/internal/middleware"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

const (
	// Délai d'écriture vers le client
	writeWait = 10 * time.Second

	// Délai max entre deux pongs du client
	pongWait = 60 * time.Second

	// Fréquence des pings
	pingPeriod = (pongWait * 9) / 10

	// Taille max d'un message entrant
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client est une connexion websocket. userID et user restent vides tant que
// le client n'a pas envoyé son évènement authenticate.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	userID string
	user   *model.AuthUser

	mu     sync.Mutex
	closed bool
}

// trySend pousse un message sortant sans bloquer. Retourne false si la
// connexion a été fermée ou si le buffer est plein.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend ferme le canal sortant une seule fois. Les envois suivants
// deviennent des non-opérations, jamais un send sur canal fermé.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ServeWs upgrade la requête HTTP et lance les pompes du client
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Erreur upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	go client.writePump()
	go client.readPump()
}

// readPump lit les évènements du client et les dispatch
func (c *Client) readPump() {
	defer func() {
		if c.userID != "" {
			c.hub.Unregister(c)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("Erreur websocket: %v", err)
			}
			break
		}

		var event clientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.sendError("invalid message format")
			continue
		}

		c.handleEvent(&event)
	}
}

// writePump pousse les évènements sortants et maintient le ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleEvent(event *clientEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch event.Event {
	case EventAuthenticate:
		c.handleAuthenticate(ctx, event)
	case EventMessage:
		c.handleDirectMessage(ctx, event, EventMessage)
	case EventFreeStyleMessage:
		c.handleDirectMessage(ctx, event, EventFreeStyleMessage)
	case EventFetchChats:
		c.handleFetchChats(ctx, event)
	case EventUnreadMessages:
		c.handleUnreadMessages(ctx, event)
	case EventMessageList:
		c.handleMessageList(ctx)
	case EventOnlineUsers:
		c.handleOnlineUsers(ctx)
	default:
		c.sendError("unknown event")
	}
}

func (c *Client) handleAuthenticate(ctx context.Context, event *clientEvent) {
	if event.Token == "" {
		c.sendError("no token")
		c.conn.Close()
		return
	}

	user, err := middleware.ValidateToken(ctx, event.Token)
	if err != nil {
		c.sendError("invalid token")
		c.conn.Close()
		return
	}

	c.userID = user.ID
	c.user = user
	c.hub.Register(c)
	logger.Info("Websocket authentifié: %s (%s)", user.ID, user.Role)
}

// handleDirectMessage couvre message et freeStyleMessage, seul l'évènement
// de réponse diffère
func (c *Client) handleDirectMessage(ctx context.Context, event *clientEvent, replyEvent string) {
	if c.userID == "" || event.ReceiverID == "" || event.Message == "" {
		c.sendError("invalid payload")
		return
	}

	receiver, err := GetChatUser(ctx, event.ReceiverID)
	if err != nil {
		c.sendError("server error")
		return
	}
	if receiver == nil {
		c.sendError("receiver not found")
		return
	}

	if !IsValidChatPair(c.user.Role, receiver.Role) {
		c.sendError("messaging not allowed between these roles")
		return
	}

	room, err := FindOrCreateRoom(ctx, c.userID, event.ReceiverID)
	if err != nil {
		c.sendError("server error")
		return
	}

	chat, err := SaveChat(ctx, room.ID, c.userID, event.ReceiverID, event.Message)
	if err != nil {
		c.sendError("server error")
		return
	}

	sender, err := GetChatUser(ctx, c.userID)
	if err != nil {
		c.sendError("server error")
		return
	}

	payload := Envelope{Event: replyEvent, Data: model.ChatMessage{
		Chat:     *chat,
		Sender:   sender,
		Receiver: receiver,
	}}

	// Poussé au destinataire s'il est en ligne, écho systématique à l'expéditeur
	c.hub.SendToUser(event.ReceiverID, payload)
	c.sendEnvelope(payload)
}

func (c *Client) handleFetchChats(ctx context.Context, event *clientEvent) {
	if c.userID == "" || event.ReceiverID == "" {
		c.sendError("invalid payload")
		return
	}

	receiver, err := GetChatUser(ctx, event.ReceiverID)
	if err != nil {
		c.sendError("server error")
		return
	}
	if receiver == nil || !IsValidChatPair(c.user.Role, receiver.Role) {
		c.sendError("access denied for this chat")
		return
	}

	room, err := FindRoom(ctx, c.userID, event.ReceiverID)
	if err != nil {
		c.sendError("server error")
		return
	}
	if room == nil {
		c.sendEnvelope(Envelope{Event: EventFetchChats, Data: []model.ChatMessage{}})
		return
	}

	sender, err := GetChatUser(ctx, c.userID)
	if err != nil {
		c.sendError("server error")
		return
	}

	chats, err := RoomChats(ctx, room.ID, sender, receiver)
	if err != nil {
		c.sendError("server error")
		return
	}

	// La lecture de l'historique marque les messages reçus comme lus
	if err := MarkChatsRead(ctx, room.ID, c.userID); err != nil {
		logger.Error("Erreur marquage lu room %s: %v", room.ID, err)
	}

	c.sendEnvelope(Envelope{Event: EventFetchChats, Data: chats})
}

func (c *Client) handleUnreadMessages(ctx context.Context, event *clientEvent) {
	if c.userID == "" || event.ReceiverID == "" {
		c.sendError("invalid payload")
		return
	}

	receiver, err := GetChatUser(ctx, event.ReceiverID)
	if err != nil {
		c.sendError("server error")
		return
	}
	if receiver == nil || !IsValidChatPair(c.user.Role, receiver.Role) {
		c.sendError("access denied")
		return
	}

	room, err := FindRoom(ctx, c.userID, event.ReceiverID)
	if err != nil {
		c.sendError("server error")
		return
	}
	if room == nil {
		c.sendEnvelope(Envelope{Event: EventUnreadMessages, Data: map[string]interface{}{
			"messages": []model.Chat{}, "count": 0,
		}})
		return
	}

	unread, err := UnreadChats(ctx, room.ID, c.userID)
	if err != nil {
		c.sendError("server error")
		return
	}

	c.sendEnvelope(Envelope{Event: EventUnreadMessages, Data: map[string]interface{}{
		"messages": unread, "count": len(unread),
	}})
}

func (c *Client) handleMessageList(ctx context.Context) {
	if c.userID == "" {
		c.sendError("not authenticated")
		return
	}

	previews, err := ConversationList(ctx, c.userID, c.user.Role)
	if err != nil {
		c.sendError("server error")
		return
	}

	c.sendEnvelope(Envelope{Event: EventMessageList, Data: previews})
}

func (c *Client) handleOnlineUsers(ctx context.Context) {
	if c.userID == "" {
		c.sendError("not authenticated")
		return
	}

	users, err := ChatUsersByIDs(ctx, c.hub.OnlineUserIDs())
	if err != nil {
		c.sendError("server error")
		return
	}

	// Seuls les correspondants joignables par ce rôle sont listés
	visible := []model.ChatUser{}
	for _, u := range users {
		if IsValidChatPair(c.user.Role, u.Role) {
			visible = append(visible, u)
		}
	}

	c.sendEnvelope(Envelope{Event: EventOnlineUsers, Data: visible})
}

func (c *Client) sendEnvelope(event Envelope) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	c.trySend(data)
}

func (c *Client) sendError(msg string) {
	c.sendEnvelope(Envelope{Event: EventError, Message: msg})
}
