// Package chat fait le relais temps réel entre utilisateurs connectés.
// Chaque client s'authentifie sur sa connexion, les messages sont persistés
// puis poussés au destinataire s'il est en ligne.
package chat

import (
	"encoding/json"
	"sync"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

// Hub tient le registre des connexions authentifiées par userID
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
	}
}

// Run boucle sur les enregistrements et départs de clients
func (h *Hub) Run() {
	logger.Info("Hub websocket démarré")
	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// add enregistre une connexion authentifiée. Une seule connexion par
// utilisateur: l'ancienne est neutralisée via closeSend, ses pompes
// s'arrêtent d'elles-mêmes sans risque d'envoi sur canal fermé.
func (h *Hub) add(client *Client) {
	h.mu.Lock()
	old, superseded := h.clients[client.userID]
	h.clients[client.userID] = client
	h.mu.Unlock()

	if superseded {
		old.closeSend()
	}
	logger.Debug("Client connecté: %s", client.userID)

	h.BroadcastUserStatus(client.user, true)
}

// remove retire une connexion. Le départ d'une connexion supplantée ne
// touche pas au registre et n'annonce pas de déconnexion: l'utilisateur
// est toujours en ligne sur sa nouvelle connexion.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.userID]
	removed := ok && current == client
	if removed {
		delete(h.clients, client.userID)
	}
	h.mu.Unlock()

	client.closeSend()
	if removed {
		logger.Debug("Client déconnecté: %s", client.userID)
		h.BroadcastUserStatus(client.user, false)
	}
}

// Register ajoute une connexion authentifiée au hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister retire une connexion du hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToUser pousse un évènement au destinataire s'il est connecté,
// retourne false sinon
func (h *Hub) SendToUser(userID string, event Envelope) bool {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Erreur marshal évènement %s: %v", event.Event, err)
		return false
	}

	if !client.trySend(data) {
		logger.Warning("Envoi impossible vers %s, évènement ignoré", userID)
		return false
	}
	return true
}

// BroadcastUserStatus annonce à tous les connectés qu'un utilisateur
// vient de se connecter ou de partir
func (h *Hub) BroadcastUserStatus(user *model.AuthUser, online bool) {
	if user == nil {
		return
	}

	data, err := json.Marshal(Envelope{
		Event: EventUserStatus,
		Data: map[string]interface{}{
			"userId":   user.ID,
			"role":     user.Role,
			"fullName": user.FullName,
			"isOnline": online,
		},
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.trySend(data)
	}
}

// OnlineUserIDs retourne les identifiants des utilisateurs connectés
func (h *Hub) OnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// TotalConnections retourne le nombre de connexions actives
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
