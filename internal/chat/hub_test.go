package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

func newTestClient(h *Hub, userID string, role model.UserRole) *Client {
	return &Client{
		hub:    h,
		send:   make(chan []byte, 8),
		userID: userID,
		user:   &model.AuthUser{ID: userID, Role: role, FullName: "Test " + userID},
	}
}

// drainStatuses vide le buffer d'un client et retourne les évènements
// userStatus décodés
func drainStatuses(t *testing.T, c *Client) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for {
		select {
		case raw := <-c.send:
			var env struct {
				Event string                 `json:"event"`
				Data  map[string]interface{} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &env))
			if env.Event == EventUserStatus {
				out = append(out, env.Data)
			}
		default:
			return out
		}
	}
}

func TestReconnectSupersedesOldConnection(t *testing.T) {
	h := NewHub()

	old := newTestClient(h, "seeder-1", model.RoleSeeder)
	h.add(old)

	fresh := newTestClient(h, "seeder-1", model.RoleSeeder)
	h.add(fresh)

	// Une seule entrée au registre, c'est la nouvelle connexion qui reçoit
	assert.Equal(t, 1, h.TotalConnections())
	drainStatuses(t, fresh)
	assert.True(t, h.SendToUser("seeder-1", Envelope{Event: EventMessage}))
	select {
	case raw := <-fresh.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, EventMessage, env.Event)
	default:
		t.Fatal("la nouvelle connexion n'a rien reçu")
	}

	// La connexion supplantée peut encore traiter un évènement tardif:
	// ses envois sont des non-opérations, pas un send sur canal fermé
	assert.NotPanics(t, func() {
		old.sendError("late event")
	})
	assert.False(t, old.trySend([]byte("x")))
}

func TestSupersededDisconnectKeepsUserOnline(t *testing.T) {
	h := NewHub()

	old := newTestClient(h, "seeder-1", model.RoleSeeder)
	h.add(old)

	observer := newTestClient(h, "founder-1", model.RoleFounder)
	h.add(observer)

	fresh := newTestClient(h, "seeder-1", model.RoleSeeder)
	h.add(fresh)
	drainStatuses(t, observer)

	// Le départ de l'ancienne connexion ne doit pas annoncer le seeder
	// hors ligne: sa nouvelle connexion est toujours là
	h.remove(old)
	assert.Empty(t, drainStatuses(t, observer))
	assert.Equal(t, 2, h.TotalConnections())

	// Le départ de la connexion courante, lui, est annoncé
	h.remove(fresh)
	statuses := drainStatuses(t, observer)
	require.Len(t, statuses, 1)
	assert.Equal(t, "seeder-1", statuses[0]["userId"])
	assert.Equal(t, false, statuses[0]["isOnline"])
	assert.Equal(t, 1, h.TotalConnections())
}
