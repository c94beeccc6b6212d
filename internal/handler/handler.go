package handler

import (
	"net/http"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/utils"
)

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.Message(w, "ok")
}

// RootHandler affiche toutes les routes disponibles de l'API
func RootHandler(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{
		"name":    "SeedLift API",
		"version": "1.0.0",
		"status":  "running",
		"routes": map[string]interface{}{
			"auth": []map[string]string{
				{"method": "POST", "path": "/auth/login", "description": "Connexion utilisateur"},
				{"method": "POST", "path": "/auth/register", "description": "Inscription seeder/founder"},
				{"method": "POST", "path": "/auth/verify-otp", "description": "Vérification du code OTP"},
				{"method": "POST", "path": "/auth/resend-otp", "description": "Renvoi du code OTP"},
				{"method": "POST", "path": "/auth/forgot-password", "description": "Demande de réinitialisation"},
				{"method": "POST", "path": "/auth/reset-password", "description": "Réinitialiser le mot de passe"},
				{"method": "POST", "path": "/auth/change-password", "description": "Changer le mot de passe"},
				{"method": "POST", "path": "/auth/logout", "description": "Déconnexion utilisateur"},
			},
			"users": []map[string]string{
				{"method": "GET", "path": "/users", "description": "Lister les comptes (admin)"},
				{"method": "GET", "path": "/users/me", "description": "Mon profil"},
				{"method": "PATCH", "path": "/users/me", "description": "Mettre à jour mon profil"},
				{"method": "GET", "path": "/users/{id}", "description": "Fiche d'un compte (admin)"},
				{"method": "PATCH", "path": "/users/{id}/status", "description": "Basculer ACTIVE/RESTRICTED (admin)"},
				{"method": "DELETE", "path": "/users/{id}", "description": "Suppression logique (admin)"},
				{"method": "DELETE", "path": "/users/{id}/hard", "description": "Suppression définitive (admin)"},
			},
			"challenges": []map[string]string{
				{"method": "GET", "path": "/challenges", "description": "Challenges ouverts côté seeder"},
				{"method": "GET", "path": "/challenges/admin", "description": "Tous les challenges (admin)"},
				{"method": "GET", "path": "/challenges/my", "description": "Mes challenges (founder)"},
				{"method": "GET", "path": "/challenges/{id}", "description": "Détail avec commentaires"},
				{"method": "POST", "path": "/challenges", "description": "Créer un challenge (founder)"},
				{"method": "PATCH", "path": "/challenges/{id}", "description": "Modifier un challenge"},
				{"method": "DELETE", "path": "/challenges/{id}", "description": "Suppression logique"},
				{"method": "PATCH", "path": "/challenges/{id}/status", "description": "Basculer PENDING/FINISHED"},
				{"method": "POST", "path": "/challenges/{id}/award", "description": "Récompenser le gagnant"},
			},
			"comments": []map[string]string{
				{"method": "POST", "path": "/comments", "description": "Commenter un challenge (seeder)"},
				{"method": "POST", "path": "/comments/{id}/reply", "description": "Répondre (founder)"},
				{"method": "GET", "path": "/challenges/{id}/comments", "description": "Commentaires d'un challenge"},
				{"method": "GET", "path": "/challenges/{id}/commenters", "description": "Seeders ayant commenté"},
			},
			"seeders": []map[string]string{
				{"method": "GET", "path": "/seeders", "description": "Classement des seeders"},
				{"method": "GET", "path": "/seeders/{id}", "description": "Fiche d'un seeder"},
				{"method": "GET", "path": "/seeders/my-challenges", "description": "Challenges invités/commentés"},
				{"method": "GET", "path": "/seeders/my-rewards", "description": "Mes victoires"},
			},
			"subscriptions": []map[string]string{
				{"method": "GET", "path": "/subscriptions", "description": "Plans actifs"},
				{"method": "POST", "path": "/subscriptions", "description": "Créer un plan (admin)"},
				{"method": "POST", "path": "/subscriptions/assign", "description": "Souscrire à un plan"},
				{"method": "GET", "path": "/subscriptions/my", "description": "Mon abonnement"},
			},
			"assist": []map[string]string{
				{"method": "POST", "path": "/assist/ask", "description": "Assistant de rédaction"},
			},
			"websocket": []map[string]string{
				{"method": "GET", "path": "/ws", "description": "Chat temps réel"},
			},
			"health": []map[string]string{
				{"method": "GET", "path": "/health", "description": "Health check de l'API"},
			},
		},
	}

	utils.Success(w, routes)
}
