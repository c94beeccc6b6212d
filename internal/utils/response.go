package utils

import (
	"encoding/json"
	"net/http"

	"github.com/Barkat-Ullah/seed-lift-backend/internal/logger"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

// SuccessWithMeta retourne data + meta (enveloppe paginée du query builder)
func SuccessWithMeta(w http.ResponseWriter, data interface{}, meta interface{}) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, APIResponse{Success: true, Data: data})
}

func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Message: msg})
}

// Error log l'erreur technique et retourne le message au client
func Error(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		logger.Error("[%d] %s: %v", status, msg, err)
	} else {
		logger.Error("[%d] %s", status, msg)
	}
	JSON(w, status, APIResponse{Success: false, Error: msg})
}

// ErrorSimple retourne une erreur sans cause technique à logger
func ErrorSimple(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, APIResponse{Success: false, Error: msg})
}
