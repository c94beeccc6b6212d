package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func DecodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// DecodeMultipartData parse le champ "data" (JSON) d'un formulaire multipart.
// Les créations avec pièce jointe envoient le body en multipart, le JSON dans "data".
func DecodeMultipartData(r *http.Request, dest interface{}) error {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return fmt.Errorf("invalid multipart form: %w", err)
	}
	data := r.FormValue("data")
	if data == "" {
		return fmt.Errorf("missing data field")
	}
	return json.Unmarshal([]byte(data), dest)
}

func GetToken(r *http.Request) (string, error) {
	token := r.Header.Get("Authorization")
	if token == "" {
		return "", fmt.Errorf("missing token")
	}
	return token, nil
}
