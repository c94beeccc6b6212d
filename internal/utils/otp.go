package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTPValidity est la durée de vie d'un code de vérification
const OTPValidity = 5 * time.Minute

// GenerateOTP génère un code numérique à 6 chiffres
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
