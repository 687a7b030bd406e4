package service

import (
	"crypto/subtle"
	"errors"
)

var (
	ErrAPIKeyNotConfigured = errors.New("API Key not configured on server")
	ErrAPIKeyInvalid       = errors.New("Invalid API Key")
)

// VerifyAPIKey compara la cabecera presentada con el secreto configurado.
// Sin secreto configurado es un error del servidor, no del cliente.
func VerifyAPIKey(configured, presented string) (string, error) {
	if configured == "" {
		return "", ErrAPIKeyNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) != 1 {
		return "", ErrAPIKeyInvalid
	}
	return presented, nil
}
