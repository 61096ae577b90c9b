package provider

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type claimsAcceso struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// leerToken extrae subject, email y expiración del access token emitido por
// el proveedor. La firma no se verifica: el secreto vive en el proveedor y
// la consola sólo necesita los claims para programar la renovación.
func leerToken(accessToken string) (sub, email string, expira time.Time, err error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(accessToken, &claimsAcceso{})
	if err != nil {
		return "", "", time.Time{}, err
	}

	claims, ok := token.Claims.(*claimsAcceso)
	if !ok {
		return "", "", time.Time{}, errors.New("claims inesperados en access token")
	}
	if claims.ExpiresAt == nil {
		return "", "", time.Time{}, errors.New("access token sin expiración")
	}

	return claims.Subject, claims.Email, claims.ExpiresAt.Time, nil
}
