package util

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidarEmail devuelve error para correos inválidos.
func ValidarEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obligatorio")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email inválido")
	}
	return nil
}

// ValidarContrasena verifica requisitos mínimos de contraseña.
func ValidarContrasena(contrasena string) error {
	if len(contrasena) < 8 {
		return errors.New("la contraseña debe tener al menos 8 caracteres")
	}
	return nil
}

// RequerirCadena garantiza cadena no vacía.
func RequerirCadena(valor, campo string) error {
	if strings.TrimSpace(valor) == "" {
		return errors.New(campo + " obligatorio")
	}
	return nil
}
