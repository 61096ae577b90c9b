package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gepdigital/consola/internal/acceso"
)

// RequiereSesion rechaza peticiones sin sesión autenticada.
func RequiereSesion(fuente acceso.FuenteRol) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := fuente.RolActual(); !ok {
				writeAccessError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Sesión no iniciada")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequiereModulo exige que el rol vigente tenga acceso al módulo que
// respalda la ruta.
func RequiereModulo(fuente acceso.FuenteRol, modulo acceso.Modulo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rol, ok := fuente.RolActual()
			if !ok {
				writeAccessError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Sesión no iniciada")
				return
			}
			if !acceso.TieneAcceso(rol, modulo) {
				writeAccessError(w, http.StatusForbidden, "FORBIDDEN", "No tienes permisos para acceder a "+modulo.Etiqueta()+".")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAccessError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
