package acceso

import (
	"errors"
	"strings"
)

var (
	// ErrRolDesconocido es retornado cuando el perfil almacenado no corresponde a ningún rol válido.
	ErrRolDesconocido = errors.New("rol desconocido")
	// ErrModuloDesconocido es retornado al intentar navegar a un módulo no declarado.
	ErrModuloDesconocido = errors.New("módulo desconocido")
)

// Rol clasifica al personal de la consola. Enumeración cerrada: todo valor
// fuera de estas dos constantes es rechazado en ParseRol.
type Rol int

const (
	RolAdministrador Rol = iota + 1
	RolAnalistaGEP
)

// String devuelve el nombre del rol tal como se guarda en la columna perfil.
func (r Rol) String() string {
	switch r {
	case RolAdministrador:
		return "Administrador"
	case RolAnalistaGEP:
		return "Analista GEP"
	default:
		return ""
	}
}

// Valido indica si el rol pertenece a la enumeración.
func (r Rol) Valido() bool {
	return r == RolAdministrador || r == RolAnalistaGEP
}

// ParseRol convierte el texto de la columna perfil en un Rol.
func ParseRol(s string) (Rol, error) {
	switch strings.TrimSpace(s) {
	case "Administrador":
		return RolAdministrador, nil
	case "Analista GEP":
		return RolAnalistaGEP, nil
	default:
		return 0, ErrRolDesconocido
	}
}

// Modulo identifica una sección de la consola sujeta a control de acceso.
type Modulo string

const (
	ModuloDashboard  Modulo = "dashboard"
	ModuloDocumentos Modulo = "documents"
	ModuloAlertas    Modulo = "alerts"
	ModuloClientes   Modulo = "clients"
	ModuloEmpresas   Modulo = "companies"
	ModuloTemas      Modulo = "themes"
	ModuloUsuarios   Modulo = "users"
	ModuloBots       Modulo = "bots"
)

// ModuloPorDefecto es el destino de toda redirección por acceso denegado.
const ModuloPorDefecto = ModuloDashboard

var etiquetas = map[Modulo]string{
	ModuloDashboard:  "Dashboard",
	ModuloDocumentos: "Gestión Documental",
	ModuloAlertas:    "Alertas y Monitoreo",
	ModuloClientes:   "Gestión de Clientes",
	ModuloEmpresas:   "Gestión de Empresas",
	ModuloTemas:      "Gestión de Temas",
	ModuloUsuarios:   "Gestión de Usuarios",
	ModuloBots:       "Ejecución de Bots",
}

// ParseModulo valida un identificador de módulo. Identificadores fuera de la
// enumeración producen ErrModuloDesconocido en lugar de "sin acceso".
func ParseModulo(s string) (Modulo, error) {
	m := Modulo(strings.TrimSpace(strings.ToLower(s)))
	if _, ok := etiquetas[m]; !ok {
		return "", ErrModuloDesconocido
	}
	return m, nil
}

// Etiqueta devuelve el nombre de presentación del módulo.
func (m Modulo) Etiqueta() string {
	return etiquetas[m]
}
