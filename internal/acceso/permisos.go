package acceso

import "fmt"

// permisos declara, por rol, el conjunto ordenado de módulos permitidos.
// El orden define la barra lateral. Cada conjunto es independiente: que el
// de Administrador contenga al de Analista es circunstancial, no invariante.
var permisos = map[Rol][]Modulo{
	RolAdministrador: {
		ModuloDashboard,
		ModuloDocumentos,
		ModuloAlertas,
		ModuloClientes,
		ModuloEmpresas,
		ModuloTemas,
		ModuloUsuarios,
		ModuloBots,
	},
	RolAnalistaGEP: {
		ModuloDashboard,
		ModuloDocumentos,
		ModuloAlertas,
		ModuloClientes,
		ModuloEmpresas,
		ModuloTemas,
	},
}

func init() {
	for rol, mods := range permisos {
		if !rol.Valido() {
			panic(fmt.Sprintf("acceso: rol inválido en tabla de permisos: %d", rol))
		}
		if len(mods) == 0 {
			panic(fmt.Sprintf("acceso: rol %s sin módulos", rol))
		}
		for _, m := range mods {
			if _, err := ParseModulo(string(m)); err != nil {
				panic(fmt.Sprintf("acceso: módulo desconocido %q para rol %s", m, rol))
			}
		}
	}
}

// TieneAcceso indica si el rol puede entrar al módulo.
func TieneAcceso(rol Rol, modulo Modulo) bool {
	for _, m := range permisos[rol] {
		if m == modulo {
			return true
		}
	}
	return false
}

// ModulosPermitidos devuelve el conjunto ordenado del rol (copia defensiva).
func ModulosPermitidos(rol Rol) []Modulo {
	mods := permisos[rol]
	out := make([]Modulo, len(mods))
	copy(out, mods)
	return out
}
