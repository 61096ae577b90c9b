package acceso

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModulosPermitidosPorRol(t *testing.T) {
	admin := ModulosPermitidos(RolAdministrador)
	require.Len(t, admin, 8)
	require.Equal(t, ModuloDashboard, admin[0])

	analista := ModulosPermitidos(RolAnalistaGEP)
	require.Len(t, analista, 6)
	require.NotContains(t, analista, ModuloUsuarios)
	require.NotContains(t, analista, ModuloBots)
}

func TestTieneAcceso(t *testing.T) {
	require.True(t, TieneAcceso(RolAdministrador, ModuloUsuarios))
	require.True(t, TieneAcceso(RolAdministrador, ModuloBots))
	require.True(t, TieneAcceso(RolAnalistaGEP, ModuloDocumentos))
	require.False(t, TieneAcceso(RolAnalistaGEP, ModuloUsuarios))
	require.False(t, TieneAcceso(RolAnalistaGEP, ModuloBots))
}

func TestModulosPermitidosCopiaDefensiva(t *testing.T) {
	mods := ModulosPermitidos(RolAnalistaGEP)
	mods[0] = ModuloBots
	require.Equal(t, ModuloDashboard, ModulosPermitidos(RolAnalistaGEP)[0])
}

func TestParseModulo(t *testing.T) {
	m, err := ParseModulo("  Documents ")
	require.NoError(t, err)
	require.Equal(t, ModuloDocumentos, m)

	_, err = ParseModulo("reportes")
	require.ErrorIs(t, err, ErrModuloDesconocido)

	_, err = ParseModulo("")
	require.ErrorIs(t, err, ErrModuloDesconocido)
}

func TestParseRol(t *testing.T) {
	rol, err := ParseRol("Administrador")
	require.NoError(t, err)
	require.Equal(t, RolAdministrador, rol)

	rol, err = ParseRol("Analista GEP")
	require.NoError(t, err)
	require.Equal(t, RolAnalistaGEP, rol)

	_, err = ParseRol("Supervisor")
	require.ErrorIs(t, err, ErrRolDesconocido)
}
