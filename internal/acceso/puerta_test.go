package acceso

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fuenteFija struct {
	rol Rol
	ok  bool
}

func (f *fuenteFija) RolActual() (Rol, bool) {
	return f.rol, f.ok
}

func TestNavegarPermitido(t *testing.T) {
	fuente := &fuenteFija{rol: RolAnalistaGEP, ok: true}
	puerta := NuevaPuerta(fuente)

	dec := puerta.Navegar(ModuloDocumentos)
	require.True(t, dec.Permitido)
	require.Equal(t, ModuloDocumentos, dec.Modulo)
	require.Empty(t, dec.Aviso)
}

func TestNavegarDenegadoRedirige(t *testing.T) {
	fuente := &fuenteFija{rol: RolAnalistaGEP, ok: true}
	puerta := NuevaPuerta(fuente)

	dec := puerta.Navegar(ModuloUsuarios)
	require.False(t, dec.Permitido)
	require.Equal(t, ModuloPorDefecto, dec.Modulo)
	require.Equal(t, "No tienes permisos para acceder a Gestión de Usuarios.", dec.Aviso)
}

func TestDashboardSiempreAccesible(t *testing.T) {
	fuente := &fuenteFija{rol: RolAnalistaGEP, ok: true}
	puerta := NuevaPuerta(fuente)

	dec := puerta.Navegar(ModuloDashboard)
	require.True(t, dec.Permitido)
}

func TestAvisoExpira(t *testing.T) {
	fuente := &fuenteFija{rol: RolAnalistaGEP, ok: true}
	puerta := NuevaPuerta(fuente)

	reloj := time.Now()
	puerta.ahora = func() time.Time { return reloj }

	puerta.Navegar(ModuloBots)
	require.NotEmpty(t, puerta.Estado().Aviso)

	reloj = reloj.Add(AvisoTTL + time.Second)
	require.Empty(t, puerta.Estado().Aviso)
}

func TestReevaluarTrasPerderRol(t *testing.T) {
	fuente := &fuenteFija{rol: RolAdministrador, ok: true}
	puerta := NuevaPuerta(fuente)

	dec := puerta.Navegar(ModuloUsuarios)
	require.True(t, dec.Permitido)

	fuente.rol = RolAnalistaGEP
	dec = puerta.Reevaluar()
	require.False(t, dec.Permitido)
	require.Equal(t, ModuloPorDefecto, dec.Modulo)
	require.NotEmpty(t, dec.Aviso)
}

func TestReevaluarSinSesion(t *testing.T) {
	fuente := &fuenteFija{rol: RolAdministrador, ok: true}
	puerta := NuevaPuerta(fuente)
	puerta.Navegar(ModuloTemas)

	fuente.ok = false
	dec := puerta.Reevaluar()
	require.False(t, dec.Permitido)
	require.Equal(t, ModuloPorDefecto, dec.Modulo)
}
