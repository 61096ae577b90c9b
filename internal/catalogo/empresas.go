package catalogo

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columnasEmpresa = "id_empresa, created_at, id_usuario, nombre_em, rfc, giro, sitio_web"

// Empresas accede a la tabla empresas.
type Empresas struct {
	pool *pgxpool.Pool
}

func NewEmpresas(pool *pgxpool.Pool) *Empresas {
	return &Empresas{pool: pool}
}

// Listar devuelve empresas, opcionalmente filtradas por nombre (patrón).
func (r *Empresas) Listar(ctx context.Context, busqueda string) ([]Empresa, error) {
	query := `
        SELECT ` + columnasEmpresa + `
        FROM empresas
    `
	var args []any
	if b := strings.TrimSpace(busqueda); b != "" {
		query += ` WHERE nombre_em ILIKE $1`
		args = append(args, "%"+b+"%")
	}
	query += ` ORDER BY nombre_em ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var empresas []Empresa
	for rows.Next() {
		var e Empresa
		if err := rows.Scan(&e.ID, &e.CreadoEn, &e.IDUsuario, &e.Nombre, &e.RFC, &e.Giro, &e.SitioWeb); err != nil {
			return nil, err
		}
		empresas = append(empresas, e)
	}
	return empresas, rows.Err()
}

// Obtener recupera una empresa por id.
func (r *Empresas) Obtener(ctx context.Context, id int64) (*Empresa, error) {
	const query = `
        SELECT ` + columnasEmpresa + `
        FROM empresas
        WHERE id_empresa = $1
    `

	var e Empresa
	err := r.pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.CreadoEn, &e.IDUsuario, &e.Nombre, &e.RFC, &e.Giro, &e.SitioWeb)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	return &e, nil
}

// Crear inserta una empresa nueva.
func (r *Empresas) Crear(ctx context.Context, input EmpresaInput) (*Empresa, error) {
	const query = `
        INSERT INTO empresas (nombre_em, rfc, giro, sitio_web)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + columnasEmpresa + `
    `

	var e Empresa
	err := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Nombre),
		nuloSiVacio(input.RFC),
		nuloSiVacio(input.Giro),
		nuloSiVacio(input.SitioWeb),
	).Scan(&e.ID, &e.CreadoEn, &e.IDUsuario, &e.Nombre, &e.RFC, &e.Giro, &e.SitioWeb)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Actualizar modifica los campos editables.
func (r *Empresas) Actualizar(ctx context.Context, id int64, input EmpresaInput) (*Empresa, error) {
	const query = `
        UPDATE empresas
        SET nombre_em = $2, rfc = $3, giro = $4, sitio_web = $5
        WHERE id_empresa = $1
        RETURNING ` + columnasEmpresa + `
    `

	var e Empresa
	err := r.pool.QueryRow(ctx, query,
		id,
		strings.TrimSpace(input.Nombre),
		nuloSiVacio(input.RFC),
		nuloSiVacio(input.Giro),
		nuloSiVacio(input.SitioWeb),
	).Scan(&e.ID, &e.CreadoEn, &e.IDUsuario, &e.Nombre, &e.RFC, &e.Giro, &e.SitioWeb)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	return &e, nil
}

// Eliminar borra la empresa.
func (r *Empresas) Eliminar(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM empresas WHERE id_empresa = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoEncontrado
	}
	return nil
}

// Contar devuelve el total de empresas registradas.
func (r *Empresas) Contar(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM empresas`).Scan(&total)
	return total, err
}

func nuloSiVacio(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
