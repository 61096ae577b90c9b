package perfil

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columnas = "id, created_at, user_id, nombre, apellido, email, perfil, activo"

// Repository proporciona acceso a la tabla usuarios del backend remoto.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// PorEmail recupera el perfil por email, insensible a mayúsculas.
func (r *Repository) PorEmail(ctx context.Context, email string) (*Usuario, error) {
	const query = `
        SELECT ` + columnas + `
        FROM usuarios
        WHERE lower(email) = $1
    `

	normalizado := strings.ToLower(strings.TrimSpace(email))
	row := r.pool.QueryRow(ctx, query, normalizado)
	return escanear(row)
}

// Listar devuelve todos los usuarios registrados.
func (r *Repository) Listar(ctx context.Context) ([]Usuario, error) {
	const query = `
        SELECT ` + columnas + `
        FROM usuarios
        ORDER BY created_at ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := escanear(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, *u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return usuarios, nil
}

// Crear inserta la fila del perfil. La cuenta en el proveedor se crea aparte.
func (r *Repository) Crear(ctx context.Context, input CrearUsuarioInput) (*Usuario, error) {
	const query = `
        INSERT INTO usuarios (user_id, nombre, apellido, email, perfil, activo)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + columnas + `
    `

	row := r.pool.QueryRow(ctx, query,
		nuloSiVacio(input.UserID),
		strings.TrimSpace(input.Nombre),
		strings.TrimSpace(input.Apellido),
		strings.ToLower(strings.TrimSpace(input.Email)),
		strings.TrimSpace(input.Perfil),
		input.Activo,
	)

	u, err := escanear(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailDuplicado
		}
		return nil, err
	}
	return u, nil
}

// Actualizar modifica nombre, apellido, perfil y estado activo.
func (r *Repository) Actualizar(ctx context.Context, input ActualizarUsuarioInput) (*Usuario, error) {
	const query = `
        UPDATE usuarios
        SET nombre = $2,
            apellido = $3,
            perfil = $4,
            activo = $5
        WHERE id = $1
        RETURNING ` + columnas + `
    `

	row := r.pool.QueryRow(ctx, query,
		input.ID,
		strings.TrimSpace(input.Nombre),
		strings.TrimSpace(input.Apellido),
		strings.TrimSpace(input.Perfil),
		input.Activo,
	)
	return escanear(row)
}

// Eliminar borra la fila del perfil y devuelve el user_id del proveedor, si existe.
func (r *Repository) Eliminar(ctx context.Context, id int64) (string, error) {
	const query = `DELETE FROM usuarios WHERE id = $1 RETURNING user_id`

	var userID *string
	if err := r.pool.QueryRow(ctx, query, id).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoEncontrado
		}
		return "", err
	}
	if userID == nil {
		return "", nil
	}
	return *userID, nil
}

func escanear(row pgx.Row) (*Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.CreadoEn, &u.UserID, &u.Nombre, &u.Apellido, &u.Email, &u.Perfil, &u.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	return &u, nil
}

func nuloSiVacio(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
