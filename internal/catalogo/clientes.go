package catalogo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columnasCliente = "id, empresa_admin, nombre_contacto, cargo, email, telefono, temas_suscrit, estado, creado_en"

// Clientes accede a la tabla clientes.
type Clientes struct {
	pool *pgxpool.Pool
}

func NewClientes(pool *pgxpool.Pool) *Clientes {
	return &Clientes{pool: pool}
}

// Listar devuelve una página de clientes con el total exacto. Filtros:
// igualdad sobre estado y patrón sobre nombre o email.
func (r *Clientes) Listar(ctx context.Context, filtro FiltroClientes) (*Pagina[Cliente], error) {
	if filtro.PorPagina <= 0 {
		filtro.PorPagina = 20
	}
	if filtro.Pagina <= 0 {
		filtro.Pagina = 1
	}

	var condiciones []string
	var args []any
	if e := strings.TrimSpace(filtro.Estado); e != "" {
		args = append(args, e)
		condiciones = append(condiciones, fmt.Sprintf("estado = $%d", len(args)))
	}
	if b := strings.TrimSpace(filtro.Busqueda); b != "" {
		args = append(args, "%"+b+"%")
		condiciones = append(condiciones, fmt.Sprintf("(nombre_contacto ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(condiciones) > 0 {
		where = " WHERE " + strings.Join(condiciones, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM clientes"+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := "SELECT " + columnasCliente + " FROM clientes" + where +
		fmt.Sprintf(" ORDER BY creado_en DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filtro.PorPagina, (filtro.Pagina-1)*filtro.PorPagina)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clientes []Cliente
	for rows.Next() {
		c, err := escanearCliente(rows)
		if err != nil {
			return nil, err
		}
		clientes = append(clientes, *c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return &Pagina[Cliente]{
		Elementos: clientes,
		Total:     total,
		Pagina:    filtro.Pagina,
		PorPagina: filtro.PorPagina,
	}, nil
}

// Obtener recupera un cliente por id.
func (r *Clientes) Obtener(ctx context.Context, id string) (*Cliente, error) {
	const query = `
        SELECT ` + columnasCliente + `
        FROM clientes
        WHERE id = $1
    `
	return escanearCliente(r.pool.QueryRow(ctx, query, id))
}

// Crear inserta un cliente nuevo con id generado.
func (r *Clientes) Crear(ctx context.Context, input ClienteInput) (*Cliente, error) {
	const query = `
        INSERT INTO clientes (id, empresa_admin, nombre_contacto, cargo, email, telefono, temas_suscrit, estado)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + columnasCliente + `
    `

	estado := strings.TrimSpace(input.Estado)
	if estado == "" {
		estado = "activo"
	}

	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		input.EmpresaAdmin,
		strings.TrimSpace(input.NombreContacto),
		nuloSiVacio(input.Cargo),
		strings.ToLower(strings.TrimSpace(input.Email)),
		nuloSiVacio(input.Telefono),
		input.TemasSuscritos,
		estado,
	)
	return escanearCliente(row)
}

// Actualizar modifica los campos editables.
func (r *Clientes) Actualizar(ctx context.Context, id string, input ClienteInput) (*Cliente, error) {
	const query = `
        UPDATE clientes
        SET empresa_admin = $2,
            nombre_contacto = $3,
            cargo = $4,
            email = $5,
            telefono = $6,
            temas_suscrit = $7,
            estado = $8
        WHERE id = $1
        RETURNING ` + columnasCliente + `
    `

	row := r.pool.QueryRow(ctx, query,
		id,
		input.EmpresaAdmin,
		strings.TrimSpace(input.NombreContacto),
		nuloSiVacio(input.Cargo),
		strings.ToLower(strings.TrimSpace(input.Email)),
		nuloSiVacio(input.Telefono),
		input.TemasSuscritos,
		strings.TrimSpace(input.Estado),
	)
	return escanearCliente(row)
}

// Eliminar borra el cliente.
func (r *Clientes) Eliminar(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoEncontrado
	}
	return nil
}

// Contar devuelve el total de clientes registrados.
func (r *Clientes) Contar(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM clientes`).Scan(&total)
	return total, err
}

func escanearCliente(row pgx.Row) (*Cliente, error) {
	var c Cliente
	err := row.Scan(&c.ID, &c.EmpresaAdmin, &c.NombreContacto, &c.Cargo, &c.Email, &c.Telefono, &c.TemasSuscritos, &c.Estado, &c.CreadoEn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	return &c, nil
}
