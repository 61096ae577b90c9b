package documentos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columnas = `id_senado_do, created_at, sinopsis, iniciativa_text, iniciativa_id, gaceta,
        link_iniciativa, fuente, imagen_link, temas, personas, partidos, leyes, resumen,
        analisis, objeto, correspondier, tipo`

// Repository accede a la tabla senado.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Listar devuelve la página pedida ordenada por captura descendente, con el
// total exacto para el paginador.
func (r *Repository) Listar(ctx context.Context, filtro Filtro) (*Resultado, error) {
	if filtro.PorPagina <= 0 {
		filtro.PorPagina = 10
	}
	if filtro.Pagina <= 0 {
		filtro.Pagina = 1
	}

	var condiciones []string
	var args []any
	if f := strings.TrimSpace(filtro.Fuente); f != "" {
		args = append(args, strings.ToLower(f))
		condiciones = append(condiciones, fmt.Sprintf("fuente = $%d", len(args)))
	}
	if filtro.FechaDesde != nil {
		args = append(args, *filtro.FechaDesde)
		condiciones = append(condiciones, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filtro.FechaHasta != nil {
		args = append(args, *filtro.FechaHasta)
		condiciones = append(condiciones, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if b := strings.TrimSpace(filtro.Busqueda); b != "" {
		args = append(args, "%"+b+"%")
		condiciones = append(condiciones, fmt.Sprintf("(sinopsis ILIKE $%d OR iniciativa_text ILIKE $%d OR temas ILIKE $%d)", len(args), len(args), len(args)))
	}

	where := ""
	if len(condiciones) > 0 {
		where = " WHERE " + strings.Join(condiciones, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM senado"+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := "SELECT " + columnas + " FROM senado" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filtro.PorPagina, (filtro.Pagina-1)*filtro.PorPagina)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Documento
	for rows.Next() {
		d, err := escanear(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return &Resultado{
		Documentos: docs,
		Total:      total,
		Pagina:     filtro.Pagina,
		PorPagina:  filtro.PorPagina,
	}, nil
}

// Obtener recupera un documento por id.
func (r *Repository) Obtener(ctx context.Context, id int64) (*Documento, error) {
	query := "SELECT " + columnas + " FROM senado WHERE id_senado_do = $1"
	return escanear(r.pool.QueryRow(ctx, query, id))
}

// Actualizar modifica los campos editables del documento.
func (r *Repository) Actualizar(ctx context.Context, id int64, input DocumentoInput) (*Documento, error) {
	query := `
        UPDATE senado
        SET sinopsis = $2, temas = $3, resumen = $4, analisis = $5, objeto = $6, tipo = $7
        WHERE id_senado_do = $1
        RETURNING ` + columnas

	row := r.pool.QueryRow(ctx, query,
		id,
		nuloSiVacio(input.Sinopsis),
		nuloSiVacio(input.Temas),
		nuloSiVacio(input.Resumen),
		nuloSiVacio(input.Analisis),
		nuloSiVacio(input.Objeto),
		nuloSiVacio(input.Tipo),
	)
	return escanear(row)
}

// Eliminar borra el documento capturado.
func (r *Repository) Eliminar(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM senado WHERE id_senado_do = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoEncontrado
	}
	return nil
}

// Contar devuelve el total de documentos capturados.
func (r *Repository) Contar(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM senado`).Scan(&total)
	return total, err
}

func escanear(row pgx.Row) (*Documento, error) {
	var d Documento
	err := row.Scan(
		&d.ID, &d.CreadoEn, &d.Sinopsis, &d.IniciativaText, &d.IniciativaID, &d.Gaceta,
		&d.LinkIniciativa, &d.Fuente, &d.ImagenLink, &d.Temas, &d.Personas, &d.Partidos,
		&d.Leyes, &d.Resumen, &d.Analisis, &d.Objeto, &d.Correspondier, &d.Tipo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	return &d, nil
}

func nuloSiVacio(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
