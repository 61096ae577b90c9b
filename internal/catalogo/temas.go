package catalogo

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gepdigital/consola/internal/db"
)

// Temas accede a las tablas temas y subtemas.
type Temas struct {
	pool *pgxpool.Pool
}

func NewTemas(pool *pgxpool.Pool) *Temas {
	return &Temas{pool: pool}
}

// Listar devuelve los temas con sus subtemas anidados.
func (r *Temas) Listar(ctx context.Context) ([]Tema, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id_tema, created_at, nombre_tema, desc_tema, id_usuario
        FROM temas
        ORDER BY nombre_tema ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var temas []Tema
	indice := make(map[int64]int)
	for rows.Next() {
		var t Tema
		if err := rows.Scan(&t.ID, &t.CreadoEn, &t.Nombre, &t.Descripcion, &t.IDUsuario); err != nil {
			return nil, err
		}
		indice[t.ID] = len(temas)
		temas = append(temas, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(temas) == 0 {
		return temas, nil
	}

	subRows, err := r.pool.Query(ctx, `
        SELECT id_subtema, created_at, id_tema, subtema_text, subtema_desc
        FROM subtemas
        ORDER BY subtema_text ASC
    `)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()

	for subRows.Next() {
		var s Subtema
		if err := subRows.Scan(&s.ID, &s.CreadoEn, &s.IDTema, &s.Texto, &s.Descripcion); err != nil {
			return nil, err
		}
		if i, ok := indice[s.IDTema]; ok {
			temas[i].Subtemas = append(temas[i].Subtemas, s)
		}
	}
	return temas, subRows.Err()
}

// CrearTema inserta un tema nuevo.
func (r *Temas) CrearTema(ctx context.Context, input TemaInput) (*Tema, error) {
	const query = `
        INSERT INTO temas (nombre_tema, desc_tema)
        VALUES ($1, $2)
        RETURNING id_tema, created_at, nombre_tema, desc_tema, id_usuario
    `

	var t Tema
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(input.Nombre), nuloSiVacio(input.Descripcion)).
		Scan(&t.ID, &t.CreadoEn, &t.Nombre, &t.Descripcion, &t.IDUsuario)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ActualizarTema modifica nombre y descripción.
func (r *Temas) ActualizarTema(ctx context.Context, id int64, input TemaInput) (*Tema, error) {
	const query = `
        UPDATE temas
        SET nombre_tema = $2, desc_tema = $3
        WHERE id_tema = $1
        RETURNING id_tema, created_at, nombre_tema, desc_tema, id_usuario
    `

	var t Tema
	err := r.pool.QueryRow(ctx, query, id, strings.TrimSpace(input.Nombre), nuloSiVacio(input.Descripcion)).
		Scan(&t.ID, &t.CreadoEn, &t.Nombre, &t.Descripcion, &t.IDUsuario)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoEncontrado
		}
		return nil, err
	}
	return &t, nil
}

// EliminarTema borra el tema y sus subtemas en una sola transacción.
func (r *Temas) EliminarTema(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM subtemas WHERE id_tema = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM temas WHERE id_tema = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNoEncontrado
		}
		return nil
	})
}

// ListarSubtemas devuelve los subtemas de un tema.
func (r *Temas) ListarSubtemas(ctx context.Context, idTema int64) ([]Subtema, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id_subtema, created_at, id_tema, subtema_text, subtema_desc
        FROM subtemas
        WHERE id_tema = $1
        ORDER BY subtema_text ASC
    `, idTema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtemas []Subtema
	for rows.Next() {
		var s Subtema
		if err := rows.Scan(&s.ID, &s.CreadoEn, &s.IDTema, &s.Texto, &s.Descripcion); err != nil {
			return nil, err
		}
		subtemas = append(subtemas, s)
	}
	return subtemas, rows.Err()
}

// CrearSubtema inserta un subtema bajo el tema indicado.
func (r *Temas) CrearSubtema(ctx context.Context, idTema int64, input SubtemaInput) (*Subtema, error) {
	const query = `
        INSERT INTO subtemas (id_tema, subtema_text, subtema_desc)
        VALUES ($1, $2, $3)
        RETURNING id_subtema, created_at, id_tema, subtema_text, subtema_desc
    `

	var s Subtema
	err := r.pool.QueryRow(ctx, query, idTema, strings.TrimSpace(input.Texto), nuloSiVacio(input.Descripcion)).
		Scan(&s.ID, &s.CreadoEn, &s.IDTema, &s.Texto, &s.Descripcion)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// EliminarSubtema borra un subtema.
func (r *Temas) EliminarSubtema(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subtemas WHERE id_subtema = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoEncontrado
	}
	return nil
}

// ContarTemas devuelve el total de temas registrados.
func (r *Temas) ContarTemas(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM temas`).Scan(&total)
	return total, err
}
