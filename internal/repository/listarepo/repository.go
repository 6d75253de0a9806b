package listarepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"casamattos/internal/domain"
	"casamattos/internal/errors"
	"casamattos/internal/pkg/database"
	"casamattos/internal/pkg/logger"
)

// ListaRepository implementa domain.ListaRepository sobre PostgreSQL.
// O estado da lista é persistido na coluna booleana 'disponivel'.
type ListaRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewListaRepository cria e retorna uma nova instância do Repositório de Listas.
func NewListaRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *ListaRepository {
	return &ListaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const listaColunas = `id, nome, disponivel, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLista(row scanner) (domain.Lista, error) {
	var l domain.Lista
	var disponivel bool
	if err := row.Scan(&l.ID, &l.Nome, &disponivel, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return domain.Lista{}, err
	}
	l.Status = domain.StatusDe(disponivel)
	return l, nil
}

// Criar insere uma nova lista aberta.
func (r *ListaRepository) Criar(ctx context.Context, l domain.Lista) (domain.Lista, error) {
	r.logger.Debug("Iniciando Criar lista no repositório.", map[string]interface{}{"nome": l.Nome})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `INSERT INTO listas (nome, disponivel) VALUES ($1, TRUE) RETURNING ` + listaColunas

	created, err := scanLista(r.DB.QueryRowContext(ctxTimeout, query, l.Nome))
	if err != nil {
		r.logger.Error("Falha ao inserir lista no DB.", err)
		return domain.Lista{}, errors.NewDBError("Falha ao criar lista", err)
	}

	r.logger.Info("Lista criada com sucesso.", map[string]interface{}{"id": created.ID, "nome": created.Nome})
	return created, nil
}

// BuscarPorID busca uma lista pelo ID.
func (r *ListaRepository) BuscarPorID(ctx context.Context, id int64) (domain.Lista, error) {
	return r.buscar(ctx, id, false)
}

// BuscarParaAtualizacao bloqueia a linha da lista com FOR UPDATE.
// Finalizações concorrentes da mesma lista são serializadas aqui.
func (r *ListaRepository) BuscarParaAtualizacao(ctx context.Context, id int64) (domain.Lista, error) {
	return r.buscar(ctx, id, true)
}

func (r *ListaRepository) buscar(ctx context.Context, id int64, forUpdate bool) (domain.Lista, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + listaColunas + ` FROM listas WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	l, err := scanLista(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		r.logger.Info("Lista não encontrada.", map[string]interface{}{"id": id})
		return domain.Lista{}, errors.NewNotFoundError(fmt.Sprintf("Lista com ID %d não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar lista no DB.", err)
		return domain.Lista{}, errors.NewDBError("Falha ao buscar lista", err)
	}
	return l, nil
}

// Listar retorna uma página de listas (mais recentes primeiro) e o total de registros.
func (r *ListaRepository) Listar(ctx context.Context, pagina, limite int) ([]domain.Lista, int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var total int
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM listas`).Scan(&total); err != nil {
		r.logger.Error("Falha ao contar listas.", err)
		return nil, 0, errors.NewDBError("Falha ao contar listas", err)
	}

	query := `SELECT ` + listaColunas + ` FROM listas ORDER BY id DESC LIMIT $1 OFFSET $2`
	listas, err := r.listar(ctxTimeout, query, limite, domain.Deslocamento(pagina, limite))
	if err != nil {
		return nil, 0, err
	}
	return listas, total, nil
}

// ListarAbertas retorna as listas que ainda aceitam endereçamentos.
func (r *ListaRepository) ListarAbertas(ctx context.Context) ([]domain.Lista, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	return r.listar(ctxTimeout, `SELECT `+listaColunas+` FROM listas WHERE disponivel = TRUE ORDER BY id DESC`)
}

func (r *ListaRepository) listar(ctx context.Context, query string, args ...interface{}) ([]domain.Lista, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar consulta de listas.", err)
		return nil, errors.NewDBError("Falha ao listar listas", err)
	}
	defer rows.Close()

	listas := []domain.Lista{}
	for rows.Next() {
		l, err := scanLista(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear listas do DB", err)
		}
		listas = append(listas, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de listas", err)
	}
	return listas, nil
}

// AtualizarStatus troca o estado da lista de 'de' para 'para' (compare-and-set).
func (r *ListaRepository) AtualizarStatus(ctx context.Context, id int64, de, para domain.StatusLista) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout, `
        UPDATE listas SET disponivel = $1, updated_at = now()
        WHERE id = $2 AND disponivel = $3`, para.Disponivel(), id, de.Disponivel())
	if err != nil {
		r.logger.Error("Falha ao atualizar status da lista.", err)
		return false, errors.NewDBError("Falha ao atualizar status da lista", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	r.logger.Info("Status da lista atualizado.", map[string]interface{}{
		"id": id, "de": de.String(), "para": para.String(), "aplicado": n == 1,
	})
	return n == 1, nil
}

// Renomear altera o nome da lista.
func (r *ListaRepository) Renomear(ctx context.Context, id int64, nome string) (domain.Lista, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `UPDATE listas SET nome = $1, updated_at = now() WHERE id = $2 RETURNING ` + listaColunas
	l, err := scanLista(r.DB.QueryRowContext(ctxTimeout, query, nome, id))
	if err == sql.ErrNoRows {
		return domain.Lista{}, errors.NewNotFoundError(fmt.Sprintf("Lista com ID %d não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao renomear lista.", err)
		return domain.Lista{}, errors.NewDBError("Falha ao renomear lista", err)
	}
	return l, nil
}

// Excluir remove a lista. Os membros devem ter sido desvinculados antes.
func (r *ListaRepository) Excluir(ctx context.Context, id int64) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM listas WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errors.NewInUseError("A lista ainda possui endereçamentos vinculados.")
		}
		r.logger.Error("Falha ao excluir lista.", err)
		return errors.NewDBError("Falha ao excluir lista", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Lista com ID %d não encontrada.", id))
	}

	r.logger.Info("Lista excluída.", map[string]interface{}{"id": id})
	return nil
}
