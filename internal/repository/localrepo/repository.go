package localrepo

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

// LocalRepository implementa as operações de ruas e prédios.
type LocalRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewLocalRepository cria e retorna uma nova instância do Repositório de Locais.
func NewLocalRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *LocalRepository {
	return &LocalRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// CriarRua insere uma nova rua no banco de dados.
func (r *LocalRepository) CriarRua(ctx context.Context, rua domain.Rua) (domain.Rua, error) {
	r.logger.Debug("Iniciando CriarRua no repositório.", map[string]interface{}{"nome": rua.Nome})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO ruas (nome)
        VALUES ($1)
        RETURNING id, nome, created_at, updated_at`

	err := r.DB.QueryRowContext(ctxTimeout, query, rua.Nome).Scan(
		&rua.ID, &rua.Nome, &rua.CreatedAt, &rua.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.Rua{}, errors.NewConflictError(fmt.Sprintf("Já existe uma rua chamada '%s'.", rua.Nome))
		}
		r.logger.Error("Falha ao inserir rua no DB.", err)
		return domain.Rua{}, errors.NewDBError("Falha ao criar rua", err)
	}

	r.logger.Info("Rua criada com sucesso.", map[string]interface{}{"id": rua.ID, "nome": rua.Nome})
	return rua, nil
}

// BuscarRuaPorID busca uma rua pelo ID.
func (r *LocalRepository) BuscarRuaPorID(ctx context.Context, id int64) (domain.Rua, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var rua domain.Rua
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT id, nome, created_at, updated_at FROM ruas WHERE id = $1`, id,
	).Scan(&rua.ID, &rua.Nome, &rua.CreatedAt, &rua.UpdatedAt)

	if err == sql.ErrNoRows {
		r.logger.Info("Rua não encontrada.", map[string]interface{}{"id": id})
		return domain.Rua{}, errors.NewNotFoundError(fmt.Sprintf("Rua com ID %d não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar rua no DB.", err)
		return domain.Rua{}, errors.NewDBError("Falha ao buscar rua", err)
	}
	return rua, nil
}

// ListarRuas busca todas as ruas em ordem alfabética.
func (r *LocalRepository) ListarRuas(ctx context.Context) ([]domain.Rua, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `SELECT id, nome, created_at, updated_at FROM ruas ORDER BY nome`)
	if err != nil {
		r.logger.Error("Falha ao executar ListarRuas query.", err)
		return nil, errors.NewDBError("Falha ao buscar ruas", err)
	}
	defer rows.Close()

	ruas := []domain.Rua{}
	for rows.Next() {
		var rua domain.Rua
		if err := rows.Scan(&rua.ID, &rua.Nome, &rua.CreatedAt, &rua.UpdatedAt); err != nil {
			r.logger.Error("Falha ao escanear linha de rua.", err)
			return nil, errors.NewDBError("Falha ao mapear ruas do DB", err)
		}
		ruas = append(ruas, rua)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de ruas", err)
	}
	return ruas, nil
}

// CriarPredio insere um prédio vinculado a uma rua existente.
func (r *LocalRepository) CriarPredio(ctx context.Context, predio domain.Predio) (domain.Predio, error) {
	r.logger.Debug("Iniciando CriarPredio no repositório.", map[string]interface{}{"nome": predio.Nome, "id_rua": predio.IDRua})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO predios (nome, id_rua)
        VALUES ($1, $2)
        RETURNING id, nome, id_rua, created_at, updated_at`

	err := r.DB.QueryRowContext(ctxTimeout, query, predio.Nome, predio.IDRua).Scan(
		&predio.ID, &predio.Nome, &predio.IDRua, &predio.CreatedAt, &predio.UpdatedAt,
	)
	if err != nil {
		switch {
		case database.IsForeignKeyViolation(err):
			return domain.Predio{}, errors.NewNotFoundError(fmt.Sprintf("Rua com ID %d não encontrada.", predio.IDRua))
		case database.IsUniqueViolation(err):
			return domain.Predio{}, errors.NewConflictError(fmt.Sprintf("A rua já possui um prédio chamado '%s'.", predio.Nome))
		}
		r.logger.Error("Falha ao inserir prédio no DB.", err)
		return domain.Predio{}, errors.NewDBError("Falha ao criar prédio", err)
	}

	r.logger.Info("Prédio criado com sucesso.", map[string]interface{}{"id": predio.ID, "nome": predio.Nome})
	return predio, nil
}

// BuscarPredioPorID busca um prédio pelo ID.
func (r *LocalRepository) BuscarPredioPorID(ctx context.Context, id int64) (domain.Predio, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var p domain.Predio
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT id, nome, id_rua, created_at, updated_at FROM predios WHERE id = $1`, id,
	).Scan(&p.ID, &p.Nome, &p.IDRua, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return domain.Predio{}, errors.NewNotFoundError(fmt.Sprintf("Prédio com ID %d não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar prédio no DB.", err)
		return domain.Predio{}, errors.NewDBError("Falha ao buscar prédio", err)
	}
	return p, nil
}

// ListarPredios lista os prédios, opcionalmente de uma única rua.
func (r *LocalRepository) ListarPredios(ctx context.Context, idRua *int64) ([]domain.Predio, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, nome, id_rua, created_at, updated_at FROM predios`
	var args []interface{}
	if idRua != nil {
		query += ` WHERE id_rua = $1`
		args = append(args, *idRua)
	}
	query += ` ORDER BY id_rua, nome`

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar ListarPredios query.", err)
		return nil, errors.NewDBError("Falha ao buscar prédios", err)
	}
	defer rows.Close()

	predios := []domain.Predio{}
	for rows.Next() {
		var p domain.Predio
		if err := rows.Scan(&p.ID, &p.Nome, &p.IDRua, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.NewDBError("Falha ao mapear prédios do DB", err)
		}
		predios = append(predios, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de prédios", err)
	}
	return predios, nil
}
