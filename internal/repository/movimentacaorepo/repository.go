package movimentacaorepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"casamattos/internal/domain"
	"casamattos/internal/errors"
	"casamattos/internal/pkg/database"
	"casamattos/internal/pkg/logger"
)

// MovimentacaoRepository grava o histórico de movimentações de estoque.
type MovimentacaoRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

func NewMovimentacaoRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *MovimentacaoRepository {
	return &MovimentacaoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Registrar insere a movimentação. Um ID é gerado quando não informado.
func (r *MovimentacaoRepository) Registrar(ctx context.Context, m domain.Movimentacao) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	_, err := r.DB.ExecContext(ctxTimeout, `
        INSERT INTO movimentacoes (id, tipo, id_produto, quantidade, id_lista, id_enderecamento, id_usuario)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, string(m.Tipo), m.ProdutoID, m.Quantidade, m.ListaID, m.EnderecamentoID, m.UsuarioID,
	)
	if err != nil {
		r.logger.Error("Falha ao registrar movimentação.", err)
		return errors.NewDBError("Falha ao registrar movimentação", err)
	}

	r.logger.Debug("Movimentação registrada.", map[string]interface{}{
		"id": m.ID, "tipo": m.Tipo, "produto_id": m.ProdutoID, "quantidade": m.Quantidade,
	})
	return nil
}

// ListarPorProduto retorna as últimas movimentações de um produto, mais recentes primeiro.
func (r *MovimentacaoRepository) ListarPorProduto(ctx context.Context, produtoID int64, limite int) ([]domain.Movimentacao, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `
        SELECT id, tipo, id_produto, quantidade, id_lista, id_enderecamento, id_usuario, created_at
        FROM movimentacoes
        WHERE id_produto = $1
        ORDER BY created_at DESC
        LIMIT $2`, produtoID, limite)
	if err != nil {
		r.logger.Error("Falha ao listar movimentações.", err)
		return nil, errors.NewDBError("Falha ao listar movimentações", err)
	}
	defer rows.Close()

	movs := []domain.Movimentacao{}
	for rows.Next() {
		var m domain.Movimentacao
		var tipo string
		var lista, endereco, usuario sql.NullInt64
		if err := rows.Scan(&m.ID, &tipo, &m.ProdutoID, &m.Quantidade, &lista, &endereco, &usuario, &m.CreatedAt); err != nil {
			return nil, errors.NewDBError("Falha ao mapear movimentações do DB", err)
		}
		m.Tipo = domain.TipoMovimentacao(tipo)
		m.ListaID = int64Ptr(lista)
		m.EnderecamentoID = int64Ptr(endereco)
		m.UsuarioID = int64Ptr(usuario)
		movs = append(movs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de movimentações", err)
	}
	return movs, nil
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
