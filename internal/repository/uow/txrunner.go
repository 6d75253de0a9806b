package uow

import (
	"context"
	"database/sql"
	"time"

	"casamattos/internal/domain"
	"casamattos/internal/errors"
	"casamattos/internal/pkg/database"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/repository/enderecamentorepo"
	"casamattos/internal/repository/listarepo"
	"casamattos/internal/repository/localrepo"
	"casamattos/internal/repository/movimentacaorepo"
	"casamattos/internal/repository/produtorepo"
)

var _ domain.UnitOfWork = (*TxRunner)(nil)

// TxRunner executa callbacks dentro de uma transação PostgreSQL.
type TxRunner struct {
	db        *sql.DB
	dbTimeout time.Duration
	logger    logger.Logger
}

// NewTxRunner constrói o runner com o pool de conexões.
func NewTxRunner(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *TxRunner {
	return &TxRunner{db: db, dbTimeout: dbTimeout, logger: logger}
}

// NewRepositorios monta o conjunto de repositórios sobre q (*sql.DB ou *sql.Tx).
func NewRepositorios(q database.Querier, dbTimeout time.Duration, log logger.Logger) domain.Repositorios {
	return domain.Repositorios{
		Produtos:       produtorepo.NewProdutoRepository(q, dbTimeout, log),
		Enderecamentos: enderecamentorepo.NewEnderecamentoRepository(q, dbTimeout, log),
		Listas:         listarepo.NewListaRepository(q, dbTimeout, log),
		Locais:         localrepo.NewLocalRepository(q, dbTimeout, log),
		Movimentacoes:  movimentacaorepo.NewMovimentacaoRepository(q, dbTimeout, log),
	}
}

// Executar inicia uma transação, executa fn com repositórios atados a ela e faz Commit
// ou Rollback. Nenhuma repetição automática é feita em caso de falha.
func (r *TxRunner) Executar(ctx context.Context, fn func(ctx context.Context, repos domain.Repositorios) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação.", err)
		return errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, NewRepositorios(tx, r.dbTimeout, r.logger)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação.", err)
		return errors.NewDBError("Falha ao commitar transação", err)
	}
	return nil
}
