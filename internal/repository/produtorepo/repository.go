package produtorepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"casamattos/internal/domain"
	"casamattos/internal/errors"
	"casamattos/internal/pkg/database"
	"casamattos/internal/pkg/logger"
)

// ProdutoRepository implementa domain.ProdutoRepository sobre PostgreSQL.
// Funciona tanto com *sql.DB quanto com *sql.Tx (ver database.Querier).
type ProdutoRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewProdutoRepository cria e retorna uma nova instância do Repositório de Produtos.
func NewProdutoRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *ProdutoRepository {
	return &ProdutoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const produtoColunas = `id, cod_interno, descricao, deposito, estoque, quant_min_venda, custo,
        cod_barras, cod_fabricante, quant_caixas, id_fornecedor, version, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduto(row scanner) (domain.Produto, error) {
	var p domain.Produto
	var quantCaixas sql.NullInt64
	var idFornecedor sql.NullInt64
	err := row.Scan(
		&p.ID, &p.CodInterno, &p.Descricao, &p.Deposito, &p.Estoque, &p.QuantMinVenda, &p.Custo,
		&p.CodBarras, &p.CodFabricante, &quantCaixas, &idFornecedor, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Produto{}, err
	}
	if quantCaixas.Valid {
		q := int(quantCaixas.Int64)
		p.QuantCaixas = &q
	}
	if idFornecedor.Valid {
		id := idFornecedor.Int64
		p.IDFornecedor = &id
	}
	return p, nil
}

// Criar insere um novo produto.
func (r *ProdutoRepository) Criar(ctx context.Context, p domain.Produto) (domain.Produto, error) {
	r.logger.Debug("Iniciando Criar produto no repositório.", map[string]interface{}{"cod_interno": p.CodInterno})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO produtos (cod_interno, descricao, deposito, estoque, quant_min_venda, custo,
                              cod_barras, cod_fabricante, quant_caixas, id_fornecedor)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + produtoColunas

	created, err := scanProduto(r.DB.QueryRowContext(ctxTimeout, query,
		p.CodInterno, p.Descricao, p.Deposito, p.Estoque, p.QuantMinVenda, p.Custo,
		p.CodBarras, p.CodFabricante, p.QuantCaixas, p.IDFornecedor,
	))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.Produto{}, errors.NewConflictError(fmt.Sprintf("Já existe produto com código interno %d.", p.CodInterno))
		}
		if database.IsForeignKeyViolation(err) {
			return domain.Produto{}, errors.NewNotFoundError("Fornecedor informado não existe.")
		}
		r.logger.Error("Falha ao inserir produto no DB.", err)
		return domain.Produto{}, errors.NewDBError("Falha ao criar produto", err)
	}

	r.logger.Info("Produto criado com sucesso.", map[string]interface{}{"id": created.ID, "cod_interno": created.CodInterno})
	return created, nil
}

// BuscarPorID busca um produto pelo ID.
func (r *ProdutoRepository) BuscarPorID(ctx context.Context, id int64) (domain.Produto, error) {
	return r.buscar(ctx, id, false)
}

// BuscarParaAtualizacao busca o produto com SELECT ... FOR UPDATE.
// Só faz sentido dentro de uma transação.
func (r *ProdutoRepository) BuscarParaAtualizacao(ctx context.Context, id int64) (domain.Produto, error) {
	return r.buscar(ctx, id, true)
}

func (r *ProdutoRepository) buscar(ctx context.Context, id int64, forUpdate bool) (domain.Produto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + produtoColunas + ` FROM produtos WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanProduto(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		r.logger.Info("Produto não encontrado.", map[string]interface{}{"id": id})
		return domain.Produto{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %d não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.Produto{}, errors.NewDBError("Falha ao buscar produto", err)
	}
	return p, nil
}

// Listar retorna produtos paginados, filtrando por descrição e código de barras.
func (r *ProdutoRepository) Listar(ctx context.Context, filtro domain.ProdutoFiltro) ([]domain.Produto, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var where []string
	var args []interface{}
	if filtro.Descricao != "" {
		args = append(args, "%"+filtro.Descricao+"%")
		where = append(where, fmt.Sprintf("descricao ILIKE $%d", len(args)))
	}
	if filtro.CodBarras != "" {
		args = append(args, filtro.CodBarras)
		where = append(where, fmt.Sprintf("cod_barras = $%d", len(args)))
	}

	query := `SELECT ` + produtoColunas + ` FROM produtos`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filtro.Limite, domain.Deslocamento(filtro.Pagina, filtro.Limite))
	query += fmt.Sprintf(` ORDER BY cod_interno LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao executar Listar produtos.", err)
		return nil, errors.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	produtos := []domain.Produto{}
	for rows.Next() {
		p, err := scanProduto(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear produtos do DB", err)
		}
		produtos = append(produtos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de produtos", err)
	}
	return produtos, nil
}

// AtualizarQuantidades grava deposito/estoque com controle de concorrência otimista.
// A linha já deve ter sido lida com BuscarParaAtualizacao na mesma transação; o
// filtro por versão protege chamadores que não usaram o bloqueio.
func (r *ProdutoRepository) AtualizarQuantidades(ctx context.Context, p domain.Produto) (domain.Produto, error) {
	r.logger.Debug("Atualizando quantidades do produto.", map[string]interface{}{
		"id": p.ID, "deposito": p.Deposito, "estoque": p.Estoque, "version": p.Version,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE produtos
        SET deposito = $1, estoque = $2, version = version + 1, updated_at = now()
        WHERE id = $3 AND version = $4
        RETURNING ` + produtoColunas

	updated, err := scanProduto(r.DB.QueryRowContext(ctxTimeout, query, p.Deposito, p.Estoque, p.ID, p.Version))
	if err == sql.ErrNoRows {
		r.logger.Warn("Falha no controle de concorrência otimista (OCC). Versão do registro desatualizada.", map[string]interface{}{
			"id": p.ID, "expected_version": p.Version,
		})
		return domain.Produto{}, errors.NewConflictError("O produto foi modificado por outra operação. Tente novamente.")
	}
	if err != nil {
		if database.IsCheckViolation(err) {
			return domain.Produto{}, errors.NewInsufficientStockError("A movimentação deixaria quantidade negativa.")
		}
		r.logger.Error("Falha ao atualizar quantidades do produto.", err)
		return domain.Produto{}, errors.NewDBError("Falha ao atualizar estoque", err)
	}
	return updated, nil
}
