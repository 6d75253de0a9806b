package enderecamentorepo

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

// EnderecamentoRepository implementa domain.EnderecamentoRepository sobre PostgreSQL.
type EnderecamentoRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewEnderecamentoRepository cria e retorna uma nova instância do Repositório de Endereçamentos.
func NewEnderecamentoRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *EnderecamentoRepository {
	return &EnderecamentoRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const colunas = `e.id, e.tonalidade, e.bitola, e.lote, e.observacao, e.quant_caixas, e.disponivel,
        e.id_produto, e.id_predio, e.id_lista, e.quant_movimentada, e.created_at, e.updated_at`

const colunasDetalhe = colunas + `, p.cod_interno, p.descricao, p.cod_barras, p.cod_fabricante, pr.nome, r.nome`

const joinDetalhe = `
        FROM enderecamentos e
        JOIN produtos p ON p.id = e.id_produto
        JOIN predios pr ON pr.id = e.id_predio
        JOIN ruas r ON r.id = pr.id_rua`

type scanner interface {
	Scan(dest ...interface{}) error
}

// linha agrupa as colunas anuláveis lidas do DB.
type linha struct {
	lote, observacao sql.NullString
	quantCaixas      sql.NullInt64
	idLista          sql.NullInt64
	quantMovimentada sql.NullInt64
}

func (l *linha) destinos(e *domain.Enderecamento) []interface{} {
	return []interface{}{
		&e.ID, &e.Tonalidade, &e.Bitola, &l.lote, &l.observacao, &l.quantCaixas, &e.Disponivel,
		&e.IDProduto, &e.IDPredio, &l.idLista, &l.quantMovimentada, &e.CreatedAt, &e.UpdatedAt,
	}
}

func (l *linha) aplicar(e *domain.Enderecamento) {
	e.Lote = stringPtr(l.lote)
	e.Observacao = stringPtr(l.observacao)
	e.QuantCaixas = intPtr(l.quantCaixas)
	e.QuantMovimentada = intPtr(l.quantMovimentada)
	if l.idLista.Valid {
		e.Lista = domain.NaLista(l.idLista.Int64)
	} else {
		e.Lista = domain.SemLista()
	}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func scanEnderecamento(row scanner) (domain.Enderecamento, error) {
	var e domain.Enderecamento
	var l linha
	if err := row.Scan(l.destinos(&e)...); err != nil {
		return domain.Enderecamento{}, err
	}
	l.aplicar(&e)
	return e, nil
}

func scanDetalhado(row scanner) (domain.EnderecamentoDetalhado, error) {
	var d domain.EnderecamentoDetalhado
	var l linha
	var codBarras, codFabricante sql.NullString
	dest := append(l.destinos(&d.Enderecamento),
		&d.ProdutoCodInterno, &d.ProdutoDescricao, &codBarras, &codFabricante, &d.PredioNome, &d.RuaNome)
	if err := row.Scan(dest...); err != nil {
		return domain.EnderecamentoDetalhado{}, err
	}
	l.aplicar(&d.Enderecamento)
	d.ProdutoCodBarras = codBarras.String
	d.ProdutoCodFabricante = codFabricante.String
	return d, nil
}

// Criar insere um novo endereçamento. Um endereçamento nasce livre e disponível.
func (r *EnderecamentoRepository) Criar(ctx context.Context, e domain.Enderecamento) (domain.Enderecamento, error) {
	r.logger.Debug("Iniciando Criar endereçamento no repositório.", map[string]interface{}{
		"id_produto": e.IDProduto, "id_predio": e.IDPredio,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO enderecamentos AS e (tonalidade, bitola, lote, observacao, quant_caixas, disponivel, id_produto, id_predio)
        VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
        RETURNING ` + colunas

	created, err := scanEnderecamento(r.DB.QueryRowContext(ctxTimeout, query,
		e.Tonalidade, e.Bitola, e.Lote, e.Observacao, e.QuantCaixas, e.IDProduto, e.IDPredio,
	))
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.Enderecamento{}, errors.NewNotFoundError("Produto ou prédio informado não existe.")
		}
		r.logger.Error("Falha ao inserir endereçamento no DB.", err)
		return domain.Enderecamento{}, errors.NewDBError("Falha ao criar endereçamento", err)
	}

	r.logger.Info("Endereçamento criado com sucesso.", map[string]interface{}{"id": created.ID})
	return created, nil
}

// BuscarPorID busca um endereçamento pelo ID.
func (r *EnderecamentoRepository) BuscarPorID(ctx context.Context, id int64) (domain.Enderecamento, error) {
	return r.buscar(ctx, id, false)
}

// BuscarParaAtualizacao busca o endereçamento com SELECT ... FOR UPDATE.
func (r *EnderecamentoRepository) BuscarParaAtualizacao(ctx context.Context, id int64) (domain.Enderecamento, error) {
	return r.buscar(ctx, id, true)
}

func (r *EnderecamentoRepository) buscar(ctx context.Context, id int64, forUpdate bool) (domain.Enderecamento, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + colunas + ` FROM enderecamentos e WHERE e.id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	e, err := scanEnderecamento(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		r.logger.Info("Endereçamento não encontrado.", map[string]interface{}{"id": id})
		return domain.Enderecamento{}, errors.NewNotFoundError(fmt.Sprintf("Endereçamento com ID %d não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar endereçamento no DB.", err)
		return domain.Enderecamento{}, errors.NewDBError("Falha ao buscar endereçamento", err)
	}
	return e, nil
}

// Atualizar grava os atributos descritivos. Lista, disponibilidade e quant_movimentada
// têm operações próprias e não são tocados aqui.
func (r *EnderecamentoRepository) Atualizar(ctx context.Context, e domain.Enderecamento) (domain.Enderecamento, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE enderecamentos AS e
        SET tonalidade = $1, bitola = $2, lote = $3, observacao = $4, quant_caixas = $5,
            id_produto = $6, id_predio = $7, updated_at = now()
        WHERE e.id = $8
        RETURNING ` + colunas

	updated, err := scanEnderecamento(r.DB.QueryRowContext(ctxTimeout, query,
		e.Tonalidade, e.Bitola, e.Lote, e.Observacao, e.QuantCaixas, e.IDProduto, e.IDPredio, e.ID,
	))
	if err == sql.ErrNoRows {
		return domain.Enderecamento{}, errors.NewNotFoundError(fmt.Sprintf("Endereçamento com ID %d não encontrado.", e.ID))
	}
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return domain.Enderecamento{}, errors.NewNotFoundError("Produto ou prédio informado não existe.")
		}
		r.logger.Error("Falha ao atualizar endereçamento no DB.", err)
		return domain.Enderecamento{}, errors.NewDBError("Falha ao atualizar endereçamento", err)
	}

	r.logger.Info("Endereçamento atualizado.", map[string]interface{}{"id": updated.ID})
	return updated, nil
}

// Excluir remove o endereçamento.
func (r *EnderecamentoRepository) Excluir(ctx context.Context, id int64) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM enderecamentos WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao excluir endereçamento.", err)
		return errors.NewDBError("Falha ao excluir endereçamento", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Endereçamento com ID %d não encontrado.", id))
	}

	r.logger.Info("Endereçamento excluído.", map[string]interface{}{"id": id})
	return nil
}

// ListarDisponiveis retorna os endereçamentos disponíveis e fora de qualquer lista.
func (r *EnderecamentoRepository) ListarDisponiveis(ctx context.Context) ([]domain.EnderecamentoDetalhado, error) {
	return r.Pesquisar(ctx, domain.EnderecamentoFiltro{ApenasLivres: true})
}

// Pesquisar filtra endereçamentos por atributos do produto.
func (r *EnderecamentoRepository) Pesquisar(ctx context.Context, filtro domain.EnderecamentoFiltro) ([]domain.EnderecamentoDetalhado, error) {
	r.logger.Debug("Iniciando Pesquisar endereçamentos.", map[string]interface{}{
		"cod_barras": filtro.CodBarras, "descricao": filtro.Descricao, "apenas_livres": filtro.ApenasLivres,
	})

	var where []string
	var args []interface{}
	if filtro.ApenasLivres {
		where = append(where, "e.disponivel = TRUE", "e.id_lista IS NULL")
	}
	if filtro.CodInterno != nil {
		args = append(args, *filtro.CodInterno)
		where = append(where, fmt.Sprintf("p.cod_interno = $%d", len(args)))
	}
	if filtro.CodBarras != "" {
		args = append(args, filtro.CodBarras)
		where = append(where, fmt.Sprintf("p.cod_barras = $%d", len(args)))
	}
	if filtro.CodFabricante != "" {
		args = append(args, filtro.CodFabricante)
		where = append(where, fmt.Sprintf("p.cod_fabricante = $%d", len(args)))
	}
	if filtro.Descricao != "" {
		args = append(args, "%"+filtro.Descricao+"%")
		where = append(where, fmt.Sprintf("p.descricao ILIKE $%d", len(args)))
	}

	query := `SELECT ` + colunasDetalhe + joinDetalhe
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY e.id`

	return r.listarDetalhado(ctx, query, args...)
}

// ListarPorProduto retorna todos os endereçamentos de um produto.
func (r *EnderecamentoRepository) ListarPorProduto(ctx context.Context, produtoID int64) ([]domain.Enderecamento, error) {
	return r.listar(ctx, `SELECT `+colunas+` FROM enderecamentos e WHERE e.id_produto = $1 ORDER BY e.id`, produtoID)
}

// ListarPorLista retorna os membros de uma lista com os dados de exibição.
func (r *EnderecamentoRepository) ListarPorLista(ctx context.Context, listaID int64) ([]domain.EnderecamentoDetalhado, error) {
	query := `SELECT ` + colunasDetalhe + joinDetalhe + ` WHERE e.id_lista = $1 ORDER BY e.id`
	return r.listarDetalhado(ctx, query, listaID)
}

// ListarPorListaParaAtualizacao bloqueia os membros da lista, em ordem de id.
func (r *EnderecamentoRepository) ListarPorListaParaAtualizacao(ctx context.Context, listaID int64) ([]domain.Enderecamento, error) {
	return r.listar(ctx, `SELECT `+colunas+` FROM enderecamentos e WHERE e.id_lista = $1 ORDER BY e.id FOR UPDATE`, listaID)
}

func (r *EnderecamentoRepository) listar(ctx context.Context, query string, args ...interface{}) ([]domain.Enderecamento, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar endereçamentos.", err)
		return nil, errors.NewDBError("Falha ao listar endereçamentos", err)
	}
	defer rows.Close()

	itens := []domain.Enderecamento{}
	for rows.Next() {
		e, err := scanEnderecamento(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear endereçamentos do DB", err)
		}
		itens = append(itens, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de endereçamentos", err)
	}
	return itens, nil
}

func (r *EnderecamentoRepository) listarDetalhado(ctx context.Context, query string, args ...interface{}) ([]domain.EnderecamentoDetalhado, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar endereçamentos detalhados.", err)
		return nil, errors.NewDBError("Falha ao listar endereçamentos", err)
	}
	defer rows.Close()

	itens := []domain.EnderecamentoDetalhado{}
	for rows.Next() {
		d, err := scanDetalhado(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear endereçamentos do DB", err)
		}
		itens = append(itens, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDBError("Erro após iteração de endereçamentos", err)
	}
	return itens, nil
}

// VincularLista associa o endereçamento à lista somente se ele ainda estiver livre.
// O UPDATE condicional garante que dois vínculos concorrentes não tenham sucesso juntos.
func (r *EnderecamentoRepository) VincularLista(ctx context.Context, id, listaID int64) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.DB.ExecContext(ctxTimeout, `
        UPDATE enderecamentos SET id_lista = $1, updated_at = now()
        WHERE id = $2 AND id_lista IS NULL`, listaID, id)
	if err != nil {
		r.logger.Error("Falha ao vincular endereçamento à lista.", err)
		return false, errors.NewDBError("Falha ao vincular endereçamento", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	return n == 1, nil
}

// DesvincularLista torna o endereçamento livre.
func (r *EnderecamentoRepository) DesvincularLista(ctx context.Context, id int64) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout, `
        UPDATE enderecamentos SET id_lista = NULL, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao desvincular endereçamento da lista.", err)
		return errors.NewDBError("Falha ao desvincular endereçamento", err)
	}
	return nil
}

// DesvincularTodos libera todos os membros da lista (usado na exclusão da lista).
func (r *EnderecamentoRepository) DesvincularTodos(ctx context.Context, listaID int64) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout, `
        UPDATE enderecamentos SET id_lista = NULL, updated_at = now() WHERE id_lista = $1`, listaID)
	if err != nil {
		r.logger.Error("Falha ao desvincular endereçamentos da lista.", err)
		return errors.NewDBError("Falha ao desvincular endereçamentos", err)
	}
	return nil
}

// AtualizarDisponibilidade grava a disponibilidade e a quantidade movimentada.
func (r *EnderecamentoRepository) AtualizarDisponibilidade(ctx context.Context, id int64, disponivel bool, quantMovimentada *int) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout, `
        UPDATE enderecamentos SET disponivel = $1, quant_movimentada = $2, updated_at = now()
        WHERE id = $3`, disponivel, quantMovimentada, id)
	if err != nil {
		r.logger.Error("Falha ao atualizar disponibilidade do endereçamento.", err)
		return errors.NewDBError("Falha ao atualizar disponibilidade", err)
	}
	return nil
}
