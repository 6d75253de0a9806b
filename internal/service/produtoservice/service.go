package produtoservice

import (
	"context"
	"strings"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
)

// ProdutoRepository define o contrato (interface) que este Serviço espera da camada de Persistência.
type ProdutoRepository interface {
	Criar(ctx context.Context, p domain.Produto) (domain.Produto, error)
	BuscarPorID(ctx context.Context, id int64) (domain.Produto, error)
	Listar(ctx context.Context, filtro domain.ProdutoFiltro) ([]domain.Produto, error)
}

// Service é a estrutura que implementa o cadastro de produtos.
// Quantidades só mudam depois da criação através do Livro de Estoque.
type Service struct {
	repo   ProdutoRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProdutoRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Criar cadastra um produto com as quantidades iniciais informadas.
func (s *Service) Criar(ctx context.Context, p domain.Produto, ator *domain.Ator) (domain.Produto, error) {
	s.logger.Debug("Iniciando criação de produto no serviço.", ator.LogFields(map[string]interface{}{"cod_interno": p.CodInterno}))

	p.Descricao = strings.TrimSpace(p.Descricao)
	p.CodBarras = strings.TrimSpace(p.CodBarras)
	p.CodFabricante = strings.TrimSpace(p.CodFabricante)

	if err := validarProduto(p); err != nil {
		s.logger.Warn("Falha na validação do produto.", map[string]interface{}{"cod_interno": p.CodInterno, "error": err.Error()})
		return domain.Produto{}, err
	}

	criado, err := s.repo.Criar(ctx, p)
	if err != nil {
		return domain.Produto{}, err
	}

	s.logger.Info("Produto criado com sucesso.", ator.LogFields(map[string]interface{}{"id": criado.ID, "cod_interno": criado.CodInterno}))
	return criado, nil
}

func validarProduto(p domain.Produto) error {
	if p.CodInterno <= 0 {
		return apperror.NewValidationError("O código interno deve ser um inteiro positivo.")
	}
	if p.Descricao == "" {
		return apperror.NewValidationError("A descrição do produto é obrigatória.")
	}
	if p.Deposito < 0 || p.Estoque < 0 {
		return apperror.NewValidationError("Depósito e estoque não podem ser negativos.")
	}
	if p.QuantMinVenda < 0 {
		return apperror.NewValidationError("A quantidade mínima de venda não pode ser negativa.")
	}
	if p.QuantCaixas != nil && *p.QuantCaixas <= 0 {
		return apperror.NewValidationError("A quantidade de caixas deve ser maior que zero.")
	}
	if p.Custo.Valid && p.Custo.Decimal.IsNegative() {
		return apperror.NewValidationError("O custo não pode ser negativo.")
	}
	return nil
}

// BuscarPorID busca um produto pelo ID.
func (s *Service) BuscarPorID(ctx context.Context, id int64) (domain.Produto, error) {
	if id <= 0 {
		return domain.Produto{}, apperror.NewValidationError("O ID do produto deve ser um inteiro positivo.")
	}
	return s.repo.BuscarPorID(ctx, id)
}

// Listar retorna produtos paginados. Filtros aceitos: "descricao" e "cod_barras".
func (s *Service) Listar(ctx context.Context, pagina, limite int, filtros map[string]string) ([]domain.Produto, error) {
	pagina, limite, err := domain.NormalizarPaginacao(pagina, limite, 10, 100)
	if err != nil {
		return nil, err
	}

	filtro := domain.ProdutoFiltro{Pagina: pagina, Limite: limite}
	if v, ok := filtros["descricao"]; ok {
		filtro.Descricao = strings.TrimSpace(v)
	}
	if v, ok := filtros["cod_barras"]; ok {
		filtro.CodBarras = strings.TrimSpace(v)
	}

	produtos, err := s.repo.Listar(ctx, filtro)
	if err != nil {
		s.logger.Error("Falha ao listar produtos no repositório.", err)
		return nil, err
	}
	return produtos, nil
}
