package estoqueservice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/cache"
	"casamattos/internal/pkg/logger"
)

const (
	limitePadraoMovimentacoes = 50
	limiteMaximoMovimentacoes = 200
)

// Service é o Livro de Estoque: única porta de escrita de Produto.Deposito e Produto.Estoque.
type Service struct {
	uow      domain.UnitOfWork
	repos    domain.Repositorios
	cache    cache.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewService cria o serviço. cacheClient pode ser nil (sem cache de leitura).
func NewService(uow domain.UnitOfWork, repos domain.Repositorios, cacheClient cache.Client, cacheTTL time.Duration, logger logger.Logger) *Service {
	return &Service{uow: uow, repos: repos, cache: cacheClient, cacheTTL: cacheTTL, logger: logger}
}

func chaveCache(produtoID int64) string {
	return fmt.Sprintf("estoque:produto:%d", produtoID)
}

func validarProdutoID(id int64) error {
	if id <= 0 {
		return apperror.NewValidationError("O ID do produto deve ser um inteiro positivo.")
	}
	return nil
}

func paraEstoqueProduto(p domain.Produto) domain.EstoqueProduto {
	return domain.EstoqueProduto{ProdutoID: p.ID, Deposito: p.Deposito, Estoque: p.Estoque}
}

// TransferirDepositoParaEstoque move quantidade do depósito para o estoque em uma única transação.
func (s *Service) TransferirDepositoParaEstoque(ctx context.Context, produtoID int64, quantidade int, ator *domain.Ator) (domain.EstoqueProduto, error) {
	return s.movimentar(ctx, domain.Movimentacao{
		Tipo: domain.MovTransferencia, ProdutoID: produtoID, Quantidade: quantidade, UsuarioID: ator.UsuarioIDPtr(),
	}, ator)
}

// RetirarDoEstoque faz a baixa de quantidade do estoque.
func (s *Service) RetirarDoEstoque(ctx context.Context, produtoID int64, quantidade int, ator *domain.Ator) (domain.EstoqueProduto, error) {
	return s.movimentar(ctx, domain.Movimentacao{
		Tipo: domain.MovRetirada, ProdutoID: produtoID, Quantidade: quantidade, UsuarioID: ator.UsuarioIDPtr(),
	}, ator)
}

func (s *Service) movimentar(ctx context.Context, mov domain.Movimentacao, ator *domain.Ator) (domain.EstoqueProduto, error) {
	campos := ator.LogFields(map[string]interface{}{
		"produto_id": mov.ProdutoID, "quantidade": mov.Quantidade, "tipo": mov.Tipo,
	})
	s.logger.Debug("Iniciando movimentação de estoque no serviço.", campos)

	if err := validarProdutoID(mov.ProdutoID); err != nil {
		return domain.EstoqueProduto{}, err
	}

	var resultado domain.Produto
	err := s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		var err error
		resultado, err = s.aplicar(ctx, repos, mov)
		return err
	})
	if err != nil {
		if apperror.IsAppError(err) {
			s.logger.Warn("Movimentação de estoque rejeitada.", ator.LogFields(map[string]interface{}{
				"produto_id": mov.ProdutoID, "tipo": mov.Tipo, "error": err.Error(),
			}))
		} else {
			s.logger.Error("Falha ao movimentar estoque.", err)
		}
		return domain.EstoqueProduto{}, err
	}

	s.InvalidarCache(ctx, mov.ProdutoID)
	s.logger.Info("Estoque movimentado com sucesso.", ator.LogFields(map[string]interface{}{
		"produto_id": resultado.ID, "tipo": mov.Tipo, "deposito": resultado.Deposito, "estoque": resultado.Estoque,
	}))
	return paraEstoqueProduto(resultado), nil
}

// AplicarTransferencia executa depósito -> estoque sobre um produto já bloqueado
// pelo chamador (BuscarParaAtualizacao na mesma transação). Registra a
// movimentação e devolve o produto com a nova versão.
func (s *Service) AplicarTransferencia(ctx context.Context, repos domain.Repositorios, produto domain.Produto, mov domain.Movimentacao) (domain.Produto, error) {
	mov.Tipo = domain.MovTransferencia
	return s.aplicarEm(ctx, repos, produto, mov)
}

// AplicarEstorno executa estoque -> depósito (desfazer uma transferência) sobre um produto já bloqueado.
func (s *Service) AplicarEstorno(ctx context.Context, repos domain.Repositorios, produto domain.Produto, mov domain.Movimentacao) (domain.Produto, error) {
	mov.Tipo = domain.MovEstorno
	return s.aplicarEm(ctx, repos, produto, mov)
}

func operacaoDe(tipo domain.TipoMovimentacao) (func(p *domain.Produto, q int) error, error) {
	switch tipo {
	case domain.MovTransferencia:
		return (*domain.Produto).TransferirParaEstoque, nil
	case domain.MovRetirada:
		return (*domain.Produto).RetirarDoEstoque, nil
	case domain.MovEstorno:
		return (*domain.Produto).DevolverAoDeposito, nil
	}
	return nil, apperror.NewInternalError(fmt.Sprintf("Tipo de movimentação desconhecido: %s", tipo), nil)
}

// aplicar bloqueia o produto de mov e aplica a movimentação.
func (s *Service) aplicar(ctx context.Context, repos domain.Repositorios, mov domain.Movimentacao) (domain.Produto, error) {
	// Regras que não dependem do banco são verificadas antes de qualquer leitura.
	if _, err := operacaoDe(mov.Tipo); err != nil {
		return domain.Produto{}, err
	}
	if mov.Quantidade <= 0 {
		return domain.Produto{}, apperror.NewValidationError("A quantidade deve ser maior que zero.")
	}

	produto, err := repos.Produtos.BuscarParaAtualizacao(ctx, mov.ProdutoID)
	if err != nil {
		return domain.Produto{}, err
	}
	return s.aplicarEm(ctx, repos, produto, mov)
}

func (s *Service) aplicarEm(ctx context.Context, repos domain.Repositorios, produto domain.Produto, mov domain.Movimentacao) (domain.Produto, error) {
	operacao, err := operacaoDe(mov.Tipo)
	if err != nil {
		return domain.Produto{}, err
	}
	if mov.Quantidade <= 0 {
		return domain.Produto{}, apperror.NewValidationError("A quantidade deve ser maior que zero.")
	}
	mov.ProdutoID = produto.ID

	if err := operacao(&produto, mov.Quantidade); err != nil {
		return domain.Produto{}, err
	}

	atualizado, err := repos.Produtos.AtualizarQuantidades(ctx, produto)
	if err != nil {
		return domain.Produto{}, err
	}
	if err := repos.Movimentacoes.Registrar(ctx, mov); err != nil {
		return domain.Produto{}, err
	}

	s.logger.Debug("Movimentação aplicada.", map[string]interface{}{
		"produto_id": atualizado.ID, "tipo": mov.Tipo, "quantidade": mov.Quantidade,
		"deposito": atualizado.Deposito, "estoque": atualizado.Estoque,
	})
	return atualizado, nil
}

// InvalidarCache descarta as leituras em cache dos produtos. Deve ser chamado após o commit.
// Falhas do cache são apenas registradas.
func (s *Service) InvalidarCache(ctx context.Context, produtoIDs ...int64) {
	if s.cache == nil || len(produtoIDs) == 0 {
		return
	}
	chaves := make([]string, 0, len(produtoIDs))
	for _, id := range produtoIDs {
		chaves = append(chaves, chaveCache(id))
	}
	if err := s.cache.Delete(ctx, chaves...); err != nil {
		s.logger.Warn("Falha ao invalidar cache de estoque.", map[string]interface{}{"chaves": chaves, "error": err.Error()})
	}
}

// ConsultarEstoqueProduto retorna os contadores atuais do produto (cache-aside no Redis).
func (s *Service) ConsultarEstoqueProduto(ctx context.Context, produtoID int64) (domain.EstoqueProduto, error) {
	if err := validarProdutoID(produtoID); err != nil {
		return domain.EstoqueProduto{}, err
	}

	if s.cache != nil {
		if valor, err := s.cache.Get(ctx, chaveCache(produtoID)); err == nil {
			var estoque domain.EstoqueProduto
			if err := json.Unmarshal([]byte(valor), &estoque); err == nil {
				s.logger.Debug("Estoque servido do cache.", map[string]interface{}{"produto_id": produtoID})
				return estoque, nil
			}
		} else if err != cache.ErrCacheMiss {
			s.logger.Warn("Falha ao ler cache de estoque.", map[string]interface{}{"produto_id": produtoID, "error": err.Error()})
		}
	}

	produto, err := s.repos.Produtos.BuscarPorID(ctx, produtoID)
	if err != nil {
		return domain.EstoqueProduto{}, err
	}
	estoque := paraEstoqueProduto(produto)

	if s.cache != nil {
		if dados, err := json.Marshal(estoque); err == nil {
			if err := s.cache.Set(ctx, chaveCache(produtoID), dados, s.cacheTTL); err != nil {
				s.logger.Warn("Falha ao gravar cache de estoque.", map[string]interface{}{"produto_id": produtoID, "error": err.Error()})
			}
		}
	}
	return estoque, nil
}

// ListarEstoqueDetalhado retorna os contadores do produto junto com seus endereçamentos.
func (s *Service) ListarEstoqueDetalhado(ctx context.Context, produtoID int64) (domain.EstoqueDetalhado, error) {
	if err := validarProdutoID(produtoID); err != nil {
		return domain.EstoqueDetalhado{}, err
	}

	produto, err := s.repos.Produtos.BuscarPorID(ctx, produtoID)
	if err != nil {
		return domain.EstoqueDetalhado{}, err
	}
	enderecamentos, err := s.repos.Enderecamentos.ListarPorProduto(ctx, produtoID)
	if err != nil {
		return domain.EstoqueDetalhado{}, err
	}

	return domain.EstoqueDetalhado{
		Produto:        produto,
		Deposito:       produto.Deposito,
		Estoque:        produto.Estoque,
		Enderecamentos: enderecamentos,
	}, nil
}

// ListarMovimentacoes retorna o histórico recente de movimentações do produto.
func (s *Service) ListarMovimentacoes(ctx context.Context, produtoID int64, limite int) ([]domain.Movimentacao, error) {
	if err := validarProdutoID(produtoID); err != nil {
		return nil, err
	}
	if limite <= 0 {
		limite = limitePadraoMovimentacoes
	}
	if limite > limiteMaximoMovimentacoes {
		limite = limiteMaximoMovimentacoes
	}

	if _, err := s.repos.Produtos.BuscarPorID(ctx, produtoID); err != nil {
		return nil, err
	}
	return s.repos.Movimentacoes.ListarPorProduto(ctx, produtoID, limite)
}
