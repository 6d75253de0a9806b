package enderecamentoservice

import (
	"context"
	"fmt"
	"strings"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
)

// Service é o Registro de Endereçamentos: cadastro, disponibilidade e vínculo com listas.
type Service struct {
	uow    domain.UnitOfWork
	repos  domain.Repositorios
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Endereçamentos.
func NewService(uow domain.UnitOfWork, repos domain.Repositorios, logger logger.Logger) *Service {
	return &Service{uow: uow, repos: repos, logger: logger}
}

func validarID(id int64, nome string) error {
	if id <= 0 {
		return apperror.NewValidationError(fmt.Sprintf("O ID %s deve ser um inteiro positivo.", nome))
	}
	return nil
}

func (s *Service) validarCampos(e *domain.Enderecamento) error {
	e.Tonalidade = strings.TrimSpace(e.Tonalidade)
	e.Bitola = strings.TrimSpace(e.Bitola)
	if e.Tonalidade == "" || e.Bitola == "" {
		return apperror.NewValidationError("Tonalidade e bitola são obrigatórias.")
	}
	if e.IDProduto <= 0 || e.IDPredio <= 0 {
		return apperror.NewValidationError("Produto e prédio são obrigatórios.")
	}
	if e.QuantCaixas != nil && *e.QuantCaixas <= 0 {
		return apperror.NewValidationError("A quantidade de caixas deve ser maior que zero.")
	}
	return nil
}

// verificarReferencias garante que produto e prédio existem antes da escrita.
func verificarReferencias(ctx context.Context, repos domain.Repositorios, e domain.Enderecamento) error {
	if _, err := repos.Produtos.BuscarPorID(ctx, e.IDProduto); err != nil {
		return err
	}
	if _, err := repos.Locais.BuscarPredioPorID(ctx, e.IDPredio); err != nil {
		return err
	}
	return nil
}

// Criar cadastra um endereçamento livre e disponível.
func (s *Service) Criar(ctx context.Context, e domain.Enderecamento, ator *domain.Ator) (domain.Enderecamento, error) {
	s.logger.Debug("Iniciando criação de endereçamento no serviço.", ator.LogFields(map[string]interface{}{
		"id_produto": e.IDProduto, "id_predio": e.IDPredio,
	}))

	if err := s.validarCampos(&e); err != nil {
		s.logger.Warn("Falha na validação do endereçamento.", map[string]interface{}{"error": err.Error()})
		return domain.Enderecamento{}, err
	}

	var criado domain.Enderecamento
	err := s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		if err := verificarReferencias(ctx, repos, e); err != nil {
			return err
		}
		var err error
		criado, err = repos.Enderecamentos.Criar(ctx, e)
		return err
	})
	if err != nil {
		return domain.Enderecamento{}, err
	}

	s.logger.Info("Endereçamento criado com sucesso.", ator.LogFields(map[string]interface{}{"id": criado.ID}))
	return criado, nil
}

// BuscarPorID retorna um endereçamento.
func (s *Service) BuscarPorID(ctx context.Context, id int64) (domain.Enderecamento, error) {
	if err := validarID(id, "do endereçamento"); err != nil {
		return domain.Enderecamento{}, err
	}
	return s.repos.Enderecamentos.BuscarPorID(ctx, id)
}

// Atualizar altera os atributos descritivos do endereçamento. Vínculo com lista e
// disponibilidade não são alterados por aqui.
func (s *Service) Atualizar(ctx context.Context, e domain.Enderecamento, ator *domain.Ator) (domain.Enderecamento, error) {
	if err := validarID(e.ID, "do endereçamento"); err != nil {
		return domain.Enderecamento{}, err
	}
	if err := s.validarCampos(&e); err != nil {
		return domain.Enderecamento{}, err
	}

	var atualizado domain.Enderecamento
	err := s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		atual, err := repos.Enderecamentos.BuscarParaAtualizacao(ctx, e.ID)
		if err != nil {
			return err
		}
		if listaID, ok := atual.Lista.ID(); ok {
			lista, err := repos.Listas.BuscarPorID(ctx, listaID)
			if err != nil {
				return err
			}
			if err := lista.Status.ExigirAberta(); err != nil {
				return apperror.NewListFinalizedError(fmt.Sprintf(
					"O endereçamento %d pertence à lista finalizada %d e não pode ser alterado.", e.ID, listaID))
			}
			if atual.IDProduto != e.IDProduto {
				return apperror.NewValidationError("Não é possível trocar o produto de um endereçamento vinculado a uma lista.")
			}
		}
		if err := verificarReferencias(ctx, repos, e); err != nil {
			return err
		}
		atualizado, err = repos.Enderecamentos.Atualizar(ctx, e)
		return err
	})
	if err != nil {
		return domain.Enderecamento{}, err
	}

	s.logger.Info("Endereçamento atualizado.", ator.LogFields(map[string]interface{}{"id": atualizado.ID}))
	return atualizado, nil
}

// Excluir remove o endereçamento. Proibido enquanto ele pertencer a uma lista.
func (s *Service) Excluir(ctx context.Context, id int64, ator *domain.Ator) error {
	if err := validarID(id, "do endereçamento"); err != nil {
		return err
	}

	err := s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		e, err := repos.Enderecamentos.BuscarParaAtualizacao(ctx, id)
		if err != nil {
			return err
		}
		if listaID, ok := e.Lista.ID(); ok {
			return apperror.NewInUseError(fmt.Sprintf("O endereçamento %d pertence à lista %d.", id, listaID))
		}
		return repos.Enderecamentos.Excluir(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Endereçamento excluído.", ator.LogFields(map[string]interface{}{"id": id}))
	return nil
}

// ListarDisponiveis retorna os endereçamentos disponíveis e livres, com produto, prédio e rua.
func (s *Service) ListarDisponiveis(ctx context.Context) ([]domain.EnderecamentoDetalhado, error) {
	return s.repos.Enderecamentos.ListarDisponiveis(ctx)
}

// Pesquisar filtra endereçamentos pelos dados do produto.
func (s *Service) Pesquisar(ctx context.Context, filtro domain.EnderecamentoFiltro) ([]domain.EnderecamentoDetalhado, error) {
	filtro.CodBarras = strings.TrimSpace(filtro.CodBarras)
	filtro.CodFabricante = strings.TrimSpace(filtro.CodFabricante)
	filtro.Descricao = strings.TrimSpace(filtro.Descricao)
	return s.repos.Enderecamentos.Pesquisar(ctx, filtro)
}

// AdicionarALista vincula um endereçamento livre a uma lista aberta.
func (s *Service) AdicionarALista(ctx context.Context, idEnderecamento, idLista int64, ator *domain.Ator) (domain.Enderecamento, error) {
	if err := validarID(idEnderecamento, "do endereçamento"); err != nil {
		return domain.Enderecamento{}, err
	}
	if err := validarID(idLista, "da lista"); err != nil {
		return domain.Enderecamento{}, err
	}

	var resultado domain.Enderecamento
	err := s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		// Ordem de bloqueio: lista, depois endereçamento (a mesma da finalização).
		lista, err := repos.Listas.BuscarParaAtualizacao(ctx, idLista)
		if err != nil {
			return err
		}
		if err := lista.Status.ExigirAberta(); err != nil {
			return err
		}

		e, err := repos.Enderecamentos.BuscarPorID(ctx, idEnderecamento)
		if err != nil {
			return err
		}
		if atual, ok := e.Lista.ID(); ok {
			return apperror.NewAlreadyAssignedError(fmt.Sprintf(
				"O endereçamento %d já pertence à lista %d.", idEnderecamento, atual))
		}

		vinculado, err := repos.Enderecamentos.VincularLista(ctx, idEnderecamento, idLista)
		if err != nil {
			return err
		}
		if !vinculado {
			return apperror.NewAlreadyAssignedError(fmt.Sprintf(
				"O endereçamento %d foi vinculado a outra lista por uma operação concorrente.", idEnderecamento))
		}

		resultado, err = repos.Enderecamentos.BuscarPorID(ctx, idEnderecamento)
		return err
	})
	if err != nil {
		s.logger.Warn("Falha ao adicionar endereçamento à lista.", ator.LogFields(map[string]interface{}{
			"id_enderecamento": idEnderecamento, "id_lista": idLista, "error": err.Error(),
		}))
		return domain.Enderecamento{}, err
	}

	s.logger.Info("Endereçamento adicionado à lista.", ator.LogFields(map[string]interface{}{
		"id_enderecamento": idEnderecamento, "id_lista": idLista,
	}))
	return resultado, nil
}

// RemoverDaLista libera o endereçamento da lista a que pertence.
func (s *Service) RemoverDaLista(ctx context.Context, idEnderecamento int64, ator *domain.Ator) (domain.Enderecamento, error) {
	return s.remover(ctx, idEnderecamento, domain.SemLista(), ator)
}

// RemoverDeLista libera o endereçamento exigindo que ele pertença à lista informada.
func (s *Service) RemoverDeLista(ctx context.Context, idLista, idEnderecamento int64, ator *domain.Ator) (domain.Enderecamento, error) {
	if err := validarID(idLista, "da lista"); err != nil {
		return domain.Enderecamento{}, err
	}
	return s.remover(ctx, idEnderecamento, domain.NaLista(idLista), ator)
}

func (s *Service) remover(ctx context.Context, idEnderecamento int64, esperada domain.ListaRef, ator *domain.Ator) (domain.Enderecamento, error) {
	if err := validarID(idEnderecamento, "do endereçamento"); err != nil {
		return domain.Enderecamento{}, err
	}

	var resultado domain.Enderecamento
	err := s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		idLista, informada := esperada.ID()
		if !informada {
			e, err := repos.Enderecamentos.BuscarPorID(ctx, idEnderecamento)
			if err != nil {
				return err
			}
			var ok bool
			if idLista, ok = e.Lista.ID(); !ok {
				return apperror.NewValidationError(fmt.Sprintf("O endereçamento %d não pertence a nenhuma lista.", idEnderecamento))
			}
		}

		lista, err := repos.Listas.BuscarParaAtualizacao(ctx, idLista)
		if err != nil {
			return err
		}
		if err := lista.Status.ExigirAberta(); err != nil {
			return err
		}

		e, err := repos.Enderecamentos.BuscarParaAtualizacao(ctx, idEnderecamento)
		if err != nil {
			return err
		}
		if atual, ok := e.Lista.ID(); !ok || atual != idLista {
			if informada {
				return apperror.NewValidationError(fmt.Sprintf(
					"O endereçamento %d não pertence à lista %d.", idEnderecamento, idLista))
			}
			return apperror.NewConflictError("O vínculo do endereçamento foi alterado por outra operação. Tente novamente.")
		}

		if err := repos.Enderecamentos.DesvincularLista(ctx, idEnderecamento); err != nil {
			return err
		}
		resultado, err = repos.Enderecamentos.BuscarPorID(ctx, idEnderecamento)
		return err
	})
	if err != nil {
		s.logger.Warn("Falha ao remover endereçamento da lista.", ator.LogFields(map[string]interface{}{
			"id_enderecamento": idEnderecamento, "error": err.Error(),
		}))
		return domain.Enderecamento{}, err
	}

	s.logger.Info("Endereçamento removido da lista.", ator.LogFields(map[string]interface{}{"id_enderecamento": idEnderecamento}))
	return resultado, nil
}
