package listaservice

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
)

const (
	// LimitePadrao é o tamanho da página quando o limite não é informado.
	LimitePadrao = 10
	// LimiteMaximo é o maior tamanho de página aceito.
	LimiteMaximo      = 100
	tamanhoMaximoNome = 150
)

// LivroEstoque são as primitivas do Livro de Estoque usadas dentro da transação da lista.
// O produto passado já está bloqueado pela transação.
type LivroEstoque interface {
	AplicarTransferencia(ctx context.Context, repos domain.Repositorios, produto domain.Produto, mov domain.Movimentacao) (domain.Produto, error)
	AplicarEstorno(ctx context.Context, repos domain.Repositorios, produto domain.Produto, mov domain.Movimentacao) (domain.Produto, error)
	InvalidarCache(ctx context.Context, produtoIDs ...int64)
}

// RegistroEnderecamentos é o contrato de vínculo mantido pelo Registro de Endereçamentos.
type RegistroEnderecamentos interface {
	AdicionarALista(ctx context.Context, idEnderecamento, idLista int64, ator *domain.Ator) (domain.Enderecamento, error)
	RemoverDeLista(ctx context.Context, idLista, idEnderecamento int64, ator *domain.Ator) (domain.Enderecamento, error)
}

// Service é o Gerenciador do Ciclo de Vida das listas de separação.
type Service struct {
	uow            domain.UnitOfWork
	repos          domain.Repositorios
	estoque        LivroEstoque
	enderecamentos RegistroEnderecamentos
	logger         logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Listas.
func NewService(uow domain.UnitOfWork, repos domain.Repositorios, estoque LivroEstoque, enderecamentos RegistroEnderecamentos, logger logger.Logger) *Service {
	return &Service{uow: uow, repos: repos, estoque: estoque, enderecamentos: enderecamentos, logger: logger}
}

func validarListaID(id int64) error {
	if id <= 0 {
		return apperror.NewValidationError("O ID da lista deve ser um inteiro positivo.")
	}
	return nil
}

func normalizarNome(nome string) (string, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return "", apperror.NewValidationError("O nome da lista é obrigatório.")
	}
	if utf8.RuneCountInString(nome) > tamanhoMaximoNome {
		return "", apperror.NewValidationError(fmt.Sprintf("O nome da lista deve ter no máximo %d caracteres.", tamanhoMaximoNome))
	}
	return nome, nil
}

// Criar cria uma lista aberta.
func (s *Service) Criar(ctx context.Context, nome string, ator *domain.Ator) (domain.Lista, error) {
	nome, err := normalizarNome(nome)
	if err != nil {
		s.logger.Warn("Falha na validação do nome da lista.", map[string]interface{}{"error": err.Error()})
		return domain.Lista{}, err
	}

	lista, err := s.repos.Listas.Criar(ctx, domain.Lista{Nome: nome, Status: domain.ListaAberta})
	if err != nil {
		return domain.Lista{}, err
	}

	s.logger.Info("Lista criada.", ator.LogFields(map[string]interface{}{"id_lista": lista.ID, "nome": lista.Nome}))
	return lista, nil
}

// Renomear altera o nome de uma lista aberta.
func (s *Service) Renomear(ctx context.Context, id int64, nome string, ator *domain.Ator) (domain.Lista, error) {
	if err := validarListaID(id); err != nil {
		return domain.Lista{}, err
	}
	nome, err := normalizarNome(nome)
	if err != nil {
		return domain.Lista{}, err
	}

	var lista domain.Lista
	err = s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		atual, err := repos.Listas.BuscarParaAtualizacao(ctx, id)
		if err != nil {
			return err
		}
		if err := atual.Status.ExigirAberta(); err != nil {
			return err
		}
		lista, err = repos.Listas.Renomear(ctx, id, nome)
		return err
	})
	if err != nil {
		return domain.Lista{}, err
	}

	s.logger.Info("Lista renomeada.", ator.LogFields(map[string]interface{}{"id_lista": id, "nome": nome}))
	return lista, nil
}

// Excluir remove uma lista aberta, liberando seus endereçamentos.
func (s *Service) Excluir(ctx context.Context, id int64, ator *domain.Ator) error {
	if err := validarListaID(id); err != nil {
		return err
	}

	err := s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		lista, err := repos.Listas.BuscarParaAtualizacao(ctx, id)
		if err != nil {
			return err
		}
		if err := lista.Status.ExigirAberta(); err != nil {
			return err
		}
		if err := repos.Enderecamentos.DesvincularTodos(ctx, id); err != nil {
			return err
		}
		return repos.Listas.Excluir(ctx, id)
	})
	if err != nil {
		s.logger.Warn("Falha ao excluir lista.", ator.LogFields(map[string]interface{}{"id_lista": id, "error": err.Error()}))
		return err
	}

	s.logger.Info("Lista excluída.", ator.LogFields(map[string]interface{}{"id_lista": id}))
	return nil
}

// BuscarPorID retorna uma lista.
func (s *Service) BuscarPorID(ctx context.Context, id int64) (domain.Lista, error) {
	if err := validarListaID(id); err != nil {
		return domain.Lista{}, err
	}
	return s.repos.Listas.BuscarPorID(ctx, id)
}

// ListarTodas retorna uma página de listas. Limite padrão 10, máximo 100; página < 1 vira 1.
// Páginas além do intervalo representável são ValidationError.
func (s *Service) ListarTodas(ctx context.Context, pagina, limite int) (domain.Pagina[domain.Lista], error) {
	pagina, limite, err := domain.NormalizarPaginacao(pagina, limite, LimitePadrao, LimiteMaximo)
	if err != nil {
		return domain.Pagina[domain.Lista]{}, err
	}

	listas, total, err := s.repos.Listas.Listar(ctx, pagina, limite)
	if err != nil {
		return domain.Pagina[domain.Lista]{}, err
	}
	return domain.Pagina[domain.Lista]{Itens: listas, Total: total, Pagina: pagina, Limite: limite}, nil
}

// ListarDisponiveis retorna as listas abertas.
func (s *Service) ListarDisponiveis(ctx context.Context) ([]domain.Lista, error) {
	return s.repos.Listas.ListarAbertas(ctx)
}

// GetEnderecamentos retorna os membros da lista com produto, prédio e rua.
func (s *Service) GetEnderecamentos(ctx context.Context, id int64) ([]domain.EnderecamentoDetalhado, error) {
	if err := validarListaID(id); err != nil {
		return nil, err
	}
	if _, err := s.repos.Listas.BuscarPorID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Enderecamentos.ListarPorLista(ctx, id)
}

// AdicionarEnderecamento inclui um endereçamento livre na lista aberta.
func (s *Service) AdicionarEnderecamento(ctx context.Context, idLista, idEnderecamento int64, ator *domain.Ator) (domain.Enderecamento, error) {
	if err := validarListaID(idLista); err != nil {
		return domain.Enderecamento{}, err
	}
	return s.enderecamentos.AdicionarALista(ctx, idEnderecamento, idLista, ator)
}

// RemoverEnderecamento retira o endereçamento da lista aberta.
func (s *Service) RemoverEnderecamento(ctx context.Context, idLista, idEnderecamento int64, ator *domain.Ator) (domain.Enderecamento, error) {
	return s.enderecamentos.RemoverDeLista(ctx, idLista, idEnderecamento, ator)
}

// quantidadeFinalizacao resolve quanto mover para o endereçamento: a quantidade de caixas
// do endereçamento, senão a padrão do produto. Sem nenhuma das duas não há transferência.
func quantidadeFinalizacao(e domain.Enderecamento, p domain.Produto) (int, bool) {
	if e.QuantCaixas != nil && *e.QuantCaixas > 0 {
		return *e.QuantCaixas, true
	}
	if p.QuantCaixas != nil && *p.QuantCaixas > 0 {
		return *p.QuantCaixas, true
	}
	return 0, false
}

// produtosBloqueados guarda a última versão de cada produto já bloqueado na transação.
type produtosBloqueados map[int64]domain.Produto

func (b produtosBloqueados) buscar(ctx context.Context, repos domain.Repositorios, id int64) (domain.Produto, error) {
	if p, ok := b[id]; ok {
		return p, nil
	}
	p, err := repos.Produtos.BuscarParaAtualizacao(ctx, id)
	if err != nil {
		return domain.Produto{}, err
	}
	b[id] = p
	return p, nil
}

// ordenarPorProduto fixa a ordem de bloqueio das linhas de produto entre transações.
func ordenarPorProduto(membros []domain.Enderecamento) {
	sort.SliceStable(membros, func(i, j int) bool {
		if membros[i].IDProduto != membros[j].IDProduto {
			return membros[i].IDProduto < membros[j].IDProduto
		}
		return membros[i].ID < membros[j].ID
	})
}

// Finalizar executa Aberta -> Finalizada: transfere do depósito para o estoque a quantidade
// de cada endereçamento e o marca como indisponível. Tudo ou nada.
func (s *Service) Finalizar(ctx context.Context, id int64, ator *domain.Ator) (domain.ResumoMovimentacao, error) {
	if err := validarListaID(id); err != nil {
		return domain.ResumoMovimentacao{}, err
	}
	s.logger.Debug("Iniciando finalização da lista.", ator.LogFields(map[string]interface{}{"id_lista": id}))

	resumo := domain.ResumoMovimentacao{QuantidadesPorProduto: map[int64]int{}}
	err := s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		lista, err := repos.Listas.BuscarParaAtualizacao(ctx, id)
		if err != nil {
			return err
		}
		proximo, err := lista.Status.Finalizar()
		if err != nil {
			return err
		}

		membros, err := repos.Enderecamentos.ListarPorListaParaAtualizacao(ctx, id)
		if err != nil {
			return err
		}
		ordenarPorProduto(membros)

		produtos := produtosBloqueados{}
		for _, e := range membros {
			produto, err := produtos.buscar(ctx, repos, e.IDProduto)
			if err != nil {
				return err
			}

			var movimentada *int
			if q, ok := quantidadeFinalizacao(e, produto); ok {
				endID := e.ID
				atualizado, err := s.estoque.AplicarTransferencia(ctx, repos, produto, domain.Movimentacao{
					ProdutoID:       e.IDProduto,
					Quantidade:      q,
					ListaID:         &lista.ID,
					EnderecamentoID: &endID,
					UsuarioID:       ator.UsuarioIDPtr(),
				})
				if err != nil {
					return err
				}
				produtos[e.IDProduto] = atualizado
				movimentada = &q
				resumo.QuantidadesPorProduto[e.IDProduto] += q
			} else {
				s.logger.Warn("Endereçamento sem quantidade de caixas; nenhuma transferência aplicada.", map[string]interface{}{
					"id_lista": id, "id_enderecamento": e.ID, "id_produto": e.IDProduto,
				})
			}

			if err := repos.Enderecamentos.AtualizarDisponibilidade(ctx, e.ID, false, movimentada); err != nil {
				return err
			}
		}

		aplicado, err := repos.Listas.AtualizarStatus(ctx, id, lista.Status, proximo)
		if err != nil {
			return err
		}
		if !aplicado {
			return apperror.NewConflictError("A lista foi alterada por outra operação durante a finalização.")
		}

		resumo.Lista, err = repos.Listas.BuscarPorID(ctx, id)
		resumo.Enderecamentos = len(membros)
		return err
	})
	if err != nil {
		s.logger.Warn("Finalização da lista abortada; nenhuma alteração persistida.", ator.LogFields(map[string]interface{}{
			"id_lista": id, "error": err.Error(),
		}))
		return domain.ResumoMovimentacao{}, err
	}

	s.estoque.InvalidarCache(ctx, produtosDe(resumo)...)
	s.logger.Info("Lista finalizada.", ator.LogFields(map[string]interface{}{
		"id_lista": id, "enderecamentos": resumo.Enderecamentos,
	}))
	return resumo, nil
}

// DesfazerFinalizacao executa Finalizada -> Aberta: devolve ao depósito o que a finalização
// moveu e torna os endereçamentos disponíveis novamente. Tudo ou nada.
func (s *Service) DesfazerFinalizacao(ctx context.Context, id int64, ator *domain.Ator) (domain.ResumoMovimentacao, error) {
	if err := validarListaID(id); err != nil {
		return domain.ResumoMovimentacao{}, err
	}
	s.logger.Debug("Iniciando desfazer finalização da lista.", ator.LogFields(map[string]interface{}{"id_lista": id}))

	resumo := domain.ResumoMovimentacao{QuantidadesPorProduto: map[int64]int{}}
	err := s.uow.Executar(ctx, func(ctx context.Context, repos domain.Repositorios) error {
		lista, err := repos.Listas.BuscarParaAtualizacao(ctx, id)
		if err != nil {
			return err
		}
		proximo, err := lista.Status.Reabrir()
		if err != nil {
			return err
		}

		membros, err := repos.Enderecamentos.ListarPorListaParaAtualizacao(ctx, id)
		if err != nil {
			return err
		}
		ordenarPorProduto(membros)

		produtos := produtosBloqueados{}
		for _, e := range membros {
			if e.QuantMovimentada != nil && *e.QuantMovimentada > 0 {
				produto, err := produtos.buscar(ctx, repos, e.IDProduto)
				if err != nil {
					return err
				}
				endID := e.ID
				atualizado, err := s.estoque.AplicarEstorno(ctx, repos, produto, domain.Movimentacao{
					ProdutoID:       e.IDProduto,
					Quantidade:      *e.QuantMovimentada,
					ListaID:         &lista.ID,
					EnderecamentoID: &endID,
					UsuarioID:       ator.UsuarioIDPtr(),
				})
				if err != nil {
					return err
				}
				produtos[e.IDProduto] = atualizado
				resumo.QuantidadesPorProduto[e.IDProduto] += *e.QuantMovimentada
			}
			if err := repos.Enderecamentos.AtualizarDisponibilidade(ctx, e.ID, true, nil); err != nil {
				return err
			}
		}

		aplicado, err := repos.Listas.AtualizarStatus(ctx, id, lista.Status, proximo)
		if err != nil {
			return err
		}
		if !aplicado {
			return apperror.NewConflictError("A lista foi alterada por outra operação durante o desfazer.")
		}

		resumo.Lista, err = repos.Listas.BuscarPorID(ctx, id)
		resumo.Enderecamentos = len(membros)
		return err
	})
	if err != nil {
		s.logger.Warn("Desfazer finalização abortado; nenhuma alteração persistida.", ator.LogFields(map[string]interface{}{
			"id_lista": id, "error": err.Error(),
		}))
		return domain.ResumoMovimentacao{}, err
	}

	s.estoque.InvalidarCache(ctx, produtosDe(resumo)...)
	s.logger.Info("Finalização da lista desfeita.", ator.LogFields(map[string]interface{}{
		"id_lista": id, "enderecamentos": resumo.Enderecamentos,
	}))
	return resumo, nil
}

func produtosDe(r domain.ResumoMovimentacao) []int64 {
	ids := make([]int64, 0, len(r.QuantidadesPorProduto))
	for id := range r.QuantidadesPorProduto {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
