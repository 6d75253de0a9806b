package enderecamentoservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/repository/memrepo"
	"casamattos/internal/service/enderecamentoservice"
)

type fixture struct {
	ctx     context.Context
	store   *memrepo.Store
	repos   domain.Repositorios
	svc     *enderecamentoservice.Service
	produto domain.Produto
	predio  domain.Predio
}

func novaFixture(t *testing.T) fixture {
	t.Helper()
	store := memrepo.NewStore()
	repos := store.Repositorios()
	ctx := context.Background()

	rua, err := repos.Locais.CriarRua(ctx, domain.Rua{Nome: "B"})
	require.NoError(t, err)
	predio, err := repos.Locais.CriarPredio(ctx, domain.Predio{Nome: "2", IDRua: rua.ID})
	require.NoError(t, err)
	produto, err := repos.Produtos.Criar(ctx, domain.Produto{
		CodInterno: 555, Descricao: "Piso Cerâmico Bege", CodBarras: "7891234567890", CodFabricante: "FAB-9", Deposito: 20,
	})
	require.NoError(t, err)

	return fixture{
		ctx: ctx, store: store, repos: repos, produto: produto, predio: predio,
		svc: enderecamentoservice.NewService(store, repos, logger.NewLogger("error")),
	}
}

func (f fixture) criar(t *testing.T) domain.Enderecamento {
	t.Helper()
	e, err := f.svc.Criar(f.ctx, domain.Enderecamento{
		Tonalidade: "C3", Bitola: "8", IDProduto: f.produto.ID, IDPredio: f.predio.ID,
	}, nil)
	require.NoError(t, err)
	return e
}

func (f fixture) lista(t *testing.T, nome string) domain.Lista {
	t.Helper()
	l, err := f.repos.Listas.Criar(f.ctx, domain.Lista{Nome: nome})
	require.NoError(t, err)
	return l
}

func TestCriar_NasceLivreEDisponivel(t *testing.T) {
	f := novaFixture(t)

	e := f.criar(t)

	assert.True(t, e.Disponivel)
	assert.True(t, e.Lista.Livre())
	assert.NotZero(t, e.ID)
}

func TestCriar_Validacoes(t *testing.T) {
	f := novaFixture(t)
	zero := 0

	casos := map[string]domain.Enderecamento{
		"sem tonalidade":   {Bitola: "8", IDProduto: f.produto.ID, IDPredio: f.predio.ID},
		"sem bitola":       {Tonalidade: "C3", IDProduto: f.produto.ID, IDPredio: f.predio.ID},
		"sem produto":      {Tonalidade: "C3", Bitola: "8", IDPredio: f.predio.ID},
		"caixas invalidas": {Tonalidade: "C3", Bitola: "8", IDProduto: f.produto.ID, IDPredio: f.predio.ID, QuantCaixas: &zero},
	}
	for nome, e := range casos {
		t.Run(nome, func(t *testing.T) {
			_, err := f.svc.Criar(f.ctx, e, nil)
			var validation *apperror.ValidationError
			assert.True(t, errors.As(err, &validation))
		})
	}
}

func TestCriar_ReferenciaInexistente(t *testing.T) {
	f := novaFixture(t)

	_, err := f.svc.Criar(f.ctx, domain.Enderecamento{Tonalidade: "C3", Bitola: "8", IDProduto: 999, IDPredio: f.predio.ID}, nil)

	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

// Cenário 2: endereçamento já vinculado a outra lista.
func TestAdicionarALista_JaVinculado(t *testing.T) {
	f := novaFixture(t)
	e := f.criar(t)
	l1 := f.lista(t, "L1")
	l2 := f.lista(t, "L2")
	_, err := f.svc.AdicionarALista(f.ctx, e.ID, l1.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.AdicionarALista(f.ctx, e.ID, l2.ID, nil)

	var assigned *apperror.AlreadyAssignedError
	require.True(t, errors.As(err, &assigned))
	atual, _ := f.repos.Enderecamentos.BuscarPorID(f.ctx, e.ID)
	id, _ := atual.Lista.ID()
	assert.Equal(t, l1.ID, id)
	assert.True(t, atual.Disponivel)
}

func TestAdicionarALista_Concorrente_UmVence(t *testing.T) {
	f := novaFixture(t)
	e := f.criar(t)
	listas := []domain.Lista{f.lista(t, "A"), f.lista(t, "B"), f.lista(t, "C")}

	var wg sync.WaitGroup
	erros := make([]error, len(listas))
	for i, l := range listas {
		wg.Add(1)
		go func(i int, idLista int64) {
			defer wg.Done()
			_, erros[i] = f.svc.AdicionarALista(f.ctx, e.ID, idLista, nil)
		}(i, l.ID)
	}
	wg.Wait()

	sucessos := 0
	for _, err := range erros {
		if err == nil {
			sucessos++
			continue
		}
		var assigned *apperror.AlreadyAssignedError
		assert.True(t, errors.As(err, &assigned))
	}
	assert.Equal(t, 1, sucessos)
}

func TestAdicionarALista_ListaInexistente(t *testing.T) {
	f := novaFixture(t)
	e := f.criar(t)

	_, err := f.svc.AdicionarALista(f.ctx, e.ID, 777, nil)

	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestRemoverDaLista(t *testing.T) {
	f := novaFixture(t)
	e := f.criar(t)
	l := f.lista(t, "L")

	_, err := f.svc.RemoverDaLista(f.ctx, e.ID, nil)
	var validation *apperror.ValidationError
	assert.True(t, errors.As(err, &validation), "endereçamento livre")

	_, err = f.svc.AdicionarALista(f.ctx, e.ID, l.ID, nil)
	require.NoError(t, err)
	removido, err := f.svc.RemoverDaLista(f.ctx, e.ID, nil)
	require.NoError(t, err)
	assert.True(t, removido.Lista.Livre())
}

func TestRemoverDaLista_ListaFinalizada(t *testing.T) {
	f := novaFixture(t)
	e := f.criar(t)
	l := f.lista(t, "L")
	_, err := f.svc.AdicionarALista(f.ctx, e.ID, l.ID, nil)
	require.NoError(t, err)
	_, err = f.repos.Listas.AtualizarStatus(f.ctx, l.ID, domain.ListaAberta, domain.ListaFinalizada)
	require.NoError(t, err)

	_, err = f.svc.RemoverDaLista(f.ctx, e.ID, nil)

	var finalizada *apperror.ListFinalizedError
	assert.True(t, errors.As(err, &finalizada))
}

func TestExcluir_EmUso(t *testing.T) {
	f := novaFixture(t)
	e := f.criar(t)
	l := f.lista(t, "L")
	_, err := f.svc.AdicionarALista(f.ctx, e.ID, l.ID, nil)
	require.NoError(t, err)

	err = f.svc.Excluir(f.ctx, e.ID, nil)

	var inUse *apperror.InUseError
	require.True(t, errors.As(err, &inUse))

	_, err = f.svc.RemoverDaLista(f.ctx, e.ID, nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.Excluir(f.ctx, e.ID, nil))
	_, err = f.svc.BuscarPorID(f.ctx, e.ID)
	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestAtualizar_ListaFinalizadaBloqueia(t *testing.T) {
	f := novaFixture(t)
	e := f.criar(t)
	l := f.lista(t, "L")
	_, err := f.svc.AdicionarALista(f.ctx, e.ID, l.ID, nil)
	require.NoError(t, err)

	e.Observacao = strPtr("perto da doca")
	atualizado, err := f.svc.Atualizar(f.ctx, e, nil)
	require.NoError(t, err)
	assert.Equal(t, "perto da doca", *atualizado.Observacao)
	id, _ := atualizado.Lista.ID()
	assert.Equal(t, l.ID, id)

	_, err = f.repos.Listas.AtualizarStatus(f.ctx, l.ID, domain.ListaAberta, domain.ListaFinalizada)
	require.NoError(t, err)
	_, err = f.svc.Atualizar(f.ctx, e, nil)
	var finalizada *apperror.ListFinalizedError
	assert.True(t, errors.As(err, &finalizada))
}

func TestPesquisar_Filtros(t *testing.T) {
	f := novaFixture(t)
	livre := f.criar(t)
	vinculado := f.criar(t)
	l := f.lista(t, "L")
	_, err := f.svc.AdicionarALista(f.ctx, vinculado.ID, l.ID, nil)
	require.NoError(t, err)

	porDescricao, err := f.svc.Pesquisar(f.ctx, domain.EnderecamentoFiltro{Descricao: "cerâmico"})
	require.NoError(t, err)
	assert.Len(t, porDescricao, 2)

	livres, err := f.svc.Pesquisar(f.ctx, domain.EnderecamentoFiltro{CodBarras: "7891234567890", ApenasLivres: true})
	require.NoError(t, err)
	require.Len(t, livres, 1)
	assert.Equal(t, livre.ID, livres[0].ID)
	assert.Equal(t, "B", livres[0].RuaNome)

	cod := int64(1)
	nenhum, err := f.svc.Pesquisar(f.ctx, domain.EnderecamentoFiltro{CodInterno: &cod})
	require.NoError(t, err)
	assert.Empty(t, nenhum)

	disponiveis, err := f.svc.ListarDisponiveis(f.ctx)
	require.NoError(t, err)
	assert.Len(t, disponiveis, 1)
}

func strPtr(s string) *string { return &s }
