package memrepo_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/repository/memrepo"
)

func novoEnderecamento(t *testing.T, repos domain.Repositorios) (domain.Produto, domain.Enderecamento) {
	t.Helper()
	ctx := context.Background()
	rua, err := repos.Locais.CriarRua(ctx, domain.Rua{Nome: "Rua 1"})
	require.NoError(t, err)
	predio, err := repos.Locais.CriarPredio(ctx, domain.Predio{Nome: "P", IDRua: rua.ID})
	require.NoError(t, err)
	p, err := repos.Produtos.Criar(ctx, domain.Produto{CodInterno: 1, Descricao: "Piso", Deposito: 10})
	require.NoError(t, err)
	e, err := repos.Enderecamentos.Criar(ctx, domain.Enderecamento{Tonalidade: "A", Bitola: "B", IDProduto: p.ID, IDPredio: predio.ID})
	require.NoError(t, err)
	return p, e
}

func TestExecutar_RestauraEstadoEmErro(t *testing.T) {
	store := memrepo.NewStore()
	repos := store.Repositorios()
	ctx := context.Background()
	p, _ := novoEnderecamento(t, repos)

	errAbortar := errors.New("abortar")
	err := store.Executar(ctx, func(ctx context.Context, tx domain.Repositorios) error {
		atual, err := tx.Produtos.BuscarParaAtualizacao(ctx, p.ID)
		require.NoError(t, err)
		atual.Deposito, atual.Estoque = 0, 10
		_, err = tx.Produtos.AtualizarQuantidades(ctx, atual)
		require.NoError(t, err)
		return errAbortar
	})

	assert.ErrorIs(t, err, errAbortar)
	depois, err := repos.Produtos.BuscarPorID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, depois.Deposito)
	assert.Equal(t, 0, depois.Estoque)
	assert.Equal(t, p.Version, depois.Version)
}

func TestFalharEm_UmaVez(t *testing.T) {
	store := memrepo.NewStore()
	repos := store.Repositorios()
	ctx := context.Background()
	falha := apperror.NewDBError("conexão perdida", errors.New("eof"))

	store.FalharEm("Listas.Criar", falha)

	_, err := repos.Listas.Criar(ctx, domain.Lista{Nome: "L"})
	assert.ErrorIs(t, err, falha)
	_, err = repos.Listas.Criar(ctx, domain.Lista{Nome: "L"})
	assert.NoError(t, err)
}

func TestAtualizarQuantidades_VersaoDesatualizada(t *testing.T) {
	repos := memrepo.NewStore().Repositorios()
	ctx := context.Background()
	p, _ := novoEnderecamento(t, repos)

	p.Deposito = 5
	_, err := repos.Produtos.AtualizarQuantidades(ctx, p)
	require.NoError(t, err)

	_, err = repos.Produtos.AtualizarQuantidades(ctx, p)
	var conflito *apperror.ConflictError
	assert.True(t, errors.As(err, &conflito))
}

func TestCriarProduto_CodigoDuplicado(t *testing.T) {
	repos := memrepo.NewStore().Repositorios()
	ctx := context.Background()
	_, err := repos.Produtos.Criar(ctx, domain.Produto{CodInterno: 7, Descricao: "A"})
	require.NoError(t, err)

	_, err = repos.Produtos.Criar(ctx, domain.Produto{CodInterno: 7, Descricao: "B"})

	var conflito *apperror.ConflictError
	assert.True(t, errors.As(err, &conflito))
}

func TestVincularLista_SoQuandoLivre(t *testing.T) {
	repos := memrepo.NewStore().Repositorios()
	ctx := context.Background()
	_, e := novoEnderecamento(t, repos)
	l1, err := repos.Listas.Criar(ctx, domain.Lista{Nome: "L1"})
	require.NoError(t, err)
	l2, err := repos.Listas.Criar(ctx, domain.Lista{Nome: "L2"})
	require.NoError(t, err)

	ok, err := repos.Enderecamentos.VincularLista(ctx, e.ID, l1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Enderecamentos.VincularLista(ctx, e.ID, l2.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	atual, err := repos.Enderecamentos.BuscarPorID(ctx, e.ID)
	require.NoError(t, err)
	id, vinculado := atual.Lista.ID()
	assert.True(t, vinculado)
	assert.Equal(t, l1.ID, id)

	err = repos.Listas.Excluir(ctx, l1.ID)
	var emUso *apperror.InUseError
	assert.True(t, errors.As(err, &emUso))
}

func TestAtualizarStatus_CompareAndSet(t *testing.T) {
	repos := memrepo.NewStore().Repositorios()
	ctx := context.Background()
	l, err := repos.Listas.Criar(ctx, domain.Lista{Nome: "L"})
	require.NoError(t, err)

	ok, err := repos.Listas.AtualizarStatus(ctx, l.ID, domain.ListaAberta, domain.ListaFinalizada)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Listas.AtualizarStatus(ctx, l.ID, domain.ListaAberta, domain.ListaFinalizada)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContextoCancelado(t *testing.T) {
	store := memrepo.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Executar(ctx, func(context.Context, domain.Repositorios) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestListar_PaginaAlemDoFim(t *testing.T) {
	store := memrepo.NewStore()
	repos := store.Repositorios()
	ctx := context.Background()
	for _, nome := range []string{"A", "B", "C"} {
		_, err := repos.Listas.Criar(ctx, domain.Lista{Nome: nome})
		require.NoError(t, err)
	}

	listas, total, err := repos.Listas.Listar(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, listas, 1)

	assert.NotPanics(t, func() {
		listas, _, err = repos.Listas.Listar(ctx, math.MaxInt, 10)
	})
	require.NoError(t, err)
	assert.Empty(t, listas)
}
