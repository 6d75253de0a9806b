package listaservice_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/repository/memrepo"
	"casamattos/internal/service/enderecamentoservice"
	"casamattos/internal/service/estoqueservice"
	"casamattos/internal/service/listaservice"
)

type cenario struct {
	t      *testing.T
	ctx    context.Context
	store  *memrepo.Store
	repos  domain.Repositorios
	svc    *listaservice.Service
	predio domain.Predio
	codigo int64
}

func novoCenario(t *testing.T) *cenario {
	t.Helper()
	store := memrepo.NewStore()
	repos := store.Repositorios()
	log := logger.NewLogger("error")
	estoque := estoqueservice.NewService(store, repos, nil, time.Minute, log)
	enderecos := enderecamentoservice.NewService(store, repos, log)

	ctx := context.Background()
	rua, err := repos.Locais.CriarRua(ctx, domain.Rua{Nome: "Rua 1"})
	require.NoError(t, err)
	predio, err := repos.Locais.CriarPredio(ctx, domain.Predio{Nome: "Prédio A", IDRua: rua.ID})
	require.NoError(t, err)

	return &cenario{
		t: t, ctx: ctx, store: store, repos: repos, predio: predio, codigo: 100,
		svc: listaservice.NewService(store, repos, estoque, enderecos, log),
	}
}

func intPtr(v int) *int { return &v }

func (c *cenario) produto(deposito, estoque int, quantCaixas *int) domain.Produto {
	c.t.Helper()
	c.codigo++
	p, err := c.repos.Produtos.Criar(c.ctx, domain.Produto{
		CodInterno: c.codigo, Descricao: "Revestimento", Deposito: deposito, Estoque: estoque, QuantCaixas: quantCaixas,
	})
	require.NoError(c.t, err)
	return p
}

func (c *cenario) enderecamento(p domain.Produto, quantCaixas *int) domain.Enderecamento {
	c.t.Helper()
	e, err := c.repos.Enderecamentos.Criar(c.ctx, domain.Enderecamento{
		Tonalidade: "T1", Bitola: "B2", QuantCaixas: quantCaixas, IDProduto: p.ID, IDPredio: c.predio.ID,
	})
	require.NoError(c.t, err)
	return e
}

func (c *cenario) lerProduto(id int64) domain.Produto {
	c.t.Helper()
	p, err := c.repos.Produtos.BuscarPorID(c.ctx, id)
	require.NoError(c.t, err)
	return p
}

func (c *cenario) lerEnderecamento(id int64) domain.Enderecamento {
	c.t.Helper()
	e, err := c.repos.Enderecamentos.BuscarPorID(c.ctx, id)
	require.NoError(c.t, err)
	return e
}

func (c *cenario) lerLista(id int64) domain.Lista {
	c.t.Helper()
	l, err := c.repos.Listas.BuscarPorID(c.ctx, id)
	require.NoError(c.t, err)
	return l
}

// Cenário 1: finalizar move a quantidade do endereçamento e o torna indisponível.
func TestFinalizar_Sucesso(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(100, 0, nil)
	e := c.enderecamento(p, intPtr(10))
	lista, err := c.svc.Criar(c.ctx, "L1", nil)
	require.NoError(t, err)
	_, err = c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e.ID, nil)
	require.NoError(t, err)

	resumo, err := c.svc.Finalizar(c.ctx, lista.ID, &domain.Ator{UsuarioID: 3})

	require.NoError(t, err)
	assert.Equal(t, domain.ListaFinalizada, resumo.Lista.Status)
	assert.Equal(t, 1, resumo.Enderecamentos)
	assert.Equal(t, 10, resumo.QuantidadesPorProduto[p.ID])

	atualP := c.lerProduto(p.ID)
	assert.Equal(t, 90, atualP.Deposito)
	assert.Equal(t, 10, atualP.Estoque)

	atualE := c.lerEnderecamento(e.ID)
	assert.False(t, atualE.Disponivel)
	require.NotNil(t, atualE.QuantMovimentada)
	assert.Equal(t, 10, *atualE.QuantMovimentada)

	assert.False(t, c.lerLista(lista.ID).Status.Disponivel())
}

// Sem quant_caixas no endereçamento, vale a do produto; sem nenhuma, não há transferência.
func TestFinalizar_QuantidadeFallback(t *testing.T) {
	c := novoCenario(t)
	comPadrao := c.produto(50, 0, intPtr(4))
	semPadrao := c.produto(50, 0, nil)
	e1 := c.enderecamento(comPadrao, nil)
	e2 := c.enderecamento(semPadrao, nil)
	lista, _ := c.svc.Criar(c.ctx, "Fallback", nil)
	_, err := c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e1.ID, nil)
	require.NoError(t, err)
	_, err = c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e2.ID, nil)
	require.NoError(t, err)

	_, err = c.svc.Finalizar(c.ctx, lista.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, 46, c.lerProduto(comPadrao.ID).Deposito)
	assert.Equal(t, 50, c.lerProduto(semPadrao.ID).Deposito)
	assert.False(t, c.lerEnderecamento(e2.ID).Disponivel)
	assert.Nil(t, c.lerEnderecamento(e2.ID).QuantMovimentada)
}

// Cenário 3: falha em um membro desfaz tudo, inclusive membros já processados.
func TestFinalizar_EstoqueInsuficiente_Atomico(t *testing.T) {
	c := novoCenario(t)
	ok := c.produto(100, 0, nil) // processado primeiro (menor id de produto)
	falta := c.produto(5, 0, nil)
	e1 := c.enderecamento(ok, intPtr(10))
	e2 := c.enderecamento(falta, intPtr(10))
	lista, _ := c.svc.Criar(c.ctx, "L3", nil)
	_, err := c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e1.ID, nil)
	require.NoError(t, err)
	_, err = c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e2.ID, nil)
	require.NoError(t, err)
	antesOK, antesFalta := c.lerProduto(ok.ID), c.lerProduto(falta.ID)

	_, err = c.svc.Finalizar(c.ctx, lista.ID, nil)

	var insuf *apperror.InsufficientStockError
	require.True(t, errors.As(err, &insuf))
	assert.Equal(t, antesOK, c.lerProduto(ok.ID))
	assert.Equal(t, antesFalta, c.lerProduto(falta.ID))
	assert.True(t, c.lerEnderecamento(e1.ID).Disponivel)
	assert.True(t, c.lerEnderecamento(e2.ID).Disponivel)
	assert.Nil(t, c.lerEnderecamento(e1.ID).QuantMovimentada)
	assert.Equal(t, domain.ListaAberta, c.lerLista(lista.ID).Status)

	movs, err := c.repos.Movimentacoes.ListarPorProduto(c.ctx, ok.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestFinalizar_FalhaDePersistencia_Atomico(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(100, 0, nil)
	e := c.enderecamento(p, intPtr(10))
	lista, _ := c.svc.Criar(c.ctx, "L", nil)
	_, err := c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e.ID, nil)
	require.NoError(t, err)
	c.store.FalharEm("Listas.AtualizarStatus", apperror.NewDBError("timeout", errors.New("i/o timeout")))

	_, err = c.svc.Finalizar(c.ctx, lista.ID, nil)

	var persist *apperror.PersistenceError
	require.True(t, errors.As(err, &persist))
	assert.Equal(t, 100, c.lerProduto(p.ID).Deposito)
	assert.True(t, c.lerEnderecamento(e.ID).Disponivel)
	assert.Equal(t, domain.ListaAberta, c.lerLista(lista.ID).Status)
}

func TestFinalizar_ListaJaFinalizada(t *testing.T) {
	c := novoCenario(t)
	lista, _ := c.svc.Criar(c.ctx, "Vazia", nil)
	_, err := c.svc.Finalizar(c.ctx, lista.ID, nil)
	require.NoError(t, err)

	_, err = c.svc.Finalizar(c.ctx, lista.ID, nil)

	var finalizada *apperror.ListFinalizedError
	assert.True(t, errors.As(err, &finalizada))
}

func TestFinalizar_ListaInexistente(t *testing.T) {
	c := novoCenario(t)

	_, err := c.svc.Finalizar(c.ctx, 404, nil)

	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

// Finalizações concorrentes da mesma lista: só uma transfere.
func TestFinalizar_Concorrente_UmaVez(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(100, 0, nil)
	e := c.enderecamento(p, intPtr(10))
	lista, _ := c.svc.Criar(c.ctx, "Concorrente", nil)
	_, err := c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e.ID, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	erros := make([]error, 4)
	for i := range erros {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, erros[i] = c.svc.Finalizar(c.ctx, lista.ID, nil)
		}(i)
	}
	wg.Wait()

	sucessos := 0
	for _, err := range erros {
		if err == nil {
			sucessos++
		}
	}
	assert.Equal(t, 1, sucessos)
	assert.Equal(t, 90, c.lerProduto(p.ID).Deposito)
}

func TestDesfazerFinalizacao_RoundTrip(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(100, 5, nil)
	e1 := c.enderecamento(p, intPtr(10))
	e2 := c.enderecamento(p, intPtr(15))
	lista, _ := c.svc.Criar(c.ctx, "RT", nil)
	for _, e := range []domain.Enderecamento{e1, e2} {
		_, err := c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e.ID, nil)
		require.NoError(t, err)
	}
	_, err := c.svc.Finalizar(c.ctx, lista.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 75, c.lerProduto(p.ID).Deposito)

	resumo, err := c.svc.DesfazerFinalizacao(c.ctx, lista.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, 25, resumo.QuantidadesPorProduto[p.ID])
	atual := c.lerProduto(p.ID)
	assert.Equal(t, 100, atual.Deposito)
	assert.Equal(t, 5, atual.Estoque)
	for _, e := range []domain.Enderecamento{e1, e2} {
		depois := c.lerEnderecamento(e.ID)
		assert.True(t, depois.Disponivel)
		assert.Nil(t, depois.QuantMovimentada)
		id, ok := depois.Lista.ID()
		assert.True(t, ok)
		assert.Equal(t, lista.ID, id)
	}
	assert.Equal(t, domain.ListaAberta, c.lerLista(lista.ID).Status)

	movs, _ := c.repos.Movimentacoes.ListarPorProduto(c.ctx, p.ID, 10)
	assert.Len(t, movs, 4)
	assert.Equal(t, domain.MovEstorno, movs[0].Tipo)
}

func TestDesfazerFinalizacao_EstoqueJaRetirado(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(100, 0, nil)
	e := c.enderecamento(p, intPtr(10))
	lista, _ := c.svc.Criar(c.ctx, "Retirada", nil)
	_, err := c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e.ID, nil)
	require.NoError(t, err)
	_, err = c.svc.Finalizar(c.ctx, lista.ID, nil)
	require.NoError(t, err)

	estoque := estoqueservice.NewService(c.store, c.repos, nil, time.Minute, logger.NewLogger("error"))
	_, err = estoque.RetirarDoEstoque(c.ctx, p.ID, 8, nil)
	require.NoError(t, err)

	_, err = c.svc.DesfazerFinalizacao(c.ctx, lista.ID, nil)

	var insuf *apperror.InsufficientStockError
	require.True(t, errors.As(err, &insuf))
	assert.Equal(t, domain.ListaFinalizada, c.lerLista(lista.ID).Status)
	assert.False(t, c.lerEnderecamento(e.ID).Disponivel)
	assert.Equal(t, 2, c.lerProduto(p.ID).Estoque)
}

func TestDesfazerFinalizacao_ListaAberta(t *testing.T) {
	c := novoCenario(t)
	lista, _ := c.svc.Criar(c.ctx, "Aberta", nil)

	_, err := c.svc.DesfazerFinalizacao(c.ctx, lista.ID, nil)

	var validation *apperror.ValidationError
	assert.True(t, errors.As(err, &validation))
}

// Cenário 4.
func TestRemoverEnderecamento_ListaFinalizada(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(100, 0, nil)
	e := c.enderecamento(p, intPtr(1))
	lista, _ := c.svc.Criar(c.ctx, "L4", nil)
	_, err := c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e.ID, nil)
	require.NoError(t, err)
	_, err = c.svc.Finalizar(c.ctx, lista.ID, nil)
	require.NoError(t, err)

	_, err = c.svc.RemoverEnderecamento(c.ctx, lista.ID, e.ID, nil)

	var finalizada *apperror.ListFinalizedError
	assert.True(t, errors.As(err, &finalizada))
	id, ok := c.lerEnderecamento(e.ID).Lista.ID()
	assert.True(t, ok)
	assert.Equal(t, lista.ID, id)
}

func TestRemoverEnderecamento_DeOutraLista(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(10, 0, nil)
	e := c.enderecamento(p, nil)
	l1, _ := c.svc.Criar(c.ctx, "L1", nil)
	l2, _ := c.svc.Criar(c.ctx, "L2", nil)
	_, err := c.svc.AdicionarEnderecamento(c.ctx, l1.ID, e.ID, nil)
	require.NoError(t, err)

	_, err = c.svc.RemoverEnderecamento(c.ctx, l2.ID, e.ID, nil)

	var validation *apperror.ValidationError
	assert.True(t, errors.As(err, &validation))

	removido, err := c.svc.RemoverEnderecamento(c.ctx, l1.ID, e.ID, nil)
	require.NoError(t, err)
	assert.True(t, removido.Lista.Livre())
}

func TestAdicionarEnderecamento_ListaFinalizada(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(10, 0, nil)
	e := c.enderecamento(p, nil)
	lista, _ := c.svc.Criar(c.ctx, "F", nil)
	_, err := c.svc.Finalizar(c.ctx, lista.ID, nil)
	require.NoError(t, err)

	_, err = c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e.ID, nil)

	var finalizada *apperror.ListFinalizedError
	assert.True(t, errors.As(err, &finalizada))
	assert.True(t, c.lerEnderecamento(e.ID).Lista.Livre())
}

func TestCriar_NomeObrigatorio(t *testing.T) {
	c := novoCenario(t)

	_, err := c.svc.Criar(c.ctx, "   ", nil)

	var validation *apperror.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestRenomear(t *testing.T) {
	c := novoCenario(t)
	lista, _ := c.svc.Criar(c.ctx, "Antigo", nil)

	renomeada, err := c.svc.Renomear(c.ctx, lista.ID, " Novo ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Novo", renomeada.Nome)

	_, err = c.svc.Finalizar(c.ctx, lista.ID, nil)
	require.NoError(t, err)
	_, err = c.svc.Renomear(c.ctx, lista.ID, "Outro", nil)
	var finalizada *apperror.ListFinalizedError
	assert.True(t, errors.As(err, &finalizada))
}

func TestExcluir_ListaAbertaLiberaEnderecamentos(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(10, 0, nil)
	e := c.enderecamento(p, nil)
	lista, _ := c.svc.Criar(c.ctx, "Temporária", nil)
	_, err := c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e.ID, nil)
	require.NoError(t, err)

	require.NoError(t, c.svc.Excluir(c.ctx, lista.ID, nil))

	assert.True(t, c.lerEnderecamento(e.ID).Lista.Livre())
	_, err = c.svc.BuscarPorID(c.ctx, lista.ID)
	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestExcluir_ListaFinalizada(t *testing.T) {
	c := novoCenario(t)
	lista, _ := c.svc.Criar(c.ctx, "Final", nil)
	_, err := c.svc.Finalizar(c.ctx, lista.ID, nil)
	require.NoError(t, err)

	err = c.svc.Excluir(c.ctx, lista.ID, nil)

	var finalizada *apperror.ListFinalizedError
	assert.True(t, errors.As(err, &finalizada))
}

func TestListarTodas_Paginacao(t *testing.T) {
	c := novoCenario(t)
	for i := 0; i < 12; i++ {
		_, err := c.svc.Criar(c.ctx, "Lista", nil)
		require.NoError(t, err)
	}

	pagina, err := c.svc.ListarTodas(c.ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, pagina.Pagina)
	assert.Equal(t, listaservice.LimitePadrao, pagina.Limite)
	assert.Equal(t, 12, pagina.Total)
	assert.Len(t, pagina.Itens, 10)

	segunda, err := c.svc.ListarTodas(c.ctx, 2, 500)
	require.NoError(t, err)
	assert.Equal(t, listaservice.LimiteMaximo, segunda.Limite)
	assert.Empty(t, segunda.Itens)
}

func TestListarDisponiveis_EGetEnderecamentos(t *testing.T) {
	c := novoCenario(t)
	p := c.produto(100, 0, nil)
	e := c.enderecamento(p, intPtr(2))
	aberta, _ := c.svc.Criar(c.ctx, "Aberta", nil)
	fechada, _ := c.svc.Criar(c.ctx, "Fechada", nil)
	_, err := c.svc.AdicionarEnderecamento(c.ctx, aberta.ID, e.ID, nil)
	require.NoError(t, err)
	_, err = c.svc.Finalizar(c.ctx, fechada.ID, nil)
	require.NoError(t, err)

	abertas, err := c.svc.ListarDisponiveis(c.ctx)
	require.NoError(t, err)
	require.Len(t, abertas, 1)
	assert.Equal(t, aberta.ID, abertas[0].ID)

	membros, err := c.svc.GetEnderecamentos(c.ctx, aberta.ID)
	require.NoError(t, err)
	require.Len(t, membros, 1)
	assert.Equal(t, "Prédio A", membros[0].PredioNome)
	assert.Equal(t, "Rua 1", membros[0].RuaNome)

	_, err = c.svc.GetEnderecamentos(c.ctx, 9999)
	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestListarTodas_PaginaForaDoIntervalo(t *testing.T) {
	c := novoCenario(t)
	for i := 0; i < 3; i++ {
		_, err := c.svc.Criar(c.ctx, "Lista", nil)
		require.NoError(t, err)
	}

	var err error
	assert.NotPanics(t, func() {
		_, err = c.svc.ListarTodas(c.ctx, math.MaxInt64/10+2, 10)
	})
	var validacao *apperror.ValidationError
	assert.True(t, errors.As(err, &validacao))
}

func TestFinalizar_BloqueiaCadaProdutoUmaVez(t *testing.T) {
	c := novoCenario(t)
	piso := c.produto(100, 0, nil)
	rejunte := c.produto(50, 0, nil)
	lista, err := c.svc.Criar(c.ctx, "Carga", nil)
	require.NoError(t, err)
	for _, e := range []domain.Enderecamento{
		c.enderecamento(piso, intPtr(10)),
		c.enderecamento(piso, intPtr(20)),
		c.enderecamento(rejunte, intPtr(5)),
	} {
		_, err := c.svc.AdicionarEnderecamento(c.ctx, lista.ID, e.ID, nil)
		require.NoError(t, err)
	}

	antes := c.store.Chamadas("Produtos.BuscarParaAtualizacao")
	_, err = c.svc.Finalizar(c.ctx, lista.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.store.Chamadas("Produtos.BuscarParaAtualizacao")-antes)

	p := c.lerProduto(piso.ID)
	assert.Equal(t, 70, p.Deposito)
	assert.Equal(t, 30, p.Estoque)

	antes = c.store.Chamadas("Produtos.BuscarParaAtualizacao")
	_, err = c.svc.DesfazerFinalizacao(c.ctx, lista.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.store.Chamadas("Produtos.BuscarParaAtualizacao")-antes)
	assert.Equal(t, 100, c.lerProduto(piso.ID).Deposito)
	assert.Equal(t, 50, c.lerProduto(rejunte.ID).Deposito)
}
