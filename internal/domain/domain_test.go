package domain_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
)

func TestProduto_TransferirParaEstoque(t *testing.T) {
	p := domain.Produto{CodInterno: 1, Deposito: 10, Estoque: 2}

	require.NoError(t, p.TransferirParaEstoque(4))
	assert.Equal(t, 6, p.Deposito)
	assert.Equal(t, 6, p.Estoque)

	err := p.TransferirParaEstoque(7)
	var insuficiente *apperror.InsufficientStockError
	assert.True(t, errors.As(err, &insuficiente))
	assert.Equal(t, 6, p.Deposito, "produto não muda em caso de erro")
	assert.Equal(t, 6, p.Estoque)
}

func TestProduto_QuantidadeInvalida(t *testing.T) {
	p := domain.Produto{Deposito: 5, Estoque: 5}
	var validacao *apperror.ValidationError

	assert.True(t, errors.As(p.TransferirParaEstoque(0), &validacao))
	assert.True(t, errors.As(p.DevolverAoDeposito(-1), &validacao))
	assert.True(t, errors.As(p.RetirarDoEstoque(0), &validacao))
	assert.Equal(t, domain.Produto{Deposito: 5, Estoque: 5}, p)
}

func TestProduto_DevolverERetirar(t *testing.T) {
	p := domain.Produto{Deposito: 0, Estoque: 8}

	require.NoError(t, p.DevolverAoDeposito(3))
	assert.Equal(t, 3, p.Deposito)
	assert.Equal(t, 5, p.Estoque)

	require.NoError(t, p.RetirarDoEstoque(5))
	assert.Equal(t, 0, p.Estoque)
	assert.Equal(t, 3, p.Deposito)

	var insuficiente *apperror.InsufficientStockError
	assert.True(t, errors.As(p.RetirarDoEstoque(1), &insuficiente))
	assert.True(t, errors.As(p.DevolverAoDeposito(1), &insuficiente))
}

func TestStatusLista_Transicoes(t *testing.T) {
	s, err := domain.ListaAberta.Finalizar()
	require.NoError(t, err)
	assert.Equal(t, domain.ListaFinalizada, s)

	_, err = domain.ListaFinalizada.Finalizar()
	var finalizada *apperror.ListFinalizedError
	assert.True(t, errors.As(err, &finalizada))

	s, err = domain.ListaFinalizada.Reabrir()
	require.NoError(t, err)
	assert.Equal(t, domain.ListaAberta, s)

	_, err = domain.ListaAberta.Reabrir()
	var validacao *apperror.ValidationError
	assert.True(t, errors.As(err, &validacao))

	assert.NoError(t, domain.ListaAberta.ExigirAberta())
	assert.Error(t, domain.ListaFinalizada.ExigirAberta())
	assert.Equal(t, domain.ListaAberta, domain.StatusDe(true))
	assert.Equal(t, domain.ListaFinalizada, domain.StatusDe(false))
}

func TestLista_JSON(t *testing.T) {
	b, err := json.Marshal(domain.Lista{ID: 3, Nome: "Separação", Status: domain.ListaFinalizada})
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "FINALIZADA", m["status"])
	assert.Equal(t, false, m["disponivel"])
	assert.Equal(t, "Separação", m["nome"])
}

func TestListaRef_JSON(t *testing.T) {
	livre, err := json.Marshal(domain.SemLista())
	require.NoError(t, err)
	assert.Equal(t, "null", string(livre))

	vinculado, err := json.Marshal(domain.NaLista(12))
	require.NoError(t, err)
	assert.Equal(t, "12", string(vinculado))

	var r domain.ListaRef
	require.NoError(t, json.Unmarshal([]byte("12"), &r))
	id, ok := r.ID()
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	require.NoError(t, json.Unmarshal([]byte("null"), &r))
	assert.True(t, r.Livre())
	assert.Nil(t, r.Ptr())
}

func TestAtor_NilSeguro(t *testing.T) {
	var ator *domain.Ator
	assert.Nil(t, ator.UsuarioIDPtr())
	assert.Empty(t, ator.LogFields(nil))

	ator = &domain.Ator{UsuarioID: 4}
	assert.Equal(t, int64(4), *ator.UsuarioIDPtr())
	assert.Equal(t, int64(4), ator.LogFields(nil)["usuario_id"])
}

func TestNormalizarPaginacao(t *testing.T) {
	casos := []struct {
		nome                     string
		pagina, limite           int
		paginaEsperada, esperado int
	}{
		{"padroes", 0, 0, 1, 10},
		{"pagina negativa", -5, 20, 1, 20},
		{"limite acima do maximo", 3, 1000, 3, 100},
		{"ultima pagina representavel", math.MaxInt / 100, 100, math.MaxInt / 100, 100},
	}
	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			pagina, limite, err := domain.NormalizarPaginacao(c.pagina, c.limite, 10, 100)
			require.NoError(t, err)
			assert.Equal(t, c.paginaEsperada, pagina)
			assert.Equal(t, c.esperado, limite)
		})
	}
}

func TestNormalizarPaginacao_DeslocamentoEstoura(t *testing.T) {
	_, _, err := domain.NormalizarPaginacao(math.MaxInt64/10+2, 10, 10, 100)

	var validacao *apperror.ValidationError
	assert.True(t, errors.As(err, &validacao))
}
