package produtoservice_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/service/produtoservice"
)

// MockProdutoRepository é uma implementação mock da interface ProdutoRepository
type MockProdutoRepository struct {
	mock.Mock
}

func (m *MockProdutoRepository) Criar(ctx context.Context, p domain.Produto) (domain.Produto, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Produto), args.Error(1)
}

func (m *MockProdutoRepository) BuscarPorID(ctx context.Context, id int64) (domain.Produto, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Produto), args.Error(1)
}

func (m *MockProdutoRepository) Listar(ctx context.Context, filtro domain.ProdutoFiltro) ([]domain.Produto, error) {
	args := m.Called(ctx, filtro)
	return args.Get(0).([]domain.Produto), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

func TestCriar_Success(t *testing.T) {
	mockRepo := new(MockProdutoRepository)
	svc := produtoservice.NewService(mockRepo, newTestLogger())

	entrada := domain.Produto{
		CodInterno: 10, Descricao: "  Porcelanato Polido  ", Deposito: 40,
		Custo: decimal.NewNullDecimal(decimal.RequireFromString("35.90")),
	}
	esperado := entrada
	esperado.Descricao = "Porcelanato Polido"
	criado := esperado
	criado.ID = 1

	mockRepo.On("Criar", mock.Anything, esperado).Return(criado, nil)

	p, err := svc.Criar(context.Background(), entrada, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	mockRepo.AssertExpectations(t)
}

func TestCriar_ValidationErrors(t *testing.T) {
	zero := 0
	casos := map[string]domain.Produto{
		"codigo invalido":   {Descricao: "X"},
		"sem descricao":     {CodInterno: 1},
		"deposito negativo": {CodInterno: 1, Descricao: "X", Deposito: -1},
		"caixas zero":       {CodInterno: 1, Descricao: "X", QuantCaixas: &zero},
		"custo negativo":    {CodInterno: 1, Descricao: "X", Custo: decimal.NewNullDecimal(decimal.NewFromInt(-2))},
	}

	for nome, p := range casos {
		t.Run(nome, func(t *testing.T) {
			mockRepo := new(MockProdutoRepository)
			svc := produtoservice.NewService(mockRepo, newTestLogger())

			_, err := svc.Criar(context.Background(), p, nil)

			var validationErr *apperror.ValidationError
			assert.True(t, errors.As(err, &validationErr))
			mockRepo.AssertNotCalled(t, "Criar", mock.Anything, mock.Anything)
		})
	}
}

func TestCriar_Conflict(t *testing.T) {
	mockRepo := new(MockProdutoRepository)
	svc := produtoservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("Criar", mock.Anything, mock.Anything).Return(domain.Produto{}, apperror.NewConflictError("duplicado"))

	_, err := svc.Criar(context.Background(), domain.Produto{CodInterno: 1, Descricao: "X"}, nil)

	var conflictErr *apperror.ConflictError
	assert.True(t, errors.As(err, &conflictErr))
}

func TestBuscarPorID_InvalidID(t *testing.T) {
	svc := produtoservice.NewService(new(MockProdutoRepository), newTestLogger())

	_, err := svc.BuscarPorID(context.Background(), 0)

	var validationErr *apperror.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestBuscarPorID_NotFound(t *testing.T) {
	mockRepo := new(MockProdutoRepository)
	svc := produtoservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("BuscarPorID", mock.Anything, int64(9)).Return(domain.Produto{}, apperror.NewNotFoundError("Produto com ID 9 não encontrado."))

	_, err := svc.BuscarPorID(context.Background(), 9)

	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	mockRepo.AssertExpectations(t)
}

func TestListar_NormalizaPaginacaoEFiltros(t *testing.T) {
	mockRepo := new(MockProdutoRepository)
	svc := produtoservice.NewService(mockRepo, newTestLogger())

	esperado := domain.ProdutoFiltro{Pagina: 1, Limite: 100, Descricao: "piso", CodBarras: "789"}
	mockRepo.On("Listar", mock.Anything, esperado).Return([]domain.Produto{{ID: 1}}, nil)

	produtos, err := svc.Listar(context.Background(), -2, 1000, map[string]string{"descricao": " piso ", "cod_barras": "789"})

	assert.NoError(t, err)
	assert.Len(t, produtos, 1)
	mockRepo.AssertExpectations(t)
}

func TestListar_RepoError(t *testing.T) {
	mockRepo := new(MockProdutoRepository)
	svc := produtoservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("Listar", mock.Anything, domain.ProdutoFiltro{Pagina: 1, Limite: 10}).
		Return([]domain.Produto(nil), apperror.NewDBError("falha", errors.New("conn refused")))

	_, err := svc.Listar(context.Background(), 1, 0, nil)

	var persist *apperror.PersistenceError
	assert.True(t, errors.As(err, &persist))
}

func TestListar_PaginaForaDoIntervalo(t *testing.T) {
	mockRepo := new(MockProdutoRepository)
	svc := produtoservice.NewService(mockRepo, newTestLogger())

	_, err := svc.Listar(context.Background(), math.MaxInt, 50, nil)

	var validacao *apperror.ValidationError
	assert.True(t, errors.As(err, &validacao))
	mockRepo.AssertNotCalled(t, "Listar", mock.Anything, mock.Anything)
}
