package localservice_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/service/localservice"
)

// MockLocalRepository é uma implementação mock da interface domain.LocalRepository
type MockLocalRepository struct {
	mock.Mock
}

func (m *MockLocalRepository) CriarRua(ctx context.Context, rua domain.Rua) (domain.Rua, error) {
	args := m.Called(ctx, rua)
	return args.Get(0).(domain.Rua), args.Error(1)
}

func (m *MockLocalRepository) BuscarRuaPorID(ctx context.Context, id int64) (domain.Rua, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Rua), args.Error(1)
}

func (m *MockLocalRepository) ListarRuas(ctx context.Context) ([]domain.Rua, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Rua), args.Error(1)
}

func (m *MockLocalRepository) CriarPredio(ctx context.Context, predio domain.Predio) (domain.Predio, error) {
	args := m.Called(ctx, predio)
	return args.Get(0).(domain.Predio), args.Error(1)
}

func (m *MockLocalRepository) BuscarPredioPorID(ctx context.Context, id int64) (domain.Predio, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Predio), args.Error(1)
}

func (m *MockLocalRepository) ListarPredios(ctx context.Context, idRua *int64) ([]domain.Predio, error) {
	args := m.Called(ctx, idRua)
	return args.Get(0).([]domain.Predio), args.Error(1)
}

func newTestLogger() logger.Logger {
	return logger.NewLogger("error")
}

// --- Testes para CriarRua ---

func TestCriarRua_Success(t *testing.T) {
	mockRepo := new(MockLocalRepository)
	svc := localservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("CriarRua", mock.Anything, domain.Rua{Nome: "Rua A"}).Return(domain.Rua{ID: 1, Nome: "Rua A"}, nil)

	rua, err := svc.CriarRua(context.Background(), domain.Rua{Nome: "  Rua A "}, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), rua.ID)
	mockRepo.AssertExpectations(t)
}

func TestCriarRua_NomeInvalido(t *testing.T) {
	for _, nome := range []string{"", "   ", strings.Repeat("x", 101)} {
		mockRepo := new(MockLocalRepository)
		svc := localservice.NewService(mockRepo, newTestLogger())

		_, err := svc.CriarRua(context.Background(), domain.Rua{Nome: nome}, nil)

		var validationErr *apperror.ValidationError
		assert.True(t, errors.As(err, &validationErr))
		mockRepo.AssertNotCalled(t, "CriarRua", mock.Anything, mock.Anything)
	}
}

// --- Testes para CriarPredio ---

func TestCriarPredio_Success(t *testing.T) {
	mockRepo := new(MockLocalRepository)
	svc := localservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("BuscarRuaPorID", mock.Anything, int64(3)).Return(domain.Rua{ID: 3, Nome: "C"}, nil)
	mockRepo.On("CriarPredio", mock.Anything, domain.Predio{Nome: "P1", IDRua: 3}).Return(domain.Predio{ID: 9, Nome: "P1", IDRua: 3}, nil)

	predio, err := svc.CriarPredio(context.Background(), domain.Predio{Nome: "P1", IDRua: 3}, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(9), predio.ID)
	mockRepo.AssertExpectations(t)
}

func TestCriarPredio_RuaInexistente(t *testing.T) {
	mockRepo := new(MockLocalRepository)
	svc := localservice.NewService(mockRepo, newTestLogger())

	mockRepo.On("BuscarRuaPorID", mock.Anything, int64(4)).Return(domain.Rua{}, apperror.NewNotFoundError("Rua com ID 4 não encontrada."))

	_, err := svc.CriarPredio(context.Background(), domain.Predio{Nome: "P1", IDRua: 4}, nil)

	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	mockRepo.AssertNotCalled(t, "CriarPredio", mock.Anything, mock.Anything)
}

func TestListarPredios_FiltroPorRua(t *testing.T) {
	mockRepo := new(MockLocalRepository)
	svc := localservice.NewService(mockRepo, newTestLogger())
	idRua := int64(2)

	mockRepo.On("ListarPredios", mock.Anything, &idRua).Return([]domain.Predio{{ID: 1, IDRua: 2}}, nil)

	predios, err := svc.ListarPredios(context.Background(), &idRua)

	assert.NoError(t, err)
	assert.Len(t, predios, 1)

	invalido := int64(-1)
	_, err = svc.ListarPredios(context.Background(), &invalido)
	var validationErr *apperror.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}
