package localservice

import (
	"context"
	"strings"
	"unicode/utf8"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
)

// Service mantém a hierarquia física do armazém (ruas e prédios).
type Service struct {
	repo   domain.LocalRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Locais.
func NewService(repo domain.LocalRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CriarRua cria uma nova rua após validações de negócio.
func (s *Service) CriarRua(ctx context.Context, rua domain.Rua, ator *domain.Ator) (domain.Rua, error) {
	s.logger.Debug("Iniciando criação de rua no serviço.", ator.LogFields(map[string]interface{}{"nome": rua.Nome}))

	rua.Nome = strings.TrimSpace(rua.Nome)
	if err := validarNome(rua.Nome, "da rua"); err != nil {
		s.logger.Warn("Falha na validação do nome da rua.", map[string]interface{}{"nome": rua.Nome, "error": err.Error()})
		return domain.Rua{}, err
	}

	criada, err := s.repo.CriarRua(ctx, rua)
	if err != nil {
		s.logger.Error("Falha ao criar rua no repositório.", err)
		return domain.Rua{}, err
	}

	s.logger.Info("Rua criada com sucesso.", map[string]interface{}{"id": criada.ID, "nome": criada.Nome})
	return criada, nil
}

// ListarRuas busca todas as ruas.
func (s *Service) ListarRuas(ctx context.Context) ([]domain.Rua, error) {
	return s.repo.ListarRuas(ctx)
}

// CriarPredio cria um prédio em uma rua existente.
func (s *Service) CriarPredio(ctx context.Context, predio domain.Predio, ator *domain.Ator) (domain.Predio, error) {
	s.logger.Debug("Iniciando criação de prédio no serviço.", ator.LogFields(map[string]interface{}{
		"nome": predio.Nome, "id_rua": predio.IDRua,
	}))

	predio.Nome = strings.TrimSpace(predio.Nome)
	if err := validarNome(predio.Nome, "do prédio"); err != nil {
		return domain.Predio{}, err
	}
	if predio.IDRua <= 0 {
		return domain.Predio{}, apperror.NewValidationError("A rua do prédio é obrigatória.")
	}

	if _, err := s.repo.BuscarRuaPorID(ctx, predio.IDRua); err != nil {
		return domain.Predio{}, err
	}

	criado, err := s.repo.CriarPredio(ctx, predio)
	if err != nil {
		s.logger.Error("Falha ao criar prédio no repositório.", err)
		return domain.Predio{}, err
	}

	s.logger.Info("Prédio criado com sucesso.", map[string]interface{}{"id": criado.ID, "nome": criado.Nome})
	return criado, nil
}

// ListarPredios lista os prédios, opcionalmente filtrando por rua.
func (s *Service) ListarPredios(ctx context.Context, idRua *int64) ([]domain.Predio, error) {
	if idRua != nil && *idRua <= 0 {
		return nil, apperror.NewValidationError("O ID da rua deve ser um inteiro positivo.")
	}
	return s.repo.ListarPredios(ctx, idRua)
}

func validarNome(nome, sujeito string) error {
	if nome == "" {
		return apperror.NewValidationError("O nome " + sujeito + " não pode ser vazio.")
	}
	if utf8.RuneCountInString(nome) > 100 {
		return apperror.NewValidationError("O nome " + sujeito + " deve ter no máximo 100 caracteres.")
	}
	return nil
}
