package usuarioservice

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
)

const tamanhoMinimoSenha = 6

// UsuarioService define o serviço de lógica de negócio para a entidade Usuario.
type UsuarioService struct {
	UsuarioRepo domain.UsuarioRepository
	TokenSvc    TokenService
	logger      logger.Logger
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID int64, userRole string) (string, error)
}

// NewService cria uma nova instância do UsuarioService, injetando o Repositório.
func NewService(repo domain.UsuarioRepository, tokenSvc TokenService, logger logger.Logger) *UsuarioService {
	return &UsuarioService{
		UsuarioRepo: repo,
		TokenSvc:    tokenSvc,
		logger:      logger,
	}
}

// Registrar registra um novo operador. A senha é guardada apenas como hash bcrypt.
func (s *UsuarioService) Registrar(ctx context.Context, registro domain.UsuarioRegistro) (domain.Usuario, error) {
	return s.criar(ctx, registro, domain.PerfilOperador)
}

// GarantirAdmin cria o administrador inicial se o login ainda não existir.
func (s *UsuarioService) GarantirAdmin(ctx context.Context, login, senha string) error {
	if login == "" || senha == "" {
		return nil
	}
	_, err := s.UsuarioRepo.BuscarPorLogin(ctx, login)
	if err == nil {
		return nil
	}
	var notFound *apperror.NotFoundError
	if !errors.As(err, &notFound) {
		return err
	}

	_, err = s.criar(ctx, domain.UsuarioRegistro{Nome: "Administrador", Login: login, Senha: senha}, domain.PerfilAdmin)
	return err
}

func (s *UsuarioService) criar(ctx context.Context, registro domain.UsuarioRegistro, perfil domain.PerfilUsuario) (domain.Usuario, error) {
	registro.Nome = strings.TrimSpace(registro.Nome)
	registro.Login = strings.TrimSpace(registro.Login)
	if registro.Nome == "" || registro.Login == "" || registro.Senha == "" {
		return domain.Usuario{}, apperror.NewValidationError("Nome, login e senha são obrigatórios.")
	}
	if len(registro.Senha) < tamanhoMinimoSenha {
		return domain.Usuario{}, apperror.NewValidationError("A senha deve ter pelo menos 6 caracteres.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(registro.Senha), bcrypt.DefaultCost)
	if err != nil {
		return domain.Usuario{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	usuario, err := s.UsuarioRepo.Salvar(ctx, domain.Usuario{
		Nome:      registro.Nome,
		Login:     registro.Login,
		SenhaHash: string(hash),
		Ativo:     true,
		Perfil:    perfil,
	})
	if err != nil {
		// Login duplicado já chega como ConflictError do repositório.
		return domain.Usuario{}, err
	}

	s.logger.Info("Usuário registrado.", map[string]interface{}{"usuario_id": usuario.ID, "perfil": usuario.Perfil})
	return usuario, nil
}

// Login autentica um usuário ativo e gera um JWT.
func (s *UsuarioService) Login(ctx context.Context, login string, senha string) (string, error) {
	if login == "" || senha == "" {
		return "", apperror.NewUnauthorizedError("Login e senha são obrigatórios.")
	}

	usuario, err := s.UsuarioRepo.BuscarPorLogin(ctx, login)
	if err != nil {
		// NotFound vira 401 para não revelar quais logins existem.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.SenhaHash), []byte(senha)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}
	if !usuario.Ativo {
		s.logger.Warn("Tentativa de login de usuário inativo.", map[string]interface{}{"usuario_id": usuario.ID})
		return "", apperror.NewUnauthorizedError("Usuário inativo.")
	}

	tokenString, err := s.TokenSvc.GenerateToken(usuario.ID, string(usuario.Perfil))
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"usuario_id": usuario.ID})
	return tokenString, nil
}
