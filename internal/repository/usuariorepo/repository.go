package usuariorepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/database"
	"casamattos/internal/pkg/logger"
)

// UsuarioRepository implementa a interface domain.UsuarioRepository.
type UsuarioRepository struct {
	DB        database.Querier
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUsuarioRepository cria uma nova instância do UsuarioRepository, injetando o DB.
func NewUsuarioRepository(db database.Querier, dbTimeout time.Duration, logger logger.Logger) *UsuarioRepository {
	return &UsuarioRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Salvar insere um novo usuário no banco de dados.
func (r *UsuarioRepository) Salvar(ctx context.Context, usuario domain.Usuario) (domain.Usuario, error) {
	r.logger.Debug("Iniciando Salvar de usuário no repositório.", map[string]interface{}{"login": usuario.Login})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO usuarios (nome, login, senha_hash, ativo, perfil)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.DB.QueryRowContext(ctxTimeout, query,
		usuario.Nome, usuario.Login, usuario.SenhaHash, usuario.Ativo, string(usuario.Perfil),
	).Scan(&usuario.ID, &usuario.CreatedAt, &usuario.UpdatedAt)

	if err != nil {
		if database.IsUniqueViolation(err) {
			r.logger.Info("Login já cadastrado.", map[string]interface{}{"login": usuario.Login})
			return domain.Usuario{}, apperror.NewConflictError(fmt.Sprintf("O login '%s' já está em uso.", usuario.Login))
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.Usuario{}, apperror.NewDBError("Falha ao inserir usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"usuario_id": usuario.ID, "login": usuario.Login})
	return usuario, nil
}

// BuscarPorLogin busca um usuário pelo login.
func (r *UsuarioRepository) BuscarPorLogin(ctx context.Context, login string) (domain.Usuario, error) {
	r.logger.Debug("Iniciando BuscarPorLogin no repositório.", map[string]interface{}{"login": login})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT id, nome, login, senha_hash, ativo, perfil, created_at, updated_at FROM usuarios WHERE login = $1`

	var usuario domain.Usuario
	var perfil string
	err := r.DB.QueryRowContext(ctxTimeout, query, login).Scan(
		&usuario.ID,
		&usuario.Nome,
		&usuario.Login,
		&usuario.SenhaHash,
		&usuario.Ativo,
		&perfil,
		&usuario.CreatedAt,
		&usuario.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Usuário não encontrado no DB por login.", map[string]interface{}{"login": login})
			return domain.Usuario{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com login '%s' não encontrado", login))
		}
		r.logger.Error("Falha ao buscar usuário por login no DB.", err)
		return domain.Usuario{}, apperror.NewDBError("Falha ao buscar usuário por login", err)
	}
	usuario.Perfil = domain.PerfilUsuario(perfil)

	return usuario, nil
}
