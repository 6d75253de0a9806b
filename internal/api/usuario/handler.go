package usuario

import (
	"context"
	"net/http"

	"casamattos/internal/api/httpx"
	"casamattos/internal/domain"
	"casamattos/internal/pkg/logger"
)

// UsuarioService define o contrato para as operações de registro e login.
type UsuarioService interface {
	Registrar(ctx context.Context, registro domain.UsuarioRegistro) (domain.Usuario, error)
	Login(ctx context.Context, login string, senha string) (string, error)
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Login string `json:"login"`
	Senha string `json:"senha"`
}

// TokenResponse é o corpo de sucesso do login.
type TokenResponse struct {
	Token string `json:"token"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UsuarioService
	Logger  logger.Logger
	resp    httpx.Responder
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UsuarioService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log, resp: httpx.NewResponder(log)}
}

// RegistrarHandler lida com a requisição POST /v1/register.
// @Summary Registra um novo operador
// @Description Cria um usuário com perfil operador; a senha é guardada como hash bcrypt.
// @Tags usuarios
// @Accept json
// @Produce json
// @Param registro body domain.UsuarioRegistro true "Nome, login e senha"
// @Success 201 {object} httpx.SuccessResponse{data=domain.Usuario}
// @Failure 400 {object} httpx.ErrorResponse "Payload inválido"
// @Failure 409 {object} httpx.ErrorResponse "Login já cadastrado"
// @Router /register [post]
func (h *Handler) RegistrarHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UsuarioRegistro
	if err := httpx.Decode(r, &reg); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	// O hash da senha não sai no JSON (tag "-").
	u, err := h.Service.Registrar(r.Context(), reg)
	h.resp.Respond(w, r, u, err, http.StatusCreated)
}

// LoginHandler lida com a requisição POST /v1/login.
// @Summary Autentica um usuário e retorna um JWT
// @Tags usuarios
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais"
// @Success 200 {object} httpx.SuccessResponse{data=TokenResponse}
// @Failure 401 {object} httpx.ErrorResponse "Credenciais inválidas"
// @Router /login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	tok, err := h.Service.Login(r.Context(), req.Login, req.Senha)
	h.resp.Respond(w, r, TokenResponse{Token: tok}, err, http.StatusOK)
}
