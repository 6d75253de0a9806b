package local

import (
	"context"
	"net/http"

	"casamattos/internal/api/httpx"
	"casamattos/internal/domain"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/pkg/middleware"
)

// LocalService define o contrato que o Handler espera da camada de Serviço.
type LocalService interface {
	CriarRua(ctx context.Context, rua domain.Rua, ator *domain.Ator) (domain.Rua, error)
	ListarRuas(ctx context.Context) ([]domain.Rua, error)
	CriarPredio(ctx context.Context, predio domain.Predio, ator *domain.Ator) (domain.Predio, error)
	ListarPredios(ctx context.Context, idRua *int64) ([]domain.Predio, error)
}

// RuaRequest é o payload de POST /v1/ruas.
type RuaRequest struct {
	Nome string `json:"nome"`
}

// PredioRequest é o payload de POST /v1/predios.
type PredioRequest struct {
	Nome  string `json:"nome"`
	IDRua int64  `json:"id_rua"`
}

// Handler agrupa os métodos de Handler de ruas e prédios.
type Handler struct {
	Service LocalService
	Logger  logger.Logger
	resp    httpx.Responder
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc LocalService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log, resp: httpx.NewResponder(log)}
}

// CriarRuaHandler lida com a requisição POST /v1/ruas.
// @Summary Cria uma nova rua
// @Tags locais
// @Accept json
// @Produce json
// @Param rua body RuaRequest true "Nome da rua"
// @Success 201 {object} httpx.SuccessResponse{data=domain.Rua}
// @Failure 400 {object} httpx.ErrorResponse "Payload inválido"
// @Failure 409 {object} httpx.ErrorResponse "Rua já cadastrada"
// @Security ApiKeyAuth
// @Router /ruas [post]
func (h *Handler) CriarRuaHandler(w http.ResponseWriter, r *http.Request) {
	var req RuaRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	rua, err := h.Service.CriarRua(r.Context(), domain.Rua{Nome: req.Nome}, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, rua, err, http.StatusCreated)
}

// ListarRuasHandler lida com a requisição GET /v1/ruas.
// @Summary Lista todas as ruas
// @Tags locais
// @Produce json
// @Success 200 {object} httpx.SuccessResponse{data=[]domain.Rua}
// @Security ApiKeyAuth
// @Router /ruas [get]
func (h *Handler) ListarRuasHandler(w http.ResponseWriter, r *http.Request) {
	ruas, err := h.Service.ListarRuas(r.Context())
	h.resp.Respond(w, r, ruas, err, http.StatusOK)
}

// CriarPredioHandler lida com a requisição POST /v1/predios.
// @Summary Cria um prédio em uma rua
// @Tags locais
// @Accept json
// @Produce json
// @Param predio body PredioRequest true "Dados do prédio"
// @Success 201 {object} httpx.SuccessResponse{data=domain.Predio}
// @Failure 404 {object} httpx.ErrorResponse "Rua não encontrada"
// @Security ApiKeyAuth
// @Router /predios [post]
func (h *Handler) CriarPredioHandler(w http.ResponseWriter, r *http.Request) {
	var req PredioRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	p, err := h.Service.CriarPredio(r.Context(), domain.Predio{Nome: req.Nome, IDRua: req.IDRua}, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, p, err, http.StatusCreated)
}

// ListarPrediosHandler lida com a requisição GET /v1/predios.
// @Summary Lista prédios, opcionalmente por rua
// @Tags locais
// @Produce json
// @Param id_rua query int false "Filtra pela rua"
// @Success 200 {object} httpx.SuccessResponse{data=[]domain.Predio}
// @Security ApiKeyAuth
// @Router /predios [get]
func (h *Handler) ListarPrediosHandler(w http.ResponseWriter, r *http.Request) {
	idRua, err := httpx.QueryInt64Ptr(r, "id_rua")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	predios, err := h.Service.ListarPredios(r.Context(), idRua)
	h.resp.Respond(w, r, predios, err, http.StatusOK)
}
