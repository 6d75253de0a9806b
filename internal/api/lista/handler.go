package lista

import (
	"context"
	"net/http"

	"casamattos/internal/api/httpx"
	"casamattos/internal/domain"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/pkg/middleware"
)

// ListaService define o contrato que o Handler espera do ciclo de vida das listas.
type ListaService interface {
	Criar(ctx context.Context, nome string, ator *domain.Ator) (domain.Lista, error)
	Renomear(ctx context.Context, id int64, nome string, ator *domain.Ator) (domain.Lista, error)
	Excluir(ctx context.Context, id int64, ator *domain.Ator) error
	BuscarPorID(ctx context.Context, id int64) (domain.Lista, error)
	ListarTodas(ctx context.Context, pagina, limite int) (domain.Pagina[domain.Lista], error)
	ListarDisponiveis(ctx context.Context) ([]domain.Lista, error)
	GetEnderecamentos(ctx context.Context, id int64) ([]domain.EnderecamentoDetalhado, error)
	AdicionarEnderecamento(ctx context.Context, idLista, idEnderecamento int64, ator *domain.Ator) (domain.Enderecamento, error)
	RemoverEnderecamento(ctx context.Context, idLista, idEnderecamento int64, ator *domain.Ator) (domain.Enderecamento, error)
	Finalizar(ctx context.Context, id int64, ator *domain.Ator) (domain.ResumoMovimentacao, error)
	DesfazerFinalizacao(ctx context.Context, id int64, ator *domain.Ator) (domain.ResumoMovimentacao, error)
}

// ListaRequest é o payload de criação e renomeação.
type ListaRequest struct {
	Nome string `json:"nome"`
}

// MembroRequest é o payload de POST /v1/listas/{id}/enderecamentos.
type MembroRequest struct {
	IDEnderecamento int64 `json:"id_enderecamento"`
}

// Handler agrupa os métodos de Handler de listas.
type Handler struct {
	Service ListaService
	Logger  logger.Logger
	resp    httpx.Responder
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ListaService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log, resp: httpx.NewResponder(log)}
}

// CriarHandler lida com a requisição POST /v1/listas.
// @Summary Cria uma lista de separação aberta
// @Tags listas
// @Accept json
// @Produce json
// @Param lista body ListaRequest true "Nome da lista"
// @Success 201 {object} httpx.SuccessResponse{data=domain.Lista}
// @Failure 400 {object} httpx.ErrorResponse "Nome inválido"
// @Security ApiKeyAuth
// @Router /listas [post]
func (h *Handler) CriarHandler(w http.ResponseWriter, r *http.Request) {
	var req ListaRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	l, err := h.Service.Criar(r.Context(), req.Nome, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, l, err, http.StatusCreated)
}

// ListarHandler lida com a requisição GET /v1/listas.
// @Summary Lista todas as listas, paginadas
// @Tags listas
// @Produce json
// @Param pagina query int false "Página (padrão 1)"
// @Param limite query int false "Itens por página (padrão 10, máximo 100)"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Pagina[domain.Lista]}
// @Security ApiKeyAuth
// @Router /listas [get]
func (h *Handler) ListarHandler(w http.ResponseWriter, r *http.Request) {
	pagina, err := httpx.QueryInt(r, "pagina", 1)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	limite, err := httpx.QueryInt(r, "limite", 0)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	p, err := h.Service.ListarTodas(r.Context(), pagina, limite)
	h.resp.Respond(w, r, p, err, http.StatusOK)
}

// DisponiveisHandler lida com a requisição GET /v1/listas/disponiveis.
// @Summary Lista as listas abertas
// @Tags listas
// @Produce json
// @Success 200 {object} httpx.SuccessResponse{data=[]domain.Lista}
// @Security ApiKeyAuth
// @Router /listas/disponiveis [get]
func (h *Handler) DisponiveisHandler(w http.ResponseWriter, r *http.Request) {
	l, err := h.Service.ListarDisponiveis(r.Context())
	h.resp.Respond(w, r, l, err, http.StatusOK)
}

// BuscarHandler lida com a requisição GET /v1/listas/{id}.
// @Summary Obtém uma lista
// @Tags listas
// @Produce json
// @Param id path int true "ID da lista"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Lista}
// @Failure 404 {object} httpx.ErrorResponse "Lista não encontrada"
// @Security ApiKeyAuth
// @Router /listas/{id} [get]
func (h *Handler) BuscarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	l, err := h.Service.BuscarPorID(r.Context(), id)
	h.resp.Respond(w, r, l, err, http.StatusOK)
}

// RenomearHandler lida com a requisição PUT /v1/listas/{id}.
// @Summary Renomeia uma lista aberta
// @Tags listas
// @Accept json
// @Produce json
// @Param id path int true "ID da lista"
// @Param lista body ListaRequest true "Novo nome"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Lista}
// @Failure 409 {object} httpx.ErrorResponse "Lista finalizada"
// @Security ApiKeyAuth
// @Router /listas/{id} [put]
func (h *Handler) RenomearHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req ListaRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	l, err := h.Service.Renomear(r.Context(), id, req.Nome, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, l, err, http.StatusOK)
}

// ExcluirHandler lida com a requisição DELETE /v1/listas/{id}.
// @Summary Exclui uma lista aberta, liberando seus endereçamentos
// @Tags listas
// @Param id path int true "ID da lista"
// @Success 204
// @Failure 409 {object} httpx.ErrorResponse "Lista finalizada"
// @Security ApiKeyAuth
// @Router /listas/{id} [delete]
func (h *Handler) ExcluirHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	err = h.Service.Excluir(r.Context(), id, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, nil, err, http.StatusNoContent)
}

// EnderecamentosHandler lida com a requisição GET /v1/listas/{id}/enderecamentos.
// @Summary Endereçamentos da lista com produto, prédio e rua
// @Tags listas
// @Produce json
// @Param id path int true "ID da lista"
// @Success 200 {object} httpx.SuccessResponse{data=[]domain.EnderecamentoDetalhado}
// @Failure 404 {object} httpx.ErrorResponse "Lista não encontrada"
// @Security ApiKeyAuth
// @Router /listas/{id}/enderecamentos [get]
func (h *Handler) EnderecamentosHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	itens, err := h.Service.GetEnderecamentos(r.Context(), id)
	h.resp.Respond(w, r, itens, err, http.StatusOK)
}

// AdicionarEnderecamentoHandler lida com a requisição POST /v1/listas/{id}/enderecamentos.
// @Summary Adiciona um endereçamento livre à lista
// @Tags listas
// @Accept json
// @Produce json
// @Param id path int true "ID da lista"
// @Param membro body MembroRequest true "Endereçamento"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Enderecamento}
// @Failure 409 {object} httpx.ErrorResponse "Já vinculado ou lista finalizada"
// @Security ApiKeyAuth
// @Router /listas/{id}/enderecamentos [post]
func (h *Handler) AdicionarEnderecamentoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req MembroRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	e, err := h.Service.AdicionarEnderecamento(r.Context(), id, req.IDEnderecamento, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, e, err, http.StatusOK)
}

// RemoverEnderecamentoHandler lida com a requisição DELETE /v1/listas/{id}/enderecamentos/{idEnd}.
// @Summary Remove um endereçamento da lista
// @Tags listas
// @Produce json
// @Param id path int true "ID da lista"
// @Param idEnd path int true "ID do endereçamento"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Enderecamento}
// @Failure 400 {object} httpx.ErrorResponse "Endereçamento não pertence à lista"
// @Failure 409 {object} httpx.ErrorResponse "Lista finalizada"
// @Security ApiKeyAuth
// @Router /listas/{id}/enderecamentos/{idEnd} [delete]
func (h *Handler) RemoverEnderecamentoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	idEnd, err := httpx.PathID(r, "idEnd")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	e, err := h.Service.RemoverEnderecamento(r.Context(), id, idEnd, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, e, err, http.StatusOK)
}

// FinalizarHandler lida com a requisição POST /v1/listas/{id}/finalizar.
// @Summary Finaliza a lista e transfere as caixas para o estoque
// @Tags listas
// @Produce json
// @Param id path int true "ID da lista"
// @Success 200 {object} httpx.SuccessResponse{data=domain.ResumoMovimentacao}
// @Failure 409 {object} httpx.ErrorResponse "Lista já finalizada ou depósito insuficiente"
// @Security ApiKeyAuth
// @Router /listas/{id}/finalizar [post]
func (h *Handler) FinalizarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	resumo, err := h.Service.Finalizar(r.Context(), id, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, resumo, err, http.StatusOK)
}

// DesfazerHandler lida com a requisição POST /v1/listas/{id}/desfazer.
// @Summary Desfaz a finalização, estornando as quantidades
// @Tags listas
// @Produce json
// @Param id path int true "ID da lista"
// @Success 200 {object} httpx.SuccessResponse{data=domain.ResumoMovimentacao}
// @Failure 409 {object} httpx.ErrorResponse "Estoque insuficiente para o estorno"
// @Security ApiKeyAuth
// @Router /listas/{id}/desfazer [post]
func (h *Handler) DesfazerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	resumo, err := h.Service.DesfazerFinalizacao(r.Context(), id, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, resumo, err, http.StatusOK)
}
