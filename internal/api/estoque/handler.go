package estoque

import (
	"context"
	"net/http"

	"casamattos/internal/api/httpx"
	"casamattos/internal/domain"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/pkg/middleware"
)

// EstoqueService define o contrato que o Handler espera do Livro de Estoque.
type EstoqueService interface {
	TransferirDepositoParaEstoque(ctx context.Context, produtoID int64, quantidade int, ator *domain.Ator) (domain.EstoqueProduto, error)
	RetirarDoEstoque(ctx context.Context, produtoID int64, quantidade int, ator *domain.Ator) (domain.EstoqueProduto, error)
	ConsultarEstoqueProduto(ctx context.Context, produtoID int64) (domain.EstoqueProduto, error)
	ListarEstoqueDetalhado(ctx context.Context, produtoID int64) (domain.EstoqueDetalhado, error)
	ListarMovimentacoes(ctx context.Context, produtoID int64, limite int) ([]domain.Movimentacao, error)
}

// MovimentoRequest é o payload de transferência e retirada.
type MovimentoRequest struct {
	Quantidade int `json:"quantidade"`
}

// Handler agrupa os métodos de Handler de estoque.
type Handler struct {
	Service EstoqueService
	Logger  logger.Logger
	resp    httpx.Responder
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc EstoqueService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log, resp: httpx.NewResponder(log)}
}

// ConsultarHandler lida com a requisição GET /v1/produtos/{id}/estoque.
// @Summary Consulta depósito e estoque de um produto
// @Tags estoque
// @Produce json
// @Param id path int true "ID do produto"
// @Success 200 {object} httpx.SuccessResponse{data=domain.EstoqueProduto}
// @Failure 404 {object} httpx.ErrorResponse "Produto não encontrado"
// @Security ApiKeyAuth
// @Router /produtos/{id}/estoque [get]
func (h *Handler) ConsultarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	e, err := h.Service.ConsultarEstoqueProduto(r.Context(), id)
	h.resp.Respond(w, r, e, err, http.StatusOK)
}

// DetalhadoHandler lida com a requisição GET /v1/produtos/{id}/estoque/detalhado.
// @Summary Estoque do produto com seus endereçamentos
// @Tags estoque
// @Produce json
// @Param id path int true "ID do produto"
// @Success 200 {object} httpx.SuccessResponse{data=domain.EstoqueDetalhado}
// @Security ApiKeyAuth
// @Router /produtos/{id}/estoque/detalhado [get]
func (h *Handler) DetalhadoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	d, err := h.Service.ListarEstoqueDetalhado(r.Context(), id)
	h.resp.Respond(w, r, d, err, http.StatusOK)
}

// MovimentacoesHandler lida com a requisição GET /v1/produtos/{id}/movimentacoes.
// @Summary Histórico de movimentações do produto
// @Tags estoque
// @Produce json
// @Param id path int true "ID do produto"
// @Param limite query int false "Quantidade máxima (padrão 50)"
// @Success 200 {object} httpx.SuccessResponse{data=[]domain.Movimentacao}
// @Security ApiKeyAuth
// @Router /produtos/{id}/movimentacoes [get]
func (h *Handler) MovimentacoesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	limite, err := httpx.QueryInt(r, "limite", 0)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	movs, err := h.Service.ListarMovimentacoes(r.Context(), id, limite)
	h.resp.Respond(w, r, movs, err, http.StatusOK)
}

// TransferirHandler lida com a requisição POST /v1/produtos/{id}/transferir.
// @Summary Transfere unidades do depósito para o estoque
// @Tags estoque
// @Accept json
// @Produce json
// @Param id path int true "ID do produto"
// @Param movimento body MovimentoRequest true "Quantidade"
// @Success 200 {object} httpx.SuccessResponse{data=domain.EstoqueProduto}
// @Failure 409 {object} httpx.ErrorResponse "Depósito insuficiente"
// @Security ApiKeyAuth
// @Router /produtos/{id}/transferir [post]
func (h *Handler) TransferirHandler(w http.ResponseWriter, r *http.Request) {
	h.movimentar(w, r, h.Service.TransferirDepositoParaEstoque)
}

// RetirarHandler lida com a requisição POST /v1/produtos/{id}/retirar.
// @Summary Baixa unidades do estoque
// @Tags estoque
// @Accept json
// @Produce json
// @Param id path int true "ID do produto"
// @Param movimento body MovimentoRequest true "Quantidade"
// @Success 200 {object} httpx.SuccessResponse{data=domain.EstoqueProduto}
// @Failure 409 {object} httpx.ErrorResponse "Estoque insuficiente"
// @Security ApiKeyAuth
// @Router /produtos/{id}/retirar [post]
func (h *Handler) RetirarHandler(w http.ResponseWriter, r *http.Request) {
	h.movimentar(w, r, h.Service.RetirarDoEstoque)
}

type operacaoEstoque func(ctx context.Context, produtoID int64, quantidade int, ator *domain.Ator) (domain.EstoqueProduto, error)

func (h *Handler) movimentar(w http.ResponseWriter, r *http.Request, op operacaoEstoque) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req MovimentoRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	e, err := op(r.Context(), id, req.Quantidade, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, e, err, http.StatusOK)
}
