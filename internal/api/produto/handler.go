package produto

import (
	"context"
	"net/http"

	"casamattos/internal/api/httpx"
	"casamattos/internal/domain"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/pkg/middleware"
)

// ProdutoService define o contrato que o Handler espera da camada de Serviço.
type ProdutoService interface {
	Criar(ctx context.Context, p domain.Produto, ator *domain.Ator) (domain.Produto, error)
	BuscarPorID(ctx context.Context, id int64) (domain.Produto, error)
	Listar(ctx context.Context, pagina, limite int, filtros map[string]string) ([]domain.Produto, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProdutoService
	Logger  logger.Logger
	resp    httpx.Responder
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProdutoService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log, resp: httpx.NewResponder(log)}
}

// CriarProdutoHandler lida com a requisição POST /v1/produtos.
// @Summary Cadastra um produto
// @Tags produtos
// @Accept json
// @Produce json
// @Param produto body domain.Produto true "Dados do produto"
// @Success 201 {object} httpx.SuccessResponse{data=domain.Produto}
// @Failure 400 {object} httpx.ErrorResponse "Payload inválido"
// @Failure 409 {object} httpx.ErrorResponse "Código interno já cadastrado"
// @Security ApiKeyAuth
// @Router /produtos [post]
func (h *Handler) CriarProdutoHandler(w http.ResponseWriter, r *http.Request) {
	var p domain.Produto
	if err := httpx.Decode(r, &p); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	// ID, versão e datas são definidos pelo armazenamento.
	p.ID, p.Version = 0, 0

	criado, err := h.Service.Criar(r.Context(), p, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, criado, err, http.StatusCreated)
}

// BuscarProdutoHandler lida com a requisição GET /v1/produtos/{id}.
// @Summary Obtém um produto por ID
// @Tags produtos
// @Produce json
// @Param id path int true "ID do produto"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Produto}
// @Failure 404 {object} httpx.ErrorResponse "Produto não encontrado"
// @Security ApiKeyAuth
// @Router /produtos/{id} [get]
func (h *Handler) BuscarProdutoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	p, err := h.Service.BuscarPorID(r.Context(), id)
	h.resp.Respond(w, r, p, err, http.StatusOK)
}

// ListarProdutosHandler lida com a requisição GET /v1/produtos.
// @Summary Lista produtos
// @Tags produtos
// @Produce json
// @Param pagina query int false "Página (padrão 1)"
// @Param limite query int false "Itens por página (padrão 10, máximo 100)"
// @Param descricao query string false "Trecho da descrição"
// @Param cod_barras query string false "Código de barras"
// @Success 200 {object} httpx.SuccessResponse{data=[]domain.Produto}
// @Security ApiKeyAuth
// @Router /produtos [get]
func (h *Handler) ListarProdutosHandler(w http.ResponseWriter, r *http.Request) {
	pagina, err := httpx.QueryInt(r, "pagina", 1)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	limite, err := httpx.QueryInt(r, "limite", 10)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	filtros := map[string]string{}
	q := r.URL.Query()
	for _, chave := range []string{"descricao", "cod_barras"} {
		if v := q.Get(chave); v != "" {
			filtros[chave] = v
		}
	}

	produtos, err := h.Service.Listar(r.Context(), pagina, limite, filtros)
	h.resp.Respond(w, r, produtos, err, http.StatusOK)
}
