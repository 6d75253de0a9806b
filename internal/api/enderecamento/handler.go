package enderecamento

import (
	"context"
	"net/http"
	"strconv"

	"casamattos/internal/api/httpx"
	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/pkg/middleware"
)

// EnderecamentoService define o contrato que o Handler espera do Registro de Endereçamentos.
type EnderecamentoService interface {
	Criar(ctx context.Context, e domain.Enderecamento, ator *domain.Ator) (domain.Enderecamento, error)
	BuscarPorID(ctx context.Context, id int64) (domain.Enderecamento, error)
	Atualizar(ctx context.Context, e domain.Enderecamento, ator *domain.Ator) (domain.Enderecamento, error)
	Excluir(ctx context.Context, id int64, ator *domain.Ator) error
	ListarDisponiveis(ctx context.Context) ([]domain.EnderecamentoDetalhado, error)
	Pesquisar(ctx context.Context, filtro domain.EnderecamentoFiltro) ([]domain.EnderecamentoDetalhado, error)
	AdicionarALista(ctx context.Context, idEnderecamento, idLista int64, ator *domain.Ator) (domain.Enderecamento, error)
	RemoverDaLista(ctx context.Context, idEnderecamento int64, ator *domain.Ator) (domain.Enderecamento, error)
}

// EnderecamentoRequest são os atributos editáveis de um endereçamento.
// Vínculo com lista e disponibilidade não entram no payload.
type EnderecamentoRequest struct {
	Tonalidade  string  `json:"tonalidade"`
	Bitola      string  `json:"bitola"`
	Lote        *string `json:"lote,omitempty"`
	Observacao  *string `json:"observacao,omitempty"`
	QuantCaixas *int    `json:"quant_caixas,omitempty"`
	IDProduto   int64   `json:"id_produto"`
	IDPredio    int64   `json:"id_predio"`
}

func (req EnderecamentoRequest) toDomain(id int64) domain.Enderecamento {
	return domain.Enderecamento{
		ID:          id,
		Tonalidade:  req.Tonalidade,
		Bitola:      req.Bitola,
		Lote:        req.Lote,
		Observacao:  req.Observacao,
		QuantCaixas: req.QuantCaixas,
		IDProduto:   req.IDProduto,
		IDPredio:    req.IDPredio,
	}
}

// VinculoRequest é o payload de POST /v1/enderecamentos/{id}/lista.
type VinculoRequest struct {
	IDLista int64 `json:"id_lista"`
}

// Handler agrupa os métodos de Handler de endereçamentos.
type Handler struct {
	Service EnderecamentoService
	Logger  logger.Logger
	resp    httpx.Responder
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc EnderecamentoService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log, resp: httpx.NewResponder(log)}
}

// CriarHandler lida com a requisição POST /v1/enderecamentos.
// @Summary Cadastra um endereçamento
// @Tags enderecamentos
// @Accept json
// @Produce json
// @Param enderecamento body EnderecamentoRequest true "Dados do endereçamento"
// @Success 201 {object} httpx.SuccessResponse{data=domain.Enderecamento}
// @Failure 400 {object} httpx.ErrorResponse "Payload inválido"
// @Failure 404 {object} httpx.ErrorResponse "Produto ou prédio inexistente"
// @Security ApiKeyAuth
// @Router /enderecamentos [post]
func (h *Handler) CriarHandler(w http.ResponseWriter, r *http.Request) {
	var req EnderecamentoRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	e, err := h.Service.Criar(r.Context(), req.toDomain(0), middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, e, err, http.StatusCreated)
}

// BuscarHandler lida com a requisição GET /v1/enderecamentos/{id}.
// @Summary Obtém um endereçamento
// @Tags enderecamentos
// @Produce json
// @Param id path int true "ID do endereçamento"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Enderecamento}
// @Failure 404 {object} httpx.ErrorResponse "Endereçamento não encontrado"
// @Security ApiKeyAuth
// @Router /enderecamentos/{id} [get]
func (h *Handler) BuscarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	e, err := h.Service.BuscarPorID(r.Context(), id)
	h.resp.Respond(w, r, e, err, http.StatusOK)
}

// AtualizarHandler lida com a requisição PUT /v1/enderecamentos/{id}.
// @Summary Atualiza os atributos de um endereçamento
// @Tags enderecamentos
// @Accept json
// @Produce json
// @Param id path int true "ID do endereçamento"
// @Param enderecamento body EnderecamentoRequest true "Novos atributos"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Enderecamento}
// @Failure 409 {object} httpx.ErrorResponse "Lista finalizada"
// @Security ApiKeyAuth
// @Router /enderecamentos/{id} [put]
func (h *Handler) AtualizarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req EnderecamentoRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	e, err := h.Service.Atualizar(r.Context(), req.toDomain(id), middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, e, err, http.StatusOK)
}

// ExcluirHandler lida com a requisição DELETE /v1/enderecamentos/{id}.
// @Summary Exclui um endereçamento livre
// @Tags enderecamentos
// @Param id path int true "ID do endereçamento"
// @Success 204
// @Failure 409 {object} httpx.ErrorResponse "Endereçamento vinculado a uma lista"
// @Security ApiKeyAuth
// @Router /enderecamentos/{id} [delete]
func (h *Handler) ExcluirHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	err = h.Service.Excluir(r.Context(), id, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, nil, err, http.StatusNoContent)
}

// DisponiveisHandler lida com a requisição GET /v1/enderecamentos/disponiveis.
// @Summary Lista endereçamentos disponíveis e fora de listas
// @Tags enderecamentos
// @Produce json
// @Success 200 {object} httpx.SuccessResponse{data=[]domain.EnderecamentoDetalhado}
// @Security ApiKeyAuth
// @Router /enderecamentos/disponiveis [get]
func (h *Handler) DisponiveisHandler(w http.ResponseWriter, r *http.Request) {
	itens, err := h.Service.ListarDisponiveis(r.Context())
	h.resp.Respond(w, r, itens, err, http.StatusOK)
}

// PesquisarHandler lida com a requisição GET /v1/enderecamentos/pesquisa.
// @Summary Pesquisa endereçamentos pelos dados do produto
// @Tags enderecamentos
// @Produce json
// @Param cod_interno query int false "Código interno"
// @Param cod_barras query string false "Código de barras"
// @Param cod_fabricante query string false "Código do fabricante"
// @Param descricao query string false "Trecho da descrição"
// @Param livres query bool false "Apenas disponíveis e fora de listas"
// @Success 200 {object} httpx.SuccessResponse{data=[]domain.EnderecamentoDetalhado}
// @Security ApiKeyAuth
// @Router /enderecamentos/pesquisa [get]
func (h *Handler) PesquisarHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filtro := domain.EnderecamentoFiltro{
		CodBarras:     q.Get("cod_barras"),
		CodFabricante: q.Get("cod_fabricante"),
		Descricao:     q.Get("descricao"),
	}

	codInterno, err := httpx.QueryInt64Ptr(r, "cod_interno")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	filtro.CodInterno = codInterno

	if raw := q.Get("livres"); raw != "" {
		livres, err := strconv.ParseBool(raw)
		if err != nil {
			h.resp.Error(w, r, apperror.NewValidationError("O parâmetro 'livres' deve ser true ou false."))
			return
		}
		filtro.ApenasLivres = livres
	}

	itens, err := h.Service.Pesquisar(r.Context(), filtro)
	h.resp.Respond(w, r, itens, err, http.StatusOK)
}

// VincularListaHandler lida com a requisição POST /v1/enderecamentos/{id}/lista.
// @Summary Adiciona o endereçamento a uma lista aberta
// @Tags enderecamentos
// @Accept json
// @Produce json
// @Param id path int true "ID do endereçamento"
// @Param vinculo body VinculoRequest true "Lista de destino"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Enderecamento}
// @Failure 409 {object} httpx.ErrorResponse "Já vinculado ou lista finalizada"
// @Security ApiKeyAuth
// @Router /enderecamentos/{id}/lista [post]
func (h *Handler) VincularListaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	var req VinculoRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	e, err := h.Service.AdicionarALista(r.Context(), id, req.IDLista, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, e, err, http.StatusOK)
}

// DesvincularListaHandler lida com a requisição DELETE /v1/enderecamentos/{id}/lista.
// @Summary Remove o endereçamento da lista em que está
// @Tags enderecamentos
// @Produce json
// @Param id path int true "ID do endereçamento"
// @Success 200 {object} httpx.SuccessResponse{data=domain.Enderecamento}
// @Failure 409 {object} httpx.ErrorResponse "Lista finalizada"
// @Security ApiKeyAuth
// @Router /enderecamentos/{id}/lista [delete]
func (h *Handler) DesvincularListaHandler(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	e, err := h.Service.RemoverDaLista(r.Context(), id, middleware.AtorFromContext(r.Context()))
	h.resp.Respond(w, r, e, err, http.StatusOK)
}
