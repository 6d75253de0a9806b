package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"time"
)

// ListaRef é a referência opcional de um endereçamento para a lista que o contém.
// O valor zero representa um endereçamento livre.
type ListaRef struct {
	id    int64
	valid bool
}

// SemLista retorna uma referência livre.
func SemLista() ListaRef { return ListaRef{} }

// NaLista retorna uma referência para a lista informada.
func NaLista(id int64) ListaRef { return ListaRef{id: id, valid: true} }

// ID retorna o id da lista e se a referência está preenchida.
func (r ListaRef) ID() (int64, bool) { return r.id, r.valid }

// Livre informa se o endereçamento não pertence a nenhuma lista.
func (r ListaRef) Livre() bool { return !r.valid }

// Ptr converte para ponteiro (nil quando livre), útil para o driver SQL.
func (r ListaRef) Ptr() *int64 {
	if !r.valid {
		return nil
	}
	id := r.id
	return &id
}

// ListaRefDe constrói a referência a partir de um ponteiro vindo do DB.
func ListaRefDe(id *int64) ListaRef {
	if id == nil {
		return SemLista()
	}
	return NaLista(*id)
}

func (r ListaRef) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(r.id, 10)), nil
}

func (r *ListaRef) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = SemLista()
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*r = NaLista(id)
	return nil
}

// Enderecamento representa uma posição física de armazenagem de um lote de produto.
type Enderecamento struct {
	ID          int64   `json:"id"`
	Tonalidade  string  `json:"tonalidade"`
	Bitola      string  `json:"bitola"`
	Lote        *string `json:"lote,omitempty"`
	Observacao  *string `json:"observacao,omitempty"`
	QuantCaixas *int    `json:"quant_caixas,omitempty"`
	// Disponivel é controlado pela finalização da lista dona do endereçamento.
	Disponivel bool     `json:"disponivel"`
	IDProduto  int64    `json:"id_produto"`
	IDPredio   int64    `json:"id_predio"`
	Lista      ListaRef `json:"id_lista"`
	// QuantMovimentada guarda o que foi transferido na finalização, para o estorno.
	QuantMovimentada *int      `json:"quant_movimentada,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EnderecamentoDetalhado é o endereçamento com produto, prédio e rua para exibição.
type EnderecamentoDetalhado struct {
	Enderecamento
	ProdutoCodInterno    int64  `json:"produto_cod_interno"`
	ProdutoDescricao     string `json:"produto_descricao"`
	ProdutoCodBarras     string `json:"produto_cod_barras,omitempty"`
	ProdutoCodFabricante string `json:"produto_cod_fabricante,omitempty"`
	PredioNome           string `json:"predio_nome"`
	RuaNome              string `json:"rua_nome"`
}

// EnderecamentoFiltro são os critérios da pesquisa de endereçamentos.
type EnderecamentoFiltro struct {
	CodInterno    *int64
	CodBarras     string
	CodFabricante string
	Descricao     string // Substring, sem diferenciar maiúsculas
	// ApenasLivres restringe a endereçamentos disponíveis e fora de qualquer lista.
	ApenasLivres bool
}

// EnderecamentoRepository é o contrato de persistência do Registro de Endereçamentos.
type EnderecamentoRepository interface {
	Criar(ctx context.Context, e Enderecamento) (Enderecamento, error)
	BuscarPorID(ctx context.Context, id int64) (Enderecamento, error)
	BuscarParaAtualizacao(ctx context.Context, id int64) (Enderecamento, error)
	Atualizar(ctx context.Context, e Enderecamento) (Enderecamento, error)
	Excluir(ctx context.Context, id int64) error
	ListarDisponiveis(ctx context.Context) ([]EnderecamentoDetalhado, error)
	Pesquisar(ctx context.Context, filtro EnderecamentoFiltro) ([]EnderecamentoDetalhado, error)
	ListarPorProduto(ctx context.Context, produtoID int64) ([]Enderecamento, error)
	ListarPorLista(ctx context.Context, listaID int64) ([]EnderecamentoDetalhado, error)
	// ListarPorListaParaAtualizacao bloqueia as linhas dos membros da lista.
	ListarPorListaParaAtualizacao(ctx context.Context, listaID int64) ([]Enderecamento, error)
	// VincularLista só grava se o endereçamento estiver livre; retorna false caso contrário.
	VincularLista(ctx context.Context, id, listaID int64) (bool, error)
	DesvincularLista(ctx context.Context, id int64) error
	DesvincularTodos(ctx context.Context, listaID int64) error
	AtualizarDisponibilidade(ctx context.Context, id int64, disponivel bool, quantMovimentada *int) error
}
