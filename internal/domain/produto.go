package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperror "casamattos/internal/errors"
)

// Produto representa o item do catálogo e seus dois contadores de quantidade.
// Deposito é o estoque a granel (reserva) e Estoque é o que está na prateleira.
// Inclui uma coluna 'version' para Controle de Concorrência Otimista (OCC).
type Produto struct {
	ID            int64               `json:"id"`
	CodInterno    int64               `json:"cod_interno"`
	Descricao     string              `json:"descricao"`
	Deposito      int                 `json:"deposito"`
	Estoque       int                 `json:"estoque"`
	QuantMinVenda int                 `json:"quant_min_venda"`
	Custo         decimal.NullDecimal `json:"custo"`
	CodBarras     string              `json:"cod_barras,omitempty"`
	CodFabricante string              `json:"cod_fabricante,omitempty"`
	QuantCaixas   *int                `json:"quant_caixas,omitempty"` // Quantidade padrão de caixas
	IDFornecedor  *int64              `json:"id_fornecedor,omitempty"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// --- Aritmética do Livro de Estoque ---
// As funções abaixo nunca alteram o produto quando retornam erro.

// TransferirParaEstoque move q unidades do depósito para o estoque.
func (p *Produto) TransferirParaEstoque(q int) error {
	if q <= 0 {
		return apperror.NewValidationError("A quantidade da transferência deve ser maior que zero.")
	}
	if p.Deposito < q {
		return apperror.NewInsufficientStockError(fmt.Sprintf(
			"Produto %d possui %d no depósito, transferência de %d não permitida.", p.CodInterno, p.Deposito, q))
	}
	p.Deposito -= q
	p.Estoque += q
	return nil
}

// DevolverAoDeposito move q unidades do estoque de volta ao depósito (estorno).
func (p *Produto) DevolverAoDeposito(q int) error {
	if q <= 0 {
		return apperror.NewValidationError("A quantidade do estorno deve ser maior que zero.")
	}
	if p.Estoque < q {
		return apperror.NewInsufficientStockError(fmt.Sprintf(
			"Produto %d possui %d no estoque, estorno de %d não permitido.", p.CodInterno, p.Estoque, q))
	}
	p.Estoque -= q
	p.Deposito += q
	return nil
}

// RetirarDoEstoque faz a baixa definitiva de q unidades do estoque.
func (p *Produto) RetirarDoEstoque(q int) error {
	if q <= 0 {
		return apperror.NewValidationError("A quantidade da retirada deve ser maior que zero.")
	}
	if p.Estoque < q {
		return apperror.NewInsufficientStockError(fmt.Sprintf(
			"Produto %d possui %d no estoque, retirada de %d não permitida.", p.CodInterno, p.Estoque, q))
	}
	p.Estoque -= q
	return nil
}

// EstoqueProduto é a visão somente-leitura dos contadores de um produto.
type EstoqueProduto struct {
	ProdutoID int64 `json:"produto_id"`
	Deposito  int   `json:"deposito"`
	Estoque   int   `json:"estoque"`
}

// EstoqueDetalhado agrega os contadores com os endereçamentos do produto.
type EstoqueDetalhado struct {
	Produto        Produto         `json:"produto"`
	Deposito       int             `json:"deposito"`
	Estoque        int             `json:"estoque"`
	Enderecamentos []Enderecamento `json:"enderecamentos"`
}

// ProdutoFiltro define os parâmetros de busca e paginação de produtos.
type ProdutoFiltro struct {
	Pagina    int
	Limite    int
	Descricao string
	CodBarras string
}

// ProdutoRepository é o contrato de persistência de produtos.
type ProdutoRepository interface {
	Criar(ctx context.Context, p Produto) (Produto, error)
	BuscarPorID(ctx context.Context, id int64) (Produto, error)
	// BuscarParaAtualizacao bloqueia a linha do produto até o fim da transação.
	BuscarParaAtualizacao(ctx context.Context, id int64) (Produto, error)
	Listar(ctx context.Context, filtro ProdutoFiltro) ([]Produto, error)
	// AtualizarQuantidades grava deposito/estoque se a versão ainda for p.Version.
	AtualizarQuantidades(ctx context.Context, p Produto) (Produto, error)
}
