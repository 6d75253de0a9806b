package domain

import (
	"context"
	"time"
)

// TipoMovimentacao classifica as entradas do livro de estoque.
type TipoMovimentacao string

const (
	MovTransferencia TipoMovimentacao = "TRANSFERENCIA" // deposito -> estoque
	MovRetirada      TipoMovimentacao = "RETIRADA"      // saída do estoque
	MovEstorno       TipoMovimentacao = "ESTORNO"       // estoque -> deposito (desfazer finalização)
)

// Movimentacao é o registro de auditoria de cada alteração de quantidade.
type Movimentacao struct {
	ID              string           `json:"id"`
	Tipo            TipoMovimentacao `json:"tipo"`
	ProdutoID       int64            `json:"produto_id"`
	Quantidade      int              `json:"quantidade"`
	ListaID         *int64           `json:"lista_id,omitempty"`
	EnderecamentoID *int64           `json:"enderecamento_id,omitempty"`
	UsuarioID       *int64           `json:"usuario_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// MovimentacaoRepository persiste o histórico de movimentações.
type MovimentacaoRepository interface {
	Registrar(ctx context.Context, m Movimentacao) error
	ListarPorProduto(ctx context.Context, produtoID int64, limite int) ([]Movimentacao, error)
}
