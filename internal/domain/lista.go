package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	apperror "casamattos/internal/errors"
)

// StatusLista é o estado da lista de separação.
type StatusLista int

const (
	ListaAberta     StatusLista = iota // disponivel = true (estado inicial)
	ListaFinalizada                    // disponivel = false
)

// StatusDe converte a coluna booleana 'disponivel' do DB.
func StatusDe(disponivel bool) StatusLista {
	if disponivel {
		return ListaAberta
	}
	return ListaFinalizada
}

// Disponivel é a representação persistida do estado.
func (s StatusLista) Disponivel() bool { return s == ListaAberta }

func (s StatusLista) String() string {
	if s == ListaAberta {
		return "ABERTA"
	}
	return "FINALIZADA"
}

// Finalizar é a transição Aberta -> Finalizada.
func (s StatusLista) Finalizar() (StatusLista, error) {
	if s != ListaAberta {
		return s, apperror.NewListFinalizedError("A lista já está finalizada.")
	}
	return ListaFinalizada, nil
}

// Reabrir é a transição Finalizada -> Aberta (desfazer finalização).
func (s StatusLista) Reabrir() (StatusLista, error) {
	if s != ListaFinalizada {
		return s, apperror.NewValidationError("A lista não está finalizada.")
	}
	return ListaAberta, nil
}

// ExigirAberta falha com ListFinalizedError quando a lista não aceita mais alterações.
func (s StatusLista) ExigirAberta() error {
	if s != ListaAberta {
		return apperror.NewListFinalizedError("A lista está finalizada e não pode ser alterada.")
	}
	return nil
}

// Lista é a lista de separação (picking) de endereçamentos.
type Lista struct {
	ID        int64       `json:"id"`
	Nome      string      `json:"nome"`
	Status    StatusLista `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (l Lista) MarshalJSON() ([]byte, error) {
	type alias Lista
	return json.Marshal(struct {
		alias
		Status     string `json:"status"`
		Disponivel bool   `json:"disponivel"`
	}{alias(l), l.Status.String(), l.Status.Disponivel()})
}

// Pagina é um resultado paginado.
type Pagina[T any] struct {
	Itens  []T `json:"itens"`
	Total  int `json:"total"`
	Pagina int `json:"pagina"`
	Limite int `json:"limite"`
}

// NormalizarPaginacao aplica os padrões de página e limite. Página < 1 vira 1,
// limite fora de (0, maximo] vira padrao ou maximo. Uma página cujo deslocamento
// não cabe em int é rejeitada com ValidationError.
func NormalizarPaginacao(pagina, limite, padrao, maximo int) (int, int, error) {
	if pagina < 1 {
		pagina = 1
	}
	if limite <= 0 {
		limite = padrao
	}
	if limite > maximo {
		limite = maximo
	}
	if pagina > math.MaxInt/limite {
		return 0, 0, apperror.NewValidationError(fmt.Sprintf("A página %d está fora do intervalo permitido.", pagina))
	}
	return pagina, limite, nil
}

// Deslocamento é o número de itens antes da página.
func Deslocamento(pagina, limite int) int { return (pagina - 1) * limite }

// ListaRepository é o contrato de persistência de listas.
type ListaRepository interface {
	Criar(ctx context.Context, l Lista) (Lista, error)
	BuscarPorID(ctx context.Context, id int64) (Lista, error)
	// BuscarParaAtualizacao bloqueia a linha da lista até o fim da transação.
	BuscarParaAtualizacao(ctx context.Context, id int64) (Lista, error)
	Listar(ctx context.Context, pagina, limite int) ([]Lista, int, error)
	ListarAbertas(ctx context.Context) ([]Lista, error)
	// AtualizarStatus só grava se o estado atual ainda for 'de'; retorna false caso contrário.
	AtualizarStatus(ctx context.Context, id int64, de, para StatusLista) (bool, error)
	Renomear(ctx context.Context, id int64, nome string) (Lista, error)
	Excluir(ctx context.Context, id int64) error
}

// ResumoMovimentacao descreve o efeito de uma finalização (ou do seu desfazer).
type ResumoMovimentacao struct {
	Lista          Lista `json:"lista"`
	Enderecamentos int   `json:"enderecamentos"`
	// QuantidadesPorProduto soma o que foi movido por produto.
	QuantidadesPorProduto map[int64]int `json:"quantidades_por_produto"`
}
