package memrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
)

type produtoRepo struct{ base }

func (r *produtoRepo) Criar(ctx context.Context, p domain.Produto) (domain.Produto, error) {
	err := r.com(ctx, "Produtos.Criar", func(d *estado) error {
		for _, existente := range d.produtos {
			if existente.CodInterno == p.CodInterno {
				return apperror.NewConflictError(fmt.Sprintf("Já existe produto com código interno %d.", p.CodInterno))
			}
		}
		if p.Deposito < 0 || p.Estoque < 0 {
			return apperror.NewValidationError("Quantidades não podem ser negativas.")
		}
		p.ID = d.proximoID()
		p.Version = 1
		p.CreatedAt = r.s.agora()
		p.UpdatedAt = p.CreatedAt
		d.produtos[p.ID] = p
		return nil
	})
	if err != nil {
		return domain.Produto{}, err
	}
	return p, nil
}

func (r *produtoRepo) BuscarPorID(ctx context.Context, id int64) (domain.Produto, error) {
	return r.buscar(ctx, "Produtos.BuscarPorID", id)
}

func (r *produtoRepo) BuscarParaAtualizacao(ctx context.Context, id int64) (domain.Produto, error) {
	return r.buscar(ctx, "Produtos.BuscarParaAtualizacao", id)
}

func (r *produtoRepo) buscar(ctx context.Context, op string, id int64) (domain.Produto, error) {
	var p domain.Produto
	err := r.com(ctx, op, func(d *estado) error {
		var ok bool
		if p, ok = d.produtos[id]; !ok {
			return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %d não encontrado.", id))
		}
		return nil
	})
	return p, err
}

func (r *produtoRepo) Listar(ctx context.Context, filtro domain.ProdutoFiltro) ([]domain.Produto, error) {
	produtos := []domain.Produto{}
	err := r.com(ctx, "Produtos.Listar", func(d *estado) error {
		desc := strings.ToLower(filtro.Descricao)
		for _, p := range d.produtos {
			if desc != "" && !strings.Contains(strings.ToLower(p.Descricao), desc) {
				continue
			}
			if filtro.CodBarras != "" && p.CodBarras != filtro.CodBarras {
				continue
			}
			produtos = append(produtos, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(produtos, func(i, j int) bool { return produtos[i].CodInterno < produtos[j].CodInterno })
	return paginar(produtos, filtro.Pagina, filtro.Limite), nil
}

func (r *produtoRepo) AtualizarQuantidades(ctx context.Context, p domain.Produto) (domain.Produto, error) {
	var atualizado domain.Produto
	err := r.com(ctx, "Produtos.AtualizarQuantidades", func(d *estado) error {
		atual, ok := d.produtos[p.ID]
		if !ok || atual.Version != p.Version {
			return apperror.NewConflictError("O produto foi modificado por outra operação. Tente novamente.")
		}
		if p.Deposito < 0 || p.Estoque < 0 {
			return apperror.NewInsufficientStockError("A movimentação deixaria quantidade negativa.")
		}
		atual.Deposito = p.Deposito
		atual.Estoque = p.Estoque
		atual.Version++
		atual.UpdatedAt = r.s.agora()
		d.produtos[p.ID] = atual
		atualizado = atual
		return nil
	})
	return atualizado, err
}

func paginar[T any](itens []T, pagina, limite int) []T {
	if limite <= 0 {
		return itens
	}
	if pagina < 1 {
		pagina = 1
	}
	if pagina-1 >= (len(itens)+limite-1)/limite {
		return []T{}
	}
	inicio := (pagina - 1) * limite
	fim := min(inicio+limite, len(itens))
	return itens[inicio:fim]
}
