package memrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
)

type enderecamentoRepo struct{ base }

func naoEncontrado(id int64) error {
	return apperror.NewNotFoundError(fmt.Sprintf("Endereçamento com ID %d não encontrado.", id))
}

func validarReferencias(d *estado, e domain.Enderecamento) error {
	if _, ok := d.produtos[e.IDProduto]; !ok {
		return apperror.NewNotFoundError("Produto ou prédio informado não existe.")
	}
	if _, ok := d.predios[e.IDPredio]; !ok {
		return apperror.NewNotFoundError("Produto ou prédio informado não existe.")
	}
	return nil
}

func (r *enderecamentoRepo) Criar(ctx context.Context, e domain.Enderecamento) (domain.Enderecamento, error) {
	err := r.com(ctx, "Enderecamentos.Criar", func(d *estado) error {
		if err := validarReferencias(d, e); err != nil {
			return err
		}
		e.ID = d.proximoID()
		e.Disponivel = true
		e.Lista = domain.SemLista()
		e.QuantMovimentada = nil
		e.CreatedAt = r.s.agora()
		e.UpdatedAt = e.CreatedAt
		d.enderecamentos[e.ID] = e
		return nil
	})
	if err != nil {
		return domain.Enderecamento{}, err
	}
	return e, nil
}

func (r *enderecamentoRepo) BuscarPorID(ctx context.Context, id int64) (domain.Enderecamento, error) {
	var e domain.Enderecamento
	err := r.com(ctx, "Enderecamentos.BuscarPorID", func(d *estado) error {
		var ok bool
		if e, ok = d.enderecamentos[id]; !ok {
			return naoEncontrado(id)
		}
		return nil
	})
	return e, err
}

func (r *enderecamentoRepo) BuscarParaAtualizacao(ctx context.Context, id int64) (domain.Enderecamento, error) {
	return r.BuscarPorID(ctx, id)
}

func (r *enderecamentoRepo) Atualizar(ctx context.Context, e domain.Enderecamento) (domain.Enderecamento, error) {
	var atualizado domain.Enderecamento
	err := r.com(ctx, "Enderecamentos.Atualizar", func(d *estado) error {
		atual, ok := d.enderecamentos[e.ID]
		if !ok {
			return naoEncontrado(e.ID)
		}
		if err := validarReferencias(d, e); err != nil {
			return err
		}
		atual.Tonalidade = e.Tonalidade
		atual.Bitola = e.Bitola
		atual.Lote = e.Lote
		atual.Observacao = e.Observacao
		atual.QuantCaixas = e.QuantCaixas
		atual.IDProduto = e.IDProduto
		atual.IDPredio = e.IDPredio
		atual.UpdatedAt = r.s.agora()
		d.enderecamentos[e.ID] = atual
		atualizado = atual
		return nil
	})
	return atualizado, err
}

func (r *enderecamentoRepo) Excluir(ctx context.Context, id int64) error {
	return r.com(ctx, "Enderecamentos.Excluir", func(d *estado) error {
		if _, ok := d.enderecamentos[id]; !ok {
			return naoEncontrado(id)
		}
		delete(d.enderecamentos, id)
		return nil
	})
}

func (r *enderecamentoRepo) ListarDisponiveis(ctx context.Context) ([]domain.EnderecamentoDetalhado, error) {
	return r.Pesquisar(ctx, domain.EnderecamentoFiltro{ApenasLivres: true})
}

func (r *enderecamentoRepo) Pesquisar(ctx context.Context, filtro domain.EnderecamentoFiltro) ([]domain.EnderecamentoDetalhado, error) {
	return r.detalhados(ctx, "Enderecamentos.Pesquisar", func(d *estado, e domain.Enderecamento) bool {
		if filtro.ApenasLivres && (!e.Disponivel || !e.Lista.Livre()) {
			return false
		}
		p := d.produtos[e.IDProduto]
		if filtro.CodInterno != nil && p.CodInterno != *filtro.CodInterno {
			return false
		}
		if filtro.CodBarras != "" && p.CodBarras != filtro.CodBarras {
			return false
		}
		if filtro.CodFabricante != "" && p.CodFabricante != filtro.CodFabricante {
			return false
		}
		if filtro.Descricao != "" && !strings.Contains(strings.ToLower(p.Descricao), strings.ToLower(filtro.Descricao)) {
			return false
		}
		return true
	})
}

func (r *enderecamentoRepo) ListarPorLista(ctx context.Context, listaID int64) ([]domain.EnderecamentoDetalhado, error) {
	return r.detalhados(ctx, "Enderecamentos.ListarPorLista", func(_ *estado, e domain.Enderecamento) bool {
		id, ok := e.Lista.ID()
		return ok && id == listaID
	})
}

func (r *enderecamentoRepo) ListarPorProduto(ctx context.Context, produtoID int64) ([]domain.Enderecamento, error) {
	return r.filtrar(ctx, "Enderecamentos.ListarPorProduto", func(e domain.Enderecamento) bool {
		return e.IDProduto == produtoID
	})
}

func (r *enderecamentoRepo) ListarPorListaParaAtualizacao(ctx context.Context, listaID int64) ([]domain.Enderecamento, error) {
	return r.filtrar(ctx, "Enderecamentos.ListarPorListaParaAtualizacao", func(e domain.Enderecamento) bool {
		id, ok := e.Lista.ID()
		return ok && id == listaID
	})
}

func (r *enderecamentoRepo) filtrar(ctx context.Context, op string, manter func(domain.Enderecamento) bool) ([]domain.Enderecamento, error) {
	itens := []domain.Enderecamento{}
	err := r.com(ctx, op, func(d *estado) error {
		for _, e := range d.enderecamentos {
			if manter(e) {
				itens = append(itens, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(itens, func(i, j int) bool { return itens[i].ID < itens[j].ID })
	return itens, nil
}

func (r *enderecamentoRepo) detalhados(ctx context.Context, op string, manter func(*estado, domain.Enderecamento) bool) ([]domain.EnderecamentoDetalhado, error) {
	itens := []domain.EnderecamentoDetalhado{}
	err := r.com(ctx, op, func(d *estado) error {
		for _, e := range d.enderecamentos {
			if !manter(d, e) {
				continue
			}
			p := d.produtos[e.IDProduto]
			pr := d.predios[e.IDPredio]
			itens = append(itens, domain.EnderecamentoDetalhado{
				Enderecamento:        e,
				ProdutoCodInterno:    p.CodInterno,
				ProdutoDescricao:     p.Descricao,
				ProdutoCodBarras:     p.CodBarras,
				ProdutoCodFabricante: p.CodFabricante,
				PredioNome:           pr.Nome,
				RuaNome:              d.ruas[pr.IDRua].Nome,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(itens, func(i, j int) bool { return itens[i].ID < itens[j].ID })
	return itens, nil
}

func (r *enderecamentoRepo) VincularLista(ctx context.Context, id, listaID int64) (bool, error) {
	vinculado := false
	err := r.com(ctx, "Enderecamentos.VincularLista", func(d *estado) error {
		e, ok := d.enderecamentos[id]
		if !ok || !e.Lista.Livre() {
			return nil
		}
		e.Lista = domain.NaLista(listaID)
		e.UpdatedAt = r.s.agora()
		d.enderecamentos[id] = e
		vinculado = true
		return nil
	})
	return vinculado, err
}

func (r *enderecamentoRepo) DesvincularLista(ctx context.Context, id int64) error {
	return r.com(ctx, "Enderecamentos.DesvincularLista", func(d *estado) error {
		if e, ok := d.enderecamentos[id]; ok {
			e.Lista = domain.SemLista()
			e.UpdatedAt = r.s.agora()
			d.enderecamentos[id] = e
		}
		return nil
	})
}

func (r *enderecamentoRepo) DesvincularTodos(ctx context.Context, listaID int64) error {
	return r.com(ctx, "Enderecamentos.DesvincularTodos", func(d *estado) error {
		for id, e := range d.enderecamentos {
			if lid, ok := e.Lista.ID(); ok && lid == listaID {
				e.Lista = domain.SemLista()
				e.UpdatedAt = r.s.agora()
				d.enderecamentos[id] = e
			}
		}
		return nil
	})
}

func (r *enderecamentoRepo) AtualizarDisponibilidade(ctx context.Context, id int64, disponivel bool, quantMovimentada *int) error {
	return r.com(ctx, "Enderecamentos.AtualizarDisponibilidade", func(d *estado) error {
		if e, ok := d.enderecamentos[id]; ok {
			e.Disponivel = disponivel
			e.QuantMovimentada = quantMovimentada
			e.UpdatedAt = r.s.agora()
			d.enderecamentos[id] = e
		}
		return nil
	})
}
