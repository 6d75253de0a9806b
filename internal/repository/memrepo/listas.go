package memrepo

import (
	"context"
	"fmt"
	"sort"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
)

type listaRepo struct{ base }

func listaNaoEncontrada(id int64) error {
	return apperror.NewNotFoundError(fmt.Sprintf("Lista com ID %d não encontrada.", id))
}

func (r *listaRepo) Criar(ctx context.Context, l domain.Lista) (domain.Lista, error) {
	err := r.com(ctx, "Listas.Criar", func(d *estado) error {
		l.ID = d.proximoID()
		l.Status = domain.ListaAberta
		l.CreatedAt = r.s.agora()
		l.UpdatedAt = l.CreatedAt
		d.listas[l.ID] = l
		return nil
	})
	if err != nil {
		return domain.Lista{}, err
	}
	return l, nil
}

func (r *listaRepo) BuscarPorID(ctx context.Context, id int64) (domain.Lista, error) {
	var l domain.Lista
	err := r.com(ctx, "Listas.BuscarPorID", func(d *estado) error {
		var ok bool
		if l, ok = d.listas[id]; !ok {
			return listaNaoEncontrada(id)
		}
		return nil
	})
	return l, err
}

func (r *listaRepo) BuscarParaAtualizacao(ctx context.Context, id int64) (domain.Lista, error) {
	return r.BuscarPorID(ctx, id)
}

func (r *listaRepo) Listar(ctx context.Context, pagina, limite int) ([]domain.Lista, int, error) {
	todas, err := r.ordenadas(ctx, "Listas.Listar", func(domain.Lista) bool { return true })
	if err != nil {
		return nil, 0, err
	}
	return paginar(todas, pagina, limite), len(todas), nil
}

func (r *listaRepo) ListarAbertas(ctx context.Context) ([]domain.Lista, error) {
	return r.ordenadas(ctx, "Listas.ListarAbertas", func(l domain.Lista) bool { return l.Status == domain.ListaAberta })
}

func (r *listaRepo) ordenadas(ctx context.Context, op string, manter func(domain.Lista) bool) ([]domain.Lista, error) {
	listas := []domain.Lista{}
	err := r.com(ctx, op, func(d *estado) error {
		for _, l := range d.listas {
			if manter(l) {
				listas = append(listas, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(listas, func(i, j int) bool { return listas[i].ID > listas[j].ID })
	return listas, nil
}

func (r *listaRepo) AtualizarStatus(ctx context.Context, id int64, de, para domain.StatusLista) (bool, error) {
	aplicado := false
	err := r.com(ctx, "Listas.AtualizarStatus", func(d *estado) error {
		l, ok := d.listas[id]
		if !ok || l.Status != de {
			return nil
		}
		l.Status = para
		l.UpdatedAt = r.s.agora()
		d.listas[id] = l
		aplicado = true
		return nil
	})
	return aplicado, err
}

func (r *listaRepo) Renomear(ctx context.Context, id int64, nome string) (domain.Lista, error) {
	var l domain.Lista
	err := r.com(ctx, "Listas.Renomear", func(d *estado) error {
		var ok bool
		if l, ok = d.listas[id]; !ok {
			return listaNaoEncontrada(id)
		}
		l.Nome = nome
		l.UpdatedAt = r.s.agora()
		d.listas[id] = l
		return nil
	})
	return l, err
}

func (r *listaRepo) Excluir(ctx context.Context, id int64) error {
	return r.com(ctx, "Listas.Excluir", func(d *estado) error {
		if _, ok := d.listas[id]; !ok {
			return listaNaoEncontrada(id)
		}
		for _, e := range d.enderecamentos {
			if lid, ok := e.Lista.ID(); ok && lid == id {
				return apperror.NewInUseError("A lista ainda possui endereçamentos vinculados.")
			}
		}
		delete(d.listas, id)
		return nil
	})
}
