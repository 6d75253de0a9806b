package memrepo

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"casamattos/internal/domain"
	apperror "casamattos/internal/errors"
)

type localRepo struct{ base }

func (r *localRepo) CriarRua(ctx context.Context, rua domain.Rua) (domain.Rua, error) {
	err := r.com(ctx, "Locais.CriarRua", func(d *estado) error {
		for _, existente := range d.ruas {
			if existente.Nome == rua.Nome {
				return apperror.NewConflictError(fmt.Sprintf("Já existe uma rua chamada '%s'.", rua.Nome))
			}
		}
		rua.ID = d.proximoID()
		rua.CreatedAt = r.s.agora()
		rua.UpdatedAt = rua.CreatedAt
		d.ruas[rua.ID] = rua
		return nil
	})
	if err != nil {
		return domain.Rua{}, err
	}
	return rua, nil
}

func (r *localRepo) BuscarRuaPorID(ctx context.Context, id int64) (domain.Rua, error) {
	var rua domain.Rua
	err := r.com(ctx, "Locais.BuscarRuaPorID", func(d *estado) error {
		var ok bool
		if rua, ok = d.ruas[id]; !ok {
			return apperror.NewNotFoundError(fmt.Sprintf("Rua com ID %d não encontrada.", id))
		}
		return nil
	})
	return rua, err
}

func (r *localRepo) ListarRuas(ctx context.Context) ([]domain.Rua, error) {
	ruas := []domain.Rua{}
	err := r.com(ctx, "Locais.ListarRuas", func(d *estado) error {
		for _, rua := range d.ruas {
			ruas = append(ruas, rua)
		}
		return nil
	})
	sort.Slice(ruas, func(i, j int) bool { return ruas[i].Nome < ruas[j].Nome })
	return ruas, err
}

func (r *localRepo) CriarPredio(ctx context.Context, predio domain.Predio) (domain.Predio, error) {
	err := r.com(ctx, "Locais.CriarPredio", func(d *estado) error {
		if _, ok := d.ruas[predio.IDRua]; !ok {
			return apperror.NewNotFoundError(fmt.Sprintf("Rua com ID %d não encontrada.", predio.IDRua))
		}
		for _, existente := range d.predios {
			if existente.IDRua == predio.IDRua && existente.Nome == predio.Nome {
				return apperror.NewConflictError(fmt.Sprintf("A rua já possui um prédio chamado '%s'.", predio.Nome))
			}
		}
		predio.ID = d.proximoID()
		predio.CreatedAt = r.s.agora()
		predio.UpdatedAt = predio.CreatedAt
		d.predios[predio.ID] = predio
		return nil
	})
	if err != nil {
		return domain.Predio{}, err
	}
	return predio, nil
}

func (r *localRepo) BuscarPredioPorID(ctx context.Context, id int64) (domain.Predio, error) {
	var p domain.Predio
	err := r.com(ctx, "Locais.BuscarPredioPorID", func(d *estado) error {
		var ok bool
		if p, ok = d.predios[id]; !ok {
			return apperror.NewNotFoundError(fmt.Sprintf("Prédio com ID %d não encontrado.", id))
		}
		return nil
	})
	return p, err
}

func (r *localRepo) ListarPredios(ctx context.Context, idRua *int64) ([]domain.Predio, error) {
	predios := []domain.Predio{}
	err := r.com(ctx, "Locais.ListarPredios", func(d *estado) error {
		for _, p := range d.predios {
			if idRua == nil || p.IDRua == *idRua {
				predios = append(predios, p)
			}
		}
		return nil
	})
	sort.Slice(predios, func(i, j int) bool {
		if predios[i].IDRua != predios[j].IDRua {
			return predios[i].IDRua < predios[j].IDRua
		}
		return predios[i].Nome < predios[j].Nome
	})
	return predios, err
}

type movimentacaoRepo struct{ base }

func (r *movimentacaoRepo) Registrar(ctx context.Context, m domain.Movimentacao) error {
	return r.com(ctx, "Movimentacoes.Registrar", func(d *estado) error {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.CreatedAt = r.s.agora()
		d.movimentacoes = append(d.movimentacoes, m)
		return nil
	})
}

func (r *movimentacaoRepo) ListarPorProduto(ctx context.Context, produtoID int64, limite int) ([]domain.Movimentacao, error) {
	movs := []domain.Movimentacao{}
	err := r.com(ctx, "Movimentacoes.ListarPorProduto", func(d *estado) error {
		for i := len(d.movimentacoes) - 1; i >= 0 && (limite <= 0 || len(movs) < limite); i-- {
			if d.movimentacoes[i].ProdutoID == produtoID {
				movs = append(movs, d.movimentacoes[i])
			}
		}
		return nil
	})
	return movs, err
}

type usuarioRepo struct{ base }

func (r *usuarioRepo) Salvar(ctx context.Context, u domain.Usuario) (domain.Usuario, error) {
	err := r.com(ctx, "Usuarios.Salvar", func(d *estado) error {
		for _, existente := range d.usuarios {
			if existente.Login == u.Login {
				return apperror.NewConflictError(fmt.Sprintf("O login '%s' já está em uso.", u.Login))
			}
		}
		u.ID = d.proximoID()
		u.CreatedAt = r.s.agora()
		u.UpdatedAt = u.CreatedAt
		d.usuarios[u.ID] = u
		return nil
	})
	if err != nil {
		return domain.Usuario{}, err
	}
	return u, nil
}

func (r *usuarioRepo) BuscarPorLogin(ctx context.Context, login string) (domain.Usuario, error) {
	var encontrado domain.Usuario
	err := r.com(ctx, "Usuarios.BuscarPorLogin", func(d *estado) error {
		for _, u := range d.usuarios {
			if u.Login == login {
				encontrado = u
				return nil
			}
		}
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com login '%s' não encontrado", login))
	})
	return encontrado, err
}
