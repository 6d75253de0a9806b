// Package memrepo é um armazenamento em memória com a mesma semântica dos
// repositórios PostgreSQL. Usado em desenvolvimento (STORAGE_DRIVER=memory) e nos testes.
package memrepo

import (
	"context"
	"sync"
	"time"

	"casamattos/internal/domain"
)

var _ domain.UnitOfWork = (*Store)(nil)

type estado struct {
	produtos       map[int64]domain.Produto
	enderecamentos map[int64]domain.Enderecamento
	listas         map[int64]domain.Lista
	ruas           map[int64]domain.Rua
	predios        map[int64]domain.Predio
	usuarios       map[int64]domain.Usuario
	movimentacoes  []domain.Movimentacao
	seq            int64
}

func novoEstado() *estado {
	return &estado{
		produtos:       map[int64]domain.Produto{},
		enderecamentos: map[int64]domain.Enderecamento{},
		listas:         map[int64]domain.Lista{},
		ruas:           map[int64]domain.Rua{},
		predios:        map[int64]domain.Predio{},
		usuarios:       map[int64]domain.Usuario{},
	}
}

func (e *estado) clonar() *estado {
	c := &estado{
		produtos:       make(map[int64]domain.Produto, len(e.produtos)),
		enderecamentos: make(map[int64]domain.Enderecamento, len(e.enderecamentos)),
		listas:         make(map[int64]domain.Lista, len(e.listas)),
		ruas:           make(map[int64]domain.Rua, len(e.ruas)),
		predios:        make(map[int64]domain.Predio, len(e.predios)),
		usuarios:       make(map[int64]domain.Usuario, len(e.usuarios)),
		movimentacoes:  append([]domain.Movimentacao(nil), e.movimentacoes...),
		seq:            e.seq,
	}
	for k, v := range e.produtos {
		c.produtos[k] = v
	}
	for k, v := range e.enderecamentos {
		c.enderecamentos[k] = v
	}
	for k, v := range e.listas {
		c.listas[k] = v
	}
	for k, v := range e.ruas {
		c.ruas[k] = v
	}
	for k, v := range e.predios {
		c.predios[k] = v
	}
	for k, v := range e.usuarios {
		c.usuarios[k] = v
	}
	return c
}

func (e *estado) proximoID() int64 {
	e.seq++
	return e.seq
}

// Store guarda todas as entidades. As transações são serializadas por um único mutex,
// o que equivale a bloquear todas as linhas tocadas; em caso de erro o estado anterior
// é restaurado.
type Store struct {
	mu       sync.Mutex
	dados    *estado
	falhas   map[string]error
	chamadas map[string]int
	agora    func() time.Time
}

// NewStore cria um armazenamento vazio.
func NewStore() *Store {
	return &Store{
		dados:    novoEstado(),
		falhas:   map[string]error{},
		chamadas: map[string]int{},
		agora:    func() time.Time { return time.Now().UTC() },
	}
}

// FalharEm faz a próxima chamada da operação op (e.g. "Movimentacoes.Registrar")
// retornar err. Usado para simular falhas de persistência.
func (s *Store) FalharEm(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.falhas[op] = err
}

func (s *Store) falha(op string) error {
	err, ok := s.falhas[op]
	if !ok {
		return nil
	}
	delete(s.falhas, op)
	return err
}

// Chamadas retorna quantas vezes a operação op foi executada.
func (s *Store) Chamadas(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chamadas[op]
}

// Repositorios retorna repositórios fora de transação; cada chamada é atômica isoladamente.
func (s *Store) Repositorios() domain.Repositorios {
	return s.repos(false)
}

// Usuarios retorna o repositório de usuários.
func (s *Store) Usuarios() domain.UsuarioRepository {
	return &usuarioRepo{base{s: s}}
}

func (s *Store) repos(emTx bool) domain.Repositorios {
	b := base{s: s, emTx: emTx}
	return domain.Repositorios{
		Produtos:       &produtoRepo{b},
		Enderecamentos: &enderecamentoRepo{b},
		Listas:         &listaRepo{b},
		Locais:         &localRepo{b},
		Movimentacoes:  &movimentacaoRepo{b},
	}
}

// Executar roda fn com acesso exclusivo ao armazenamento.
func (s *Store) Executar(ctx context.Context, fn func(ctx context.Context, repos domain.Repositorios) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.dados.clonar()
	if err := fn(ctx, s.repos(true)); err != nil {
		s.dados = snapshot
		return err
	}
	return nil
}

// base fornece o acesso ao estado, tomando o mutex quando fora de transação.
type base struct {
	s    *Store
	emTx bool
}

func (b base) com(ctx context.Context, op string, fn func(d *estado) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.emTx {
		b.s.mu.Lock()
		defer b.s.mu.Unlock()
	}
	b.s.chamadas[op]++
	if err := b.s.falha(op); err != nil {
		return err
	}
	return fn(b.s.dados)
}
