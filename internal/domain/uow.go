package domain

import "context"

// Repositorios agrupa os repositórios que participam de uma mesma unidade de trabalho.
type Repositorios struct {
	Produtos       ProdutoRepository
	Enderecamentos EnderecamentoRepository
	Listas         ListaRepository
	Locais         LocalRepository
	Movimentacoes  MovimentacaoRepository
}

// UnitOfWork executa fn dentro de uma transação. Se fn retornar erro,
// nenhuma escrita feita pelos repositórios recebidos é persistida.
type UnitOfWork interface {
	Executar(ctx context.Context, fn func(ctx context.Context, repos Repositorios) error) error
}
