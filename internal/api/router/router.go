package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"casamattos/internal/api/enderecamento"
	"casamattos/internal/api/estoque"
	"casamattos/internal/api/lista"
	"casamattos/internal/api/local"
	"casamattos/internal/api/produto"
	"casamattos/internal/api/usuario"
	"casamattos/internal/domain"
	"casamattos/internal/pkg/cache"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Produto       *produto.Handler
	Estoque       *estoque.Handler
	Enderecamento *enderecamento.Handler
	Lista         *lista.Handler
	Local         *local.Handler
	Usuario       *usuario.Handler
}

// RateLimit configura o limitador de requisições. Sem cache, o limitador fica desligado.
type RateLimit struct {
	Cache       cache.Client
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, rl RateLimit, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(tokenSvc)
	admin := middleware.PermissionMiddleware(domain.PerfilAdmin)
	protegida := auth
	soAdmin := func(next http.HandlerFunc) http.HandlerFunc { return auth(admin(next)) }

	// --- Rotas públicas ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.HandleFunc("POST /v1/login", h.Usuario.LoginHandler)
	mux.HandleFunc("POST /v1/register", h.Usuario.RegistrarHandler)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- Produtos e Livro de Estoque ---
	mux.HandleFunc("POST /v1/produtos", soAdmin(h.Produto.CriarProdutoHandler))
	mux.HandleFunc("GET /v1/produtos", protegida(h.Produto.ListarProdutosHandler))
	mux.HandleFunc("GET /v1/produtos/{id}", protegida(h.Produto.BuscarProdutoHandler))
	mux.HandleFunc("GET /v1/produtos/{id}/estoque", protegida(h.Estoque.ConsultarHandler))
	mux.HandleFunc("GET /v1/produtos/{id}/estoque/detalhado", protegida(h.Estoque.DetalhadoHandler))
	mux.HandleFunc("GET /v1/produtos/{id}/movimentacoes", protegida(h.Estoque.MovimentacoesHandler))
	mux.HandleFunc("POST /v1/produtos/{id}/transferir", protegida(h.Estoque.TransferirHandler))
	mux.HandleFunc("POST /v1/produtos/{id}/retirar", protegida(h.Estoque.RetirarHandler))

	// --- Endereçamentos ---
	mux.HandleFunc("POST /v1/enderecamentos", protegida(h.Enderecamento.CriarHandler))
	mux.HandleFunc("GET /v1/enderecamentos/disponiveis", protegida(h.Enderecamento.DisponiveisHandler))
	mux.HandleFunc("GET /v1/enderecamentos/pesquisa", protegida(h.Enderecamento.PesquisarHandler))
	mux.HandleFunc("GET /v1/enderecamentos/{id}", protegida(h.Enderecamento.BuscarHandler))
	mux.HandleFunc("PUT /v1/enderecamentos/{id}", protegida(h.Enderecamento.AtualizarHandler))
	mux.HandleFunc("DELETE /v1/enderecamentos/{id}", soAdmin(h.Enderecamento.ExcluirHandler))
	mux.HandleFunc("POST /v1/enderecamentos/{id}/lista", protegida(h.Enderecamento.VincularListaHandler))
	mux.HandleFunc("DELETE /v1/enderecamentos/{id}/lista", protegida(h.Enderecamento.DesvincularListaHandler))

	// --- Listas de separação ---
	mux.HandleFunc("POST /v1/listas", protegida(h.Lista.CriarHandler))
	mux.HandleFunc("GET /v1/listas", protegida(h.Lista.ListarHandler))
	mux.HandleFunc("GET /v1/listas/disponiveis", protegida(h.Lista.DisponiveisHandler))
	mux.HandleFunc("GET /v1/listas/{id}", protegida(h.Lista.BuscarHandler))
	mux.HandleFunc("PUT /v1/listas/{id}", protegida(h.Lista.RenomearHandler))
	mux.HandleFunc("DELETE /v1/listas/{id}", soAdmin(h.Lista.ExcluirHandler))
	mux.HandleFunc("GET /v1/listas/{id}/enderecamentos", protegida(h.Lista.EnderecamentosHandler))
	mux.HandleFunc("POST /v1/listas/{id}/enderecamentos", protegida(h.Lista.AdicionarEnderecamentoHandler))
	mux.HandleFunc("DELETE /v1/listas/{id}/enderecamentos/{idEnd}", protegida(h.Lista.RemoverEnderecamentoHandler))
	mux.HandleFunc("POST /v1/listas/{id}/finalizar", protegida(h.Lista.FinalizarHandler))
	mux.HandleFunc("POST /v1/listas/{id}/desfazer", soAdmin(h.Lista.DesfazerHandler))

	// --- Ruas e prédios ---
	mux.HandleFunc("POST /v1/ruas", soAdmin(h.Local.CriarRuaHandler))
	mux.HandleFunc("GET /v1/ruas", protegida(h.Local.ListarRuasHandler))
	mux.HandleFunc("POST /v1/predios", soAdmin(h.Local.CriarPredioHandler))
	mux.HandleFunc("GET /v1/predios", protegida(h.Local.ListarPrediosHandler))

	// --- Middlewares globais ---
	var handler http.Handler = mux
	if rl.Cache != nil && rl.MaxRequests > 0 {
		handler = middleware.RateLimiter(rl.Cache, rl.MaxRequests, rl.Period, log)(handler)
	}
	return middleware.RequestLogger(log)(handler)
}

// PingHandler é o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
