package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"casamattos/config"
	_ "casamattos/docs"
	"casamattos/internal/domain"
	"casamattos/internal/pkg/cache"
	"casamattos/internal/pkg/database"
	"casamattos/internal/pkg/logger"
	"casamattos/internal/pkg/token"

	"casamattos/internal/api/enderecamento"
	"casamattos/internal/api/estoque"
	"casamattos/internal/api/lista"
	"casamattos/internal/api/local"
	"casamattos/internal/api/produto"
	"casamattos/internal/api/router"
	"casamattos/internal/api/usuario"
	"casamattos/internal/repository/memrepo"
	"casamattos/internal/repository/uow"
	"casamattos/internal/repository/usuariorepo"
	"casamattos/internal/service/enderecamentoservice"
	"casamattos/internal/service/estoqueservice"
	"casamattos/internal/service/listaservice"
	"casamattos/internal/service/localservice"
	"casamattos/internal/service/produtoservice"
	"casamattos/internal/service/usuarioservice"
)

// armazenamento é o conjunto de dependências de persistência escolhido por STORAGE_DRIVER.
type armazenamento struct {
	uow      domain.UnitOfWork
	repos    domain.Repositorios
	usuarios domain.UsuarioRepository
	fechar   func() error
}

func abrirArmazenamento(cfg *config.Config, log logger.Logger) (armazenamento, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memrepo.NewStore()
		log.Warn("Usando armazenamento em memória. Os dados não sobrevivem ao reinício.", nil)
		return armazenamento{
			uow:      store,
			repos:    store.Repositorios(),
			usuarios: store.Usuarios(),
			fechar:   func() error { return nil },
		}, nil
	}

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		return armazenamento{}, err
	}
	log.Info("Conexão PostgreSQL estabelecida.", nil)
	return armazenamento{
		uow:      uow.NewTxRunner(db, cfg.DBTimeout, log),
		repos:    uow.NewRepositorios(db, cfg.DBTimeout, log),
		usuarios: usuariorepo.NewUsuarioRepository(db, cfg.DBTimeout, log),
		fechar:   db.Close,
	}, nil
}

// @title Casa Mattos API
// @version 1.0
// @description Estoque, endereçamentos e listas de separação do armazém.
// @BasePath /v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// 0. Variáveis de ambiente (.env é opcional; o ambiente do sistema prevalece)
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Falha ao carregar configurações: %v", err)
	}
	appLog := logger.New(os.Stdout, cfg.LogLevel, cfg.IsDevelopment())
	appLog.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment, "storage": cfg.StorageDriver})

	// 1. Persistência
	store, err := abrirArmazenamento(cfg, appLog)
	if err != nil {
		appLog.Fatal("Falha ao inicializar o armazenamento.", err)
	}
	defer store.fechar()

	// 2. Cache (Redis). Sem Redis o serviço segue sem cache e sem rate limit.
	var cacheClient cache.Client
	if cfg.RedisAddr != "" {
		c, err := cache.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			appLog.Warn("Redis indisponível. Cache e rate limit desligados.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
		} else {
			cacheClient = c
			appLog.Info("Conexão Redis estabelecida.", nil)
		}
	}

	// 3. Injeção de dependências: Repository -> Service -> Handler
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	estoqueSvc := estoqueservice.NewService(store.uow, store.repos, cacheClient, cfg.CacheTTL, appLog)
	enderecamentoSvc := enderecamentoservice.NewService(store.uow, store.repos, appLog)
	listaSvc := listaservice.NewService(store.uow, store.repos, estoqueSvc, enderecamentoSvc, appLog)
	produtoSvc := produtoservice.NewService(store.repos.Produtos, appLog)
	localSvc := localservice.NewService(store.repos.Locais, appLog)
	usuarioSvc := usuarioservice.NewService(store.usuarios, tokenSvc, appLog)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := usuarioSvc.GarantirAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		appLog.Error("Falha ao garantir o administrador inicial.", err)
	}
	cancel()

	handlers := router.Handlers{
		Produto:       produto.NewHandler(produtoSvc, appLog),
		Estoque:       estoque.NewHandler(estoqueSvc, appLog),
		Enderecamento: enderecamento.NewHandler(enderecamentoSvc, appLog),
		Lista:         lista.NewHandler(listaSvc, appLog),
		Local:         local.NewHandler(localSvc, appLog),
		Usuario:       usuario.NewHandler(usuarioSvc, appLog),
	}
	r := router.NewRouter(handlers, tokenSvc, router.RateLimit{
		Cache:       cacheClient,
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod,
	}, appLog)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor Casa Mattos ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}
	appLog.Info("Servidor encerrado com sucesso.", nil)
}
