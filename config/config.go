package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de armazenamento suportados.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config armazena todas as configurações do serviço Casa Mattos.
type Config struct {
	// Geral
	Port          string
	Environment   string
	LogLevel      string
	StorageDriver string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis). Endereço vazio desliga cache e rate limit.
	RedisAddr string
	CacheTTL  time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Administrador inicial, criado no boot se ainda não existir
	AdminLogin    string
	AdminPassword string

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// IsDevelopment informa se o serviço roda em ambiente de desenvolvimento.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("DB_TIMEOUT_SEC", 5)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("CACHE_TTL_SEC", 30)
	v.SetDefault("JWT_EXPIRY_MIN", 60)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_PERIOD_MIN", 1)
}

// LoadConfig carrega as configurações das variáveis de ambiente e, se existir, do arquivo .env.
// Variáveis de ambiente têm prioridade sobre o arquivo.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // o arquivo é opcional

	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:          v.GetString("PORT"),
		Environment:   v.GetString("ENV"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		JWTSecretKey:  v.GetString("JWT_SECRET_KEY"),
		AdminLogin:    v.GetString("ADMIN_LOGIN"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.DBTimeout, err = duracao(v, "DB_TIMEOUT_SEC", time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = duracao(v, "CACHE_TTL_SEC", time.Second); err != nil {
		return nil, err
	}
	if cfg.TokenExpiry, err = duracao(v, "JWT_EXPIRY_MIN", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitPeriod, err = duracao(v, "RATE_LIMIT_PERIOD_MIN", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitMaxRequests, err = inteiro(v, "RATE_LIMIT_MAX_REQUESTS"); err != nil {
		return nil, err
	}

	if err := cfg.validar(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validar() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("erro de configuração: DATABASE_URL deve ser definida com STORAGE_DRIVER=%s", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("erro de configuração: STORAGE_DRIVER inválido %q (use %s ou %s)", c.StorageDriver, StoragePostgres, StorageMemory)
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("erro de configuração: a variável JWT_SECRET_KEY deve ser definida")
	}
	return nil
}

// inteiro lê uma chave numérica não negativa.
func inteiro(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("erro de configuração: %s ('%s') deve ser um inteiro não negativo", key, raw)
	}
	return n, nil
}

func duracao(v *viper.Viper, key string, unidade time.Duration) (time.Duration, error) {
	n, err := inteiro(v, key)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * unidade, nil
}
