package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"casamattos/internal/domain"
)

const emissor = "CasaMattos-API"

// ErrPerfilDesconhecido indica um token assinado com um perfil que o sistema não reconhece.
var ErrPerfilDesconhecido = errors.New("perfil de usuário desconhecido no token")

// TokenService define o contrato para manipulação de JWTs.
type TokenService interface {
	GenerateToken(userID int64, userRole string) (string, error)
	ValidateToken(tokenString string) (*CustomClaims, error)
}

// CustomClaims carrega o usuário e o perfil usados na autorização e na auditoria.
type CustomClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Perfil devolve o perfil tipado das claims.
func (c *CustomClaims) Perfil() domain.PerfilUsuario {
	return domain.PerfilUsuario(c.Role)
}

// Service assina e valida tokens HS256.
type Service struct {
	secretKey []byte
	expiry    time.Duration
	parser    *jwt.Parser
}

// NewService cria uma nova instância do serviço Token.
func NewService(secretKey string, expiry time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		expiry:    expiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(emissor),
			jwt.WithExpirationRequired(),
		),
	}
}

// GenerateToken emite um JWT para o usuário. O subject é o id em decimal.
func (s *Service) GenerateToken(userID int64, userRole string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserID: userID,
		Role:   userRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    emissor,
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("falha ao assinar o token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken confere assinatura, emissor, validade e perfil.
func (s *Service) ValidateToken(tokenString string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token inválido: %w", err)
	}

	switch claims.Perfil() {
	case domain.PerfilAdmin, domain.PerfilOperador:
		return claims, nil
	default:
		return nil, ErrPerfilDesconhecido
	}
}
