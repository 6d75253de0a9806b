package domain

import (
	"context"
	"time"
)

// Usuario representa a entidade de autenticação do sistema.
type Usuario struct {
	ID        int64         `json:"id"`
	Nome      string        `json:"nome"`
	Login     string        `json:"login"`
	SenhaHash string        `json:"-"` // Oculta o hash da senha no JSON de resposta
	Ativo     bool          `json:"ativo"`
	Perfil    PerfilUsuario `json:"perfil"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PerfilUsuario é o papel do usuário no sistema.
type PerfilUsuario string

const (
	PerfilAdmin    PerfilUsuario = "admin"
	PerfilOperador PerfilUsuario = "operador"
)

// UsuarioRegistro representa o payload de entrada para o registro.
type UsuarioRegistro struct {
	Nome  string `json:"nome"`
	Login string `json:"login"`
	Senha string `json:"senha"`
}

// Ator é a identidade de quem executa uma operação de escrita, usada em logs e auditoria.
// Um *Ator nil significa operação sem usuário identificado.
type Ator struct {
	UsuarioID int64
	Perfil    PerfilUsuario
}

// UsuarioIDPtr retorna o id do ator ou nil.
func (a *Ator) UsuarioIDPtr() *int64 {
	if a == nil {
		return nil
	}
	id := a.UsuarioID
	return &id
}

// LogFields devolve os campos de log do ator.
func (a *Ator) LogFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	if a != nil {
		fields["usuario_id"] = a.UsuarioID
	}
	return fields
}

// UsuarioRepository define o contrato de persistência para a entidade Usuario.
type UsuarioRepository interface {
	Salvar(ctx context.Context, usuario Usuario) (Usuario, error)
	BuscarPorLogin(ctx context.Context, login string) (Usuario, error)
}
