package domain

import (
	"context"
	"time"
)

// Rua é o nível superior da hierarquia física do armazém.
type Rua struct {
	ID        int64     `json:"id"`
	Nome      string    `json:"nome"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Predio pertence a uma Rua e abriga os endereçamentos.
type Predio struct {
	ID        int64     `json:"id"`
	Nome      string    `json:"nome"`
	IDRua     int64     `json:"id_rua"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocalRepository define o contrato de persistência de ruas e prédios.
type LocalRepository interface {
	CriarRua(ctx context.Context, rua Rua) (Rua, error)
	BuscarRuaPorID(ctx context.Context, id int64) (Rua, error)
	ListarRuas(ctx context.Context) ([]Rua, error)
	CriarPredio(ctx context.Context, predio Predio) (Predio, error)
	BuscarPredioPorID(ctx context.Context, id int64) (Predio, error)
	ListarPredios(ctx context.Context, idRua *int64) ([]Predio, error)
}
