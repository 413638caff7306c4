package models

import (
	"time"
)

// Livro is a book owning an outline of Indice rows
type Livro struct {
	ID                  uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Titulo              string    `gorm:"size:255;not null" json:"titulo"`
	UsuarioPublicadorID uint64    `gorm:"not null;index" json:"usuario_publicador_id"`
	UsuarioPublicador   *User     `gorm:"foreignKey:UsuarioPublicadorID;references:ID" json:"-"`
	Indices             []Indice  `gorm:"foreignKey:LivroID" json:"-"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Indice is one entry of a book outline. IndicePaiID points at another
// Indice of the same book, nil for root-level entries.
type Indice struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	LivroID     uint64    `gorm:"not null;index" json:"livro_id"`
	IndicePaiID *uint64   `gorm:"index" json:"indice_pai_id"`
	IndicePai   *Indice   `gorm:"constraint:OnDelete:SET NULL;foreignKey:IndicePaiID;references:ID" json:"-"`
	Titulo      string    `gorm:"size:255;not null;index" json:"titulo"`
	Pagina      float64   `gorm:"not null" json:"pagina"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name for Livro
func (Livro) TableName() string {
	return "livros"
}

// TableName overrides the table name for Indice
func (Indice) TableName() string {
	return "indices"
}
