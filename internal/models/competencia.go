package models

import (
	"fmt"
)

// Competencia representa o período de apuração (ano/mês) de um cálculo fiscal
type Competencia struct {
	Ano int `json:"ano"`
	Mes int `json:"mes"`
}

// Valida verifica se a competência está dentro de um intervalo aceitável
func (c Competencia) Valida() error {
	if c.Ano < 2000 || c.Ano > 2100 {
		return fmt.Errorf("ano inválido: %d", c.Ano)
	}
	if c.Mes < 1 || c.Mes > 12 {
		return fmt.Errorf("mês inválido: %d", c.Mes)
	}
	return nil
}

// Anterior retorna a competência imediatamente anterior (dezembro do ano
// anterior quando o mês é janeiro)
func (c Competencia) Anterior() Competencia {
	if c.Mes == 1 {
		return Competencia{Ano: c.Ano - 1, Mes: 12}
	}
	return Competencia{Ano: c.Ano, Mes: c.Mes - 1}
}

func (c Competencia) String() string {
	return fmt.Sprintf("%04d-%02d", c.Ano, c.Mes)
}

// Status de uma competência na tabela competencias
const (
	CompetenciaAberta     = "aberta"
	CompetenciaConfirmada = "confirmada"
)

// CompetenciaRegistro representa a tabela competencias (trava de período)
type CompetenciaRegistro struct {
	ID      int    `json:"id" db:"id"`
	Empresa string `json:"empresa" db:"empresa"`
	Ano     int    `json:"ano" db:"ano"`
	Mes     int    `json:"mes" db:"mes"`
	Status  string `json:"status" db:"status"`
}
