package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status possíveis de uma guia de pagamento. Somente guias "utilizavel"
// entram no motor de creditamento.
const (
	GuiaUtilizavel   = "utilizavel"
	GuiaNaoPaga      = "nao_paga"
	GuiaUtilizada    = "utilizada"
	GuiaInutilizavel = "inutilizavel"
	GuiaVendaInterna = "venda_interna"
)

// Guia representa a tabela guias_pagamento: o comprovante de recolhimento
// do ICMS-ST vinculado a uma nota fiscal de entrada
type Guia struct {
	ID              int             `json:"id" db:"id"`
	Empresa         string          `json:"empresa" db:"empresa"`
	NumeroNota      string          `json:"numero_nota" db:"numero_nota"`
	Status          string          `json:"status" db:"status"`
	IcmsProprio     decimal.Decimal `json:"icms_proprio" db:"icms_proprio"`
	IcmsSt          decimal.Decimal `json:"icms_st" db:"icms_st"`
	NumeroDocumento string          `json:"numero_documento" db:"numero_documento"`
	CodigoBarras    string          `json:"codigo_barras" db:"codigo_barras"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}
