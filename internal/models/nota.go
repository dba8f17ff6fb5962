package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotaFiscal representa a tabela notas_fiscais, alimentada pelo pipeline
// externo de importação (planilha/XML). Somente leitura para o motor.
type NotaFiscal struct {
	ID          int             `json:"id" db:"id"`
	Empresa     string          `json:"empresa" db:"empresa"`
	NumeroNota  string          `json:"numero_nota" db:"numero_nota"`
	Quantidade  decimal.Decimal `json:"quantidade" db:"quantidade"`
	IcmsProprio decimal.Decimal `json:"icms_proprio" db:"icms_proprio"`
	IcmsSt      decimal.Decimal `json:"icms_st" db:"icms_st"`
	ChaveNfe    *string         `json:"chave_nfe,omitempty" db:"chave_nfe"`
	Ano         int             `json:"ano" db:"ano"`
	Mes         int             `json:"mes" db:"mes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
