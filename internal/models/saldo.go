package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaldoNota representa a tabela saldos_notas: o único artefato durável do
// motor. Chaveado por (empresa, numero_nota, ano, mes); o fechamento de uma
// competência vira a sugestão de abertura da seguinte.
type SaldoNota struct {
	ID                  int             `json:"id" db:"id"`
	Empresa             string          `json:"empresa" db:"empresa"`
	NumeroNota          string          `json:"numero_nota" db:"numero_nota"`
	Ano                 int             `json:"ano" db:"ano"`
	Mes                 int             `json:"mes" db:"mes"`
	SaldoRemanescente   decimal.Decimal `json:"saldo_remanescente" db:"saldo_remanescente"`
	QuantidadeOriginal  decimal.Decimal `json:"quantidade_original" db:"quantidade_original"`
	QuantidadeConsumida decimal.Decimal `json:"quantidade_consumida" db:"quantidade_consumida"`
	Confirmado          bool            `json:"confirmado" db:"confirmado"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// SaldoKey identifica um saldo no armazenamento
type SaldoKey struct {
	Empresa    string `json:"empresa"`
	NumeroNota string `json:"numero_nota"`
	Ano        int    `json:"ano"`
	Mes        int    `json:"mes"`
}

// Key retorna a chave de upsert do saldo
func (s *SaldoNota) Key() SaldoKey {
	return SaldoKey{Empresa: s.Empresa, NumeroNota: s.NumeroNota, Ano: s.Ano, Mes: s.Mes}
}

// Situação de uma nota após a alocação FIFO
const (
	SituacaoUtilizado = "UTILIZADO"
	SituacaoParcial   = "PARCIAL"
	SituacaoPendente  = "PENDENTE"
)
