package models

import "github.com/shopspring/decimal"

// ===== REQUEST DTOs =====

// AbrirCompetenciaRequest DTO para abrir/selecionar uma competência
type AbrirCompetenciaRequest struct {
	Empresa string `json:"empresa" validate:"required"`
	Ano     int    `json:"ano" validate:"required,gte=2000,lte=2100"`
	Mes     int    `json:"mes" validate:"required,gte=1,lte=12"`
}

// EditarSaldoRequest DTO para edição manual do saldo anterior de uma nota.
// O valor é decimal para rejeitar entrada não numérica no bind, em vez de
// coagir para zero.
type EditarSaldoRequest struct {
	Empresa       string          `json:"empresa" validate:"required"`
	NumeroNota    string          `json:"numero_nota" validate:"required"`
	SaldoAnterior decimal.Decimal `json:"saldo_anterior"`
}

// ConfirmarSaldoRequest DTO para confirmar o saldo de uma nota
type ConfirmarSaldoRequest struct {
	Empresa    string `json:"empresa" validate:"required"`
	NumeroNota string `json:"numero_nota" validate:"required"`
}

// ConfirmarTodasRequest DTO para confirmação em lote
type ConfirmarTodasRequest struct {
	Empresa string `json:"empresa" validate:"required"`
}

// CompetenciaRequest DTO para confirmar/reabrir a competência (trava)
type CompetenciaRequest struct {
	Empresa string `json:"empresa" validate:"required"`
	Ano     int    `json:"ano" validate:"required,gte=2000,lte=2100"`
	Mes     int    `json:"mes" validate:"required,gte=1,lte=12"`
}

// AlocacaoRequest DTO para executar/salvar a alocação FIFO da sessão aberta
type AlocacaoRequest struct {
	Empresa string `json:"empresa" validate:"required"`
}
