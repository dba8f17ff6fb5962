package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimento físico no relatório de estoque
const (
	MovimentoEntrada = "entrada"
	MovimentoSaida   = "saida"
)

// MovimentoEstoque é uma linha do relatório de movimentação física,
// produzida pelo importador a partir do arquivo texto do ERP
type MovimentoEstoque struct {
	Data          time.Time       `json:"data"`
	Documento     string          `json:"documento"`
	Tipo          string          `json:"tipo"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	ValorTotal    decimal.Decimal `json:"valor_total"`
	SaldoFisico   decimal.Decimal `json:"saldo_fisico"`
}

// RelatorioEstoque agrega os movimentos de um período para o alocador FIFO.
// TotalSaidas é o único número que o alocador consome.
type RelatorioEstoque struct {
	Movimentos        []MovimentoEstoque `json:"movimentos"`
	QuantidadeInicial decimal.Decimal    `json:"quantidade_inicial"`
	TotalEntradas     decimal.Decimal    `json:"total_entradas"`
	TotalSaidas       decimal.Decimal    `json:"total_saidas"`
	ValorEntradas     decimal.Decimal    `json:"valor_entradas"`
	ValorSaidas       decimal.Decimal    `json:"valor_saidas"`
}
