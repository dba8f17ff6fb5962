package fiscal

import (
	"github.com/shopspring/decimal"

	"ressarcimento-service/internal/models"
)

// GuiaEnriquecida é a linha de trabalho do motor: uma guia utilizável unida
// à sua nota fiscal de origem, com quantidade, saldos e valores unitários
// proporcionais. Recalculada a cada carga; nunca persistida diretamente.
type GuiaEnriquecida struct {
	Guia                models.Guia     `json:"guia"`
	NumeroNormalizado   string          `json:"numero_normalizado"`
	Quantidade          decimal.Decimal `json:"quantidade"`
	ChaveNfe            *string         `json:"chave_nfe,omitempty"`
	SaldoAnterior       decimal.Decimal `json:"saldo_anterior"`
	SaldoAtual          decimal.Decimal `json:"saldo_atual"`
	IcmsProprioTotal    decimal.Decimal `json:"icms_proprio_total"`
	IcmsStTotal         decimal.Decimal `json:"icms_st_total"`
	IcmsProprioUnitario decimal.Decimal `json:"icms_proprio_unitario"`
	IcmsStUnitario      decimal.Decimal `json:"icms_st_unitario"`
	Estado              EstadoSaldo     `json:"estado"`
}

// EnriquecerGuias une cada guia utilizável à nota fiscal de mesmo número
// normalizado e deriva quantidade, saldos e valores unitários.
//
// As notas são indexadas uma única vez antes do laço (lookup O(1) por
// guia); guia sem nota correspondente ainda é emitida, com quantidade zero
// e sem chave de acesso. Divisão por zero curto-circuita para zero.
// A saída preserva a ordem de entrada das guias. Função pura.
func EnriquecerGuias(guias []models.Guia, notas []models.NotaFiscal, saldosAnteriores map[string]decimal.Decimal) []GuiaEnriquecida {
	indice := make(map[string]*models.NotaFiscal, len(notas))
	for i := range notas {
		chave := NormalizarNumeroNota(notas[i].NumeroNota)
		if _, existe := indice[chave]; !existe {
			indice[chave] = &notas[i]
		}
	}

	linhas := make([]GuiaEnriquecida, 0, len(guias))
	for _, guia := range guias {
		if guia.Status != models.GuiaUtilizavel {
			continue
		}

		numero := NormalizarNumeroNota(guia.NumeroNota)
		linha := GuiaEnriquecida{
			Guia:              guia,
			NumeroNormalizado: numero,
			IcmsProprioTotal:  guia.IcmsProprio,
			IcmsStTotal:       guia.IcmsSt,
			Estado:            EstadoVazio,
		}

		if nota, ok := indice[numero]; ok {
			linha.Quantidade = nota.Quantidade
			linha.ChaveNfe = nota.ChaveNfe
		}

		if saldo, ok := saldosAnteriores[numero]; ok {
			linha.SaldoAnterior = saldo
		}

		// saldo atual: quantidade menos o saldo anterior quando houver
		// saldo anterior positivo; senão a própria quantidade da nota
		if linha.SaldoAnterior.IsPositive() {
			linha.SaldoAtual = linha.Quantidade.Sub(linha.SaldoAnterior)
		} else {
			linha.SaldoAtual = linha.Quantidade
		}

		if linha.Quantidade.IsPositive() {
			linha.IcmsProprioUnitario = linha.IcmsProprioTotal.Div(linha.Quantidade)
			linha.IcmsStUnitario = linha.IcmsStTotal.Div(linha.Quantidade)
		}

		linhas = append(linhas, linha)
	}

	return linhas
}
