package fiscal

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"ressarcimento-service/internal/models"
)

// NotaAlocada é o resultado da alocação FIFO para uma nota
type NotaAlocada struct {
	NumeroNota    string          `json:"numero_nota"`
	SaldoAnterior decimal.Decimal `json:"saldo_anterior"`
	Consumido     decimal.Decimal `json:"consumido"`
	SaldoFinal    decimal.Decimal `json:"saldo_final"`
	Situacao      string          `json:"situacao"`
}

// ResultadoAlocacao agrega a alocação de uma competência
type ResultadoAlocacao struct {
	Notas           []NotaAlocada   `json:"notas"`
	TotalSaidas     decimal.Decimal `json:"total_saidas"`
	TotalConsumido  decimal.Decimal `json:"total_consumido"`
	SaidasRestantes decimal.Decimal `json:"saidas_restantes"`
	NotasUtilizadas int             `json:"notas_utilizadas"`
}

// AlocarSaidas distribui o total de saídas físicas do período entre as
// notas, da mais antiga para a mais recente (número de nota crescente,
// interpretado numericamente — FIFO). Cada nota consome no máximo o seu
// saldo atual; o que sobrar de saídas segue para a próxima nota.
//
// O resultado é determinístico: a única ordem relevante é a do número de
// nota, então entradas iguais em ordens diferentes produzem exatamente a
// mesma alocação. Função pura.
func AlocarSaidas(totalSaidas decimal.Decimal, linhas []GuiaEnriquecida) ResultadoAlocacao {
	ordenadas := make([]GuiaEnriquecida, len(linhas))
	copy(ordenadas, linhas)
	sort.SliceStable(ordenadas, func(i, j int) bool {
		return notaAntes(ordenadas[i].NumeroNormalizado, ordenadas[j].NumeroNormalizado)
	})

	resultado := ResultadoAlocacao{
		Notas:       make([]NotaAlocada, 0, len(ordenadas)),
		TotalSaidas: totalSaidas,
	}

	restante := totalSaidas
	for _, linha := range ordenadas {
		alocada := NotaAlocada{
			NumeroNota:    linha.Guia.NumeroNota,
			SaldoAnterior: linha.SaldoAtual,
			SaldoFinal:    linha.SaldoAtual,
		}

		if restante.IsPositive() {
			consumo := decimal.Min(restante, linha.SaldoAtual)
			if consumo.IsNegative() {
				consumo = decimal.Zero
			}
			alocada.Consumido = consumo
			alocada.SaldoFinal = linha.SaldoAtual.Sub(consumo)
			restante = restante.Sub(consumo)
		}

		switch {
		case alocada.SaldoFinal.LessThanOrEqual(decimal.Zero):
			alocada.Situacao = models.SituacaoUtilizado
			resultado.NotasUtilizadas++
		case alocada.Consumido.IsPositive():
			alocada.Situacao = models.SituacaoParcial
		default:
			alocada.Situacao = models.SituacaoPendente
		}

		resultado.TotalConsumido = resultado.TotalConsumido.Add(alocada.Consumido)
		resultado.Notas = append(resultado.Notas, alocada)
	}

	resultado.SaidasRestantes = restante
	return resultado
}

// notaAntes compara dois números de nota normalizados para a ordenação
// FIFO: numericamente quando ambos são numéricos, senão lexicograficamente.
// Desempate sempre pela forma textual, para manter a ordenação total.
func notaAntes(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		if na != nb {
			return na < nb
		}
		return a < b
	}
	if errA == nil {
		return true
	}
	if errB == nil {
		return false
	}
	return a < b
}
