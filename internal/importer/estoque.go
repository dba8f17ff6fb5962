package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"ressarcimento-service/internal/models"
)

// Cabeçalho fixo do relatório de movimentação física exportado pelo ERP.
// O arquivo vem em ISO-8859-1, com vírgula decimal e datas dd/mm/aaaa.
var colunasEsperadas = []string{"data", "documento", "tipo", "quantidade", "valor unitario", "valor total", "saldo"}

const formatoData = "02/01/2006"

// LerRelatorioEstoque faz o parse completo do relatório de movimentação.
// A importação é tudo-ou-nada: cabeçalho ausente ou qualquer linha
// malformada rejeita o arquivo inteiro, sem dados parciais.
func LerRelatorioEstoque(arquivo io.Reader) (*models.RelatorioEstoque, error) {
	decoder := charmap.ISO8859_1.NewDecoder()
	scanner := bufio.NewScanner(decoder.Reader(arquivo))

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("erro ao ler relatório: %w", err)
		}
		return nil, fmt.Errorf("relatório vazio")
	}

	cabecalho := scanner.Text()
	separador, err := validarCabecalho(cabecalho)
	if err != nil {
		return nil, err
	}

	relatorio := &models.RelatorioEstoque{}
	numLinha := 1
	for scanner.Scan() {
		numLinha++
		linha := strings.TrimSpace(scanner.Text())
		if linha == "" {
			continue
		}

		movimento, err := lerLinha(linha, separador)
		if err != nil {
			return nil, fmt.Errorf("linha %d: %w", numLinha, err)
		}
		relatorio.Movimentos = append(relatorio.Movimentos, *movimento)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("erro ao ler relatório: %w", err)
	}

	agregar(relatorio)
	return relatorio, nil
}

// validarCabecalho confere as colunas e detecta o separador (o ERP ora
// exporta com ponto-e-vírgula, ora com vírgula)
func validarCabecalho(cabecalho string) (string, error) {
	separador := ";"
	if !strings.Contains(cabecalho, ";") {
		separador = ","
	}

	colunas := strings.Split(cabecalho, separador)
	if len(colunas) != len(colunasEsperadas) {
		return "", fmt.Errorf("cabeçalho inválido: esperava %d colunas, encontrou %d", len(colunasEsperadas), len(colunas))
	}
	for i, coluna := range colunas {
		nome := strings.ToLower(strings.TrimSpace(coluna))
		if nome != colunasEsperadas[i] {
			return "", fmt.Errorf("cabeçalho inválido: coluna %d esperava %q, encontrou %q", i+1, colunasEsperadas[i], nome)
		}
	}
	return separador, nil
}

func lerLinha(linha, separador string) (*models.MovimentoEstoque, error) {
	campos := strings.Split(linha, separador)
	if len(campos) != len(colunasEsperadas) {
		if separador == "," && len(campos) > len(colunasEsperadas) {
			return nil, fmt.Errorf("esperava %d campos, encontrou %d: arquivo separado por vírgula não pode usar vírgula decimal nos valores", len(colunasEsperadas), len(campos))
		}
		return nil, fmt.Errorf("esperava %d campos, encontrou %d", len(colunasEsperadas), len(campos))
	}

	data, err := time.Parse(formatoData, strings.TrimSpace(campos[0]))
	if err != nil {
		return nil, fmt.Errorf("data inválida %q", campos[0])
	}

	tipo, err := lerTipo(campos[2])
	if err != nil {
		return nil, err
	}

	quantidade, err := lerDecimalBR(campos[3])
	if err != nil {
		return nil, fmt.Errorf("quantidade inválida %q", campos[3])
	}
	valorUnitario, err := lerDecimalBR(campos[4])
	if err != nil {
		return nil, fmt.Errorf("valor unitário inválido %q", campos[4])
	}
	valorTotal, err := lerDecimalBR(campos[5])
	if err != nil {
		return nil, fmt.Errorf("valor total inválido %q", campos[5])
	}
	saldo, err := lerDecimalBR(campos[6])
	if err != nil {
		return nil, fmt.Errorf("saldo inválido %q", campos[6])
	}

	return &models.MovimentoEstoque{
		Data:          data,
		Documento:     strings.TrimSpace(campos[1]),
		Tipo:          tipo,
		Quantidade:    quantidade,
		ValorUnitario: valorUnitario,
		ValorTotal:    valorTotal,
		SaldoFisico:   saldo,
	}, nil
}

func lerTipo(campo string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(campo)) {
	case "ENTRADA", "E":
		return models.MovimentoEntrada, nil
	case "SAIDA", "SAÍDA", "S":
		return models.MovimentoSaida, nil
	default:
		return "", fmt.Errorf("tipo de movimento inválido %q", campo)
	}
}

// lerDecimalBR converte um número no formato brasileiro ("1.234,56")
func lerDecimalBR(campo string) (decimal.Decimal, error) {
	campo = strings.TrimSpace(campo)
	campo = strings.ReplaceAll(campo, ".", "")
	campo = strings.ReplaceAll(campo, ",", ".")
	return decimal.NewFromString(campo)
}

// agregar calcula os totais do período. A quantidade inicial é o saldo
// físico da primeira linha desfeito do próprio movimento dela.
func agregar(relatorio *models.RelatorioEstoque) {
	for _, mov := range relatorio.Movimentos {
		if mov.Tipo == models.MovimentoEntrada {
			relatorio.TotalEntradas = relatorio.TotalEntradas.Add(mov.Quantidade)
			relatorio.ValorEntradas = relatorio.ValorEntradas.Add(mov.ValorTotal)
		} else {
			relatorio.TotalSaidas = relatorio.TotalSaidas.Add(mov.Quantidade)
			relatorio.ValorSaidas = relatorio.ValorSaidas.Add(mov.ValorTotal)
		}
	}

	if len(relatorio.Movimentos) > 0 {
		primeiro := relatorio.Movimentos[0]
		if primeiro.Tipo == models.MovimentoEntrada {
			relatorio.QuantidadeInicial = primeiro.SaldoFisico.Sub(primeiro.Quantidade)
		} else {
			relatorio.QuantidadeInicial = primeiro.SaldoFisico.Add(primeiro.Quantidade)
		}
	}
}
