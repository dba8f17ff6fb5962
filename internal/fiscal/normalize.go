package fiscal

import "strings"

// NormalizarNumeroNota canonicaliza um número de nota para o cruzamento
// entre guias e notas fiscais: descarta espaços e zeros à esquerda, de modo
// que "0000123" e "123" casem. A forma original com zeros segue sendo a
// forma de exibição; esta é apenas a chave de join e deve ser aplicada nos
// DOIS lados de qualquer cruzamento.
func NormalizarNumeroNota(numero string) string {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		return ""
	}
	semZeros := strings.TrimLeft(numero, "0")
	if semZeros == "" {
		// número composto só de zeros
		return "0"
	}
	return semZeros
}
