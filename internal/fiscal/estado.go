package fiscal

import "fmt"

// EstadoSaldo é o estado do saldo anterior de uma nota dentro de uma
// competência aberta. As transições substituem as flags booleanas soltas
// ("já restaurado", "já sugerido") por uma máquina de estados explícita.
type EstadoSaldo string

const (
	EstadoVazio      EstadoSaldo = "vazio"
	EstadoSugerido   EstadoSaldo = "sugerido"
	EstadoRestaurado EstadoSaldo = "restaurado"
	EstadoEditado    EstadoSaldo = "editado"
	EstadoConfirmado EstadoSaldo = "confirmado"
)

// EventoSaldo é uma ação do fluxo de apuração sobre o saldo de uma nota
type EventoSaldo string

const (
	// EventoSugerir aplica o saldo remanescente da competência anterior.
	// Válido apenas sobre EstadoVazio: isso garante que a sugestão
	// acontece no máximo uma vez por carga e nunca sobrescreve uma
	// edição do operador.
	EventoSugerir EventoSaldo = "sugerir"
	// EventoRestaurar aplica um saldo já persistido desta competência
	EventoRestaurar EventoSaldo = "restaurar"
	// EventoEditar é a digitação manual do operador
	EventoEditar EventoSaldo = "editar"
	// EventoConfirmar grava o saldo como definitivo
	EventoConfirmar EventoSaldo = "confirmar"
	// EventoReabrir descarta o estado e volta ao início da semeadura
	EventoReabrir EventoSaldo = "reabrir"
)

// Transicionar é o redutor puro da máquina de estados. Transições inválidas
// retornam erro em vez de silenciosamente não fazer nada.
//
// Editar sobre EstadoConfirmado permanece confirmado: a edição é gravada
// de forma síncrona no armazenamento (write-through), então o saldo segue
// sendo o valor persistido.
func Transicionar(estado EstadoSaldo, evento EventoSaldo) (EstadoSaldo, error) {
	switch evento {
	case EventoSugerir:
		if estado != EstadoVazio {
			return estado, fmt.Errorf("sugestão não aplicável sobre estado %q", estado)
		}
		return EstadoSugerido, nil

	case EventoRestaurar:
		if estado != EstadoVazio {
			return estado, fmt.Errorf("restauração não aplicável sobre estado %q", estado)
		}
		return EstadoRestaurado, nil

	case EventoEditar:
		if estado == EstadoConfirmado {
			return EstadoConfirmado, nil
		}
		return EstadoEditado, nil

	case EventoConfirmar:
		return EstadoConfirmado, nil

	case EventoReabrir:
		return EstadoVazio, nil

	default:
		return estado, fmt.Errorf("evento desconhecido %q", evento)
	}
}
