package cartapi

import "fmt"

// Taxonomia de erros do cliente de carrinho. O cliente nunca engole uma
// falha: ele só classifica. Quem decide o que o usuário vê é o view model.

// TransportError: a troca de rede nem chegou a completar (conexão recusada,
// timeout, contexto cancelado).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("falha de rede em %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestError: o servidor respondeu, mas com status de erro. Message é a
// mensagem da operação, pronta para a tela.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// DecodeError: resposta 2xx cujo corpo não é um carrinho. Quebra de contrato
// com a API: vai para o log, o usuário recebe mensagem genérica.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("resposta de %s não pôde ser decodificada: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError: pré-condição violada do lado de cá. Rejeitado antes de
// qualquer chamada de rede.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
