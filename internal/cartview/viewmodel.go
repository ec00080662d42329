package cartview

import (
	"context"
	"errors"
	"log"
	"sync"

	"mercado_gateway/internal/models"
)

// Phase identifica em que pé o view model está. Um único valor etiquetado em
// vez de booleanos soltos: "carregando" e "falhou" nunca podem ser verdadeiros
// ao mesmo tempo.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// State é o que a página enxerga. Snapshot é sempre o último carrinho bom e é
// trocado por inteiro a cada atualização, nunca mutado campo a campo, então
// quem segurar um snapshot antigo pode lê-lo sem medo. Em Loading e Failed o
// snapshot anterior continua disponível para a página não piscar em branco.
type State struct {
	Phase    Phase
	Snapshot *models.Cart
	Err      error
}

// ErrClosed: operação sobre um view model já desmontado.
var ErrClosed = errors.New("view model fechado")

// Service é o que o view model precisa do cliente de carrinho.
type Service interface {
	FetchCart(ctx context.Context, token string) (*models.Cart, error)
	AddItem(ctx context.Context, token, productID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, token, itemID string) (*models.Cart, error)
}

// ViewModel guarda o snapshot do carrinho de uma sessão e conduz as
// transições Idle → Loading → Ready | Failed. Uma instância por sessão, dona
// exclusiva do próprio estado; o lock nunca é segurado durante uma chamada de
// rede.
type ViewModel struct {
	svc Service

	mu     sync.Mutex
	token  string
	state  State
	gen    uint64             // identifica o load em andamento; resposta de geração velha é descartada
	cancel context.CancelFunc // cancela o load em andamento, se houver
	closed bool
	subs   map[chan State]struct{}
}

// New cria o view model em Idle, ainda sem carrinho.
func New(svc Service, token string) *ViewModel {
	return &ViewModel{
		svc:   svc,
		token: token,
		state: State{Phase: PhaseIdle},
		subs:  make(map[chan State]struct{}),
	}
}

// State devolve o estado corrente.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// SetToken troca o token encaminhado à API (a sessão continua, o login muda).
func (vm *ViewModel) SetToken(token string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.token = token
}

// Load (re)busca o carrinho. Um Load emitido com outro em voo cancela o
// anterior: a resposta mais nova vence e a atrasada é descartada pelo
// contador de geração, então nunca existe snapshot rasgado.
func (vm *ViewModel) Load(ctx context.Context) (State, error) {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return State{}, ErrClosed
	}
	if vm.cancel != nil {
		vm.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	vm.cancel = cancel
	vm.gen++
	gen := vm.gen
	token := vm.token
	vm.setStateLocked(State{Phase: PhaseLoading, Snapshot: vm.state.Snapshot})
	vm.mu.Unlock()

	cart, err := vm.svc.FetchCart(ctx, token)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		// a página já desmontou; resposta atrasada não escreve em estado morto
		return vm.state, ErrClosed
	}
	if gen != vm.gen {
		// um Load mais novo assumiu; este resultado está velho
		if err == nil {
			err = context.Canceled
		}
		return vm.state, err
	}
	vm.cancel = nil
	if err != nil {
		vm.setStateLocked(State{Phase: PhaseFailed, Snapshot: vm.state.Snapshot, Err: err})
		return vm.state, err
	}
	warnTotalMismatch(cart)
	vm.setStateLocked(State{Phase: PhaseReady, Snapshot: cart})
	return vm.state, nil
}

// Add adiciona um produto e troca o snapshot pelo carrinho que o servidor
// devolveu. No fracasso o snapshot anterior fica intacto.
func (vm *ViewModel) Add(ctx context.Context, productID string, quantity int) (State, error) {
	return vm.mutate(ctx, func(ctx context.Context, token string) (*models.Cart, error) {
		return vm.svc.AddItem(ctx, token, productID, quantity)
	})
}

// Remove tira um item do carrinho, pessimista: primeiro o servidor confirma,
// só então o snapshot é trocado. No fracasso nada do que está na tela muda;
// o erro volta para quem chamou decidir o que mostrar.
func (vm *ViewModel) Remove(ctx context.Context, itemID string) (State, error) {
	return vm.mutate(ctx, func(ctx context.Context, token string) (*models.Cart, error) {
		return vm.svc.RemoveItem(ctx, token, itemID)
	})
}

func (vm *ViewModel) mutate(ctx context.Context, call func(context.Context, string) (*models.Cart, error)) (State, error) {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return State{}, ErrClosed
	}
	token := vm.token
	vm.mu.Unlock()

	cart, err := call(ctx, token)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return vm.state, ErrClosed
	}
	if err != nil {
		// snapshot anterior intacto; o estado não vira Failed por causa de
		// uma mutação e a página continua utilizável
		return vm.state, err
	}
	// o carrinho pós-mutação é o mais novo: qualquer load ainda em voo ficou
	// velho e não pode sobrescrever este snapshot
	vm.gen++
	if vm.cancel != nil {
		vm.cancel()
		vm.cancel = nil
	}
	warnTotalMismatch(cart)
	vm.setStateLocked(State{Phase: PhaseReady, Snapshot: cart})
	return vm.state, nil
}

// Subscribe registra um canal que recebe cada transição de estado (é o que
// alimenta o websocket da página). O canal tem buffer: assinante lento perde
// estados intermediários, nunca trava o view model.
func (vm *ViewModel) Subscribe() chan State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	ch := make(chan State, 8)
	if vm.closed {
		close(ch)
		return ch
	}
	vm.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe desliga e fecha um canal devolvido por Subscribe.
func (vm *ViewModel) Unsubscribe(ch chan State) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if _, ok := vm.subs[ch]; ok {
		delete(vm.subs, ch)
		close(ch)
	}
}

// Close desmonta o view model: cancela requisição em voo, fecha os
// assinantes e garante que resposta atrasada não escreva em estado morto.
// Idempotente.
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return
	}
	vm.closed = true
	if vm.cancel != nil {
		vm.cancel()
		vm.cancel = nil
	}
	for ch := range vm.subs {
		close(ch)
	}
	vm.subs = nil
}

func (vm *ViewModel) setStateLocked(s State) {
	vm.state = s
	for ch := range vm.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// O total vem do servidor e é o que a página mostra; divergência da soma dos
// itens é avisada no log, nunca tratada como erro duro.
func warnTotalMismatch(cart *models.Cart) {
	if cart != nil && !cart.TotalMatches() {
		log.Printf("⚠️ Total do carrinho (%.2f) difere da soma dos itens (%.2f) — mantendo o total do servidor",
			cart.Total, cart.SumItems())
	}
}
