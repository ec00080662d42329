package session

import (
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"mercado_gateway/internal/cartview"
)

// CookieName identifica a sessão de navegador no gateway.
const CookieName = "mercado_session"

const reapInterval = time.Minute

// Registry guarda um view model de carrinho vivo por sessão de navegador.
// Primeira visita monta, Detach ou inatividade desmonta (Close cancela o que
// estiver em voo). O carrinho em si nunca é persistido aqui: desmontou,
// descartou.
type Registry struct {
	store *sessions.CookieStore
	svc   cartview.Service
	ttl   time.Duration

	mu   sync.Mutex
	live map[string]*entry
	stop chan struct{}
	once sync.Once
}

type entry struct {
	vm       *cartview.ViewModel
	lastSeen time.Time
}

// NewRegistry cria o registro e dispara o coletor de sessões ociosas.
func NewRegistry(store *sessions.CookieStore, svc cartview.Service, ttl time.Duration) *Registry {
	r := &Registry{
		store: store,
		svc:   svc,
		ttl:   ttl,
		live:  make(map[string]*entry),
		stop:  make(chan struct{}),
	}
	go r.reapLoop()
	return r
}

// Attach devolve o view model da sessão da requisição, criando na primeira
// visita. O token da requisição (se houver) é renovado no view model a cada
// toque, então um login novo passa a valer na hora.
func (r *Registry) Attach(c *gin.Context, token string) (*cartview.ViewModel, error) {
	sess, _ := r.store.Get(c.Request, CookieName)

	id, _ := sess.Values["vm_id"].(string)
	if id == "" {
		id = uuid.NewString()
		sess.Values["vm_id"] = id
		if err := sess.Save(c.Request, c.Writer); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live[id]
	if !ok {
		e = &entry{vm: cartview.New(r.svc, token)}
		r.live[id] = e
	} else {
		e.vm.SetToken(token)
	}
	e.lastSeen = time.Now()
	return e.vm, nil
}

// Detach desmonta o view model da sessão, se existir.
func (r *Registry) Detach(c *gin.Context) {
	sess, _ := r.store.Get(c.Request, CookieName)
	id, _ := sess.Values["vm_id"].(string)
	if id == "" {
		return
	}

	r.mu.Lock()
	e, ok := r.live[id]
	delete(r.live, id)
	r.mu.Unlock()

	if ok {
		e.vm.Close()
	}
}

// CloseAll para o coletor e desmonta tudo (shutdown do gateway).
func (r *Registry) CloseAll() {
	r.once.Do(func() { close(r.stop) })

	r.mu.Lock()
	entries := r.live
	r.live = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.vm.Close()
	}
}

func (r *Registry) reapLoop() {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.reapExpired(now)
		}
	}
}

func (r *Registry) reapExpired(now time.Time) {
	var dead []*entry

	r.mu.Lock()
	for id, e := range r.live {
		if now.Sub(e.lastSeen) > r.ttl {
			dead = append(dead, e)
			delete(r.live, id)
		}
	}
	r.mu.Unlock()

	for _, e := range dead {
		e.vm.Close()
	}
	if len(dead) > 0 {
		log.Printf("🧹 %d sessão(ões) ociosa(s) desmontada(s)", len(dead))
	}
}
