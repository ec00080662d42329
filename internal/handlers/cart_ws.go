package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autorizar todas as origens (ajustar em produção)
		return true
	},
}

// CartWebSocket transmite cada transição de estado do carrinho para a página,
// em tempo real. A conexão morre junto com o view model: sessão desmontada
// fecha o canal e encerra o socket.
func (h *CartHandler) CartWebSocket(c *gin.Context) {
	vm, err := h.Sessions.Attach(c, c.GetString("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro de sessão"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erro no upgrade do WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ch := vm.Subscribe()
	defer vm.Unsubscribe(ch)

	conn.WriteJSON(gin.H{
		"type":  "connected",
		"state": renderState(vm.State()),
	})

	// leitor só para perceber a desconexão do navegador
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case state, ok := <-ch:
			if !ok {
				// view model desmontado
				return
			}
			if err := conn.WriteJSON(gin.H{"type": "state", "state": renderState(state)}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
