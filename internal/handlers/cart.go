package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mercado_gateway/internal/cartapi"
	"mercado_gateway/internal/cartview"
	"mercado_gateway/internal/money"
	"mercado_gateway/internal/session"
)

// CartHandler liga a página do carrinho ao view model da sessão.
type CartHandler struct {
	Sessions *session.Registry
}

type cartItemView struct {
	ID                 string  `json:"id"`
	ProductID          string  `json:"productId"`
	Name               string  `json:"name"`
	Price              float64 `json:"price"`
	FormattedPrice     string  `json:"formattedPrice"`
	Quantity           int     `json:"quantity"`
	ImageURL           string  `json:"imageUrl"`
	FormattedLineTotal string  `json:"formattedLineTotal"`
}

type cartStateView struct {
	Phase          string         `json:"phase"`
	Items          []cartItemView `json:"items"`
	Total          float64        `json:"total"`
	FormattedTotal string         `json:"formattedTotal"`
	Error          string         `json:"error,omitempty"`
}

//
// 🛒 GET /api/cart
//
func (h *CartHandler) GetCart(c *gin.Context) {
	vm, err := h.Sessions.Attach(c, c.GetString("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro de sessão"})
		return
	}

	state, err := vm.Load(c.Request.Context())
	if err != nil {
		h.fail(c, err, state)
		return
	}
	c.JSON(http.StatusOK, renderState(state))
}

//
// 🟢 POST /api/cart/add
//
func (h *CartHandler) AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	vm, err := h.Sessions.Attach(c, c.GetString("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro de sessão"})
		return
	}

	// quantidade ≤ 0 é barrada pelo cliente antes de qualquer chamada de rede
	state, err := vm.Add(c.Request.Context(), input.ProductID, input.Quantity)
	if err != nil {
		h.fail(c, err, state)
		return
	}
	c.JSON(http.StatusOK, renderState(state))
}

//
// ❌ DELETE /api/cart/items/:itemId
//
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	vm, err := h.Sessions.Attach(c, c.GetString("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro de sessão"})
		return
	}

	state, err := vm.Remove(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		h.fail(c, err, state)
		return
	}
	c.JSON(http.StatusOK, renderState(state))
}

//
// 🧹 DELETE /api/cart/session (desmontagem explícita: a página fechou)
//
func (h *CartHandler) EndSession(c *gin.Context) {
	h.Sessions.Detach(c)
	c.JSON(http.StatusOK, gin.H{"message": "Sessão encerrada"})
}

func (h *CartHandler) fail(c *gin.Context, err error, state cartview.State) {
	status, msg := httpStatusFor(err)

	var dErr *cartapi.DecodeError
	if errors.As(err, &dErr) {
		// contrato quebrado com a API: detalhe no log, tela recebe o genérico
		log.Printf("❌ %v", dErr)
	}

	view := renderState(state)
	view.Error = msg
	c.JSON(status, view)
}

// httpStatusFor traduz a taxonomia de erros do cliente de carrinho para a
// resposta HTTP do gateway.
func httpStatusFor(err error) (int, string) {
	var (
		vErr   *cartapi.ValidationError
		reqErr *cartapi.RequestError
		tErr   *cartapi.TransportError
		dErr   *cartapi.DecodeError
	)
	switch {
	case errors.Is(err, cartview.ErrClosed):
		return http.StatusGone, "Sessão encerrada, recarregue a página"
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Message
	case errors.As(err, &reqErr):
		return reqErr.Status, reqErr.Message
	case errors.As(err, &tErr):
		return http.StatusServiceUnavailable, "Verifique sua conexão"
	case errors.As(err, &dErr):
		return http.StatusBadGateway, "Resposta inesperada do servidor"
	}
	return http.StatusInternalServerError, "Erro interno"
}

func renderState(s cartview.State) cartStateView {
	view := cartStateView{
		Phase: string(s.Phase),
		Items: []cartItemView{},
	}
	if s.Phase == "" {
		view.Phase = string(cartview.PhaseIdle)
	}
	if s.Err != nil {
		_, msg := httpStatusFor(s.Err)
		view.Error = msg
	}
	if s.Snapshot == nil {
		view.FormattedTotal = money.FormatBRL(0)
		return view
	}

	for _, it := range s.Snapshot.Items {
		view.Items = append(view.Items, cartItemView{
			ID:                 it.ID,
			ProductID:          it.ProductID,
			Name:               it.Name,
			Price:              it.Price,
			FormattedPrice:     money.FormatBRL(it.Price),
			Quantity:           it.Quantity,
			ImageURL:           it.ImageURL,
			FormattedLineTotal: money.FormatBRL(money.LineTotal(it)),
		})
	}
	view.Total = s.Snapshot.Total
	view.FormattedTotal = money.FormatBRL(s.Snapshot.Total)
	return view
}
