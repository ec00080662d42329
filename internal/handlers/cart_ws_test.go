package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercado_gateway/internal/cartapi"
	"mercado_gateway/internal/session"
)

type wsFrame struct {
	Type  string        `json:"type"`
	State cartStateView `json:"state"`
}

// newWebServer sobe o gateway num servidor de verdade: o upgrade de WebSocket
// precisa de uma conexão TCP, o ResponseRecorder não serve.
func newWebServer(t *testing.T, upstreamURL string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := sessions.NewCookieStore([]byte("segredo-de-teste"))
	client := cartapi.NewClient(upstreamURL, nil)
	reg := session.NewRegistry(store, client, time.Minute)
	t.Cleanup(reg.CloseAll)

	h := &CartHandler{Sessions: reg}
	r := gin.New()
	api := r.Group("/api")
	api.GET("/cart", h.GetCart)
	api.GET("/cart/ws", h.CartWebSocket)
	api.DELETE("/cart/session", h.EndSession)

	web := httptest.NewServer(r)
	t.Cleanup(web.Close)
	return web
}

func doWithCookie(t *testing.T, method, url, cookie string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestCartWebSocket_StreamsStateTransitions(t *testing.T) {
	_, srv := newFakeUpstream()
	defer srv.Close()
	web := newWebServer(t, srv.URL)

	// primeira visita monta o view model e ganha o cookie de sessão
	resp := doWithCookie(t, http.MethodGet, web.URL+"/api/cart", "")
	cookie := strings.SplitN(resp.Header.Get("Set-Cookie"), ";", 2)[0]
	require.NotEmpty(t, cookie)

	wsURL := "ws" + strings.TrimPrefix(web.URL, "http") + "/api/cart/ws"
	header := http.Header{"Cookie": []string{cookie}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "connected", frame.Type)
	assert.Equal(t, "ready", frame.State.Phase)
	assert.Equal(t, "R$ 100,00", frame.State.FormattedTotal)

	// um reload na mesma sessão aparece no socket, transição por transição
	doWithCookie(t, http.MethodGet, web.URL+"/api/cart", cookie)

	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "state", frame.Type)
	assert.Equal(t, "loading", frame.State.Phase)

	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "state", frame.Type)
	assert.Equal(t, "ready", frame.State.Phase)
	require.Len(t, frame.State.Items, 1)
	assert.Equal(t, "R$ 100,00", frame.State.Items[0].FormattedLineTotal)
}

func TestCartWebSocket_SessionDetachClosesSocket(t *testing.T) {
	_, srv := newFakeUpstream()
	defer srv.Close()
	web := newWebServer(t, srv.URL)

	resp := doWithCookie(t, http.MethodGet, web.URL+"/api/cart", "")
	cookie := strings.SplitN(resp.Header.Get("Set-Cookie"), ";", 2)[0]

	wsURL := "ws" + strings.TrimPrefix(web.URL, "http") + "/api/cart/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Cookie": []string{cookie}})
	require.NoError(t, err)
	defer conn.Close()

	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "connected", frame.Type)

	// sessão desmontada fecha o view model e o socket junto
	doWithCookie(t, http.MethodDelete, web.URL+"/api/cart/session", cookie)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var readErr error
	for readErr == nil {
		readErr = conn.ReadJSON(&frame)
	}
	assert.Error(t, readErr)
}
