package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mercado_gateway/internal/models"
)

const defaultTimeout = 10 * time.Second

// Client é a única fronteira entre o gateway e o recurso /cart da API do
// marketplace. A URL base é lida uma vez na subida e injetada aqui; ninguém
// consulta o ambiente na hora da chamada.
//
// Nenhuma operação tenta de novo sozinha; retry, se fizer sentido, é decisão
// de quem chama.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient cria o cliente. httpClient nil usa um cliente com timeout padrão.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// FetchCart busca o carrinho atual do usuário.
func (c *Client) FetchCart(ctx context.Context, token string) (*models.Cart, error) {
	return c.do(ctx, http.MethodGet, "/cart", token, nil, "Erro ao buscar carrinho")
}

// AddItem adiciona quantity unidades de um produto ao carrinho. Quantidade
// não positiva é rejeitada aqui mesmo, sem ir à rede.
func (c *Client) AddItem(ctx context.Context, token, productID string, quantity int) (*models.Cart, error) {
	if productID == "" {
		return nil, &ValidationError{Field: "productId", Message: "Produto inválido"}
	}
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "Quantidade inválida"}
	}
	payload := map[string]any{"productId": productID, "quantity": quantity}
	return c.do(ctx, http.MethodPost, "/cart", token, payload, "Erro ao adicionar ao carrinho")
}

// RemoveItem remove um item do carrinho e devolve o carrinho atualizado.
func (c *Client) RemoveItem(ctx context.Context, token, itemID string) (*models.Cart, error) {
	if itemID == "" {
		return nil, &ValidationError{Field: "itemId", Message: "Item inválido"}
	}
	return c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(itemID), token, nil, "Erro ao remover do carrinho")
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any, failMsg string) (*models.Cart, error) {
	op := method + " " + path

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, &DecodeError{Op: op, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &RequestError{Status: resp.StatusCode, Message: failMsg}
	}

	var cart models.Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, &DecodeError{Op: op, Err: err}
	}
	return &cart, nil
}
