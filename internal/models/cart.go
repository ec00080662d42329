package models

import "math"

// CartItem é um item do carrinho exatamente como a API do marketplace devolve.
// ImageURL pode estar vazia ou quebrada; a página tolera falha de carregamento.
type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl"`
}

// Cart é o retrato do carrinho: itens na ordem em que o servidor mandou e o
// total calculado por ele. O total é do servidor; a soma local serve só de
// verificação.
type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
}

// SumItems soma preço × quantidade de todos os itens.
func (c *Cart) SumItems() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// TotalMatches compara o total do servidor com a soma dos itens, com
// tolerância de meio centavo para diferenças de arredondamento.
func (c *Cart) TotalMatches() bool {
	return math.Abs(c.Total-c.SumItems()) <= 0.005
}
