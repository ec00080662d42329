package money

import (
	"fmt"
	"math"
	"strconv"

	"mercado_gateway/internal/models"
)

// FormatBRL formata um valor em reais no padrão brasileiro: "R$ 1.234,56".
// Arredonda para o centavo mais próximo antes de formatar.
func FormatBRL(v float64) string {
	cents := int64(math.Round(v * 100))
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	reais := strconv.FormatInt(cents/100, 10)

	// separador de milhar com pontos, da direita para a esquerda
	var grouped []byte
	for i, d := range []byte(reais) {
		if i > 0 && (len(reais)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, d)
	}

	return fmt.Sprintf("R$ %s%s,%02d", sign, grouped, cents%100)
}

// LineTotal é o subtotal de uma linha do carrinho.
func LineTotal(it models.CartItem) float64 {
	return it.Price * float64(it.Quantity)
}
