package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "valorliquido", CanonicalKey("Valor Líquido"))
	assert.Equal(t, "valorliquido", CanonicalKey("valor_liquido"))
	assert.Equal(t, "vlliquido", CanonicalKey("vlLiquido"))
	assert.Equal(t, "comissao", CanonicalKey("Comissão"))
	assert.Equal(t, "", CanonicalKey("___"))
}

func TestResolveAccentAndCaseInsensitive(t *testing.T) {
	accented := map[string]any{"Valor Líquido": "1.234,56"}
	underscored := map[string]any{"valor_liquido": "1.234,56"}

	assert.Equal(t, "1.234,56", Resolve(accented, DefaultAliases.NetVolume))
	assert.Equal(t, Resolve(accented, DefaultAliases.NetVolume), Resolve(underscored, DefaultAliases.NetVolume))
}

func TestResolveSkipsEmptyValues(t *testing.T) {
	row := map[string]any{
		"valor_liquido": "",
		"valorLiquido":  nil,
		"volume":        "500,00",
	}
	assert.Equal(t, "500,00", Resolve(row, DefaultAliases.NetVolume))
}

func TestResolveNoMatch(t *testing.T) {
	row := map[string]any{"coluna_estranha": 10}
	assert.Nil(t, Resolve(row, DefaultAliases.NetVolume))
	assert.Equal(t, "", ResolveString(row, DefaultAliases.Product))
	assert.Zero(t, ResolveNumber(row, DefaultAliases.Commission))
}

func TestResolveNumberCoercion(t *testing.T) {
	row := map[string]any{"Comissão Total": "R$ 89,90"}
	assert.InDelta(t, 89.90, ResolveNumber(row, DefaultAliases.Commission), 1e-9)
}

func TestResolveDate(t *testing.T) {
	row := map[string]any{"Data Pagamento": "05/03/2025"}
	got, ok := ResolveDate(row, DefaultAliases.ReferenceDate)
	assert.True(t, ok)
	assert.Equal(t, "2025-03-05", got)
}
