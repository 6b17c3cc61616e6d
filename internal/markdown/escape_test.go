package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\_b\*c\`+"`"+`d\[e]`, Escape("a_b*c`d[e]"))
	assert.Equal(t, `prod\_eu`, Escape("prod_eu"))
	assert.Equal(t, "plain", Escape("plain"))
}
