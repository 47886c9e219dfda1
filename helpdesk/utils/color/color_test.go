package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainOutputWhenDisabled(t *testing.T) {
	SetEnabled(false)
	t.Cleanup(func() { SetEnabled(true) })

	assert.Equal(t, "agent> 📦 Shipped.", Agent("📦 Shipped."))
	assert.Equal(t, "session abc", Session("abc"))
	assert.Equal(t, "you> ", Prompt("you> "))
}
