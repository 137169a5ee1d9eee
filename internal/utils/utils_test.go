package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	ast := assert.New(t)

	id := GenerateID()
	ast.Equal(32, len(id))
	ast.NotContains(id, "-")
	ast.NotEqual(id, GenerateID())
}
