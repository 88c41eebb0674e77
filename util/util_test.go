package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharClasses(t *testing.T) {
	testData := []struct {
		B          byte
		Number     bool
		Hex        bool
		Letter     bool
		Identifier bool
		Space      bool
	}{
		{B: '0', Number: true, Hex: true, Identifier: true},
		{B: '9', Number: true, Hex: true, Identifier: true},
		{B: 'a', Hex: true, Letter: true, Identifier: true},
		{B: 'F', Hex: true, Letter: true, Identifier: true},
		{B: 'g', Letter: true, Identifier: true},
		{B: '_', Identifier: true},
		{B: ' ', Space: true},
		{B: '\n', Space: true},
		{B: '+'},
	}

	for _, data := range testData {
		assert.Equal(t, data.Number, IsNumber(data.B), string(data.B))
		assert.Equal(t, data.Hex, IsHexNumber(data.B), string(data.B))
		assert.Equal(t, data.Letter, IsLetter(data.B), string(data.B))
		assert.Equal(t, data.Identifier, IsLetterOrUnderscoreOrNumber(data.B), string(data.B))
		assert.Equal(t, data.Space, IsSpace(data.B), string(data.B))
	}
}
