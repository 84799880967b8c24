package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveCategory(t *testing.T) {
	tests := map[string]string{
		"saude":       "Saúde",
		"SAÚDE":       "Saúde",
		" educacao ":  "Educação",
		"Alimentacao": "Alimentação",
		"vestuario":   "Vestuário",
		"Transporte":  "Transporte",
		"viagem":      "viagem",
	}
	for in, want := range tests {
		require.Equal(t, want, resolveCategory(in), in)
	}
}
