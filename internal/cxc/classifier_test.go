package cxc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func classifierConfig() Config {
	return Config{
		InterestAccountIDs: map[int64]struct{}{4101: {}},
		FineAccountIDs:     map[int64]struct{}{4102: {}},
	}
}

func TestClassifyStructuredLookupWinsOverKeywords(t *testing.T) {
	cfg := classifierConfig()

	category, matched := Classify(DocumentLine{AccountID: 4101, Description: "Multa por ruido"}, cfg)
	require.True(t, matched)
	require.Equal(t, CategoryInterest, category)

	category, matched = Classify(DocumentLine{AccountID: 4102, Description: "Interes de mora"}, cfg)
	require.True(t, matched)
	require.Equal(t, CategoryFine, category)
}

func TestClassifyKeywords(t *testing.T) {
	cfg := classifierConfig()

	cases := []struct {
		description string
		want        Category
	}{
		{"Interés de Mora", CategoryInterest},
		{"Interes Mora", CategoryInterest},
		{"MORA enero", CategoryInterest},
		{"Multa asamblea", CategoryFine},
		{"Sanción por inasistencia", CategoryFine},
		{"SANCION reglamento", CategoryFine},
	}
	for _, tc := range cases {
		category, matched := Classify(DocumentLine{AccountID: 9999, Description: tc.description}, cfg)
		require.True(t, matched, tc.description)
		require.Equal(t, tc.want, category, tc.description)
	}
}

func TestClassifyAccentInsensitive(t *testing.T) {
	cfg := classifierConfig()

	accented, _ := Classify(DocumentLine{AccountID: 1, Description: "Interés de Mora"}, cfg)
	plain, _ := Classify(DocumentLine{AccountID: 1, Description: "Interes Mora"}, cfg)
	require.Equal(t, accented, plain)
	require.Equal(t, CategoryInterest, accented)
}

func TestClassifyFallbackToCapital(t *testing.T) {
	cfg := classifierConfig()

	category, matched := Classify(DocumentLine{AccountID: 9999, Description: "Cuota de administración"}, cfg)
	require.False(t, matched)
	require.Equal(t, CategoryCapital, category)
}

func TestClassifyIsDeterministic(t *testing.T) {
	cfg := classifierConfig()
	line := DocumentLine{AccountID: 7, Description: "Intereses", Amount: decimal.NewFromInt(100)}

	first, firstMatched := Classify(line, cfg)
	second, secondMatched := Classify(line, cfg)
	require.Equal(t, first, second)
	require.Equal(t, firstMatched, secondMatched)
}
