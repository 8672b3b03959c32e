package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefillDataValidate(t *testing.T) {
	valid := &PrefillData{IncidentID: "inc-1"}
	assert.NoError(t, valid.Validate())

	missing := &PrefillData{Empresa: "Constructora Andina"}
	err := missing.Validate()
	assert.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestFiveWhysAnalysisValidate(t *testing.T) {
	tests := []struct {
		name     string
		analysis FiveWhysAnalysis
		wantErr  bool
	}{
		{
			name:     "valid",
			analysis: FiveWhysAnalysis{ID: "fw-1", Porques: []string{"a", "b"}},
			wantErr:  false,
		},
		{
			name:     "missing id",
			analysis: FiveWhysAnalysis{Porques: []string{"a"}},
			wantErr:  true,
		},
		{
			name:     "too many porques",
			analysis: FiveWhysAnalysis{ID: "fw-1", Porques: []string{"a", "b", "c", "d", "e", "f"}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.analysis.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFishboneAnalysisValidate(t *testing.T) {
	tests := []struct {
		name     string
		analysis FishboneAnalysis
		wantErr  bool
	}{
		{
			name: "valid categories",
			analysis: FishboneAnalysis{ID: "fb-1", Categorias: []FishboneCategoria{
				{Categoria: FishboneCategoriaMetodo},
				{Categoria: FishboneCategoriaEntorno},
			}},
			wantErr: false,
		},
		{
			name:     "missing id",
			analysis: FishboneAnalysis{},
			wantErr:  true,
		},
		{
			name: "unknown category",
			analysis: FishboneAnalysis{ID: "fb-1", Categorias: []FishboneCategoria{
				{Categoria: "clima"},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.analysis.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidFishboneCategoria(t *testing.T) {
	for _, categoria := range []string{
		FishboneCategoriaPersonas,
		FishboneCategoriaMetodo,
		FishboneCategoriaMaquina,
		FishboneCategoriaMaterial,
		FishboneCategoriaMedicion,
		FishboneCategoriaEntorno,
	} {
		assert.True(t, ValidFishboneCategoria(categoria), categoria)
	}
	assert.False(t, ValidFishboneCategoria(""))
	assert.False(t, ValidFishboneCategoria("Metodo"))
}
