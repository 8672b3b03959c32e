package expressmode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prevenia/vigia/internal/analysis/consolidate"
	"github.com/prevenia/vigia/internal/analysis/costs"
	"github.com/prevenia/vigia/internal/analysis/extract"
	"github.com/prevenia/vigia/internal/models"
	"github.com/prevenia/vigia/internal/reportapi"
)

// newRichFake seeds a backend with every source report type linked to
// incident inc-1.
func newRichFake() *reportapi.FakeClient {
	fake := reportapi.NewFakeClient()
	fake.Prefill["inc-1"] = &models.PrefillData{
		IncidentID:         "inc-1",
		TipoIncidente:      "accidente",
		Severidad:          "grave",
		Empresa:            "Constructora Andina",
		Descripcion:        "Caida de altura durante montaje de andamio",
		Supervisor:         "Maria Soto",
		AccionesInmediatas: "Se detuvo la faena y se acordono el area",
		AccionesTomadas:    "Se reviso el procedimiento de montaje",
		Personas: []models.Persona{
			{Nombre: "Juan Perez", Cargo: "Maestro", TipoLesion: "fractura"},
		},
		Fotos: []models.Foto{
			{URL: "https://cdn/inc-1/flash-1.jpg", Descripcion: "Andamio"},
		},
		EquiposDanados: []models.EquipoDanado{
			{Nombre: "Andamio modular", CostoEstimado: 200000, Moneda: "CLP"},
		},
		Responsables: []string{"Pedro Rojas"},
		SourceReports: models.SourceReports{
			FlashReportID:   "flash-1",
			ZeroToleranceID: "zt-1",
			ActionPlanID:    "plan-1",
			FiveWhysIDs:     []string{"fw-1"},
		},
	}
	fake.FiveWhys["fw-1"] = &models.FiveWhysAnalysis{
		ID:               "fw-1",
		Problema:         "Caida de altura",
		Porques:          []string{"plataforma sin baranda", "montaje incompleto", "falta de supervision del montaje"},
		AccionCorrectiva: "Implementar checklist de montaje",
	}
	fake.ZeroTolerance["zt-1"] = &models.ZeroToleranceReport{
		ID: "zt-1",
		Personas: []models.Persona{
			{Nombre: "juan perez", Empresa: "Constructora Andina"},
		},
		Fotos: []models.Foto{
			{URL: "https://cdn/inc-1/zt-1.jpg"},
		},
	}
	fake.ActionPlans["inc-1"] = &models.ActionPlanReport{
		ID: "plan-1",
		Items: []models.ActionPlanItem{
			{Tarea: "Capacitar cuadrilla de montaje", Estado: "pending"},
		},
		PorcentajeAvance: 0,
	}
	return fake
}

func TestBuild_FullDraft(t *testing.T) {
	fake := newRichFake()
	o := NewOrchestrator(fake, 0, 0)

	data, err := o.Build(context.Background(), "inc-1")
	require.NoError(t, err)

	assert.Equal(t, "Constructora Andina", data.Empresa)
	require.Len(t, data.CausasRaiz, 1)
	assert.Equal(t, "falta de supervision del montaje", data.CausasRaiz[0].CausaRaiz)

	// zt persona merged into the flash persona by normalized name
	require.Len(t, data.Personas, 2) // Juan Perez + responsable Pedro Rojas
	assert.Equal(t, "Juan Perez", data.Personas[0].Nombre)
	assert.Equal(t, "Constructora Andina", data.Personas[0].Empresa)

	assert.Len(t, data.Evidencias, 2)
	assert.NotEmpty(t, data.Conclusiones)
	assert.NotEmpty(t, data.LeccionesAprendidas)

	// equipment 200000 + fractura 30d * 50000 + 1 pending action 100000
	assert.Equal(t, float64(1800000), data.TotalEstimado)

	// flash + zt + plan + fw-1
	assert.Equal(t, 4, data.SourceReportsCount)
	assert.True(t, data.HasEnoughData)
	assert.Empty(t, data.FailedAnalysisIDs)
}

func TestBuild_ExpressGateClosed(t *testing.T) {
	// One source report, no analyses, no people: not enough data.
	fake := reportapi.NewFakeClient()
	fake.Prefill["inc-2"] = &models.PrefillData{
		IncidentID:  "inc-2",
		Empresa:     "Constructora Andina",
		Descripcion: "Incidente menor",
		SourceReports: models.SourceReports{
			FlashReportID: "flash-9",
		},
	}
	o := NewOrchestrator(fake, 0, 0)

	data, err := o.Build(context.Background(), "inc-2")
	require.NoError(t, err)
	assert.Equal(t, 1, data.SourceReportsCount)
	assert.False(t, data.HasEnoughData)

	session := NewSession(data)
	assert.False(t, session.CanUseExpressMode())
}

func TestBuild_MissingPrefillFails(t *testing.T) {
	o := NewOrchestrator(reportapi.NewFakeClient(), 0, 0)

	_, err := o.Build(context.Background(), "no-such")
	require.Error(t, err)
	assert.True(t, reportapi.IsNotFound(err))
}

func TestBuild_BrokenOptionalSourcesDegrade(t *testing.T) {
	fake := newRichFake()
	fake.Fail["zt-1"] = errors.New("backend unavailable")
	o := NewOrchestrator(fake, 0, 0)

	data, err := o.Build(context.Background(), "inc-1")
	require.NoError(t, err)
	// zt persona and photo absent, draft still built
	require.Len(t, data.Personas, 2)
	assert.Empty(t, data.Personas[0].Empresa)
	assert.Len(t, data.Evidencias, 1)
	assert.True(t, data.HasEnoughData)
}

func TestBuild_FailedAnalysisSurfaced(t *testing.T) {
	fake := newRichFake()
	fake.Prefill["inc-1"].SourceReports.FiveWhysIDs = []string{"fw-1", "fw-gone"}
	o := NewOrchestrator(fake, 0, 0)

	data, err := o.Build(context.Background(), "inc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fw-gone"}, data.FailedAnalysisIDs)
	assert.Len(t, data.CausasRaiz, 1)
}

func TestCosts(t *testing.T) {
	fake := newRichFake()
	o := NewOrchestrator(fake, 0, 0)

	lines, total, err := o.Costs(context.Background(), "inc-1")
	require.NoError(t, err)
	assert.Len(t, lines, 3)
	assert.Equal(t, float64(1800000), total)
}

func TestCompleteness(t *testing.T) {
	tests := []struct {
		name string
		data *ExpressModeData
		want int
	}{
		{
			name: "nil draft",
			data: nil,
			want: 0,
		},
		{
			name: "empty draft",
			data: &ExpressModeData{},
			want: 0,
		},
		{
			name: "root causes weigh double",
			data: &ExpressModeData{
				CausasRaiz: []extract.ExtractedCause{
					{CausaRaiz: "falta de mantenimiento", Metodologia: extract.MethodologyFiveWhys},
				},
			},
			want: 13, // 2/15 rounded
		},
		{
			name: "all checks met",
			data: &ExpressModeData{
				Empresa:     "Constructora Andina",
				Descripcion: "Caida de altura",
				Supervisor:  "Maria Soto",
				CausasRaiz: []extract.ExtractedCause{
					{CausaRaiz: "falta de supervision", Metodologia: extract.MethodologyFiveWhys},
				},
				Conclusiones:        "Se determino una causa raiz.",
				LeccionesAprendidas: []string{"Todo incidente de este tipo es prevenible."},
				Personas:            []consolidate.PersonaConsolidada{{Nombre: "Juan Perez"}},
				Evidencias:          []consolidate.EvidenciaConsolidada{{URL: "https://cdn/e.jpg"}},
				Responsables:        []string{"Pedro Rojas"},
				AccionesTomadas:     "Se reviso el procedimiento.",
				ActionPlanItems:     []models.ActionPlanItem{{Tarea: "Capacitar", Estado: "pending"}},
				Costos:              []costs.CalculatedCost{{Monto: 100000, Origen: costs.OrigenPlanAccion}},
				SourceReportsCount:  4,
			},
			want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Completeness(tt.data))
		})
	}
}

func TestSession_ToggleKeepsData(t *testing.T) {
	fake := newRichFake()
	o := NewOrchestrator(fake, 0, 0)
	data, err := o.Build(context.Background(), "inc-1")
	require.NoError(t, err)

	session := NewSession(data)
	assert.Equal(t, ModeComplete, session.Mode())
	assert.True(t, session.CanUseExpressMode())

	assert.Equal(t, ModeExpress, session.ToggleMode())
	assert.Same(t, data, session.Data())
	assert.Equal(t, ModeComplete, session.ToggleMode())
	assert.Same(t, data, session.Data())

	assert.Greater(t, session.DataCompleteness(), 50)
}
