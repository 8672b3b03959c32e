package narrative

import (
	"strings"
	"testing"

	"github.com/prevenia/vigia/internal/analysis/extract"
	"github.com/prevenia/vigia/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConclusions_EnumeratesCausesWithActions(t *testing.T) {
	gen := NewGenerator()
	causas := []extract.ExtractedCause{
		{CausaRaiz: "Falta de mantenimiento preventivo", AccionPlan: "Implementar plan mensual de mantencion"},
		{CausaRaiz: "Supervision insuficiente en terreno"},
	}
	avance := 60

	text := gen.Conclusions(causas, ConclusionsContext{
		TipoIncidente:      "caida de altura",
		PlanAccionProgreso: &avance,
		EquiposDanados:     2,
	})

	assert.Contains(t, text, "2 causas raiz")
	assert.Contains(t, text, "(1) Falta de mantenimiento preventivo")
	assert.Contains(t, text, "Implementar plan mensual de mantencion")
	assert.Contains(t, text, "(2) Supervision insuficiente en terreno")
	assert.Contains(t, text, "60% de avance")
	assert.Contains(t, text, "2 equipos danados")
}

func TestConclusions_FallbackWithoutCauses(t *testing.T) {
	gen := NewGenerator()

	text := gen.Conclusions(nil, ConclusionsContext{
		TipoIncidente: "amago de incendio",
		Severidad:     "alta",
	})

	assert.Contains(t, text, "amago de incendio")
	assert.Contains(t, text, "severidad alta")
	assert.Contains(t, text, "aun no se han determinado causas raiz")
}

func TestConclusions_Deterministic(t *testing.T) {
	gen := NewGenerator()
	causas := []extract.ExtractedCause{{CausaRaiz: "Procedimiento no difundido"}}
	ctx := ConclusionsContext{TipoIncidente: "atrapamiento"}

	assert.Equal(t, gen.Conclusions(causas, ctx), gen.Conclusions(causas, ctx))
}

func TestLessonsLearned_OnePerDistinctCause(t *testing.T) {
	gen := NewGenerator()
	causas := []extract.ExtractedCause{
		{CausaRaiz: "Falta de capacitacion"},
		{CausaRaiz: "falta de capacitacion"}, // duplicate after normalization
		{CausaRaiz: "Iluminacion deficiente"},
	}

	lessons := gen.LessonsLearned(causas, "golpe por objeto", nil)
	require.Len(t, lessons, 2)
	assert.Contains(t, lessons[0], "Falta de capacitacion")
	assert.Contains(t, lessons[0], "golpe por objeto")
	assert.Contains(t, lessons[1], "Iluminacion deficiente")
}

func TestLessonsLearned_IncludesCorrectiveActions(t *testing.T) {
	gen := NewGenerator()
	causas := []extract.ExtractedCause{{CausaRaiz: "Guarda removida"}}

	lessons := gen.LessonsLearned(causas, "", []string{"Bloqueo fisico de guardas", ""})
	require.Len(t, lessons, 2)
	assert.Contains(t, lessons[1], "Bloqueo fisico de guardas")
}

func TestLessonsLearned_EmptyCauses(t *testing.T) {
	gen := NewGenerator()
	assert.Empty(t, gen.LessonsLearned(nil, "caida", []string{"accion"}))
}

func TestActionsResume_Defaults(t *testing.T) {
	gen := NewGenerator()

	resume := gen.ActionsResume(ActionsResumeInput{})
	assert.Equal(t, "No se registraron acciones inmediatas.", resume.AccionesInmediatasResumen)
	assert.Equal(t, "No existe un plan de accion asociado al incidente.", resume.PlanAccionResumen)
}

func TestActionsResume_PlanSummary(t *testing.T) {
	gen := NewGenerator()
	items := []models.ActionPlanItem{
		{Tarea: "t1", Estado: "completed"},
		{Tarea: "t2", Estado: "pending"},
		{Tarea: "t3", Estado: "in_progress"},
		{Tarea: "t4", Estado: "completed"},
	}

	resume := gen.ActionsResume(ActionsResumeInput{
		AccionesInmediatas: "Se aislo el area y se detuvo la faena.",
		ActionPlanItems:    items,
	})

	assert.Equal(t, "Se aislo el area y se detuvo la faena.", resume.AccionesInmediatasResumen)
	assert.Contains(t, resume.PlanAccionResumen, "4 accion(es)")
	assert.Contains(t, resume.PlanAccionResumen, "2 completada(s)")
	// Without an explicit percentage the completion ratio is derived
	assert.Contains(t, resume.PlanAccionResumen, "50%")
}

func TestActionsResume_ExplicitPercentageWins(t *testing.T) {
	gen := NewGenerator()
	avance := 75
	items := []models.ActionPlanItem{{Tarea: "t1", Estado: "pending"}}

	resume := gen.ActionsResume(ActionsResumeInput{
		ActionPlanItems:  items,
		PorcentajeAvance: &avance,
	})

	assert.True(t, strings.Contains(resume.PlanAccionResumen, "75%"))
}
