// Package narrative synthesizes the prose sections of an express Final
// Report draft: conclusions, lessons learned and action summaries. All
// output is deterministic template text derived from the extracted causes
// and incident metadata; there is no randomness and no external call.
package narrative

import (
	"fmt"
	"strings"

	"github.com/prevenia/vigia/internal/analysis/extract"
	"github.com/prevenia/vigia/internal/models"
)

// Generator builds the narrative sections of an express draft.
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// ConclusionsContext carries the incident metadata referenced by the
// conclusions text.
type ConclusionsContext struct {
	TipoIncidente      string
	Severidad          string
	PlanAccionProgreso *int // percentage 0-100, nil when no plan is linked
	EquiposDanados     int
}

// Conclusions enumerates each root cause with its associated action. With no
// causes it falls back to a generic sentence derived from the incident type
// and severity.
func (g *Generator) Conclusions(causasRaiz []extract.ExtractedCause, ctx ConclusionsContext) string {
	var sb strings.Builder

	if len(causasRaiz) == 0 {
		tipo := ctx.TipoIncidente
		if tipo == "" {
			tipo = "incidente"
		}
		sb.WriteString(fmt.Sprintf(
			"La investigacion del %s se encuentra en desarrollo y aun no se han determinado causas raiz.", tipo))
		if ctx.Severidad != "" {
			sb.WriteString(fmt.Sprintf(" El evento fue clasificado con severidad %s.", ctx.Severidad))
		}
		return sb.String()
	}

	// 1. Cause enumeration
	if len(causasRaiz) == 1 {
		sb.WriteString("La investigacion determino la siguiente causa raiz: ")
	} else {
		sb.WriteString(fmt.Sprintf("La investigacion determino %d causas raiz: ", len(causasRaiz)))
	}

	for i, causa := range causasRaiz {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("(%d) %s", i+1, causa.CausaRaiz))
		if causa.AccionPlan != "" {
			sb.WriteString(fmt.Sprintf(", abordada mediante: %s", causa.AccionPlan))
		}
		sb.WriteString(".")
	}

	// 2. Optional progress clause
	if ctx.PlanAccionProgreso != nil {
		sb.WriteString(fmt.Sprintf(
			" El plan de accion asociado registra un %d%% de avance.", *ctx.PlanAccionProgreso))
	}

	// 3. Optional equipment clause
	if ctx.EquiposDanados > 0 {
		if ctx.EquiposDanados == 1 {
			sb.WriteString(" Se registro 1 equipo danado producto del evento.")
		} else {
			sb.WriteString(fmt.Sprintf(
				" Se registraron %d equipos danados producto del evento.", ctx.EquiposDanados))
		}
	}

	return sb.String()
}

// LessonsLearned produces one preventable-recurrence lesson per distinct
// root cause. Returns an empty list when there are no causes.
func (g *Generator) LessonsLearned(causasRaiz []extract.ExtractedCause, tipoIncidente string, accionesCorrectivas []string) []string {
	if len(causasRaiz) == 0 {
		return nil
	}

	tipo := tipoIncidente
	if tipo == "" {
		tipo = "este tipo de evento"
	}

	var lessons []string
	seen := make(map[string]bool, len(causasRaiz))
	for _, causa := range causasRaiz {
		key := strings.ToLower(strings.TrimSpace(causa.CausaRaiz))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		lesson := fmt.Sprintf(
			"La condicion %q es prevenible: su control oportuno evita la recurrencia de %s.",
			causa.CausaRaiz, tipo)
		lessons = append(lessons, lesson)
	}

	for _, accion := range accionesCorrectivas {
		accion = strings.TrimSpace(accion)
		if accion == "" {
			continue
		}
		lessons = append(lessons, fmt.Sprintf(
			"La medida %q debe incorporarse a los estandares de trabajo para sostener su efecto.", accion))
	}

	return lessons
}

// ActionsResumeInput carries the sources of the actions summary.
type ActionsResumeInput struct {
	AccionesInmediatas string
	ActionPlanItems    []models.ActionPlanItem
	PorcentajeAvance   *int
}

// ActionsResume is the generated summary of immediate actions and the
// action plan.
type ActionsResume struct {
	AccionesInmediatasResumen string `json:"acciones_inmediatas_resumen"`
	PlanAccionResumen         string `json:"plan_accion_resumen"`
}

// ActionsResume summarizes immediate actions as a passthrough and the action
// plan as a count/progress sentence.
func (g *Generator) ActionsResume(input ActionsResumeInput) ActionsResume {
	resume := ActionsResume{
		AccionesInmediatasResumen: strings.TrimSpace(input.AccionesInmediatas),
	}
	if resume.AccionesInmediatasResumen == "" {
		resume.AccionesInmediatasResumen = "No se registraron acciones inmediatas."
	}

	if len(input.ActionPlanItems) == 0 {
		resume.PlanAccionResumen = "No existe un plan de accion asociado al incidente."
		return resume
	}

	completadas := 0
	for _, item := range input.ActionPlanItems {
		if strings.EqualFold(strings.TrimSpace(item.Estado), "completed") {
			completadas++
		}
	}

	avance := 0
	if input.PorcentajeAvance != nil {
		avance = *input.PorcentajeAvance
	} else if len(input.ActionPlanItems) > 0 {
		avance = completadas * 100 / len(input.ActionPlanItems)
	}

	resume.PlanAccionResumen = fmt.Sprintf(
		"Plan de accion con %d accion(es), %d completada(s), avance del %d%%.",
		len(input.ActionPlanItems), completadas, avance)

	return resume
}
