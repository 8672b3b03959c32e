// Package expressmode assembles the consolidated "express" draft of a
// Final Report: every analysis and source report linked to an incident is
// fetched, the root causes extracted and deduplicated, people and evidence
// reconciled across sources, narratives generated and costs estimated, all
// into one reviewable aggregate with a completeness score.
package expressmode

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/prevenia/vigia/internal/analysis/consolidate"
	"github.com/prevenia/vigia/internal/analysis/costs"
	"github.com/prevenia/vigia/internal/analysis/extract"
	"github.com/prevenia/vigia/internal/analysis/narrative"
	"github.com/prevenia/vigia/internal/loader"
	"github.com/prevenia/vigia/internal/logging"
	"github.com/prevenia/vigia/internal/models"
	"github.com/prevenia/vigia/internal/reportapi"
)

// Mode selects how the Final-Report form is filled.
type Mode string

const (
	// ModeComplete is the manual form, the default.
	ModeComplete Mode = "complete"
	// ModeExpress prefills the form from the express draft for
	// review-and-confirm.
	ModeExpress Mode = "express"
)

// ExpressModeData is the consolidated draft derived from every report and
// analysis linked to one incident. It is a read-only snapshot; the form
// layer copies values out for user review and edit.
type ExpressModeData struct {
	IncidentID    string `json:"incident_id"`
	TipoIncidente string `json:"tipo_incidente,omitempty"`
	Severidad     string `json:"severidad,omitempty"`
	Empresa       string `json:"empresa,omitempty"`
	Descripcion   string `json:"descripcion,omitempty"`
	Supervisor    string `json:"supervisor,omitempty"`

	CausasRaiz          []extract.ExtractedCause `json:"causas_raiz"`
	Conclusiones        string                   `json:"conclusiones"`
	LeccionesAprendidas []string                 `json:"lecciones_aprendidas"`

	Personas      []consolidate.PersonaConsolidada  `json:"personas"`
	Evidencias    []consolidate.EvidenciaConsolidada `json:"evidencias"`
	Responsables  []string                          `json:"responsables,omitempty"`
	DiagramImages []models.Attachment               `json:"diagram_images,omitempty"`

	AccionesTomadas           string                  `json:"acciones_tomadas,omitempty"`
	AccionesInmediatasResumen string                  `json:"acciones_inmediatas_resumen"`
	PlanAccionResumen         string                  `json:"plan_accion_resumen"`
	ActionPlanItems           []models.ActionPlanItem `json:"action_plan_items,omitempty"`

	Costos        []costs.CalculatedCost `json:"costos"`
	TotalEstimado float64                `json:"total_estimado"`

	SourceReports      models.SourceReports `json:"source_reports"`
	SourceReportsCount int                  `json:"source_reports_count"`
	HasEnoughData      bool                 `json:"has_enough_data"`

	// FailedAnalysisIDs lists analyses that could not be loaded and were
	// excluded from the draft.
	FailedAnalysisIDs []string `json:"failed_analysis_ids,omitempty"`
}

// Orchestrator derives ExpressModeData from the incident backend.
type Orchestrator struct {
	client      reportapi.Client
	loader      *loader.MultiAnalysisLoader
	narrative   *narrative.Generator
	costoDiario float64
	logger      *logging.Logger
}

// NewOrchestrator creates an orchestrator. A costoDiario of 0 or less falls
// back to the default daily cost, and a loaderConcurrency of 0 or less falls
// back to the loader default.
func NewOrchestrator(client reportapi.Client, costoDiario float64, loaderConcurrency int) *Orchestrator {
	if costoDiario <= 0 {
		costoDiario = costs.DefaultCostoDiario
	}
	if loaderConcurrency <= 0 {
		loaderConcurrency = loader.DefaultConcurrency
	}
	return &Orchestrator{
		client:      client,
		loader:      loader.NewMultiAnalysisLoader(client, loaderConcurrency),
		narrative:   narrative.NewGenerator(),
		costoDiario: costoDiario,
		logger:      logging.GetLogger("expressmode"),
	}
}

// Build derives the express draft for one incident. The prefill bundle is
// required; every other source degrades to absent on fetch failure so a
// single broken report never blocks the draft.
func (o *Orchestrator) Build(ctx context.Context, incidentID string) (*ExpressModeData, error) {
	// 1. Prefill bundle: carries the source-report pointers everything
	// else hangs off.
	prefill, err := o.client.GetIncidentPrefillData(ctx, incidentID, "final_report")
	if err != nil {
		return nil, fmt.Errorf("loading prefill data for incident %s: %w", incidentID, err)
	}

	// 2. Analysis batches, fanned out per methodology.
	analyses, err := o.loader.LoadAll(ctx, prefill.SourceReports)
	if err != nil {
		return nil, err
	}

	// 3. Optional single-record sources.
	var zt *models.ZeroToleranceReport
	if id := prefill.SourceReports.ZeroToleranceID; id != "" {
		zt, err = o.client.GetZeroToleranceReport(ctx, id)
		if err != nil {
			o.warnSkipped("zero_tolerance", id, err)
			zt = nil
		}
	}
	var plan *models.ActionPlanReport
	if prefill.SourceReports.ActionPlanID != "" {
		plan, err = o.client.GetActionPlanReportByIncident(ctx, incidentID)
		if err != nil {
			o.warnSkipped("action_plan", incidentID, err)
			plan = nil
		}
	}
	attachments, err := o.client.GetIncidentPhotos(ctx, incidentID)
	if err != nil {
		o.warnSkipped("photos", incidentID, err)
		attachments = nil
	}
	diagrams, err := o.client.GetCausalTreeImages(ctx, incidentID)
	if err != nil {
		o.warnSkipped("causal_tree_images", incidentID, err)
		diagrams = nil
	}

	// 4. Extract and deduplicate root causes, methodology order fixed.
	var causas []extract.ExtractedCause
	causas = append(causas, extract.FiveWhysCauses(derefAll(analyses.FiveWhys))...)
	causas = append(causas, extract.FishboneCauses(derefAll(analyses.Fishbone))...)
	causas = append(causas, extract.CausalTreeCauses(analyses.CausalTrees)...)
	causas = extract.DeduplicateCausas(causas)

	// 5. Cross-source consolidation of people and evidence.
	var ztPersonas []models.Persona
	var ztFotos []models.Foto
	if zt != nil {
		ztPersonas = zt.Personas
		ztFotos = zt.Fotos
	}
	personas := consolidate.Personas(prefill.Personas, ztPersonas, prefill.Responsables)
	evidencias := consolidate.Evidencias(prefill.Fotos, ztFotos, attachments)

	// 6. Narratives.
	var planItems []models.ActionPlanItem
	var avance *int
	if plan != nil {
		planItems = plan.Items
		avance = &plan.PorcentajeAvance
	}
	conclusiones := o.narrative.Conclusions(causas, narrative.ConclusionsContext{
		TipoIncidente:      prefill.TipoIncidente,
		Severidad:          prefill.Severidad,
		PlanAccionProgreso: avance,
		EquiposDanados:     len(prefill.EquiposDanados),
	})
	lecciones := o.narrative.LessonsLearned(causas, prefill.TipoIncidente, correctiveActions(causas))
	resume := o.narrative.ActionsResume(narrative.ActionsResumeInput{
		AccionesInmediatas: prefill.AccionesInmediatas,
		ActionPlanItems:    planItems,
		PorcentajeAvance:   avance,
	})

	// 7. Costs over the consolidated (deduplicated) person set.
	costLines := costs.EstimateCosts(prefill.EquiposDanados, asPersonas(personas), planItems, o.costoDiario)

	sourceCount := prefill.SourceReports.Count()
	data := &ExpressModeData{
		IncidentID:    incidentID,
		TipoIncidente: prefill.TipoIncidente,
		Severidad:     prefill.Severidad,
		Empresa:       prefill.Empresa,
		Descripcion:   prefill.Descripcion,
		Supervisor:    prefill.Supervisor,

		CausasRaiz:          causas,
		Conclusiones:        conclusiones,
		LeccionesAprendidas: lecciones,

		Personas:      personas,
		Evidencias:    evidencias,
		Responsables:  prefill.Responsables,
		DiagramImages: diagrams,

		AccionesTomadas:           prefill.AccionesTomadas,
		AccionesInmediatasResumen: resume.AccionesInmediatasResumen,
		PlanAccionResumen:         resume.PlanAccionResumen,
		ActionPlanItems:           planItems,

		Costos:        costLines,
		TotalEstimado: costs.TotalEstimado(costLines),

		SourceReports:      prefill.SourceReports,
		SourceReportsCount: sourceCount,
		FailedAnalysisIDs:  analyses.FailedIDs,
	}
	data.HasEnoughData = hasEnoughData(sourceCount, len(causas), len(personas))

	o.logger.InfoWithFields("express draft built",
		logging.LogField{Key: "incident_id", Value: incidentID},
		logging.LogField{Key: "causas_raiz", Value: len(causas)},
		logging.LogField{Key: "personas", Value: len(personas)},
		logging.LogField{Key: "source_reports", Value: sourceCount},
		logging.LogField{Key: "has_enough_data", Value: data.HasEnoughData},
	)
	return data, nil
}

// Costs derives only the cost lines for one incident, for display before
// the full express draft is requested.
func (o *Orchestrator) Costs(ctx context.Context, incidentID string) ([]costs.CalculatedCost, float64, error) {
	prefill, err := o.client.GetIncidentPrefillData(ctx, incidentID, "final_report")
	if err != nil {
		return nil, 0, fmt.Errorf("loading prefill data for incident %s: %w", incidentID, err)
	}
	var planItems []models.ActionPlanItem
	if prefill.SourceReports.ActionPlanID != "" {
		plan, err := o.client.GetActionPlanReportByIncident(ctx, incidentID)
		if err != nil {
			o.warnSkipped("action_plan", incidentID, err)
		} else {
			planItems = plan.Items
		}
	}
	lines := costs.EstimateCosts(prefill.EquiposDanados, prefill.Personas, planItems, o.costoDiario)
	return lines, costs.TotalEstimado(lines), nil
}

func (o *Orchestrator) warnSkipped(kind, id string, err error) {
	o.logger.WarnWithFields("skipping unavailable source",
		logging.LogField{Key: "kind", Value: kind},
		logging.LogField{Key: "id", Value: id},
		logging.LogField{Key: "error", Value: err.Error()},
	)
}

// hasEnoughData gates express mode: at least two linked source reports and
// at least one root cause or one consolidated person.
func hasEnoughData(sourceReports, causas, personas int) bool {
	return sourceReports >= 2 && (causas > 0 || personas > 0)
}

// completenessMaxWeight is the sum of all check weights below.
const completenessMaxWeight = 15

// Completeness scores an express draft 0-100 over weighted presence checks.
// Root causes and consolidated people weigh double.
func Completeness(data *ExpressModeData) int {
	if data == nil {
		return 0
	}
	checks := []struct {
		ok     bool
		weight int
	}{
		{data.Empresa != "", 1},
		{data.Descripcion != "", 1},
		{data.Supervisor != "", 1},
		{len(data.CausasRaiz) > 0, 2},
		{data.Conclusiones != "", 1},
		{len(data.LeccionesAprendidas) > 0, 1},
		{len(data.Personas) > 0, 2},
		{len(data.Evidencias) > 0, 1},
		{len(data.Responsables) > 0, 1},
		{data.AccionesTomadas != "", 1},
		{len(data.ActionPlanItems) > 0, 1},
		{len(data.Costos) > 0, 1},
		{data.SourceReportsCount >= 3, 1},
	}
	sum := 0
	for _, c := range checks {
		if c.ok {
			sum += c.weight
		}
	}
	return int(math.Round(float64(sum) / completenessMaxWeight * 100))
}

// Session tracks the form-fill mode for one incident's draft. Toggling the
// mode never discards the computed draft.
//
// Mode state is owned by whichever form layer embeds this package; the HTTP
// surface stays stateless and only reports the can_use_express_mode and
// data_completeness gates a session needs to offer the toggle.
type Session struct {
	mu   sync.Mutex
	mode Mode
	data *ExpressModeData
}

// NewSession starts in complete (manual) mode.
func NewSession(data *ExpressModeData) *Session {
	return &Session{mode: ModeComplete, data: data}
}

// Mode returns the current form-fill mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ToggleMode flips between complete and express and returns the new mode.
func (s *Session) ToggleMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeComplete {
		s.mode = ModeExpress
	} else {
		s.mode = ModeComplete
	}
	return s.mode
}

// Data returns the draft snapshot regardless of the displayed mode.
func (s *Session) Data() *ExpressModeData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// CanUseExpressMode reports whether the draft carries enough data to offer
// express mode.
func (s *Session) CanUseExpressMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data != nil && s.data.HasEnoughData
}

// DataCompleteness scores the draft 0-100.
func (s *Session) DataCompleteness() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Completeness(s.data)
}

func derefAll[T any](in []*T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// correctiveActions collects the non-empty planned actions of the causes.
func correctiveActions(causas []extract.ExtractedCause) []string {
	var actions []string
	for _, c := range causas {
		if c.AccionPlan != "" {
			actions = append(actions, c.AccionPlan)
		}
	}
	return actions
}

// asPersonas converts consolidated people back to plain person records for
// the cost estimator.
func asPersonas(personas []consolidate.PersonaConsolidada) []models.Persona {
	out := make([]models.Persona, 0, len(personas))
	for _, p := range personas {
		out = append(out, models.Persona{
			Nombre:     p.Nombre,
			Cargo:      p.Cargo,
			Empresa:    p.Empresa,
			TipoLesion: p.TipoLesion,
		})
	}
	return out
}
