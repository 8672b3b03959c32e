// Package models defines the typed records exchanged with the incident
// backend. Field names mirror the backend's REST contracts (Spanish domain
// vocabulary); these shapes are consumed as-is by the consolidation and
// express-mode packages.
package models

// SourceReports is the pointer bundle attached to prefill data. It references
// every report and analysis linked to an incident.
type SourceReports struct {
	FlashReportID      string   `json:"flash_report_id,omitempty"`
	ImmediateActionsID string   `json:"immediate_actions_id,omitempty"`
	RootCauseID        string   `json:"root_cause_id,omitempty"`
	ActionPlanID       string   `json:"action_plan_id,omitempty"`
	ZeroToleranceID    string   `json:"zero_tolerance_id,omitempty"`
	FiveWhysIDs        []string `json:"five_whys_ids,omitempty"`
	FishboneIDs        []string `json:"fishbone_ids,omitempty"`
	CausalTreeIDs      []string `json:"causal_tree_ids,omitempty"`
}

// Count returns the number of linked source reports. Each scalar pointer
// counts once; each linked analysis counts individually.
func (s SourceReports) Count() int {
	count := 0
	for _, id := range []string{
		s.FlashReportID,
		s.ImmediateActionsID,
		s.RootCauseID,
		s.ActionPlanID,
		s.ZeroToleranceID,
	} {
		if id != "" {
			count++
		}
	}
	count += len(s.FiveWhysIDs)
	count += len(s.FishboneIDs)
	count += len(s.CausalTreeIDs)
	return count
}

// Persona is a person referenced by a source report.
type Persona struct {
	Nombre     string `json:"nombre"`
	Cargo      string `json:"cargo,omitempty"`
	Empresa    string `json:"empresa,omitempty"`
	TipoLesion string `json:"tipo_lesion,omitempty"`
	Gravedad   string `json:"gravedad,omitempty"`
}

// Foto is a photographic evidence record.
type Foto struct {
	URL         string `json:"url"`
	Descripcion string `json:"descripcion,omitempty"`
}

// Attachment is a generic incident attachment. ReportType identifies the
// report that produced it; causal-tree diagram captures are flagged with
// ReportType "causal_tree" and are surfaced separately from evidence.
type Attachment struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Descripcion string `json:"descripcion,omitempty"`
	ReportType  string `json:"report_type,omitempty"`
}

// EquipoDanado is a damaged-equipment record with its estimated repair or
// replacement cost in whole currency units.
type EquipoDanado struct {
	Nombre        string  `json:"nombre"`
	CostoEstimado float64 `json:"costo_estimado"`
	Moneda        string  `json:"moneda,omitempty"`
}

// ActionPlanItem is a single task of an action plan.
type ActionPlanItem struct {
	ID          string `json:"id"`
	Tarea       string `json:"tarea"`
	Responsable string `json:"responsable,omitempty"`
	Estado      string `json:"estado"`
	FechaLimite string `json:"fecha_limite,omitempty"`
}

// ActionPlanReport is the action plan linked to an incident.
type ActionPlanReport struct {
	ID               string           `json:"id"`
	IncidentID       string           `json:"incident_id"`
	Items            []ActionPlanItem `json:"items"`
	PorcentajeAvance int              `json:"porcentaje_avance"`
}

// ZeroToleranceReport documents a critical safety-rule violation. It is one
// of the person/evidence sources consolidated into the express draft.
type ZeroToleranceReport struct {
	ID          string    `json:"id"`
	IncidentID  string    `json:"incident_id"`
	Descripcion string    `json:"descripcion,omitempty"`
	Personas    []Persona `json:"personas,omitempty"`
	Fotos       []Foto    `json:"fotos,omitempty"`
}

// PrefillData is the backend-computed bundle of suggested Final-Report field
// values plus back-references to the reports that informed the incident.
type PrefillData struct {
	IncidentID         string         `json:"incident_id"`
	TipoIncidente      string         `json:"tipo_incidente,omitempty"`
	Severidad          string         `json:"severidad,omitempty"`
	Empresa            string         `json:"empresa,omitempty"`
	Descripcion        string         `json:"descripcion,omitempty"`
	Supervisor         string         `json:"supervisor,omitempty"`
	AccionesInmediatas string         `json:"acciones_inmediatas,omitempty"`
	AccionesTomadas    string         `json:"acciones_tomadas,omitempty"`
	Personas           []Persona      `json:"personas,omitempty"`
	Fotos              []Foto         `json:"fotos,omitempty"`
	EquiposDanados     []EquipoDanado `json:"equipos_danados,omitempty"`
	Responsables       []string       `json:"responsables,omitempty"`
	SourceReports      SourceReports  `json:"source_reports"`
}

// Validate checks that a decoded prefill bundle carries the fields every
// downstream consumer assumes.
func (p *PrefillData) Validate() error {
	if p.IncidentID == "" {
		return NewValidationError("prefill data is missing incident_id")
	}
	return nil
}

// FiveWhysAnalysis is a five-whys root-cause analysis record. Porques holds
// up to five "why" answers in order; trailing entries may be empty.
type FiveWhysAnalysis struct {
	ID               string   `json:"id"`
	IncidentID       string   `json:"incident_id"`
	Problema         string   `json:"problema"`
	Porques          []string `json:"porques"`
	AccionCorrectiva string   `json:"accion_correctiva,omitempty"`
}

// Validate checks a decoded five-whys record for the fields extraction
// relies on.
func (a *FiveWhysAnalysis) Validate() error {
	if a.ID == "" {
		return NewValidationError("five-whys analysis is missing id")
	}
	if len(a.Porques) > 5 {
		return NewValidationError("five-whys analysis %s has %d porques, maximum is 5", a.ID, len(a.Porques))
	}
	return nil
}

// Fishbone 6M category identifiers.
const (
	FishboneCategoriaPersonas   = "personas"
	FishboneCategoriaMetodo     = "metodo"
	FishboneCategoriaMaquina    = "maquina"
	FishboneCategoriaMaterial   = "material"
	FishboneCategoriaMedicion   = "medicion"
	FishboneCategoriaEntorno    = "entorno"
)

// ValidFishboneCategoria reports whether s is one of the 6M category
// identifiers.
func ValidFishboneCategoria(s string) bool {
	switch s {
	case FishboneCategoriaPersonas,
		FishboneCategoriaMetodo,
		FishboneCategoriaMaquina,
		FishboneCategoriaMaterial,
		FishboneCategoriaMedicion,
		FishboneCategoriaEntorno:
		return true
	}
	return false
}

// FishboneCausa is a candidate cause within a fishbone category, optionally
// carrying an action note attached by the analyst.
type FishboneCausa struct {
	Texto      string `json:"texto"`
	AccionNota string `json:"accion_nota,omitempty"`
}

// FishboneCategoria groups candidate causes under one of the 6M categories.
type FishboneCategoria struct {
	Categoria string          `json:"categoria"`
	Causas    []FishboneCausa `json:"causas"`
}

// FishboneAnalysis is a fishbone/Ishikawa root-cause analysis record.
type FishboneAnalysis struct {
	ID         string              `json:"id"`
	IncidentID string              `json:"incident_id"`
	Problema   string              `json:"problema"`
	Categorias []FishboneCategoria `json:"categorias"`
}

// Validate checks a decoded fishbone record: the id must be set and every
// category must belong to the closed 6M vocabulary.
func (a *FishboneAnalysis) Validate() error {
	if a.ID == "" {
		return NewValidationError("fishbone analysis is missing id")
	}
	for _, categoria := range a.Categorias {
		if !ValidFishboneCategoria(categoria.Categoria) {
			return NewValidationError("fishbone analysis %s has unknown categoria %q", a.ID, categoria.Categoria)
		}
	}
	return nil
}
