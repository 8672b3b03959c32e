// Package consolidate reconciles person and evidence records across the
// independent report sources of an incident (Flash Report, Zero-Tolerance
// Report, immediate actions, prefill attachments).
//
// Both functions are pure and total: they never fail, and all-empty inputs
// yield empty output.
package consolidate

import (
	"strings"

	"github.com/prevenia/vigia/internal/models"
)

// Source labels recorded in consolidation provenance.
const (
	SourceFlash            = "flash"
	SourceZeroTolerance    = "zero_tolerance"
	SourceImmediateActions = "immediate_actions"
	SourcePrefill          = "prefill"
	SourceAttachment       = "attachment"
)

// PersonaConsolidada is a person appearing in one or more source records,
// merged by normalized name. Fuentes lists the sources that contributed to
// the record, in contribution order.
type PersonaConsolidada struct {
	Nombre     string   `json:"nombre"`
	Cargo      string   `json:"cargo,omitempty"`
	Empresa    string   `json:"empresa,omitempty"`
	TipoLesion string   `json:"tipo_lesion,omitempty"`
	Fuentes    []string `json:"fuentes,omitempty"`
}

// EvidenciaConsolidada is a photographic or document evidence record merged
// from the incident's sources.
type EvidenciaConsolidada struct {
	URL         string `json:"url"`
	Descripcion string `json:"descripcion,omitempty"`
	Origen      string `json:"origen"`
}

// Personas merges person records from the Flash Report, the Zero-Tolerance
// Report and the immediate-action responsables, in that fixed order.
// Identity key is the normalized (lower-cased, trimmed) name. For a name
// already present, only currently-empty fields are filled from the new
// record; field values never get overwritten. Returns values in first-seen
// order.
func Personas(flashPersonas, ztPersonas []models.Persona, immediateResponsables []string) []PersonaConsolidada {
	byNombre := make(map[string]*PersonaConsolidada)
	var order []string

	merge := func(p models.Persona, source string) {
		key := normalizeNombre(p.Nombre)
		if key == "" {
			return
		}

		existing, ok := byNombre[key]
		if !ok {
			existing = &PersonaConsolidada{Nombre: strings.TrimSpace(p.Nombre)}
			byNombre[key] = existing
			order = append(order, key)
		}

		if existing.Cargo == "" {
			existing.Cargo = strings.TrimSpace(p.Cargo)
		}
		if existing.Empresa == "" {
			existing.Empresa = strings.TrimSpace(p.Empresa)
		}
		if existing.TipoLesion == "" {
			existing.TipoLesion = strings.TrimSpace(p.TipoLesion)
		}
		existing.Fuentes = appendSource(existing.Fuentes, source)
	}

	for _, p := range flashPersonas {
		merge(p, SourceFlash)
	}
	for _, p := range ztPersonas {
		merge(p, SourceZeroTolerance)
	}
	for _, nombre := range immediateResponsables {
		merge(models.Persona{Nombre: nombre}, SourceImmediateActions)
	}

	result := make([]PersonaConsolidada, 0, len(order))
	for _, key := range order {
		result = append(result, *byNombre[key])
	}
	return result
}

// Evidencias concatenates prefill photos, Zero-Tolerance photos and generic
// incident attachments, collapsing identical URLs. Attachments flagged as
// causal-tree diagram captures are excluded; those are surfaced separately
// as diagram images, never as evidence.
func Evidencias(prefillFotos, ztFotos []models.Foto, incidentAttachments []models.Attachment) []EvidenciaConsolidada {
	seen := make(map[string]bool)
	var result []EvidenciaConsolidada

	add := func(url, descripcion, origen string) {
		url = strings.TrimSpace(url)
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		result = append(result, EvidenciaConsolidada{
			URL:         url,
			Descripcion: strings.TrimSpace(descripcion),
			Origen:      origen,
		})
	}

	for _, foto := range prefillFotos {
		add(foto.URL, foto.Descripcion, SourcePrefill)
	}
	for _, foto := range ztFotos {
		add(foto.URL, foto.Descripcion, SourceZeroTolerance)
	}
	for _, att := range incidentAttachments {
		if att.ReportType == "causal_tree" {
			continue
		}
		add(att.URL, att.Descripcion, SourceAttachment)
	}

	return result
}

// normalizeNombre is the identity key for person merging.
func normalizeNombre(nombre string) string {
	return strings.ToLower(strings.TrimSpace(nombre))
}

// appendSource adds a source label once.
func appendSource(sources []string, source string) []string {
	for _, s := range sources {
		if s == source {
			return sources
		}
	}
	return append(sources, source)
}
