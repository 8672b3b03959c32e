// Package extract normalizes the three root-cause methodologies (five whys,
// fishbone, causal tree) into a common cause shape and merges near-duplicate
// causes across analyses.
//
// All functions in this package are pure and total: missing or malformed
// optional fields degrade to empty output, never to an error.
package extract

import (
	"strings"

	"github.com/prevenia/vigia/internal/causaltree"
	"github.com/prevenia/vigia/internal/models"
)

// Methodology identifies the analysis methodology that produced a cause.
// The set is closed; extractor dispatch is exhaustive over it.
type Methodology string

const (
	MethodologyFiveWhys   Methodology = "five_whys"
	MethodologyFishbone   Methodology = "fishbone"
	MethodologyCausalTree Methodology = "causal_tree"
)

// ExtractedCause is the normalized cause shape shared by all methodologies.
// It is derived on every load and never persisted.
type ExtractedCause struct {
	Problema    string      `json:"problema"`
	CausaRaiz   string      `json:"causa_raiz"`
	AccionPlan  string      `json:"accion_plan,omitempty"`
	Metodologia Methodology `json:"metodologia"`
}

// FiveWhysCauses extracts one cause per five-whys analysis: the deepest
// non-empty "why" answer reached. Analyses with no answered whys are
// skipped.
func FiveWhysCauses(analyses []models.FiveWhysAnalysis) []ExtractedCause {
	var causes []ExtractedCause

	for _, a := range analyses {
		causaRaiz := deepestWhy(a.Porques)
		if causaRaiz == "" {
			continue
		}
		causes = append(causes, ExtractedCause{
			Problema:    strings.TrimSpace(a.Problema),
			CausaRaiz:   causaRaiz,
			AccionPlan:  strings.TrimSpace(a.AccionCorrectiva),
			Metodologia: MethodologyFiveWhys,
		})
	}

	return causes
}

// deepestWhy returns the last non-empty answer of the why chain.
func deepestWhy(porques []string) string {
	for i := len(porques) - 1; i >= 0; i-- {
		if answer := strings.TrimSpace(porques[i]); answer != "" {
			return answer
		}
	}
	return ""
}

// FishboneCauses extracts one cause per non-empty category cause across all
// 6M categories of each analysis. Action notes attached to a category cause
// are carried into AccionPlan.
func FishboneCauses(analyses []models.FishboneAnalysis) []ExtractedCause {
	var causes []ExtractedCause

	for _, a := range analyses {
		for _, categoria := range a.Categorias {
			for _, causa := range categoria.Causas {
				texto := strings.TrimSpace(causa.Texto)
				if texto == "" {
					continue
				}
				causes = append(causes, ExtractedCause{
					Problema:    strings.TrimSpace(a.Problema),
					CausaRaiz:   texto,
					AccionPlan:  strings.TrimSpace(causa.AccionNota),
					Metodologia: MethodologyFishbone,
				})
			}
		}
	}

	return causes
}

// CausalTreeCauses extracts one cause per node flagged as a root cause.
func CausalTreeCauses(analyses []*causaltree.Analysis) []ExtractedCause {
	var causes []ExtractedCause

	for _, a := range analyses {
		if a == nil {
			continue
		}
		for _, node := range a.RootCauseNodes() {
			fact := strings.TrimSpace(node.Fact)
			if fact == "" {
				continue
			}
			causes = append(causes, ExtractedCause{
				Problema:    strings.TrimSpace(a.FinalEvent),
				CausaRaiz:   fact,
				Metodologia: MethodologyCausalTree,
			})
		}
	}

	return causes
}
