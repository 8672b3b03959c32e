// Package costs derives estimated monetary cost lines from damaged
// equipment, injured persons and pending action-plan work. Amounts are
// whole currency units; the estimates are placeholders for the user to
// review and adjust before submission.
package costs

import (
	"fmt"
	"strings"

	"github.com/prevenia/vigia/internal/models"
)

// Cost origins.
const (
	OrigenEquipoDanado = "equipo_danado"
	OrigenDiasPerdidos = "dias_perdidos"
	OrigenPlanAccion   = "plan_accion"
	OrigenManual       = "manual"
)

// DefaultCostoDiario is the default estimated cost of one lost work day.
const DefaultCostoDiario = 50000

// costoPorAccion is the fixed placeholder estimate per pending action item.
const costoPorAccion = 100000

// defaultDiasIncapacidad applies when neither severity nor injury type
// matches the lookup table.
const defaultDiasIncapacidad = 3

// CalculatedCost is a derived cost line. Calculado distinguishes estimates
// produced here from amounts entered manually in the form layer.
type CalculatedCost struct {
	Concepto    string  `json:"concepto"`
	Monto       float64 `json:"monto"`
	Moneda      string  `json:"moneda"`
	Origen      string  `json:"origen"`
	Calculado   bool    `json:"calculado"`
	Descripcion string  `json:"descripcion,omitempty"`
}

// diasPorLesion maps injury severities and injury types to estimated
// incapacity days. Severity is matched exactly after normalization; injury
// type by substring. Ordered most-specific first so "muy grave" wins over
// "grave" and multi-word injury descriptions resolve deterministically.
var diasPorLesion = []struct {
	lesion string
	dias   int
}{
	{"muy grave", 30},
	{"fallecimiento", 0},
	{"fractura", 30},
	{"luxacion", 14},
	{"quemadura", 10},
	{"esguince", 7},
	{"herida", 5},
	{"moderada", 5},
	{"contusion", 3},
	{"grave", 15},
	{"leve", 1},
}

// EstimateCosts derives cost lines in fixed order: one line per damaged
// equipment item, then a single lost-days line, then a single pending-action
// line. Empty inputs yield an empty list; this function never fails.
func EstimateCosts(
	equiposDanados []models.EquipoDanado,
	personasInvolucradas []models.Persona,
	actionPlanItems []models.ActionPlanItem,
	costoDiarioPromedio float64,
) []CalculatedCost {
	if costoDiarioPromedio <= 0 {
		costoDiarioPromedio = DefaultCostoDiario
	}

	var result []CalculatedCost

	// 1. Equipment: one line per item with a positive estimated cost
	for _, equipo := range equiposDanados {
		if equipo.CostoEstimado <= 0 {
			continue
		}
		moneda := equipo.Moneda
		if moneda == "" {
			moneda = "CLP"
		}
		result = append(result, CalculatedCost{
			Concepto:    fmt.Sprintf("Reparacion/reposicion de %s", equipo.Nombre),
			Monto:       equipo.CostoEstimado,
			Moneda:      moneda,
			Origen:      OrigenEquipoDanado,
			Calculado:   true,
			Descripcion: "Costo estimado declarado para el equipo danado",
		})
	}

	// 2. Lost days: one aggregated line across all injured persons
	totalDias := 0
	for _, persona := range personasInvolucradas {
		if !tieneLesion(persona.TipoLesion) {
			continue
		}
		totalDias += diasIncapacidad(persona)
	}
	if totalDias > 0 {
		result = append(result, CalculatedCost{
			Concepto:    fmt.Sprintf("Dias perdidos estimados (%d dias)", totalDias),
			Monto:       float64(totalDias) * costoDiarioPromedio,
			Moneda:      "CLP",
			Origen:      OrigenDiasPerdidos,
			Calculado:   true,
			Descripcion: fmt.Sprintf("%d dias x %.0f por dia", totalDias, costoDiarioPromedio),
		})
	}

	// 3. Action plan: one line covering every item not yet closed
	pendientes := 0
	for _, item := range actionPlanItems {
		estado := strings.ToLower(strings.TrimSpace(item.Estado))
		if estado == "completed" || estado == "cancelled" {
			continue
		}
		pendientes++
	}
	if pendientes > 0 {
		result = append(result, CalculatedCost{
			Concepto:    fmt.Sprintf("Implementacion de %d accion(es) pendiente(s)", pendientes),
			Monto:       float64(pendientes) * costoPorAccion,
			Moneda:      "CLP",
			Origen:      OrigenPlanAccion,
			Calculado:   true,
			Descripcion: "Estimacion referencial por accion del plan",
		})
	}

	return result
}

// TotalEstimado sums the amounts of a cost list.
func TotalEstimado(costs []CalculatedCost) float64 {
	total := 0.0
	for _, c := range costs {
		total += c.Monto
	}
	return total
}

// tieneLesion reports whether a tipo_lesion value describes an actual
// injury. Absent values and "sin lesion" variants do not.
func tieneLesion(tipoLesion string) bool {
	normalized := strings.ToLower(strings.TrimSpace(tipoLesion))
	if normalized == "" {
		return false
	}
	return normalized != "sin lesion" && normalized != "sin lesión"
}

// diasIncapacidad estimates incapacity days for one injured person:
// exact match on normalized severity first, then substring match of the
// injury type against the lookup table, then the default.
func diasIncapacidad(persona models.Persona) int {
	gravedad := strings.ToLower(strings.TrimSpace(persona.Gravedad))
	for _, entry := range diasPorLesion {
		if entry.lesion == gravedad {
			return entry.dias
		}
	}

	tipoLesion := strings.ToLower(strings.TrimSpace(persona.TipoLesion))
	for _, entry := range diasPorLesion {
		if strings.Contains(tipoLesion, entry.lesion) {
			return entry.dias
		}
	}

	return defaultDiasIncapacidad
}
