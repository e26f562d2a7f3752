package service

import (
	"strings"

	"hairly/internal/modules/workflow/domain"
)

const (
	defaultPlanTitle    = "Personalized Hair Care Plan"
	defaultPlanDuration = "8 weeks"
)

// StylingAccessories are suggested by the client, not by the service.
var StylingAccessories = []string{"Silk/satin scrunchies", "Edge control"}

var routineDefaults = map[string]string{
	"deep_conditioning": "Apply protein-free deep conditioner for 30-45 minutes",
	"cleansing":         "Use sulfate-free shampoo or co-wash",
	"moisturizing":      "Apply leave-in conditioner followed by natural oil",
	"styling":           "Style hair in low-manipulation protective styles",
}

// BuildPlan turns the service's care plan into the four-step routine. The
// first two product windows overlap at products[0].
func BuildPlan(payload domain.CarePlanPayload, held *domain.AnalysisResult) domain.PlanResult {
	products := payload.Products
	hairType := strings.TrimSpace(payload.HairType)
	if hairType == "" && held != nil {
		hairType = strings.TrimSpace(held.HairType)
	}
	title := defaultPlanTitle
	if hairType != "" {
		title = hairType + " Hair Revival Plan"
	}
	duration := routineText(payload.Routine, "duration", defaultPlanDuration)
	return domain.PlanResult{
		Title:    title,
		Duration: duration,
		Steps: []domain.Step{
			{
				ID:          1,
				Title:       "Weekly Deep Conditioning",
				Description: routineText(payload.Routine, "deep_conditioning", routineDefaults["deep_conditioning"]),
				Frequency:   "2x per week",
				Products:    window(products, 0, 1),
			},
			{
				ID:          2,
				Title:       "Gentle Cleansing",
				Description: routineText(payload.Routine, "cleansing", routineDefaults["cleansing"]),
				Frequency:   "1x per week",
				Products:    window(products, 0, 2),
			},
			{
				ID:          3,
				Title:       "Moisturize & Seal",
				Description: routineText(payload.Routine, "moisturizing", routineDefaults["moisturizing"]),
				Frequency:   "Daily",
				Products:    window(products, 2, len(products)),
			},
			{
				ID:          4,
				Title:       "Protective Styling",
				Description: routineText(payload.Routine, "styling", routineDefaults["styling"]),
				Frequency:   "Change every 1-2 weeks",
				Products:    append([]string{}, StylingAccessories...),
			},
		},
	}
}

// window is products[from:to] clamped to the slice length.
func window(products []string, from, to int) []string {
	if to > len(products) {
		to = len(products)
	}
	if from >= to {
		return []string{}
	}
	return append([]string{}, products[from:to]...)
}

func routineText(routine map[string]any, key, fallback string) string {
	raw, ok := routine[key]
	if !ok {
		return fallback
	}
	text, ok := raw.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}
