package service

import (
	"strings"

	"github.com/healthyrecipes/backend/internal/types"
)

var (
	preferenceOptions = []string{"Vegetables", "Fruits", "Grains", "Protein", "Dairy", "Nuts", "Fish", "Chicken", "Beef", "Vegetarian", "Vegan"}
	allergyOptions    = []string{"Nuts", "Dairy", "Gluten", "Shellfish", "Eggs", "Soy", "Fish", "Sesame"}
	deficiencyOptions = []string{"Iron", "Vitamin D", "Vitamin B12", "Calcium", "Protein", "Fiber", "Omega-3"}
	cuisineOptions    = []string{"italian", "mexican", "indian", "mediterranean", "asian", "american"}
	skillOptions      = []string{"beginner", "intermediate", "advanced"}
	mealTypeOptions   = []string{"breakfast", "lunch", "dinner", "snack"}
)

// cookingTimeLabels expands the client's bucket keys into prompt text
var cookingTimeLabels = []struct {
	Key   string
	Label string
}{
	{"under-15", "Under 15 minutes"},
	{"15-30", "15-30 minutes"},
	{"30-60", "30-60 minutes"},
	{"over-60", "Over 1 hour"},
}

// CookingTimeLabel returns the human label for a bucket key. Unknown values pass through trimmed.
func CookingTimeLabel(bucket string) string {
	bucket = strings.TrimSpace(bucket)
	for _, c := range cookingTimeLabels {
		if strings.EqualFold(c.Key, bucket) {
			return c.Label
		}
	}
	return bucket
}

// Options returns a fresh copy of the onboarding catalogue
func Options() types.Options {
	times := make([]string, 0, len(cookingTimeLabels))
	for _, c := range cookingTimeLabels {
		times = append(times, c.Key)
	}
	return types.Options{
		Preferences:  append([]string{}, preferenceOptions...),
		Allergies:    append([]string{}, allergyOptions...),
		Deficiencies: append([]string{}, deficiencyOptions...),
		Cuisines:     append([]string{}, cuisineOptions...),
		SkillLevels:  append([]string{}, skillOptions...),
		MealTypes:    append([]string{}, mealTypeOptions...),
		CookingTimes: times,
	}
}
