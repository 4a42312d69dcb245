package services

import "github.com/ecotrack/backend/internal/models"

// Activity is a catalog entry. Rate is points per unit of value.
type Activity struct {
	ID            string
	Category      string
	Title         string
	Rate          float64
	MaxValue      float64
	PhotoRequired bool
}

const (
	ActivityVehicleUsage    = "vehicle-usage"
	ActivityCoalBurning     = "coal-burning"
	ActivityACUsage         = "ac-usage"
	ActivityTreePlanting    = "tree-planting"
	ActivityRenewableEnergy = "renewable-energy"

	customActivityTitle = "Custom Activity"
)

var activityCatalog = map[string]Activity{
	ActivityVehicleUsage:    {ID: ActivityVehicleUsage, Category: models.CategoryProducing, Title: "Vehicle Usage", Rate: -1, MaxValue: 1000},
	ActivityCoalBurning:     {ID: ActivityCoalBurning, Category: models.CategoryProducing, Title: "Coal Burning", Rate: -2, MaxValue: 100},
	ActivityACUsage:         {ID: ActivityACUsage, Category: models.CategoryProducing, Title: "AC Usage", Rate: -0.5, MaxValue: 24},
	ActivityTreePlanting:    {ID: ActivityTreePlanting, Category: models.CategoryReducing, Title: "Tree Planting", Rate: 5, MaxValue: 100, PhotoRequired: true},
	ActivityRenewableEnergy: {ID: ActivityRenewableEnergy, Category: models.CategoryReducing, Title: "Renewable Energy", Rate: 0.5, MaxValue: 100},
}

// LookupActivity returns the catalog entry for id.
func LookupActivity(id string) (Activity, bool) {
	a, ok := activityCatalog[id]
	return a, ok
}

// ActivityTitle maps id to its display title, falling back to a generic label.
func ActivityTitle(id string) string {
	if a, ok := activityCatalog[id]; ok {
		return a.Title
	}
	return customActivityTitle
}

// Points for value units of the activity.
func (a Activity) Points(value float64) float64 {
	return value * a.Rate
}
