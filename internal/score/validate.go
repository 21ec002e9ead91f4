package score

import (
	"fmt"

	"shipstream/internal/domain"
)

// Validate applies hard business rules independent of statistical confidence.
// It returns one human-readable message per violation; an empty slice means
// the bundle passed.
func Validate(bundle domain.ShipmentBundle) []string {
	var errs []string

	if bundle.LoadNumber == "" {
		errs = append(errs, "load number is missing")
	}
	if bundle.Destination.Empty() {
		errs = append(errs, "destination address is missing")
	}
	if len(bundle.Items) == 0 && bundle.TotalWeight > 0 {
		errs = append(errs, fmt.Sprintf("total weight %.0f recorded but no items extracted", bundle.TotalWeight))
	}
	if bundle.TotalWeight < 0 {
		errs = append(errs, fmt.Sprintf("total weight %.2f is negative", bundle.TotalWeight))
	}
	if bundle.Rate < 0 {
		errs = append(errs, fmt.Sprintf("rate %.2f is negative", bundle.Rate))
	}
	for i, item := range bundle.Items {
		if item.Weight < 0 {
			errs = append(errs, fmt.Sprintf("item %d weight %.2f is negative", i+1, item.Weight))
		}
		if item.Quantity < 0 {
			errs = append(errs, fmt.Sprintf("item %d quantity %.2f is negative", i+1, item.Quantity))
		}
	}
	if bundle.PickupDate != nil && bundle.DeliveryDate != nil && bundle.DeliveryDate.Before(*bundle.PickupDate) {
		errs = append(errs, fmt.Sprintf("delivery date %s is before pickup date %s",
			bundle.DeliveryDate.Format("2006-01-02"), bundle.PickupDate.Format("2006-01-02")))
	}

	return errs
}
