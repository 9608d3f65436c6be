package catalog

import (
	"fmt"
	"slices"

	"kart-pricing/internal/model"
)

// snapshot indexes one immutable generation of the catalog.
type snapshot struct {
	sales   map[model.TargetType][]model.Discount
	coupons map[string]model.Discount
	size    int
}

func newSnapshot(discounts []model.Discount) (*snapshot, error) {
	s := &snapshot{
		sales:   make(map[model.TargetType][]model.Discount, len(model.TargetTypes)),
		coupons: make(map[string]model.Discount),
	}

	seen := make(map[string]struct{}, len(discounts))
	for _, d := range discounts {
		id := d.ID.String()
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate discount id %s", id)
		}
		seen[id] = struct{}{}

		if d.IsCoupon() {
			if _, ok := s.coupons[*d.Code]; ok {
				return nil, fmt.Errorf("duplicate coupon code %q", *d.Code)
			}
			s.coupons[*d.Code] = d
		} else if d.Active {
			s.sales[d.TargetType] = append(s.sales[d.TargetType], d)
		}
		s.size++
	}
	return s, nil
}

func (s *snapshot) salesFor(target model.TargetType) []model.Discount {
	return slices.Clone(s.sales[target])
}

func (s *snapshot) coupon(code string) (*model.Discount, bool) {
	d, ok := s.coupons[code]
	if !ok {
		return nil, false
	}
	return &d, true
}
