// Package availability turns item deposits into sellable product quantities
// grouped by shipping lead time.
package availability

import (
	"sort"
	"time"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
)

type keyKind int

const (
	kindUnspecified keyKind = iota
	kindTime
	kindDate
)

// key orders stock layers: deposits without lead time first, then shipping
// times ascending, then shipping dates ascending.
type key struct {
	kind keyKind
	days int
	at   int64 // shipping date in unix nanoseconds
}

func keyOf(d model.Deposit) key {
	switch {
	case d.ShippingDate != nil:
		return key{kind: kindDate, at: d.ShippingDate.UnixNano()}
	case d.ShippingTime != nil:
		return key{kind: kindTime, days: *d.ShippingTime}
	default:
		return key{kind: kindUnspecified}
	}
}

func (k key) less(o key) bool {
	if k.kind != o.kind {
		return k.kind < o.kind
	}
	switch k.kind {
	case kindTime:
		return k.days < o.days
	case kindDate:
		return k.at < o.at
	}
	return false
}

func (k key) row(quantity int) model.Availability {
	a := model.Availability{Quantity: quantity}
	switch k.kind {
	case kindTime:
		days := k.days
		a.ShippingTime = &days
	case kindDate:
		date := time.Unix(0, k.at).UTC()
		a.ShippingDate = &date
	}
	return a
}

type layer struct {
	key      key
	quantity int
}

// Ledger holds the stock layers of a set of items.
// It is not safe for concurrent use; build one per computation.
type Ledger struct {
	layers map[uuid.UUID][]layer
}

// NewLedger groups deposits per item into positive layers ordered by lead time.
// Negative entries are removals and consume the fastest stock first.
func NewLedger(deposits []model.Deposit) *Ledger {
	byItem := make(map[uuid.UUID]map[key]int)
	for _, d := range deposits {
		if byItem[d.ItemID] == nil {
			byItem[d.ItemID] = make(map[key]int)
		}
		byItem[d.ItemID][keyOf(d)] += d.Quantity
	}

	l := &Ledger{layers: make(map[uuid.UUID][]layer, len(byItem))}
	for itemID, sums := range byItem {
		var layers []layer
		removed := 0
		for k, q := range sums {
			if q < 0 {
				removed -= q
				continue
			}
			if q > 0 {
				layers = append(layers, layer{key: k, quantity: q})
			}
		}
		sort.Slice(layers, func(i, j int) bool {
			return layers[i].key.less(layers[j].key)
		})

		kept := layers[:0]
		for _, ly := range layers {
			if removed > 0 {
				take := min(removed, ly.quantity)
				ly.quantity -= take
				removed -= take
			}
			if ly.quantity > 0 {
				kept = append(kept, ly)
			}
		}
		if len(kept) > 0 {
			l.layers[itemID] = kept
		}
	}
	return l
}

// Compute returns the availability buckets of a product requiring reqs.
func Compute(reqs []model.RequiredItem, deposits []model.Deposit) []model.Availability {
	return NewLedger(deposits).Availability(reqs)
}

// Unlimited reports whether reqs consume no stock at all.
func Unlimited(reqs []model.RequiredItem) bool {
	return len(constraining(reqs)) == 0
}

// Total sums the quantities of availability buckets.
func Total(rows []model.Availability) int {
	total := 0
	for _, r := range rows {
		total += r.Quantity
	}
	return total
}

// Availability walks every lead-time threshold of the required items and
// emits the units that become sellable exactly at that threshold.
func (l *Ledger) Availability(reqs []model.RequiredItem) []model.Availability {
	reqs = constraining(reqs)
	if len(reqs) == 0 {
		return nil
	}

	var thresholds []key
	seen := make(map[key]struct{})
	for _, ri := range reqs {
		layers := l.layers[ri.ItemID]
		if len(layers) == 0 {
			return nil
		}
		for _, ly := range layers {
			if _, ok := seen[ly.key]; !ok {
				seen[ly.key] = struct{}{}
				thresholds = append(thresholds, ly.key)
			}
		}
	}
	sort.Slice(thresholds, func(i, j int) bool {
		return thresholds[i].less(thresholds[j])
	})

	cum := make([]int, len(reqs))
	next := make([]int, len(reqs))
	emitted := 0
	var rows []model.Availability

	for _, t := range thresholds {
		sellable := -1
		for i, ri := range reqs {
			layers := l.layers[ri.ItemID]
			for next[i] < len(layers) && !t.less(layers[next[i]].key) {
				cum[i] += layers[next[i]].quantity
				next[i]++
			}
			units := cum[i] / ri.RequiredQuantity
			if sellable < 0 || units < sellable {
				sellable = units
			}
		}
		if sellable > emitted {
			rows = append(rows, t.row(sellable-emitted))
			emitted = sellable
		}
	}
	return rows
}

// Reserve takes quantity product units out of the ledger, fastest stock first.
// It returns the lead time of the slowest bucket used, or false when stock is
// insufficient, in which case the ledger is left unchanged.
func (l *Ledger) Reserve(reqs []model.RequiredItem, quantity int) (model.Availability, bool) {
	reqs = constraining(reqs)
	if len(reqs) == 0 {
		return model.Availability{Quantity: quantity}, true
	}

	rows := l.Availability(reqs)
	reached := 0
	var slowest *model.Availability
	for i := range rows {
		reached += rows[i].Quantity
		if reached >= quantity {
			slowest = &rows[i]
			break
		}
	}
	if slowest == nil {
		return model.Availability{}, false
	}

	for _, ri := range reqs {
		need := ri.RequiredQuantity * quantity
		layers := l.layers[ri.ItemID]
		for i := range layers {
			if need == 0 {
				break
			}
			take := min(need, layers[i].quantity)
			layers[i].quantity -= take
			need -= take
		}
		kept := layers[:0]
		for _, ly := range layers {
			if ly.quantity > 0 {
				kept = append(kept, ly)
			}
		}
		l.layers[ri.ItemID] = kept
	}

	return model.Availability{
		Quantity:     quantity,
		ShippingTime: slowest.ShippingTime,
		ShippingDate: slowest.ShippingDate,
	}, true
}

// constraining drops requirements that consume nothing and merges duplicates.
func constraining(reqs []model.RequiredItem) []model.RequiredItem {
	merged := model.MergeRequiredItems(reqs)
	out := merged[:0]
	for _, ri := range merged {
		if ri.RequiredQuantity > 0 {
			out = append(out, ri)
		}
	}
	return out
}

// Slowest returns the cart-level lead time of lines shipped with the given
// buckets: the longest shipping time when every line has one, the latest
// shipping date when every line has one, and nothing otherwise.
func Slowest(rows []model.Availability) (*int, *time.Time) {
	if len(rows) == 0 {
		return nil, nil
	}

	var days *int
	var date *time.Time
	for _, r := range rows {
		switch {
		case r.ShippingTime != nil && date == nil:
			if days == nil || *r.ShippingTime > *days {
				days = r.ShippingTime
			}
		case r.ShippingDate != nil && days == nil:
			if date == nil || r.ShippingDate.After(*date) {
				date = r.ShippingDate
			}
		default:
			return nil, nil
		}
	}
	return days, date
}
