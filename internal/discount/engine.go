package discount

import (
	"context"
	"slices"
	"sort"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Line is a cart line as it moves through discount application.
// Price and Discounted are per unit.
type Line struct {
	CartItemID string
	Product    *model.Product
	Quantity   int
	Price      int64
	Discounted int64
	Discounts  []model.LineDiscount
	Shipping   model.Availability
}

// ShippingQuote prices shipping for the cart total reached after product
// discounts.
type ShippingQuote func(cartTotal int64) int64

// Cart is the input of a discount run.
type Cart struct {
	Currency        string
	Lines           []Line
	ShippingMethods []uuid.UUID
	Shipping        ShippingQuote
	Env             Env
}

// Result is the discounted cart. Amounts are in minor units.
type Result struct {
	Lines            []Line
	CartTotalInitial int64
	CartTotal        int64
	ShippingInitial  int64
	Shipping         int64
	Coupons          []model.AppliedDiscount
	Sales            []model.AppliedDiscount
}

// Summary is the amount the customer pays.
func (r *Result) Summary() int64 {
	return r.CartTotal + r.Shipping
}

// state is the running cart between two discount applications.
// Steps never mutate the state they receive.
type state struct {
	lines         []Line
	orderDiscount int64
	shipping      int64
}

func (s state) clone() state {
	lines := make([]Line, len(s.lines))
	for i, line := range s.lines {
		line.Discounts = slices.Clone(line.Discounts)
		lines[i] = line
	}
	s.lines = lines
	return s
}

func (s state) linesTotal() int64 {
	var total int64
	for _, line := range s.lines {
		total += line.Discounted * int64(line.Quantity)
	}
	return total
}

func (s state) cartTotal() int64 {
	return s.linesTotal() - s.orderDiscount
}

// step applies one discount. It returns the amount actually taken off and
// whether the discount reached anything in the cart.
type step func(s state, d *model.Discount, cart *Cart) (state, int64, bool)

var steps = map[model.TargetType]step{
	model.TargetProducts:        applyProducts,
	model.TargetCheapestProduct: applyCheapest,
	model.TargetOrderValue:      applyOrderValue,
	model.TargetShippingPrice:   applyShipping,
}

// Engine applies sales and coupons to a priced cart.
type Engine struct {
	evaluator *Evaluator
	logger    zerolog.Logger
}

// NewEngine creates a discount engine.
func NewEngine(evaluator *Evaluator, logger zerolog.Logger) *Engine {
	return &Engine{
		evaluator: evaluator,
		logger:    logger.With().Str("component", "discount-engine").Logger(),
	}
}

// Apply runs discounts over the cart. Product and cheapest-product discounts
// go first, then order-value and shipping discounts; inside each group lower
// priority values apply first. Shipping is quoted once, between the two groups.
// Conditions are checked against the cart as it stands right before each
// discount.
func (e *Engine) Apply(ctx context.Context, cart *Cart, discounts []model.Discount) (*Result, error) {
	st := state{lines: cart.Lines}.clone()
	for i := range st.lines {
		st.lines[i].Discounted = st.lines[i].Price
		st.lines[i].Discounts = nil
	}

	result := &Result{CartTotalInitial: st.linesTotal()}
	quoted := false
	quote := func() {
		if cart.Shipping != nil {
			st.shipping = cart.Shipping(st.cartTotal())
		}
		result.ShippingInitial = st.shipping
		quoted = true
	}

	for _, d := range orderForApplication(discounts) {
		if bucket(d.TargetType) > 0 && !quoted {
			quote()
		}

		apply, ok := steps[d.TargetType]
		if !ok {
			e.logger.Warn().
				Str("discount_id", d.ID.String()).
				Str("target_type", string(d.TargetType)).
				Msg("skipping discount with unknown target type")
			continue
		}
		if d.Type == model.DiscountAmount {
			if _, ok := d.Amounts[cart.Currency]; !ok {
				e.logger.Debug().
					Str("discount_id", d.ID.String()).
					Str("currency", cart.Currency).
					Msg("discount has no amount in cart currency")
				continue
			}
		}

		env := cart.Env
		env.OrderValue = st.cartTotal()
		passes, err := e.evaluator.Applies(ctx, &d, &env)
		if err != nil {
			return nil, err
		}
		if !passes {
			continue
		}

		next, consumed, hit := apply(st, &d, cart)
		if !hit {
			continue
		}
		st = next

		applied := model.AppliedDiscount{
			ID:         d.ID,
			Name:       d.Name,
			Code:       d.Code,
			Type:       d.Type,
			TargetType: d.TargetType,
			Value:      model.NewMoney(consumed, cart.Currency),
		}
		if d.IsCoupon() {
			result.Coupons = append(result.Coupons, applied)
		} else {
			result.Sales = append(result.Sales, applied)
		}

		e.logger.Debug().
			Str("discount_id", d.ID.String()).
			Str("target_type", string(d.TargetType)).
			Int64("value", consumed).
			Msg("discount applied")
	}

	if !quoted {
		quote()
	}

	result.Lines = st.lines
	result.CartTotal = st.cartTotal()
	result.Shipping = st.shipping

	if err := verify(result); err != nil {
		return nil, err
	}
	return result, nil
}

func applyProducts(s state, d *model.Discount, cart *Cart) (state, int64, bool) {
	next := s.clone()
	var consumed int64
	hit := false

	for i := range next.lines {
		line := &next.lines[i]
		if !d.Targets(line.Product) {
			continue
		}
		hit = true
		r := reduction(d, line.Discounted, cart.Currency)
		line.Discounted -= r
		line.Discounts = append(line.Discounts, lineDiscount(d, r, cart.Currency))
		consumed += r * int64(line.Quantity)
	}

	if !hit {
		return s, 0, false
	}
	return next, consumed, true
}

// applyCheapest discounts a single unit of the cheapest targeted line. A line
// with more units is split so only one of them carries the discount.
func applyCheapest(s state, d *model.Discount, cart *Cart) (state, int64, bool) {
	cheapest := -1
	for i, line := range s.lines {
		if line.Quantity <= 0 || !d.Targets(line.Product) {
			continue
		}
		if cheapest < 0 || line.Discounted < s.lines[cheapest].Discounted {
			cheapest = i
		}
	}
	if cheapest < 0 {
		return s, 0, false
	}

	next := s.clone()
	target := cheapest
	if next.lines[cheapest].Quantity > 1 {
		unit := next.lines[cheapest]
		unit.Quantity = 1
		unit.Discounts = slices.Clone(unit.Discounts)
		next.lines[cheapest].Quantity--
		next.lines = slices.Insert(next.lines, cheapest+1, unit)
		target = cheapest + 1
	}

	line := &next.lines[target]
	r := reduction(d, line.Discounted, cart.Currency)
	line.Discounted -= r
	line.Discounts = append(line.Discounts, lineDiscount(d, r, cart.Currency))
	return next, r, true
}

func applyOrderValue(s state, d *model.Discount, cart *Cart) (state, int64, bool) {
	next := s.clone()
	r := reduction(d, next.cartTotal(), cart.Currency)
	next.orderDiscount += r
	return next, r, true
}

func applyShipping(s state, d *model.Discount, cart *Cart) (state, int64, bool) {
	hit := false
	for _, id := range cart.ShippingMethods {
		if d.TargetsShipping(id) {
			hit = true
			break
		}
	}
	if !hit {
		return s, 0, false
	}

	next := s.clone()
	r := reduction(d, next.shipping, cart.Currency)
	next.shipping -= r
	return next, r, true
}

// reduction is the amount d takes off base, clamped to [0, base].
func reduction(d *model.Discount, base int64, currency string) int64 {
	var r int64
	switch d.Type {
	case model.DiscountPercentage:
		r = model.Percent(base, d.Percentage)
	case model.DiscountAmount:
		r = d.Amounts[currency]
	}
	return max(0, min(r, base))
}

func lineDiscount(d *model.Discount, value int64, currency string) model.LineDiscount {
	return model.LineDiscount{
		DiscountID: d.ID,
		Name:       d.Name,
		Code:       d.Code,
		Value:      model.NewMoney(value, currency),
	}
}

func bucket(t model.TargetType) int {
	switch t {
	case model.TargetProducts, model.TargetCheapestProduct:
		return 0
	}
	return 1
}

// orderForApplication drops repeated discounts and sorts the rest by bucket,
// priority, creation time and id.
func orderForApplication(discounts []model.Discount) []model.Discount {
	seen := make(map[uuid.UUID]struct{}, len(discounts))
	ordered := make([]model.Discount, 0, len(discounts))
	for _, d := range discounts {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		ordered = append(ordered, d)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if bucket(a.TargetType) != bucket(b.TargetType) {
			return bucket(a.TargetType) < bucket(b.TargetType)
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return ordered
}

func verify(r *Result) error {
	for _, line := range r.Lines {
		if line.Discounted < 0 || line.Discounted > line.Price {
			return model.InvariantError("line %s discounted price %d outside [0, %d]", line.CartItemID, line.Discounted, line.Price)
		}
		var taken int64
		for _, ld := range line.Discounts {
			taken += ld.Value.Amount
		}
		if line.Price-taken != line.Discounted {
			return model.InvariantError("line %s discounts do not add up", line.CartItemID)
		}
	}
	if r.CartTotal < 0 || r.Shipping < 0 {
		return model.InvariantError("negative total: cart %d, shipping %d", r.CartTotal, r.Shipping)
	}
	return nil
}
