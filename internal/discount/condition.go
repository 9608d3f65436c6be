// Package discount evaluates discount conditions and applies sales and coupons
// to a priced cart.
package discount

import (
	"context"
	"fmt"
	"time"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageCounter reads how many placed orders used a discount, globally when
// userID is nil or for a single user otherwise.
type UsageCounter interface {
	UsageCount(ctx context.Context, discountID uuid.UUID, userID *uuid.UUID) (int, error)
}

// Env is what conditions are evaluated against.
type Env struct {
	Now      time.Time
	User     *model.User
	Coupons  []string
	Currency string
	VatRate  decimal.Decimal
	Products []*model.Product

	// OrderValue is the running gross cart total at evaluation time.
	OrderValue int64
}

// Evaluator decides whether a discount's condition groups pass.
type Evaluator struct {
	usage UsageCounter
}

// NewEvaluator creates an evaluator reading usage counters from usage.
func NewEvaluator(usage UsageCounter) *Evaluator {
	return &Evaluator{usage: usage}
}

// Applies reports whether d is active and either has no condition groups or
// has at least one group whose conditions all pass.
func (e *Evaluator) Applies(ctx context.Context, d *model.Discount, env *Env) (bool, error) {
	if !d.Active {
		return false, nil
	}
	if len(d.ConditionGroups) == 0 {
		return true, nil
	}

	for _, group := range d.ConditionGroups {
		ok, err := e.GroupPasses(ctx, d, group, env)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// GroupPasses reports whether every condition of the group passes.
func (e *Evaluator) GroupPasses(ctx context.Context, d *model.Discount, group model.ConditionGroup, env *Env) (bool, error) {
	for _, c := range group.Conditions {
		ok, err := e.check(ctx, d, c, env)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (e *Evaluator) check(ctx context.Context, d *model.Discount, c model.Condition, env *Env) (bool, error) {
	switch c := c.(type) {
	case model.DateBetween:
		inside := (c.Start == nil || !env.Now.Before(*c.Start)) &&
			(c.End == nil || !env.Now.After(*c.End))
		return inside == c.InRange, nil

	case model.TimeBetween:
		return timeOfDayInside(env.Now, c.Start, c.End) == c.InRange, nil

	case model.WeekdayIn:
		return c.Weekdays[env.Now.Weekday()], nil

	case model.UserIn:
		member := env.User != nil && contains(c.Users, env.User.ID)
		return member == c.AllowList, nil

	case model.UserInRole:
		member := false
		if env.User != nil {
			for _, role := range env.User.RoleIDs {
				if contains(c.Roles, role) {
					member = true
					break
				}
			}
		}
		return member == c.AllowList, nil

	case model.ProductIn:
		member := false
		for _, p := range env.Products {
			if contains(c.Products, p.ID) {
				member = true
				break
			}
		}
		return member == c.AllowList, nil

	case model.ProductInSet:
		member := false
		for _, p := range env.Products {
			if p.InSets(c.Sets) {
				member = true
				break
			}
		}
		return member == c.AllowList, nil

	case model.OrderValue:
		value := env.OrderValue
		if !c.IncludeTaxes {
			value = model.NetOf(value, env.VatRate)
		}
		if minValue, ok := c.Min[env.Currency]; ok && value < minValue {
			return false, nil
		}
		if maxValue, ok := c.Max[env.Currency]; ok && value > maxValue {
			return false, nil
		}
		return true, nil

	case model.CouponsCount:
		count := len(env.Coupons)
		if c.Min != nil && count < *c.Min {
			return false, nil
		}
		if c.Max != nil && count > *c.Max {
			return false, nil
		}
		return true, nil

	case model.MaxUses:
		used, err := e.usage.UsageCount(ctx, d.ID, nil)
		if err != nil {
			return false, fmt.Errorf("failed to count discount uses: %w", err)
		}
		return used < c.Max, nil

	case model.MaxUsesPerUser:
		if env.User == nil {
			return false, nil
		}
		used, err := e.usage.UsageCount(ctx, d.ID, &env.User.ID)
		if err != nil {
			return false, fmt.Errorf("failed to count discount uses: %w", err)
		}
		return used < c.Max, nil
	}

	return false, model.InvariantError("unknown condition type %T", c)
}

// timeOfDayInside checks now's wall clock time against [start, end]. A start
// later than end describes a range spanning midnight.
func timeOfDayInside(now time.Time, start, end *time.Duration) bool {
	tod := time.Duration(now.Hour())*time.Hour +
		time.Duration(now.Minute())*time.Minute +
		time.Duration(now.Second())*time.Second

	if start != nil && end != nil && *start > *end {
		return tod >= *start || tod <= *end
	}
	return (start == nil || tod >= *start) && (end == nil || tod <= *end)
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
