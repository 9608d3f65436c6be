package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// discountRecord is one line of a snapshot file.
type discountRecord struct {
	ID                uuid.UUID          `json:"id"`
	Name              string             `json:"name"`
	Code              *string            `json:"code"`
	Type              model.DiscountType `json:"type"`
	Percentage        *decimal.Decimal   `json:"percentage"`
	Amounts           map[string]string  `json:"amounts"`
	TargetType        model.TargetType   `json:"target_type"`
	TargetIsAllowList bool               `json:"target_is_allow_list"`
	Priority          int                `json:"priority"`
	Active            bool               `json:"active"`
	Products          []uuid.UUID        `json:"products"`
	ProductSets       []uuid.UUID        `json:"product_sets"`
	ShippingMethods   []uuid.UUID        `json:"shipping_methods"`
	ConditionGroups   []groupRecord      `json:"condition_groups"`
	CreatedAt         time.Time          `json:"created_at"`
}

type groupRecord struct {
	Conditions []conditionRecord `json:"conditions"`
}

type conditionRecord struct {
	Type  model.ConditionType `json:"type"`
	Value json.RawMessage     `json:"value"`
}

type rangeValue struct {
	StartAt   *string `json:"start_at"`
	EndAt     *string `json:"end_at"`
	IsInRange bool    `json:"is_in_range"`
}

type listValue struct {
	Users       []uuid.UUID `json:"users"`
	Roles       []uuid.UUID `json:"roles"`
	Products    []uuid.UUID `json:"products"`
	ProductSets []uuid.UUID `json:"product_sets"`
	IsAllowList bool        `json:"is_allow_list"`
}

type orderValue struct {
	MinValues    map[string]string `json:"min_values"`
	MaxValues    map[string]string `json:"max_values"`
	IncludeTaxes bool              `json:"include_taxes"`
}

type countValue struct {
	MinValue *int `json:"min_value"`
	MaxValue *int `json:"max_value"`
	MaxUses  int  `json:"max_uses"`
}

type weekdayValue struct {
	Weekday [7]bool `json:"weekday"`
}

// readDiscounts decodes a JSON-lines stream of discounts. Blank lines are skipped.
func readDiscounts(ctx context.Context, r io.Reader) ([]model.Discount, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var discounts []model.Discount
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec discountRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: invalid discount: %w", lineNo, err)
		}
		d, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		discounts = append(discounts, d)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return discounts, nil
}

func (r discountRecord) toModel() (model.Discount, error) {
	if r.ID == uuid.Nil {
		return model.Discount{}, fmt.Errorf("discount id is required")
	}
	if !r.TargetType.Valid() {
		return model.Discount{}, fmt.Errorf("discount %s: unknown target type %q", r.ID, r.TargetType)
	}

	d := model.Discount{
		ID:                r.ID,
		Name:              r.Name,
		Code:              r.Code,
		Type:              r.Type,
		TargetType:        r.TargetType,
		TargetIsAllowList: r.TargetIsAllowList,
		Priority:          r.Priority,
		Active:            r.Active,
		Products:          r.Products,
		ProductSets:       r.ProductSets,
		ShippingMethods:   r.ShippingMethods,
		CreatedAt:         r.CreatedAt,
	}
	if d.Code != nil {
		code := strings.TrimSpace(*d.Code)
		if code == "" {
			return model.Discount{}, fmt.Errorf("discount %s: empty coupon code", r.ID)
		}
		d.Code = &code
	}

	switch r.Type {
	case model.DiscountPercentage:
		if r.Percentage == nil {
			return model.Discount{}, fmt.Errorf("discount %s: percentage is required", r.ID)
		}
		d.Percentage = *r.Percentage
	case model.DiscountAmount:
		amounts, err := parseAmounts(r.Amounts)
		if err != nil {
			return model.Discount{}, fmt.Errorf("discount %s: %w", r.ID, err)
		}
		if len(amounts) == 0 {
			return model.Discount{}, fmt.Errorf("discount %s: amounts are required", r.ID)
		}
		d.Amounts = amounts
	default:
		return model.Discount{}, fmt.Errorf("discount %s: unknown discount type %q", r.ID, r.Type)
	}

	for _, g := range r.ConditionGroups {
		group := model.ConditionGroup{Conditions: make([]model.Condition, 0, len(g.Conditions))}
		for _, c := range g.Conditions {
			cond, err := c.toModel()
			if err != nil {
				return model.Discount{}, fmt.Errorf("discount %s: %w", r.ID, err)
			}
			group.Conditions = append(group.Conditions, cond)
		}
		d.ConditionGroups = append(d.ConditionGroups, group)
	}

	return d, nil
}

func (c conditionRecord) toModel() (model.Condition, error) {
	switch c.Type {
	case model.ConditionDateBetween:
		var v rangeValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		cond := model.DateBetween{InRange: v.IsInRange}
		var err error
		if cond.Start, err = parseDate(v.StartAt); err != nil {
			return nil, err
		}
		if cond.End, err = parseDate(v.EndAt); err != nil {
			return nil, err
		}
		return cond, nil

	case model.ConditionTimeBetween:
		var v rangeValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		cond := model.TimeBetween{InRange: v.IsInRange}
		var err error
		if cond.Start, err = parseClock(v.StartAt); err != nil {
			return nil, err
		}
		if cond.End, err = parseClock(v.EndAt); err != nil {
			return nil, err
		}
		return cond, nil

	case model.ConditionWeekdayIn:
		var v weekdayValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		return model.WeekdayIn{Weekdays: v.Weekday}, nil

	case model.ConditionUserIn:
		var v listValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		return model.UserIn{Users: v.Users, AllowList: v.IsAllowList}, nil

	case model.ConditionUserInRole:
		var v listValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		return model.UserInRole{Roles: v.Roles, AllowList: v.IsAllowList}, nil

	case model.ConditionProductIn:
		var v listValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		return model.ProductIn{Products: v.Products, AllowList: v.IsAllowList}, nil

	case model.ConditionProductInSet:
		var v listValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		return model.ProductInSet{Sets: v.ProductSets, AllowList: v.IsAllowList}, nil

	case model.ConditionOrderValue:
		var v orderValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		minValues, err := parseAmounts(v.MinValues)
		if err != nil {
			return nil, err
		}
		maxValues, err := parseAmounts(v.MaxValues)
		if err != nil {
			return nil, err
		}
		return model.OrderValue{Min: minValues, Max: maxValues, IncludeTaxes: v.IncludeTaxes}, nil

	case model.ConditionCouponsCount:
		var v countValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		return model.CouponsCount{Min: v.MinValue, Max: v.MaxValue}, nil

	case model.ConditionMaxUses:
		var v countValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		return model.MaxUses{Max: v.MaxUses}, nil

	case model.ConditionMaxUsesPerUser:
		var v countValue
		if err := c.decode(&v); err != nil {
			return nil, err
		}
		return model.MaxUsesPerUser{Max: v.MaxUses}, nil
	}

	return nil, fmt.Errorf("unknown condition type %q", c.Type)
}

func (c conditionRecord) decode(v any) error {
	if len(c.Value) == 0 {
		return fmt.Errorf("condition %s: value is required", c.Type)
	}
	if err := json.Unmarshal(c.Value, v); err != nil {
		return fmt.Errorf("condition %s: %w", c.Type, err)
	}
	return nil
}

// parseAmounts converts decimal strings keyed by currency into minor units.
func parseAmounts(values map[string]string) (map[string]int64, error) {
	if len(values) == 0 {
		return nil, nil
	}
	amounts := make(map[string]int64, len(values))
	for code, value := range values {
		m, err := model.ParseMoney(value, code)
		if err != nil {
			return nil, fmt.Errorf("amount in %s: %w", code, err)
		}
		amounts[m.Currency] = m.Amount
	}
	return amounts, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *s, err)
	}
	return &t, nil
}

// parseClock reads a time of day ("15:04:05" or "15:04") as the offset from midnight.
func parseClock(s *string) (*time.Duration, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse("15:04:05", *s)
	if err != nil {
		if t, err = time.Parse("15:04", *s); err != nil {
			return nil, fmt.Errorf("invalid time of day %q: %w", *s, err)
		}
	}
	d := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	return &d, nil
}
