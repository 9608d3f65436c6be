package model

import (
	"time"

	"github.com/google/uuid"
)

// ConditionType names a discount condition variant.
type ConditionType string

const (
	ConditionDateBetween    ConditionType = "date-between"
	ConditionTimeBetween    ConditionType = "time-between"
	ConditionWeekdayIn      ConditionType = "weekday-in"
	ConditionUserIn         ConditionType = "user-in"
	ConditionUserInRole     ConditionType = "user-in-role"
	ConditionProductIn      ConditionType = "product-in"
	ConditionProductInSet   ConditionType = "product-in-set"
	ConditionOrderValue     ConditionType = "order-value"
	ConditionCouponsCount   ConditionType = "coupons-count"
	ConditionMaxUses        ConditionType = "max-uses"
	ConditionMaxUsesPerUser ConditionType = "max-uses-per-user"
)

// Condition is one of the concrete condition types below.
type Condition interface {
	Type() ConditionType
	condition()
}

// DateBetween passes while now is within [Start, End]; nil bounds are open.
// With InRange false it passes outside the range instead.
type DateBetween struct {
	Start   *time.Time
	End     *time.Time
	InRange bool
}

// TimeBetween compares the time of day. Start after End wraps past midnight.
type TimeBetween struct {
	Start   *time.Duration
	End     *time.Duration
	InRange bool
}

// WeekdayIn passes on the listed days, indexed by time.Weekday.
type WeekdayIn struct {
	Weekdays [7]bool
}

type UserIn struct {
	Users     []uuid.UUID
	AllowList bool
}

type UserInRole struct {
	Roles     []uuid.UUID
	AllowList bool
}

type ProductIn struct {
	Products  []uuid.UUID
	AllowList bool
}

type ProductInSet struct {
	Sets      []uuid.UUID
	AllowList bool
}

// OrderValue bounds the running order value per currency; a missing bound is open.
type OrderValue struct {
	Min          map[string]int64
	Max          map[string]int64
	IncludeTaxes bool
}

// CouponsCount bounds the number of coupon codes supplied with the request.
type CouponsCount struct {
	Min *int
	Max *int
}

type MaxUses struct {
	Max int
}

type MaxUsesPerUser struct {
	Max int
}

func (DateBetween) Type() ConditionType    { return ConditionDateBetween }
func (TimeBetween) Type() ConditionType    { return ConditionTimeBetween }
func (WeekdayIn) Type() ConditionType      { return ConditionWeekdayIn }
func (UserIn) Type() ConditionType         { return ConditionUserIn }
func (UserInRole) Type() ConditionType     { return ConditionUserInRole }
func (ProductIn) Type() ConditionType      { return ConditionProductIn }
func (ProductInSet) Type() ConditionType   { return ConditionProductInSet }
func (OrderValue) Type() ConditionType     { return ConditionOrderValue }
func (CouponsCount) Type() ConditionType   { return ConditionCouponsCount }
func (MaxUses) Type() ConditionType        { return ConditionMaxUses }
func (MaxUsesPerUser) Type() ConditionType { return ConditionMaxUsesPerUser }

func (DateBetween) condition()    {}
func (TimeBetween) condition()    {}
func (WeekdayIn) condition()      {}
func (UserIn) condition()         {}
func (UserInRole) condition()     {}
func (ProductIn) condition()      {}
func (ProductInSet) condition()   {}
func (OrderValue) condition()     {}
func (CouponsCount) condition()   {}
func (MaxUses) condition()        {}
func (MaxUsesPerUser) condition() {}
