package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"kart-pricing/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDiscounts_Conditions(t *testing.T) {
	userID := uuid.MustParse("5b1c6c7e-9c1e-4c8e-8d0f-0b3f6d7b2a11")
	setID := uuid.MustParse("0c9a3c1e-2b4d-4e8f-9a1b-3c5d7e9f1a2b")

	line := `{"id":"7f0c1b2a-3d4e-4f5a-8b6c-7d8e9f0a1b2c","name":"Happy hour","type":"percentage","percentage":"12.5",` +
		`"target_type":"products","target_is_allow_list":true,"product_sets":["` + setID.String() + `"],"active":true,` +
		`"condition_groups":[{"conditions":[` +
		`{"type":"date-between","value":{"start_at":"2026-01-01T00:00:00Z","is_in_range":true}},` +
		`{"type":"time-between","value":{"start_at":"22:00","end_at":"06:00:00","is_in_range":true}},` +
		`{"type":"weekday-in","value":{"weekday":[false,true,true,true,true,true,false]}},` +
		`{"type":"user-in","value":{"users":["` + userID.String() + `"],"is_allow_list":false}},` +
		`{"type":"product-in-set","value":{"product_sets":["` + setID.String() + `"],"is_allow_list":true}},` +
		`{"type":"order-value","value":{"min_values":{"PLN":"100.00"},"include_taxes":true}},` +
		`{"type":"coupons-count","value":{"max_value":2}},` +
		`{"type":"max-uses","value":{"max_uses":100}},` +
		`{"type":"max-uses-per-user","value":{"max_uses":1}}` +
		`]}]}`

	discounts, err := readDiscounts(context.Background(), strings.NewReader(line))
	require.NoError(t, err)
	require.Len(t, discounts, 1)

	d := discounts[0]
	assert.True(t, d.Percentage.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, []uuid.UUID{setID}, d.ProductSets)
	require.Len(t, d.ConditionGroups, 1)

	conditions := d.ConditionGroups[0].Conditions
	require.Len(t, conditions, 9)

	dates := conditions[0].(model.DateBetween)
	require.NotNil(t, dates.Start)
	assert.Nil(t, dates.End)
	assert.True(t, dates.InRange)

	clock := conditions[1].(model.TimeBetween)
	assert.Equal(t, 22*time.Hour, *clock.Start)
	assert.Equal(t, 6*time.Hour, *clock.End)

	assert.True(t, conditions[2].(model.WeekdayIn).Weekdays[time.Monday])
	assert.Equal(t, model.UserIn{Users: []uuid.UUID{userID}, AllowList: false}, conditions[3])
	assert.Equal(t, model.ProductInSet{Sets: []uuid.UUID{setID}, AllowList: true}, conditions[4])
	assert.Equal(t, model.OrderValue{Min: map[string]int64{"PLN": 10000}, IncludeTaxes: true}, conditions[5])

	count := conditions[6].(model.CouponsCount)
	assert.Nil(t, count.Min)
	assert.Equal(t, 2, *count.Max)

	assert.Equal(t, model.MaxUses{Max: 100}, conditions[7])
	assert.Equal(t, model.MaxUsesPerUser{Max: 1}, conditions[8])
}

func TestReadDiscounts_Rejects(t *testing.T) {
	id := `"id":"7f0c1b2a-3d4e-4f5a-8b6c-7d8e9f0a1b2c"`

	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{
			name:    "Missing id",
			line:    `{"type":"percentage","percentage":"10","target_type":"products"}`,
			wantErr: "discount id is required",
		},
		{
			name:    "Unknown target type",
			line:    `{` + id + `,"type":"percentage","percentage":"10","target_type":"basket"}`,
			wantErr: "unknown target type",
		},
		{
			name:    "Unknown discount type",
			line:    `{` + id + `,"type":"bogo","target_type":"products"}`,
			wantErr: "unknown discount type",
		},
		{
			name:    "Percentage without value",
			line:    `{` + id + `,"type":"percentage","target_type":"products"}`,
			wantErr: "percentage is required",
		},
		{
			name:    "Amount without amounts",
			line:    `{` + id + `,"type":"amount","target_type":"order-value"}`,
			wantErr: "amounts are required",
		},
		{
			name:    "Amount too precise",
			line:    `{` + id + `,"type":"amount","amounts":{"PLN":"1.005"},"target_type":"order-value"}`,
			wantErr: "exceeds PLN precision",
		},
		{
			name:    "Blank coupon code",
			line:    `{` + id + `,"code":"  ","type":"percentage","percentage":"5","target_type":"order-value"}`,
			wantErr: "empty coupon code",
		},
		{
			name: "Unknown condition",
			line: `{` + id + `,"type":"percentage","percentage":"5","target_type":"order-value",` +
				`"condition_groups":[{"conditions":[{"type":"moon-phase","value":{}}]}]}`,
			wantErr: `unknown condition type "moon-phase"`,
		},
		{
			name: "Condition without value",
			line: `{` + id + `,"type":"percentage","percentage":"5","target_type":"order-value",` +
				`"condition_groups":[{"conditions":[{"type":"max-uses"}]}]}`,
			wantErr: "value is required",
		},
		{
			name: "Bad time of day",
			line: `{` + id + `,"type":"percentage","percentage":"5","target_type":"order-value",` +
				`"condition_groups":[{"conditions":[{"type":"time-between","value":{"start_at":"25:99"}}]}]}`,
			wantErr: "invalid time of day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discounts, err := readDiscounts(context.Background(), strings.NewReader(tt.line))

			require.Error(t, err)
			assert.Nil(t, discounts)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
