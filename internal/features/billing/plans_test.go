package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterskills/barterskills-server-go/pkg/types"
)

func TestPlanPrice(t *testing.T) {
	price, err := PlanPrice(types.PlanMonthly)
	require.NoError(t, err)
	assert.Equal(t, MonthlyPricePaise, price.Paise())
	assert.Equal(t, "50", price.String())

	price, err = PlanPrice(types.PlanYearly)
	require.NoError(t, err)
	assert.Equal(t, YearlyPricePaise, price.Paise())
	assert.Equal(t, "500", price.String())
}

func TestPlanPriceInvalid(t *testing.T) {
	_, err := PlanPrice(types.PlanType("weekly"))
	assert.ErrorIs(t, err, ErrInvalidPlan)

	_, err = PlanPrice(types.PlanType(""))
	assert.ErrorIs(t, err, ErrInvalidPlan)
}
