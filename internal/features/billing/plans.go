package billing

import (
	"github.com/barterskills/barterskills-server-go/pkg/types"
)

// Plan prices in paise.
const (
	MonthlyPricePaise int64 = 5000
	YearlyPricePaise  int64 = 50000
)

// PlanPrice returns the price of a premium plan. The gateway bills in paise;
// callers convert with Money.Paise().
func PlanPrice(plan types.PlanType) (types.Money, error) {
	switch plan {
	case types.PlanMonthly:
		return types.NewMoneyFromPaise(MonthlyPricePaise), nil
	case types.PlanYearly:
		return types.NewMoneyFromPaise(YearlyPricePaise), nil
	default:
		return types.Money{}, ErrInvalidPlan
	}
}
