package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanType(t *testing.T) {
	assert.True(t, PlanMonthly.Valid())
	assert.True(t, PlanYearly.Valid())
	assert.False(t, PlanType("weekly").Valid())
	assert.False(t, PlanType("").Valid())

	assert.Equal(t, 30*24*time.Hour, PlanMonthly.Duration())
	assert.Equal(t, 365*24*time.Hour, PlanYearly.Duration())
}

func TestMoneyPaiseRoundTrip(t *testing.T) {
	m := NewMoneyFromPaise(5000)
	assert.Equal(t, "50", m.String())
	assert.Equal(t, int64(5000), m.Paise())

	m = NewMoneyFromPaise(4999)
	assert.Equal(t, "49.99", m.String())
	assert.Equal(t, int64(4999), m.Paise())
}

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoney(10.50)
	b := NewMoney(2.25)

	assert.Equal(t, "12.75", a.Add(b).String())
	assert.Equal(t, "8.25", a.Sub(b).String())
	assert.True(t, a.GreaterThan(b))
	assert.False(t, b.GreaterThan(a))
	assert.True(t, NewMoney(0).IsZero())
}

func TestMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("123.45")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), m.Paise())

	_, err = NewMoneyFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyFromPaise(50000)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `"500"`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, int64(50000), decoded.Paise())
}
