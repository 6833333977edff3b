package balance_test

import (
	"encoding/json"
	"testing"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeUsage_CarryOverThenCurrent(t *testing.T) {
	m := balance.Map{"2024": 12, "2023": 4}

	avail := balance.Resolve(m, 2024).Available()
	usage, err := balance.ComputeUsage(avail, 10)
	require.NoError(t, err)

	assert.Equal(t, balance.Usage{TwoYearsAgo: 0, CarryOver: 4, Current: 6}, usage)
	assert.Equal(t, balance.Map{"2024": 6, "2023": 0}, balance.Consume(m, 2024, usage))
}

func TestComputeUsage_Insufficient(t *testing.T) {
	m := balance.Map{"2024": 6, "2023": 0}

	_, err := balance.ComputeUsage(balance.Resolve(m, 2024).Available(), 8)

	var insufficient *balance.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 8, insufficient.Requested)
	assert.Equal(t, 6, insufficient.Available)
	assert.Equal(t, 2, insufficient.Shortfall())
}

func TestComputeUsage_CapsOlderBuckets(t *testing.T) {
	m := balance.Map{"2024": 2, "2023": 9, "2022": 10}

	avail := balance.Resolve(m, 2024).Available()
	assert.Equal(t, balance.Buckets{Year: 2024, TwoYearsAgo: 6, CarryOver: 6, Current: 2}, avail)

	usage, err := balance.ComputeUsage(avail, 14)
	require.NoError(t, err)
	assert.Equal(t, balance.Usage{TwoYearsAgo: 6, CarryOver: 6, Current: 2}, usage)

	_, err = balance.ComputeUsage(avail, 15)
	var insufficient *balance.InsufficientBalanceError
	assert.ErrorAs(t, err, &insufficient)
}

func TestComputeUsage_NegativeDays(t *testing.T) {
	_, err := balance.ComputeUsage(balance.Buckets{Current: 12}, -1)
	assert.ErrorIs(t, err, balance.ErrNegativeWorkingDays)
}

func TestConsumeThenRestore(t *testing.T) {
	m := balance.Map{"2024": 12, "2023": 6}

	usage, err := balance.ComputeUsage(balance.Resolve(m, 2024).Available(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, usage.CarryOver)

	consumed := balance.Consume(m, 2024, usage)
	assert.Equal(t, balance.Map{"2024": 12, "2023": 3}, consumed)
	assert.Equal(t, balance.Map{"2024": 12, "2023": 6}, m, "input map must not be mutated")

	assert.Equal(t, m, balance.Restore(consumed, 2024, usage))
}

func TestVerifyUsage(t *testing.T) {
	tests := []struct {
		name    string
		usage   balance.Usage
		days    int
		wantErr bool
	}{
		{"exact", balance.Usage{TwoYearsAgo: 1, CarryOver: 2, Current: 3}, 6, false},
		{"short", balance.Usage{CarryOver: 2}, 3, true},
		{"negative part", balance.Usage{CarryOver: -1, Current: 4}, 3, true},
		{"zero", balance.Usage{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := balance.VerifyUsage(tt.usage, tt.days)
			if tt.wantErr {
				var inconsistent *balance.InconsistentUsageError
				assert.ErrorAs(t, err, &inconsistent)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCorrect(t *testing.T) {
	tests := []struct {
		name       string
		in         balance.Map
		want       balance.Map
		wantCapped bool
		wantChange bool
	}{
		{"empty gets defaults", balance.Map{}, balance.Map{"2025": 12, "2024": 12}, false, true},
		{"caps previous year", balance.Map{"2025": 4, "2024": 9}, balance.Map{"2025": 4, "2024": 6}, true, true},
		{"keeps low current", balance.Map{"2025": 1, "2024": 3}, balance.Map{"2025": 1, "2024": 3}, false, false},
		{"keeps stale n2", balance.Map{"2025": 12, "2024": 6, "2023": 8}, balance.Map{"2025": 12, "2024": 6, "2023": 8}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, res := balance.Correct(tt.in, 2025)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCapped, res.Capped)
			assert.Equal(t, tt.wantChange, res.Changed)
		})
	}
}

func TestRollover(t *testing.T) {
	got := balance.Rollover(balance.Map{"2024": 12, "2023": 9}, 2025, 3)
	assert.Equal(t, balance.Map{"2025": 12, "2024": 6}, got)

	got = balance.Rollover(balance.Map{"2024": 2, "2023": 6}, 2025, 5)
	assert.Equal(t, balance.Map{"2025": 12, "2024": 0}, got)

	got = balance.Rollover(balance.Map{}, 2025, 0)
	assert.Equal(t, balance.Map{"2025": 12, "2024": 0}, got)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, balance.Validate(balance.Map{"2025": 12, "2024": 0}))
	assert.ErrorIs(t, balance.Validate(balance.Map{"25": 1}), balance.ErrInvalidYearKey)
	assert.ErrorIs(t, balance.Validate(balance.Map{"abcd": 1}), balance.ErrInvalidYearKey)
	assert.ErrorIs(t, balance.Validate(balance.Map{"2025": -1}), balance.ErrNegativeBalance)
}

func TestMapUnmarshalJSON_DropsGarbage(t *testing.T) {
	var m balance.Map
	err := json.Unmarshal([]byte(`{"2025":"7","2024":null,"2023":-2,"2022":4,"note":3,"2021":"x"}`), &m)
	require.NoError(t, err)

	assert.Equal(t, balance.Map{"2025": 7, "2022": 4}, m)
	assert.False(t, m.Has(2024))
	assert.Equal(t, []int{2022, 2025}, m.Years())
}

func TestMapUnmarshalJSON_DropsOutOfRangeNumbers(t *testing.T) {
	var m balance.Map
	err := json.Unmarshal([]byte(`{"2024":1e20,"2023":2.9,"2022":"99999999999","2021":6.0,"2020":2147483647}`), &m)
	require.NoError(t, err)

	assert.Equal(t, balance.Map{"2021": 6, "2020": 2147483647}, m)
	assert.Equal(t, 0, m.Get(2024))
	assert.Equal(t, 0, m.Get(2023))
}
