package aggregator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/average-weather/internal/service"
)

func samples(temps ...float64) []service.Sample {
	out := make([]service.Sample, 0, len(temps))
	for _, t := range temps {
		out = append(out, service.NewSample(t))
	}
	return out
}

func TestAverage_ElementwiseMean(t *testing.T) {
	got, err := Average([][]service.Sample{
		samples(10, 0, -4),
		samples(20, 3, 4),
		samples(0, 6, 9),
	})
	require.NoError(t, err)

	want := samples(10, 3, 3)
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].Temperature, got[i].Temperature, 1e-9, "day %d", i)
	}
}

func TestAverage_PermutationInvariant(t *testing.T) {
	a, b, c := samples(1.5, 2.25), samples(-7, 11), samples(100, 0.125)

	orders := [][][]service.Sample{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}

	first, err := Average(orders[0])
	require.NoError(t, err)

	for _, order := range orders[1:] {
		got, err := Average(order)
		require.NoError(t, err)
		for i := range first {
			assert.InDelta(t, first[i].Temperature, got[i].Temperature, 1e-9)
		}
	}
}

func TestAverage_Empty(t *testing.T) {
	got, err := Average(nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAverage_SingleSequenceUnchanged(t *testing.T) {
	five := samples(1, 2, 3, 4, 5)

	got, err := Average([][]service.Sample{five})
	require.NoError(t, err)
	assert.Equal(t, five, got)
}

func TestAverage_LengthMismatch(t *testing.T) {
	_, err := Average([][]service.Sample{samples(1, 2), samples(3)})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestPartition_PreservesOrderAndCount(t *testing.T) {
	errA := service.NewProviderError("a", service.InvalidLocation, nil)
	errC := service.NewProviderError("c", service.FailedConnection, nil)

	outcomes := []Outcome{
		{Origin: "a", Err: errA},
		{Origin: "b", Samples: samples(1)},
		{Origin: "c", Err: errC},
		{Origin: "d", Samples: samples(2)},
	}

	successes, errs := Partition(outcomes)

	assert.Equal(t, len(outcomes), len(successes)+len(errs))
	assert.Equal(t, [][]service.Sample{samples(1), samples(2)}, successes)
	require.Len(t, errs, 2)
	assert.Equal(t, "a", errs[0].Origin)
	assert.Equal(t, "c", errs[1].Origin)
}

func TestPartition_Empty(t *testing.T) {
	successes, errs := Partition(nil)
	assert.Empty(t, successes)
	assert.NotNil(t, errs)
	assert.Empty(t, errs)
}

func TestBuildResponse_Status(t *testing.T) {
	errs := []service.ProviderError{*service.NewProviderError("x", service.InvalidJSON, nil)}

	assert.Equal(t, StatusFail, BuildResponse(nil, errs).Status)
	assert.Equal(t, StatusFail, BuildResponse([]service.Sample{}, nil).Status)
	assert.Equal(t, StatusSuccess, BuildResponse(samples(1), errs).Status)
}

func TestResult_JSONShape(t *testing.T) {
	body, err := json.Marshal(BuildResponse(nil, []service.ProviderError{
		*service.NewProviderError("weatherbit", service.InvalidAPIKey, nil),
	}))
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"status":"fail","data":[],"errors":[{"origin":"weatherbit","kind":"InvalidApiKey"}]}`,
		string(body))
}
