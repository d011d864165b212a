package aggregator

import (
	"errors"
	"fmt"

	"github.com/vzahanych/average-weather/internal/service"
)

var ErrLengthMismatch = errors.New("forecast sequences differ in length")

// Status is the overall verdict of an aggregation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
)

// Outcome is what one provider produced for a request: samples on success,
// an error otherwise.
type Outcome struct {
	Origin  string
	Samples []service.Sample
	Err     *service.ProviderError
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Result is the response body returned to clients.
type Result struct {
	Status Status                  `json:"status"`
	Data   []service.Sample        `json:"data"`
	Errors []service.ProviderError `json:"errors"`
}

// Partition splits outcomes into successful sequences and errors, keeping the
// input order inside each bucket.
func Partition(outcomes []Outcome) ([][]service.Sample, []service.ProviderError) {
	successes := make([][]service.Sample, 0, len(outcomes))
	errs := make([]service.ProviderError, 0)

	for _, o := range outcomes {
		if o.Failed() {
			errs = append(errs, *o.Err)
			continue
		}
		successes = append(successes, o.Samples)
	}

	return successes, errs
}

// Average returns the elementwise mean of equal length sequences. An empty input
// averages to an empty sequence.
func Average(successes [][]service.Sample) ([]service.Sample, error) {
	if len(successes) == 0 {
		return []service.Sample{}, nil
	}

	n := len(successes[0])
	for i, seq := range successes[1:] {
		if len(seq) != n {
			return nil, fmt.Errorf("%w: sequence %d has %d samples, want %d", ErrLengthMismatch, i+1, len(seq), n)
		}
	}

	sum := make([]service.Sample, n)
	for _, seq := range successes {
		for i, s := range seq {
			sum[i] = sum[i].Add(s)
		}
	}

	count := float64(len(successes))
	for i := range sum {
		sum[i] = sum[i].Div(count)
	}

	return sum, nil
}

// BuildResponse is the only place deciding success: any data means success.
func BuildResponse(data []service.Sample, errs []service.ProviderError) Result {
	if data == nil {
		data = []service.Sample{}
	}
	if errs == nil {
		errs = []service.ProviderError{}
	}

	status := StatusFail
	if len(data) > 0 {
		status = StatusSuccess
	}

	return Result{
		Status: status,
		Data:   data,
		Errors: errs,
	}
}
