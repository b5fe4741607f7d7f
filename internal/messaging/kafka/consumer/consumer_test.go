package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeMessageSource replays a scripted error per fetch, holding the last one
// once the script runs out.
type fakeMessageSource struct {
	fetchedAt []time.Time
	errs      []error
}

func (f *fakeMessageSource) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.fetchedAt = append(f.fetchedAt, time.Now())
	err := f.errs[0]
	if len(f.errs) > 1 {
		f.errs = f.errs[1:]
	}
	return kafkago.Message{}, err
}

func (f *fakeMessageSource) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	return nil
}

func withShortBackoff(t *testing.T, d time.Duration) {
	t.Helper()
	old := fetchBackoff
	fetchBackoff = d
	t.Cleanup(func() { fetchBackoff = old })
}

func TestDefaultSalaryConsumer_BacksOffOnFetchErrors(t *testing.T) {
	withShortBackoff(t, 20*time.Millisecond)

	src := &fakeMessageSource{errs: []error{
		errors.New("broker unreachable"),
		errors.New("broker unreachable"),
		context.Canceled,
	}}

	start := time.Now()
	RunDefaultSalaryConsumer(context.Background(), src, nil, zap.NewNop())

	assert.Len(t, src.fetchedAt, 3)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestPaystubArchiver_BacksOffOnFetchErrors(t *testing.T) {
	withShortBackoff(t, 20*time.Millisecond)

	src := &fakeMessageSource{errs: []error{
		errors.New("broker unreachable"),
		context.Canceled,
	}}

	start := time.Now()
	RunPaystubArchiver(context.Background(), src, nil, t.TempDir(), zap.NewNop())

	assert.Len(t, src.fetchedAt, 2)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
