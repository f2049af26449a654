package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	got []OrderEvent
	err error
}

func (r *recorder) Publish(_ context.Context, ev OrderEvent) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestMulti_DeliversToAll(t *testing.T) {
	t.Parallel()

	failing := &recorder{err: errors.New("broker down")}
	ok := &recorder{}
	m := Multi{failing, nil, ok}

	ev := OrderEvent{Type: OrderCreated, OrderID: uuid.New()}
	err := m.Publish(context.Background(), ev)

	require.ErrorIs(t, err, failing.err)
	assert.Len(t, failing.got, 1)
	assert.Len(t, ok.got, 1)
}

func TestOrderEvent_Key(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	chefID := uuid.New()

	assert.Equal(t, orderID.String(), OrderEvent{OrderID: orderID, ChefID: &chefID}.Key())
	assert.Equal(t, chefID.String(), OrderEvent{ChefID: &chefID}.Key())
	assert.Empty(t, OrderEvent{}.Key())
	assert.NoError(t, Nop{}.Publish(context.Background(), OrderEvent{}))
}
