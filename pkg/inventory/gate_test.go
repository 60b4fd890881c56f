package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestGate_LaterRequestWins(t *testing.T) {
	gate := NewRequestGate()
	ctx := context.Background()

	oldCtx, oldTicket := gate.Begin(ctx, Criteria{SearchText: "电", Status: BucketAll})
	newCtx, newTicket := gate.Begin(ctx, Criteria{SearchText: "电容", Status: BucketAll})

	assert.ErrorIs(t, oldCtx.Err(), context.Canceled)
	assert.NoError(t, newCtx.Err())
	assert.ErrorIs(t, gate.Accept(oldTicket), ErrStaleResponse)
	assert.NoError(t, gate.Accept(newTicket))

	gate.Finish(oldTicket)
	gate.Finish(newTicket)
	assert.Equal(t, 0, gate.InFlight())
	assert.ErrorIs(t, newCtx.Err(), context.Canceled)
}

func TestRequestGate_SameCriteriaNotCancelled(t *testing.T) {
	gate := NewRequestGate()
	ctx := context.Background()

	firstCtx, first := gate.Begin(ctx, Criteria{SearchText: "LED", Status: ""})
	_, second := gate.Begin(ctx, Criteria{SearchText: "led", Status: BucketAll})

	assert.NoError(t, firstCtx.Err())
	assert.NoError(t, gate.Accept(first))
	assert.NoError(t, gate.Accept(second))
	assert.Equal(t, 2, gate.InFlight())
}

func TestRequestGate_Do(t *testing.T) {
	gate := NewRequestGate()
	ctx := context.Background()
	items := SeedItems()[:2]

	got, err := gate.Do(ctx, Criteria{Status: BucketAll}, func(context.Context) ([]Item, error) {
		return items, nil
	})
	require.NoError(t, err)
	assert.Equal(t, items, got)

	// 応答前に別条件のリクエストが来た場合は破棄される
	var newer Ticket
	got, err = gate.Do(ctx, Criteria{Status: BucketLow}, func(reqCtx context.Context) ([]Item, error) {
		_, newer = gate.Begin(ctx, Criteria{Status: BucketOut})
		assert.ErrorIs(t, reqCtx.Err(), context.Canceled)
		return items, nil
	})
	assert.ErrorIs(t, err, ErrStaleResponse)
	assert.Nil(t, got)
	assert.NoError(t, gate.Accept(newer))
	gate.Finish(newer)
	assert.Equal(t, 0, gate.InFlight())
}

func TestRequestGate_Concurrent(t *testing.T) {
	gate := NewRequestGate()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			criteria := Criteria{Status: []StatusBucket{BucketAll, BucketLow}[i%2]}
			_, err := gate.Do(ctx, criteria, func(context.Context) ([]Item, error) {
				return nil, nil
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrStaleResponse)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, gate.InFlight())
}
