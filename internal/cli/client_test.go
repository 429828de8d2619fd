package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devstudio/internal/api"
	"devstudio/internal/game"
	"devstudio/internal/store"
)

func newTestClient(t *testing.T) (*Client, *store.Memory) {
	t.Helper()
	cfg := game.DefaultConfig()
	mem := store.NewMemory(cfg, game.NewGame(cfg), nil)
	srv := httptest.NewServer(api.New(nil, mem, nil).Handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/"), mem
}

func TestClientRoundTrip(t *testing.T) {
	c, mem := newTestClient(t)
	ctx := context.Background()

	st, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, game.StarterMoney, st.Money)

	cands, cost, err := c.Candidates(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	assert.Positive(t, cost)

	emp, err := c.Hire(ctx, cands[0].ID)
	require.NoError(t, err)
	assert.Equal(t, cands[0].ID, emp.CandidateID)

	p, err := c.CreateProject(ctx, store.ProjectInput{Name: "Starfall", Size: game.SizeA, Platform: "Web", Genre: "Puzzle"})
	require.NoError(t, err)
	require.NoError(t, c.Assign(ctx, emp.ID, p.ID))
	require.NoError(t, c.StartProject(ctx, p.ID))

	res, err := c.PlaceOrder(ctx, "QUST", "buy", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Quantity)

	require.NoError(t, c.Watch(ctx, "QUST"))
	require.NoError(t, c.SetSpeed(ctx, 5))
	assert.Equal(t, 5, mem.Speed())

	notes, err := c.Notifications(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, notes)
}

func TestClientErrors(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Hire(ctx, "nobody")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Contains(t, err.Error(), game.ErrCandidateNotFound.Error())

	_, err = c.PlaceOrder(ctx, "QUST", "sell", 1)
	assert.True(t, IsStatus(err, http.StatusPaymentRequired))
}
