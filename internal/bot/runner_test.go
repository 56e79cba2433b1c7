package bot

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homegame/holdem/internal/game"
	"github.com/homegame/holdem/internal/randutil"
)

func newBotTable(t *testing.T, seed int64, bots int) *game.Game {
	t.Helper()
	g, err := game.New("t1", "bot-0", game.DefaultSettings(), randutil.New(seed), nil)
	require.NoError(t, err)
	names := []string{"bot-0", "bot-1", "bot-2", "bot-3"}
	for i := 0; i < bots; i++ {
		_, err := g.Join(names[i], true)
		require.NoError(t, err)
	}
	return g
}

func TestRunnerActsAfterThinkDelay(t *testing.T) {
	t.Parallel()

	mock := quartz.NewMock(t)
	g := newBotTable(t, 21, 2)
	require.NoError(t, g.StartHand("bot-0"))

	r := NewRunner(g, mock, time.Second, randutil.New(1), nil)
	acted := 0
	r.SetOnAct(func() { acted++ })

	r.Schedule()
	assert.Zero(t, acted, "must not act before the delay")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mock.Advance(time.Second).MustWait(ctx)
	assert.Equal(t, 1, acted)
}

func TestRunnerPlaysFullHand(t *testing.T) {
	t.Parallel()

	mock := quartz.NewMock(t)
	g := newBotTable(t, 33, 3)
	require.NoError(t, g.StartHand("bot-0"))

	r := NewRunner(g, mock, time.Second, randutil.New(2), nil)
	r.Schedule()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := 0; i < 500 && g.HandInProgress(); i++ {
		mock.Advance(time.Second).MustWait(ctx)
	}
	require.False(t, g.HandInProgress(), "hand did not finish")

	snap := g.Snapshot()
	assert.True(t, snap.Hand.Complete)
	assert.Equal(t, 0, snap.Hand.Pot)
	assert.NotEqual(t, -1, snap.Hand.WinnerSeat)
}

func TestRunnerDiscardsStaleDecision(t *testing.T) {
	t.Parallel()

	mock := quartz.NewMock(t)
	g := newBotTable(t, 44, 2)
	require.NoError(t, g.StartHand("bot-0"))

	r := NewRunner(g, mock, time.Second, randutil.New(3), nil)
	acted := 0
	r.SetOnAct(func() { acted++ })
	r.Schedule()

	// The seat acts out of band before the timer fires; the queued
	// decision must be dropped without effect.
	acting := g.ActingSeat()
	require.NoError(t, g.Act(acting, game.Fold, 0))
	require.False(t, g.HandInProgress())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mock.Advance(time.Second).MustWait(ctx)
	assert.Zero(t, acted)
	assert.False(t, g.HandInProgress())
}

func TestRunnerIgnoresHumanTurns(t *testing.T) {
	t.Parallel()

	mock := quartz.NewMock(t)
	g, err := game.New("t1", "alice", game.DefaultSettings(), randutil.New(55), nil)
	require.NoError(t, err)
	_, err = g.Join("alice", false)
	require.NoError(t, err)
	_, err = g.Join("bob", false)
	require.NoError(t, err)
	require.NoError(t, g.StartHand("alice"))

	r := NewRunner(g, mock, time.Second, randutil.New(4), nil)
	acted := 0
	r.SetOnAct(func() { acted++ })
	r.Schedule()

	before := g.ActingSeat()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mock.Advance(time.Second).MustWait(ctx)
	assert.Zero(t, acted)
	assert.Equal(t, before, g.ActingSeat())
}
