package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homegame/holdem/internal/randutil"
)

func newTestGame(t *testing.T, seed int64, players ...string) *Game {
	t.Helper()
	g, err := New("g1", players[0], DefaultSettings(), randutil.New(seed), nil)
	require.NoError(t, err)
	for _, name := range players {
		_, err := g.Join(name, false)
		require.NoError(t, err)
	}
	return g
}

func chipTotal(g *Game) int {
	snap := g.Snapshot()
	total := 0
	for _, s := range snap.Seats {
		total += s.Chips
	}
	if snap.Hand != nil {
		total += snap.Hand.Pot
	}
	return total
}

func TestStartHandHeadsUpBlindsAndAction(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 1, "alice", "bob")
	require.NoError(t, g.StartHand("alice"))

	snap := g.Snapshot()
	require.NotNil(t, snap.Hand)

	// Dealer posts the small blind heads-up and acts first preflop.
	sb := snap.Seats[snap.Hand.SmallBlind]
	bb := snap.Seats[snap.Hand.BigBlind]
	assert.Equal(t, snap.Hand.DealerSeat, sb.Index)
	assert.Equal(t, 990, sb.Chips)
	assert.Equal(t, 980, bb.Chips)
	assert.Equal(t, 30, snap.Hand.Pot)
	assert.Equal(t, sb.Index, snap.Hand.ActingSeat)
	assert.Equal(t, Preflop, snap.Hand.Phase)

	for _, s := range snap.Seats {
		assert.Len(t, s.HoleCards, 2)
	}
}

func TestStartHandRequiresOrganizer(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 1, "alice", "bob")
	err := g.StartHand("bob")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, g.Snapshot().Hand)
}

func TestStartHandRequiresTwoPlayers(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 1, "alice")
	err := g.StartHand("alice")
	require.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestStartHandRejectedMidHand(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 1, "alice", "bob")
	require.NoError(t, g.StartHand("alice"))
	err := g.StartHand("alice")
	require.ErrorIs(t, err, ErrIllegalAction)
}

func TestDealerRotatesAscending(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 5, "alice", "bob", "carol")
	var dealers []int
	for i := 0; i < 4; i++ {
		require.NoError(t, g.StartHand("alice"))
		dealers = append(dealers, g.Snapshot().Hand.DealerSeat)
		finishHandByFolding(t, g)
	}
	assert.Equal(t, []int{0, 1, 2, 0}, dealers)
}

// finishHandByFolding folds every acting seat until the hand ends.
func finishHandByFolding(t *testing.T, g *Game) {
	t.Helper()
	for g.HandInProgress() {
		seat := g.ActingSeat()
		require.NotEqual(t, -1, seat)
		require.NoError(t, g.Act(seat, Fold, 0))
	}
}

func TestFoldToOneAwardsPotImmediately(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 2, "alice", "bob", "carol")
	require.NoError(t, g.StartHand("alice"))
	before := chipTotal(g)

	snap := g.Snapshot()
	require.Equal(t, Preflop, snap.Hand.Phase)
	pot := snap.Hand.Pot

	// Everyone folds to the big blind.
	require.NoError(t, g.Act(g.ActingSeat(), Fold, 0))
	require.NoError(t, g.Act(g.ActingSeat(), Fold, 0))

	snap = g.Snapshot()
	require.True(t, snap.Hand.Complete)
	assert.Equal(t, Showdown, snap.Hand.Phase)
	assert.Equal(t, 0, snap.Hand.Pot)
	assert.Equal(t, snap.Hand.BigBlind, snap.Hand.WinnerSeat)
	assert.Nil(t, snap.Hand.WinningRank)

	winner := snap.Seats[snap.Hand.WinnerSeat]
	assert.Equal(t, 1000+pot-20, winner.Chips)
	assert.Equal(t, before, chipTotal(g))
}

func TestWrongTurnRejected(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 3, "alice", "bob", "carol")
	require.NoError(t, g.StartHand("alice"))

	acting := g.ActingSeat()
	other := (acting + 1) % 3
	err := g.Act(other, Fold, 0)
	require.ErrorIs(t, err, ErrIllegalAction)

	// State unchanged.
	assert.Equal(t, acting, g.ActingSeat())
	assert.False(t, g.Snapshot().Seats[other].Folded)
}

func TestCheckFacingBetRejected(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 3, "alice", "bob")
	require.NoError(t, g.StartHand("alice"))

	// Small blind owes 10 to call and cannot check.
	err := g.Act(g.ActingSeat(), Check, 0)
	require.ErrorIs(t, err, ErrIllegalAction)
}

func TestRaiseBelowMinimumRejected(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 3, "alice", "bob")
	require.NoError(t, g.StartHand("alice"))

	// Total commit of 10+5=15 is under the 20 big blind minimum.
	err := g.Act(g.ActingSeat(), Raise, 5)
	require.ErrorIs(t, err, ErrIllegalAction)
}

func TestRaiseResetsHasActed(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 4, "alice", "bob", "carol")
	require.NoError(t, g.StartHand("alice"))
	h := g.hand

	// First to act calls, then the small blind raises: the caller must
	// be put back on the clock.
	first := h.ActingPos
	require.NoError(t, h.Apply(first, Call, 0))
	require.True(t, h.Seats[first].HasActed)

	raiser := h.ActingPos
	require.NoError(t, h.Apply(raiser, Raise, 40))
	assert.False(t, h.Seats[first].HasActed)
	assert.True(t, h.Seats[raiser].HasActed)
}

func TestBigBlindOptionKeepsRoundOpen(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 6, "alice", "bob", "carol")
	require.NoError(t, g.StartHand("alice"))
	h := g.hand

	// Everyone limps around to the big blind. The blind already
	// matches the table bet but the round must stay open for it.
	require.NoError(t, h.Apply(h.ActingPos, Call, 0))
	require.NoError(t, h.Apply(h.ActingPos, Call, 0))

	require.Equal(t, Preflop, h.Phase)
	require.Equal(t, h.BigBlindPos, h.ActingPos)
	assert.False(t, h.bettingComplete())

	// A check from the big blind closes the round.
	require.NoError(t, h.Apply(h.BigBlindPos, Check, 0))
	assert.Equal(t, Flop, h.Phase)
	assert.Len(t, h.Community, 3)
}

func TestBigBlindOptionRaiseReopensAction(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 6, "alice", "bob", "carol")
	require.NoError(t, g.StartHand("alice"))
	h := g.hand

	require.NoError(t, h.Apply(h.ActingPos, Call, 0))
	require.NoError(t, h.Apply(h.ActingPos, Call, 0))
	require.NoError(t, h.Apply(h.BigBlindPos, Raise, 40))

	assert.Equal(t, Preflop, h.Phase)
	assert.Equal(t, 60, h.MaxBet())
	for _, s := range h.Seats {
		if s != h.Seats[h.BigBlindPos] {
			assert.False(t, s.HasActed)
		}
	}
}

func TestPhaseProgressionDealsCommunity(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 7, "alice", "bob")
	require.NoError(t, g.StartHand("alice"))
	h := g.hand

	checkAround := func() {
		for h.Phase != Showdown {
			before := h.Phase
			for h.Phase == before {
				require.NoError(t, h.Apply(h.ActingPos, legalPassive(h), 0))
			}
			return
		}
	}

	require.Equal(t, Preflop, h.Phase)
	checkAround()
	require.Equal(t, Flop, h.Phase)
	require.Len(t, h.Community, 3)
	checkAround()
	require.Equal(t, Turn, h.Phase)
	require.Len(t, h.Community, 4)
	checkAround()
	require.Equal(t, River, h.Phase)
	require.Len(t, h.Community, 5)
	checkAround()
	require.Equal(t, Showdown, h.Phase)
	require.True(t, h.Complete)
	assert.NotEqual(t, -1, h.WinnerPos)
	assert.NotZero(t, h.WinningRank.Category)
	assert.Zero(t, h.Pot)
}

// legalPassive picks check when free, call otherwise.
func legalPassive(h *Hand) Action {
	if h.CallAmount(h.ActingPos) > 0 {
		return Call
	}
	return Check
}

func TestAllInShortStackRunsBoardOut(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 8, "alice", "bob")
	require.NoError(t, g.StartHand("alice"))
	h := g.hand

	// Small blind shoves the whole stack, big blind calls all in.
	sb := h.SmallBlindPos
	require.NoError(t, h.Apply(sb, Raise, h.Seats[sb].Chips))
	require.True(t, h.Seats[sb].AllIn)

	bb := h.BigBlindPos
	require.NoError(t, h.Apply(bb, Call, 0))
	require.True(t, h.Seats[bb].AllIn)

	// Nobody can act, so the board runs out to showdown.
	require.True(t, h.Complete)
	require.Equal(t, Showdown, h.Phase)
	require.Len(t, h.Community, 5)
	assert.Equal(t, 2000, h.Seats[h.WinnerPos].Chips)
}

func TestChipConservationAcrossRandomHands(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 42, "alice", "bob", "carol", "dave")
	rng := randutil.New(1234)
	want := chipTotal(g)

	for hand := 0; hand < 50; hand++ {
		if err := g.StartHand("alice"); err != nil {
			require.ErrorIs(t, err, ErrNotEnoughPlayers)
			break
		}
		for g.HandInProgress() {
			h := g.hand
			pos := h.ActingPos
			var err error
			switch rng.IntN(4) {
			case 0:
				err = h.Apply(pos, Fold, 0)
			case 1:
				if h.CallAmount(pos) == 0 {
					err = h.Apply(pos, Check, 0)
				} else {
					err = h.Apply(pos, Call, 0)
				}
			case 2:
				if h.CallAmount(pos) > 0 {
					err = h.Apply(pos, Call, 0)
				} else {
					err = h.Apply(pos, Check, 0)
				}
			default:
				err = h.Apply(pos, Raise, h.MinRaiseBy(pos)+rng.IntN(50))
			}
			require.NoError(t, err)
			require.Equal(t, want, chipTotal(g), "conservation broken in hand %d", hand)
		}
		require.Equal(t, want, chipTotal(g), "conservation broken after hand %d", hand)
	}
}

func TestTopUpOnlyBetweenHands(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 9, "alice", "bob")
	require.ErrorIs(t, g.TopUp("bob", 0, 100), ErrUnauthorized)
	require.NoError(t, g.TopUp("alice", 0, 100))
	assert.Equal(t, 1100, g.Snapshot().Seats[0].Chips)

	require.NoError(t, g.StartHand("alice"))
	require.ErrorIs(t, g.TopUp("alice", 0, 100), ErrIllegalAction)
}

func TestPauseBlocksActions(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 10, "alice", "bob")
	require.NoError(t, g.StartHand("alice"))
	require.ErrorIs(t, g.Pause("bob"), ErrUnauthorized)
	require.NoError(t, g.Pause("alice"))

	err := g.Act(g.hand.Seats[g.hand.ActingPos].Index, Fold, 0)
	require.ErrorIs(t, err, ErrIllegalAction)

	require.NoError(t, g.Resume("alice"))
	assert.NoError(t, g.Act(g.hand.Seats[g.hand.ActingPos].Index, Fold, 0))
}

func TestJoinLimitsAndDuplicates(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.MaxPlayers = 2
	g, err := New("g1", "alice", settings, randutil.New(1), nil)
	require.NoError(t, err)

	_, err = g.Join("alice", false)
	require.NoError(t, err)
	_, err = g.Join("alice", false)
	require.ErrorIs(t, err, ErrIllegalAction)
	_, err = g.Join("bob", false)
	require.NoError(t, err)
	_, err = g.Join("carol", false)
	require.ErrorIs(t, err, ErrIllegalAction)
}

func TestSnapshotRedaction(t *testing.T) {
	t.Parallel()

	g := newTestGame(t, 11, "alice", "bob")
	require.NoError(t, g.StartHand("alice"))

	snap := g.Snapshot().Redacted(0)
	for _, s := range snap.Seats {
		if s.Index == 0 {
			assert.Len(t, s.HoleCards, 2)
		} else {
			assert.Empty(t, s.HoleCards)
		}
	}

	// After showdown, surviving hole cards are revealed to everyone.
	finishHandByFolding(t, g)
	snap = g.Snapshot()
	require.True(t, snap.Hand.Complete)
	revealed := snap.Redacted(-1)
	for _, s := range revealed.Seats {
		if s.Index == snap.Hand.WinnerSeat {
			assert.Len(t, s.HoleCards, 2)
		}
	}
}
