package moderation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from   State
		action Action
		want   State
		err    error
	}{
		{Pending, Approve, Approved, nil},
		{Approved, Approve, Approved, nil},
		{Featured, Approve, Featured, nil},
		{Approved, Revoke, Pending, nil},
		{Featured, Revoke, Pending, nil},
		{Pending, Revoke, Pending, nil},
		{Approved, Feature, Featured, nil},
		{Featured, Feature, Featured, nil},
		{Pending, Feature, Pending, ErrNotApproved},
		{Featured, Unfeature, Approved, nil},
		{Approved, Unfeature, Approved, nil},
		{Pending, Unfeature, Pending, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := Next(tt.from, tt.action)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRevokeFeaturedClearsBothFlags(t *testing.T) {
	s, err := Next(Featured, Revoke)
	require.NoError(t, err)

	approved, featured := s.Flags()
	assert.False(t, approved)
	assert.False(t, featured)
}

func TestFeaturedImpliesApprovedForAnySequence(t *testing.T) {
	actions := []Action{Approve, Revoke, Feature, Unfeature}
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		s := Pending
		for step := 0; step < 25; step++ {
			s, _ = Next(s, actions[rng.Intn(len(actions))])
			approved, featured := s.Flags()
			require.False(t, featured && !approved, "state %s broke the invariant", s)
			require.Equal(t, s, StateOf(approved, featured))
		}
	}
}

func TestStateOfDanglingFeature(t *testing.T) {
	assert.Equal(t, Pending, StateOf(false, true))
}

func TestNextImage(t *testing.T) {
	f, err := NextImage(false, Feature)
	require.NoError(t, err)
	assert.True(t, f)

	f, err = NextImage(true, Unfeature)
	require.NoError(t, err)
	assert.False(t, f)

	f, err = NextImage(true, Revoke)
	require.ErrorIs(t, err, ErrUnsupportedAction)
	assert.True(t, f)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("feature")
	require.NoError(t, err)
	assert.Equal(t, Feature, a)

	_, err = ParseAction("publish")
	require.ErrorIs(t, err, ErrUnknownAction)
}
