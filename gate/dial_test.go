// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialPlan(t *testing.T) {
	cfg := DefaultConfig()
	r, err := newRig(cfg)
	require.NoError(t, err)
	r.home()
	r.c.mu.Lock()
	require.NoError(t, r.c.startDial([]int{5, 5, 20, 1, 38, 0, 0}))
	r.c.mu.Unlock()

	ticks, err := r.run(100)
	require.NoError(t, err)
	assert.Equal(t, 50, ticks)

	fwd, back := r.ring.sum()
	assert.Equal(t, 21*123, fwd)
	assert.Equal(t, 21*123, back)
	for _, s := range r.ring.steps {
		assert.Contains(t, []int{123, -123}, s)
	}
	locks := 0
	for _, e := range r.ev {
		if e == "arm locked" {
			locks++
		}
	}
	assert.Equal(t, 7, locks)
	assert.Empty(t, r.lights.lit())
	assert.False(t, r.ring.enabled)
	assert.False(t, r.arm.enabled)
	assert.Equal(t, 0, r.c.Status().Position)
	assert.Equal(t, cfg.EstablishHold, r.sleeps[len(r.sleeps)-1])
	assert.Contains(t, r.log, "19 backward steps remaining")
}

func TestDialLockSequence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LockIndicator = 4
	r, err := newRig(cfg)
	require.NoError(t, err)
	r.home()
	r.c.mu.Lock()
	require.NoError(t, r.c.startDial([]int{0, 0, 0, 0, 0, 0, 0}))
	r.c.mu.Unlock()
	r.ev = nil
	r.sleeps = nil

	require.NoError(t, r.c.Advance())
	assert.Equal(t, events{"arm on", "arm locked", "light 4 on", "light 1 on", "light 4 off", "arm retracted", "arm off"}, r.ev)
	assert.Equal(t, []time.Duration{cfg.ServoSettle, cfg.LockDwell, cfg.ServoSettle}, r.sleeps)
	assert.Equal(t, []int{1}, r.lights.lit())
	assert.Empty(t, r.ring.steps)
	assert.Equal(t, 1, r.c.Status().Index)
}

func TestDialHoldFinalLock(t *testing.T) {
	for _, hold := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.LockIndicator = 4
		cfg.HoldFinalLock = hold
		r, err := newRig(cfg)
		require.NoError(t, err)
		r.home()
		r.c.mu.Lock()
		require.NoError(t, r.c.startDial([]int{0, 0, 0, 0, 0, 0, 0}))
		r.c.mu.Unlock()
		for i := 0; i < PlanLength; i++ {
			require.NoError(t, r.c.Advance())
		}
		want := []int{0, 1, 2, 3, 6, 7, 8}
		if hold {
			want = []int{0, 1, 2, 3, 4, 6, 7, 8}
		}
		assert.Equal(t, want, r.lights.lit(), "hold %v", hold)
		assert.Equal(t, Dialing, r.c.Mode())

		require.NoError(t, r.c.Advance())
		assert.Equal(t, Idle, r.c.Mode())
		assert.Empty(t, r.lights.lit())
	}
}

func TestRandomDial(t *testing.T) {
	r, err := newRig(DefaultConfig(), 3, 17, 38, 1, 22, 9)
	require.NoError(t, err)
	r.home()
	require.NoError(t, r.c.RequestRandomDial())
	st := r.c.Status()
	assert.Equal(t, "DIAL", st.Mode)
	assert.Equal(t, []int{3, 17, 38, 1, 22, 9, 0}, st.Plan)
	assert.Contains(t, r.log, "Address: 3,17,38,1,22,9,0")

	assert.ErrorIs(t, r.c.RequestRandomDial(), ErrDialInProgress)
	assert.Equal(t, st.Plan, r.c.Status().Plan)

	_, err = r.run(1000)
	require.NoError(t, err)
	// A new dial starts from where the last one ended.
	require.NoError(t, r.c.RequestRandomDial())
	assert.Equal(t, Dialing, r.c.Mode())
}

func TestDialInterruptedByAnimation(t *testing.T) {
	r, err := newRig(DefaultConfig(), 10)
	require.NoError(t, err)
	r.home()
	require.NoError(t, r.c.RequestRandomDial())
	for i := 0; i < 3; i++ {
		require.NoError(t, r.c.Advance())
	}
	assert.True(t, r.ring.enabled)
	require.NoError(t, r.c.RequestAnimation())
	assert.Equal(t, Animating, r.c.Mode())
	assert.False(t, r.ring.enabled)
	st := r.c.Status()
	assert.Nil(t, st.Plan)
	assert.Equal(t, 3, st.Position, "position survives the plan")
}

func TestDialRingFault(t *testing.T) {
	r, err := newRig(DefaultConfig(), 10)
	require.NoError(t, err)
	r.home()
	require.NoError(t, r.c.RequestRandomDial())
	r.ring.err = errors.New("coil open")
	err = r.c.Advance()
	assert.ErrorIs(t, err, ErrHalted)
	assert.Equal(t, Dialing, r.c.Mode())
	assert.Equal(t, 0, r.c.Status().Position)
}

func TestDialFromAnimation(t *testing.T) {
	r, err := newRig(DefaultConfig(), 4)
	require.NoError(t, err)
	r.home()
	require.NoError(t, r.c.RequestAnimation())
	require.NoError(t, r.c.Advance())
	assert.NotEmpty(t, r.lights.lit())

	require.NoError(t, r.c.RequestRandomDial())
	st := r.c.Status()
	assert.Equal(t, "DIAL", st.Mode)
	assert.Equal(t, []int{4, 4, 4, 4, 4, 4, 0}, st.Plan)
	assert.Empty(t, r.lights.lit(), "animation lights are cleared")
	assert.Empty(t, st.Animation)
}
