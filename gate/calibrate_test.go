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

func TestCalibration(t *testing.T) {
	cfg := DefaultConfig()
	r, err := newRig(cfg)
	require.NoError(t, err)
	// Warm-up read, the ambient samples, then the homing reads.
	r.sensor.readings = []int{0, 80, 85, 90, 95, 100, 105, 90, 85, 95, 100, 50, 60, 200}

	require.NoError(t, r.c.RequestRandomDial())
	assert.Equal(t, Calibrating, r.c.Mode())
	assert.Nil(t, r.c.Status().Plan, "dial request is discarded")

	ticks, err := r.run(100)
	require.NoError(t, err)
	assert.Equal(t, 13, ticks)

	want := []int{}
	for i := 0; i < 10; i++ {
		want = append(want, 61)
	}
	want = append(want, 1, 1, 1)
	assert.Equal(t, want, r.ring.steps)
	assert.False(t, r.ring.enabled)
	assert.False(t, r.lights.cal)

	st := r.c.Status()
	assert.Equal(t, "IDLE", st.Mode)
	assert.True(t, st.Homed)
	assert.Equal(t, 0, st.Position)
	assert.Equal(t, 138.75, st.Threshold)
	assert.Equal(t, []string{"Light average: 92.50", "Light limit: 138.75"}, []string(r.log[12:14]))
	assert.Contains(t, r.log, "Position calibrated (3 steps)")
	assert.Equal(t, []time.Duration{cfg.WarmUp, cfg.WarmUp}, r.sleeps)
}

func TestCalibrationRefusesRequests(t *testing.T) {
	r, err := newRig(DefaultConfig())
	require.NoError(t, err)
	r.sensor.readings = []int{50}
	require.NoError(t, r.c.RequestRandomDial())
	require.NoError(t, r.c.Advance())

	assert.ErrorIs(t, r.c.RequestAnimation(), ErrCalibrating)
	assert.ErrorIs(t, r.c.RequestRandomDial(), ErrCalibrating)
	assert.Equal(t, Calibrating, r.c.Mode())
	assert.Contains(t, r.log, "/!\\ Calibration in progress")
}

func TestCalibrationHomingLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HomingLimit = 5
	r, err := newRig(cfg)
	require.NoError(t, err)
	r.sensor.readings = []int{50}
	require.NoError(t, r.c.RequestRandomDial())
	var last error
	for i := 0; i < cfg.Samples+cfg.HomingLimit; i++ {
		last = r.c.Advance()
	}
	assert.ErrorIs(t, last, ErrCalibrationFailed)
	assert.NotErrorIs(t, last, ErrHalted)
	assert.Equal(t, Idle, r.c.Mode())
	assert.False(t, r.c.Status().Homed)
	assert.False(t, r.lights.cal)
	// The gate carries on; another dial request restarts calibration.
	assert.NoError(t, r.c.Advance())
	require.NoError(t, r.c.RequestRandomDial())
	assert.Equal(t, Calibrating, r.c.Mode())
}

func TestCalibrationSensorFault(t *testing.T) {
	r, err := newRig(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, r.c.RequestRandomDial())
	r.sensor.err = errors.New("i2c timeout")

	err = r.c.Advance()
	assert.ErrorIs(t, err, ErrHalted)
	assert.Contains(t, err.Error(), "i2c timeout")
	assert.Equal(t, Calibrating, r.c.Mode(), "halted in place")

	assert.Equal(t, err, r.c.Advance())
	assert.Equal(t, err, r.c.RequestAnimation())
	assert.Equal(t, err, r.c.RequestRandomDial())
	assert.Equal(t, err.Error(), r.c.Status().Fault)
}
