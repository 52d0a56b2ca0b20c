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

package sim

import (
	"log"
	"testing"
	"time"

	"github.com/aamcrae/gate/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSim(t *testing.T, mark int) (*Gate, *gate.Controller) {
	cfg := gate.DefaultConfig()
	cfg.HomingLimit = cfg.Symbols * cfg.StepsPerSymbol
	g := New(cfg, mark, 0)
	dev := g.Devices(log.New(testWriter{t}, "", 0))
	dev.Sleep = func(time.Duration) {}
	dev.Symbols = gate.NewRandomSymbols(cfg.Symbols, 42)
	c, err := gate.NewController(cfg, dev)
	require.NoError(t, err)
	require.NoError(t, c.Init())
	return g, c
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(b []byte) (int, error) {
	w.t.Log(string(b))
	return len(b), nil
}

func runIdle(t *testing.T, c *gate.Controller) int {
	for i := 1; i < 100000; i++ {
		require.NoError(t, c.Advance())
		if c.Mode() == gate.Idle {
			return i
		}
	}
	t.Fatalf("controller stuck in %s", c.Mode())
	return 0
}

func TestCalibrateAndDial(t *testing.T) {
	g, c := newSim(t, 2000)

	require.NoError(t, c.RequestRandomDial())
	runIdle(t, c)
	st := c.Status()
	require.True(t, st.Homed)
	assert.Equal(t, 102.0, st.Threshold)
	sym, ok := g.Symbol()
	assert.True(t, ok)
	assert.Equal(t, 0, sym)
	assert.False(t, g.Lights.Calibrating())

	for n := 1; n <= 3; n++ {
		require.NoError(t, c.RequestRandomDial())
		plan := c.Status().Plan
		require.Len(t, plan, gate.PlanLength)
		runIdle(t, c)
		assert.Equal(t, n*gate.PlanLength, g.Locks())
		sym, ok = g.Symbol()
		assert.True(t, ok)
		assert.Equal(t, gate.Origin, sym, "dial ends at the point of origin")
		assert.True(t, g.Idle())
		assert.Equal(t, make([]bool, 9), g.Lights.Lit())
	}
}

func TestCalibrationFromAnywhere(t *testing.T) {
	for _, mark := range []int{0, 300, 4700} {
		g, c := newSim(t, mark)
		require.NoError(t, c.RequestRandomDial())
		runIdle(t, c)
		require.True(t, c.Status().Homed, "mark %d", mark)
		sym, ok := g.Symbol()
		assert.True(t, ok)
		assert.Equal(t, 0, sym)
	}
}

func TestAnimate(t *testing.T) {
	g, c := newSim(t, 2000)
	require.NoError(t, c.RequestAnimation())
	for i := 0; i < 20; i++ {
		require.NoError(t, c.Advance())
	}
	assert.Equal(t, []bool{false, true, false, false, false, false, false, false, false}, g.Lights.Lit())
	assert.Equal(t, "ring 0/4797, arm retracted", g.String())
}
