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

// Package sim simulates the gate hardware: a ring with an index mark
// seen by a light sensor, the chevron lock arm and the indicators.

package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/aamcrae/gate/gate"
	"github.com/aamcrae/gate/io"
)

const (
	ambient   = 60  // Sensor reading away from the mark
	bright    = 420 // Sensor reading on the mark when lit
	markWidth = 20  // Motor steps over which the mark is seen
)

// Gate is the simulated prop. Ring positions are absolute motor
// steps modulo one revolution.
type Gate struct {
	Lights *io.Lights

	mu     sync.Mutex
	total  int // Motor steps per revolution
	steps  int // Motor steps per symbol
	mark   int // Motor step of the index mark
	pos    int
	reads  int
	ringOn bool
	armOn  bool
	arm    gate.ArmPosition
	locks  int
	delay  time.Duration // Per step delay
}

type nopPin struct{}

func (nopPin) Set(int) error { return nil }

// New creates a simulated prop for the configuration, with the index
// mark at the given motor step. delay slows each motor step.
func New(cfg gate.Config, mark int, delay time.Duration) *Gate {
	pins := make([]io.Setter, 9)
	for i := range pins {
		pins[i] = nopPin{}
	}
	total := cfg.Symbols * cfg.StepsPerSymbol
	return &Gate{
		Lights: io.NewLights(nopPin{}, pins...),
		total:  total,
		steps:  cfg.StepsPerSymbol,
		mark:   gate.Wrap(mark, total),
		delay:  delay,
	}
}

// Devices returns the controller ports backed by the simulation.
func (g *Gate) Devices(log gate.Logger) gate.Devices {
	return gate.Devices{
		Ring:    (*ring)(g),
		Chevron: (*arm)(g),
		Sensor:  g,
		Lights:  g.Lights,
		Log:     log,
	}
}

// Read returns the light level at the sensor. The mark is only
// bright while the calibration light is on.
func (g *Gate) Read() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reads++
	if g.Lights.Calibrating() && gate.Wrap(g.pos-g.mark, g.total) < markWidth {
		return bright, nil
	}
	return ambient + (g.reads%5)*4, nil
}

// Symbol returns the symbol under the chevron, counted from the mark.
// ok is false if the ring is between symbols.
func (g *Gate) Symbol() (symbol int, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d := gate.Wrap(g.pos-g.mark, g.total)
	return d / g.steps, d%g.steps == 0
}

// Locks returns the number of times the arm has locked.
func (g *Gate) Locks() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locks
}

// Idle reports whether both motors are off.
func (g *Gate) Idle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.ringOn && !g.armOn
}

func (g *Gate) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("ring %d/%d, arm %s", g.pos, g.total, g.arm)
}

type ring Gate

func (r *ring) Enable() error {
	r.mu.Lock()
	r.ringOn = true
	r.mu.Unlock()
	return nil
}

func (r *ring) Disable() error {
	r.mu.Lock()
	r.ringOn = false
	r.mu.Unlock()
	return nil
}

// Step moves the ring, one motor step at a time.
func (r *ring) Step(n int) error {
	inc := 1
	if n < 0 {
		inc, n = -1, -n
	}
	for i := 0; i < n; i++ {
		r.mu.Lock()
		if !r.ringOn {
			r.mu.Unlock()
			return fmt.Errorf("ring stepped while disabled")
		}
		r.pos = gate.Wrap(r.pos+inc, r.total)
		r.mu.Unlock()
		if r.delay > 0 {
			time.Sleep(r.delay)
		}
	}
	return nil
}

type arm Gate

func (a *arm) Enable() error {
	a.mu.Lock()
	a.armOn = true
	a.mu.Unlock()
	return nil
}

func (a *arm) Disable() error {
	a.mu.Lock()
	a.armOn = false
	a.mu.Unlock()
	return nil
}

// MoveTo moves the arm. Locking the arm while the ring is between
// symbols would jam it.
func (a *arm) MoveTo(p gate.ArmPosition) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p == gate.Locked {
		if gate.Wrap(a.pos-a.mark, a.total)%a.steps != 0 {
			return fmt.Errorf("arm jammed at ring step %d", a.pos)
		}
		a.locks++
	}
	a.arm = p
	return nil
}
