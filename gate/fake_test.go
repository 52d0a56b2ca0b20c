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
	"fmt"
	"time"
)

// events is the ordered record of device calls shared by the fakes.
type events []string

func (e *events) add(format string, v ...interface{}) {
	*e = append(*e, fmt.Sprintf(format, v...))
}

type fakeRing struct {
	ev      *events
	steps   []int
	enabled bool
	err     error
}

func (r *fakeRing) Enable() error {
	r.ev.add("ring on")
	r.enabled = true
	return nil
}

func (r *fakeRing) Disable() error {
	r.ev.add("ring off")
	r.enabled = false
	return nil
}

func (r *fakeRing) Step(n int) error {
	if r.err != nil {
		return r.err
	}
	r.steps = append(r.steps, n)
	return nil
}

// sum returns the total of the positive and the negative steps.
func (r *fakeRing) sum() (fwd, back int) {
	for _, s := range r.steps {
		if s > 0 {
			fwd += s
		} else {
			back -= s
		}
	}
	return
}

type fakeArm struct {
	ev      *events
	pos     ArmPosition
	enabled bool
	err     error
}

func (a *fakeArm) Enable() error {
	a.ev.add("arm on")
	a.enabled = true
	return nil
}

func (a *fakeArm) Disable() error {
	a.ev.add("arm off")
	a.enabled = false
	return nil
}

func (a *fakeArm) MoveTo(p ArmPosition) error {
	if a.err != nil {
		return a.err
	}
	a.ev.add("arm %s", p)
	a.pos = p
	return nil
}

// fakeSensor returns the readings in order, then repeats the last one.
type fakeSensor struct {
	readings []int
	reads    int
	err      error
}

func (s *fakeSensor) Read() (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.reads++
	if len(s.readings) == 0 {
		return 0, nil
	}
	v := s.readings[0]
	if len(s.readings) > 1 {
		s.readings = s.readings[1:]
	}
	return v, nil
}

type fakeLights struct {
	ev   *events
	on   []bool
	cal  bool
	sets int
	err  error
}

func newFakeLights(ev *events, n int) *fakeLights {
	return &fakeLights{ev: ev, on: make([]bool, n)}
}

func (l *fakeLights) Count() int {
	return len(l.on)
}

func (l *fakeLights) Set(i int, on bool) error {
	if l.err != nil {
		return l.err
	}
	l.sets++
	if on && !l.on[i] {
		l.ev.add("light %d on", i)
	} else if !on && l.on[i] {
		l.ev.add("light %d off", i)
	}
	l.on[i] = on
	return nil
}

func (l *fakeLights) SetCalibration(on bool) error {
	l.cal = on
	return nil
}

// lit returns the indices of the lit indicators.
func (l *fakeLights) lit() []int {
	var r []int
	for i, on := range l.on {
		if on {
			r = append(r, i)
		}
	}
	return r
}

type fakeSymbols []int

func (f *fakeSymbols) RandomSymbol() int {
	v := (*f)[0]
	*f = append((*f)[1:], v)
	return v
}

type lines []string

func (l *lines) Printf(format string, v ...interface{}) {
	*l = append(*l, fmt.Sprintf(format, v...))
}

// rig is a controller wired to fakes.
type rig struct {
	ev     events
	ring   *fakeRing
	arm    *fakeArm
	sensor *fakeSensor
	lights *fakeLights
	log    lines
	sleeps []time.Duration
	c      *Controller
}

func newRig(cfg Config, symbols ...int) (*rig, error) {
	r := &rig{}
	r.ring = &fakeRing{ev: &r.ev}
	r.arm = &fakeArm{ev: &r.ev}
	r.sensor = &fakeSensor{}
	r.lights = newFakeLights(&r.ev, 9)
	if len(symbols) == 0 {
		symbols = []int{1}
	}
	s := fakeSymbols(symbols)
	var err error
	r.c, err = NewController(cfg, Devices{
		Ring:    r.ring,
		Chevron: r.arm,
		Sensor:  r.sensor,
		Lights:  r.lights,
		Symbols: &s,
		Log:     &r.log,
		Sleep:   func(d time.Duration) { r.sleeps = append(r.sleeps, d) },
	})
	return r, err
}

// run advances the controller until it is Idle, or limit ticks pass.
func (r *rig) run(limit int) (int, error) {
	for i := 1; i <= limit; i++ {
		if err := r.c.Advance(); err != nil {
			return i, err
		}
		if r.c.Mode() == Idle {
			return i, nil
		}
	}
	return limit, fmt.Errorf("still %s after %d ticks", r.c.Mode(), limit)
}

// home marks the ring as homed at position zero.
func (r *rig) home() {
	r.c.mu.Lock()
	r.c.homed = true
	r.c.position = 0
	r.c.mu.Unlock()
}
