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

// Gate mode controller.

package gate

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	ErrCalibrating       = errors.New("calibration in progress")
	ErrDialInProgress    = errors.New("dial in progress")
	ErrHalted            = errors.New("halted")
	ErrCalibrationFailed = errors.New("calibration failed")
)

// engine is the sub-state owned by the active mode. Switching mode
// replaces the engine, discarding the previous sub-state.
type engine interface {
	mode() Mode
	step(c *Controller) error
}

type idle struct{}

func (idle) mode() Mode               { return Idle }
func (idle) step(c *Controller) error { return nil }

// Controller owns the gate's mode and arbitrates between the
// calibration, dialing and animation engines.
// Advance is called once per scheduler tick and performs a single unit
// of work for the active engine. Commands may arrive from other
// goroutines and are applied between ticks.
type Controller struct {
	cfg Config
	dev Devices

	mu        sync.Mutex // Guards everything below
	state     engine
	homed     bool    // Ring position zero has been found
	threshold float64 // Last learnt detection threshold
	position  int     // Symbol currently under the chevron
	ticks     uint64
	fault     error
}

// NewController creates a Controller in Idle mode. The ring is not yet homed.
func NewController(cfg Config, dev Devices) (*Controller, error) {
	if dev.Ring == nil || dev.Chevron == nil || dev.Sensor == nil || dev.Lights == nil {
		return nil, fmt.Errorf("missing device")
	}
	if err := cfg.Validate(dev.Lights.Count()); err != nil {
		return nil, err
	}
	if dev.Log == nil {
		dev.Log = log.Default()
	}
	if dev.Sleep == nil {
		dev.Sleep = time.Sleep
	}
	if dev.Symbols == nil {
		dev.Symbols = NewRandomSymbols(cfg.Symbols, time.Now().UnixNano())
	}
	c := &Controller{cfg: cfg, dev: dev, state: idle{}}
	return c, nil
}

// Init parks the chevron lock arm.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dev.Chevron.MoveTo(Retracted); err != nil {
		return err
	}
	if err := c.dev.Chevron.Enable(); err != nil {
		return err
	}
	c.dev.Sleep(c.cfg.ServoSettle)
	if err := c.dev.Chevron.Disable(); err != nil {
		return err
	}
	c.dev.Log.Printf("Ready")
	return nil
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.mode()
}

// RequestAnimation starts the light animations, or moves on to the
// next pattern if already animating.
func (c *Controller) RequestAnimation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fault != nil {
		return c.fault
	}
	if a, ok := c.state.(*animation); ok {
		a.next(c.cfg.Patterns)
		c.dev.Log.Printf("Start animation %d", a.pattern+1)
		return c.clearLights()
	}
	if err := c.setMode(&animation{}); err != nil {
		return err
	}
	c.dev.Log.Printf("Start animation 1")
	return nil
}

// RequestRandomDial dials a random address. If the ring has not been
// homed the request is discarded and calibration is started instead.
// A dial may start from Idle or from Animating, which it interrupts;
// while a plan is being dialled the request fails with ErrDialInProgress.
func (c *Controller) RequestRandomDial() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fault != nil {
		return c.fault
	}
	if !c.homed {
		return c.setMode(&calibration{})
	}
	if c.state.mode() == Dialing {
		c.dev.Log.Printf("/!\\ Dial in progress")
		return ErrDialInProgress
	}
	plan := make([]int, 0, PlanLength)
	for i := 0; i < AddressLength; i++ {
		plan = append(plan, Wrap(c.dev.Symbols.RandomSymbol(), c.cfg.Symbols))
	}
	plan = append(plan, Origin)
	return c.startDial(plan)
}

// startDial switches to dialing the given plan.
func (c *Controller) startDial(plan []int) error {
	if err := c.setMode(&dialing{plan: plan}); err != nil {
		return err
	}
	c.dev.Log.Printf("Address: %s", formatPlan(plan))
	return nil
}

// Advance performs one unit of work for the current mode.
// A driver failure halts the controller in its current mode; every later
// call returns the same error.
func (c *Controller) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fault != nil {
		return c.fault
	}
	c.ticks++
	m := c.state.mode()
	err := c.state.step(c)
	if err == nil || errors.Is(err, ErrCalibrationFailed) {
		return err
	}
	c.fault = fmt.Errorf("%w: %s: %v", ErrHalted, m, err)
	c.dev.Log.Printf("/!\\ %v", c.fault)
	return c.fault
}

// setMode changes to a new mode, leaving all outputs off and the
// motors disabled. Changes are refused while calibrating.
func (c *Controller) setMode(next engine) error {
	if c.state.mode() == Calibrating {
		c.dev.Log.Printf("/!\\ Calibration in progress")
		return ErrCalibrating
	}
	c.dev.Log.Printf("Change mode to: %s", next.mode())
	c.state = next
	err := c.safe()
	if err != nil {
		c.fault = fmt.Errorf("%w: %s: %v", ErrHalted, next.mode(), err)
		return c.fault
	}
	return nil
}

// safe turns every indicator off and disables both motors.
func (c *Controller) safe() error {
	if err := c.clearLights(); err != nil {
		return err
	}
	if err := c.dev.Ring.Disable(); err != nil {
		return fmt.Errorf("ring disable: %w", err)
	}
	if err := c.dev.Chevron.Disable(); err != nil {
		return fmt.Errorf("chevron disable: %w", err)
	}
	return nil
}

// allLights sets every ring indicator.
func (c *Controller) allLights(on bool) error {
	for i := 0; i < c.dev.Lights.Count(); i++ {
		if err := c.dev.Lights.Set(i, on); err != nil {
			return fmt.Errorf("indicator %d: %w", i, err)
		}
	}
	return nil
}

func (c *Controller) clearLights() error {
	return c.allLights(false)
}

// step moves the ring by a number of motor steps.
func (c *Controller) step(steps int) error {
	if err := c.dev.Ring.Step(steps); err != nil {
		return fmt.Errorf("ring step: %w", err)
	}
	return nil
}

func formatPlan(plan []int) string {
	s := ""
	for i, p := range plan {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprint(p)
	}
	return s
}
