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

package io

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

const stepperQueueSize = 20 // Size of queue for requests

// ErrStopped is returned for requests aborted by Stop.
var ErrStopped = errors.New("stepper stopped")

type msg struct {
	speed float64 // RPM
	steps int
	sync  chan error
}

// Stepper represents the ring stepper motor.
// Stepping is done in a background goroutine, and Step waits for
// the requested movement to complete so that each caller sees the
// motor at rest when Step returns.
// All step values are half-steps. The current step number is an absolute
// signed count referenced from 0 when the stepper is created.
type Stepper struct {
	pins     [4]Setter  // Pins for controlling coil outputs
	enable   Setter     // Optional driver enable pin
	enableOn int        // Value written to enable pin to enable the driver
	factor   float64    // Nanoseconds per step at 1 RPM
	mChan    chan msg   // channel for message requests
	stopChan chan bool  // channel for signalling resets.
	index    int        // Index to step sequence
	current  int64      // Current step number as an absolute number
	mu       sync.Mutex // Protects on and speed
	on       bool       // true if motor drivers on
	speed    float64    // RPM used for Step
	errMu    sync.Mutex // Protects err
	err      error      // First output error seen by the handler
}

// Half step sequence of outputs.
var sequence = [][]int{
	{1, 0, 0, 0},
	{1, 1, 0, 0},
	{0, 1, 0, 0},
	{0, 1, 1, 0},
	{0, 0, 1, 0},
	{0, 0, 1, 1},
	{0, 0, 0, 1},
	{1, 0, 0, 1},
}

// NewStepper creates a Stepper controlled by 4 coil pins.
// rev is the number of half-steps per revolution, used to convert
// the RPM into a per-step delay. speed is the initial RPM.
// enable may be nil if the driver has no enable line; activeLow
// selects the level that enables the driver. A failure to set the
// enable pin is reported by the next Step, Wait or Disable.
func NewStepper(rev int, speed float64, enable Setter, activeLow bool, pin1, pin2, pin3, pin4 Setter) *Stepper {
	s := new(Stepper)
	s.factor = float64(time.Second.Nanoseconds()*60) / float64(rev)
	s.speed = speed
	s.pins = [4]Setter{pin1, pin2, pin3, pin4}
	s.enable = enable
	s.enableOn = 1
	if activeLow {
		s.enableOn = 0
	}
	s.mChan = make(chan msg, stepperQueueSize)
	s.stopChan = make(chan bool)
	if enable != nil {
		if err := enable.Set(1 - s.enableOn); err != nil {
			s.setErr(err)
		}
	}
	go s.handler()
	return s
}

// Close stops the motor, removes power and frees any resources.
func (s *Stepper) Close() {
	s.Stop()
	s.Disable()
	close(s.mChan)
	close(s.stopChan)
}

// SetSpeed sets the RPM used by subsequent steps.
func (s *Stepper) SetSpeed(rpm float64) {
	s.mu.Lock()
	s.speed = rpm
	s.mu.Unlock()
}

// Position returns the current step number, an accumulated
// signed value with 0 as the starting location.
func (s *Stepper) Position() int64 {
	return atomic.LoadInt64(&s.current)
}

// Enable powers the driver and energises the coils at the current
// sequence index.
func (s *Stepper) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.on {
		return nil
	}
	if s.enable != nil {
		if err := s.enable.Set(s.enableOn); err != nil {
			return err
		}
	}
	if err := s.output(); err != nil {
		return err
	}
	s.on = true
	return nil
}

// Disable waits for any stepping to finish, then turns off the coils
// and the driver. An output error from the stepping is returned ahead
// of any error turning the outputs off.
func (s *Stepper) Disable() error {
	s.mu.Lock()
	on := s.on
	s.mu.Unlock()
	if !on {
		return s.pending()
	}
	err := s.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pins {
		if e := p.Set(0); e != nil && err == nil {
			err = e
		}
	}
	if s.enable != nil {
		if e := s.enable.Set(1 - s.enableOn); e != nil && err == nil {
			err = e
		}
	}
	s.on = false
	return err
}

// Step moves the motor the number of half-steps at the current speed
// and waits for the movement to complete. Positive values step
// clockwise, negative counter-clockwise. The driver is enabled if
// it is off.
func (s *Stepper) Step(halfSteps int) error {
	if halfSteps == 0 {
		return nil
	}
	if err := s.Enable(); err != nil {
		return err
	}
	s.mu.Lock()
	rpm := s.speed
	s.mu.Unlock()
	s.mChan <- msg{speed: rpm, steps: halfSteps}
	return s.Wait()
}

// Stop aborts any current stepping, and flushes all queued requests.
func (s *Stepper) Stop() {
	s.stopChan <- true
	s.Wait()
}

// Wait waits for all requests to complete, and returns the first
// output error seen since the last Wait.
func (s *Stepper) Wait() error {
	c := make(chan error, 1)
	s.mChan <- msg{sync: c}
	err := <-c
	s.errMu.Lock()
	if err == nil {
		err = s.err
	}
	s.err = nil
	s.errMu.Unlock()
	return err
}

// goroutine handler
// Listens on message channel, and runs the motor.
func (s *Stepper) handler() {
	for {
		select {
		case m, ok := <-s.mChan:
			if !ok {
				return
			}
			if m.steps != 0 {
				if s.step(m.speed, m.steps) {
					return
				}
			}
			if m.sync != nil {
				m.sync <- nil
			}
		case stop := <-s.stopChan:
			s.flush()
			if !stop {
				return
			}
		}
	}
}

// step drives the coils through the half-step sequence. A stop
// request aborts the sequence; a closed stop channel ends the handler.
func (s *Stepper) step(rpm float64, steps int) bool {
	inc := 1
	if steps < 0 {
		inc = -1
		steps = -steps
	}
	if rpm <= 0 {
		rpm = 1
	}
	delay := time.Duration(s.factor / rpm)
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for i := 0; i < steps; i++ {
		s.index = (s.index + inc) & 7
		if err := s.output(); err != nil {
			s.setErr(err)
			return false
		}
		atomic.AddInt64(&s.current, int64(inc))
		select {
		case stop := <-s.stopChan:
			s.flush()
			return !stop
		case <-ticker.C:
		}
	}
	return false
}

// pending returns and clears any output error not yet reported.
func (s *Stepper) pending() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	err := s.err
	s.err = nil
	return err
}

func (s *Stepper) setErr(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
}

// Flush all remaining actions from message channel.
func (s *Stepper) flush() {
	for {
		select {
		case m, ok := <-s.mChan:
			if !ok {
				return
			}
			if m.sync != nil {
				m.sync <- ErrStopped
			}
		default:
			return
		}
	}
}

// Set the GPIO outputs according to the current sequence index.
func (s *Stepper) output() error {
	seq := sequence[s.index]
	for i, p := range s.pins {
		if err := p.Set(seq[i]); err != nil {
			return err
		}
	}
	return nil
}
