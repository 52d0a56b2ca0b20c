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
	"time"
)

// PWM is a pulse width modulated output.
type PWM interface {
	Close()
	Set(period, pulse time.Duration) error
}

type pwmMsg struct {
	period time.Duration
	pulse  time.Duration
	stop   chan bool
}

// SwPwm generates PWM on a GPIO pin from a goroutine.
type SwPwm struct {
	pin Setter
	c   chan pwmMsg
}

// NewSwPWM creates a new s/w PWM controller.
func NewSwPWM(pin Setter) *SwPwm {
	p := new(SwPwm)
	p.pin = pin
	p.c = make(chan pwmMsg, 1)
	go p.handler()
	return p
}

// Close closes the PWM controller
func (p *SwPwm) Close() {
	sc := make(chan bool)
	p.c <- pwmMsg{stop: sc}
	<-sc
	close(sc)
	close(p.c)
}

// Set sets the PWM period and high pulse width. The changes take
// place at the end of the current period.
func (p *SwPwm) Set(period, pulse time.Duration) error {
	if err := checkPulse(period, pulse); err != nil {
		return err
	}
	p.c <- pwmMsg{period: period, pulse: pulse}
	return nil
}

// goroutine handler
// Listens on message channel, and runs the PWM.
func (p *SwPwm) handler() {
	var on, off time.Duration
	off = ServoPeriod
	current := 0
	p.pin.Set(0)
	for {
		if on != 0 {
			if current != 1 {
				p.pin.Set(1)
				current = 1
			}
			time.Sleep(on)
		}
		if off != 0 {
			if current != 0 {
				p.pin.Set(0)
				current = 0
			}
			time.Sleep(off)
		}
		// Check for new parameters after each cycle.
		select {
		case m := <-p.c:
			if m.stop != nil {
				p.pin.Set(0)
				m.stop <- true
				return
			}
			on = m.pulse
			off = m.period - m.pulse
		default:
		}
	}
}
