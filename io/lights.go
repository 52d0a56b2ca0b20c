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
	"fmt"
	"sync"
)

// Lights is the set of indicator lamps around the gate, plus the lamp
// that illuminates the ring's index mark during calibration.
type Lights struct {
	mu    sync.Mutex
	pins  []Setter
	cal   Setter
	lit   []bool
	calOn bool
}

// NewLights creates the indicator set. cal may be nil.
func NewLights(cal Setter, pins ...Setter) *Lights {
	return &Lights{pins: pins, cal: cal, lit: make([]bool, len(pins))}
}

// Count returns the number of indicators.
func (l *Lights) Count() int {
	return len(l.pins)
}

// Set turns an indicator on or off.
func (l *Lights) Set(index int, on bool) error {
	if index < 0 || index >= len(l.pins) {
		return fmt.Errorf("%d: no such indicator", index)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.pins[index].Set(level(on)); err != nil {
		return err
	}
	l.lit[index] = on
	return nil
}

// SetCalibration turns the calibration lamp on or off.
func (l *Lights) SetCalibration(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cal != nil {
		if err := l.cal.Set(level(on)); err != nil {
			return err
		}
	}
	l.calOn = on
	return nil
}

// Lit returns a copy of the indicator states.
func (l *Lights) Lit() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.lit...)
}

// Calibrating reports whether the calibration lamp is on.
func (l *Lights) Calibrating() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calOn
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
