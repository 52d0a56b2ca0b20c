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

// Interfaces to the hardware driving the gate.

package gate

import (
	"math/rand"
	"sync"
	"time"
)

// Ring drives the stepper motor rotating the symbol ring.
// Steps are signed motor steps; positive is clockwise.
type Ring interface {
	Enable() error
	Disable() error
	Step(steps int) error
}

// ArmPosition is a position of the chevron lock arm.
type ArmPosition int

const (
	Retracted ArmPosition = iota
	Locked
)

func (p ArmPosition) String() string {
	if p == Locked {
		return "locked"
	}
	return "retracted"
}

// Chevron drives the servo moving the chevron lock arm.
type Chevron interface {
	Enable() error
	Disable() error
	MoveTo(ArmPosition) error
}

// LightSensor reads the photoresistor used for homing. Larger is brighter.
type LightSensor interface {
	Read() (int, error)
}

// Indicators are the lights around the ring, addressed in ring order,
// plus the calibration light.
type Indicators interface {
	Count() int
	Set(index int, on bool) error
	SetCalibration(on bool) error
}

// Symbols is the entropy source for address symbols.
// RandomSymbol returns a value in [1, N).
type Symbols interface {
	RandomSymbol() int
}

// Logger receives status lines. A *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Devices bundles the ports used by a Controller.
// Log, Symbols and Sleep may be left nil to get the defaults.
type Devices struct {
	Ring    Ring
	Chevron Chevron
	Sensor  LightSensor
	Lights  Indicators
	Symbols Symbols
	Log     Logger
	Sleep   func(time.Duration)
}

// RandomSymbols picks symbols uniformly from [1, n).
type RandomSymbols struct {
	n   int
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSymbols creates a symbol source for a ring of n symbols.
func NewRandomSymbols(n int, seed int64) *RandomSymbols {
	return &RandomSymbols{n: n, rnd: rand.New(rand.NewSource(seed))}
}

// RandomSymbol returns a symbol other than the point of origin.
func (r *RandomSymbols) RandomSymbol() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return 1 + r.rnd.Intn(r.n-1)
}
