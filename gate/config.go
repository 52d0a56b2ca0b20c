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
	"strconv"
	"strings"
	"time"

	"github.com/aamcrae/config"
)

const (
	AddressLength = 6                 // Randomly chosen symbols in a plan
	PlanLength    = AddressLength + 1 // Address plus the point of origin
	Origin        = 0                 // Point of origin, always dialled last
)

// Config holds the tunable parameters of the gate, read from a
// configuration file section.
type Config struct {
	Symbols         int           // Symbol slots on the ring
	StepsPerSymbol  int           // Motor steps per symbol slot
	Samples         int           // Ambient light samples taken when calibrating
	ThresholdFloor  float64       // Minimum detection threshold
	ThresholdMargin float64       // Multiplier applied to the ambient average
	HomingLimit     int           // Maximum homing steps, 0 for no limit
	WarmUp          time.Duration // Delay before sampling and again before homing
	ServoSettle     time.Duration // Time allowed for the lock arm to move
	LockDwell       time.Duration // Time a chevron is held locked
	EstablishHold   time.Duration // Time all lights stay lit once the address is locked
	DialOrder       []int         // Indicator lit for each plan index
	LockIndicator   int           // Indicator shared by every lock
	HoldFinalLock   bool          // Keep the lock indicator lit after the final chevron
	Patterns        int           // Number of animation patterns cycled through
	Tick            time.Duration // Scheduler tick
}

// HardwareConfig describes how the prop is wired.
type HardwareConfig struct {
	Coils            [4]int        // GPIOs for the stepper coils
	Speed            float64       // Stepper speed in RPM
	Rev              int           // Motor steps per revolution
	Enable           int           // GPIO enabling the stepper driver, -1 if none
	EnableLow        bool          // Stepper enable is active low
	PWM              int           // Hardware PWM unit for the servo, -1 for software PWM
	ServoPin         int           // GPIO for software PWM
	ServoEnable      int           // GPIO powering the servo, -1 if none
	RetractedAngle   int           // Servo angle with the arm retracted
	LockedAngle      int           // Servo angle with the arm locked
	Lights           []int         // GPIOs for the ring indicators, in ring order
	CalibrationLight int           // GPIO for the calibration light
	Bus              string        // I²C bus of the light sensor ADC, "" for the default
	ADCAddr          int           // I²C address of the ADC
	ADCChannel       int           // ADC input the photoresistor is on
	Button           int           // GPIO for the push button, -1 if none
	LongPress        time.Duration // Press duration that requests a dial
}

// DefaultConfig returns the parameters of the standard 39 symbol prop.
func DefaultConfig() Config {
	return Config{
		Symbols:         39,
		StepsPerSymbol:  123,
		Samples:         10,
		ThresholdFloor:  100,
		ThresholdMargin: 1.5,
		WarmUp:          time.Second,
		ServoSettle:     600 * time.Millisecond,
		LockDwell:       time.Second,
		EstablishHold:   5 * time.Second,
		DialOrder:       []int{1, 2, 3, 6, 7, 8, 0},
		LockIndicator:   0,
		HoldFinalLock:   true,
		Patterns:        len(patterns),
		Tick:            10 * time.Millisecond,
	}
}

// Validate checks the parameters against a ring of the given number of indicators.
func (c *Config) Validate(indicators int) error {
	if c.Symbols < 2 {
		return fmt.Errorf("symbols: %d is too few", c.Symbols)
	}
	if c.StepsPerSymbol < 2 {
		return fmt.Errorf("steps: %d is too few", c.StepsPerSymbol)
	}
	if c.Samples < 1 {
		return fmt.Errorf("samples: must be at least 1")
	}
	if c.HomingLimit < 0 {
		return fmt.Errorf("homing: negative limit")
	}
	if len(c.DialOrder) != PlanLength {
		return fmt.Errorf("dial-order: need %d indicators, have %d", PlanLength, len(c.DialOrder))
	}
	for _, i := range append([]int{c.LockIndicator}, c.DialOrder...) {
		if i < 0 || i >= indicators {
			return fmt.Errorf("indicator %d out of range (%d indicators)", i, indicators)
		}
	}
	if c.Tick <= 0 {
		return fmt.Errorf("tick: must be positive")
	}
	if c.Patterns < 1 || c.Patterns > len(patterns) {
		return fmt.Errorf("patterns: must be between 1 and %d", len(patterns))
	}
	return nil
}

// section is the part of a config file section used here.
type section interface {
	GetArg(string) (string, error)
	Parse(string, string, ...interface{}) (int, error)
}

// ParseConfig reads the gate parameters from a config file section.
// Keys that are absent keep their default value.
// Sample config:
//  [gate]
//  symbols=39               # symbol slots on the ring
//  steps=123                # motor steps per symbol
//  samples=10               # light samples when calibrating
//  threshold=100,1.5        # threshold floor and margin
//  homing=0                 # homing step limit, 0 for none
//  warmup=1s
//  settle=600ms             # servo settle time
//  dwell=1s                 # lock hold time
//  establish=5s             # all lights hold time when dialled
//  dial-order=1,2,3,6,7,8,0 # indicator for each chevron
//  lock=0                   # lock indicator
//  hold-final=true          # lock indicator stays lit after the last chevron
//  patterns=6               # animation patterns
//  tick=10ms
func ParseConfig(conf *config.Config, name string) (*Config, error) {
	s := conf.GetSection(name)
	if s == nil {
		return nil, fmt.Errorf("no config for %s", name)
	}
	c := DefaultConfig()
	ints := []struct {
		key string
		v   *int
	}{
		{"symbols", &c.Symbols},
		{"steps", &c.StepsPerSymbol},
		{"samples", &c.Samples},
		{"homing", &c.HomingLimit},
		{"lock", &c.LockIndicator},
		{"patterns", &c.Patterns},
	}
	for _, e := range ints {
		if err := intArg(s, e.key, e.v); err != nil {
			return nil, err
		}
	}
	durations := []struct {
		key string
		v   *time.Duration
	}{
		{"warmup", &c.WarmUp},
		{"settle", &c.ServoSettle},
		{"dwell", &c.LockDwell},
		{"establish", &c.EstablishHold},
		{"tick", &c.Tick},
	}
	for _, e := range durations {
		if err := durationArg(s, e.key, e.v); err != nil {
			return nil, err
		}
	}
	if _, ok := arg(s, "threshold"); ok {
		n, err := s.Parse("threshold", "%f,%f", &c.ThresholdFloor, &c.ThresholdMargin)
		if err != nil {
			return nil, fmt.Errorf("threshold: %v", err)
		}
		if n != 2 {
			return nil, fmt.Errorf("threshold: argument count")
		}
	}
	if v, ok := arg(s, "dial-order"); ok {
		order, err := intList(v)
		if err != nil {
			return nil, fmt.Errorf("dial-order: %v", err)
		}
		c.DialOrder = order
	}
	if v, ok := arg(s, "hold-final"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("hold-final: %v", err)
		}
		c.HoldFinalLock = b
	}
	return &c, nil
}

// ParseHardware reads the prop wiring from a config file section.
// Sample config:
//  [hardware]
//  stepper=17,27,22,23,60   # coil GPIOs and speed in RPM
//  rev=800                  # motor steps per revolution
//  stepper-enable=24,low    # driver enable GPIO and polarity
//  servo=0,13,105,75        # PWM unit (-1 for software PWM), GPIO, retracted and locked angles
//  servo-enable=11
//  lights=6,9,8,7,10,3,2,5,4
//  calibration-light=20
//  adc=,0x48,0              # I²C bus, address and channel of the light sensor ADC
//  button=21,500ms          # button GPIO and long press duration
func ParseHardware(conf *config.Config, name string) (*HardwareConfig, error) {
	s := conf.GetSection(name)
	if s == nil {
		return nil, fmt.Errorf("no config for %s", name)
	}
	h := HardwareConfig{
		Rev:         800,
		Enable:      -1,
		ServoEnable: -1,
		Button:      -1,
		LongPress:   500 * time.Millisecond,
	}
	n, err := s.Parse("stepper", "%d,%d,%d,%d,%f", &h.Coils[0], &h.Coils[1], &h.Coils[2], &h.Coils[3], &h.Speed)
	if err != nil {
		return nil, fmt.Errorf("stepper: %v", err)
	}
	if n != 5 {
		return nil, fmt.Errorf("invalid stepper arguments")
	}
	if err := intArg(s, "rev", &h.Rev); err != nil {
		return nil, err
	}
	if v, ok := arg(s, "stepper-enable"); ok {
		f := strings.Split(v, ",")
		if h.Enable, err = strconv.Atoi(strings.TrimSpace(f[0])); err != nil {
			return nil, fmt.Errorf("stepper-enable: %v", err)
		}
		h.EnableLow = len(f) > 1 && strings.TrimSpace(f[1]) == "low"
	}
	n, err = s.Parse("servo", "%d,%d,%d,%d", &h.PWM, &h.ServoPin, &h.RetractedAngle, &h.LockedAngle)
	if err != nil {
		return nil, fmt.Errorf("servo: %v", err)
	}
	if n != 4 {
		return nil, fmt.Errorf("invalid servo arguments")
	}
	if err := intArg(s, "servo-enable", &h.ServoEnable); err != nil {
		return nil, err
	}
	v, ok := arg(s, "lights")
	if !ok {
		return nil, fmt.Errorf("lights: missing")
	}
	if h.Lights, err = intList(v); err != nil {
		return nil, fmt.Errorf("lights: %v", err)
	}
	if _, ok := arg(s, "calibration-light"); !ok {
		return nil, fmt.Errorf("calibration-light: missing")
	}
	if err := intArg(s, "calibration-light", &h.CalibrationLight); err != nil {
		return nil, err
	}
	v, ok = arg(s, "adc")
	if !ok {
		return nil, fmt.Errorf("adc: missing")
	}
	f := strings.Split(v, ",")
	if len(f) != 3 {
		return nil, fmt.Errorf("adc: need bus, address and channel")
	}
	h.Bus = strings.TrimSpace(f[0])
	addr, err := strconv.ParseInt(strings.TrimSpace(f[1]), 0, 16)
	if err != nil {
		return nil, fmt.Errorf("adc address: %v", err)
	}
	h.ADCAddr = int(addr)
	if h.ADCChannel, err = strconv.Atoi(strings.TrimSpace(f[2])); err != nil {
		return nil, fmt.Errorf("adc channel: %v", err)
	}
	if v, ok := arg(s, "button"); ok {
		f := strings.Split(v, ",")
		if h.Button, err = strconv.Atoi(strings.TrimSpace(f[0])); err != nil {
			return nil, fmt.Errorf("button: %v", err)
		}
		if len(f) > 1 {
			if h.LongPress, err = time.ParseDuration(strings.TrimSpace(f[1])); err != nil {
				return nil, fmt.Errorf("button: %v", err)
			}
		}
	}
	return &h, nil
}

// arg returns the value of key, or false if the key is absent.
func arg(s section, key string) (string, bool) {
	v, err := s.GetArg(key)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func intArg(s section, key string, v *int) error {
	a, ok := arg(s, key)
	if !ok {
		return nil
	}
	i, err := strconv.Atoi(a)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*v = i
	return nil
}

func durationArg(s section, key string, v *time.Duration) error {
	a, ok := arg(s, key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(a)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*v = d
	return nil
}

func intList(s string) ([]int, error) {
	var l []int
	for _, f := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		l = append(l, i)
	}
	return l, nil
}
