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
	"time"
)

// Standard hobby servo timing.
const (
	ServoPeriod   = 20 * time.Millisecond
	ServoMinPulse = 500 * time.Microsecond
	ServoMaxPulse = 2500 * time.Microsecond
	ServoMaxAngle = 180
)

// Servo is a hobby servo driven by a PWM output, with an optional
// GPIO that switches the servo's power.
type Servo struct {
	pwm    PWM
	enable Setter
	angle  int
	on     bool
}

// NewServo creates a Servo. enable may be nil.
func NewServo(pwm PWM, enable Setter) *Servo {
	return &Servo{pwm: pwm, enable: enable, angle: -1}
}

// Pulse returns the pulse width that positions the servo at angle degrees.
func Pulse(angle int) time.Duration {
	return ServoMinPulse + (ServoMaxPulse-ServoMinPulse)*time.Duration(angle)/ServoMaxAngle
}

// Enable powers the servo and restores the last commanded angle.
func (s *Servo) Enable() error {
	if s.on {
		return nil
	}
	if s.enable != nil {
		if err := s.enable.Set(1); err != nil {
			return err
		}
	}
	s.on = true
	if s.angle >= 0 {
		return s.pwm.Set(ServoPeriod, Pulse(s.angle))
	}
	return nil
}

// Disable stops the pulses and removes the servo power. The servo
// holds no torque while disabled.
func (s *Servo) Disable() error {
	if !s.on {
		return nil
	}
	err := s.pwm.Set(ServoPeriod, 0)
	if s.enable != nil {
		if e := s.enable.Set(0); e != nil && err == nil {
			err = e
		}
	}
	s.on = false
	return err
}

// SetAngle commands the servo to the angle in degrees. If the servo is
// disabled, the angle is remembered and applied when it is enabled.
func (s *Servo) SetAngle(angle int) error {
	if angle < 0 || angle > ServoMaxAngle {
		return fmt.Errorf("%d: servo angle out of range", angle)
	}
	s.angle = angle
	if !s.on {
		return nil
	}
	return s.pwm.Set(ServoPeriod, Pulse(angle))
}

// Angle returns the last commanded angle, or -1 if none.
func (s *Servo) Angle() int {
	return s.angle
}

// Close disables the servo and closes the PWM.
func (s *Servo) Close() {
	s.Disable()
	s.pwm.Close()
}
