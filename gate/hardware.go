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

	"github.com/aamcrae/gate/io"
)

// Prop combines the I/O for the physical gate: the ring stepper, the
// chevron servo, the indicator lights and the light sensor.
type Prop struct {
	Stepper *io.Stepper
	Servo   *io.Servo
	Lights  *io.Lights
	Sensor  *io.LDR
	Config  *HardwareConfig
	pins    []*io.Gpio
}

// NewProp initialises the I/O from the hardware configuration.
func NewProp(hc *HardwareConfig) (*Prop, error) {
	p := &Prop{Config: hc}
	var coils [4]io.Setter
	for i, v := range hc.Coils {
		g, err := p.output(v)
		if err != nil {
			return nil, err
		}
		coils[i] = g
	}
	var enable io.Setter
	if hc.Enable >= 0 {
		g, err := p.output(hc.Enable)
		if err != nil {
			return nil, err
		}
		enable = g
	}
	p.Stepper = io.NewStepper(hc.Rev, hc.Speed, enable, hc.EnableLow, coils[0], coils[1], coils[2], coils[3])

	var pwm io.PWM
	if hc.PWM >= 0 {
		hw, err := io.NewHwPWM(hc.PWM)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("PWM %d: %v", hc.PWM, err)
		}
		pwm = hw
	} else {
		g, err := p.output(hc.ServoPin)
		if err != nil {
			return nil, err
		}
		pwm = io.NewSwPWM(g)
	}
	var servoEnable io.Setter
	if hc.ServoEnable >= 0 {
		g, err := p.output(hc.ServoEnable)
		if err != nil {
			pwm.Close()
			return nil, err
		}
		servoEnable = g
	}
	p.Servo = io.NewServo(pwm, servoEnable)

	lights := make([]io.Setter, len(hc.Lights))
	for i, v := range hc.Lights {
		g, err := p.output(v)
		if err != nil {
			return nil, err
		}
		lights[i] = g
	}
	cal, err := p.output(hc.CalibrationLight)
	if err != nil {
		return nil, err
	}
	p.Lights = io.NewLights(cal, lights...)

	p.Sensor, err = io.NewLDR(hc.Bus, hc.ADCAddr, hc.ADCChannel)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("light sensor: %v", err)
	}
	return p, nil
}

// output opens an output pin that is released by Close. On failure
// the prop is closed.
func (p *Prop) output(gpio int) (*io.Gpio, error) {
	g, err := io.OutputPin(gpio)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("Pin %d: %v", gpio, err)
	}
	p.pins = append(p.pins, g)
	return g, nil
}

// Devices returns the controller ports backed by the prop.
func (p *Prop) Devices(log Logger) Devices {
	return Devices{
		Ring:    p.Stepper,
		Chevron: NewArm(p.Servo, p.Config.RetractedAngle, p.Config.LockedAngle),
		Sensor:  p.Sensor,
		Lights:  p.Lights,
		Log:     log,
	}
}

// Close shuts down the prop and releases the resources.
func (p *Prop) Close() {
	if p.Stepper != nil {
		p.Stepper.Close()
	}
	if p.Servo != nil {
		p.Servo.Close()
	}
	if p.Sensor != nil {
		p.Sensor.Close()
	}
	for _, g := range p.pins {
		g.Close()
	}
	p.pins = nil
}

// servo is the part of io.Servo used by Arm.
type servo interface {
	Enable() error
	Disable() error
	SetAngle(int) error
}

// Arm maps the chevron lock arm positions onto servo angles.
type Arm struct {
	servo     servo
	retracted int
	locked    int
}

// NewArm creates a Chevron from a servo and the angles of the two arm positions.
func NewArm(s servo, retracted, locked int) *Arm {
	return &Arm{servo: s, retracted: retracted, locked: locked}
}

func (a *Arm) Enable() error {
	return a.servo.Enable()
}

func (a *Arm) Disable() error {
	return a.servo.Disable()
}

// MoveTo commands the arm to a position.
func (a *Arm) MoveTo(pos ArmPosition) error {
	if pos == Locked {
		return a.servo.SetAngle(a.locked)
	}
	return a.servo.SetAngle(a.retracted)
}
