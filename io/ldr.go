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

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// Readings are scaled to 10 bits to match the light sensor
// thresholds, which were tuned on a 10 bit ADC.
const ldrShift = 5

// analogPin is the part of analog.PinADC that the LDR uses.
type analogPin interface {
	Read() (analog.Sample, error)
	Halt() error
}

// LDR is the light dependent resistor that sees the ring's index
// mark, read through an ADS1115 ADC channel.
type LDR struct {
	pin analogPin
	bus i2c.BusCloser
}

var channels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// NewLDR opens the named I²C bus and the ADS1115 at addr, and
// configures the channel as a single ended input.
func NewLDR(busName string, addr, channel int) (*LDR, error) {
	if channel < 0 || channel >= len(channels) {
		return nil, fmt.Errorf("%d: invalid ADC channel", channel)
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, err
	}
	opts := ads1x15.DefaultOpts
	opts.I2cAddress = uint16(addr)
	adc, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, err
	}
	pin, err := adc.PinForChannel(channels[channel], 5*physic.Volt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return &LDR{pin: pin, bus: bus}, nil
}

// Read returns the current light level.
func (l *LDR) Read() (int, error) {
	s, err := l.pin.Read()
	if err != nil {
		return 0, err
	}
	return scale(s.Raw), nil
}

// Close releases the ADC and the bus.
func (l *LDR) Close() {
	l.pin.Halt()
	if l.bus != nil {
		l.bus.Close()
	}
}

func scale(raw int32) int {
	if raw < 0 {
		return 0
	}
	return int(raw >> ldrShift)
}
