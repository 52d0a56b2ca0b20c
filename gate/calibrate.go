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

// Calibrate the light sensor and home the ring.

package gate

import (
	"fmt"
)

type calPhase int

const (
	sampling calPhase = iota
	homing
)

// calibration learns the light threshold of the index mark while sweeping
// the ring, then steps the ring one motor step at a time until the
// mark is seen, which becomes position zero.
type calibration struct {
	phase     calPhase
	started   bool
	samples   Sampler
	threshold float64
	attempts  int // Homing steps taken
}

func (cal *calibration) mode() Mode { return Calibrating }

func (cal *calibration) step(c *Controller) error {
	if cal.phase == sampling {
		return cal.sample(c)
	}
	return cal.home(c)
}

// sample takes one ambient reading and moves the ring half a symbol so
// that the readings sweep past the index mark.
func (cal *calibration) sample(c *Controller) error {
	if !cal.started {
		c.dev.Log.Printf("Calibrate light sensor")
		if err := c.dev.Ring.Enable(); err != nil {
			return fmt.Errorf("ring enable: %w", err)
		}
		if err := c.dev.Lights.SetCalibration(true); err != nil {
			return fmt.Errorf("calibration light: %w", err)
		}
		// Warm-up read.
		if _, err := c.dev.Sensor.Read(); err != nil {
			return fmt.Errorf("light sensor: %w", err)
		}
		c.dev.Sleep(c.cfg.WarmUp)
		cal.started = true
	}
	v, err := c.dev.Sensor.Read()
	if err != nil {
		return fmt.Errorf("light sensor: %w", err)
	}
	c.dev.Log.Printf("Light value: %d", v)
	cal.samples.Add(v)
	if err := c.step(c.cfg.StepsPerSymbol / 2); err != nil {
		return err
	}
	if cal.samples.Count() < c.cfg.Samples {
		return nil
	}
	avg := cal.samples.Average()
	cal.threshold = Threshold(avg, c.cfg.ThresholdFloor, c.cfg.ThresholdMargin)
	c.threshold = cal.threshold
	c.dev.Log.Printf("Light average: %.2f", avg)
	c.dev.Log.Printf("Light limit: %.2f", cal.threshold)
	cal.phase = homing
	c.dev.Sleep(c.cfg.WarmUp)
	c.dev.Log.Printf("Calibrate position")
	return nil
}

// home moves the ring a single motor step and checks for the index mark.
func (cal *calibration) home(c *Controller) error {
	if err := c.step(1); err != nil {
		return err
	}
	cal.attempts++
	v, err := c.dev.Sensor.Read()
	if err != nil {
		return fmt.Errorf("light sensor: %w", err)
	}
	c.dev.Log.Printf("Light value: %d", v)
	if Detected(v, cal.threshold) {
		if err := cal.finish(c); err != nil {
			return err
		}
		c.position = 0
		c.homed = true
		c.dev.Log.Printf("Position calibrated (%d steps)", cal.attempts)
		return nil
	}
	if c.cfg.HomingLimit > 0 && cal.attempts >= c.cfg.HomingLimit {
		if err := cal.finish(c); err != nil {
			return err
		}
		c.dev.Log.Printf("/!\\ Calibration failed, no index mark after %d steps", cal.attempts)
		return fmt.Errorf("%w: no index mark after %d steps", ErrCalibrationFailed, cal.attempts)
	}
	return nil
}

// finish ends the calibration run and returns to Idle.
func (cal *calibration) finish(c *Controller) error {
	if err := c.dev.Lights.SetCalibration(false); err != nil {
		return fmt.Errorf("calibration light: %w", err)
	}
	if err := c.dev.Ring.Disable(); err != nil {
		return fmt.Errorf("ring disable: %w", err)
	}
	c.state = idle{}
	return nil
}
