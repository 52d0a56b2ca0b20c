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

// Dial an address, one symbol or one chevron per tick.

package gate

import (
	"fmt"
)

// dialing holds the live plan and the index of the chevron being dialled.
// The ring position itself is kept by the Controller since it outlives
// the plan.
type dialing struct {
	plan  []int
	index int
}

func (d *dialing) mode() Mode { return Dialing }

func (d *dialing) step(c *Controller) error {
	if d.index >= len(d.plan) {
		return d.complete(c)
	}
	remaining, dir := Shortest(c.position, d.plan[d.index], c.cfg.Symbols)
	if remaining == 0 {
		return d.lock(c)
	}
	if dir < 0 {
		c.dev.Log.Printf("%d backward steps remaining", remaining)
	} else {
		c.dev.Log.Printf("%d forward steps remaining", remaining)
	}
	if err := c.dev.Ring.Enable(); err != nil {
		return fmt.Errorf("ring enable: %w", err)
	}
	if err := c.step(dir * c.cfg.StepsPerSymbol); err != nil {
		return err
	}
	c.position = Wrap(c.position+dir, c.cfg.Symbols)
	return nil
}

// lock engages the chevron at the current plan index and lights it.
// The shared lock indicator is released again unless this is the final
// chevron and the final lock is held.
func (d *dialing) lock(c *Controller) error {
	c.dev.Log.Printf("Chevron %d locked", d.index+1)
	arm := c.dev.Chevron
	if err := arm.Enable(); err != nil {
		return fmt.Errorf("chevron enable: %w", err)
	}
	c.dev.Sleep(c.cfg.ServoSettle)
	if err := arm.MoveTo(Locked); err != nil {
		return fmt.Errorf("chevron lock: %w", err)
	}
	if err := c.dev.Lights.Set(c.cfg.LockIndicator, true); err != nil {
		return fmt.Errorf("lock indicator: %w", err)
	}
	if err := c.dev.Lights.Set(c.cfg.DialOrder[d.index], true); err != nil {
		return fmt.Errorf("chevron indicator: %w", err)
	}
	c.dev.Sleep(c.cfg.LockDwell)
	final := d.index == len(d.plan)-1
	if !final || !c.cfg.HoldFinalLock {
		if err := c.dev.Lights.Set(c.cfg.LockIndicator, false); err != nil {
			return fmt.Errorf("lock indicator: %w", err)
		}
	}
	if err := arm.MoveTo(Retracted); err != nil {
		return fmt.Errorf("chevron retract: %w", err)
	}
	c.dev.Sleep(c.cfg.ServoSettle)
	if err := arm.Disable(); err != nil {
		return fmt.Errorf("chevron disable: %w", err)
	}
	d.index++
	return nil
}

// complete lights the whole ring once every chevron is locked, then
// returns to Idle.
func (d *dialing) complete(c *Controller) error {
	c.dev.Log.Printf("Dialing done")
	if err := c.dev.Ring.Disable(); err != nil {
		return fmt.Errorf("ring disable: %w", err)
	}
	if err := c.allLights(true); err != nil {
		return err
	}
	c.dev.Sleep(c.cfg.EstablishHold)
	if err := c.clearLights(); err != nil {
		return err
	}
	c.state = idle{}
	return nil
}
