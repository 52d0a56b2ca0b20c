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
	"os"
	"time"
)

const (
	pwmBaseDir      = "/sys/class/pwm/pwmchip0/"
	pwmExportFile   = pwmBaseDir + "export"
	pwmUnexportFile = pwmBaseDir + "unexport"
	periodFile      = "/period"
	dutyFile        = "/duty_cycle"
	enableFile      = "/enable"
)

// HwPwm is a sysfs hardware PWM channel.
type HwPwm struct {
	unit   int
	base   string
	pFile  *os.File
	dFile  *os.File
	period int64
	duty   int64
}

// NewHwPWM creates a new hardware PWM controller on pwmchip0.
// The output starts with a 20ms period and no pulse.
func NewHwPWM(unit int) (*HwPwm, error) {
	p := new(HwPwm)
	p.unit = unit
	p.base = fmt.Sprintf("%spwm%d", pwmBaseDir, unit)
	p.period = -1
	p.duty = -1

	pName := p.base + periodFile
	err := export(pName, pwmExportFile, unit)
	if err != nil {
		return nil, err
	}
	p.pFile, err = os.OpenFile(pName, os.O_RDWR, 0600)
	if err != nil {
		unexport(pwmUnexportFile, unit)
		return nil, err
	}
	dName := p.base + dutyFile
	if err = verifyFile(dName); err == nil {
		p.dFile, err = os.OpenFile(dName, os.O_RDWR, 0600)
	}
	if err != nil {
		p.pFile.Close()
		unexport(pwmUnexportFile, unit)
		return nil, err
	}
	if err = p.Set(ServoPeriod, 0); err == nil {
		err = writeFile(p.base+enableFile, "1")
	}
	if err != nil {
		p.pFile.Close()
		p.dFile.Close()
		unexport(pwmUnexportFile, unit)
		return nil, err
	}
	return p, nil
}

// Close closes the PWM controller
func (p *HwPwm) Close() {
	writeFile(p.base+enableFile, "0")
	p.pFile.Close()
	p.dFile.Close()
	unexport(pwmUnexportFile, p.unit)
}

// Set sets the PWM period and the high pulse width.
func (p *HwPwm) Set(period, pulse time.Duration) error {
	if err := checkPulse(period, pulse); err != nil {
		return err
	}
	pNano := period.Nanoseconds()
	dNano := pulse.Nanoseconds()
	// The duty cycle must never exceed the current period, so the
	// order of the writes depends on the direction of the change.
	if dNano > p.period {
		if err := p.write(p.pFile, pNano); err != nil {
			return err
		}
		if err := p.write(p.dFile, dNano); err != nil {
			return err
		}
	} else {
		if dNano != p.duty {
			if err := p.write(p.dFile, dNano); err != nil {
				return err
			}
		}
		if pNano != p.period {
			if err := p.write(p.pFile, pNano); err != nil {
				return err
			}
		}
	}
	p.period = pNano
	p.duty = dNano
	return nil
}

func (p *HwPwm) write(f *os.File, v int64) error {
	_, err := f.WriteAt([]byte(fmt.Sprintf("%d", v)), 0)
	return err
}

func checkPulse(period, pulse time.Duration) error {
	if period < 15 {
		return fmt.Errorf("%v: invalid period", period)
	}
	if pulse < 0 || pulse > period {
		return fmt.Errorf("%v: invalid pulse width for period %v", pulse, period)
	}
	return nil
}
