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

// Program to demonstrate moving the chevron servo with either
// hardware or software PWM.

package main

import (
	"flag"
	"log"
	"time"

	"github.com/aamcrae/gate/io"
)

var pwmUnit = flag.Int("pwm", 0, "PWM unit, -1 for software PWM")
var gpio = flag.Int("gpio", 13, "GPIO pin for software PWM")
var from = flag.Int("from", 105, "Start angle")
var to = flag.Int("to", 75, "End angle")
var settle = flag.Duration("settle", 600*time.Millisecond, "Time to wait after each move")

func main() {
	flag.Parse()
	var pwm io.PWM
	if *pwmUnit >= 0 {
		hw, err := io.NewHwPWM(*pwmUnit)
		if err != nil {
			log.Fatalf("PWM unit %d: %v", *pwmUnit, err)
		}
		pwm = hw
	} else {
		p, err := io.OutputPin(*gpio)
		if err != nil {
			log.Fatalf("Pin %d: %v", *gpio, err)
		}
		defer p.Close()
		pwm = io.NewSwPWM(p)
	}
	s := io.NewServo(pwm, nil)
	defer s.Close()
	if err := s.Enable(); err != nil {
		log.Fatalf("Enable: %v", err)
	}
	for i := 0; i < 5; i++ {
		for _, a := range []int{*from, *to} {
			if err := s.SetAngle(a); err != nil {
				log.Fatalf("Angle %d: %v", a, err)
			}
			log.Printf("Angle %d, pulse %s", a, io.Pulse(a))
			time.Sleep(*settle)
		}
	}
}
