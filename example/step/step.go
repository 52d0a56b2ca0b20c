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

// Program to demonstrate stepping the ring motor a number of symbols.

package main

import (
	"flag"
	"log"
	"time"

	"github.com/aamcrae/gate/io"
)

var gpios = []*int{
	flag.Int("a1", 17, "GPIO pin for motor input 1"),
	flag.Int("a2", 27, "GPIO pin for motor input 2"),
	flag.Int("a3", 22, "GPIO pin for motor input 3"),
	flag.Int("a4", 23, "GPIO pin for motor input 4"),
}
var enable = flag.Int("enable", -1, "GPIO pin for driver enable, active low")
var rpm = flag.Float64("rpm", 60.0, "RPM")
var rev = flag.Int("rev", 800, "Steps per revolution")
var perSymbol = flag.Int("symbol", 123, "Steps per symbol")
var symbols = flag.Int("symbols", 5, "Symbols to move, negative for backward")

func main() {
	flag.Parse()
	pins := make([]io.Setter, len(gpios))
	for i, gp := range gpios {
		p, err := io.OutputPin(*gp)
		if err != nil {
			log.Fatalf("Pin %d: %v", *gp, err)
		}
		defer p.Close()
		pins[i] = p
	}
	var en io.Setter
	if *enable >= 0 {
		p, err := io.OutputPin(*enable)
		if err != nil {
			log.Fatalf("Pin %d: %v", *enable, err)
		}
		defer p.Close()
		en = p
	}
	s := io.NewStepper(*rev, *rpm, en, true, pins[0], pins[1], pins[2], pins[3])
	defer s.Close()
	now := time.Now()
	n := *symbols
	for i := 0; i < 4; i++ {
		if err := s.Step(n * *perSymbol); err != nil {
			log.Fatalf("Step: %v", err)
		}
		n = -n
	}
	if err := s.Disable(); err != nil {
		log.Fatalf("Disable: %v", err)
	}
	log.Printf("Elapsed = %s, position = %d", time.Since(now), s.Position())
}
