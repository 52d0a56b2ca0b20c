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

// Program to display the light sensor readings, with the calibration
// light on.

package main

import (
	"flag"
	"log"
	"time"

	"github.com/aamcrae/gate/io"
)

var bus = flag.String("bus", "", "I2C bus")
var addr = flag.Int("addr", 0x48, "ADC I2C address")
var channel = flag.Int("channel", 0, "ADC channel")
var light = flag.Int("light", 20, "GPIO for the calibration light, -1 for none")
var count = flag.Int("count", 20, "Number of readings")

func main() {
	flag.Parse()
	l, err := io.NewLDR(*bus, *addr, *channel)
	if err != nil {
		log.Fatalf("LDR: %v", err)
	}
	defer l.Close()
	if *light >= 0 {
		p, err := io.OutputPin(*light)
		if err != nil {
			log.Fatalf("Pin %d: %v", *light, err)
		}
		defer p.Close()
		p.Set(1)
		defer p.Set(0)
	}
	for i := 0; i < *count; i++ {
		v, err := l.Read()
		if err != nil {
			log.Fatalf("Read: %v", err)
		}
		log.Printf("Light value: %d", v)
		time.Sleep(500 * time.Millisecond)
	}
}
