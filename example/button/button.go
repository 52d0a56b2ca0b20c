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

// Program to demonstrate watching the push button, reporting short
// and long presses.

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/aamcrae/gate/command"
	"github.com/aamcrae/gate/io"
)

var gpio = flag.Int("gpio", 21, "GPIO pin for the button")
var long = flag.Duration("long", 500*time.Millisecond, "Long press duration")

type printer struct{}

func (printer) RequestAnimation() error {
	log.Printf("short press: animate")
	return nil
}

func (printer) RequestRandomDial() error {
	log.Printf("long press: dial")
	return nil
}

func main() {
	flag.Parse()
	p, err := io.InputPin(*gpio, io.BOTH)
	if err != nil {
		log.Fatalf("Pin %d: edge BOTH: %v", *gpio, err)
	}
	defer p.Close()
	if err := command.NewButton(p, *long).Run(context.Background(), printer{}); err != nil {
		log.Fatalf("Pin %d: %v", *gpio, err)
	}
}
