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

// Calibration utility, for finding the servo angles and the light
// sensor levels of a prop.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aamcrae/config"
	"github.com/aamcrae/gate/gate"
)

var configFile = flag.String("config", "gate.conf", "Configuration file")
var section = flag.String("hardware", "hardware", "Config section for the hardware")
var perSymbol = flag.Int("symbol", 123, "Steps per symbol")

func main() {
	flag.Parse()
	conf, err := config.ParseFile(*configFile)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	hc, err := gate.ParseHardware(conf, *section)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	prop, err := gate.NewProp(hc)
	if err != nil {
		log.Fatalf("Prop: %v", err)
	}
	defer prop.Close()
	arm := gate.NewArm(prop.Servo, hc.RetractedAngle, hc.LockedAngle)
	reader := bufio.NewReader(os.Stdin)
	cal := false
	for {
		fmt.Printf("Step %d (symbol %.2f), arm angle %d\n", prop.Stepper.Position(),
			float64(prop.Stepper.Position())/float64(*perSymbol), prop.Servo.Angle())
		fmt.Print("Enter steps or command ('help' for help) ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		var v int
		switch {
		case text == "help":
			fmt.Println("  help - print help")
			fmt.Println("  [-]NNN - move steps")
			fmt.Println("  s [-]NN - move symbols")
			fmt.Println("  r - read light sensor")
			fmt.Println("  c - toggle calibration light")
			fmt.Println("  l - lock arm")
			fmt.Println("  u - retract arm")
			fmt.Println("  a NNN - set servo angle")
			fmt.Println("  o - motors off")
			fmt.Println("  q - quit")
		case text == "q":
			return
		case text == "r":
			l, err := prop.Sensor.Read()
			report(err)
			fmt.Printf("Light value: %d\n", l)
		case text == "c":
			cal = !cal
			report(prop.Lights.SetCalibration(cal))
		case text == "l" || text == "u":
			pos := gate.Retracted
			if text == "l" {
				pos = gate.Locked
			}
			report(arm.Enable())
			report(arm.MoveTo(pos))
		case text == "o":
			report(prop.Stepper.Disable())
			report(arm.Disable())
		case scan(text, "a %d", &v):
			report(prop.Servo.Enable())
			report(prop.Servo.SetAngle(v))
		case scan(text, "s %d", &v):
			fmt.Printf("Moving %d symbols\n", v)
			report(prop.Stepper.Step(v * *perSymbol))
		case scan(text, "%d", &v):
			fmt.Printf("Moving %d steps\n", v)
			report(prop.Stepper.Step(v))
		default:
			fmt.Printf("Unrecognised input\n")
		}
	}
}

func scan(text, format string, v *int) bool {
	n, err := fmt.Sscanf(text, format, v)
	return err == nil && n == 1
}

func report(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}
