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

// Gate program

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aamcrae/config"
	"github.com/aamcrae/gate/command"
	"github.com/aamcrae/gate/gate"
	"github.com/aamcrae/gate/io"
)

var configFile = flag.String("config", "gate.conf", "Configuration file")
var gateSection = flag.String("gate", "gate", "Config section for the gate parameters")
var hwSection = flag.String("hardware", "hardware", "Config section for the hardware")
var port = flag.Int("port", 8080, "Web server port number, 0 to disable")
var broker = flag.String("mqtt", "", "MQTT broker URL e.g tcp://localhost:1883")
var topic = flag.String("topic", "gate", "MQTT topic prefix")
var serialPort = flag.String("serial", "", "Serial console device")
var baud = flag.Uint("baud", 9600, "Serial console baud rate")

func main() {
	flag.Parse()
	conf, err := config.ParseFile(*configFile)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	cfg, err := gate.ParseConfig(conf, *gateSection)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	hc, err := gate.ParseHardware(conf, *hwSection)
	if err != nil {
		log.Fatalf("%s: %v", *configFile, err)
	}
	prop, err := gate.NewProp(hc)
	if err != nil {
		log.Fatalf("Prop: %v", err)
	}
	defer prop.Close()

	var logger gate.Logger = log.Default()
	var m *command.MQTT
	if *broker != "" {
		m, err = command.DialMQTT(*broker, "gate-"+*topic, *topic)
		if err != nil {
			log.Fatalf("MQTT %s: %v", *broker, err)
		}
		defer m.Close()
		logger = m
	}
	ctrl, err := gate.NewController(*cfg, prop.Devices(logger))
	if err != nil {
		log.Fatalf("Controller: %v", err)
	}
	if err := ctrl.Init(); err != nil {
		log.Fatalf("Init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if m != nil {
		if err := m.Subscribe(ctrl); err != nil {
			log.Fatalf("MQTT subscribe: %v", err)
		}
		go publish(ctx, m, ctrl)
	}
	if *serialPort != "" {
		s, err := command.OpenSerial(*serialPort, *baud)
		if err != nil {
			log.Fatalf("%s: %v", *serialPort, err)
		}
		defer s.Close()
		go func() {
			if err := command.ReadCommands(s, ctrl); err != nil {
				log.Printf("%s: %v", *serialPort, err)
			}
		}()
	}
	if hc.Button >= 0 {
		in, err := io.InputPin(hc.Button, io.BOTH)
		if err != nil {
			log.Fatalf("Button %d: %v", hc.Button, err)
		}
		defer in.Close()
		go func() {
			if err := command.NewButton(in, hc.LongPress).Run(ctx, ctrl); err != nil {
				log.Printf("Button: %v", err)
			}
		}()
	}
	if *port > 0 {
		go func() {
			log.Fatal(gate.NewStatusServer(ctrl, prop.Lights.Lit).ListenAndServe(*port))
		}()
	}
	if err := ctrl.RequestAnimation(); err != nil {
		log.Fatalf("Animation: %v", err)
	}
	if err := ctrl.Run(ctx, cfg.Tick); err != nil && err != context.Canceled {
		log.Printf("Gate stopped: %v", err)
	}
}

// publish sends the status to the broker whenever it changes.
func publish(ctx context.Context, m *command.MQTT, ctrl *gate.Controller) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var last gate.Status
	first := true
	for {
		st := ctrl.Status()
		if first || !st.Same(last) {
			if err := m.PublishStatus(st); err != nil {
				log.Printf("MQTT status: %v", err)
			} else {
				last = st
				first = false
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
