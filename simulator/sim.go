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

// Simulator gate program

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/aamcrae/gate/command"
	"github.com/aamcrae/gate/gate"
	"github.com/aamcrae/gate/sim"
)

var port = flag.Int("port", 8080, "Web server port number")
var mark = flag.Int("mark", 2000, "Motor step of the ring index mark")
var stepDelay = flag.Duration("step", 200*time.Microsecond, "Simulated time per motor step")
var fast = flag.Bool("fast", false, "Skip the servo and display delays")

func main() {
	flag.Parse()
	cfg := gate.DefaultConfig()
	g := sim.New(cfg, *mark, *stepDelay)
	dev := g.Devices(log.Default())
	if *fast {
		dev.Sleep = func(time.Duration) {}
	}
	ctrl, err := gate.NewController(cfg, dev)
	if err != nil {
		log.Fatalf("Controller: %v", err)
	}
	if err := ctrl.Init(); err != nil {
		log.Fatalf("Init: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		log.Fatal(gate.NewStatusServer(ctrl, g.Lights.Lit).ListenAndServe(*port))
	}()
	go func() {
		// Commands are typed on stdin, one per line: (a)nimate or (d)ial.
		if err := command.ReadCommands(os.Stdin, ctrl); err != nil {
			log.Printf("stdin: %v", err)
		}
	}()
	go func() {
		for {
			time.Sleep(5 * time.Second)
			if sym, ok := g.Symbol(); ok {
				log.Printf("%s, symbol %d", g, sym)
			}
		}
	}()
	if err := ctrl.RequestAnimation(); err != nil {
		log.Fatalf("Animation: %v", err)
	}
	if err := ctrl.Run(ctx, cfg.Tick); err != nil && err != context.Canceled {
		log.Printf("Gate stopped: %v", err)
	}
}
