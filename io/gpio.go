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

	"golang.org/x/sys/unix"
)

// Direction
const (
	IN  = iota // Default
	OUT = iota
)

// Edge
const (
	NONE    = iota // Default
	RISING  = iota
	FALLING = iota
	BOTH    = iota
)

const (
	baseDir      = "/sys/class/gpio/"
	exportFile   = baseDir + "export"
	unexportFile = baseDir + "unexport"
)

var directions = map[int]string{IN: "in", OUT: "out"}
var edges = map[int]string{NONE: "none", RISING: "rising", FALLING: "falling", BOTH: "both"}

// Gpio represents one sysfs GPIO pin.
type Gpio struct {
	number    int
	value     *os.File
	buf       []byte
	direction int
	edge      int
	pollfd    []unix.PollFd
}

// OutputPin opens a GPIO pin as an output, initially low.
func OutputPin(gpio int) (*Gpio, error) {
	g, err := Pin(gpio)
	if err != nil {
		return nil, err
	}
	if err := g.Direction(OUT); err != nil {
		g.Close()
		return nil, err
	}
	if err := g.Set(0); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// InputPin opens a GPIO pin as an input that reports the given edges.
func InputPin(gpio, edge int) (*Gpio, error) {
	g, err := Pin(gpio)
	if err != nil {
		return nil, err
	}
	if err := g.Edge(edge); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Pin opens a GPIO pin as an input (by default)
func Pin(gpio int) (*Gpio, error) {
	g := new(Gpio)
	g.number = gpio
	g.buf = make([]byte, 1)
	val := g.file("value")
	if err := export(val, exportFile, gpio); err != nil {
		return nil, err
	}
	if err := g.Direction(IN); err != nil {
		unexport(unexportFile, gpio)
		return nil, err
	}
	if err := g.Edge(NONE); err != nil {
		unexport(unexportFile, gpio)
		return nil, err
	}
	var err error
	g.value, err = os.OpenFile(val, os.O_RDWR, 0600)
	if err != nil {
		unexport(unexportFile, gpio)
		return nil, err
	}
	g.pollfd = []unix.PollFd{{Fd: int32(g.value.Fd()), Events: unix.POLLPRI | unix.POLLERR}}
	return g, nil
}

func (g *Gpio) file(name string) string {
	return fmt.Sprintf("%sgpio%d/%s", baseDir, g.number, name)
}

// Direction sets the direction of the GPIO pin.
func (g *Gpio) Direction(d int) error {
	s, ok := directions[d]
	if !ok {
		return fmt.Errorf("gpio%d: unknown direction", g.number)
	}
	err := writeFile(g.file("direction"), s)
	if err == nil {
		g.direction = d
	}
	return err
}

// Edge sets the edge detection on the GPIO pin.
func (g *Gpio) Edge(e int) error {
	if g.direction != IN {
		return fmt.Errorf("gpio%d: not set as an input pin", g.number)
	}
	s, ok := edges[e]
	if !ok {
		return fmt.Errorf("gpio%d: unknown edge", g.number)
	}
	err := writeFile(g.file("edge"), s)
	if err == nil {
		g.edge = e
	}
	return err
}

// Set the output of the GPIO pin (only valid for OUTPUT pins)
func (g *Gpio) Set(v int) error {
	if g.direction != OUT {
		return fmt.Errorf("gpio%d: is not output", g.number)
	}
	switch v {
	case 0:
		g.buf[0] = '0'
	case 1:
		g.buf[0] = '1'
	default:
		return fmt.Errorf("gpio%d: illegal value", g.number)
	}
	_, err := g.value.WriteAt(g.buf, 0)
	return err
}

// Get returns the value of the GPIO pin. If edge detection is set,
// Get waits for an edge before reading.
func (g *Gpio) Get() (int, error) {
	if g.edge != NONE {
		g.pollfd[0].Revents = 0
		if _, err := unix.Poll(g.pollfd, -1); err != nil {
			return 0, err
		}
	}
	if _, err := g.value.ReadAt(g.buf, 0); err != nil {
		return 0, err
	}
	switch g.buf[0] {
	case '0':
		return 0, nil
	case '1':
		return 1, nil
	}
	return 0, fmt.Errorf("gpio%d: unknown value %s", g.number, g.buf)
}

// Close the GPIO pin and unexport it.
func (g *Gpio) Close() {
	if g.value != nil {
		g.value.Close()
	}
	unexport(unexportFile, g.number)
}
