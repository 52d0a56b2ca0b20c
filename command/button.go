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

package command

import (
	"context"
	"log"
	"time"
)

// input is an edge triggered GPIO. Get blocks until the next edge.
type input interface {
	Get() (int, error)
}

// Button is a push button wired active low. A short press requests
// the animations and a long press requests a dial.
type Button struct {
	in   input
	long time.Duration
	now  func() time.Time
}

// NewButton creates a Button on an input reporting both edges.
func NewButton(in input, long time.Duration) *Button {
	return &Button{in: in, long: long, now: time.Now}
}

// Run watches the button until the context is done or the input fails.
// The context is only checked between edges.
func (b *Button) Run(ctx context.Context, c Commander) error {
	var pressed time.Time
	down := false
	for {
		v, err := b.in.Get()
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case v == 0 && !down:
			down = true
			pressed = b.now()
		case v == 1 && down:
			down = false
			if err := b.release(c, b.now().Sub(pressed)); err != nil {
				log.Printf("button: %v", err)
			}
		}
	}
}

func (b *Button) release(c Commander, held time.Duration) error {
	if held >= b.long {
		return c.RequestRandomDial()
	}
	return c.RequestAnimation()
}
