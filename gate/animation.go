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

// Idle light animations.

package gate

import (
	"fmt"
	"time"
)

// pattern is a light animation over a ring of n indicators. The lit
// indicators depend only on the frame number.
type pattern struct {
	name   string
	delay  time.Duration // Frame duration
	frames func(n int) int
	lit    func(frame, n int) []int
}

// Mirrored sweep from the top indicator to the bottom pair and back,
// for a ring of 9.
var sweep = [][]int{
	{0},
	{0, 1, 8},
	{0, 1, 8},
	{1, 8},
	{1, 8, 2, 7},
	{2, 7},
	{2, 7, 3, 6},
	{3, 6},
	{3, 6, 4, 5},
	{4, 5},
	{3, 6, 4, 5},
	{3, 6},
	{2, 7, 3, 6},
	{2, 7},
	{1, 8, 2, 7},
	{1, 8},
}

func ringFrames(n int) int { return n }

var patterns = []pattern{
	{"chase", 140 * time.Millisecond, ringFrames, func(f, n int) []int {
		return []int{f}
	}},
	{"fill", 120 * time.Millisecond, func(n int) int { return 2 * n }, func(f, n int) []int {
		var l []int
		if f < n {
			for i := 0; i <= f; i++ {
				l = append(l, i)
			}
		} else {
			for i := f - n + 1; i < n; i++ {
				l = append(l, i)
			}
		}
		return l
	}},
	{"sweep", 100 * time.Millisecond, func(int) int { return len(sweep) }, func(f, n int) []int {
		return sweep[f]
	}},
	{"triple", 120 * time.Millisecond, ringFrames, func(f, n int) []int {
		return []int{f, (f + 1) % n, (f + 2) % n}
	}},
	{"spokes", 120 * time.Millisecond, ringFrames, func(f, n int) []int {
		return []int{f, Wrap(f-n/3, n), Wrap(f+n/3, n)}
	}},
	{"twinkle", 40 * time.Millisecond, func(int) int { return 64 }, func(f, n int) []int {
		var l []int
		for i := 0; i < n; i++ {
			// Knuth multiplicative hash, roughly 3 in 8 lit.
			h := uint32(f*n+i) * 2654435761
			if h>>29 < 3 {
				l = append(l, i)
			}
		}
		return l
	}},
}

// PatternLights returns the indicator states for a frame of a pattern on
// a ring of n indicators. The frame wraps around the pattern length.
func PatternLights(p, frame, n int) ([]bool, error) {
	if p < 0 || p >= len(patterns) {
		return nil, fmt.Errorf("%d: unknown pattern", p)
	}
	pt := patterns[p]
	frame = Wrap(frame, pt.frames(n))
	on := make([]bool, n)
	for _, i := range pt.lit(frame, n) {
		on[Wrap(i, n)] = true
	}
	return on, nil
}

// PatternName returns the name of a pattern.
func PatternName(p int) string {
	if p < 0 || p >= len(patterns) {
		return "unknown"
	}
	return patterns[p].name
}

type animation struct {
	pattern int
	frame   int
}

func (a *animation) mode() Mode { return Animating }

// next moves on to the following pattern, wrapping after count patterns.
func (a *animation) next(count int) {
	a.pattern = (a.pattern + 1) % count
	a.frame = 0
}

// step shows one frame of the current pattern.
func (a *animation) step(c *Controller) error {
	n := c.dev.Lights.Count()
	on, err := PatternLights(a.pattern, a.frame, n)
	if err != nil {
		return err
	}
	for i, v := range on {
		if err := c.dev.Lights.Set(i, v); err != nil {
			return fmt.Errorf("indicator %d: %w", i, err)
		}
	}
	pt := patterns[a.pattern]
	c.dev.Sleep(pt.delay)
	a.frame = (a.frame + 1) % pt.frames(n)
	return nil
}
