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

package gate

// Status is a snapshot of the controller state.
type Status struct {
	Mode      string  `json:"mode"`
	Homed     bool    `json:"homed"`
	Threshold float64 `json:"threshold"`
	Position  int     `json:"position"`
	Symbols   int     `json:"symbols"`
	Plan      []int   `json:"plan,omitempty"`
	Index     int     `json:"index"`
	Pattern   int     `json:"pattern"`
	Animation string  `json:"animation,omitempty"`
	Frame     int     `json:"frame"`
	Ticks     uint64  `json:"ticks"`
	Fault     string  `json:"fault,omitempty"`
}

// Status returns the current state of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{
		Mode:      c.state.mode().String(),
		Homed:     c.homed,
		Threshold: c.threshold,
		Position:  c.position,
		Symbols:   c.cfg.Symbols,
		Ticks:     c.ticks,
	}
	switch e := c.state.(type) {
	case *dialing:
		s.Plan = append([]int(nil), e.plan...)
		s.Index = e.index
	case *animation:
		s.Pattern = e.pattern
		s.Animation = PatternName(e.pattern)
		s.Frame = e.frame
	}
	if c.fault != nil {
		s.Fault = c.fault.Error()
	}
	return s
}

// Same reports whether two snapshots differ only in their tick count.
func (s Status) Same(o Status) bool {
	if len(s.Plan) != len(o.Plan) {
		return false
	}
	for i := range s.Plan {
		if s.Plan[i] != o.Plan[i] {
			return false
		}
	}
	return s.Mode == o.Mode && s.Homed == o.Homed && s.Threshold == o.Threshold &&
		s.Position == o.Position && s.Index == o.Index && s.Pattern == o.Pattern &&
		s.Frame == o.Frame && s.Fault == o.Fault
}
