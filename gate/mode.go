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

// Mode is the operating mode of the gate.
type Mode int

const (
	Idle Mode = iota
	Calibrating
	Dialing
	Animating
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "IDLE"
	case Calibrating:
		return "CAL"
	case Dialing:
		return "DIAL"
	case Animating:
		return "ANIM"
	default:
		return "UNKNOWN"
	}
}
