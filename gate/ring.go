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

// Position arithmetic on the symbol ring.

package gate

// Wrap returns p as a ring position in [0, n).
func Wrap(p, n int) int {
	p %= n
	if p < 0 {
		p += n
	}
	return p
}

// Shortest returns the number of symbol slots between current and target
// along the shorter way around a ring of n symbols, and the direction
// (+1 or -1) to travel. When the ring is already at the target both
// values are 0. An exact half turn is travelled backwards.
func Shortest(current, target, n int) (remaining, direction int) {
	forward := Wrap(target-current, n)
	if forward == 0 {
		return 0, 0
	}
	backward := n - forward
	if forward < backward {
		return forward, 1
	}
	return backward, -1
}
