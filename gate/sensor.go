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

// Light sensor threshold learning.

package gate

// Sampler accumulates ambient light readings taken while the ring
// sweeps past the index mark.
type Sampler struct {
	sum   int
	count int
}

// Add records one reading.
func (s *Sampler) Add(v int) {
	s.sum += v
	s.count++
}

// Count returns the number of readings recorded.
func (s *Sampler) Count() int {
	return s.count
}

// Average returns the mean of the readings, or 0 if there are none.
func (s *Sampler) Average() float64 {
	if s.count == 0 {
		return 0
	}
	return float64(s.sum) / float64(s.count)
}

// Threshold derives the detection threshold for the index mark from the
// ambient average: the average scaled by margin, but never below floor.
func Threshold(average, floor, margin float64) float64 {
	t := average * margin
	if t < floor {
		return floor
	}
	return t
}

// Detected reports whether a reading is bright enough to be the index mark.
func Detected(reading int, threshold float64) bool {
	return float64(reading) > threshold
}
