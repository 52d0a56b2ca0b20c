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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(on []bool) []int {
	r := []int{}
	for i, v := range on {
		if v {
			r = append(r, i)
		}
	}
	return r
}

func TestPatternLights(t *testing.T) {
	cases := []struct {
		pattern, frame int
		want           []int
	}{
		{0, 0, []int{0}},
		{0, 4, []int{4}},
		{0, 9, []int{0}},
		{1, 2, []int{0, 1, 2}},
		{1, 8, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}},
		{1, 9, []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{1, 17, []int{}},
		{2, 0, []int{0}},
		{2, 9, []int{4, 5}},
		{3, 8, []int{0, 1, 8}},
		{4, 0, []int{0, 3, 6}},
		{4, 1, []int{1, 4, 7}},
	}
	for _, c := range cases {
		on, err := PatternLights(c.pattern, c.frame, 9)
		require.NoError(t, err)
		assert.Equal(t, c.want, lit(on), "%s frame %d", PatternName(c.pattern), c.frame)
	}
	_, err := PatternLights(len(patterns), 0, 9)
	assert.Error(t, err)
	assert.Equal(t, "unknown", PatternName(-1))
}

func TestTwinkleRepeats(t *testing.T) {
	tw := len(patterns) - 1
	assert.Equal(t, "twinkle", PatternName(tw))
	total := 0
	for f := 0; f < 64; f++ {
		a, err := PatternLights(tw, f, 9)
		require.NoError(t, err)
		b, _ := PatternLights(tw, f+64, 9)
		assert.Equal(t, a, b)
		total += len(lit(a))
	}
	assert.InDelta(t, 64*9*3/8, total, 64*9/8)
}

func TestAnimationFrames(t *testing.T) {
	r, err := newRig(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, r.c.RequestAnimation())
	for f := 0; f < 12; f++ {
		require.NoError(t, r.c.Advance())
		assert.Equal(t, []int{f % 9}, r.lights.lit())
	}
	assert.Equal(t, 12%9, r.c.Status().Frame)
	for _, d := range r.sleeps {
		assert.Equal(t, patterns[0].delay, d)
	}
}
