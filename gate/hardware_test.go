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

type fakeServo struct {
	on     bool
	angles []int
}

func (s *fakeServo) Enable() error  { s.on = true; return nil }
func (s *fakeServo) Disable() error { s.on = false; return nil }

func (s *fakeServo) SetAngle(a int) error {
	s.angles = append(s.angles, a)
	return nil
}

func TestArm(t *testing.T) {
	s := &fakeServo{}
	a := NewArm(s, 105, 75)
	require.NoError(t, a.Enable())
	assert.True(t, s.on)
	require.NoError(t, a.MoveTo(Locked))
	require.NoError(t, a.MoveTo(Retracted))
	require.NoError(t, a.Disable())
	assert.False(t, s.on)
	assert.Equal(t, []int{75, 105}, s.angles)
}
