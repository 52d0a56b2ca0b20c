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

// Package command feeds operator requests to the gate from a push
// button, a serial console and an MQTT topic.

package command

import (
	"fmt"
	"strings"
)

// Commander accepts the gate requests.
type Commander interface {
	RequestAnimation() error
	RequestRandomDial() error
}

// Dispatch runs a named command. Names are case insensitive, and
// may be abbreviated to their first letter.
func Dispatch(c Commander, name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "animate", "a":
		return c.RequestAnimation()
	case "dial", "d":
		return c.RequestRandomDial()
	}
	return fmt.Errorf("%q: unknown command", name)
}
