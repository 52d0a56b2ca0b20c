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
	"errors"
	"strings"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
	err   error
}

func (r *recorder) RequestAnimation() error {
	r.calls = append(r.calls, "animate")
	return r.err
}

func (r *recorder) RequestRandomDial() error {
	r.calls = append(r.calls, "dial")
	return r.err
}

func TestDispatch(t *testing.T) {
	r := &recorder{}
	for _, name := range []string{"animate", "A", " dial\r", "d"} {
		require.NoError(t, Dispatch(r, name), name)
	}
	assert.Equal(t, []string{"animate", "animate", "dial", "dial"}, r.calls)
	assert.Error(t, Dispatch(r, "open"))
	assert.Len(t, r.calls, 4)
}

func TestDispatchError(t *testing.T) {
	want := errors.New("busy")
	r := &recorder{err: want}
	assert.ErrorIs(t, Dispatch(r, "dial"), want)
}

func TestReadCommands(t *testing.T) {
	r := &recorder{}
	in := strings.NewReader("a\n\nbogus\ndial\nanimate\n")
	require.NoError(t, ReadCommands(in, r))
	assert.Equal(t, []string{"animate", "dial", "animate"}, r.calls)
}

// edges replays input levels, then fails.
type edges struct {
	levels []int
}

var errDone = errors.New("no more edges")

func (e *edges) Get() (int, error) {
	if len(e.levels) == 0 {
		return 0, errDone
	}
	v := e.levels[0]
	e.levels = e.levels[1:]
	return v, nil
}

func TestButton(t *testing.T) {
	in := &edges{levels: []int{1, 0, 1, 0, 0, 1, 0, 1}}
	b := NewButton(in, 500*time.Millisecond)
	// Each call to now advances the clock; the second press is held long.
	times := []time.Duration{0, 100 * time.Millisecond, time.Second, 2 * time.Second, 3 * time.Second, 3*time.Second + 499*time.Millisecond}
	base := time.Unix(0, 0)
	b.now = func() time.Time {
		d := times[0]
		times = times[1:]
		return base.Add(d)
	}
	r := &recorder{}
	err := b.Run(context.Background(), r)
	assert.ErrorIs(t, err, errDone)
	assert.Equal(t, []string{"animate", "dial", "animate"}, r.calls)
}

func TestButtonCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := NewButton(&edges{levels: []int{0, 1}}, time.Second)
	r := &recorder{}
	assert.ErrorIs(t, b.Run(ctx, r), context.Canceled)
	assert.Empty(t, r.calls)
}

type message struct {
	mqtt.Message
	payload string
}

func (m *message) Payload() []byte { return []byte(m.payload) }

type token struct {
	err error
}

func (t *token) Wait() bool                     { return true }
func (t *token) WaitTimeout(time.Duration) bool { return true }
func (t *token) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
func (t *token) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  interface{}
}

type client struct {
	mqtt.Client
	sent []published
}

func (c *client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, published{topic, retained, payload})
	return &token{}
}

func TestMQTTCommands(t *testing.T) {
	m := &MQTT{topic: "gate"}
	r := &recorder{}
	h := m.handler(r)
	h(nil, &message{payload: "dial"})
	h(nil, &message{payload: "nothing"})
	h(nil, &message{payload: "a"})
	assert.Equal(t, []string{"dial", "animate"}, r.calls)
}

func TestMQTTPublish(t *testing.T) {
	c := &client{}
	m := &MQTT{client: c, topic: "gate"}
	m.Printf("Change mode to: %s", "DIAL")
	require.NoError(t, m.PublishStatus(map[string]string{"mode": "DIAL"}))
	require.Len(t, c.sent, 2)
	assert.Equal(t, published{"gate/log", false, "Change mode to: DIAL"}, c.sent[0])
	assert.Equal(t, "gate/status", c.sent[1].topic)
	assert.True(t, c.sent[1].retained)
	assert.JSONEq(t, `{"mode":"DIAL"}`, string(c.sent[1].payload.([]byte)))
}
