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
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 2 * time.Second

// MQTT connects the gate to a broker. Commands are received on
// <topic>/command, status is published retained on <topic>/status and
// log lines on <topic>/log.
type MQTT struct {
	client mqtt.Client
	topic  string
}

// DialMQTT connects to the broker.
func DialMQTT(broker, clientID, topic string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("Connected to MQTT broker at %s", broker)
	return &MQTT{client: client, topic: topic}, nil
}

// Subscribe dispatches commands published to the command topic.
func (m *MQTT) Subscribe(c Commander) error {
	token := m.client.Subscribe(m.topic+"/command", 0, m.handler(c))
	token.Wait()
	return token.Error()
}

func (m *MQTT) handler(c Commander) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		cmd := string(msg.Payload())
		if err := Dispatch(c, cmd); err != nil {
			log.Printf("mqtt %s: %v", cmd, err)
		}
	}
}

// Printf logs the line locally and publishes it to the log topic.
func (m *MQTT) Printf(format string, v ...interface{}) {
	s := fmt.Sprintf(format, v...)
	log.Print(s)
	m.client.Publish(m.topic+"/log", 0, false, s)
}

// PublishStatus publishes v as JSON to the status topic.
func (m *MQTT) PublishStatus(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	token := m.client.Publish(m.topic+"/status", 0, true, b)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("status publish timed out")
	}
	return token.Error()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
