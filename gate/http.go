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

// HTTP server for the gate status.

package gate

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/gorilla/websocket"
)

const (
	imageSize    = 400
	ringRadius   = 140
	lightRadius  = 180
	pollInterval = 100 * time.Millisecond
)

var upgrader = websocket.Upgrader{CheckOrigin: sameOrigin}

// sameOrigin accepts requests without an Origin header (non-browser
// clients) and browser requests from pages served by this host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// StatusServer serves a picture of the gate, its status as JSON and
// a websocket status feed, and accepts dial and animate commands.
type StatusServer struct {
	ctrl *Controller
	lit  func() []bool
	mux  *http.ServeMux
}

// NewStatusServer creates the server. lit returns the indicator states
// for the picture, and may be nil.
func NewStatusServer(c *Controller, lit func() []bool) *StatusServer {
	s := &StatusServer{ctrl: c, lit: lit, mux: http.NewServeMux()}
	s.mux.HandleFunc("/gate.png", s.image)
	s.mux.HandleFunc("/status", s.status)
	s.mux.HandleFunc("/ws", s.feed)
	s.mux.HandleFunc("/animate", s.command(c.RequestAnimation))
	s.mux.HandleFunc("/dial", s.command(c.RequestRandomDial))
	return s
}

func (s *StatusServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs the server on the port until it fails.
func (s *StatusServer) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting server on %s", addr)
	server := &http.Server{Addr: addr, Handler: s}
	return server.ListenAndServe()
}

func (s *StatusServer) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.ctrl.Status()); err != nil {
		log.Printf("Error writing status: %v", err)
	}
}

func (s *StatusServer) command(f func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		if !sameOrigin(r) {
			http.Error(w, "cross-origin request", http.StatusForbidden)
			return
		}
		if err := f(); err != nil {
			http.Error(w, err.Error(), statusCode(err))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, ErrCalibrating), errors.Is(err, ErrDialInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrHalted):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// feed sends the status whenever it changes, until the client goes away.
func (s *StatusServer) feed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()
	done := make(chan struct{})
	go func() {
		// Reads are needed to see the close.
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	var last Status
	first := true
	for {
		st := s.ctrl.Status()
		if first || !st.Same(last) {
			if err := conn.WriteJSON(st); err != nil {
				return
			}
			last = st
			first = false
		}
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *StatusServer) image(w http.ResponseWriter, r *http.Request) {
	var lit []bool
	if s.lit != nil {
		lit = s.lit()
	}
	c := drawGate(s.ctrl.Status(), lit)
	w.Header().Set("Content-Type", "image/png")
	if err := c.EncodePNG(w); err != nil {
		log.Printf("Error writing image: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// drawGate draws the ring rotated so the symbol under the chevron is at
// the top, with the indicators around it.
func drawGate(st Status, lit []bool) *gg.Context {
	const mid = imageSize / 2
	c := gg.NewContext(imageSize, imageSize)
	c.SetRGB(0.1, 0.1, 0.12)
	c.Clear()
	c.SetRGB(0.5, 0.5, 0.55)
	c.SetLineWidth(24)
	c.DrawCircle(mid, mid, ringRadius)
	c.Stroke()
	n := st.Symbols
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		a := angle(i-st.Position, n)
		x, y := polar(mid, ringRadius, a)
		if i == 0 {
			c.SetRGB(1, 0.3, 0.2)
			c.DrawCircle(x, y, 6)
		} else {
			c.SetRGB(0.9, 0.9, 0.9)
			c.DrawCircle(x, y, 3)
		}
		c.Fill()
	}
	for i, on := range lit {
		x, y := polar(mid, lightRadius, angle(i, len(lit)))
		if on {
			c.SetRGB(1, 0.55, 0)
		} else {
			c.SetRGB(0.25, 0.2, 0.15)
		}
		c.DrawRegularPolygon(3, x, y, 10, math.Pi)
		c.Fill()
	}
	c.SetRGB(1, 1, 1)
	label := st.Mode
	if st.Homed {
		label = fmt.Sprintf("%s  %d", st.Mode, st.Position)
	}
	c.DrawStringAnchored(label, mid, mid, 0.5, 0.5)
	return c
}

// angle of slot i of n, clockwise from the top.
func angle(i, n int) float64 {
	return float64(Wrap(i, n))*2*math.Pi/float64(n) - math.Pi/2
}

func polar(mid, r, a float64) (float64, float64) {
	return mid + r*math.Cos(a), mid + r*math.Sin(a)
}
