// Package server streams a running simulation to browsers over websockets
// and applies the brush input they send back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pythonian23/stablefluid/config"
	"github.com/pythonian23/stablefluid/fluid"
	"github.com/pythonian23/stablefluid/scene"
)

// Frame is broadcast to every client after each simulation step.
type Frame struct {
	Type    string      `json:"type"`
	Frame   int         `json:"frame"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Max     float64     `json:"max"`
	Density []float32   `json:"density"` // interior cells, row-major
	Stats   fluid.Stats `json:"stats"`
}

// Message is a control message from a client.
//
//	{"type":"stroke","x0":3,"y0":4,"x1":9,"y1":4}
//	{"type":"dab","x1":5,"y1":5}
//	{"type":"mode","mode":"velocity"}
//	{"type":"settings","dt":0.05,"diffusion":0.0001}
//	{"type":"clear"}
type Message struct {
	Type      string   `json:"type"`
	X0        int      `json:"x0"`
	Y0        int      `json:"y0"`
	X1        int      `json:"x1"`
	Y1        int      `json:"y1"`
	Mode      string   `json:"mode,omitempty"`
	DT        *float64 `json:"dt,omitempty"`
	Diffusion *float64 `json:"diffusion,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server owns a Fluid. Only the goroutine running Run touches it; clients
// reach it through the command channel.
type Server struct {
	fluid    *fluid.Fluid
	scene    scene.Scene
	brush    scene.Brush
	interval time.Duration
	log      *slog.Logger

	commands chan Message

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	maxDT        float64
	maxDiffusion float64

	lastMu   sync.RWMutex
	last     *Frame
	lastData []byte
}

// Limits applied to settings messages when the configuration leaves them zero.
const (
	DefaultMaxDT        = 5.0
	DefaultMaxDiffusion = 1.0
)

// New builds a server around f. Emitters in sc are applied every step.
func New(f *fluid.Fluid, sc scene.Scene, b scene.Brush, cfg config.ServerConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	maxDT, maxDiffusion := cfg.MaxDT, cfg.MaxDiffusion
	if maxDT <= 0 {
		maxDT = DefaultMaxDT
	}
	if maxDiffusion <= 0 {
		maxDiffusion = DefaultMaxDiffusion
	}
	return &Server{
		fluid:        f,
		scene:        sc,
		brush:        b,
		interval:     time.Second / time.Duration(fps),
		log:          log,
		commands:     make(chan Message, 64),
		clients:      make(map[*websocket.Conn]*sync.Mutex),
		maxDT:        maxDT,
		maxDiffusion: maxDiffusion,
	}
}

// Handler serves the websocket at /ws and the latest statistics at /stats.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// ListenAndServe runs the simulation and the HTTP server until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	go s.Run(ctx)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run steps the simulation on a ticker and broadcasts each frame. It returns
// when ctx is done.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	lastReport := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.closeClients()
			return
		case msg := <-s.commands:
			if err := s.apply(msg); err != nil {
				s.log.Warn("rejected message", "type", msg.Type, "err", err)
			}
		case <-ticker.C:
			start := time.Now()
			s.step()
			elapsed := time.Since(start)
			if elapsed > s.interval {
				s.log.Warn("slow frame", "elapsed", elapsed, "budget", s.interval)
			}
			if time.Since(lastReport) > 10*time.Second {
				lastReport = time.Now()
				s.log.Info("simulating", "stats", s.fluid.Stats(), "clients", s.clientCount())
			}
		}
	}
}

func (s *Server) step() {
	s.scene.Apply(s.fluid)
	s.fluid.Simulate()

	frame := s.snapshot()
	data, err := json.Marshal(frame)
	if err != nil {
		// Non-finite values have no JSON form. Reset the session.
		s.log.Error("clearing unencodable fluid", "frame", frame.Frame, "err", err)
		s.fluid.Clear()
		frame = s.snapshot()
		if data, err = json.Marshal(frame); err != nil {
			s.log.Error("encoding frame", "err", err)
			return
		}
	}

	s.lastMu.Lock()
	s.last, s.lastData = frame, data
	s.lastMu.Unlock()
	s.broadcast(data)
}

func (s *Server) snapshot() *Frame {
	d := s.fluid.Density()
	w, h := d.Width, d.Height
	values := d.Values()
	out := make([]float32, 0, w*h)
	for y := 1; y <= h; y++ {
		for x := 1; x <= w; x++ {
			out = append(out, float32(values[x+(w+2)*y]))
		}
	}
	return &Frame{
		Type:    "frame",
		Frame:   s.fluid.Frame(),
		Width:   w,
		Height:  h,
		Max:     d.Max,
		Density: out,
		Stats:   s.fluid.Stats(),
	}
}

func (s *Server) apply(msg Message) error {
	switch msg.Type {
	case "stroke":
		s.brush.Stroke(s.fluid, scene.Point{X: msg.X0, Y: msg.Y0}, scene.Point{X: msg.X1, Y: msg.Y1})
	case "dab":
		s.brush.Dab(s.fluid, scene.Point{X: msg.X1, Y: msg.Y1})
	case "mode":
		m, err := scene.ParseMode(msg.Mode)
		if err != nil {
			return err
		}
		s.brush.Mode = m
	case "settings":
		if err := s.checkSettings(msg); err != nil {
			return err
		}
		if msg.DT != nil {
			s.fluid.SetTimestep(*msg.DT)
		}
		if msg.Diffusion != nil {
			s.fluid.SetDiffusion(*msg.Diffusion)
		}
		s.log.Info("settings changed", "dt", s.fluid.Timestep(), "diffusion", s.fluid.Diffusion())
	case "clear":
		s.fluid.Clear()
	default:
		return fmt.Errorf("server: unknown message type %q", msg.Type)
	}
	return nil
}

// checkSettings accepts a dt in (0, maxDT] and a diffusion in
// [0, maxDiffusion]. NaN fails every comparison and is rejected.
func (s *Server) checkSettings(msg Message) error {
	if dt := msg.DT; dt != nil && !(*dt > 0 && *dt <= s.maxDT) {
		return fmt.Errorf("server: dt %v outside (0, %v]", *dt, s.maxDT)
	}
	if d := msg.Diffusion; d != nil && !(*d >= 0 && *d <= s.maxDiffusion) {
		return fmt.Errorf("server: diffusion %v outside [0, %v]", *d, s.maxDiffusion)
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = connMu
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()
	s.log.Info("client connected", "remote", r.RemoteAddr)

	s.lastMu.RLock()
	last := s.lastData
	s.lastMu.RUnlock()
	if last != nil {
		connMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, last)
		connMu.Unlock()
		if err != nil {
			return
		}
	}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read", "err", err)
			}
			return
		}
		select {
		case s.commands <- msg:
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.lastMu.RLock()
	last := s.last
	s.lastMu.RUnlock()

	var stats fluid.Stats
	if last != nil {
		stats = last.Stats
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.log.Warn("encoding stats", "err", err)
	}
}

func (s *Server) broadcast(data []byte) {
	var failed []*websocket.Conn

	s.clientsMu.RLock()
	for conn, mu := range s.clients {
		mu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mu.Unlock()
		if err != nil {
			s.log.Debug("websocket write", "err", err)
			conn.Close()
			failed = append(failed, conn)
		}
	}
	s.clientsMu.RUnlock()

	if len(failed) > 0 {
		s.clientsMu.Lock()
		for _, conn := range failed {
			delete(s.clients, conn)
		}
		s.clientsMu.Unlock()
	}
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn, mu := range s.clients {
		mu.Lock()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		mu.Unlock()
		conn.Close()
		delete(s.clients, conn)
	}
}

func (s *Server) clientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
