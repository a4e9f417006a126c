// Package spectate streams AI-vs-AI matches to browsers over a websocket.
package spectate

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/game"
	"github.com/tomz197/paddleball/internal/object"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	rematchDelay = 4 * time.Second
)

// Body is a rectangle or circle in court pixels.
type Body struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`
	R float64 `json:"r,omitempty"`
}

// Player is one paddle with its scoreboard line.
type Player struct {
	Body
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Frame is one JSON message on the wire.
type Frame struct {
	Match     string  `json:"match"`
	State     string  `json:"state"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Ball      Body    `json:"ball"`
	Left      Player  `json:"left"`
	Right     Player  `json:"right"`
	Countdown int     `json:"countdown,omitempty"`
	Winner    string  `json:"winner,omitempty"`
	TimedOut  bool    `json:"timed_out,omitempty"`
	Seconds   float64 `json:"seconds"`
}

// NewFrame flattens a snapshot, extrapolating the ball by the leftover alpha.
func NewFrame(rs game.RenderState) Frame {
	x, y := rs.BallAt()
	f := Frame{
		Match:     rs.MatchID.String(),
		State:     rs.State.String(),
		Width:     rs.Viewport.Width,
		Height:    rs.Viewport.Height,
		Ball:      Body{X: x, Y: y, R: rs.Ball.Radius},
		Left:      player(rs.Left),
		Right:     player(rs.Right),
		Countdown: rs.Countdown,
		TimedOut:  rs.TimedOut,
		Seconds:   rs.Duration.Seconds(),
	}
	if rs.State == game.StateGameOver {
		f.Winner = rs.Winner.String()
	}
	return f
}

func player(pv game.PaddleView) Player {
	return Player{
		Body:  Body{X: pv.X, Y: pv.Y, W: pv.Width, H: pv.Height},
		Name:  pv.Name,
		Score: pv.Score,
	}
}

// Handler upgrades requests and runs one attract-mode engine per connection.
type Handler struct {
	cfg      config.Game
	sink     game.Sink
	log      *log.Logger
	upgrader websocket.Upgrader
	interval time.Duration
}

// NewHandler creates a spectator endpoint. sink may be nil.
func NewHandler(cfg config.Game, sink game.Sink, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{
		cfg:  cfg,
		sink: sink,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Read-only stream
			},
		},
		interval: config.ClientTargetFrameTime,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	engine, err := game.New(h.cfg, game.Options{
		Viewport: object.Viewport{Width: config.SpectateWidth, Height: config.SpectateHeight},
		Names:    [2]string{"cpu-1", "cpu-2"},
		Logger:   h.log,
		Sink:     h.sink,
	})
	if err != nil {
		h.log.Error("spectator engine", "err", err)
		http.Error(w, "game unavailable", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	h.log.Info("spectator connected", "remote", r.RemoteAddr)
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readPump(conn, cancel)

	if err := h.stream(ctx, conn, engine); err != nil {
		h.log.Debug("spectator stream ended", "remote", r.RemoteAddr, "err", err)
	}
	h.log.Info("spectator disconnected", "remote", r.RemoteAddr)
}

// readPump discards client messages and keeps the pong deadline fresh. It cancels
// the stream once the connection fails or closes.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// stream drives the engine at the render rate and writes a frame per tick. Finished
// matches are restarted after rematchDelay.
func (h *Handler) stream(ctx context.Context, conn *websocket.Conn, engine *game.Engine) error {
	if err := engine.Start(); err != nil {
		return err
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	last := time.Now()
	var overSince time.Time
	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return ctx.Err()
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case now := <-ticker.C:
			if _, err := engine.Advance(now.Sub(last)); err != nil {
				return err
			}
			last = now
			engine.DrainEvents()

			if engine.State() == game.StateGameOver {
				if overSince.IsZero() {
					overSince = now
				} else if now.Sub(overSince) >= rematchDelay {
					overSince = time.Time{}
					if err := engine.Start(); err != nil {
						return err
					}
				}
			}

			conn.SetWriteDeadline(now.Add(writeWait))
			if err := conn.WriteJSON(NewFrame(engine.Snapshot())); err != nil {
				return err
			}
		}
	}
}
