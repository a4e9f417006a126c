package spectate

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomz197/paddleball/internal/config"
	"github.com/tomz197/paddleball/internal/game"
	"github.com/tomz197/paddleball/internal/object"
)

func TestNewFrame(t *testing.T) {
	id := uuid.New()
	rs := game.RenderState{
		MatchID:  id,
		State:    game.StatePlaying,
		Viewport: object.Viewport{Width: 800, Height: 480},
		Ball:     game.BallView{X: 100, Y: 50, DX: 60, DY: -30, Radius: 8},
		Left:     game.PaddleView{X: 24, Y: 200, Width: 12, Height: 86, Name: "cpu-1", Score: 2},
		Right:    game.PaddleView{X: 764, Y: 180, Width: 12, Height: 86, Name: "cpu-2", Score: 3},
		Alpha:    0.5,
		Step:     0.5,
	}

	f := NewFrame(rs)
	if f.Match != id.String() || f.State != "playing" {
		t.Errorf("header = %q %q", f.Match, f.State)
	}
	// Extrapolated by half a step.
	if f.Ball.X != 115 || f.Ball.Y != 42.5 || f.Ball.R != 8 {
		t.Errorf("ball = %+v", f.Ball)
	}
	if f.Left.Score != 2 || f.Right.Name != "cpu-2" || f.Right.W != 12 {
		t.Errorf("players = %+v / %+v", f.Left, f.Right)
	}
	if f.Winner != "" {
		t.Errorf("winner set mid-match: %q", f.Winner)
	}

	rs.State = game.StateGameOver
	rs.Winner = object.SideRight
	if f := NewFrame(rs); f.Winner != "right" || f.Ball.X != 100 {
		t.Errorf("game over frame = %+v", f)
	}
}

func TestHandlerStreamsFrames(t *testing.T) {
	cfg := config.Default()
	cfg.CountdownSeconds = 0

	srv := httptest.NewServer(NewHandler(cfg, nil, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var match string
	for i := 0; i < 3; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if f.State != "playing" {
			t.Errorf("frame %d state = %q, want playing", i, f.State)
		}
		if f.Width != config.SpectateWidth || f.Height != config.SpectateHeight {
			t.Errorf("frame %d court = %vx%v", i, f.Width, f.Height)
		}
		if i == 0 {
			match = f.Match
		} else if f.Match != match {
			t.Errorf("match id changed mid-stream: %s -> %s", match, f.Match)
		}
	}
}

func TestHandlerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.FrameTime = 0

	srv := httptest.NewServer(NewHandler(cfg, nil, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded against a broken engine config")
	}
	if resp == nil || resp.StatusCode != 500 {
		t.Errorf("response = %v, want 500", resp)
	}
}
