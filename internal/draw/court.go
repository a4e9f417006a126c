package draw

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/tomz197/paddleball/internal/game"
	"github.com/tomz197/paddleball/internal/object"
)

// Overlay carries host-side state drawn on top of the court.
type Overlay struct {
	Controls     []string // Control help shown on the menu
	Subtitle     string
	BlinkOn      bool // Phase of blinking prompts
	Inactive     bool // Show the inactivity warning
	DisconnectIn time.Duration
	Stats        []string // Result screen report
}

var titleArt = []string{
	` ___  _   ___  ___  _    ___ ___   _   _    _    `,
	`| _ \/_\ |   \|   \| |  | __| _ ) /_\ | |  | |   `,
	`|  _/ _ \| |) | |) | |__| _|| _ \/ _ \| |__| |__ `,
	`|_|/_/ \_\___/|___/|____|___|___/_/ \_\____|____|`,
}

// PaintFrame draws one snapshot: court bodies through the canvas, then text overlays
// through the chunk writer. The caller flushes cw.
func PaintFrame(c *Canvas, cw *ChunkWriter, rs game.RenderState, ov Overlay) {
	if rs.Viewport.Width != c.LogicalWidth() || rs.Viewport.Height != c.LogicalHeight() {
		c.SetLogicalSize(rs.Viewport.Width, rs.Viewport.Height)
	}

	c.Clear()
	if rs.State != game.StateMenu {
		paintBodies(c, rs)
	}
	c.Render(cw)
	c.RenderBorder(cw)

	p := textPainter{c: c, cw: cw}
	if ov.Inactive {
		p.inactivity(ov)
		return
	}

	switch rs.State {
	case game.StateMenu:
		p.menu(ov)
	case game.StateCountdown:
		p.scores(rs)
		p.countdown(rs)
	case game.StatePlaying:
		p.scores(rs)
	case game.StatePaused:
		p.scores(rs)
		p.paused(ov)
	case game.StateGameOver:
		p.scores(rs)
		p.gameOver(rs, ov)
	}
}

func paintBodies(c *Canvas, rs game.RenderState) {
	vp := rs.Viewport
	c.DrawDashedLine(vp.CenterX(), vp.Height/24)

	for _, pv := range []game.PaddleView{rs.Left, rs.Right} {
		c.FillRect(pv.X, pv.Y, pv.Width, pv.Height)
	}

	if rs.State != game.StateGameOver {
		x, y := rs.BallAt()
		c.FillCircle(x, y, rs.Ball.Radius)
	}
}

type textPainter struct {
	c  *Canvas
	cw *ChunkWriter
}

func (p textPainter) at(col, row int, s string) {
	if row < 1 || row > p.c.TerminalHeight() {
		return
	}
	col = max(col, 1)
	p.cw.WriteAt(col, row, s)
	p.c.MarkTextDirty(col, row, utf8.RuneCountInString(s))
}

func (p textPainter) centered(row int, s string) {
	p.at(p.c.TerminalWidth()/2-utf8.RuneCountInString(s)/2, row, s)
}

func (p textPainter) centerRow() int {
	return p.c.TerminalHeight() / 2
}

func (p textPainter) scores(rs game.RenderState) {
	p.centered(1, fmt.Sprintf("%-8.8s %2d : %-2d %8.8s", rs.Left.Name, rs.Left.Score, rs.Right.Score, rs.Right.Name))
}

func (p textPainter) menu(ov Overlay) {
	width := 0
	for _, line := range titleArt {
		width = max(width, len(line))
	}
	top := p.centerRow() - 7
	col := p.c.TerminalWidth()/2 - width/2
	for i, line := range titleArt {
		p.at(col, top+i, line)
	}

	row := top + len(titleArt) + 1
	if ov.Subtitle != "" {
		p.centered(row, ov.Subtitle)
	}
	row += 2
	if len(ov.Controls) > 0 {
		p.centered(row, "Controls")
		for i, line := range ov.Controls {
			p.centered(row+1+i, line)
		}
		row += len(ov.Controls) + 2
	}

	if ov.BlinkOn {
		p.centered(row, ">>  Press SPACE to Start  <<")
	}
}

func (p textPainter) countdown(rs game.RenderState) {
	row := p.centerRow()
	p.centered(row-2, "GET READY")
	p.centered(row, fmt.Sprintf("%d", rs.Countdown))
	if rs.PendingPause {
		p.centered(row+2, "pause queued")
	}
}

func (p textPainter) paused(ov Overlay) {
	row := p.centerRow()
	p.centered(row-1, "P A U S E D")
	if ov.BlinkOn {
		p.centered(row+1, "Press P to resume")
	}
}

func (p textPainter) gameOver(rs game.RenderState, ov Overlay) {
	row := p.centerRow()

	title := "DRAW"
	switch rs.Winner {
	case object.SideLeft:
		title = rs.Left.Name + " WINS"
	case object.SideRight:
		title = rs.Right.Name + " WINS"
	}
	if rs.TimedOut {
		title = "TIME UP - " + title
	}
	p.centered(row-3, title)
	p.centered(row-1, fmt.Sprintf("%d : %d", rs.Left.Score, rs.Right.Score))
	p.centered(row, "Match time "+rs.Duration.Round(time.Second).String())

	row += 2
	for _, line := range ov.Stats {
		p.centered(row, line)
		row++
	}
	if len(ov.Stats) > 0 {
		row++
	}
	if ov.BlinkOn {
		p.centered(row, ">>  Press SPACE for a rematch  <<")
	}
}

func (p textPainter) inactivity(ov Overlay) {
	row := p.centerRow()
	p.centered(row-2, "INACTIVITY WARNING")
	p.centered(row, fmt.Sprintf("You will be disconnected in %d seconds.", int(ov.DisconnectIn.Seconds())))
	p.centered(row+2, "Press any key to continue")
}
