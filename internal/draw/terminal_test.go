package draw

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestChunkWriterOffsetAndClear(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 3, 2)
	cw.Clear()
	cw.WriteAt(1, 1, "hi")
	if out.Len() != 0 {
		t.Fatal("wrote before Flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), escClear+"\033[3;4Hhi"; got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}

	out.Reset()
	cw.SetOffset(0, 0)
	cw.WriteAt(5, 7, "x")
	_ = cw.Flush()
	if got := out.String(); got != "\033[7;5Hx" {
		t.Errorf("after SetOffset = %q", got)
	}
}

func TestChunkWriterFlushesLargeFrame(t *testing.T) {
	out := &countingWriter{}
	cw := NewChunkWriter(out, 0, 0)
	frame := strings.Repeat("#", 20000)
	cw.Write([]byte(frame))
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if out.String() != frame {
		t.Fatalf("frame corrupted: %d bytes written", out.Len())
	}
	if out.writes < 2 {
		t.Errorf("writes = %d, want the frame split", out.writes)
	}
	if cw.Flush(); out.Len() != len(frame) {
		t.Error("second flush resent the frame")
	}
}

func TestRenderArea(t *testing.T) {
	size := TermSizeFunc(func() (int, int, error) { return 300, 100, nil })
	w, h, col, row, err := size.RenderArea(200, 60)
	if err != nil || w != 200 || h != 60 || col != 50 || row != 20 {
		t.Errorf("RenderArea = %d %d %d %d %v", w, h, col, row, err)
	}

	broken := TermSizeFunc(func() (int, int, error) { return 0, 0, errors.New("no tty") })
	if _, _, _, _, err := broken.RenderArea(200, 60); err == nil {
		t.Error("size error swallowed")
	}
}

func TestEnterLeaveGame(t *testing.T) {
	var out bytes.Buffer
	EnterGame(&out)
	LeaveGame(&out)
	if got, want := out.String(), escClear+escHideCursor+escClear+escShowCursor; got != want {
		t.Errorf("escapes = %q, want %q", got, want)
	}
}
