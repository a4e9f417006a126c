package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	escClear      = "\033[H\033[2J"
	escHideCursor = "\033[?25l"
	escShowCursor = "\033[?25h"
)

// ChunkWriter collects one frame of court pixels and overlay text and sends it to
// the terminal in maxChunkSize pieces, so a frame over SSH does not stall on one
// large write.
type ChunkWriter struct {
	buf    strings.Builder
	out    *bufio.Writer
	numBuf [20]byte
	offCol int
	offRow int
}

var _ io.Writer = (*ChunkWriter)(nil)

// NewChunkWriter writes frames to w. The offset centres the court in terminals
// larger than the render area.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		out:    bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset moves the court after a terminal resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol = offsetCol
	cw.offRow = offsetRow
}

// Write queues raw bytes; Canvas.Render and RenderBorder write through it.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	return cw.buf.Write(p)
}

// WriteAt queues text at a 1-based court cell.
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.buf.WriteString("\033[")
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(row+cw.offRow), 10))
	cw.buf.WriteByte(';')
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(col+cw.offCol), 10))
	cw.buf.WriteByte('H')
	cw.buf.WriteString(s)
}

// Clear queues a full terminal clear ahead of the rest of the frame.
func (cw *ChunkWriter) Clear() {
	cw.buf.WriteString(escClear)
}

// Flush sends the queued frame and empties the buffer.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf.String()
	cw.buf.Reset()
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := cw.out.WriteString(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return cw.out.Flush()
}

// TermSizeFunc returns the terminal size in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc reads the size of the local terminal on stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// RenderArea reads the terminal size and clamps it to the max render area.
func (f TermSizeFunc) RenderArea(maxWidth, maxHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int, err error) {
	termWidth, termHeight, err := f()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	renderWidth, renderHeight, offsetCol, offsetRow = ClampTermSize(termWidth, termHeight, maxWidth, maxHeight)
	return renderWidth, renderHeight, offsetCol, offsetRow, nil
}

// ClampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func ClampTermSize(termWidth, termHeight, maxWidth, maxHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, maxWidth)
	renderHeight = min(termHeight, maxHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// EnterGame clears the terminal and hides the cursor.
func EnterGame(w io.Writer) {
	io.WriteString(w, escClear+escHideCursor)
}

// LeaveGame clears the terminal and shows the cursor again.
func LeaveGame(w io.Writer) {
	io.WriteString(w, escClear+escShowCursor)
}

// ClearScreen clears the terminal immediately, bypassing any queued frame.
func ClearScreen(w io.Writer) {
	io.WriteString(w, escClear)
}
