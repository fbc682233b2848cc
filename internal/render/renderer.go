package render

import (
	"image/color"
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error
	Size() (columns, rows int)
	AddDecoration(col, row int, content string, frames int)
	RenderLoop(render func(frame uint64) bool, endRender func(renderDuration time.Duration))
	Fill(row, column int, message string)
	FillColor(row, column int, color color.RGBA, message string)
}
