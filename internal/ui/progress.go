package ui

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/bubbles/progress"
)

// lineProgress prints one rendered bar per report. The bar is static so it
// works when output is piped.
type lineProgress struct {
	out     io.Writer
	title   string
	bar     progress.Model
	percent float64
	styled  bool
}

func newLineProgress(out io.Writer, title string, styled bool) *lineProgress {
	fmt.Fprintln(out, titleStyle.Render(title))
	return &lineProgress{
		out:    out,
		title:  title,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		styled: styled,
	}
}

func (p *lineProgress) Report(increment float64, message string) {
	p.percent = math.Min(1, p.percent+increment/100)
	if p.styled {
		fmt.Fprintf(p.out, "%s %s\n", p.bar.ViewAs(p.percent), message)
		return
	}
	fmt.Fprintf(p.out, "[%3.0f%%] %s\n", p.percent*100, message)
}

func (p *lineProgress) Done() {
	if p.styled {
		fmt.Fprintln(p.out, dimStyle.Render(p.title+": done"))
	}
}
