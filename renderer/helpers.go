package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// reportBuilder accumulates a markdown report.
type reportBuilder struct {
	*strings.Builder
}

func newReport() *reportBuilder {
	return &reportBuilder{Builder: new(strings.Builder)}
}

// Printf formats according to a format specifier and writes to the report.
func (r *reportBuilder) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

// ConditionalBlock buffers everything block writes and copies it to w only
// when block returns true. Sections that turn out empty leave no trace, not
// even their header.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	var buf bytes.Buffer
	if !block(&buf) {
		return
	}
	io.Copy(w, &buf)
}
