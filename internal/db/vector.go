package db

import (
	"strconv"
	"strings"
)

// VectorLiteral renders an embedding as a pgvector input literal:
// a bracketed, comma-separated list with each component formatted to six
// decimal places. The result is bound as a single parameter and cast with
// ::vector, never spliced into the template.
func VectorLiteral(vec []float32) string {
	var sb strings.Builder
	sb.Grow(len(vec)*10 + 2)
	sb.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', 6, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
