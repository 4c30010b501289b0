package bundle

import (
	"fmt"
	"io"
)

// Concat copies sources to w in order with newLine between consecutive sources.
// No separator is written before the first or after the last source.
// It returns the number of bytes written.
func Concat(w io.Writer, newLine string, sources ...io.Reader) (int64, error) {
	var total int64

	for i, src := range sources {
		if i > 0 && newLine != "" {
			n, err := io.WriteString(w, newLine)
			total += int64(n)
			if err != nil {
				return total, fmt.Errorf("write separator: %w", err)
			}
		}

		n, err := io.Copy(w, src)
		total += n
		if err != nil {
			return total, fmt.Errorf("copy source %d: %w", i, err)
		}
	}

	return total, nil
}
