package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm asks a y/N question and reports approval. Anything but an
// explicit yes declines, matching the cautious default of a tool that
// rewrites shared pipeline state.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToUpper(strings.TrimSpace(line))
	return answer == "Y" || answer == "YES"
}
