package tools

import "fmt"

// defaultOutputLimit bounds captured tool output before it is embedded in a
// result payload. Keeps a runaway console loop from flooding the transcript.
const defaultOutputLimit = 30000

// TruncateOutput truncates output to maxChars, keeping the head and tail and
// replacing the middle with a warning marker. Output at or under the limit is
// returned unchanged.
func TruncateOutput(output string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = defaultOutputLimit
	}
	if len(output) <= maxChars {
		return output
	}

	marker := fmt.Sprintf("\n\n[WARNING: output truncated, %d of %d characters shown]\n\n", maxChars, len(output))
	keep := maxChars - len(marker)
	if keep < 2 {
		return output[:maxChars]
	}

	head := keep * 2 / 3
	tail := keep - head
	return output[:head] + marker + output[len(output)-tail:]
}
