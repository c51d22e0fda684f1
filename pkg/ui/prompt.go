// Package ui holds the small interactive surface of cutler.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/machlit/cutler/pkg/logging"
)

// Confirm asks a yes/no question on the terminal. acceptAll answers
// yes without prompting; a closed or non-interactive stdin answers no.
func Confirm(prompt string, acceptAll bool) bool {
	return confirmFrom(os.Stdin, os.Stderr, prompt, acceptAll)
}

func confirmFrom(in io.Reader, out io.Writer, prompt string, acceptAll bool) bool {
	logger := logging.GetLogger("ui")

	if acceptAll {
		logger.Info().Str("prompt", prompt).Msg("Auto-accepted")
		return true
	}

	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
