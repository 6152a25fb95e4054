package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	log "mftp/pkg/minilog"
)

// Attach runs the interactive prompt loop: read a line, skip if blank,
// dispatch it, repeat until the user exits or sends EOF (^D).
func (c *Client) Attach(prompt string) {
	input := liner.NewLiner()
	defer input.Close()

	input.SetCtrlCAborts(true)

	for {
		line, err := input.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			log.Error("reading command: %v", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		input.AppendHistory(line)

		if c.Run(line) {
			return
		}
	}
}
