package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)

	// A trailing backslash continues the input on the next line, so long
	// prompts (email drafts especially) don't have to fit on one line.
	if !strings.HasSuffix(line, "\\") {
		return line, nil
	}

	lines := []string{strings.TrimSuffix(line, "\\")}
	r.rl.SetPrompt(r.formatter.FormatContinuePrompt())
	defer r.rl.SetPrompt(r.formatter.FormatPrompt())

	for {
		next, err := r.rl.Readline()
		if err != nil {
			return "", err
		}
		next = strings.TrimSpace(next)
		if strings.HasSuffix(next, "\\") {
			lines = append(lines, strings.TrimSuffix(next, "\\"))
			continue
		}
		lines = append(lines, next)
		break
	}

	fmt.Println(r.formatter.FormatPasteInfo(len(lines)))
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func (r *REPL) parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

func setupReadline(prompt string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              prompt,
		HistoryFile:         "",
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})

	return rl, err
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}
