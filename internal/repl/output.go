package repl

import (
	"fmt"
	"os"
	"time"

	"github.com/notexe/rin/internal/api"
	"github.com/notexe/rin/internal/ui"
)

func (r *REPL) displayResponse(response *api.MessageResponse, duration time.Duration, usage api.Usage, apiCallCount int) {
	r.status.Hide()

	fmt.Println()
	fmt.Println(r.formatter.FormatAssistantMessage(r.markdown.Render(response.Content)))

	if r.Config.UI.ShowTokenCount {
		fmt.Println(r.formatter.FormatTokenUsage(usage, ui.TokenUsageOptions{
			Duration:     duration,
			Model:        r.Config.Model.Name,
			APICallCount: apiCallCount,
		}))
	}

	fmt.Println()
	os.Stdout.Sync() // Flush to ensure output displays immediately
}

func (r *REPL) displayError(err error) {
	r.status.Hide()
	fmt.Println(r.formatter.FormatError(err))
	fmt.Println()
}

func (r *REPL) displayWelcome() {
	fmt.Print(r.formatter.FormatWelcome(r.Config.Model.Name, r.Provider.Name()))
}

func (r *REPL) displayHelp() {
	fmt.Print(r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	fmt.Println(r.formatter.FormatInfo(msg))
	fmt.Println()
}

func (r *REPL) displaySystem(msg string) {
	fmt.Println(r.formatter.FormatSystem(msg))
	fmt.Println()
}
