package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentchat/agentchat/chatloop"
	"github.com/agentchat/agentchat/tools"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := tools.NewDefaultRegistry(tools.SearchCredentials{
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
	})

	sessionCfg := chatloop.DefaultSessionConfig()
	sessionCfg.MaxIterations = cfg.Loop.MaxIterations

	session := chatloop.NewSession(registry, &sessionCfg)
	defer session.Close()

	if err := session.Configure(cfg.ProviderWire()); err != nil {
		return err
	}

	go printEvents(session)

	fmt.Printf("agentchat: %s / %s (type /quit to exit)\n", cfg.Provider.ID, cfg.Provider.Model)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		if err := session.SendMessage(cmd.Context(), line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		history := session.History()
		if len(history) > 0 {
			last := history[len(history)-1]
			fmt.Println(last.Content)
		}
	}
}

// printEvents surfaces tool activity so the user can see what the agent is
// doing between their prompt and its answer.
func printEvents(session *chatloop.Session) {
	for event := range session.Events() {
		switch event.Kind {
		case chatloop.EventToolCallStart:
			fmt.Printf("  [tool] %v\n", event.Data["name"])
		case chatloop.EventError:
			fmt.Printf("  [error] %v\n", event.Data["error"])
		}
	}
}
