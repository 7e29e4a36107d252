package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kadirpekel/cocode/internal/driver"
	"github.com/kadirpekel/cocode/internal/protocol"
)

const defaultInstructions = "You are cocode, an agentic coding assistant running in a terminal. " +
	"Use the available tools to read, search and edit the workspace; narrate what you're about to do before tool calls that change state."

func newRunCmd() *cobra.Command {
	var providerName, model string

	cmd := &cobra.Command{
		Use:   "run [prompt]",
		Short: "Run a single turn against the given prompt and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(flagConfig, flagLogLevel)
			if err != nil {
				return err
			}
			defer rt.Shutdown(context.Background())
			if providerName == "" {
				providerName, err = defaultProviderName(rt.cfg)
				if err != nil {
					return err
				}
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			d := rt.newDriver(driver.Config{
				AgentID:           "main",
				IsMainAgent:       true,
				CWD:               cwd,
				ConversationID:    uuid.NewString(),
				Provider:          providerName,
				Model:             model,
				Instructions:      defaultInstructions,
				AutoCompactTarget: rt.cfg.AutoCompactTarget,
			})

			d.SubmitInput(protocol.UserMessage(protocol.InputText(args[0])))
			text, err := d.RunTurn(context.Background())
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	cmd.Flags().StringVar(&providerName, "provider", "", "provider name from config (defaults to the first configured provider)")
	cmd.Flags().StringVar(&model, "model", "", "model name to request")
	return cmd
}
