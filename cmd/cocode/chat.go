package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kadirpekel/cocode/internal/driver"
	"github.com/kadirpekel/cocode/internal/protocol"
)

func newChatCmd() *cobra.Command {
	var providerName, model string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation, one turn per line of stdin",
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

			ctx := context.Background()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprint(cmd.OutOrStdout(), "> ")
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					fmt.Fprint(cmd.OutOrStdout(), "> ")
					continue
				}
				if line == "/exit" || line == "/quit" {
					return nil
				}
				if line == "/cancel" {
					d.Cancel()
					fmt.Fprint(cmd.OutOrStdout(), "> ")
					continue
				}

				d.SubmitInput(protocol.UserMessage(protocol.InputText(line)))
				text, err := d.RunTurn(ctx)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), text)
				}
				fmt.Fprint(cmd.OutOrStdout(), "> ")
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&providerName, "provider", "", "provider name from config (defaults to the first configured provider)")
	cmd.Flags().StringVar(&model, "model", "", "model name to request")
	return cmd
}
