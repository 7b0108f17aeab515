package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newGameNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a new game and wait for an opponent (you play white)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameCreated

			if err := client.Post(cmd.Context(), "/new_game", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "List games waiting for an opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result OpenGames

			if err := client.Get(cmd.Context(), "/open_games", &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <game-id>",
		Short: "Join an open game as black",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MessageResult

			if err := client.Post(cmd.Context(), "/join_game/"+url.PathEscape(args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
