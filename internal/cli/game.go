package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameOpenCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameBoardCmd())
	cmd.AddCommand(newGameMoveCmd())
	cmd.AddCommand(newGameHistoryCmd())
	cmd.AddCommand(newGameWatchCmd())

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameSummaries

			if err := client.Get(cmd.Context(), "/get_games", &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func fetchBoard(ctx context.Context, id string) (Board, error) {
	var result Board
	err := client.Get(ctx, "/get_board/"+url.PathEscape(id), &result)
	return result, err
}

func newGameBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board <game-id>",
		Short: "Show the current position of a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := fetchBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <game-id> <move>",
		Short: "Make a move, in UCI (e2e4) or SAN (e4, Nf3) notation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"move": args[1]}
			var result MoveResult

			if err := client.Post(cmd.Context(), "/make_move/"+url.PathEscape(args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			if !result.Success {
				return fmt.Errorf("move rejected: %s", result.Error)
			}
			return nil
		},
	}
}

func newGameHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <game-id>",
		Short: "List the moves played so far",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Moves

			if err := client.Get(cmd.Context(), "/moves/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameWatchCmd() *cobra.Command {
	var interval time.Duration
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch <game-id>",
		Short: "Poll a game and print the board whenever it changes, until it ends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return errors.New("--interval must be positive")
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			ctx := cmd.Context()

			var deadline <-chan time.Time
			if timeout > 0 {
				timer := time.NewTimer(timeout)
				defer timer.Stop()
				deadline = timer.C
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			last := ""
			for {
				board, err := fetchBoard(ctx, args[0])
				if err != nil {
					return err
				}
				if key := board.Position + "|" + board.Status; key != last {
					out.Print(board)
					last = key
				}
				if board.IsOver {
					return nil
				}

				select {
				case <-ctx.Done():
					return nil
				case <-deadline:
					return errors.New("timed out waiting for the game to end")
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up after this long (0 waits forever)")

	return cmd
}
