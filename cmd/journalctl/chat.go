package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/journallm/journallm/internal/api/validate"
	"github.com/journallm/journallm/internal/chat"
	"github.com/journallm/journallm/internal/contextwindow"
	"github.com/journallm/journallm/internal/model"
)

func init() {
	var startFlag, endFlag string
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the journal assistant over a date window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := validate.DateRange("--start", startFlag, "--end", endFlag)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), needs{store: true, backend: true})
			if err != nil {
				return err
			}
			defer a.Close()

			d := chat.NewDispatcher(contextwindow.New(a.store.Entries(), time.Now), a.backend, a.log)
			return runREPL(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), d, start, end)
		},
	}
	chatCmd.Flags().StringVar(&startFlag, "start", "", "start date for the context window (YYYY-MM-DD)")
	chatCmd.Flags().StringVar(&endFlag, "end", "", "end date for the context window (YYYY-MM-DD)")
	_ = chatCmd.MarkFlagRequired("start")
	_ = chatCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(chatCmd)
}

type replier interface {
	Reply(ctx context.Context, req chat.Request) (string, error)
}

// runREPL reads questions line by line until exit, quit, EOF or cancellation.
// Each answered question is appended to the history sent with the next one.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, r replier, start, end time.Time) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	// Scan cannot be interrupted, so on exit or cancellation this reader is
	// left blocked on stdin until the process ends. Callers passing their own
	// reader close it to release the goroutine.
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(out, "Journal assistant ready. Type 'exit' or 'quit' to leave.")
	var history []model.ConversationTurn
	for {
		fmt.Fprint(out, "You: ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = l
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if lower := strings.ToLower(question); lower == "exit" || lower == "quit" {
			return nil
		}

		answer, err := r.Reply(ctx, chat.Request{Message: question, Start: start, End: end, History: history})
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, "Assistant:", answer)
		history = append(history, model.ConversationTurn{User: question, Assistant: answer})
	}
}
