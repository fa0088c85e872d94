package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"phpc/internal/driver"
	"phpc/internal/ui"
)

// runWithUI runs work on its own goroutine while the progress view consumes
// the events it produces. The work error wins over a UI error.
func runWithUI(ctx context.Context, title string, work func(ctx context.Context, sink driver.ProgressSink) error) error {
	events := make(chan driver.Event, 256)
	outcome := make(chan error, 1)

	go func() {
		err := work(ctx, driver.ChannelSink{Ch: events})
		outcome <- err
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	err := <-outcome
	if err != nil {
		return err
	}
	return uiErr
}
