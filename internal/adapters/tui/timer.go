package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/timebox-cli/internal/config"
	"github.com/xvierd/timebox-cli/internal/domain"
	"github.com/xvierd/timebox-cli/internal/services"
)

// program runs a bubbletea model and quits it when ctx is cancelled.
func program(ctx context.Context, model tea.Model, opts ...tea.ProgramOption) (tea.Model, error) {
	p := tea.NewProgram(model, opts...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		p.Quit()
	}()

	final, err := p.Run()
	cancel()
	wg.Wait()
	if err != nil {
		return final, fmt.Errorf("failed to run TUI: %w", err)
	}
	return final, nil
}

// Run starts the fullscreen UI and blocks until it quits or ctx is cancelled.
func Run(ctx context.Context, list *services.TimeboxListService, active *services.ActiveTimeboxService, theme *config.ThemeConfig) error {
	_, err := program(ctx, NewModel(ctx, list, active, theme), tea.WithAltScreen())
	return err
}

// RunInline shows the inline countdown of an already started run and blocks
// until it is stopped. A cancelled ctx stops the run as well. The recorded run
// is returned.
func RunInline(ctx context.Context, active *services.ActiveTimeboxService, theme *config.ThemeConfig) (*domain.RunRecord, error) {
	final, err := program(ctx, NewInlineModel(ctx, active, theme))
	if err != nil {
		return nil, err
	}
	if m, ok := final.(InlineModel); ok && m.stopped {
		return m.record, m.lastError
	}
	return active.Stop(context.Background())
}
