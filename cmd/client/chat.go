package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"groupchat/composer"
	"groupchat/directory"
	"groupchat/domain"
	"groupchat/domain/event"
	"groupchat/errors"
	"groupchat/infrastructure/grpc/client"
	"groupchat/projection"
	"groupchat/realtime"
	"groupchat/runtime/workers"
	"groupchat/session"
	"groupchat/ui"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the chat screen",
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	theme := domain.ParseTheme(config.Theme)
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Session
	holder := session.NewHolder(a.log, a.backend)
	if err := holder.Start(ctx); err != nil {
		return err
	}
	defer holder.Close()
	if _, ok := holder.CurrentUser(); !ok {
		return fmt.Errorf("%w, run 'groupchat login' first", errors.ErrNotAuthenticated)
	}

	// 2. Client state
	feed := projection.NewFeed(a.log, a.backend)
	groups := directory.NewDirectory(a.log, a.backend, holder)
	input := composer.NewComposer(a.log, a.backend, holder, groups, feed)

	model := ui.NewModel(ui.Deps{
		Ctx:       ctx,
		Log:       a.log,
		Session:   holder,
		Directory: groups,
		Feed:      feed,
		Composer:  input,
		Searcher:  a.backend,
		Theme:     theme,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := a.backend.OnAuthStateChange(func(e event.AuthStateChanged) {
		program.Send(ui.AuthChangedMsg{Event: e})
	})
	defer unsubscribe()

	// 3. Background work, stopped when the screen closes
	bridge := realtime.NewBridge(a.log, a.backend, feed, func(e event.MessageInserted) {
		program.Send(ui.LiveMessageMsg{Event: e})
	})
	supervisor := workers.NewSupervisor(a.log, config.RestartInterval).
		Add(client.NewRefreshWorker(a.log, a.backend, config.RefreshRetry))

	g, gctx := errgroup.WithContext(ctx)
	background, cancel := context.WithCancel(gctx)
	g.Go(func() error {
		supervisor.Run(background)
		return nil
	})
	g.Go(func() error {
		// A dropped feed is not retried, the screen keeps working without it
		if err := bridge.Run(background); err != nil {
			a.log.Warn("Realtime feed stopped", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if stderrors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
