package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/qnkhuat/chessbridge/pkg"
	"github.com/qnkhuat/chessbridge/pkg/config"
	"github.com/qnkhuat/chessbridge/pkg/display"
	"github.com/qnkhuat/chessbridge/pkg/gui"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logFile, err := pkg.InitLog(cfg.LogPath, "BRIDGE: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Down when receive killed signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		cancel()
	}()

	// the console link owns the terminal, so it never shares it with the board
	headless := cfg.Headless || cfg.Console || cfg.Port == config.PortStdio || !term.IsTerminal(int(os.Stdout.Fd()))
	if headless {
		out := os.Stdout
		if cfg.Port == config.PortStdio {
			out = os.Stderr
		}
		err = pkg.NewSession(cfg, display.NewHeadless(out)).Run(ctx)
	} else {
		err = runTerminal(ctx, cfg)
	}

	if err != nil {
		log.Printf("Exiting: %v", err)
		fmt.Fprintln(os.Stderr, err)
		logFile.Close()
		os.Exit(1)
	}
}

// runTerminal draws the board on the main goroutine while the session runs
// beside it.
func runTerminal(ctx context.Context, cfg *config.Config) error {
	theme, err := gui.ThemeByName(cfg.Theme)
	if err != nil {
		return err
	}

	mailbox := display.NewMailbox(display.DefaultLogQueueSize)
	app := gui.New(mailbox, theme)

	session := pkg.NewSession(cfg, mailbox)
	log.Printf("New session %s", session.Name)

	return runBeside(ctx, app.Run, func(ctx context.Context) error {
		err := session.Run(ctx)
		if err != nil {
			mailbox.Log("Press Esc to quit")
		}
		return err
	})
}

// runBeside runs session next to ui and returns once ui is done. A session
// that ends on its own leaves ui up so its last status stays readable. Ending
// ui, or cancelling ctx, ends the session.
func runBeside(ctx context.Context, ui, session func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- session(ctx)
	}()

	uiErr := ui(ctx)
	cancel()
	err := <-done
	if uiErr != nil {
		return uiErr
	}
	return err
}
