package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionFailureKeepsUI(t *testing.T) {
	failed := errors.New("engine error")
	sessionDone := make(chan struct{})
	quit := make(chan struct{})
	uiDone := make(chan struct{})

	ui := func(ctx context.Context) error {
		defer close(uiDone)
		select {
		case <-quit:
		case <-ctx.Done():
		}
		return nil
	}
	session := func(ctx context.Context) error {
		defer close(sessionDone)
		return failed
	}

	result := make(chan error, 1)
	go func() { result <- runBeside(context.Background(), ui, session) }()

	<-sessionDone
	select {
	case <-uiDone:
		t.Fatal("ui stopped when the session failed")
	case <-time.After(50 * time.Millisecond):
	}

	close(quit)
	select {
	case err := <-result:
		if !errors.Is(err, failed) {
			t.Errorf("got %v, want %v", err, failed)
		}
	case <-time.After(time.Second):
		t.Fatal("runBeside did not return after the ui quit")
	}
}

func TestQuitEndsSession(t *testing.T) {
	ui := func(ctx context.Context) error { return nil }
	session := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}

	result := make(chan error, 1)
	go func() { result <- runBeside(context.Background(), ui, session) }()

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("session kept running after the ui quit")
	}
}

func TestSignalEndsBoth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ui := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
	session := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}

	result := make(chan error, 1)
	go func() { result <- runBeside(ctx, ui, session) }()
	cancel()

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelling did not stop the ui and the session")
	}
}
