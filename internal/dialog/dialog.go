// Package dialog implements the confirmation step in front of every
// destructive action.
package dialog

import (
	"context"
	"errors"
	"sync/atomic"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/view"
)

var ErrBusy = errors.New("dialog: confirmation already running")

// Confirm is the state of one confirmation dialog.
type Confirm struct {
	Open         bool
	Title        string
	Description  string
	ItemName     string
	ConfirmLabel string
	BusyLabel    string
	Success      string
	Failure      string

	running atomic.Bool
}

type Outcome struct {
	Err   error
	Toast view.Toast
}

func (c *Confirm) Loading() bool {
	return c.running.Load()
}

// Run awaits confirm exactly once and closes the dialog whatever the result.
// A second Run while the first is still in flight returns ErrBusy without
// calling confirm.
func (c *Confirm) Run(ctx context.Context, confirm func(ctx context.Context) error) Outcome {
	if !c.running.CompareAndSwap(false, true) {
		return Outcome{Err: ErrBusy, Toast: view.Failure("This action is already in progress")}
	}
	defer c.running.Store(false)

	err := confirm(ctx)
	c.Open = false
	if err != nil {
		return Outcome{Err: err, Toast: view.Failure(apiclient.MessageOr(err, c.failure()))}
	}
	return Outcome{Toast: view.Success(c.success())}
}

func (c *Confirm) success() string {
	if c.Success != "" {
		return c.Success
	}
	return "Done"
}

func (c *Confirm) failure() string {
	if c.Failure != "" {
		return c.Failure
	}
	return "The action failed. Please try again."
}

func (c *Confirm) ConfirmText() string {
	if c.ConfirmLabel != "" {
		return c.ConfirmLabel
	}
	return "Delete"
}

func (c *Confirm) BusyText() string {
	if c.BusyLabel != "" {
		return c.BusyLabel
	}
	return "Deleting..."
}
