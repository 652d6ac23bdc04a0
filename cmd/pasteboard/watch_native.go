//go:build darwin || windows || (linux && !android)

package main

import (
	"context"

	"golang.design/x/clipboard"
)

// watchNative streams text changes of the host clipboard. It fails where
// golang.design/x/clipboard cannot initialise, e.g. builds without cgo or
// sessions without a display.
func watchNative(ctx context.Context) (<-chan []byte, error) {
	if err := clipboard.Init(); err != nil {
		return nil, err
	}
	return clipboard.Watch(ctx, clipboard.FmtText), nil
}
