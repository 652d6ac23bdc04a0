//go:build !(darwin || windows || (linux && !android))

package main

import (
	"context"
	"errors"
)

func watchNative(context.Context) (<-chan []byte, error) {
	return nil, errors.New("no clipboard notifications on this platform")
}
