//go:build !cgo

package main

import (
	"errors"

	"github.com/taigrr/haywire/pkg/sceneconfig"
	"github.com/taigrr/haywire/pkg/viewer"
)

func runWindow(_ *viewer.Session, _ <-chan sceneconfig.Config, _ windowOptions) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
