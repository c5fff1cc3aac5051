package main

import (
	"context"
	"errors"

	"walksim/pkg/config"
	"walksim/pkg/geo"
	"walksim/pkg/pace"
	"walksim/pkg/route"
	"walksim/pkg/routefile"
	"walksim/pkg/sink"
)

// Exit statuses, one per error category.
const (
	exitOK         = 0
	exitFailure    = 1 // anything not classified below
	exitConfig     = 2
	exitValidation = 3
	exitRouteFile  = 4
	exitConnection = 5
	exitTransport  = 6
	exitCancelled  = 130
)

type category struct {
	target error
	code   int
	label  string
}

// Order matters: the first match wins, and a parse error may also wrap a coordinate error.
var categories = []category{
	{context.Canceled, exitCancelled, "cancelled"},
	{config.ErrInvalidConfig, exitConfig, "configuration error"},
	{pace.ErrInvalidSpeed, exitConfig, "configuration error"},
	{routefile.ErrParse, exitRouteFile, "route file error"},
	{route.ErrInvalidRoute, exitValidation, "validation error"},
	{geo.ErrInvalidCoordinate, exitValidation, "validation error"},
	{sink.ErrConnection, exitConnection, "connection error"},
	{sink.ErrTransport, exitTransport, "receiver error"},
}

func classify(err error) (int, string) {
	if err == nil {
		return exitOK, ""
	}
	for _, c := range categories {
		if errors.Is(err, c.target) {
			return c.code, c.label
		}
	}
	return exitFailure, "error"
}

func exitCode(err error) int {
	code, _ := classify(err)
	return code
}

func describe(err error) string {
	_, label := classify(err)
	return label
}
