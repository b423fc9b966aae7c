//go:build tools
// +build tools

// Package groupchat tracks the tools run by go generate (mockgen) as module
// dependencies.
package groupchat

import (
	_ "go.uber.org/mock/mockgen"
)
