// Package control implements the client-side input control operations: which
// seats a surface accepts input from, and which surfaces hold input focus.
//
// Each operation validates its arguments, acquires the compositor context,
// checks the request against that one snapshot and only then sends the change
// requests. Validation failures never emit anything. The context is released on
// every return path.
package control

import (
	"context"

	"github.com/bnema/seatctl/internal/gateway"
)

// Gateway hands out exclusive, synchronized compositor contexts
type Gateway interface {
	Do(ctx context.Context, fn func(*gateway.Context) error) error
}

// Controller exposes the input control operations
type Controller struct {
	gw Gateway
}

// New creates a controller bound to a gateway
func New(gw Gateway) *Controller {
	return &Controller{gw: gw}
}
