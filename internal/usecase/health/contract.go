package health

import "context"

// StorePinger checks listing store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}
