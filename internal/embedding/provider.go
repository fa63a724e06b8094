// File path: internal/embedding/provider.go
package embedding

import "context"

// Provider maps text to a fixed-size vector. Providers are tried in ranked
// order by the Service; an error moves the attempt to the next tier.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}
