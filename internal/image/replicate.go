package image

import (
	"context"
	"errors"
	"time"

	"github.com/dmorgan81/seedream/internal/log"
	"github.com/dmorgan81/seedream/internal/request"
	"github.com/replicate/replicate-go"
	"github.com/samber/do"
)

// ErrMissingToken means no Replicate credential was configured at startup.
var ErrMissingToken = errors.New("replicate API token is not configured")

type ReplicateGenerator struct {
	Client *replicate.Client
}

func NewReplicateGenerator(i *do.Injector) (Generator, error) {
	client, err := do.Invoke[*replicate.Client](i)
	if err != nil {
		return nil, err
	}
	return &ReplicateGenerator{Client: client}, nil
}

func (g *ReplicateGenerator) Generate(ctx context.Context, model string, payload request.Payload) (any, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("replicate").With("model", model)
	log.Info("running prediction")
	log.Debug("prediction input", "payload", payload)

	start := time.Now()
	out, err := g.Client.Run(ctx, model, replicate.PredictionInput(payload), nil)
	if err != nil {
		return nil, err
	}

	log.Info("prediction finished", "elapsed", time.Since(start))
	return out, nil
}
