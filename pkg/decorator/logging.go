package decorator

import (
	"context"
	"time"

	"github.com/architeacher/queryspec/pkg/logger"
	"github.com/architeacher/queryspec/pkg/spec"
	"github.com/architeacher/queryspec/pkg/translator"
	"github.com/google/uuid"
)

type loggingDecorator[R any] struct {
	base   translator.Translator[R]
	name   string
	logger logger.Logger
}

func (d loggingDecorator[R]) Name() string { return d.name }

// Translate tags ctx with a translation ID, reusing the caller's one when
// present.
func (d loggingDecorator[R]) Translate(ctx context.Context, root *spec.Node) (result R, err error) {
	if logger.TranslationIDFromContext(ctx) == "" {
		ctx = logger.ContextWithTranslationID(ctx, uuid.NewString())
	}

	ctx = logger.ContextWithTranslator(ctx, d.name)
	log := d.logger.WithContext(ctx)

	log.Debug().Str("root", rootSource(root)).Msg("translation started")

	start := time.Now()

	defer func() {
		if err != nil {
			log.Error().Err(err).Str("root", rootSource(root)).Msg("translation failed")

			return
		}

		log.Info().
			Str("root", rootSource(root)).
			Dur("duration", time.Since(start)).
			Msg("translation finished")
	}()

	return d.base.Translate(ctx, root)
}
