// Package assembly orquesta el ensamble de documentos:
// Draft → Validated → Priced → Numbered (solo nuevos) → Persisted.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/pharmadist-core/internal/application/lineage"
	"github.com/jhoicas/pharmadist-core/internal/application/ports"
	"github.com/jhoicas/pharmadist-core/internal/application/sequence"
	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

const tracerName = "github.com/jhoicas/pharmadist-core/internal/application/assembly"

// Config parámetros del servicio.
type Config struct {
	MaxAncestorHops int
}

// Service caso de uso de documentos comerciales.
type Service struct {
	tx       ports.TxRunner
	docs     repository.DocumentRepository
	catalogs *lineage.CatalogLoader
	parties  *lineage.PartyResolver
	alloc    *sequence.Allocator
	validate *validator.Validate
	log      *logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewService construye el servicio. docs se usa para lecturas fuera de la transacción.
func NewService(
	tx ports.TxRunner,
	docs repository.DocumentRepository,
	reg ports.Registries,
	alloc *sequence.Allocator,
	cfg Config,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Nop()
	}
	hops := cfg.MaxAncestorHops
	if hops == 0 {
		hops = lineage.DefaultMaxAncestorHops
	}
	return &Service{
		tx:       tx,
		docs:     docs,
		catalogs: lineage.NewCatalogLoader(reg),
		parties:  lineage.NewPartyResolver(reg, docs, hops, log),
		alloc:    alloc,
		validate: newValidator(),
		log:      log.Component("assembly"),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
}

// startSpan abre un span hijo; end registra el error si lo hay.
func (s *Service) startSpan(ctx context.Context, name string) (context.Context, func(*error)) {
	ctx, span := s.tracer.Start(ctx, name)
	return ctx, func(errp *error) {
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		span.End()
	}
}

// persistenceError deja pasar los errores de dominio y envuelve el resto como falla de persistencia.
func persistenceError(err error) error {
	if err == nil {
		return nil
	}
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrNumberingConflict),
		errors.Is(err, domain.ErrPersistence),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
}
