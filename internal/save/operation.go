package save

import (
	"context"
	"errors"
	"log/slog"

	"entity-sync/internal/entity"
	"entity-sync/internal/metadata"
)

// Transport posts a serialized bundle to a named save resource and returns
// the raw response body.
type Transport interface {
	Post(ctx context.Context, resourceName string, body []byte) ([]byte, error)
}

// ResponseError is implemented by transport errors that carry the body the
// server answered with, so validation payloads on error statuses can be
// told apart from transport failures.
type ResponseError interface {
	error
	ResponseBody() []byte
}

// Saver runs save operations against one store and transport.
type Saver struct {
	store      EntityStore
	transport  Transport
	serializer *Serializer
	processor  *ResultProcessor
	logger     *slog.Logger
}

// NewSaver creates a Saver.
func NewSaver(catalog *metadata.Catalog, store EntityStore, transport Transport, opts ...Option) *Saver {
	cfg := newConfig(opts)

	return &Saver{
		store:      store,
		transport:  transport,
		serializer: NewSerializer(catalog, store.Convention(), opts...),
		processor:  NewResultProcessor(catalog, store, opts...),
		logger:     cfg.logger,
	}
}

// SaveChanges saves the given entities, or every pending change in the
// store when entities is nil.
func (s *Saver) SaveChanges(ctx context.Context, entities []*entity.Entity, options Options) (*Result, error) {
	if entities == nil {
		entities = s.store.Changes()
	}

	return s.NewOperation(entities, options).Run(ctx)
}

// NewOperation prepares a save without running it.
func (s *Saver) NewOperation(entities []*entity.Entity, options Options) *Operation {
	return &Operation{saver: s, entities: entities, options: options}
}

// Operation is one save: Pending → Bundled → Sent → Succeeded,
// TransportFailed or ServerRejected. A response that cannot be processed
// leaves it in Sent.
type Operation struct {
	saver    *Saver
	entities []*entity.Entity
	options  Options

	ran    bool
	status Status
	bundle *Bundle
	result *Result
	err    error
}

// Status returns the current state.
func (op *Operation) Status() Status {
	return op.status
}

// Bundle returns the bundle once built.
func (op *Operation) Bundle() *Bundle {
	return op.bundle
}

// Result returns the result of a successful run.
func (op *Operation) Result() *Result {
	return op.result
}

// Err returns the error of the last run.
func (op *Operation) Err() error {
	return op.err
}

// Run executes the operation. Later calls return the first outcome.
// ctx bounds only the transport call.
func (op *Operation) Run(ctx context.Context) (*Result, error) {
	if op.ran {
		return op.result, op.err
	}

	op.ran = true

	op.result, op.err = op.run(ctx)

	return op.result, op.err
}

func (op *Operation) run(ctx context.Context) (*Result, error) {
	s := op.saver
	resource := op.options.resourceName()

	if len(op.entities) == 0 {
		op.status = Succeeded
		s.logger.Debug("nothing to save", "resource", resource)

		return &Result{}, nil
	}

	bundle, err := s.serializer.Serialize(op.entities, op.options)
	if err != nil {
		return nil, err
	}

	body, err := bundle.Marshal()
	if err != nil {
		return nil, &SerializationError{Err: err}
	}

	op.bundle = bundle
	op.status = Bundled

	resp, err := s.transport.Post(ctx, resource, body)
	op.status = Sent

	if err != nil {
		var re ResponseError
		if errors.As(err, &re) {
			if rej, ok := ParseRejection(re.ResponseBody()); ok {
				op.status = ServerRejected
				s.logger.Info("save rejected", "resource", resource, "errors", len(rej.EntityErrors))

				return nil, rej
			}
		}

		op.status = TransportFailed
		s.logger.Error("save transport failed", "resource", resource, "error", err)

		return nil, &TransportFailure{ResourceName: resource, Err: err}
	}

	if rej, ok := ParseRejection(resp); ok {
		op.status = ServerRejected
		s.logger.Info("save rejected", "resource", resource, "errors", len(rej.EntityErrors))

		return nil, rej
	}

	result, err := s.processor.Process(resp)
	if err != nil {
		return nil, err
	}

	op.status = Succeeded
	s.logger.Info("save succeeded", "resource", resource,
		"entities", len(result.Entities), "keyMappings", len(result.KeyMappings))

	return result, nil
}
