package registry

import (
	"bufio"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/importer"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
)

// Registry is an ordered list of handlers. The first handler that claims a
// document wins.
type Registry struct {
	handlers []Handler
	logger   logging.Logger
}

// NewRegistry creates a registry holding handlers in the given order.
func NewRegistry(logger logging.Logger, handlers ...Handler) *Registry {
	r := &Registry{logger: logging.OrDefault(logger)}
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

// Register appends h after the handlers already registered.
func (r *Registry) Register(h Handler) {
	if h == nil {
		return
	}
	r.handlers = append(r.handlers, h)
}

// Handlers returns the registered handlers in resolution order.
func (r *Registry) Handlers() []Handler {
	out := make([]Handler, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// Resolve returns the importer of the first handler claiming the document.
func (r *Registry) Resolve(name string, content *bufio.Reader, format models.FileFormat) (*importer.Importer, Handler, error) {
	h, err := r.Find(name, content, format)
	if err != nil {
		return nil, nil, err
	}
	return h.CreateImporter(format), h, nil
}

// Find returns the first handler claiming the document.
func (r *Registry) Find(name string, content *bufio.Reader, format models.FileFormat) (Handler, error) {
	for _, h := range r.handlers {
		if h.CanHandle(name, content, format) {
			r.logger.Debug("Handler claimed document",
				logging.Field{Key: logging.FieldHandler, Value: h.Name()},
				logging.Field{Key: logging.FieldFile, Value: name},
				logging.Field{Key: logging.FieldFormat, Value: format.String()})
			return h, nil
		}
	}
	r.logger.Warn("No handler claimed document",
		logging.Field{Key: logging.FieldFile, Value: name},
		logging.Field{Key: logging.FieldFormat, Value: format.String()})
	return nil, &parsererror.DispatchError{FilePath: name, Format: format.String()}
}
