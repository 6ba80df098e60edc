package layered

import (
	"context"
	"log/slog"

	"github.com/corpusvault/snapshot/corpus"
)

// observationsRouter routes Put/Delete/DeleteBySource to every write layer
// that offers observations, and Get/Query/QueryMeta/IsStale to the first
// read layer that does. Constructing one that finds no
// observations-capable layer at all yields no router: Backend.Observations()
// must return nil in that case.
type observationsRouter struct {
	readObs  corpus.Observations
	writeObs []corpus.Observations
	logger   *slog.Logger
}

// newObservationsRouter returns nil if no read or write backend in cfg
// exposes observations.
func newObservationsRouter(cfg Config) corpus.Observations {
	var readObs corpus.Observations
	for _, rb := range cfg.Read {
		if o := rb.Observations(); o != nil {
			readObs = o
			break
		}
	}
	var writeObs []corpus.Observations
	for _, wb := range cfg.Write {
		if o := wb.Observations(); o != nil {
			writeObs = append(writeObs, o)
		}
	}
	if readObs == nil && len(writeObs) == 0 {
		return nil
	}
	return &observationsRouter{readObs: readObs, writeObs: writeObs, logger: cfg.Logger}
}

func (r *observationsRouter) Put(ctx context.Context, typeName string, in corpus.PutObservationInput) (corpus.Observation, error) {
	r.logger.Debug("layered: observations put", "type", typeName, "write_layers", len(r.writeObs))
	if len(r.writeObs) == 0 {
		return corpus.Observation{}, corpus.NewError(corpus.KindStorageError, "layered.observations.put", nil, "no write backend supports observations")
	}
	var out corpus.Observation
	for i, wo := range r.writeObs {
		obs, err := wo.Put(ctx, typeName, in)
		if err != nil {
			r.logger.Warn("layered: observations put fanout short-circuited", "type", typeName, "write_index", i, "error", err)
			return corpus.Observation{}, err
		}
		if i == 0 {
			out = obs
		}
	}
	return out, nil
}

func (r *observationsRouter) Get(ctx context.Context, id string) (corpus.Observation, error) {
	r.logger.Debug("layered: observations get", "id", id)
	if r.readObs == nil {
		return corpus.Observation{}, corpus.NewError(corpus.KindObservationNotFound, "layered.observations.get", nil, "no read backend supports observations")
	}
	obs, err := r.readObs.Get(ctx, id)
	if err != nil && !corpus.IsNotFound(err) {
		r.logger.Warn("layered: observations get failed", "id", id, "error", err)
	}
	return obs, err
}

func (r *observationsRouter) Query(ctx context.Context, opts corpus.ObservationQueryOptions) ([]corpus.Observation, error) {
	r.logger.Debug("layered: observations query", "type", opts.Type)
	if r.readObs == nil {
		return nil, nil
	}
	rows, err := r.readObs.Query(ctx, opts)
	if err != nil {
		r.logger.Warn("layered: observations query failed", "error", err)
	}
	return rows, err
}

func (r *observationsRouter) QueryMeta(ctx context.Context, opts corpus.ObservationQueryOptions) ([]corpus.Observation, error) {
	r.logger.Debug("layered: observations query_meta", "type", opts.Type)
	if r.readObs == nil {
		return nil, nil
	}
	rows, err := r.readObs.QueryMeta(ctx, opts)
	if err != nil {
		r.logger.Warn("layered: observations query_meta failed", "error", err)
	}
	return rows, err
}

func (r *observationsRouter) Delete(ctx context.Context, id string) error {
	r.logger.Debug("layered: observations delete", "id", id, "write_layers", len(r.writeObs))
	for i, wo := range r.writeObs {
		if err := wo.Delete(ctx, id); err != nil && !corpus.IsNotFound(err) {
			r.logger.Warn("layered: observations delete fanout short-circuited", "id", id, "write_index", i, "error", err)
			return err
		}
	}
	return nil
}

func (r *observationsRouter) DeleteBySource(ctx context.Context, ptr corpus.SnapshotPointer) (int, error) {
	r.logger.Debug("layered: observations delete_by_source", "store_id", ptr.StoreID, "version", ptr.Version)
	total := 0
	for i, wo := range r.writeObs {
		n, err := wo.DeleteBySource(ctx, ptr)
		if err != nil {
			r.logger.Warn("layered: observations delete_by_source fanout short-circuited", "store_id", ptr.StoreID, "write_index", i, "error", err)
			return total, err
		}
		total += n
	}
	return total, nil
}

func (r *observationsRouter) IsStale(ctx context.Context, ptr corpus.SnapshotPointer) (bool, error) {
	if r.readObs == nil {
		return false, nil
	}
	stale, err := r.readObs.IsStale(ctx, ptr)
	if err != nil {
		r.logger.Warn("layered: observations is_stale failed", "store_id", ptr.StoreID, "error", err)
	}
	return stale, err
}
