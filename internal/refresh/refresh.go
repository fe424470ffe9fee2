// Package refresh rebuilds the updated sector tables from the IBGE
// aggregates service.
//
// A run is fetch, normalize, write. It either replaces both updated tables
// or leaves the data folder as it was.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Duddu64/economia/internal/dataset"
	"github.com/Duddu64/economia/internal/fetch"
	"github.com/Duddu64/economia/internal/loader"
	"github.com/Duddu64/economia/internal/normalize"
	"github.com/Duddu64/economia/internal/store"
)

// Stage names the step a run failed at.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageNormalize Stage = "normalize"
	StageWrite     Stage = "write"
)

// Failure is the error of a run. The data folder is untouched.
type Failure struct {
	RunID string
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("refresh %s failed at %s: %v", f.RunID, f.Stage, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Network reports whether the run failed on a remote call.
func (f *Failure) Network() bool {
	var ne *dataset.NetworkError
	return errors.As(f.Err, &ne)
}

// Result describes a successful run.
type Result struct {
	RunID    string            `json:"run_id"`
	Started  time.Time         `json:"inicio"`
	Finished time.Time         `json:"fim"`
	Years    dataset.YearRange `json:"anos"`
	Records  map[string]int    `json:"registros"`
	Dropped  map[string][]int  `json:"anos_descartados,omitempty"`
	Files    []string          `json:"arquivos"`
}

// Aggregator is the part of the remote client a run needs.
type Aggregator interface {
	Aggregates(ctx context.Context, req fetch.AggregateRequest) (json.RawMessage, error)
}

// Refresher runs the refresh pipeline. Runs and resets never overlap.
type Refresher struct {
	client     Aggregator
	request    fetch.AggregateRequest
	normalizer *normalize.Normalizer
	loader     *loader.Loader
	log        *zap.Logger
	now        func() time.Time

	mu sync.Mutex
}

// New creates a Refresher writing through the store of l.
func New(client Aggregator, req fetch.AggregateRequest, n *normalize.Normalizer, l *loader.Loader, log *zap.Logger) *Refresher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Refresher{
		client:     client,
		request:    req,
		normalizer: n,
		loader:     l,
		log:        log,
		now:        time.Now,
	}
}

// Run fetches the aggregates table, rebuilds both sector series from the
// epoch to the current year and replaces the updated tables. Any error is a
// *Failure and leaves the stored files as they were.
func (r *Refresher) Run(ctx context.Context) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := Result{RunID: uuid.NewString(), Started: r.now()}
	log := r.log.With(zap.String("run_id", res.RunID))
	log.Info("refresh started", zap.String("table", r.request.Table))

	fail := func(stage Stage, err error) (Result, error) {
		log.Error("refresh failed", zap.String("stage", string(stage)), zap.Error(err))
		return Result{}, &Failure{RunID: res.RunID, Stage: stage, Err: err}
	}

	payload, err := r.client.Aggregates(ctx, r.request)
	if err != nil {
		return fail(StageFetch, err)
	}

	current := res.Started.Year()
	normalized, err := r.normalizer.Normalize(payload, current)
	if err != nil {
		return fail(StageNormalize, err)
	}

	st := r.loader.Store()
	if err := st.WriteUpdated(normalized.Tables); err != nil {
		return fail(StageWrite, err)
	}
	r.loader.Invalidate()

	res.Finished = r.now()
	res.Years = dataset.YearRange{Start: r.normalizer.Epoch, End: current}
	res.Records = make(map[string]int, len(dataset.Sectors))
	for _, s := range dataset.Sectors {
		res.Records[s.String()] = len(normalized.Table(s))
		res.Files = append(res.Files, st.Path(s, store.Updated))
		if d := normalized.Dropped[s]; len(d) > 0 {
			if res.Dropped == nil {
				res.Dropped = make(map[string][]int)
			}
			res.Dropped[s.String()] = d
			log.Warn("years without data", zap.Stringer("sector", s), zap.Ints("years", d))
		}
	}
	log.Info("refresh done",
		zap.Stringer("years", res.Years),
		zap.Duration("took", res.Finished.Sub(res.Started)))
	return res, nil
}

// Reset removes the updated tables so the original ones are shown again.
func (r *Refresher) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loader.Store().RemoveUpdated(); err != nil {
		return err
	}
	r.loader.Invalidate()
	return nil
}
