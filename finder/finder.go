package finder

import (
	"context"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"scf/geometry"
	"scf/index"
	"scf/matching"
	"scf/shape"
	"time"
)

type Config struct {
	Matching matching.Config
	Index    index.Config

	// GrowMinimumSize raises the minimum size of a template to the size of each constellation found for it while
	// sweeping one anchor, so only ever larger constellations are reported per anchor and template.
	GrowMinimumSize bool

	Workers       int
	CheckerName   string
	AnchorTimeout time.Duration // Zero means no timeout
	ProgressEvery int           // Log progress after this many combinations, zero disables it
}

// Finder sweeps anchors against all other stores and all templates. The spatial index is built once and only read
// afterwards, so all workers share it.
type Finder struct {
	config    Config
	stores    []geometry.Point
	templates []*shape.Template
	matcher   *matching.Matcher
	sink      Sink
	tracker   AnchorTracker
	stats     *Stats
}

// New loads stores and templates and builds the spatial index. Missing stores or invalid templates are errors.
func New(ctx context.Context, config Config, pointSource PointSource, templateSource shape.TemplateSource, sink Sink, tracker AnchorTracker) (*Finder, error) {
	stores, err := pointSource.Stores(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to load stores")
	}

	spatialIndex, err := index.BuildIndex(stores, config.Index)
	if err != nil {
		return nil, err
	}

	templates, err := templateSource.Templates()
	if err != nil {
		return nil, errors.Wrap(err, "Unable to load templates")
	}
	if len(templates) == 0 {
		return nil, errors.New("No templates to search for")
	}

	if config.Workers < 1 {
		config.Workers = 1
	}

	sigolo.Infof("Loaded %d stores and %d templates", len(stores), len(templates))

	return &Finder{
		config:    config,
		stores:    stores,
		templates: templates,
		matcher:   matching.NewMatcher(config.Matching, spatialIndex),
		sink:      sink,
		tracker:   tracker,
		stats:     newStats(config.ProgressEvery),
	}, nil
}

func (f *Finder) Stats() *Stats { return f.stats }

func (f *Finder) Matcher() *matching.Matcher { return f.matcher }

func (f *Finder) Templates() []*shape.Template { return f.templates }

// Template returns the template with the given name or nil.
func (f *Finder) Template(name string) *shape.Template {
	for _, template := range f.templates {
		if template.Name == name {
			return template
		}
	}
	return nil
}

// Store returns the store with the given ID.
func (f *Finder) Store(id int64) (geometry.Point, bool) {
	for _, store := range f.stores {
		if store.ID == id {
			return store, true
		}
	}
	return geometry.Point{}, false
}

// Run lets the configured number of workers take anchors from the tracker until there are none left. Each anchor is
// marked as processed after it has been swept.
func (f *Finder) Run(ctx context.Context) error {
	sigolo.Infof("Start search with %d workers", f.config.Workers)
	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < f.config.Workers; i++ {
		workerId := i
		group.Go(func() error {
			return f.work(groupCtx, workerId)
		})
	}

	err := group.Wait()
	f.stats.log()
	return err
}

func (f *Finder) work(ctx context.Context, workerId int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		anchor, err := f.tracker.NextAnchor(ctx)
		if err != nil {
			return errors.Wrapf(err, "Worker %d was unable to get next anchor", workerId)
		}
		if anchor == nil {
			sigolo.Debugf("Worker %d: No anchors left", workerId)
			return nil
		}

		err = f.sweepWithTimeout(ctx, *anchor)
		if err != nil {
			return err
		}

		err = f.tracker.MarkProcessed(ctx, *anchor, f.config.CheckerName)
		if err != nil {
			return errors.Wrapf(err, "Unable to mark anchor %d as processed", anchor.ID)
		}
	}
}

func (f *Finder) sweepWithTimeout(ctx context.Context, anchor geometry.Point) error {
	sweepCtx := ctx
	if f.config.AnchorTimeout > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, f.config.AnchorTimeout)
		defer cancel()
	}

	_, err := f.SweepAnchor(sweepCtx, anchor)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		sigolo.Warnf("Sweep of anchor %d exceeded the time budget of %s and was stopped", anchor.ID, f.config.AnchorTimeout)
		return nil
	}
	return err
}

// SweepAnchor tries every template on every pair of the given anchor and another store. Found constellations are
// written to the sink. Rejections are only counted, errors are only returned for sink failures or cancellation.
func (f *Finder) SweepAnchor(ctx context.Context, anchor geometry.Point) (int, error) {
	f.stats.anchors.Add(1)
	found := 0
	sweepStartTime := time.Now()

	for _, template := range f.templates {
		minimumSize := f.config.Matching.MinimumSize

		for _, candidate := range f.stores {
			if candidate.ID == anchor.ID {
				continue
			}
			if err := ctx.Err(); err != nil {
				return found, err
			}

			constellation, projectionSize, err := f.attempt(template, anchor, candidate, minimumSize)
			if err != nil {
				return found, err
			}
			if constellation == nil {
				continue
			}

			err = f.sink.WriteConstellation(ctx, constellation)
			if err != nil {
				return found, errors.Wrapf(err, "Unable to write constellation '%s' of anchor %d", template.Name, anchor.ID)
			}
			found++

			// The matcher compares projection sizes, so the minimum grows by the projection as well
			if f.config.GrowMinimumSize && projectionSize > minimumSize {
				minimumSize = projectionSize
			}
		}
	}

	sigolo.Debugf("Anchor %d: Found %d constellations in %s", anchor.ID, found, time.Since(sweepStartTime))
	return found, nil
}

// attempt projects the template onto the anchor pair and matches it. The returned size is the size of the projection
// and only set when a constellation was found.
func (f *Finder) attempt(template *shape.Template, anchor geometry.Point, candidate geometry.Point, minimumSize float64) (*matching.Constellation, float64, error) {
	projection, err := shape.Project(template, anchor, candidate)
	if err != nil {
		return nil, 0, err
	}

	result, rejection := f.matcher.MatchWithMinimumSize(projection, minimumSize)
	f.stats.add(rejection)
	if rejection != matching.Matched {
		return nil, 0, nil
	}

	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("Found '%s' with stores %v", template.Name, result)
	}

	metric := f.matcher.Config().Metric
	return matching.NewConstellation(template.Name, result, metric), projection.Size(metric), nil
}
