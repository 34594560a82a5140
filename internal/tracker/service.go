// Package tracker is the entry point the command-line adapter drives: it
// validates raw input, builds activities, keeps them in order and persists
// them to the blob store.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hay-kot/stride/internal/core/activity"
	"github.com/hay-kot/stride/internal/core/blob"
	"github.com/hay-kot/stride/internal/core/identity"
	"github.com/hay-kot/stride/internal/core/validate"
	"github.com/rs/zerolog"
)

// Options configures a Service.
type Options struct {
	Mode validate.Mode
	Now  func() time.Time
}

// Service owns the activity store and id allocator for the process. It is
// driven by a single caller and is not safe for concurrent use.
type Service struct {
	blobs blob.Store
	ids   *identity.Allocator
	store *Store
	log   zerolog.Logger
	mode  validate.Mode
	now   func() time.Time
}

// New creates a Service with an empty store. Call Restore to load persisted state.
func New(blobs blob.Store, ids *identity.Allocator, log zerolog.Logger, opts Options) *Service {
	if opts.Mode == "" {
		opts.Mode = validate.ModeLiteral
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		blobs: blobs,
		ids:   ids,
		store: NewStore(),
		log:   log,
		mode:  opts.Mode,
		now:   opts.Now,
	}
}

// CreateRun validates the input, records a run and persists the store.
// Cadence is rounded to whole steps. If persisting fails the run is still
// kept in memory and returned alongside the error.
func (s *Service) CreateRun(ctx context.Context, loc activity.Location, distanceKm, durationMin, cadenceSpm float64) (activity.Activity, error) {
	if err := validate.Run(s.mode, distanceKm, durationMin, cadenceSpm); err != nil {
		s.log.Debug().Err(err).Msg("run rejected")
		return activity.Activity{}, err
	}

	return s.create(ctx, loc, func(loc activity.Location) (activity.Activity, error) {
		return activity.NewRun(s.ids, s.now(), loc, distanceKm, durationMin, int(math.Round(cadenceSpm)))
	})
}

// CreateRide validates the input, records a ride and persists the store.
func (s *Service) CreateRide(ctx context.Context, loc activity.Location, distanceKm, durationMin, elevationGainM float64) (activity.Activity, error) {
	if err := validate.Ride(s.mode, distanceKm, durationMin, elevationGainM); err != nil {
		s.log.Debug().Err(err).Msg("ride rejected")
		return activity.Activity{}, err
	}

	return s.create(ctx, loc, func(loc activity.Location) (activity.Activity, error) {
		return activity.NewRide(s.ids, s.now(), loc, distanceKm, durationMin, elevationGainM)
	})
}

func (s *Service) create(ctx context.Context, loc activity.Location, build func(activity.Location) (activity.Activity, error)) (activity.Activity, error) {
	loc, err := activity.NewLocation(loc.Lat, loc.Lng)
	if err != nil {
		return activity.Activity{}, fmt.Errorf("%w: %w", validate.ErrValidation, err)
	}

	a, err := build(loc)
	if err != nil {
		if errors.Is(err, activity.ErrInvalid) {
			return activity.Activity{}, fmt.Errorf("%w: %w", validate.ErrValidation, err)
		}
		s.log.Error().Err(err).Msg("activity not created")
		return activity.Activity{}, err
	}

	s.store.Add(a)
	s.log.Info().
		Int("id", a.ID).
		Str("kind", string(a.Kind)).
		Float64("distance_km", a.DistanceKm).
		Msg("activity recorded")

	if err := s.Persist(ctx); err != nil {
		return a, err
	}
	return a, nil
}

// ListActivities returns every activity in insertion order.
func (s *Service) ListActivities() []activity.Activity {
	return s.store.All()
}

// FindActivity returns the activity with id or activity.ErrNotFound.
func (s *Service) FindActivity(id int) (activity.Activity, error) {
	return s.store.FindByID(id)
}

// Near returns activities within radiusKm of loc.
func (s *Service) Near(loc activity.Location, radiusKm float64) []activity.Activity {
	return s.store.Near(loc, radiusKm)
}

// IssuedIDs returns every id the allocator has handed out.
func (s *Service) IssuedIDs() []int {
	return s.ids.Issued()
}

// Persist writes the store and issued ids to the blob store.
func (s *Service) Persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.blobs, s.ids); err != nil {
		s.log.Error().Err(err).Msg("persist failed")
		return fmt.Errorf("persist: %w", err)
	}

	s.log.Debug().Int("activities", s.store.Len()).Msg("persisted")
	return nil
}

// Restore loads persisted state, falling back to empty state when the blob
// is missing or unreadable. It never fails; a degraded load is logged.
func (s *Service) Restore(ctx context.Context) LoadResult {
	res := s.store.Load(ctx, s.blobs, s.ids)

	switch res.Status {
	case LoadDegraded:
		s.log.Warn().Err(res.Err).Msg("stored activities unreadable, starting empty")
	case LoadEmpty:
		s.log.Debug().Msg("no stored activities")
	case LoadLoaded:
		s.log.Debug().Int("activities", res.Activities).Int("ids", res.IDs).Msg("restored")
	}

	return res
}

// Reset clears memory and deletes both persisted keys.
func (s *Service) Reset(ctx context.Context) error {
	s.store.Reset()
	s.ids.Reset()

	for _, key := range []string{KeyWorkouts, KeyIDs} {
		if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, blob.ErrKeyNotFound) {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	s.log.Info().Msg("activities reset")
	return nil
}
