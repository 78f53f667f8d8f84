package persist

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/solstice-sh/pulse/internal/constants"
	"github.com/solstice-sh/pulse/internal/learning"
	"github.com/solstice-sh/pulse/internal/state"
)

// Sidecar writes every recomputed learning state to the local cache
// synchronously and mirrors it to the remote endpoint at most once, with
// no retry. It implements learning.Sink.
type Sidecar struct {
	local  *Store
	remote *Remote // nil disables mirroring

	// wg tracks in-flight mirror writes so tests can drain them.
	wg sync.WaitGroup
}

// NewSidecar creates a sidecar. remote may be nil.
func NewSidecar(local *Store, remote *Remote) *Sidecar {
	return &Sidecar{local: local, remote: remote}
}

// Persist writes local synchronously, then fires one detached mirror
// write. A mirror failure is logged and dropped; there is no retry queue,
// so a write lost here is lost for good.
func (s *Sidecar) Persist(ls learning.LearningState, history []state.CallRecord) {
	if err := s.local.SaveLearningState(ls); err != nil {
		log.Error().Err(err).Msg("Local learning-state write failed")
	}
	if err := s.local.SaveCallHistory(history); err != nil {
		log.Error().Err(err).Msg("Local call-history write failed")
	}

	if s.remote == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), constants.PersistTimeout)
		defer cancel()
		if err := s.remote.Save(ctx, ls); err != nil {
			log.Debug().Err(err).Msg("Remote mirror write failed, dropping")
		}
	}()
}

// Bootstrap performs the one-shot cold-start reconciliation and returns
// the baseline to install, or ok=false when there is nothing to restore.
//
// Rules, applied in order:
//   - local cache non-empty: local wins, the remote is not consulted;
//   - local cache empty and the remote reports totalCalls > 0: adopt the
//     remote state as the local baseline;
//   - otherwise: start fresh.
func (s *Sidecar) Bootstrap(ctx context.Context) (ls learning.LearningState, history []state.CallRecord, ok bool) {
	local, err := s.local.LoadLearningState()
	if err != nil {
		log.Warn().Err(err).Msg("Local cache unreadable, starting fresh")
		return learning.LearningState{}, nil, false
	}

	if local != nil {
		history, err := s.local.LoadCallHistory()
		if err != nil {
			log.Warn().Err(err).Msg("Local call history unreadable")
		}
		return *local, history, true
	}

	if s.remote == nil {
		return learning.LearningState{}, nil, false
	}

	remote, err := s.remote.Load(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Remote cache unavailable during bootstrap")
		return learning.LearningState{}, nil, false
	}
	if remote.TotalCalls == 0 {
		return learning.LearningState{}, nil, false
	}

	log.Info().Int("total_calls", remote.TotalCalls).Msg("Adopting remote learning state as local baseline")
	return *remote, nil, true
}

// Wait blocks until all in-flight mirror writes finish.
func (s *Sidecar) Wait() {
	s.wg.Wait()
}
