package export

import (
	"context"
	"time"

	"github.com/esferry/esferry/pkg/elastic"
	"github.com/esferry/esferry/pkg/progress"
	"github.com/esferry/esferry/pkg/query"
	"github.com/rs/zerolog"
)

// sessionState is one phase of a worker's pagination loop.
type sessionState int

const (
	stateInit sessionState = iota
	stateFetching
	stateEmitting
	stateContinuing
	stateTerminated
)

// session drives one worker's cursor chain from the initial sliced search
// to the terminal empty page. State is owned exclusively by this session
// and never shared across workers; the client, sink, and counter are the
// shared collaborators.
type session struct {
	id      int
	client  *elastic.Client
	index   string
	query   query.Query
	sink    *Sink
	counter *progress.Counter
	logger  zerolog.Logger

	state  sessionState
	cursor string
	pages  int
}

// clearTimeout bounds the best-effort cursor release after termination.
const clearTimeout = 5 * time.Second

// run executes the pagination loop until the terminal state. It returns nil
// only when the worker's slice was drained to an empty page.
func (s *session) run(ctx context.Context) error {
	err := s.loop(ctx)
	s.release(ctx)

	if err != nil {
		sessionsFailedTotal.Inc()
		s.logger.Error().
			Err(err).
			Int("worker", s.id).
			Int("pages", s.pages).
			Msg("Session failed")
		return err
	}

	s.logger.Debug().
		Int("worker", s.id).
		Int("pages", s.pages).
		Msg("Session drained")
	return nil
}

// loop is the explicit state machine driver. Each iteration performs one
// transition; any error transitions straight to Terminated.
func (s *session) loop(ctx context.Context) error {
	var page *elastic.Page

	for s.state != stateTerminated {
		switch s.state {
		case stateInit:
			s.state = stateFetching

		case stateFetching:
			// A cancelled export stops issuing requests at the next fetch.
			if err := ctx.Err(); err != nil {
				s.state = stateTerminated
				return err
			}

			var err error
			if s.cursor == "" {
				page, err = s.client.Search(ctx, s.index, s.query)
			} else {
				page, err = s.client.Scroll(ctx, s.cursor)
			}
			if err != nil {
				s.state = stateTerminated
				return err
			}
			s.pages++

			// An empty page is always terminal; no further request may
			// follow it on this cursor chain.
			if len(page.Docs) == 0 {
				s.state = stateTerminated
				return nil
			}
			s.state = stateEmitting

		case stateEmitting:
			for _, doc := range page.Docs {
				if err := s.sink.Emit(doc); err != nil {
					s.state = stateTerminated
					return err
				}
			}
			pagesFetchedTotal.Inc()
			s.counter.Report(len(page.Docs))
			s.state = stateContinuing

		case stateContinuing:
			cursor, err := page.Cursor()
			if err != nil {
				s.state = stateTerminated
				return err
			}
			s.cursor = cursor
			s.state = stateFetching
		}
	}

	return nil
}

// release frees the engine-side cursor after termination, on success and
// on the session's own failure alike. Skipped when the export was
// cancelled (no further requests of any kind once cancellation is
// observed; the cursor then expires with the scroll window) and when the
// session never obtained a cursor.
func (s *session) release(ctx context.Context) {
	if s.cursor == "" || ctx.Err() != nil {
		return
	}

	clearCtx, cancel := context.WithTimeout(context.Background(), clearTimeout)
	defer cancel()

	if err := s.client.ClearScroll(clearCtx, s.cursor); err != nil {
		s.logger.Debug().
			Err(err).
			Int("worker", s.id).
			Msg("Failed to clear scroll cursor")
	}
}
