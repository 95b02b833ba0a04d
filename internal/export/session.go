// Package export runs one feature-to-table export: it writes the schema
// preamble, one COPY line per feature in input order, and the trailer.
package export

import (
	"context"
	"errors"
	"io"
	"iter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/geocopy/internal/db"
	"github.com/sells-group/geocopy/internal/derive"
	"github.com/sells-group/geocopy/internal/geo"
)

// State is the position of a Session in its lifecycle.
type State int

const (
	Idle State = iota
	PreambleEmitted
	Streaming
	Finalized
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PreambleEmitted:
		return "preamble_emitted"
	case Streaming:
		return "streaming"
	case Finalized:
		return "finalized"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result summarizes a finished (or aborted) run.
type Result struct {
	Table    string
	Rows     int64
	State    State
	Duration time.Duration
}

// Session holds everything one export needs. It does not own Features or
// the output writer; callers open and close them.
type Session struct {
	Table      string
	Schema     db.Schema
	Features   iter.Seq2[*geojson.Feature, error]
	Derivation derive.Derivation

	// ProgressEvery logs a progress line every N rows; 0 disables it.
	ProgressEvery int

	state State
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Run performs the export into w. Any error aborts the run: rows already
// written stay in w but no terminator or COMMIT follows, so the partial
// script must not be executed. An invalid schema fails before anything is
// written. A session runs once.
func (s *Session) Run(ctx context.Context, w io.Writer) (Result, error) {
	start := time.Now()
	res := Result{Table: s.Table}

	log := zap.L().With(
		zap.String("component", "export.session"),
		zap.String("table", s.Table),
	)

	if s.state != Idle {
		return res, eris.Errorf("export: session already %s", s.state)
	}
	if s.Features == nil || s.Derivation == nil {
		s.state = Aborted
		res.State = s.state
		return res, eris.New("export: session needs features and a derivation")
	}

	cw, err := db.NewCopyWriter(w, s.Table, s.Schema)
	if err != nil {
		s.state = Aborted
		res.State = s.state
		return res, eris.Wrap(err, "export: prepare script")
	}

	abort := func(err error) (Result, error) {
		s.state = Aborted
		res.Rows = cw.Rows()
		res.State = s.state
		res.Duration = time.Since(start)
		log.Error("export aborted",
			zap.Int64("rows", res.Rows),
			zap.Error(err),
		)
		return res, err
	}

	if err := cw.Begin(); err != nil {
		return abort(&IOError{Op: "write", Err: err})
	}
	s.state = PreambleEmitted
	log.Debug("preamble emitted", zap.Strings("columns", s.Schema.Names()))

	for f, err := range s.Features {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return abort(ctxErr)
		}
		if err != nil {
			if errors.Is(err, geo.ErrGeometry) {
				return abort(eris.Wrapf(err, "export: row %d", cw.Rows()+1))
			}
			return abort(&IOError{Op: "read", Err: err})
		}
		s.state = Streaming

		row, err := derive.DeriveRow(f, s.Derivation)
		if err != nil {
			return abort(eris.Wrapf(err, "export: row %d", cw.Rows()+1))
		}
		if err := cw.Write(row); err != nil {
			return abort(&IOError{Op: "write", Err: err})
		}

		if s.ProgressEvery > 0 && cw.Rows()%int64(s.ProgressEvery) == 0 {
			log.Info("export progress", zap.Int64("rows", cw.Rows()))
		}
	}

	// A cancellation that arrives after the last feature still aborts.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return abort(ctxErr)
	}

	if err := cw.Finish(); err != nil {
		return abort(&IOError{Op: "write", Err: err})
	}
	s.state = Finalized

	res.Rows = cw.Rows()
	res.State = s.state
	res.Duration = time.Since(start)
	log.Info("export finalized",
		zap.Int64("rows", res.Rows),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}
