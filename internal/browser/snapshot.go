package browser

import (
	"context"
	"labelfind/internal/entity"
	"labelfind/pkg/apperr"
	"labelfind/pkg/logg"
	"labelfind/pkg/tracing"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Snapshot captures every frame of the page with its live state folded into
// the markup. The main frame comes first; a child frame that cannot be
// captured (detached, cross-origin) is skipped. Element refs of earlier
// snapshots no longer locate anything.
func (m *Manager) Snapshot(ctx context.Context) (snapshots []entity.FrameSnapshot, err error) {
	const op = "Snapshot"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err := m.checkReady(op); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.generation++
	generation := m.generation
	m.frames = nil
	m.mu.Unlock()

	main := m.page.MainFrame()
	frames := []playwright.Frame{main}
	for _, frame := range m.page.Frames() {
		if frame != main && !frame.IsDetached() {
			frames = append(frames, frame)
		}
	}

	captured := make([]playwright.Frame, 0, len(frames))

	for _, frame := range frames {
		doc, err := m.captureFrame(frame, generation)
		if err != nil {
			if frame == main {
				return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
					apperr.MetaReason: "capture_failed",
					apperr.MetaStage:  apperr.StageSnapshot,
					apperr.MetaURL:    frame.URL(),
				})
			}

			logger.Debug("Skipping frame", zap.String(logg.URL, frame.URL()), zap.Error(err))

			continue
		}

		snapshots = append(snapshots, entity.FrameSnapshot{
			Index:      len(captured),
			Generation: generation,
			Name:       frame.Name(),
			URL:        frame.URL(),
			Document:   doc,
			TakenAt:    time.Now(),
		})
		captured = append(captured, frame)
	}

	m.mu.Lock()
	m.frames = captured
	m.mu.Unlock()

	step.SetAttributes(attribute.Int("frames", len(snapshots)), attribute.Int64("generation", int64(generation)))
	logger.Debug("Snapshot taken", zap.Int("frames", len(snapshots)), zap.Uint64("generation", generation))

	return snapshots, nil
}

func (m *Manager) captureFrame(frame playwright.Frame, generation uint64) (*goquery.Document, error) {
	if _, err := frame.Evaluate(annotateScript(), generation); err != nil {
		return nil, err
	}

	content, contentErr := frame.Content()

	if _, err := frame.Evaluate(cleanupScript()); err != nil {
		m.logger.Debug("Failed to clean up live-state attributes", zap.Error(err))
	}

	if contentErr != nil {
		return nil, contentErr
	}

	return goquery.NewDocumentFromReader(strings.NewReader(content))
}
