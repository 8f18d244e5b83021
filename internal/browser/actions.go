package browser

import (
	"context"
	"fmt"
	"labelfind/internal/entity"
	"labelfind/internal/fuzzy"
	"labelfind/pkg/apperr"
	"labelfind/pkg/logg"
	"labelfind/pkg/tracing"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	maxRetries    = 3
	retryDelay    = 500 * time.Millisecond
	actionTimeout = 5000
)

type clickStrategy struct {
	name string
	fn   func(playwright.Locator) error
}

// locate returns a locator for an element of the last snapshot. A ref taken
// from an earlier snapshot, or whose element no longer exists, reports
// CodeStaleElement.
func (m *Manager) locate(op string, ref entity.ElementRef) (playwright.Locator, error) {
	if err := m.checkReady(op); err != nil {
		return nil, err
	}

	meta := map[string]any{
		apperr.MetaStage:  apperr.StageInteraction,
		apperr.MetaFrame:  ref.Frame,
		apperr.MetaNodeID: ref.NodeID,
	}

	m.mu.Lock()
	var frame playwright.Frame
	if ref.Frame >= 0 && ref.Frame < len(m.frames) {
		frame = m.frames[ref.Frame]
	}
	generation := m.generation
	m.mu.Unlock()

	if err := checkGeneration(ref, generation); err != nil {
		meta[apperr.MetaReason] = "outdated_snapshot"

		return nil, apperr.Wrap(op, apperr.CodeStaleElement, err, meta)
	}

	if frame == nil || frame.IsDetached() {
		meta[apperr.MetaReason] = "frame_gone"

		return nil, apperr.Wrap(op, apperr.CodeStaleElement, fmt.Errorf("frame %d is not part of the current snapshot", ref.Frame), meta)
	}

	selector := fuzzy.NewQuery("*").AttrEquals(fuzzy.AttrNodeID, ref.NodeID).String()
	locator := frame.Locator(selector)

	count, err := locator.Count()
	if err != nil {
		meta[apperr.MetaReason] = "count_failed"

		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, meta)
	}

	if count == 0 {
		meta[apperr.MetaReason] = "element_gone"

		return nil, apperr.Wrap(op, apperr.CodeStaleElement, fmt.Errorf("node %s is gone", ref.NodeID), meta)
	}

	return locator.First(), nil
}

// checkGeneration fails when ref was not resolved from the snapshot of the
// given generation.
func checkGeneration(ref entity.ElementRef, generation uint64) error {
	taken, err := snapshotOf(ref.NodeID)
	if err != nil {
		return err
	}

	if taken != generation {
		return fmt.Errorf("node %s belongs to snapshot %d, current is %d", ref.NodeID, taken, generation)
	}

	return nil
}

func refAttrs(ref entity.ElementRef) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("frame", ref.Frame),
		attribute.String("node_id", ref.NodeID),
	}
}

func (m *Manager) ScrollIntoView(ctx context.Context, ref entity.ElementRef) (err error) {
	const op = "ScrollIntoView"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.NodeID, ref.NodeID))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, refAttrs(ref)...)
	defer func() {
		step.End(err)
	}()

	locator, err := m.locate(op, ref)
	if err != nil {
		return err
	}

	err = locator.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: playwright.Float(actionTimeout),
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "scroll_failed",
			apperr.MetaStage:  apperr.StageInteraction,
			apperr.MetaNodeID: ref.NodeID,
		})
	}

	return nil
}

// Click works through increasingly forceful strategies until one succeeds:
// a regular actionable click, a forced click, a DOM click() and finally a
// mouse click at the element's centre.
func (m *Manager) Click(ctx context.Context, ref entity.ElementRef) (err error) {
	const op = "Click"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.NodeID, ref.NodeID))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, refAttrs(ref)...)
	defer func() {
		step.End(err)
	}()

	locator, err := m.locate(op, ref)
	if err != nil {
		return err
	}

	strategies := []clickStrategy{
		{
			name: "locator_click",
			fn: func(l playwright.Locator) error {
				return l.Click(playwright.LocatorClickOptions{
					Timeout: playwright.Float(actionTimeout),
				})
			},
		},
		{
			name: "force_click",
			fn: func(l playwright.Locator) error {
				return l.Click(playwright.LocatorClickOptions{
					Timeout: playwright.Float(actionTimeout),
					Force:   playwright.Bool(true),
				})
			},
		},
		{
			name: "js_direct_click",
			fn: func(l playwright.Locator) error {
				_, err := l.Evaluate(`el => { el.scrollIntoView({block: 'center'}); el.click(); }`, nil)

				return err
			},
		},
		{
			name: "mouse_click",
			fn: func(l playwright.Locator) error {
				box, err := l.BoundingBox()
				if err != nil {
					return err
				}
				if box == nil {
					return fmt.Errorf("element has no bounding box")
				}

				return m.page.Mouse().Click(box.X+box.Width/2, box.Y+box.Height/2)
			},
		},
	}

	var lastErr error
	for attempt, strategy := range strategies {
		if attempt > 0 {
			logger.Info("Retrying click with different strategy",
				zap.String("strategy", strategy.name), zap.Int("attempt", attempt))
			time.Sleep(retryDelay)
		}

		step.AddEvent(fmt.Sprintf("trying strategy: %s", strategy.name))

		if err := strategy.fn(locator); err != nil {
			lastErr = err
			logger.Warn("Strategy failed", zap.String("strategy", strategy.name), zap.Error(err))

			continue
		}

		step.AddEvent("click completed")

		return nil
	}

	return apperr.Wrap(op, apperr.CodeActionFailed, lastErr, map[string]any{
		apperr.MetaReason: "click_failed_all_strategies",
		apperr.MetaStage:  apperr.StageInteraction,
		apperr.MetaNodeID: ref.NodeID,
	})
}

func (m *Manager) Fill(ctx context.Context, ref entity.ElementRef, value string) (err error) {
	const op = "Fill"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.NodeID, ref.NodeID))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, refAttrs(ref)...)
	defer func() {
		step.End(err)
	}()

	locator, err := m.locate(op, ref)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			logger.Info("Retrying fill", zap.Int("attempt", attempt))
			time.Sleep(retryDelay)
		}

		step.AddEvent(fmt.Sprintf("filling field (attempt %d)", attempt+1))

		err = locator.Fill(value, playwright.LocatorFillOptions{
			Timeout: playwright.Float(actionTimeout),
			Force:   playwright.Bool(attempt > 0),
		})
		if err == nil {
			step.AddEvent("fill completed")

			return nil
		}

		lastErr = err
	}

	return apperr.Wrap(op, apperr.CodeActionFailed, lastErr, map[string]any{
		apperr.MetaReason: "fill_failed_after_retries",
		apperr.MetaStage:  apperr.StageInteraction,
		apperr.MetaNodeID: ref.NodeID,
	})
}

// SelectOption picks the option with the given visible text in a native
// select element.
func (m *Manager) SelectOption(ctx context.Context, ref entity.ElementRef, label string) (err error) {
	const op = "SelectOption"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.NodeID, ref.NodeID))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op, append(refAttrs(ref), attribute.String("option", label))...)
	defer func() {
		step.End(err)
	}()

	locator, err := m.locate(op, ref)
	if err != nil {
		return err
	}

	selected, err := locator.SelectOption(playwright.SelectOptionValues{
		Labels: playwright.StringSlice(label),
	}, playwright.LocatorSelectOptionOptions{
		Timeout: playwright.Float(actionTimeout),
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "select_failed",
			apperr.MetaStage:  apperr.StageInteraction,
			apperr.MetaNodeID: ref.NodeID,
		})
	}

	if len(selected) == 0 {
		return apperr.Wrap(op, apperr.CodeNotFound, fmt.Errorf("no option %q", label), map[string]any{
			apperr.MetaReason: "option_not_found",
			apperr.MetaStage:  apperr.StageInteraction,
			apperr.MetaNodeID: ref.NodeID,
		})
	}

	step.AddEvent("option selected")

	return nil
}
