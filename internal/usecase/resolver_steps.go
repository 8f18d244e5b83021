package usecase

import (
	"context"
	"errors"
	"fmt"
	"labelfind/internal/entity"
	"labelfind/pkg/apperr"
	"labelfind/pkg/logg"
	"labelfind/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	checkboxKind        = "checkbox"
	dropdownKind        = "dropdown"
	optionKind          = "option"
	defaultWaitInterval = 250 * time.Millisecond
)

// WaitFind resolves like Find but keeps taking snapshots until the element
// shows up or the configured wait timeout passes.
func (s *ResolverService) WaitFind(ctx context.Context, kind, label string, index int) (element *entity.ResolvedElement, err error) {
	const op = "WaitFind"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, requestAttrs(kind, label, index)...)
	defer func() {
		step.End(err)
	}()

	k, err := s.validate(op, kind, label, index)
	if err != nil {
		return nil, err
	}

	err = s.waitFor(ctx, op, logger, step, func(ctx context.Context) error {
		var err error
		element, err = s.resolve(ctx, op, logger, step, k, label, index)

		return err
	})
	if err != nil {
		return nil, err
	}

	return element, nil
}

// AssertAbsent succeeds when no element of kind answers to label at index.
func (s *ResolverService) AssertAbsent(ctx context.Context, kind, label string, index int) (err error) {
	const op = "AssertAbsent"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, requestAttrs(kind, label, index)...)
	defer func() {
		step.End(err)
	}()

	k, err := s.validate(op, kind, label, index)
	if err != nil {
		return err
	}

	element, err := s.resolve(ctx, op, logger, step, k, label, index)
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	return apperr.Wrap(op, apperr.CodeAssertionFailed, fmt.Errorf("%s %q is visible", k.Name, label), map[string]any{
		apperr.MetaReason: "element_present",
		apperr.MetaStage:  apperr.StageResolution,
		apperr.MetaLabel:  label,
		apperr.MetaKind:   k.Name,
		apperr.MetaNodeID: element.Ref.NodeID,
	})
}

// Check clicks the checkbox labeled label into the requested state. A
// checkbox already in that state is reported rather than toggled back.
func (s *ResolverService) Check(ctx context.Context, label string, index int, checked bool) (element *entity.ResolvedElement, err error) {
	const op = "Check"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.Bool("checked", checked))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, requestAttrs(checkboxKind, label, index)...)
	defer func() {
		step.End(err)
	}()

	k, err := s.validate(op, checkboxKind, label, index)
	if err != nil {
		return nil, err
	}

	element, err = s.resolve(ctx, op, logger, step, k, label, index)
	if err != nil {
		return nil, err
	}

	if element.Checked == checked {
		return element, checkedMismatch(op, label, element, "already_in_state")
	}

	if err := s.browser.Click(ctx, element.Ref); err != nil {
		return element, apperr.Wrap(op, actionCode(err), err, map[string]any{
			apperr.MetaStage: apperr.StageInteraction,
			apperr.MetaLabel: label,
			apperr.MetaKind:  k.Name,
		})
	}
	element.Checked = checked

	step.AddEvent("toggled", attribute.Bool("checked", checked))
	logger.Info("Toggled checkbox", zap.String(logg.ResolutionID, element.ResolutionID.String()))

	return element, nil
}

// AssertChecked fails unless the checkbox labeled label is in the given
// state.
func (s *ResolverService) AssertChecked(ctx context.Context, label string, index int, checked bool) (element *entity.ResolvedElement, err error) {
	const op = "AssertChecked"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.Bool("checked", checked))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, requestAttrs(checkboxKind, label, index)...)
	defer func() {
		step.End(err)
	}()

	k, err := s.validate(op, checkboxKind, label, index)
	if err != nil {
		return nil, err
	}

	element, err = s.resolve(ctx, op, logger, step, k, label, index)
	if err != nil {
		return nil, err
	}

	if element.Checked != checked {
		return element, checkedMismatch(op, label, element, "state_mismatch")
	}

	return element, nil
}

// Select picks option from the dropdown labeled dropdown. Native selects
// are set directly; other dropdowns are opened when collapsed and the option
// is then resolved and clicked.
func (s *ResolverService) Select(ctx context.Context, option, dropdown string, index int) (element *entity.ResolvedElement, err error) {
	const op = "Select"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String("option", option))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		append(requestAttrs(dropdownKind, dropdown, index), attribute.String("option", option))...)
	defer func() {
		step.End(err)
	}()

	k, err := s.validate(op, dropdownKind, dropdown, index)
	if err != nil {
		return nil, err
	}

	if _, err := s.validate(op, optionKind, option, 0); err != nil {
		return nil, err
	}

	element, err = s.resolve(ctx, op, logger, step, k, dropdown, index)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{
		apperr.MetaStage: apperr.StageInteraction,
		apperr.MetaLabel: dropdown,
		apperr.MetaKind:  k.Name,
		apperr.MetaValue: option,
	}

	if element.Tag == "select" {
		if err := s.browser.SelectOption(ctx, element.Ref, option); err != nil {
			return element, apperr.Wrap(op, actionCode(err), err, meta)
		}

		step.AddEvent("selected")
		logger.Info("Selected option", zap.String(logg.ResolutionID, element.ResolutionID.String()))

		return element, nil
	}

	if !element.Expanded {
		if err := s.browser.Click(ctx, element.Ref); err != nil {
			return element, apperr.Wrap(op, actionCode(err), err, meta)
		}
		step.AddEvent("opened")
	}

	optKind, _ := LookupKind(optionKind)

	var picked *entity.ResolvedElement
	err = s.waitFor(ctx, op, logger, step, func(ctx context.Context) error {
		var err error
		picked, err = s.resolve(ctx, op, logger, step, optKind, option, 0)

		return err
	})
	if err != nil {
		return element, err
	}

	if err := s.browser.Click(ctx, picked.Ref); err != nil {
		return element, apperr.Wrap(op, actionCode(err), err, meta)
	}

	step.AddEvent("selected")
	logger.Info("Selected option",
		zap.String(logg.ResolutionID, element.ResolutionID.String()),
		zap.String(logg.NodeID, picked.Ref.NodeID))

	return element, nil
}

// AssertValue fails unless the input labeled label currently holds value.
func (s *ResolverService) AssertValue(ctx context.Context, value, label string, index int) (element *entity.ResolvedElement, err error) {
	const op = "AssertValue"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, requestAttrs(writeKind, label, index)...)
	defer func() {
		step.End(err)
	}()

	k, err := s.validate(op, writeKind, label, index)
	if err != nil {
		return nil, err
	}

	element, err = s.resolve(ctx, op, logger, step, k, label, index)
	if err != nil {
		return nil, err
	}

	if element.Value != value {
		return element, apperr.Wrap(op, apperr.CodeAssertionFailed,
			fmt.Errorf("input %q has value %q, want %q", label, element.Value, value), map[string]any{
				apperr.MetaReason: "value_mismatch",
				apperr.MetaStage:  apperr.StageResolution,
				apperr.MetaLabel:  label,
				apperr.MetaValue:  element.Value,
				apperr.MetaNodeID: element.Ref.NodeID,
			})
	}

	return element, nil
}

// waitFor repeats attempt until it succeeds, fails for a reason waiting
// cannot fix, or the wait timeout passes. It always attempts at least once.
func (s *ResolverService) waitFor(ctx context.Context, op string, logger *zap.Logger, step *tracing.Span, attempt func(context.Context) error) error {
	interval := s.config.FinderConfig.WaitInterval
	if interval <= 0 {
		interval = defaultWaitInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.config.FinderConfig.WaitTimeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for tries := 1; ; tries++ {
		err := attempt(waitCtx)
		if err == nil || !retryable(err) {
			return err
		}

		logger.Debug("Not there yet", zap.Int("attempt", tries), zap.Error(err))

		select {
		case <-ctx.Done():
			return err
		case <-waitCtx.Done():
			step.AddEvent("wait timed out", attribute.Int("attempts", tries))

			return apperr.Wrap(op, apperr.CodeTimeout, err, map[string]any{
				apperr.MetaReason: "wait_timeout",
				apperr.MetaStage:  apperr.StageResolution,
			})
		case <-ticker.C:
		}
	}
}

func retryable(err error) bool {
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound, apperr.CodeStaleElement:
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}

func checkedMismatch(op, label string, element *entity.ResolvedElement, reason string) error {
	state := "checked"
	if !element.Checked {
		state = "unchecked"
	}

	return apperr.Wrap(op, apperr.CodeAssertionFailed, fmt.Errorf("checkbox %q is %s", label, state), map[string]any{
		apperr.MetaReason: reason,
		apperr.MetaStage:  apperr.StageResolution,
		apperr.MetaLabel:  label,
		apperr.MetaNodeID: element.Ref.NodeID,
	})
}
