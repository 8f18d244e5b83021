package usecase

import (
	"context"
	"errors"
	"fmt"
	"labelfind/internal/config"
	"labelfind/internal/entity"
	"labelfind/internal/fuzzy"
	"labelfind/internal/ports"
	"labelfind/pkg/apperr"
	"labelfind/pkg/logg"
	"labelfind/pkg/tracing"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	resolverServiceName = "ResolverService"
	resolverTracer      = "usecase.resolver"
	writeKind           = "input"
)

// ResolverService resolves labels on the live page. Every call takes a fresh
// snapshot, searches the main frame and then, when enabled, each child frame
// in order until one yields an element at the requested index.
type ResolverService struct {
	config  *config.Config
	logger  *zap.Logger
	browser ports.BrowserManager
	finder  *fuzzy.Finder
	tracer  trace.Tracer
	debug   atomic.Bool
}

type ResolverServiceParams struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Browser ports.BrowserManager
	Finder  *fuzzy.Finder
}

func NewResolverService(params ResolverServiceParams) *ResolverService {
	s := &ResolverService{
		config:  params.Config,
		logger:  params.Logger.With(zap.String(logg.Layer, resolverServiceName)),
		browser: params.Browser,
		finder:  params.Finder,
		tracer:  otel.Tracer(resolverTracer),
	}
	s.debug.Store(params.Config.FinderConfig.Debug)

	return s
}

// SetDebug switches the ranking trace between debug and info level.
func (s *ResolverService) SetDebug(on bool) {
	s.debug.Store(on)
}

func (s *ResolverService) Debug() bool {
	return s.debug.Load()
}

func (s *ResolverService) Find(ctx context.Context, kind, label string, index int) (element *entity.ResolvedElement, err error) {
	const op = "Find"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, requestAttrs(kind, label, index)...)
	defer func() {
		step.End(err)
	}()

	k, err := s.validate(op, kind, label, index)
	if err != nil {
		return nil, err
	}

	return s.resolve(ctx, op, logger, step, k, label, index)
}

func (s *ResolverService) Click(ctx context.Context, kind, label string, index int) (element *entity.ResolvedElement, err error) {
	const op = "Click"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, requestAttrs(kind, label, index)...)
	defer func() {
		step.End(err)
	}()

	k, err := s.validate(op, kind, label, index)
	if err != nil {
		return nil, err
	}

	element, err = s.resolve(ctx, op, logger, step, k, label, index)
	if err != nil {
		return nil, err
	}

	if err := s.browser.Click(ctx, element.Ref); err != nil {
		return element, apperr.Wrap(op, actionCode(err), err, map[string]any{
			apperr.MetaStage: apperr.StageInteraction,
			apperr.MetaLabel: label,
			apperr.MetaKind:  k.Name,
		})
	}

	step.AddEvent("clicked")
	logger.Info("Clicked element", zap.String(logg.ResolutionID, element.ResolutionID.String()))

	return element, nil
}

// Write fills value into the input or textarea labeled label.
func (s *ResolverService) Write(ctx context.Context, value, label string, index int) (element *entity.ResolvedElement, err error) {
	const op = "Write"
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

	if err := s.browser.Fill(ctx, element.Ref, value); err != nil {
		return element, apperr.Wrap(op, actionCode(err), err, map[string]any{
			apperr.MetaStage: apperr.StageInteraction,
			apperr.MetaLabel: label,
			apperr.MetaKind:  k.Name,
		})
	}

	step.AddEvent("filled")
	logger.Info("Wrote into element", zap.String(logg.ResolutionID, element.ResolutionID.String()))

	return element, nil
}

func (s *ResolverService) validate(op, kind, label string, index int) (Kind, error) {
	k, err := LookupKind(kind)
	if err != nil {
		return Kind{}, apperr.InvalidReqError(op, "kind", err)
	}

	if strings.TrimSpace(label) == "" {
		return Kind{}, apperr.InvalidReqError(op, "label", errors.New("label cannot be empty"))
	}

	if index < 0 {
		return Kind{}, apperr.InvalidReqError(op, "index", fmt.Errorf("index %d is negative", index))
	}

	if !s.browser.IsReady() {
		return Kind{}, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	return k, nil
}

func (s *ResolverService) resolve(ctx context.Context, op string, logger *zap.Logger, step *tracing.Span, k Kind, label string, index int) (*entity.ResolvedElement, error) {
	id := uuid.New()
	logger = logger.With(
		zap.String(logg.ResolutionID, id.String()),
		zap.String(logg.Kind, k.Name),
		zap.String(logg.Label, label),
		zap.Int(logg.Index, index),
	)
	step.SetAttributes(attribute.String("resolution_id", id.String()))

	snapshots, err := s.browser.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if len(snapshots) == 0 {
		return nil, apperr.Wrap(op, apperr.CodeInternal, errors.New("snapshot has no frames"), map[string]any{
			apperr.MetaReason: "empty_snapshot",
			apperr.MetaStage:  apperr.StageSnapshot,
		})
	}

	if !s.config.FinderConfig.SearchFrames {
		snapshots = snapshots[:1]
	}

	for _, snap := range snapshots {
		match, err := s.finder.Find(snap.Document, label, k.Patterns,
			fuzzy.WithIndex(index),
			fuzzy.WithDirection(k.Direction),
			fuzzy.WithProvenance(true),
			fuzzy.WithDebug(s.debug.Load()),
			fuzzy.WithScroller(s.scroller(ctx, snap.Index)),
		)
		if errors.Is(err, fuzzy.ErrNotFound) {
			logger.Debug("No match in frame", zap.Int(logg.Frame, snap.Index), zap.String(logg.URL, snap.URL))

			continue
		}
		if err != nil {
			return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaStage: apperr.StageResolution,
				apperr.MetaFrame: snap.Index,
			})
		}

		element := describe(match, snap)
		element.ResolutionID = id
		element.Kind = k.Name
		element.Label = label
		element.Index = index

		step.AddEvent("resolved",
			attribute.Int("frame", snap.Index),
			attribute.String("strategy", element.Strategy),
			attribute.Int("score", element.Score),
		)
		logger.Info("Resolved element",
			zap.Int(logg.Frame, snap.Index),
			zap.String(logg.NodeID, element.Ref.NodeID),
			zap.String("strategy", element.Strategy),
			zap.Int("score", element.Score))

		return element, nil
	}

	return nil, apperr.NotFoundError(op, fuzzy.ErrNotFound, map[string]any{
		apperr.MetaStage: apperr.StageResolution,
		apperr.MetaLabel: label,
		apperr.MetaKind:  k.Name,
		apperr.MetaIndex: index,
	})
}

// scroller maps a snapshot node back to the live page of frame.
func (s *ResolverService) scroller(ctx context.Context, frame int) fuzzy.Scroller {
	return fuzzy.ScrollerFunc(func(n *html.Node) error {
		id := nodeID(n)
		if id == "" {
			return errors.New("node carries no id")
		}

		return s.browser.ScrollIntoView(ctx, entity.ElementRef{Frame: frame, NodeID: id})
	})
}

func nodeID(n *html.Node) string {
	return goquery.NewDocumentFromNode(n).AttrOr(fuzzy.AttrNodeID, "")
}

func describe(match *fuzzy.Match, snap entity.FrameSnapshot) *entity.ResolvedElement {
	sel := goquery.NewDocumentFromNode(match.Node).Selection
	value, _ := fuzzy.Value(match.Node)

	return &entity.ResolvedElement{
		Ref:        entity.ElementRef{Frame: snap.Index, NodeID: sel.AttrOr(fuzzy.AttrNodeID, "")},
		Tag:        goquery.NodeName(sel),
		Text:       strings.Join(strings.Fields(sel.Text()), " "),
		Strategy:   string(match.Strategy),
		Provenance: match.Provenance,
		Score:      match.Score,
		Box:        boundingBox(sel),
		FrameURL:   snap.URL,
		Value:      value,
		Checked:    fuzzy.Checked(match.Node),
		Expanded:   strings.EqualFold(sel.AttrOr("aria-expanded", ""), "true"),
	}
}

// boundingBox reads the geometry recorded at snapshot time, nil when the
// element carried none.
func boundingBox(sel *goquery.Selection) *entity.BoundingBox {
	var values [4]float64
	for i, name := range []string{fuzzy.AttrLiveX, fuzzy.AttrLiveY, fuzzy.AttrLiveWidth, fuzzy.AttrLiveHeight} {
		raw, ok := sel.Attr(name)
		if !ok {
			return nil
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		values[i] = v
	}

	return &entity.BoundingBox{X: values[0], Y: values[1], Width: values[2], Height: values[3]}
}

// actionCode keeps the browser's classification of a failed action.
func actionCode(err error) string {
	if code := apperr.CodeOf(err); code != "" {
		return code
	}

	return apperr.CodeActionFailed
}

func requestAttrs(kind, label string, index int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("label", label),
		attribute.Int("index", index),
	}
}
