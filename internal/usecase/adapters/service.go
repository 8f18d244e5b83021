package adapters

import (
	"context"
	"labelfind/internal/entity"
)

type BrowserService interface {
	Navigate(ctx context.Context, url string) error
	GetPageState(ctx context.Context) (*entity.PageState, error)
	IsReady() bool
}

type ResolverService interface {
	Find(ctx context.Context, kind, label string, index int) (*entity.ResolvedElement, error)
	Click(ctx context.Context, kind, label string, index int) (*entity.ResolvedElement, error)
	Write(ctx context.Context, value, label string, index int) (*entity.ResolvedElement, error)
	WaitFind(ctx context.Context, kind, label string, index int) (*entity.ResolvedElement, error)
	AssertAbsent(ctx context.Context, kind, label string, index int) error
	Check(ctx context.Context, label string, index int, checked bool) (*entity.ResolvedElement, error)
	AssertChecked(ctx context.Context, label string, index int, checked bool) (*entity.ResolvedElement, error)
	Select(ctx context.Context, option, dropdown string, index int) (*entity.ResolvedElement, error)
	AssertValue(ctx context.Context, value, label string, index int) (*entity.ResolvedElement, error)
	SetDebug(on bool)
	Debug() bool
}
