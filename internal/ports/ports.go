package ports

import (
	"context"
	"labelfind/internal/entity"
)

type BrowserManager interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Snapshot(ctx context.Context) ([]entity.FrameSnapshot, error)
	ScrollIntoView(ctx context.Context, ref entity.ElementRef) error
	Click(ctx context.Context, ref entity.ElementRef) error
	Fill(ctx context.Context, ref entity.ElementRef, value string) error
	SelectOption(ctx context.Context, ref entity.ElementRef, label string) error
	GetPageState(ctx context.Context) (*entity.PageState, error)
	IsReady() bool
}
