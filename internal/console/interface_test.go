package console

import (
	"bytes"
	"context"
	"errors"
	"labelfind/internal/entity"
	"labelfind/internal/usecase"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	op      string
	kind    string
	label   string
	value   string
	index   int
	checked bool
}

type fakeResolver struct {
	calls []call
	debug bool
	err   error
}

func (r *fakeResolver) element(kind, label string, index int) *entity.ResolvedElement {
	return &entity.ResolvedElement{
		ResolutionID: uuid.New(),
		Ref:          entity.ElementRef{NodeID: "4"},
		Kind:         kind,
		Label:        label,
		Index:        index,
		Tag:          "button",
		Text:         label,
		Strategy:     "own_text",
		Score:        1000,
	}
}

func (r *fakeResolver) Find(_ context.Context, kind, label string, index int) (*entity.ResolvedElement, error) {
	r.calls = append(r.calls, call{op: "find", kind: kind, label: label, index: index})
	if r.err != nil {
		return nil, r.err
	}

	return r.element(kind, label, index), nil
}

func (r *fakeResolver) Click(_ context.Context, kind, label string, index int) (*entity.ResolvedElement, error) {
	r.calls = append(r.calls, call{op: "click", kind: kind, label: label, index: index})

	return r.element(kind, label, index), nil
}

func (r *fakeResolver) Write(_ context.Context, value, label string, index int) (*entity.ResolvedElement, error) {
	r.calls = append(r.calls, call{op: "write", value: value, label: label, index: index})

	return r.element("input", label, index), nil
}

func (r *fakeResolver) WaitFind(_ context.Context, kind, label string, index int) (*entity.ResolvedElement, error) {
	r.calls = append(r.calls, call{op: "wait", kind: kind, label: label, index: index})

	return r.element(kind, label, index), nil
}

func (r *fakeResolver) AssertAbsent(_ context.Context, kind, label string, index int) error {
	r.calls = append(r.calls, call{op: "absent", kind: kind, label: label, index: index})

	return r.err
}

func (r *fakeResolver) Check(_ context.Context, label string, index int, checked bool) (*entity.ResolvedElement, error) {
	r.calls = append(r.calls, call{op: "check", label: label, index: index, checked: checked})

	return r.element("checkbox", label, index), nil
}

func (r *fakeResolver) AssertChecked(_ context.Context, label string, index int, checked bool) (*entity.ResolvedElement, error) {
	r.calls = append(r.calls, call{op: "checked", label: label, index: index, checked: checked})

	return r.element("checkbox", label, index), nil
}

func (r *fakeResolver) Select(_ context.Context, option, dropdown string, index int) (*entity.ResolvedElement, error) {
	r.calls = append(r.calls, call{op: "select", value: option, label: dropdown, index: index})

	return r.element("dropdown", dropdown, index), nil
}

func (r *fakeResolver) AssertValue(_ context.Context, value, label string, index int) (*entity.ResolvedElement, error) {
	r.calls = append(r.calls, call{op: "expect", value: value, label: label, index: index})

	return r.element("input", label, index), nil
}

func (r *fakeResolver) SetDebug(on bool) { r.debug = on }

func (r *fakeResolver) Debug() bool { return r.debug }

type fakeBrowser struct {
	visited []string
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.visited = append(b.visited, url)

	return nil
}

func (b *fakeBrowser) GetPageState(context.Context) (*entity.PageState, error) {
	return &entity.PageState{URL: "https://example.com", Title: "Example", Frames: 2}, nil
}

func (b *fakeBrowser) IsReady() bool { return true }

func newTestInterface(input string) (*Interface, *fakeResolver, *fakeBrowser, *bytes.Buffer) {
	resolver := &fakeResolver{}
	browser := &fakeBrowser{}
	out := &bytes.Buffer{}

	i := NewInterface(Params{
		Logger:  zap.NewNop(),
		Usecase: &usecase.Service{Resolver: resolver, Browser: browser},
	})
	i.in = strings.NewReader(input)
	i.out = out

	return i, resolver, browser, out
}

func TestInterface_RunsCommands(t *testing.T) {
	input := strings.Join([]string{
		"open https://example.com",
		`find button "Save" 2nd`,
		`click link "Docs"`,
		`write "hello" into "Message"`,
		"debug on",
		"state",
		"exit",
		`find button "never reached"`,
	}, "\n")

	i, resolver, browser, out := newTestInterface(input)
	require.NoError(t, i.Start())

	assert.Equal(t, []string{"https://example.com"}, browser.visited)
	assert.Equal(t, []call{
		{op: "find", kind: "button", label: "Save", index: 1},
		{op: "click", kind: "link", label: "Docs"},
		{op: "write", value: "hello", label: "Message"},
	}, resolver.calls)
	assert.True(t, resolver.debug)

	text := out.String()
	assert.Contains(t, text, "Found button \"Save\"")
	assert.Contains(t, text, "Wrote into input \"Message\"")
	assert.Contains(t, text, "frames: 2, debug: true")
	assert.Contains(t, text, "Shutting down...")
}

func TestInterface_RunsStepCommands(t *testing.T) {
	input := strings.Join([]string{
		`wait button "Save"`,
		`absent tab "Billing"`,
		`check "Remember me"`,
		`uncheck "Newsletter" 2nd`,
		`unchecked "Newsletter"`,
		`select "Blue" from "Color"`,
		`expect "jo" in "Name"`,
	}, "\n")

	i, resolver, _, out := newTestInterface(input)
	require.NoError(t, i.Start())

	assert.Equal(t, []call{
		{op: "wait", kind: "button", label: "Save"},
		{op: "absent", kind: "tab", label: "Billing"},
		{op: "check", label: "Remember me", checked: true},
		{op: "check", label: "Newsletter", index: 1},
		{op: "checked", label: "Newsletter"},
		{op: "select", value: "Blue", label: "Color"},
		{op: "expect", value: "jo", label: "Name"},
	}, resolver.calls)

	text := out.String()
	assert.Contains(t, text, `No tab "Billing" on the page`)
	assert.Contains(t, text, `Unchecked checkbox "Newsletter"`)
	assert.Contains(t, text, `Selected "Blue" in dropdown "Color"`)
	assert.NotContains(t, text, "Error:")
}

func TestInterface_AbsentReportsPresence(t *testing.T) {
	i, resolver, _, out := newTestInterface(`absent button "Save"` + "\n")
	resolver.err = errors.New(`button "Save" is visible`)

	require.NoError(t, i.Start())
	assert.Contains(t, out.String(), `Error: button "Save" is visible`)
	assert.NotContains(t, out.String(), "on the page")
}

func TestInterface_ReportsErrorsAndContinues(t *testing.T) {
	i, resolver, _, out := newTestInterface("find button \"Save\nfind tab \"Home\"\n")
	resolver.err = errors.New("nothing matched")

	require.NoError(t, i.Start())

	text := out.String()
	assert.Contains(t, text, "Error: unterminated quote")
	assert.Contains(t, text, "Error: nothing matched")
	assert.Len(t, resolver.calls, 1)
}

func TestInterface_Kinds(t *testing.T) {
	i, _, _, out := newTestInterface("kinds\n")
	require.NoError(t, i.Start())

	text := out.String()
	assert.Contains(t, text, "checkbox")
	assert.Contains(t, text, "right-to-left")
	assert.Contains(t, text, `input[type="checkbox"]`)
}

func TestInterface_StopEndsLoop(t *testing.T) {
	i, resolver, _, _ := newTestInterface(`find button "Save"` + "\n")
	require.NoError(t, i.Stop())
	require.NoError(t, i.Stop())

	require.NoError(t, i.Start())
	assert.Empty(t, resolver.calls)
	assert.Error(t, i.ctx.Err())
}
