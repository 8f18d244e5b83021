package usecase_test

import (
	"context"
	"errors"
	"labelfind/internal/config"
	"labelfind/internal/entity"
	"labelfind/internal/fuzzy"
	"labelfind/pkg/apperr"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_WaitFindRetriesUntilElementAppears(t *testing.T) {
	browser := newFakeBrowser(fakeFrame{markup: `<body><p>Loading...</p></body>`})
	browser.later = []fakeFrame{{markup: `<body><button data-fuzzy-node="1">Continue</button></body>`}}
	browser.after = 3

	el, err := newResolver(t, browser, true).WaitFind(context.Background(), "button", "Continue", 0)
	require.NoError(t, err)

	assert.Equal(t, "1", el.Ref.NodeID)
	assert.Equal(t, 4, browser.snapshots)
}

func TestResolver_WaitFindTimesOut(t *testing.T) {
	browser := newFakeBrowser(fakeFrame{markup: `<body><p>Loading...</p></body>`})
	r := newResolverWithConfig(t, browser, &config.FinderConfig{
		WaitTimeout:  20 * time.Millisecond,
		WaitInterval: time.Millisecond,
	})

	_, err := r.WaitFind(context.Background(), "button", "Continue", 0)
	require.Error(t, err)

	assert.Equal(t, apperr.CodeTimeout, apperr.CodeOf(err))
	assert.ErrorIs(t, err, fuzzy.ErrNotFound)
	assert.GreaterOrEqual(t, browser.snapshots, 2)
}

func TestResolver_WaitFindStopsOnOtherErrors(t *testing.T) {
	browser := newFakeBrowser(fakeFrame{markup: `<body></body>`})
	browser.ready = false

	_, err := newResolver(t, browser, true).WaitFind(context.Background(), "button", "Continue", 0)
	assert.Equal(t, apperr.CodeBrowserNotReady, apperr.CodeOf(err))
	assert.Zero(t, browser.snapshots)
}

func TestResolver_AssertAbsent(t *testing.T) {
	browser := newFakeBrowser(fakeFrame{markup: `<body>
		<button data-fuzzy-node="1">Save</button>
		<button data-fuzzy-node="2" style="display: none">Delete</button>
	</body>`})
	r := newResolver(t, browser, true)

	assert.NoError(t, r.AssertAbsent(context.Background(), "button", "Delete", 0))
	assert.NoError(t, r.AssertAbsent(context.Background(), "button", "Save", 1))

	err := r.AssertAbsent(context.Background(), "button", "Save", 0)
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.CodeAssertionFailed, appErr.Code)
	assert.Equal(t, "1", appErr.Metadata[apperr.MetaNodeID])
}

const checkboxes = `<body><div>
	<input type="checkbox" data-fuzzy-node="a" data-fuzzy-checked="true"><span>Remember me</span>
	<input type="checkbox" data-fuzzy-node="b" data-fuzzy-checked="false"><span>Newsletter</span>
	<div role="checkbox" data-fuzzy-node="c" aria-checked="true"></div><span>Dark mode</span>
</div></body>`

func TestResolver_Check(t *testing.T) {
	t.Run("clicks into the requested state", func(t *testing.T) {
		browser := newFakeBrowser(fakeFrame{markup: checkboxes})

		el, err := newResolver(t, browser, true).Check(context.Background(), "Newsletter", 0, true)
		require.NoError(t, err)

		assert.True(t, el.Checked)
		assert.Equal(t, []entity.ElementRef{{NodeID: "b"}}, browser.clicked)
	})

	t.Run("already in state", func(t *testing.T) {
		browser := newFakeBrowser(fakeFrame{markup: checkboxes})

		_, err := newResolver(t, browser, true).Check(context.Background(), "Remember me", 0, true)
		assert.Equal(t, apperr.CodeAssertionFailed, apperr.CodeOf(err))
		assert.Empty(t, browser.clicked)
	})

	t.Run("unchecks an aria checkbox", func(t *testing.T) {
		browser := newFakeBrowser(fakeFrame{markup: checkboxes})

		_, err := newResolver(t, browser, true).Check(context.Background(), "Dark mode", 0, false)
		require.NoError(t, err)
		assert.Equal(t, []entity.ElementRef{{NodeID: "c"}}, browser.clicked)
	})
}

func TestResolver_AssertChecked(t *testing.T) {
	r := newResolver(t, newFakeBrowser(fakeFrame{markup: checkboxes}), true)

	_, err := r.AssertChecked(context.Background(), "Remember me", 0, true)
	assert.NoError(t, err)

	_, err = r.AssertChecked(context.Background(), "Newsletter", 0, false)
	assert.NoError(t, err)

	_, err = r.AssertChecked(context.Background(), "Newsletter", 0, true)
	assert.Equal(t, apperr.CodeAssertionFailed, apperr.CodeOf(err))
}

func TestResolver_SelectNativeDropdown(t *testing.T) {
	browser := newFakeBrowser(fakeFrame{markup: `<body>
		<label for="color">Color</label>
		<select id="color" data-fuzzy-node="s"><option>Red</option><option>Blue</option></select>
	</body>`})

	el, err := newResolver(t, browser, true).Select(context.Background(), "Blue", "Color", 0)
	require.NoError(t, err)

	assert.Equal(t, "select", el.Tag)
	assert.Equal(t, map[entity.ElementRef]string{{NodeID: "s"}: "Blue"}, browser.selected)
	assert.Empty(t, browser.clicked)
}

func TestResolver_SelectCustomDropdown(t *testing.T) {
	browser := newFakeBrowser(fakeFrame{markup: `<body>
		<div role="combobox" aria-expanded="false" data-fuzzy-node="cb">Color</div>
	</body>`})
	browser.later = []fakeFrame{{markup: `<body>
		<div role="combobox" aria-expanded="true" data-fuzzy-node="cb">Color</div>
		<div role="listbox">
			<div role="option" data-fuzzy-node="o1">Red</div>
			<div role="option" data-fuzzy-node="o2">Blue</div>
		</div>
	</body>`}}
	browser.after = 1

	_, err := newResolver(t, browser, true).Select(context.Background(), "Blue", "Color", 0)
	require.NoError(t, err)

	assert.Equal(t, []entity.ElementRef{{NodeID: "cb"}, {NodeID: "o2"}}, browser.clicked)
	assert.Empty(t, browser.selected)
}

func TestResolver_SelectSkipsOpeningExpandedDropdown(t *testing.T) {
	browser := newFakeBrowser(fakeFrame{markup: `<body>
		<div role="combobox" aria-expanded="true" data-fuzzy-node="cb">Color</div>
		<div role="option" data-fuzzy-node="o1">Red</div>
	</body>`})

	_, err := newResolver(t, browser, true).Select(context.Background(), "Red", "Color", 0)
	require.NoError(t, err)

	assert.Equal(t, []entity.ElementRef{{NodeID: "o1"}}, browser.clicked)
}

func TestResolver_AssertValue(t *testing.T) {
	browser := newFakeBrowser(fakeFrame{markup: `<body>
		<label for="name">Name</label>
		<input id="name" value="" data-fuzzy-value="jo" data-fuzzy-node="n">
	</body>`})
	r := newResolver(t, browser, true)

	el, err := r.AssertValue(context.Background(), "jo", "Name", 0)
	require.NoError(t, err)
	assert.Equal(t, "jo", el.Value)

	_, err = r.AssertValue(context.Background(), "", "Name", 0)
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.CodeAssertionFailed, appErr.Code)
	assert.Equal(t, "jo", appErr.Metadata[apperr.MetaValue])
}
