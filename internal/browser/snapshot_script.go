package browser

import (
	"fmt"
	"labelfind/internal/fuzzy"
	"strconv"
	"strings"
)

// annotateScript stamps every element of the frame's document with a node id
// of the form "<generation>.<n>" and copies the live state plain HTML cannot
// carry (current value, checked state, computed display and visibility,
// geometry) into data attributes, so the serialized frame holds everything
// resolution needs. It takes the snapshot generation as its argument and
// returns the number of stamped elements.
func annotateScript() string {
	return fmt.Sprintf(`(generation) => {
		const nodeAttr = %q, valueAttr = %q, checkedAttr = %q;
		const hiddenAttr = %q, invisibleAttr = %q;
		const xAttr = %q, yAttr = %q, widthAttr = %q, heightAttr = %q;
		const valued = ['INPUT', 'TEXTAREA', 'SELECT', 'BUTTON', 'OPTION'];
		const unsized = ['OPTION', 'OPTGROUP', 'AREA'];
		let next = 0;

		for (const el of document.querySelectorAll('*')) {
			el.setAttribute(nodeAttr, generation + '.' + String(next++));

			if (valued.includes(el.tagName) && el.value !== undefined && el.value !== null) {
				el.setAttribute(valueAttr, String(el.value));
			}

			if (el.tagName === 'INPUT' && (el.type === 'checkbox' || el.type === 'radio')) {
				el.setAttribute(checkedAttr, String(el.checked));
			}

			const style = window.getComputedStyle(el);
			if (style.display === 'none') {
				el.setAttribute(hiddenAttr, 'true');
			}
			if (style.visibility === 'hidden' || style.visibility === 'collapse') {
				el.setAttribute(invisibleAttr, 'true');
			}

			if (style.display === 'contents' || unsized.includes(el.tagName)) {
				continue;
			}

			const rect = el.getBoundingClientRect();
			el.setAttribute(xAttr, String(Math.round(rect.left + window.scrollX)));
			el.setAttribute(yAttr, String(Math.round(rect.top + window.scrollY)));
			el.setAttribute(widthAttr, String(Math.round(rect.width)));
			el.setAttribute(heightAttr, String(Math.round(rect.height)));
		}

		return next;
	}`, fuzzy.AttrNodeID, fuzzy.AttrLiveValue, fuzzy.AttrLiveChecked,
		fuzzy.AttrLiveHidden, fuzzy.AttrLiveInvisible,
		fuzzy.AttrLiveX, fuzzy.AttrLiveY, fuzzy.AttrLiveWidth, fuzzy.AttrLiveHeight)
}

// cleanupScript removes the transient live-state attributes again. Node ids
// stay so resolved elements can be located until the next snapshot.
func cleanupScript() string {
	return fmt.Sprintf(`(() => {
		const transient = [%q, %q, %q, %q, %q, %q, %q, %q];
		for (const el of document.querySelectorAll('*')) {
			for (const name of transient) {
				el.removeAttribute(name);
			}
		}
	})()`, fuzzy.AttrLiveValue, fuzzy.AttrLiveChecked, fuzzy.AttrLiveHidden, fuzzy.AttrLiveInvisible,
		fuzzy.AttrLiveX, fuzzy.AttrLiveY, fuzzy.AttrLiveWidth, fuzzy.AttrLiveHeight)
}

// snapshotOf returns the generation a node id was stamped with.
func snapshotOf(nodeID string) (uint64, error) {
	raw, _, ok := strings.Cut(nodeID, ".")
	if !ok {
		return 0, fmt.Errorf("node id %q carries no snapshot generation", nodeID)
	}

	generation, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("node id %q carries no snapshot generation: %w", nodeID, err)
	}

	return generation, nil
}
