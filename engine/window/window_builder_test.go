package window

import "testing"

func TestSizeLimitOptions(t *testing.T) {
	w := &engineWindow{}
	for _, opt := range []WindowBuilderOption{
		WithMinWidth(320),
		WithMinHeight(0),
		WithMaxWidth(-1),
		WithMaxHeight(1080),
	} {
		opt(w)
	}

	if w.minWidth != 320 || w.maxHeight != 1080 {
		t.Errorf("limits = %d/%d, want 320/1080", w.minWidth, w.maxHeight)
	}
	if w.minHeight != dontCare || w.maxWidth != dontCare {
		t.Errorf("unset limits = %d/%d, want dontCare", w.minHeight, w.maxWidth)
	}
}

func TestWithSizeLimits(t *testing.T) {
	w := &engineWindow{}
	WithSizeLimits(0, 240, 1920, 0)(w)

	got := [4]int{w.minWidth, w.minHeight, w.maxWidth, w.maxHeight}
	want := [4]int{dontCare, 240, 1920, dontCare}
	if got != want {
		t.Errorf("limits = %v, want %v", got, want)
	}
}

func TestSizeOptionsIgnoreInvalid(t *testing.T) {
	w := &engineWindow{title: "Apiary", width: 1280, height: 720}
	WithTitle("")(w)
	WithWidth(0)(w)
	WithHeight(-5)(w)

	if w.title != "Apiary" || w.width != 1280 || w.height != 720 {
		t.Errorf("window = %q %dx%d, want defaults kept", w.title, w.width, w.height)
	}
}
