package canvas

import (
	"image"
	"testing"

	"github.com/hey-codes/paperterm/internal/fonts"
)

func TestNew_White(t *testing.T) {
	img := New(20, 10)
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if _, ok := InkBounds(img, White); ok {
		t.Error("fresh canvas should be blank")
	}
}

func TestOutline_StaysInside(t *testing.T) {
	img := New(50, 50)
	r := image.Rect(10, 10, 40, 30)
	Outline(img, r, 2, Black)

	got, ok := InkBounds(img, White)
	if !ok || got != r {
		t.Fatalf("ink bounds = %v, want %v", got, r)
	}
	if img.GrayAt(20, 20).Y != White {
		t.Error("outline filled the interior")
	}
	if img.GrayAt(11, 20).Y != Black {
		t.Error("expected left border pixel")
	}
}

func TestOutline_ThinRectangle(t *testing.T) {
	img := New(50, 50)
	r := image.Rect(10, 10, 40, 11)
	Outline(img, r, 2, Black)
	if got, ok := InkBounds(img, White); !ok || got != r {
		t.Fatalf("ink bounds = %v, want %v", got, r)
	}
}

func TestFill_ClipsToCanvas(t *testing.T) {
	img := New(10, 10)
	Fill(img, image.Rect(-5, -5, 3, 3), Dark)
	got, _ := InkBounds(img, White)
	if got != image.Rect(0, 0, 3, 3) {
		t.Errorf("ink bounds = %v", got)
	}
}

func TestText_DrawsWithinLineBox(t *testing.T) {
	c := fonts.NewCascade(nil, nil)
	defer c.Close()
	face := c.Resolve(fonts.Regular, 24)

	img := New(300, 100)
	w := Text(img, face, 10, 20, "Hello", Black)
	mw, mh := fonts.Measure(face, "Hello")
	if w != mw {
		t.Errorf("advance = %d, want %d", w, mw)
	}
	ink, ok := InkBounds(img, White)
	if !ok {
		t.Fatal("no ink drawn")
	}
	box := image.Rect(10, 20, 10+mw, 20+mh)
	if !ink.In(box) {
		t.Errorf("ink %v escapes line box %v", ink, box)
	}
}

func TestTextCentered(t *testing.T) {
	c := fonts.NewCascade(nil, nil)
	defer c.Close()
	face := c.Resolve(fonts.Bold, 20)

	img := New(200, 60)
	r := image.Rect(0, 0, 200, 60)
	TextCentered(img, face, r, "MID", Black)
	ink, ok := InkBounds(img, White)
	if !ok {
		t.Fatal("no ink drawn")
	}
	left, right := ink.Min.X, 200-ink.Max.X
	if d := left - right; d < -4 || d > 4 {
		t.Errorf("text not centered: left %d right %d", left, right)
	}
}

func TestTextFit(t *testing.T) {
	c := fonts.NewCascade(nil, nil)
	defer c.Close()
	face := c.Resolve(fonts.Mono, 32)
	w, h := fonts.Measure(face, "28")

	img := New(100, 100)
	if TextFit(img, face, image.Rect(10, 10, 10+w-1, 10+h), "28", Black) {
		t.Error("text drawn into a cell narrower than its advance")
	}
	if TextFit(img, face, image.Rect(10, 10, 10+w, 10+h-1), "28", Black) {
		t.Error("text drawn into a cell shorter than its line")
	}
	if _, ok := InkBounds(img, White); ok {
		t.Fatal("rejected text left ink behind")
	}

	r := image.Rect(10, 10, 10+w+4, 10+h+4)
	if !TextFit(img, face, r, "28", Black) {
		t.Fatal("text not drawn into a cell that fits it")
	}
	if ink, ok := InkBounds(img, White); !ok || !ink.In(r) {
		t.Errorf("ink %v escapes cell %v", ink, r)
	}
}

func TestPaste(t *testing.T) {
	dst := New(10, 10)
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	Paste(dst, src, image.Pt(4, 5))
	got, _ := InkBounds(dst, White)
	if got != image.Rect(4, 5, 7, 7) {
		t.Errorf("ink bounds = %v", got)
	}
}
