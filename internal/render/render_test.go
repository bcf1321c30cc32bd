package render

import (
	"bytes"
	"errors"
	"image/png"
	"reflect"
	"strings"
	"testing"

	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/geometry"
)

var sample = funnel.Funnel{
	{Label: "Visit Website", Value: 150928},
	{Label: "Add to Cart", Value: 85420},
	{Label: "Purchase", Value: 12350},
}

type op struct {
	kind  string
	paint Paint
	text  string
}

// recorder is a Canvas that records calls in order.
type recorder struct {
	size geometry.Size
	ops  []op
}

func (r *recorder) Size() geometry.Size { return r.size }
func (r *recorder) FillPath(p geometry.Path, paint Paint) {
	r.ops = append(r.ops, op{kind: "fill", paint: paint})
}
func (r *recorder) StrokePath(p geometry.Path, s Stroke) {
	r.ops = append(r.ops, op{kind: "stroke"})
}
func (r *recorder) Text(x, y float64, s string, style TextStyle) {
	r.ops = append(r.ops, op{kind: "text", text: s})
}
func (r *recorder) MeasureText(s string, style TextStyle) float64 {
	return float64(len(s)) * style.Size * 0.6
}

func (r *recorder) texts() []string {
	var out []string
	for _, o := range r.ops {
		if o.kind == "text" {
			out = append(out, o.text)
		}
	}
	return out
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"area", "bars", "columns"} {
		v, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) returned error: %v", name, err)
		}
		if v.Name != name || v.Kind.String() != name {
			t.Errorf("Lookup(%q) = %q/%s", name, v.Name, v.Kind)
		}
	}
	if _, err := Lookup("pie"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("expected ErrUnknownVariant, got %v", err)
	}
	if got := VariantNames(); !reflect.DeepEqual(got, []string{"area", "bars", "columns"}) {
		t.Errorf("VariantNames() = %v", got)
	}
}

func TestReferencePolicies(t *testing.T) {
	tests := []struct {
		name     string
		expected funnel.ReferencePolicy
	}{
		{"area", funnel.ReferenceMax},
		{"bars", funnel.ReferenceFirst},
		{"columns", funnel.ReferenceFirst},
	}
	for _, tt := range tests {
		v, _ := Lookup(tt.name)
		if v.Reference != tt.expected {
			t.Errorf("%s reference = %s, want %s", tt.name, v.Reference, tt.expected)
		}
	}
}

func TestDrawEmptyFunnel(t *testing.T) {
	for _, name := range VariantNames() {
		c, _ := NewByName(name)
		r := &recorder{size: geometry.Size{W: 800, H: 400}}
		c.Draw(r, nil, geometry.NoHit)
		if len(r.ops) != 2 || r.ops[0].kind != "fill" || r.ops[1].text != "No data" {
			t.Errorf("%s: expected background and placeholder, got %+v", name, r.ops)
		}
	}
}

func TestDrawLayerOrder(t *testing.T) {
	for _, name := range VariantNames() {
		t.Run(name, func(t *testing.T) {
			c, _ := NewByName(name)
			r := &recorder{size: geometry.Size{W: 800, H: 480}}
			c.Draw(r, sample, geometry.NoHit)

			if len(r.ops) == 0 || r.ops[0].kind != "fill" {
				t.Fatal("background should be painted first")
			}
			firstText := -1
			for i, o := range r.ops {
				if o.kind == "text" && firstText < 0 {
					firstText = i
				}
				if firstText >= 0 && o.kind != "text" {
					t.Errorf("op %d (%s) painted after labels", i, o.kind)
				}
			}
			if firstText < 0 {
				t.Fatal("no labels drawn")
			}
		})
	}
}

func TestDrawBarsTooltipLast(t *testing.T) {
	c, _ := NewByName("bars")
	r := &recorder{size: geometry.Size{W: 800, H: 480}}
	c.Draw(r, sample, geometry.Hit{Kind: geometry.HitConnector, Index: 0})

	n := len(r.ops)
	if n < 3 {
		t.Fatalf("too few ops: %d", n)
	}
	if r.ops[n-3].kind != "fill" || r.ops[n-2].text != "65,508 Users (43.40%)" || r.ops[n-1].text != "Dropped out" {
		t.Errorf("tooltip should be the final layer, got %+v", r.ops[n-3:])
	}
}

func TestDrawAreaNoTooltip(t *testing.T) {
	c, _ := NewByName("area")
	r := &recorder{size: geometry.Size{W: 800, H: 280}}
	c.Draw(r, sample, geometry.Hit{Kind: geometry.HitBar, Index: 1})
	for _, s := range r.texts() {
		if strings.HasSuffix(s, "Users (56.60%)") {
			t.Error("area variant should not draw tooltips")
		}
	}
	want := "Drop off 65,508 (43.4%)"
	found := false
	for _, s := range r.texts() {
		if s == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected drop-off label %q in %v", want, r.texts())
	}
}

func TestTooltipFor(t *testing.T) {
	c, _ := NewByName("bars")
	tests := []struct {
		name   string
		hit    geometry.Hit
		title  string
		detail string
		ok     bool
	}{
		{"entry bar", geometry.Hit{Kind: geometry.HitBar, Index: 0}, "150,928 Users (100.00%)", "Total Active Users", true},
		{"second bar", geometry.Hit{Kind: geometry.HitBar, Index: 1}, "85,420 Users (56.60%)", "Completed this Step", true},
		{"connector", geometry.Hit{Kind: geometry.HitConnector, Index: 0}, "65,508 Users (43.40%)", "Dropped out", true},
		{"none", geometry.NoHit, "", "", false},
		{"out of range", geometry.Hit{Kind: geometry.HitConnector, Index: 2}, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.TooltipFor(sample, tt.hit)
			if ok != tt.ok || got.Title != tt.title || got.Detail != tt.detail {
				t.Errorf("TooltipFor(%+v) = %+v, %v; want %q/%q, %v", tt.hit, got, ok, tt.title, tt.detail, tt.ok)
			}
		})
	}
}

func TestBarLabels(t *testing.T) {
	c, _ := NewByName("bars")
	r := &recorder{size: geometry.Size{W: 800, H: 480}}
	c.Draw(r, sample, geometry.NoHit)
	texts := strings.Join(r.texts(), "|")
	for _, want := range []string{"150.93k", "56.60%", "8.18%"} {
		if !strings.Contains(texts, want) {
			t.Errorf("missing bar label %q in %s", want, texts)
		}
	}
}

func TestColumnsLegend(t *testing.T) {
	c, _ := NewByName("columns")
	r := &recorder{size: geometry.Size{W: 800, H: 400}}
	c.Draw(r, sample, geometry.NoHit)
	texts := r.texts()
	joined := strings.Join(texts, "|")
	for _, want := range []string{"Overall", "8.18%", "100%", "75%", "0%", "Visit Website", "150,928"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in %s", want, joined)
		}
	}
}

func TestChartHitTest(t *testing.T) {
	c, _ := NewByName("bars")
	size := geometry.Size{W: 800, H: 480}
	l := c.barLayout(size, sample.Values(), sample.Reference(c.Variant().Reference))

	mid := l.Bars[1].Rect
	if got := c.HitTest(size, sample, geometry.Point{X: mid.X + mid.W/2, Y: mid.Bottom() - 1}); got != (geometry.Hit{Kind: geometry.HitBar, Index: 1}) {
		t.Errorf("HitTest over bar 1 = %+v", got)
	}
	conn := l.Connectors[0]
	if got := c.HitTest(size, sample, geometry.Point{X: (conn.Start.X + conn.End.X) / 2, Y: l.Baseline - 1}); got.Kind != geometry.HitConnector || got.Index != 0 {
		t.Errorf("HitTest over connector = %+v", got)
	}
	if got := c.HitTest(size, nil, geometry.Point{X: 400, Y: 200}); got != geometry.NoHit {
		t.Errorf("HitTest on empty funnel = %+v", got)
	}

	area, _ := NewByName("area")
	if got := area.HitTest(size, sample, geometry.Point{X: 100, Y: 100}); got != geometry.NoHit {
		t.Errorf("area HitTest = %+v, want none", got)
	}
}

func TestDrawDoesNotMutate(t *testing.T) {
	f := append(funnel.Funnel(nil), sample...)
	for _, name := range VariantNames() {
		c, _ := NewByName(name)
		c.Draw(&recorder{size: geometry.Size{W: 640, H: 400}}, f, geometry.NoHit)
	}
	if !reflect.DeepEqual(f, sample) {
		t.Errorf("Draw mutated its input: %v", f)
	}
}

func TestRenderSVG(t *testing.T) {
	for _, name := range VariantNames() {
		t.Run(name, func(t *testing.T) {
			c, _ := NewByName(name)
			var a, b bytes.Buffer
			size := geometry.Size{W: 800, H: 480}
			if err := RenderSVG(&a, c, sample, size, geometry.NoHit); err != nil {
				t.Fatalf("RenderSVG: %v", err)
			}
			if err := RenderSVG(&b, c, sample, size, geometry.NoHit); err != nil {
				t.Fatalf("RenderSVG: %v", err)
			}
			out := a.String()
			if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
				t.Error("output is not an svg document")
			}
			if !strings.Contains(out, `viewBox="0.00 0.00 800.00 480.00"`) {
				t.Error("missing viewBox")
			}
			if strings.Contains(out, "NaN") || strings.Contains(out, "Inf") {
				t.Error("output contains non-finite numbers")
			}
			if a.String() != b.String() {
				t.Error("rendering is not deterministic")
			}
		})
	}
}

func TestRenderSVGArea(t *testing.T) {
	c, _ := NewByName("area")
	var buf bytes.Buffer
	if err := RenderSVG(&buf, c, sample, geometry.Size{W: 800, H: 280}, geometry.NoHit); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`id="area-gradient"`, `stop-color="#00DAD0"`, `stop-color="#0584A6"`, `id="area-hatch"`, `fill="url(#area-hatch)"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s", want)
		}
	}
	if strings.Count(out, `<linearGradient id="area-gradient"`) != 1 {
		t.Error("gradient should be defined once")
	}
}

func TestRenderSVGZeroValues(t *testing.T) {
	f := funnel.Funnel{{Label: "a", Value: 0}, {Label: "b", Value: 0}}
	for _, name := range VariantNames() {
		c, _ := NewByName(name)
		var buf bytes.Buffer
		if err := RenderSVG(&buf, c, f, geometry.Size{W: 400, H: 300}, geometry.NoHit); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "NaN") {
			t.Errorf("%s: zero values produced NaN", name)
		}
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	c, _ := NewByName("bars")
	var buf bytes.Buffer
	if err := RenderSVG(&buf, c, funnel.Funnel{}, geometry.Size{W: 400, H: 300}, geometry.NoHit); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No data") {
		t.Error("empty funnel should render the placeholder")
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderSVGWriteError(t *testing.T) {
	c, _ := NewByName("bars")
	if err := RenderSVG(failWriter{}, c, sample, geometry.Size{W: 400, H: 300}, geometry.NoHit); err == nil {
		t.Error("expected write error")
	}
}

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		variant string
		ratio   float64
		w, h    int
	}{
		{"area", 1, 200, 100},
		{"bars", 2, 400, 200},
		{"columns", 0, 200, 100},
	}
	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			c, _ := NewByName(tt.variant)
			var buf bytes.Buffer
			if err := RenderPNG(&buf, c, sample, geometry.Size{W: 200, H: 100}, tt.ratio, geometry.NoHit); err != nil {
				t.Fatalf("RenderPNG: %v", err)
			}
			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatalf("decoding png: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("image size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
		})
	}
}

func TestRasterCanvasScale(t *testing.T) {
	cv := NewRasterCanvas(geometry.Size{W: 300, H: 150}, 2)
	if cv.Size() != (geometry.Size{W: 300, H: 150}) {
		t.Errorf("logical size = %+v", cv.Size())
	}
	if got := cv.Scale().ToLogical(geometry.Point{X: 600, Y: 300}); got != (geometry.Point{X: 300, Y: 150}) {
		t.Errorf("ToLogical = %+v", got)
	}
}

func TestMix(t *testing.T) {
	if got := Mix("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("Mix(t=0) = %s", got)
	}
	if got := Mix("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("Mix(t=1) = %s", got)
	}
	if got := Mix("nope", "#ffffff", 0.5); got != "nope" {
		t.Errorf("Mix(invalid) = %s", got)
	}
}

func TestParseColor(t *testing.T) {
	c := parseColor("#0584A6", 0.5)
	if c.R != 0x05 || c.G != 0x84 || c.B != 0xA6 || c.A != 128 {
		t.Errorf("parseColor = %+v", c)
	}
	if parseColor("bogus", 1).A != 255 {
		t.Error("invalid colours should fall back to opaque black")
	}
}
