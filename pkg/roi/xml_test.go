package roi

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<root>
    <name>slide_01.tif</name>
    <meta>
        <positionX>0</positionX>
        <positionY>0</positionY>
        <positionZ>0</positionZ>
        <positionT>0</positionT>
        <pixelSizeX>0.25</pixelSizeX>
        <pixelSizeY>0.25</pixelSizeY>
        <pixelSizeZ>1</pixelSizeZ>
        <timeInterval>1</timeInterval>
        <channelName0>ch 0</channelName0>
        <channelName1>ch 1</channelName1>
        <channelName2>ch 2</channelName2>
        <userName>user</userName>
    </meta>
    <rois>
        <roi>
            <classname>plugins.kernel.roi.roi2d.ROI2DPolygon</classname>
            <id>42</id>
            <name>tumor</name>
            <selected>false</selected>
            <read_only>false</read_only>
            <color>-13408564</color>
            <stroke>2</stroke>
            <opacity>0.3</opacity>
            <show_name>false</show_name>
            <z>-1</z>
            <t>-1</t>
            <c>-1</c>
            <points>
                <point><pos_x>0</pos_x><pos_y>0</pos_y></point>
                <point><pos_x>10</pos_x><pos_y>0</pos_y></point>
                <point><pos_x>10</pos_x><pos_y>5</pos_y></point>
            </points>
        </roi>
        <roi>
            <classname>plugins.kernel.roi.roi2d.ROI2DLine</classname>
            <id>43</id>
            <pt1><pos_x>1</pos_x><pos_y>2</pos_y></pt1>
            <pt2><pos_x>3</pos_x><pos_y>4</pos_y></pt2>
        </roi>
        <roi>
            <classname>plugins.kernel.roi.roi2d.ROI2DPoint</classname>
            <id>44</id>
            <position><pos_x>7.5</pos_x><pos_y>8.5</pos_y></position>
        </roi>
        <roi>
            <classname>plugins.kernel.roi.roi2d.ROI2DRectangle</classname>
            <id>45</id>
            <top_left><point><pos_x>0</pos_x><pos_y>0</pos_y></point></top_left>
            <bottom_right><point><pos_x>10</pos_x><pos_y>5</pos_y></point></bottom_right>
        </roi>
    </rois>
</root>
`

func TestDecode(t *testing.T) {
	doc, err := Decode([]byte(sampleXML))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if doc.Name != "slide_01.tif" {
		t.Errorf("Name = %q, want %q", doc.Name, "slide_01.tif")
	}
	if doc.Meta == nil {
		t.Fatal("Meta is nil, want parsed meta block")
	}
	if doc.Meta.PixelSizeX != 0.25 || doc.Meta.PixelSizeY != 0.25 {
		t.Errorf("pixel size = (%g, %g), want (0.25, 0.25)", doc.Meta.PixelSizeX, doc.Meta.PixelSizeY)
	}
	if doc.Meta.UserName != "user" {
		t.Errorf("UserName = %q, want %q", doc.Meta.UserName, "user")
	}

	if len(doc.ROIs) != 4 {
		t.Fatalf("got %d ROIs, want 4", len(doc.ROIs))
	}

	poly := doc.ROIs[0]
	if poly.Kind != KindPolygon {
		t.Errorf("ROI 0 kind = %v, want Polygon", poly.Kind)
	}
	if poly.ID != "42" || poly.Name != "tumor" {
		t.Errorf("ROI 0 id/name = %q/%q, want 42/tumor", poly.ID, poly.Name)
	}
	if poly.Color != -13408564 {
		t.Errorf("ROI 0 color = %d, want -13408564", poly.Color)
	}
	wantPoints := []Point{{0, 0}, {10, 0}, {10, 5}}
	if diff := cmp.Diff(wantPoints, poly.Points); diff != "" {
		t.Errorf("ROI 0 points mismatch (-want +got):\n%s", diff)
	}

	line := doc.ROIs[1]
	if line.Kind != KindLine {
		t.Errorf("ROI 1 kind = %v, want Line", line.Kind)
	}
	if diff := cmp.Diff([]Point{{1, 2}, {3, 4}}, line.Points); diff != "" {
		t.Errorf("ROI 1 points mismatch (-want +got):\n%s", diff)
	}

	pt := doc.ROIs[2]
	if pt.Kind != KindPoint {
		t.Errorf("ROI 2 kind = %v, want Point", pt.Kind)
	}
	if diff := cmp.Diff([]Point{{7.5, 8.5}}, pt.Points); diff != "" {
		t.Errorf("ROI 2 points mismatch (-want +got):\n%s", diff)
	}

	rect := doc.ROIs[3]
	if rect.Kind != KindRectangle {
		t.Errorf("ROI 3 kind = %v, want Rectangle", rect.Kind)
	}
	if diff := cmp.Diff([]Point{{0, 0}, {10, 5}}, rect.Points); diff != "" {
		t.Errorf("ROI 3 points mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDefaults(t *testing.T) {
	// Missing scalar elements fall back to documented defaults.
	input := `<root>
    <roi>
        <classname>plugins.kernel.roi.roi2d.ROI2DPoint</classname>
        <position><pos_x>1</pos_x><pos_y>2</pos_y></position>
    </roi>
</root>`

	doc, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(doc.ROIs) != 1 {
		t.Fatalf("got %d ROIs, want 1", len(doc.ROIs))
	}
	r := doc.ROIs[0]
	if r.Opacity != 1.0 {
		t.Errorf("Opacity default = %g, want 1.0", r.Opacity)
	}
	if r.Z != -1 || r.T != -1 || r.C != -1 {
		t.Errorf("z/t/c defaults = %g/%g/%g, want -1/-1/-1", r.Z, r.T, r.C)
	}
	if r.Color != 0 {
		t.Errorf("Color default = %d, want 0", r.Color)
	}
	if r.Stroke != 0 {
		t.Errorf("Stroke default = %g, want 0", r.Stroke)
	}
	if doc.Meta != nil {
		t.Error("Meta should be nil when the input has no meta block")
	}
}

func TestDecodeEmptyText(t *testing.T) {
	// Empty element text behaves like a missing element.
	input := `<root>
    <roi>
        <classname>plugins.kernel.roi.roi2d.ROI2DPoint</classname>
        <opacity></opacity>
        <z></z>
        <position><pos_x></pos_x><pos_y></pos_y></position>
    </roi>
</root>`

	doc, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	r := doc.ROIs[0]
	if r.Opacity != 1.0 {
		t.Errorf("Opacity = %g, want 1.0", r.Opacity)
	}
	if r.Z != -1 {
		t.Errorf("Z = %g, want -1", r.Z)
	}
	if diff := cmp.Diff([]Point{{0, 0}}, r.Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeUnknownClassname(t *testing.T) {
	input := `<root>
    <roi>
        <classname>plugins.kernel.roi.roi3d.ROI3DBox</classname>
        <id>9</id>
    </roi>
</root>`

	doc, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	r := doc.ROIs[0]
	if r.Kind != KindUnknown {
		t.Errorf("Kind = %v, want Unknown", r.Kind)
	}
	if r.Classname != "plugins.kernel.roi.roi3d.ROI3DBox" {
		t.Errorf("Classname = %q, raw value must survive decoding", r.Classname)
	}
}

func TestEncodeWrapperAsymmetry(t *testing.T) {
	roiOnly := &Document{
		ROIs: []ROI{{
			Kind:    KindPoint,
			ID:      "1",
			Opacity: 1.0,
			Z:       -1, T: -1, C: -1,
			Points: []Point{{1, 2}},
		}},
	}

	out, err := Encode(roiOnly)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	text := string(out)
	if strings.Contains(text, "<rois>") {
		t.Error("document without meta must not nest ROIs under <rois>")
	}
	if !strings.Contains(text, "<roi>") {
		t.Error("document without meta must still emit <roi> elements")
	}

	withMeta := &Document{
		Meta: &Meta{PixelSizeX: 0.25, PixelSizeY: 0.25},
		ROIs: roiOnly.ROIs,
	}
	out, err = Encode(withMeta)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	text = string(out)
	if !strings.Contains(text, "<rois>") {
		t.Error("document with meta must nest ROIs under <rois>")
	}
	if !strings.Contains(text, "<meta>") {
		t.Error("document with meta must emit a <meta> block")
	}
	if !strings.HasPrefix(text, "<?xml") {
		t.Error("output must start with an XML declaration")
	}
}

func TestEncodePointTagsPerKind(t *testing.T) {
	tests := []struct {
		name     string
		roi      ROI
		wantTags []string
		skipTags []string
	}{
		{
			name:     "polygon uses points list",
			roi:      ROI{Kind: KindPolygon, Points: []Point{{0, 0}, {1, 0}, {1, 1}}},
			wantTags: []string{"<points>", "<point>"},
			skipTags: []string{"<pt1>", "<position>", "<top_left>"},
		},
		{
			name:     "line uses pt1/pt2",
			roi:      ROI{Kind: KindLine, Points: []Point{{0, 0}, {1, 1}}},
			wantTags: []string{"<pt1>", "<pt2>"},
			skipTags: []string{"<points>", "<position>"},
		},
		{
			name:     "point uses position",
			roi:      ROI{Kind: KindPoint, Points: []Point{{3, 4}}},
			wantTags: []string{"<position>"},
			skipTags: []string{"<points>", "<pt1>"},
		},
		{
			name:     "ellipse uses corner points",
			roi:      ROI{Kind: KindEllipse, Points: []Point{{0, 0}, {10, 10}}},
			wantTags: []string{"<top_left>", "<bottom_right>", "<point>"},
			skipTags: []string{"<points>", "<pt1>", "<position>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Encode(&Document{ROIs: []ROI{tt.roi}})
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			text := string(out)
			for _, tag := range tt.wantTags {
				if !strings.Contains(text, tag) {
					t.Errorf("output missing %s:\n%s", tag, text)
				}
			}
			for _, tag := range tt.skipTags {
				if strings.Contains(text, tag) {
					t.Errorf("output must not contain %s:\n%s", tag, text)
				}
			}
		})
	}
}

func TestXMLRoundTrip(t *testing.T) {
	doc, err := Decode([]byte(sampleXML))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	out, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	doc2, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode of re-encoded XML failed: %v", err)
	}
	if diff := cmp.Diff(doc, doc2); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}
