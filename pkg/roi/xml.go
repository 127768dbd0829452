package roi

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Wire structs for the annotation XML format. Scalar fields are carried as
// strings so that empty or missing text nodes fall back to the documented
// defaults instead of failing to parse.

type xmlPoint struct {
	PosX string `xml:"pos_x"`
	PosY string `xml:"pos_y"`
}

type xmlPointList struct {
	Point []xmlPoint `xml:"point"`
}

// xmlCorner accepts both the nested <point> form the writer produces and a
// bare pos_x/pos_y pair.
type xmlCorner struct {
	Point *xmlPoint `xml:"point"`
	PosX  string    `xml:"pos_x,omitempty"`
	PosY  string    `xml:"pos_y,omitempty"`
}

func (c *xmlCorner) point() xmlPoint {
	if c.Point != nil {
		return *c.Point
	}
	return xmlPoint{PosX: c.PosX, PosY: c.PosY}
}

type xmlMeta struct {
	PositionX    string `xml:"positionX"`
	PositionY    string `xml:"positionY"`
	PositionZ    string `xml:"positionZ"`
	PositionT    string `xml:"positionT"`
	PixelSizeX   string `xml:"pixelSizeX"`
	PixelSizeY   string `xml:"pixelSizeY"`
	PixelSizeZ   string `xml:"pixelSizeZ"`
	TimeInterval string `xml:"timeInterval"`
	ChannelName0 string `xml:"channelName0"`
	ChannelName1 string `xml:"channelName1"`
	ChannelName2 string `xml:"channelName2"`
	UserName     string `xml:"userName"`
}

type xmlROI struct {
	Classname   string        `xml:"classname"`
	ID          string        `xml:"id,omitempty"`
	Name        string        `xml:"name,omitempty"`
	Selected    string        `xml:"selected"`
	ReadOnly    string        `xml:"read_only"`
	Color       string        `xml:"color"`
	Stroke      string        `xml:"stroke"`
	Opacity     string        `xml:"opacity"`
	ShowName    string        `xml:"show_name"`
	Z           string        `xml:"z"`
	T           string        `xml:"t"`
	C           string        `xml:"c"`
	Points      *xmlPointList `xml:"points,omitempty"`
	Pt1         *xmlPoint     `xml:"pt1,omitempty"`
	Pt2         *xmlPoint     `xml:"pt2,omitempty"`
	Position    *xmlPoint     `xml:"position,omitempty"`
	TopLeft     *xmlCorner    `xml:"top_left,omitempty"`
	BottomRight *xmlCorner    `xml:"bottom_right,omitempty"`
}

type xmlROIList struct {
	ROI []xmlROI `xml:"roi"`
}

type xmlRoot struct {
	XMLName xml.Name    `xml:"root"`
	Name    string      `xml:"name,omitempty"`
	Meta    *xmlMeta    `xml:"meta,omitempty"`
	Rois    *xmlROIList `xml:"rois,omitempty"`
	Direct  []xmlROI    `xml:"roi,omitempty"`
}

// parseFloat returns def for empty or unparsable text.
func parseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// parseInt returns def for empty or unparsable text.
func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (p xmlPoint) toPoint() Point {
	return Point{X: parseFloat(p.PosX, 0), Y: parseFloat(p.PosY, 0)}
}

func pointToXML(p Point) xmlPoint {
	return xmlPoint{PosX: formatFloat(p.X), PosY: formatFloat(p.Y)}
}

func (m *xmlMeta) toMeta() Meta {
	return Meta{
		PositionX:    parseFloat(m.PositionX, 0),
		PositionY:    parseFloat(m.PositionY, 0),
		PositionZ:    parseFloat(m.PositionZ, 0),
		PositionT:    parseFloat(m.PositionT, 0),
		PixelSizeX:   parseFloat(m.PixelSizeX, 0),
		PixelSizeY:   parseFloat(m.PixelSizeY, 0),
		PixelSizeZ:   parseFloat(m.PixelSizeZ, 0),
		TimeInterval: parseFloat(m.TimeInterval, 0),
		ChannelName0: m.ChannelName0,
		ChannelName1: m.ChannelName1,
		ChannelName2: m.ChannelName2,
		UserName:     m.UserName,
	}
}

func metaToXML(m *Meta) *xmlMeta {
	return &xmlMeta{
		PositionX:    formatFloat(m.PositionX),
		PositionY:    formatFloat(m.PositionY),
		PositionZ:    formatFloat(m.PositionZ),
		PositionT:    formatFloat(m.PositionT),
		PixelSizeX:   formatFloat(m.PixelSizeX),
		PixelSizeY:   formatFloat(m.PixelSizeY),
		PixelSizeZ:   formatFloat(m.PixelSizeZ),
		TimeInterval: formatFloat(m.TimeInterval),
		ChannelName0: m.ChannelName0,
		ChannelName1: m.ChannelName1,
		ChannelName2: m.ChannelName2,
		UserName:     m.UserName,
	}
}

func (w *xmlROI) toROI() ROI {
	r := ROI{
		Classname: w.Classname,
		ID:        w.ID,
		Name:      w.Name,
		Selected:  parseBool(w.Selected),
		ReadOnly:  parseBool(w.ReadOnly),
		Color:     parseInt(w.Color, 0),
		Stroke:    parseFloat(w.Stroke, 0),
		Opacity:   parseFloat(w.Opacity, 1.0),
		ShowName:  parseBool(w.ShowName),
		Z:         parseFloat(w.Z, -1),
		T:         parseFloat(w.T, -1),
		C:         parseFloat(w.C, -1),
	}
	if k, err := KindFromClassname(w.Classname); err == nil {
		r.Kind = k
	}

	switch r.Kind {
	case KindPolygon, KindPolyline:
		if w.Points != nil {
			for _, p := range w.Points.Point {
				r.Points = append(r.Points, p.toPoint())
			}
		}
	case KindLine:
		if w.Pt1 != nil && w.Pt2 != nil {
			r.Points = []Point{w.Pt1.toPoint(), w.Pt2.toPoint()}
		}
	case KindPoint:
		if w.Position != nil {
			r.Points = []Point{w.Position.toPoint()}
		}
	case KindRectangle, KindEllipse:
		if w.TopLeft != nil && w.BottomRight != nil {
			r.Points = []Point{w.TopLeft.point().toPoint(), w.BottomRight.point().toPoint()}
		}
	}
	return r
}

func roiToXML(r *ROI) xmlROI {
	classname := r.Kind.Classname()
	if classname == "" {
		classname = r.Classname
	}
	w := xmlROI{
		Classname: classname,
		ID:        r.ID,
		Name:      r.Name,
		Selected:  strconv.FormatBool(r.Selected),
		ReadOnly:  strconv.FormatBool(r.ReadOnly),
		Color:     strconv.Itoa(r.Color),
		Stroke:    formatFloat(r.Stroke),
		Opacity:   formatFloat(r.Opacity),
		ShowName:  strconv.FormatBool(r.ShowName),
		Z:         formatFloat(r.Z),
		T:         formatFloat(r.T),
		C:         formatFloat(r.C),
	}
	if len(r.Points) == 0 {
		return w
	}
	switch r.Kind {
	case KindPolygon, KindPolyline:
		list := &xmlPointList{}
		for _, p := range r.Points {
			list.Point = append(list.Point, pointToXML(p))
		}
		w.Points = list
	case KindLine:
		if len(r.Points) >= 2 {
			pt1 := pointToXML(r.Points[0])
			pt2 := pointToXML(r.Points[1])
			w.Pt1 = &pt1
			w.Pt2 = &pt2
		}
	case KindPoint:
		pos := pointToXML(r.Points[0])
		w.Position = &pos
	case KindRectangle, KindEllipse:
		if len(r.Points) >= 2 {
			tl := pointToXML(r.Points[0])
			br := pointToXML(r.Points[1])
			w.TopLeft = &xmlCorner{Point: &tl}
			w.BottomRight = &xmlCorner{Point: &br}
		}
	}
	return w
}

// Decode parses annotation XML into a Document. ROIs are accepted either
// under a <rois> wrapper or as bare <roi> children of the root. Unknown
// classnames decode to KindUnknown with the raw classname preserved;
// resolving them is the converter's concern.
func Decode(data []byte) (*Document, error) {
	var root xmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse annotation XML: %w", err)
	}

	doc := &Document{Name: root.Name}
	if root.Meta != nil {
		m := root.Meta.toMeta()
		doc.Meta = &m
	}

	wire := root.Direct
	if root.Rois != nil {
		wire = root.Rois.ROI
	}
	for i := range wire {
		doc.ROIs = append(doc.ROIs, wire[i].toROI())
	}
	return doc, nil
}

// Encode serializes a Document to annotation XML. ROIs nest under a <rois>
// wrapper only when a meta block is present; otherwise they attach directly
// to the root. Existing consumers depend on this asymmetry.
func Encode(doc *Document) ([]byte, error) {
	root := xmlRoot{Name: doc.Name}
	if doc.Meta != nil {
		root.Meta = metaToXML(doc.Meta)
	}

	wire := make([]xmlROI, 0, len(doc.ROIs))
	for i := range doc.ROIs {
		wire = append(wire, roiToXML(&doc.ROIs[i]))
	}
	if doc.Meta != nil {
		root.Rois = &xmlROIList{ROI: wire}
	} else {
		root.Direct = wire
	}

	out, err := xml.MarshalIndent(root, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize annotation XML: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
