package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/cratepanel/internal/model"
)

// DXF layer names. The klimp layer holds one circle per fastener sized to
// the klimp body.
const (
	LayerPanel    = "PANEL"
	LayerSplices  = "SPLICES"
	LayerCleats   = "CLEATS"
	LayerKlimps   = "KLIMPS"
	LayerNeighbor = "NEIGHBOR"
)

var dxfLayers = []struct {
	name  string
	color color.ColorNumber
}{
	{LayerPanel, color.White},
	{LayerSplices, color.Red},
	{LayerCleats, color.Yellow},
	{LayerKlimps, color.Green},
	{LayerNeighbor, color.Cyan},
}

// ExportDXF writes one panel layout as a DXF drawing in panel units.
func ExportDXF(path string, lr model.LayoutResult, settings model.LayoutSettings) error {
	d, err := panelDrawing(lr, settings)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ExportCrateDXF writes one DXF file per panel into dir and returns the
// file paths in panel order.
func ExportCrateDXF(dir string, result model.CrateResult, settings model.LayoutSettings) ([]string, error) {
	paths := make([]string, 0, len(result.Layouts))
	for i, lr := range result.Layouts {
		path := filepath.Join(dir, DXFFileName(i, lr.Panel()))
		if err := ExportDXF(path, lr, settings); err != nil {
			return paths, fmt.Errorf("panel %d (%s): %w", i+1, lr.Panel().Label, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// DXFFileName builds a file name such as "02-left-side.dxf".
func DXFFileName(index int, p model.Panel) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(p.Label))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "panel"
	}
	return fmt.Sprintf("%02d-%s.dxf", index+1, slug)
}

func panelDrawing(lr model.LayoutResult, settings model.LayoutSettings) (*drawing.Drawing, error) {
	d := dxf.NewDrawing()
	for _, l := range dxfLayers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, false); err != nil {
			return nil, fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	p := lr.Panel()
	if p.Degenerate() {
		return d, nil
	}

	if err := onLayer(d, LayerPanel, func() error {
		return rectangle(d, model.Rect{XMax: p.Width, YMax: p.Height})
	}); err != nil {
		return nil, err
	}

	if err := onLayer(d, LayerSplices, func() error {
		for _, sp := range lr.Cleats.Plan.Splices() {
			a, b := sp.Seam(p)
			if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := onLayer(d, LayerCleats, func() error {
		for _, c := range lr.Cleats.All() {
			for _, fp := range c.Footprints() {
				if err := rectangle(d, fp); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := onLayer(d, LayerNeighbor, func() error {
		for _, r := range p.NeighborExclusions {
			if err := rectangle(d, r); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	radius := settings.ForPanel(p).KlimpDiameter / 2
	if err := onLayer(d, LayerKlimps, func() error {
		for _, k := range lr.Klimps.Klimps {
			if _, err := d.Circle(k.Position.X, k.Position.Y, 0, radius); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return d, nil
}

func onLayer(d *drawing.Drawing, layer string, draw func() error) error {
	if err := d.ChangeLayer(layer); err != nil {
		return fmt.Errorf("layer %s: %w", layer, err)
	}
	if err := draw(); err != nil {
		return fmt.Errorf("layer %s: %w", layer, err)
	}
	return nil
}

// rectangle draws r as four LINE entities.
func rectangle(d *drawing.Drawing, r model.Rect) error {
	corners := [][2]float64{{r.XMin, r.YMin}, {r.XMax, r.YMin}, {r.XMax, r.YMax}, {r.XMin, r.YMax}}
	for i, a := range corners {
		b := corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return err
		}
	}
	return nil
}
