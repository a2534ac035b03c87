package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/cratepanel/internal/model"
)

// Settings holds the drilling parameters for klimp pilot holes. Units are
// inches and inches per minute.
type Settings struct {
	ToolDiameter float64 `json:"tool_diameter" toml:"tool_diameter"`
	FeedRate     float64 `json:"feed_rate" toml:"feed_rate"`
	PlungeRate   float64 `json:"plunge_rate" toml:"plunge_rate"`
	SpindleSpeed int     `json:"spindle_speed" toml:"spindle_speed"`
	SafeZ        float64 `json:"safe_z" toml:"safe_z"`
	DrillDepth   float64 `json:"drill_depth" toml:"drill_depth"`
	PeckDepth    float64 `json:"peck_depth" toml:"peck_depth"` // 0 drills in one plunge
}

func DefaultSettings() Settings {
	return Settings{
		ToolDiameter: 0.25,
		FeedRate:     60,
		PlungeRate:   15,
		SpindleSpeed: 12000,
		SafeZ:        0.5,
		DrillDepth:   0.375,
		PeckDepth:    0.125,
	}
}

// Generator produces a pilot-hole drilling program from a panel layout.
type Generator struct {
	Settings Settings
	profile  Profile
}

func New(settings Settings, profile Profile) *Generator {
	return &Generator{Settings: settings, profile: profile}
}

// GeneratePanel produces G-code drilling one pilot hole per klimp of the
// layout, in klimp ID order.
func (g *Generator) GeneratePanel(lr model.LayoutResult, panelIndex int) string {
	var b strings.Builder

	g.writeHeader(&b, lr, panelIndex)
	for _, k := range lr.Klimps.Klimps {
		g.writeHole(&b, k)
	}
	g.writeFooter(&b)
	return b.String()
}

// GenerateCrate produces one program per panel.
func (g *Generator) GenerateCrate(result model.CrateResult) []string {
	codes := make([]string, 0, len(result.Layouts))
	for i, lr := range result.Layouts {
		codes = append(codes, g.GeneratePanel(lr, i+1))
	}
	return codes
}

func (g *Generator) writeHeader(b *strings.Builder, lr model.LayoutResult, idx int) {
	p := g.profile
	panel := lr.Panel()

	b.WriteString(g.comment(fmt.Sprintf("cratepanel klimp pilot holes - Panel %d (%s)", idx, panel.Label)))
	b.WriteString(g.comment(fmt.Sprintf("Panel: %.3f x %.3f in", panel.Width, panel.Height)))
	b.WriteString(g.comment(fmt.Sprintf("Holes: %d", len(lr.Klimps.Klimps))))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.3fin, Feed: %.0f in/min, Plunge: %.0f in/min",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.3fin, Peck: %.3fin", g.Settings.DrillDepth, g.Settings.PeckDepth)))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}
	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))
	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}
	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
}

// writeHole drills one hole in pecks, retracting to the surface between
// pecks to clear chips and to safe Z at the end.
func (g *Generator) writeHole(b *strings.Builder, k model.Klimp) {
	p := g.profile
	b.WriteString(g.comment(fmt.Sprintf("Klimp %d", k.ID)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(k.Position.X), g.format(k.Position.Y)))

	for _, depth := range g.peckDepths() {
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))
		b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(0)))
	}
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
}

// peckDepths returns the successive plunge depths down to the drill depth.
func (g *Generator) peckDepths() []float64 {
	total := g.Settings.DrillDepth
	if total <= 0 {
		return nil
	}
	peck := g.Settings.PeckDepth
	if peck <= 0 || peck >= total {
		return []float64{total}
	}
	n := int(math.Ceil(total/peck - 1e-9))
	depths := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		depths = append(depths, math.Min(float64(i)*peck, total))
	}
	return depths
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	return fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
}
