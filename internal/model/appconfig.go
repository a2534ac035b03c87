package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default layout settings applied to new panels
	DefaultStock           StockSheet `json:"default_stock" toml:"default_stock"`
	DefaultCleatWidth      float64    `json:"default_cleat_width" toml:"default_cleat_width"`
	DefaultCleatThickness  float64    `json:"default_cleat_thickness" toml:"default_cleat_thickness"`
	DefaultSheathing       float64    `json:"default_sheathing" toml:"default_sheathing"`
	DefaultStrategy        Strategy   `json:"default_strategy" toml:"default_strategy"`
	DefaultHybridThreshold float64    `json:"default_hybrid_threshold" toml:"default_hybrid_threshold"`
	DefaultKlimpDiameter   float64    `json:"default_klimp_diameter" toml:"default_klimp_diameter"`
	DefaultGCodeProfile    string     `json:"default_gcode_profile" toml:"default_gcode_profile"`

	// Application preferences
	Units       string   `json:"units" toml:"units"` // "in" or "mm", informational only
	RecentJobs  []string `json:"recent_jobs" toml:"recent_jobs"`
	Concurrency int      `json:"concurrency" toml:"concurrency"` // Max panels laid out at once, 0 = one per CPU
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultStock:           defaults.Stock,
		DefaultCleatWidth:      defaults.CleatMemberWidth,
		DefaultCleatThickness:  defaults.CleatThickness,
		DefaultSheathing:       defaults.SheathingThickness,
		DefaultStrategy:        defaults.Strategy,
		DefaultHybridThreshold: defaults.HybridThreshold,
		DefaultKlimpDiameter:   defaults.KlimpDiameter,
		DefaultGCodeProfile:    "Generic",
		Units:                  "in",
		RecentJobs:             []string{},
		Concurrency:            0,
	}
}

// ApplyToSettings copies the default values from AppConfig into a LayoutSettings struct.
// Zero values in the config leave the corresponding setting untouched.
func (c AppConfig) ApplyToSettings(s *LayoutSettings) {
	if c.DefaultStock.Width > 0 && c.DefaultStock.Height > 0 {
		s.Stock = c.DefaultStock
	}
	if c.DefaultCleatWidth > 0 {
		s.CleatMemberWidth = c.DefaultCleatWidth
	}
	if c.DefaultCleatThickness > 0 {
		s.CleatThickness = c.DefaultCleatThickness
	}
	if c.DefaultSheathing > 0 {
		s.SheathingThickness = c.DefaultSheathing
	}
	s.Strategy = c.DefaultStrategy
	s.HybridThreshold = c.DefaultHybridThreshold
	if c.DefaultKlimpDiameter > 0 {
		s.KlimpDiameter = c.DefaultKlimpDiameter
	}
}
