package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultStock != defaults.Stock {
		t.Errorf("Stock mismatch: config=%v settings=%v", cfg.DefaultStock, defaults.Stock)
	}
	if cfg.DefaultCleatWidth != defaults.CleatMemberWidth {
		t.Errorf("CleatMemberWidth mismatch: config=%f settings=%f", cfg.DefaultCleatWidth, defaults.CleatMemberWidth)
	}
	if cfg.DefaultStrategy != defaults.Strategy {
		t.Errorf("Strategy mismatch: config=%s settings=%s", cfg.DefaultStrategy, defaults.Strategy)
	}
	if cfg.DefaultHybridThreshold != defaults.HybridThreshold {
		t.Errorf("HybridThreshold mismatch: config=%f settings=%f", cfg.DefaultHybridThreshold, defaults.HybridThreshold)
	}
	if cfg.Units != "in" {
		t.Errorf("expected default units=in, got %s", cfg.Units)
	}
	if cfg.RecentJobs == nil {
		t.Error("RecentJobs should not be nil")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultCleatWidth = 5.5
	cfg.DefaultStock = StockSheet{Width: 60, Height: 120}
	cfg.DefaultStrategy = StrategyHybrid

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.CleatMemberWidth != 5.5 {
		t.Errorf("expected CleatMemberWidth=5.5, got %f", s.CleatMemberWidth)
	}
	if s.Stock.Width != 60 || s.Stock.Height != 120 {
		t.Errorf("expected stock 60x120, got %v", s.Stock)
	}
	if s.Strategy != StrategyHybrid {
		t.Errorf("expected Strategy=hybrid, got %s", s.Strategy)
	}
}

func TestApplyToSettings_ZeroValuesKeepDefaults(t *testing.T) {
	var cfg AppConfig
	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.Stock != DefaultSettings().Stock {
		t.Errorf("zero stock should not override, got %v", s.Stock)
	}
	if s.CleatMemberWidth != 3.5 {
		t.Errorf("zero cleat width should not override, got %f", s.CleatMemberWidth)
	}
}
