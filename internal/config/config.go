// Package config holds the single authoritative configuration record for
// the admission core. Per spec §9's first Open Question, every threshold a
// gate or the DRP machine needs lives here, with one name and one default —
// no gate package is allowed to declare its own copy of a shared threshold.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is loaded once by the host and passed down through every gate and
// the DRP machine. Field groups mirror the gate numbering in spec §4.
type Config struct {
	Prices PricesConfig `yaml:"prices"`
	DQS    DQSConfig    `yaml:"dqs"`
	DRP    DRPConfig    `yaml:"drp"`
	Gate2  Gate2Config  `yaml:"gate2_regime"`
	Gate6  Gate6Config  `yaml:"gate6_mle"`
	Gate7  Gate7Config  `yaml:"gate7_liquidity"`
	Gate8  Gate8Config  `yaml:"gate8_gap_glitch"`
	Gate9  Gate9Config  `yaml:"gate9_funding"`
	Gate10 Gate10Config `yaml:"gate10_correlation_exposure"`
}

// PricesConfig backs internal/prices' unit-risk validation floor.
type PricesConfig struct {
	AbsMinUnitRiskUSD  float64 `yaml:"abs_min_unit_risk_usd"`
	UnitRiskMinATRMult float64 `yaml:"unit_risk_min_atr_mult"`
}

// DQSConfig backs internal/dqs.
type DQSConfig struct {
	SoftStalenessMsCritical  int64 `yaml:"soft_staleness_ms_critical"`
	HardStalenessMsCritical  int64 `yaml:"hard_staleness_ms_critical"`
	SoftStalenessMsNonCritical int64 `yaml:"soft_staleness_ms_noncritical"`
	HardStalenessMsNonCritical int64 `yaml:"hard_staleness_ms_noncritical"`
	OracleSoftStalenessMs    int64 `yaml:"oracle_soft_staleness_ms"`
	OracleHardStalenessMs    int64 `yaml:"oracle_hard_staleness_ms"`

	XdevHardThreshold float64 `yaml:"xdev_hard_threshold"`

	// SourceWeights maps source name -> weight; must sum to 1.0.
	SourceWeights map[string]float64 `yaml:"source_weights"`

	DQSMultFullAt    float64 `yaml:"dqs_mult_full_at"`    // dqs >= this -> mult 1.0
	DQSMultPartialAt float64 `yaml:"dqs_mult_partial_at"` // dqs < this -> mult 0.0; dqs == this -> mult DQSMultPartial
	DQSMultPartial   float64 `yaml:"dqs_mult_partial"`
}

// DRPConfig backs internal/drp.
type DRPConfig struct {
	EmergencyDQSThreshold  float64 `yaml:"emergency_dqs_threshold"`  // dqs < this -> EMERGENCY
	DefensiveDQSThreshold  float64 `yaml:"defensive_dqs_threshold"`  // dqs < this -> DEFENSIVE

	WarmupDataGlitch int `yaml:"warmup_data_glitch"`
	WarmupLiquidity  int `yaml:"warmup_liquidity"`
	WarmupDepeg      int `yaml:"warmup_depeg"`
	WarmupOtherBase  int `yaml:"warmup_other_base"`
	WarmupOtherMin   int `yaml:"warmup_other_min"`
	WarmupOtherMax   int `yaml:"warmup_other_max"`
	RecoveryHoldMinSec int `yaml:"recovery_hold_min_sec"`

	FlapWindowBaseMinutes float64 `yaml:"flap_window_base_minutes"`
	FlapWindowMinMinutes  float64 `yaml:"flap_window_min_minutes"`
	FlapWindowMaxMinutes  float64 `yaml:"flap_window_max_minutes"`
	FlapToHibernateThreshold int  `yaml:"flap_to_hibernate_threshold"`
	HibernateMinDurationSec int64 `yaml:"hibernate_min_duration_sec"`
}

// Gate2Config backs internal/gates' regime conflict resolution.
type Gate2Config struct {
	MinProbeConfidence     float64 `yaml:"min_probe_confidence"`
	ConflictSustainedBars  int     `yaml:"conflict_sustained_bars"`
	MinRegimeConfidence    float64 `yaml:"min_regime_confidence"`
}

// Gate6Config backs the MLE decision gate.
type Gate6Config struct {
	ThetaReject float64 `yaml:"theta_reject"`
	ThetaNormal float64 `yaml:"theta_normal"`
	ThetaStrong float64 `yaml:"theta_strong"`
	MinConfidence float64 `yaml:"min_confidence"`
	RiskMultWeak   float64 `yaml:"risk_mult_weak"`
	RiskMultNormal float64 `yaml:"risk_mult_normal"`
	RiskMultStrong float64 `yaml:"risk_mult_strong"`
}

// Gate7Config backs the liquidity gate.
type Gate7Config struct {
	DepthHardMinUSD  float64 `yaml:"depth_hard_min_usd"`
	DepthSoftMinUSD  float64 `yaml:"depth_soft_min_usd"`
	SpreadHardMaxBps float64 `yaml:"spread_hard_max_bps"`
	SpreadSoftMaxBps float64 `yaml:"spread_soft_max_bps"`
	VolumeHardMinUSD float64 `yaml:"volume_hard_min_usd"`
	OBIHardMax       float64 `yaml:"obi_hard_max"`
}

// Gate8Config backs the gap/glitch gate.
type Gate8Config struct {
	JumpHardFrac     float64 `yaml:"jump_hard_frac"`
	JumpSoftFrac     float64 `yaml:"jump_soft_frac"`
	SpikeZHard       float64 `yaml:"spike_z_hard"`
	BookStaleMaxMs   int64   `yaml:"book_stale_max_ms"`
	PriceFreshMaxMs  int64   `yaml:"price_fresh_max_ms"`
}

// Gate9Config backs the funding/proximity gate.
type Gate9Config struct {
	FundingIntervalHours     float64 `yaml:"funding_interval_hours"`
	ProximitySoftSec         float64 `yaml:"proximity_soft_sec"`
	ProximityHardSec         float64 `yaml:"proximity_hard_sec"`
	ProximityMultMin         float64 `yaml:"proximity_mult_min"`
	ProximityPower           float64 `yaml:"proximity_power"`
	BlackoutCostRThreshold   float64 `yaml:"blackout_cost_r_threshold"`
	BlackoutHoldHoursMax     float64 `yaml:"blackout_hold_hours_max"`
}

// Gate10Config backs the correlation/exposure gate.
type Gate10Config struct {
	CorrHardMax           float64 `yaml:"corr_hard_max"`
	CorrSoftMax           float64 `yaml:"corr_soft_max"`
	MaxExposureAssetR     float64 `yaml:"max_exposure_asset_r"`
	MaxExposureSectorR    float64 `yaml:"max_exposure_sector_r"`
	MaxExposureTotalR     float64 `yaml:"max_exposure_total_r"`
	MaxPositions          int     `yaml:"max_positions"`
	MaxConcentrationRFrac float64 `yaml:"max_concentration_r_frac"`
}

// Default returns the production-default configuration. Values follow the
// magnitudes spec.md calls out explicitly (e.g. xdev_hard_threshold=0.02,
// flap_to_hibernate_threshold=5, obi_hard_max implied by OBI's [-1,1] range)
// and reasonable defaults elsewhere, matching the teacher's
// Default*Config() constructor pattern (internal/gates/entry.go).
func Default() *Config {
	return &Config{
		Prices: PricesConfig{
			AbsMinUnitRiskUSD:  1e-6,
			UnitRiskMinATRMult: 0.05,
		},
		DQS: DQSConfig{
			SoftStalenessMsCritical:    2000,
			HardStalenessMsCritical:    8000,
			SoftStalenessMsNonCritical: 30000,
			HardStalenessMsNonCritical: 120000,
			OracleSoftStalenessMs:      5000,
			OracleHardStalenessMs:      20000,
			XdevHardThreshold:          0.02,
			SourceWeights: map[string]float64{
				"price":      0.35,
				"liquidity":  0.25,
				"orderbook":  0.25,
				"volatility": 0.15,
			},
			DQSMultFullAt:    0.8,
			DQSMultPartialAt: 0.3,
			DQSMultPartial:   0.3,
		},
		DRP: DRPConfig{
			EmergencyDQSThreshold: 0.3,
			DefensiveDQSThreshold: 0.7,

			WarmupDataGlitch:   3,
			WarmupLiquidity:    6,
			WarmupDepeg:        24,
			WarmupOtherBase:    4,
			WarmupOtherMin:     2,
			WarmupOtherMax:     12,
			RecoveryHoldMinSec: 1800,

			FlapWindowBaseMinutes:    30,
			FlapWindowMinMinutes:     5,
			FlapWindowMaxMinutes:     60,
			FlapToHibernateThreshold: 5,
			HibernateMinDurationSec:  3600,
		},
		Gate2: Gate2Config{
			MinProbeConfidence:    0.6,
			ConflictSustainedBars: 3,
			MinRegimeConfidence:   0.4,
		},
		Gate6: Gate6Config{
			ThetaReject:    0.0,
			ThetaNormal:    0.15,
			ThetaStrong:    0.35,
			MinConfidence:  0.3,
			RiskMultWeak:   0.5,
			RiskMultNormal: 1.0,
			RiskMultStrong: 1.5,
		},
		Gate7: Gate7Config{
			DepthHardMinUSD:  20000,
			DepthSoftMinUSD:  100000,
			SpreadHardMaxBps: 80,
			SpreadSoftMaxBps: 20,
			VolumeHardMinUSD: 500000,
			OBIHardMax:       0.9,
		},
		Gate8: Gate8Config{
			JumpHardFrac:    0.05,
			JumpSoftFrac:    0.02,
			SpikeZHard:      5.0,
			BookStaleMaxMs:  5000,
			PriceFreshMaxMs: 2000,
		},
		Gate9: Gate9Config{
			FundingIntervalHours:   8,
			ProximitySoftSec:       1800,
			ProximityHardSec:       60,
			ProximityMultMin:       0.25,
			ProximityPower:         2.0,
			BlackoutCostRThreshold: 0.05,
			BlackoutHoldHoursMax:   4,
		},
		Gate10: Gate10Config{
			CorrHardMax:           0.85,
			CorrSoftMax:           0.6,
			MaxExposureAssetR:     6.0,
			MaxExposureSectorR:    10.0,
			MaxExposureTotalR:     20.0,
			MaxPositions:          12,
			MaxConcentrationRFrac: 0.35,
		},
	}
}

// LoadYAML loads a Config from a YAML file, starting from Default() so a
// partial override file only needs to set the fields it changes.
func LoadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
