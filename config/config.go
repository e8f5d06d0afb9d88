// Package config provides configuration loading and access for the lava lamp.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all lava lamp configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Lamp      LampConfig      `yaml:"lamp"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Merge     MergeConfig     `yaml:"merge"`
	Split     SplitConfig     `yaml:"split"`
	Container ContainerConfig `yaml:"container"`
	Render    RenderConfig    `yaml:"render"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// LampConfig holds lamp geometry and thermal settings.
// Radius, Height and BaseHeight must match the container meshes.
type LampConfig struct {
	Radius        float64 `yaml:"radius"`      // Max bulb radius
	Height        float64 `yaml:"height"`      // Top of the glass
	BaseHeight    float64 `yaml:"base_height"` // Glass bottom / heater plate
	AmbientTemp   float64 `yaml:"ambient_temp"`
	HeaterTemp    float64 `yaml:"heater_temp"`
	Threshold     float64 `yaml:"threshold"` // Isosurface threshold
	Gravity       float64 `yaml:"gravity"`   // Stored for the UI, not applied by the spring model
	InitialBlobs  int     `yaml:"initial_blobs"`
	MinBlobRadius float64 `yaml:"min_blob_radius"` // Floor for externally added blobs
}

// PhysicsConfig holds the spring-anchor motion model parameters.
type PhysicsConfig struct {
	SpringConstant    float64 `yaml:"spring_constant"`
	DampingConstant   float64 `yaml:"damping_constant"`
	RepulsionStrength float64 `yaml:"repulsion_strength"`
	RepulsionRange    float64 `yaml:"repulsion_range"` // In combined radii
	HeatZoneHeight    float64 `yaml:"heat_zone_height"`
	HeatRelaxRate     float64 `yaml:"heat_relax_rate"` // Per second
	CycleRate         float64 `yaml:"cycle_rate"`      // Phase cycles per second at cycle_speed 1
	TopMargin         float64 `yaml:"top_margin"`
	HeightBiasBand    float64 `yaml:"height_bias_band"` // Fraction of the column reserved by temperature bias
	DriftRate         float64 `yaml:"drift_rate"`       // Radians per second
	DriftPhaseScale   float64 `yaml:"drift_phase_scale"`
	DriftRadius       float64 `yaml:"drift_radius"` // Fraction of lamp radius
	Turbulence        float64 `yaml:"turbulence"`   // Anchor noise amplitude (0 = off)
	TurbulenceScale   float64 `yaml:"turbulence_scale"`
	WallThickness     float64 `yaml:"wall_thickness"`
	WallCorrection    float64 `yaml:"wall_correction"`     // Fraction of penetration removed per step
	WallRadialDamping float64 `yaml:"wall_radial_damping"` // Fraction of outward velocity removed
	FloorCorrection   float64 `yaml:"floor_correction"`
	FloorRestitution  float64 `yaml:"floor_restitution"`
}

// MergeConfig holds blob coalescence thresholds.
type MergeConfig struct {
	CenterFactor       float64 `yaml:"center_factor"` // Fraction of combined radius
	MaxRelativeSpeed   float64 `yaml:"max_relative_speed"`
	MaxTempDiff        float64 `yaml:"max_temp_diff"`
	WarmMargin         float64 `yaml:"warm_margin"` // Mean temperature must exceed ambient + this
	MaxPhaseDiff       float64 `yaml:"max_phase_diff"`
	MidBandLow         float64 `yaml:"mid_band_low"`
	MidBandHigh        float64 `yaml:"mid_band_high"`
	MidBandProbability float64 `yaml:"mid_band_probability"`
	MaxRadius          float64 `yaml:"max_radius"`
	VelocityDamping    float64 `yaml:"velocity_damping"`
}

// SplitConfig holds blob fission thresholds.
type SplitConfig struct {
	MaxRadius      float64 `yaml:"max_radius"`
	CoolingZone    float64 `yaml:"cooling_zone"` // Height fraction above which blobs may split
	SpeedThreshold float64 `yaml:"speed_threshold"`
	CoolFactor     float64 `yaml:"cool_factor"`
	CoolRadius     float64 `yaml:"cool_radius"`
	VolumeFraction float64 `yaml:"volume_fraction"` // Child share of parent volume
	Separation     float64 `yaml:"separation"`
	Kick           float64 `yaml:"kick"`
	PhaseOffset    float64 `yaml:"phase_offset"`
	CycleJitter    float64 `yaml:"cycle_jitter"`
}

// ProfilePointConfig is one (height, radius) sample of a revolved profile.
type ProfilePointConfig struct {
	Height float64 `yaml:"height"`
	Radius float64 `yaml:"radius"`
}

// ContainerConfig holds the profile curves the container meshes are revolved from.
type ContainerConfig struct {
	Segments        int                  `yaml:"segments"`
	Glass           []ProfilePointConfig `yaml:"glass"`
	MetalBulb       []ProfilePointConfig `yaml:"metal_bulb"`
	MetalBase       []ProfilePointConfig `yaml:"metal_base"`
	TopCap          []ProfilePointConfig `yaml:"top_cap"`
	BottomConeDepth float64              `yaml:"bottom_cone_depth"`
}

// RenderConfig holds metaball renderer parameters.
type RenderConfig struct {
	MaxBlobs       int        `yaml:"max_blobs"` // Uniform array capacity in the shader
	MaxDT          float64    `yaml:"max_dt"`
	BackDepth      bool       `yaml:"back_depth"`
	RadiusPadding  float64    `yaml:"radius_padding"`
	LightPos       [3]float64 `yaml:"light_pos"`
	LightColor     [3]float64 `yaml:"light_color"`
	AmbientColor   [3]float64 `yaml:"ambient_color"`
	VertexShader   string     `yaml:"vertex_shader"`
	FragmentShader string     `yaml:"fragment_shader"`
}

// CameraConfig holds orbit camera defaults.
type CameraConfig struct {
	Pitch       float64    `yaml:"pitch"`
	Yaw         float64    `yaml:"yaw"`
	Distance    float64    `yaml:"distance"`
	MinDistance float64    `yaml:"min_distance"`
	MaxDistance float64    `yaml:"max_distance"`
	Fov         float64    `yaml:"fov"` // Degrees
	Near        float64    `yaml:"near"`
	Far         float64    `yaml:"far"`
	Target      [3]float64 `yaml:"target"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	BookmarkHistory     int     `yaml:"bookmark_history"` // Windows kept for bookmark detection
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxDT32     float32 // Render.MaxDT as float32
	TopRadius32 float32 // Glass radius at Lamp.Height
	ScreenW32   float32
	ScreenH32   float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects configurations the simulation cannot run with.
func (c *Config) validate() error {
	if c.Lamp.Height <= c.Lamp.BaseHeight {
		return fmt.Errorf("lamp.height (%v) must exceed lamp.base_height (%v)", c.Lamp.Height, c.Lamp.BaseHeight)
	}
	if c.Lamp.Radius <= 0 {
		return fmt.Errorf("lamp.radius must be positive, got %v", c.Lamp.Radius)
	}
	if len(c.Container.Glass) < 2 {
		return fmt.Errorf("container.glass needs at least 2 profile points, got %d", len(c.Container.Glass))
	}
	if c.Split.VolumeFraction <= 0 || c.Split.VolumeFraction >= 1 {
		return fmt.Errorf("split.volume_fraction must be in (0,1), got %v", c.Split.VolumeFraction)
	}
	if c.Render.MaxBlobs < 1 {
		return fmt.Errorf("render.max_blobs must be at least 1, got %d", c.Render.MaxBlobs)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MaxDT32 = float32(c.Render.MaxDT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Radius of the glass where it meets the top cap
	glass := c.Container.Glass
	top := glass[0]
	for _, p := range glass[1:] {
		if p.Height >= top.Height {
			top = p
		}
	}
	c.Derived.TopRadius32 = float32(top.Radius)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
