package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ironsheep/answer-sheet-roi/internal/geometry"
	"github.com/ironsheep/answer-sheet-roi/internal/imaging"
	"github.com/ironsheep/answer-sheet-roi/internal/ocr"
	"github.com/ironsheep/answer-sheet-roi/internal/pipeline"
)

// EnvPrefix is prepended to every environment variable the config reads.
const EnvPrefix = "SHEET_ROI"

// FileName is the config file looked up in the working directory when no
// explicit path is given.
const FileName = "sheet-roi"

// Config is the fully resolved configuration.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Template TemplateConfig `mapstructure:"template"`
	Debug    bool           `mapstructure:"debug"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

type InputConfig struct {
	Dir        string   `mapstructure:"dir"`
	Extensions []string `mapstructure:"extensions"`
}

type OutputConfig struct {
	Dir         string `mapstructure:"dir"`
	CSV         string `mapstructure:"csv"`
	CRLF        bool   `mapstructure:"crlf"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
}

type OCRConfig struct {
	Language   string `mapstructure:"language"`
	Tessdata   string `mapstructure:"tessdata"`
	Level      string `mapstructure:"level"`
	PSM        int    `mapstructure:"psm"`
	Preprocess string `mapstructure:"preprocess"`
}

type TemplateConfig struct {
	ReferenceBox []int          `mapstructure:"reference_box"`
	HeightPad    int            `mapstructure:"height_pad"`
	Confidence   float64        `mapstructure:"confidence"`
	Marker       string         `mapstructure:"marker"`
	Color        string         `mapstructure:"color"`
	Thickness    int            `mapstructure:"thickness"`
	ApplyScale   bool           `mapstructure:"apply_scale"`
	Regions      []RegionConfig `mapstructure:"regions"`
}

// RegionConfig places one region relative to the marker's top-left corner.
type RegionConfig struct {
	Name    string `mapstructure:"name"`
	OffsetX int    `mapstructure:"offset_x"`
	OffsetY int    `mapstructure:"offset_y"`
	Width   int    `mapstructure:"width"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"config":     "config",
	"input":      "input.dir",
	"output":     "output.dir",
	"csv":        "output.csv",
	"confidence": "template.confidence",
	"marker":     "template.marker",
	"lang":       "ocr.language",
	"tessdata":   "ocr.tessdata",
	"level":      "ocr.level",
	"preprocess": "ocr.preprocess",
	"debug":      "debug",
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML, JSON or TOML config file")
	fs.String("input", pipeline.DefaultInputDir, "directory of scanned sheet images")
	fs.String("output", pipeline.DefaultOutputDir, "directory for annotated images")
	fs.String("csv", pipeline.DefaultCSVPath, "coordinate file path")
	fs.Float64("confidence", pipeline.DefaultConfidence, "minimum marker confidence (exclusive)")
	fs.String("marker", pipeline.DefaultMarker, "text that identifies the marker")
	fs.String("lang", ocr.DefaultLanguage, "tesseract language")
	fs.String("tessdata", "", "tessdata directory (default: system)")
	fs.String("level", ocr.DefaultLevel, "tesseract box level: word, textline, para or block")
	fs.String("preprocess", imaging.PreprocessNone, "OCR preprocessing: "+strings.Join(imaging.PreprocessModes, ", "))
	fs.Bool("debug", false, "log every detection")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", pipeline.DefaultInputDir)
	v.SetDefault("input.extensions", pipeline.DefaultExtensions)

	v.SetDefault("output.dir", pipeline.DefaultOutputDir)
	v.SetDefault("output.csv", pipeline.DefaultCSVPath)
	v.SetDefault("output.crlf", true)
	v.SetDefault("output.jpeg_quality", imaging.DefaultJPEGQuality)

	v.SetDefault("ocr.language", ocr.DefaultLanguage)
	v.SetDefault("ocr.tessdata", "")
	v.SetDefault("ocr.level", ocr.DefaultLevel)
	v.SetDefault("ocr.psm", ocr.DefaultPageSegMode)
	v.SetDefault("ocr.preprocess", imaging.PreprocessNone)

	ref := pipeline.DefaultReferenceBox
	v.SetDefault("template.reference_box", []int{ref[0], ref[1], ref[2], ref[3]})
	v.SetDefault("template.height_pad", pipeline.DefaultHeightPad)
	v.SetDefault("template.confidence", pipeline.DefaultConfidence)
	v.SetDefault("template.marker", pipeline.DefaultMarker)
	v.SetDefault("template.color", imaging.DefaultColor)
	v.SetDefault("template.thickness", imaging.DefaultThickness)
	v.SetDefault("template.apply_scale", false)

	regions := make([]map[string]interface{}, 0, 2)
	for _, r := range pipeline.DefaultRegions() {
		regions = append(regions, map[string]interface{}{
			"name":     r.Name,
			"offset_x": r.Offset.X,
			"offset_y": r.Offset.Y,
			"width":    r.Width,
		})
	}
	v.SetDefault("template.regions", regions)

	v.SetDefault("debug", false)
}

// Load resolves the configuration. flags may be nil; otherwise it should have
// been populated by RegisterFlags and parsed.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if strings.EqualFold(v.GetString("log_level"), "debug") {
		cfg.Debug = true
	}

	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Input.Dir == "" {
		return fmt.Errorf("input.dir must not be empty")
	}
	if len(c.Input.Extensions) == 0 {
		return fmt.Errorf("input.extensions must list at least one extension")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	if c.Output.CSV == "" {
		return fmt.Errorf("output.csv must not be empty")
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be within [1,100], got %d", c.Output.JPEGQuality)
	}
	if _, err := ocr.ParseLevel(c.OCR.Level); err != nil {
		return fmt.Errorf("ocr.level: %w", err)
	}
	if !validPreprocess(c.OCR.Preprocess) {
		return fmt.Errorf("ocr.preprocess must be one of %s, got %q",
			strings.Join(imaging.PreprocessModes, ", "), c.OCR.Preprocess)
	}
	if _, err := imaging.ParseColor(c.Template.Color); err != nil {
		return fmt.Errorf("template.color: %w", err)
	}
	if c.Template.Thickness < 1 {
		return fmt.Errorf("template.thickness must be at least 1, got %d", c.Template.Thickness)
	}

	tmpl, err := c.PipelineTemplate()
	if err != nil {
		return err
	}
	if err := tmpl.Validate(); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	return nil
}

func validPreprocess(mode string) bool {
	for _, m := range imaging.PreprocessModes {
		if mode == m {
			return true
		}
	}
	return false
}

// PipelineTemplate builds the marker template.
func (c *Config) PipelineTemplate() (pipeline.Template, error) {
	if len(c.Template.ReferenceBox) != 4 {
		return pipeline.Template{}, fmt.Errorf("template.reference_box needs 4 values (x1, y1, x2, y2), got %d",
			len(c.Template.ReferenceBox))
	}

	regions := make([]pipeline.Region, 0, len(c.Template.Regions))
	for _, r := range c.Template.Regions {
		regions = append(regions, pipeline.Region{
			Name:   r.Name,
			Offset: geometry.Pt(r.OffsetX, r.OffsetY),
			Width:  r.Width,
		})
	}

	var ref [4]int
	copy(ref[:], c.Template.ReferenceBox)

	return pipeline.Template{
		ReferenceBox: ref,
		HeightPad:    c.Template.HeightPad,
		Confidence:   c.Template.Confidence,
		Marker:       c.Template.Marker,
		Regions:      regions,
		ApplyScale:   c.Template.ApplyScale,
	}, nil
}

// PipelineOptions converts the config into batch options.
func (c *Config) PipelineOptions() (pipeline.Options, error) {
	tmpl, err := c.PipelineTemplate()
	if err != nil {
		return pipeline.Options{}, err
	}
	col, err := imaging.ParseColor(c.Template.Color)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("template.color: %w", err)
	}

	return pipeline.Options{
		InputDir:    c.Input.Dir,
		Extensions:  c.Input.Extensions,
		OutputDir:   c.Output.Dir,
		CSVPath:     c.Output.CSV,
		CRLF:        c.Output.CRLF,
		JPEGQuality: c.Output.JPEGQuality,
		Preprocess:  c.OCR.Preprocess,
		Template:    tmpl,
		Style:       pipeline.Style{Color: col, Thickness: c.Template.Thickness},
	}, nil
}

// OCROptions converts the config into Tesseract engine options.
func (c *Config) OCROptions() ocr.Options {
	return ocr.Options{
		Language:       c.OCR.Language,
		TessdataPrefix: c.OCR.Tessdata,
		Level:          c.OCR.Level,
		PageSegMode:    c.OCR.PSM,
	}
}
