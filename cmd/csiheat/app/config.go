package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	RxAntenna     int
	TxAntenna     int
	CellWidth     int
	MaxPower      *float64
	MinPower      *float64
	MinOffset     *float64
	MaxOffset     *float64
	FontPath      string
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:    ImagePNG,
		Theme:     ClassicTheme,
		CellWidth: 16,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, theme string
	var minPower, maxPower, minOffset, maxOffset float64
	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&theme, "theme", string(ClassicTheme), "Color theme. [classic, grayscale, thermal, marine]")
	flag.IntVar(&c.RxAntenna, "rx", 0, "Receive antenna index")
	flag.IntVar(&c.TxAntenna, "tx", 0, "Transmit antenna index")
	flag.IntVar(&c.CellWidth, "cell", 16, "Subcarrier cell width in pixels")
	flag.Float64Var(&minPower, "min-power", 0, "Define a manual minimum power (format nn.n)")
	flag.Float64Var(&maxPower, "max-power", 0, "Define a manual maximum power (format nn.n)")
	flag.Float64Var(&minOffset, "min-offset", 0, "Skip frames before this capture offset in seconds")
	flag.Float64Var(&maxOffset, "max-offset", 0, "Skip frames after this capture offset in seconds")
	flag.StringVar(&c.FontPath, "font", "", "Path to a TrueType font used for annotations")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as time and subcarrier scales")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)
	theme = strings.ToLower(theme)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-power":
			c.MinPower = &minPower
		case "max-power":
			c.MaxPower = &maxPower
		case "min-offset":
			c.MinOffset = &minOffset
		case "max-offset":
			c.MaxOffset = &maxOffset
		}
	})

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok := validColorThemes[ColorTheme(theme)]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	} else if c.RxAntenna < 0 || c.RxAntenna > 2 || c.TxAntenna < 0 || c.TxAntenna > 2 {
		err = errors.New("antenna indices must be between 0 and 2")
	} else if c.CellWidth < 1 {
		err = errors.New("cell width must be at least 1 pixel")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(theme)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
