package configure

const (
	DefaultNarrator = "onyx"

	SystemTypeTable   = "table"
	SystemTypeCenter  = "center"
	SystemTypeBold    = "bold"
	SystemTypeItalic  = "italic"
	SystemTypeBracket = "bracket"
	SystemTypeAngle   = "angle"
)

type SystemConfig struct {
	Type     string  `yaml:"type,omitempty"`
	Voice    string  `yaml:"voice,omitempty"`
	Modulate *bool   `yaml:"modulate,omitempty"`
	Speed    float64 `yaml:"speed,omitempty"`
}

type SeriesConfig struct {
	Name         string            `yaml:"name"`
	URL          string            `yaml:"url,omitempty"`
	Enabled      *bool             `yaml:"enabled,omitempty"`
	Latest       string            `yaml:"latest,omitempty"`
	Narrator     string            `yaml:"narrator,omitempty"`
	Mappings     map[string]string `yaml:"mappings,omitempty"`
	Replacements map[string]string `yaml:"replacements,omitempty"`
	System       SystemConfig      `yaml:"system,omitempty"`
}

func (s *SeriesConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (s *SeriesConfig) NarratorVoice() string {
	if s.Narrator == "" {
		return DefaultNarrator
	}
	return s.Narrator
}

func (s *SeriesConfig) SystemVoice() string {
	if s.System.Voice == "" {
		return DefaultNarrator
	}
	return s.System.Voice
}

func (s *SeriesConfig) ModulateSystem() bool {
	return s.System.Modulate == nil || *s.System.Modulate
}

func (s *SeriesConfig) SystemSpeed() float64 {
	if s.System.Speed <= 0 {
		return 1.0
	}
	return s.System.Speed
}

// SetMapping records a learned speaker to voice mapping.
func (s *SeriesConfig) SetMapping(speaker, voice string) {
	if s.Mappings == nil {
		s.Mappings = map[string]string{}
	}
	s.Mappings[speaker] = voice
}
