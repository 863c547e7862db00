package sld

// Map holds the canvas settings of a project.
type Map struct {
	SRS        string     `yaml:"srs"`
	BBOX       [4]float64 `yaml:"bounds"`
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Background string     `yaml:"background-color"`
}

// Bounds returns BBOX as an envelope.
func (m Map) Bounds() Envelope {
	return Envelope{MinX: m.BBOX[0], MinY: m.BBOX[1], MaxX: m.BBOX[2], MaxY: m.BBOX[3]}
}
