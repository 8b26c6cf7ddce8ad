package cache

import "strings"

// Key prefixes, also used as the key type reported to observability hooks.
const (
	KindDataset  = "dataset"
	KindArtifact = "artifact"
)

// Keyer derives cache keys.
type Keyer interface {
	// DatasetKey identifies the raw dataset fetched from source.
	DatasetKey(source string) string

	// ArtifactKey identifies one rendered output of a dataset.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists every option that changes rendered bytes.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Palette     string  `json:"palette"`
	Reverse     bool    `json:"reverse"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	CellWidth   float64 `json:"cell_width"`
	XTicks      int     `json:"x_ticks"`
	Buckets     int     `json:"buckets"`
	LegendWidth float64 `json:"legend_width"`
	LegendTicks int     `json:"legend_ticks"`
	Unit        string  `json:"unit,omitempty"`
	Tooltips    bool    `json:"tooltips"`
	OffsetX     float64 `json:"offset_x"`
	OffsetY     float64 `json:"offset_y"`
	Opacity     float64 `json:"opacity"`
	Scale       float64 `json:"scale,omitempty"` // PNG zoom
}

// DefaultKeyer hashes inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DatasetKey hashes the source URL or path.
func (DefaultKeyer) DatasetKey(source string) string {
	return hashKey(KindDataset, strings.TrimSpace(source))
}

// ArtifactKey hashes the dataset hash together with opts.
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey(KindArtifact, datasetHash, opts)
}

// KindOf returns the kind prefix of a key produced by a Keyer, looking past
// any ScopedKeyer prefix.
func KindOf(key string) string {
	for _, kind := range []string{KindDataset, KindArtifact} {
		if strings.HasPrefix(key, kind+":") || strings.Contains(key, ":"+kind+":") {
			return kind
		}
	}
	return "other"
}
