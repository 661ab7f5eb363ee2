package cache

// LayoutKeyOpts are the layout settings that change placement.
type LayoutKeyOpts struct {
	Width      float64 `json:"width"`
	BatchSize  int     `json:"batch_size"`
	MinColumns int     `json:"min_columns"`
}

// ArtifactKeyOpts are the render settings that change output bytes.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Gap         float64 `json:"gap,omitempty"`
	Labels      bool    `json:"labels,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a layout of the items hashed as itemsHash.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendering of the layout hashed as layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
