package cache

// Keyer derives cache keys from layout inputs.
type Keyer interface {
	// SummaryKey identifies the JSON summary of a compiled layout.
	SummaryKey(layoutHash string, opts ArtifactKeyOpts) string
	// ArtifactKey identifies one rendered output of a compiled layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	Version     string `json:"version"`
	StrictNames bool   `json:"strict_names,omitempty"`
	Detailed    bool   `json:"detailed,omitempty"`
}

// DefaultKeyer prefixes keys with "masktower:" and hashes the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SummaryKey(layoutHash string, opts ArtifactKeyOpts) string {
	opts.Format = "summary"
	return hashKey(keyPrefix+"summary", layoutHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(keyPrefix+"artifact:"+opts.Format, layoutHash, opts)
}

const keyPrefix = "masktower:"
