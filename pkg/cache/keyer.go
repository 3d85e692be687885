package cache

import "fmt"

// Keyer builds cache keys.
type Keyer interface {
	// SceneKey identifies a parsed scene by the hash of its source bytes.
	SceneKey(sceneHash string) string
	// ArtifactKey identifies one rendered output of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists everything besides the scene that changes output.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Zoom        float64 `json:"zoom"`
	Center      int     `json:"center"`
	Quality     int     `json:"quality"`
	Seed        uint64  `json:"seed"`
	Scale       float64 `json:"scale,omitempty"`
	HideLabels  bool    `json:"hide_labels,omitempty"`
	HideRuler   bool    `json:"hide_ruler,omitempty"`
	HideLegends bool    `json:"hide_legends,omitempty"`
	// ConfigHash covers the remaining renderer settings.
	ConfigHash string `json:"config_hash,omitempty"`
}

// DefaultKeyer hashes option structs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SceneKey(sceneHash string) string {
	return fmt.Sprintf("scene:%s", sceneHash)
}

func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, sceneHash, opts)
}
