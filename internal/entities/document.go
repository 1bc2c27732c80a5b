package entities

const (
	// Generator is written into every intermediate document.
	Generator = "kindle-cards"

	// DefinitionHeading opens the section the user fills in by hand.
	DefinitionHeading = "### Definition"

	// AddedLayout is how clipping dates appear in the metadata line.
	AddedLayout = "2006-01-02 15:04:05"
)

// DocumentMeta is the frontmatter of the intermediate document.
type DocumentMeta struct {
	Generator  string `yaml:"generator"`
	Source     string `yaml:"source,omitempty"`
	StartDate  string `yaml:"start_date,omitempty"`
	Timezone   string `yaml:"timezone,omitempty"`
	MergeNotes bool   `yaml:"merge_notes,omitempty"`
}
