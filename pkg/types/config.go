package types

import "time"

// HTTPConfig holds shared HTTP settings used by every source.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "protein-annotator/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retries on HTTP 429 and 5xx responses.
	// Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// Default upstream base URLs.
const (
	DefaultUniProtBase   = "https://rest.uniprot.org"
	DefaultPDBeBase      = "https://www.ebi.ac.uk"
	DefaultAlphaFoldBase = "https://alphafold.ebi.ac.uk"
	DefaultChEMBLBase    = "https://www.ebi.ac.uk"
	DefaultPantherBase   = "https://pantherdb.org"

	// DefaultTaxonID scopes PANTHER lookups to Mycobacterium tuberculosis H37Rv.
	DefaultTaxonID = 83332

	// DefaultChEMBLPageSize is the activity page size requested from ChEMBL.
	DefaultChEMBLPageSize = 1000
)

// SourcesConfig holds the upstream endpoints and per-source settings.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	UniProtBase   string `json:"uniprot_base" yaml:"uniprot_base"`
	PDBeBase      string `json:"pdbe_base" yaml:"pdbe_base"`
	AlphaFoldBase string `json:"alphafold_base" yaml:"alphafold_base"`
	ChEMBLBase    string `json:"chembl_base" yaml:"chembl_base"`
	PantherBase   string `json:"panther_base" yaml:"panther_base"`

	// TaxonID is the NCBI taxon used to scope PANTHER lookups.
	TaxonID int `json:"taxon_id" yaml:"taxon_id"`

	// ChEMBLPageSize is the activity page size (default 1000).
	ChEMBLPageSize int `json:"chembl_page_size" yaml:"chembl_page_size"`
}

// WithDefaults returns a copy of cfg with every empty field set to its default.
func (cfg SourcesConfig) WithDefaults() SourcesConfig {
	if cfg.UniProtBase == "" {
		cfg.UniProtBase = DefaultUniProtBase
	}
	if cfg.PDBeBase == "" {
		cfg.PDBeBase = DefaultPDBeBase
	}
	if cfg.AlphaFoldBase == "" {
		cfg.AlphaFoldBase = DefaultAlphaFoldBase
	}
	if cfg.ChEMBLBase == "" {
		cfg.ChEMBLBase = DefaultChEMBLBase
	}
	if cfg.PantherBase == "" {
		cfg.PantherBase = DefaultPantherBase
	}
	if cfg.TaxonID == 0 {
		cfg.TaxonID = DefaultTaxonID
	}
	if cfg.ChEMBLPageSize <= 0 {
		cfg.ChEMBLPageSize = DefaultChEMBLPageSize
	}
	return cfg
}

// AnnotationConfig holds settings for the annotate stage.
type AnnotationConfig struct {
	Sources SourcesConfig `json:"sources" yaml:"sources"`

	// InputFile is the table listing the accessions to annotate.
	InputFile string `json:"input_file" yaml:"input_file"`

	// OutputFile is the annotation table, created if absent.
	OutputFile string `json:"output_file" yaml:"output_file"`

	// Workers is the number of accessions fetched concurrently (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// AppendOnly appends each row to the output file instead of rewriting
	// the whole table.
	AppendOnly bool `json:"append_only" yaml:"append_only"`
}

// ExportFormat selects the export file format.
type ExportFormat string

const (
	ExportYAML ExportFormat = "yaml"
	ExportJSON ExportFormat = "json"
	ExportXLSX ExportFormat = "xlsx"
)
