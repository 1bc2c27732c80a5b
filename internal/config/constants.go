package config

// EnvPrefix is prepended to every environment variable, e.g.
// KINDLE_CARDS_CLIPPINGS_PATH.
const EnvPrefix = "KINDLE_CARDS"

// Default paths, relative to the working directory
const (
	DefaultClippingsPath = "./My Clippings.txt"
	DefaultDocumentPath  = "out/output.md"
	DefaultBackupPath    = "out/output-copy.md"
	DefaultRecordsPath   = "out/output.json"
)

const (
	DefaultRecordsFormat = "json"
	DefaultTimezone      = "Local"
	DefaultLogLevel      = "info"
)

// Keys shared by the config file, the environment and flag overrides
const (
	KeyClippingsPath = "clippings_path"
	KeyDocumentPath  = "document_path"
	KeyBackupPath    = "backup_path"
	KeyRecordsPath   = "records_path"
	KeyRecordsFormat = "records_format"
	KeyMergeNotes    = "merge_notes"
	KeyStrict        = "strict"
	KeyTimezone      = "timezone"
	KeyDateLayouts   = "date_layouts"
	KeyLogLevel      = "log_level"
)
