package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxChainNameLength is the maximum length for chain names.
	MaxChainNameLength = 255

	// MaxTemplateNameLength is the maximum length for template names.
	MaxTemplateNameLength = 255

	// MaxTemplateIDLength bounds template ids, which also become archive paths.
	MaxTemplateIDLength = 128

	// MaxActionLogPage caps a single action log listing.
	MaxActionLogPage = 500
)

// Archive layout defaults for template export/import.
const (
	DefaultTemplateArchiveDir = "templates"
	DefaultTemplateFilePrefix = "template-"
	DefaultTemplateFileExt    = "yaml"

	// Generic services share the archive format under their own directory.
	DefaultServiceArchiveDir = "services"
	DefaultServiceFilePrefix = "service-"

	// ArchiveExtension is the only container format accepted for import.
	ArchiveExtension = "zip"
)
