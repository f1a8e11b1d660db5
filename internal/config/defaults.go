package config

// Grouping profiles. The machine profile clusters the three-photo-per-machine
// sets; the activity profile clusters by work activity with a wider window.
const (
	ProfileMachine  = "machine"
	ProfileActivity = "activity"
)

const (
	defaultConfigPath             = "~/.config/sitephoto/config.toml"
	defaultLogDir                 = "~/.local/share/sitephoto/logs"
	defaultStateDirName           = ".sitephoto"
	defaultAttachmentKeyword      = "取付道路"
	defaultAttachmentPrefix       = "取付道路"
	defaultSegmentGapSeconds      = 300
	defaultActivityGapMinutes     = 10
	defaultActivityTopK           = 2
	defaultActivityFallbackLabel  = "unclassified"
	defaultBoardThreshold         = 0.15
	defaultMeasureThreshold       = 0.25
	defaultIngestBatchSize        = 10
	defaultIngestConcurrency      = 3
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	envLogLevel                   = "SITEPHOTO_LOG_LEVEL"
	envAttachmentKeywordOverride  = "SITEPHOTO_ATTACHMENT_KEYWORD"
	defaultIncludeElectronicBoard = false
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:       defaultLogDir,
			StateDirName: defaultStateDirName,
		},
		Grouping: Grouping{
			Profile:           ProfileMachine,
			AttachmentKeyword: defaultAttachmentKeyword,
			AttachmentPrefix:  defaultAttachmentPrefix,
			SegmentGapSeconds: defaultSegmentGapSeconds,
		},
		Activity: Activity{
			GapMinutes:    defaultActivityGapMinutes,
			TopK:          defaultActivityTopK,
			FallbackLabel: defaultActivityFallbackLabel,
		},
		Scene: Scene{
			BoardThreshold:         defaultBoardThreshold,
			MeasureThreshold:       defaultMeasureThreshold,
			IncludeElectronicBoard: defaultIncludeElectronicBoard,
		},
		Ingest: Ingest{
			BatchSize:   defaultIngestBatchSize,
			Concurrency: defaultIngestConcurrency,
			ReadEXIF:    true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
