package config

const (
	defaultRawDir     = "~/.local/share/fluxcal/raw"
	defaultWorkDir    = "~/.local/share/fluxcal/work"
	defaultCalibDir   = "~/.local/share/fluxcal/calib"
	defaultLogDir     = "~/.local/share/fluxcal/logs"
	defaultIDWidth    = 4
	defaultWorkers    = 1
	defaultMinFreeGiB = 1
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RawDir:   defaultRawDir,
			WorkDir:  defaultWorkDir,
			CalibDir: defaultCalibDir,
			LogDir:   defaultLogDir,
		},
		Stage: Stage{
			Overwrite:  false,
			IDWidth:    defaultIDWidth,
			Workers:    defaultWorkers,
			MinFreeGiB: defaultMinFreeGiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
