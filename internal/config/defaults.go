package config

const (
	defaultUploadDir        = "~/.local/share/papermill/uploads"
	defaultConvertedDir     = "~/.local/share/papermill/converted"
	defaultLogDir           = "~/.local/share/papermill/logs"
	defaultAPIBind          = "127.0.0.1:5001"
	defaultConverterBinary  = "libreoffice"
	defaultConverterTimeout = 300
	defaultWorkers          = 4
	defaultMaxUploadMiB     = 100
	defaultLogFormat        = ""
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir:    defaultUploadDir,
			ConvertedDir: defaultConvertedDir,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		Converter: Converter{
			Binary:         defaultConverterBinary,
			TimeoutSeconds: defaultConverterTimeout,
		},
		Dispatcher: Dispatcher{
			Workers: defaultWorkers,
		},
		Server: Server{
			MaxUploadMiB: defaultMaxUploadMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
