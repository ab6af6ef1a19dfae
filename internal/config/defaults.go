package config

const (
	defaultCacheDir          = "~/.cache/curator"
	defaultLogDir            = "~/.local/share/curator/logs"
	defaultOllamaBaseURL     = "http://127.0.0.1:11434"
	defaultOllamaModel       = "llama3.2:3b"
	defaultOllamaTimeoutSecs = 120
	defaultOCRBinary         = "tesseract"
	defaultOCRLanguages      = "eng"
	defaultTranscriberBinary = "whisper"
	defaultTranscriberModel  = "base"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	maxWorkers               = 16
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Workers: Workers{
			Count: 0, // resolved to CPU count at normalize time
		},
		Ollama: Ollama{
			BaseURL:        defaultOllamaBaseURL,
			Model:          defaultOllamaModel,
			TimeoutSeconds: defaultOllamaTimeoutSecs,
		},
		OCR: OCR{
			Binary:    defaultOCRBinary,
			Languages: defaultOCRLanguages,
		},
		Transcriber: Transcriber{
			Binary: defaultTranscriberBinary,
			Model:  defaultTranscriberModel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
