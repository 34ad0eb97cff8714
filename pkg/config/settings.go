// Package config provides configuration management for the FBX-to-VMD
// conversion pipeline's cmd/ driver.
package config

import (
	"os"
	"strconv"

	"github.com/lanterneq/mixamo-vmd/pkg/infrastructure"
	"github.com/lanterneq/mixamo-vmd/pkg/infrastructure/logger"
)

// Settings holds the configuration options for a conversion run. None
// of this belongs to the core pipeline itself (Load, Retarget, and
// WriteVMD take no settings); Settings exists purely to configure the
// surrounding cmd/ driver.
type Settings struct {
	// settingsFilePath is the OS path to the settings file.
	settingsFilePath string

	// logger is the logger reference for debug output.
	logger logger.Logger

	// OutputFPS is the frame rate used to quantize track times into VMD
	// frame indices. Defaults to 30.
	OutputFPS int

	// ModelName is written into the VMD header's 20-byte model name field.
	ModelName string

	// EmitGltfPreview also writes a debug glTF skeleton/animation preview
	// alongside the VMD output (see pkg/preview).
	EmitGltfPreview bool

	// LoggerVerbosity sets the verbosity level of the logger.
	LoggerVerbosity int
}

// NewSettings creates a new Settings instance with default values.
func NewSettings(settingsFilePath string, log logger.Logger) *Settings {
	return &Settings{
		settingsFilePath: settingsFilePath,
		logger:           log,
		OutputFPS:        30,
		LoggerVerbosity:  0,
	}
}

// Initialize loads settings from the settings file, if present. A missing
// settings file is not an error; defaults apply.
func (s *Settings) Initialize() error {
	data, err := os.ReadFile(s.settingsFilePath)
	if err != nil {
		return nil
	}

	parsed := infrastructure.ParseTextToDictionary(string(data), '=', '#')
	if parsed == nil {
		return nil
	}

	if val, ok := parsed["OutputFPS"]; ok {
		if intVal, err := strconv.Atoi(val); err == nil && intVal > 0 {
			s.OutputFPS = intVal
		}
	}

	if val, ok := parsed["ModelName"]; ok {
		s.ModelName = val
	}

	if val, ok := parsed["EmitGltfPreview"]; ok {
		s.EmitGltfPreview = parseBool(val)
	}

	if val, ok := parsed["LoggerVerbosity"]; ok {
		if intVal, err := strconv.Atoi(val); err == nil {
			s.LoggerVerbosity = intVal
		}
	}

	return nil
}

// parseBool converts a string to a boolean value.
// Accepts "true", "True", "TRUE", "1" as true values.
func parseBool(s string) bool {
	switch s {
	case "true", "True", "TRUE", "1":
		return true
	default:
		return false
	}
}
