package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir      string
	DataDir      string
	ConfigDir    string
	LogFile      string
	RegistryFile string
	ConfigFile   string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dataDir := filepath.Join(homeDir, ".local", "share", "clinicdesk")
		configDir := filepath.Join(homeDir, ".config", "clinicdesk")

		defaultPaths = &Paths{
			HomeDir:      homeDir,
			DataDir:      dataDir,
			ConfigDir:    configDir,
			LogFile:      filepath.Join(dataDir, "clinicdesk.log"),
			RegistryFile: filepath.Join(dataDir, "registry.db"),
			ConfigFile:   filepath.Join(configDir, "config.yaml"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func ConfigDir() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func RegistryFile() string {
	ensureDefaultPaths()
	return defaultPaths.RegistryFile
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}
