package configutil

import (
	"io"
	"strings"

	"ghmerge/internal/pkg/fs"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	ErrHomeDirNotFound = errors.New("unable to determine the home directory")
	ErrConfigFileIsDir = errors.New("configuration file is a directory")
)

type configMerger interface {
	MergeConfig(in io.Reader) error
}

type viperConfigMerger struct{}

func (viperConfigMerger) MergeConfig(in io.Reader) error {
	return viper.MergeConfig(in)
}

var fileExists = func(filename string, fs fs.Filesystem) error {
	info, err := fs.Stat(filename)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ErrConfigFileIsDir
	}

	return nil
}

var loadFile = func(filename string, fs fs.Filesystem) (io.Reader, error) {
	if err := fileExists(filename, fs); err != nil {
		return nil, err
	}

	f, err := fs.Open(filename)
	if err != nil {
		return nil, err
	}

	return f, nil
}

var mergeConfig = func(in io.Reader, m configMerger) error {
	return m.MergeConfig(in)
}

var loadConfig = func(filename string) error {
	f, err := loadFile(filename, fs.OS{})
	if err != nil {
		// missing config files are fine
		return nil
	}

	return mergeConfig(f, viperConfigMerger{})
}

var getGlobalConfigPath = func() (string, error) {
	return homedir.Expand("~/.config/ghmerge/config.toml")
}

// Load merges the global and per-directory ghmerge configuration files
// into viper. The per-directory file wins.
func Load() error {
	hdCfgPath, err := getGlobalConfigPath()
	if err != nil {
		return ErrHomeDirNotFound
	}

	viper.SetConfigType("toml")
	viper.SetEnvPrefix("GHMERGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := loadConfig(hdCfgPath); err != nil {
		return err
	}

	return loadConfig(".ghmergecfg")
}

type flagSet interface {
	GetString(string) (string, error)
	GetBool(string) (bool, error)
}

var _ flagSet = (*pflag.FlagSet)(nil)

func GetStringFlagOrDefault(flags flagSet, flag, d string) string {
	v, err := flags.GetString(flag)
	if err != nil || v == "" {
		return d
	}

	return v
}

func GetBoolFlagOrDefault(flags flagSet, flag string, d bool) bool {
	v, err := flags.GetBool(flag)
	if err != nil {
		return d
	}

	return v
}
