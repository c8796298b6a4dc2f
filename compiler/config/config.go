package config

import (
	"os"

	"github.com/pelletier/go-toml"
	"tlog.app/go/errors"
)

type (
	Config struct {
		Front  Front
		Back   Back
		Output Output
	}

	Front struct {
		MaxDepth int
	}

	Back struct {
		Comments bool
	}

	Output struct {
		Mode string
	}

	file struct {
		Front *struct {
			MaxDepth *int `toml:"max_depth"`
		} `toml:"front"`

		Back *struct {
			Comments *bool `toml:"comments"`
		} `toml:"back"`

		Output *struct {
			Mode *string `toml:"mode"`
		} `toml:"output"`
	}
)

const (
	ModeKoopa = "koopa"
	ModeRISCV = "riscv"
	ModeLLVM  = "llvm"
)

var ErrBadConfig = errors.New("bad config")

func Default() Config {
	return Config{
		Front:  Front{MaxDepth: 1024},
		Output: Output{Mode: ModeRISCV},
	}
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	c, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrap(err, "%v", path)
	}

	return c, nil
}

// Parse applies data on top of Default.
func Parse(data []byte) (Config, error) {
	c := Default()

	var f file

	err := toml.Unmarshal(data, &f)
	if err != nil {
		return Config{}, errors.Wrap(err, "unmarshal")
	}

	if f.Front != nil && f.Front.MaxDepth != nil {
		c.Front.MaxDepth = *f.Front.MaxDepth
	}

	if f.Back != nil && f.Back.Comments != nil {
		c.Back.Comments = *f.Back.Comments
	}

	if f.Output != nil && f.Output.Mode != nil {
		c.Output.Mode = *f.Output.Mode
	}

	err = c.Validate()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) Validate() error {
	if c.Front.MaxDepth <= 0 {
		return errors.Wrap(ErrBadConfig, "front.max_depth must be positive: %d", c.Front.MaxDepth)
	}

	switch c.Output.Mode {
	case ModeKoopa, ModeRISCV, ModeLLVM:
	default:
		return errors.Wrap(ErrBadConfig, "unknown output mode: %q", c.Output.Mode)
	}

	return nil
}
